// Package orgchart provides the application service behind every outer
// surface: it keeps uploaded datasets per session, memoises hierarchy builds
// and answers view, ranking, statistics and export requests.
package orgchart

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/CohortMap/internal/domain/hierarchy"
	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CohortMap/internal/infrastructure/tabular"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// Service defines the interface for org-chart application operations.
type Service interface {
	Ingest(ctx context.Context, input *IngestInput) (*IngestResult, error)
	Reload(ctx context.Context) (*IngestResult, error)
	View(ctx context.Context, input *ViewInput) (*ViewResult, error)
	TopEntities(ctx context.Context, input *TopInput) (*TopResult, error)
	Regions(ctx context.Context, sessionID string) ([]string, error)
	Statistics(ctx context.Context, input *StatsInput) (*StatsResult, error)
	ExportHierarchy(ctx context.Context, input *ExportInput) (*Artifact, error)
	ExportTopEntities(ctx context.Context, input *ExportInput) (*Artifact, error)
	DropSession(ctx context.Context, sessionID string) error
	Ready(ctx context.Context) error
}

// ─────────────────────────────────────────────────────────────────────────────
// Ports
// ─────────────────────────────────────────────────────────────────────────────

// ArtifactStore persists exported files and returns a download URL.
type ArtifactStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Source supplies the default dataset from outside the request path.
type Source interface {
	Load(ctx context.Context) (interns, leads Upload, err error)
}

// Metrics receives service-level observations.
type Metrics interface {
	ObserveBuild(d time.Duration, err error)
	ObserveCache(hit bool)
	ObserveIngest(rows int, err error)
	ObserveNoData(region string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveBuild(time.Duration, error) {}
func (nopMetrics) ObserveCache(bool)                 {}
func (nopMetrics) ObserveIngest(int, error)          {}
func (nopMetrics) ObserveNoData(string)              {}

// ─────────────────────────────────────────────────────────────────────────────
// Inputs and results
// ─────────────────────────────────────────────────────────────────────────────

// Upload is one raw CSV payload.
type Upload struct {
	Name string
	Data []byte
}

// IngestInput carries both uploaded tables.  An empty or unknown SessionID
// starts a new session.
type IngestInput struct {
	SessionID string
	Interns   Upload
	Leads     Upload
}

// IngestResult summarises an accepted upload.
type IngestResult struct {
	SessionID string           `json:"session_id"`
	Digest    string           `json:"digest"`
	Interns   tabular.Summary  `json:"interns"`
	Leads     tabular.Summary  `json:"leads"`
	Report    hierarchy.Report `json:"report"`
	Regions   []string         `json:"regions"`
}

// ViewInput selects a filtered view.  A nil Min means no threshold filter.
type ViewInput struct {
	SessionID string
	Region    string
	Min       *float64
	Focus     string
	Highlight string
}

// ViewResult is a filtered table with its chart projection.
type ViewResult struct {
	Region  string              `json:"region"`
	NoData  bool                `json:"no_data"`
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Table   hierarchy.Table     `json:"table"`
	Chart   hierarchy.ChartSpec `json:"chart"`
}

// TopInput selects a ranking.  A nil Min uses the configured default.
type TopInput struct {
	SessionID string
	Region    string
	Min       *float64
}

// TopResult is a ranking of institution totals.
type TopResult struct {
	Region    string             `json:"region"`
	Threshold float64            `json:"threshold"`
	Options   []float64          `json:"threshold_options"`
	Entities  []hierarchy.Entity `json:"entities"`
	Filename  string             `json:"filename"`
}

// StatsInput selects statistics for a region and optionally an institution.
type StatsInput struct {
	SessionID   string
	Region      string
	Institution string
}

// StatsResult bundles the summary statistics of a view.
type StatsResult struct {
	Region      hierarchy.RegionStats       `json:"region"`
	Institution *hierarchy.InstitutionStats `json:"institution,omitempty"`
	Levels      []hierarchy.LevelTotal      `json:"levels"`
	Preview     hierarchy.Table             `json:"preview"`
	Report      hierarchy.Report            `json:"report"`
}

// ExportInput selects what to export.  With Store set the artifact is
// uploaded and only its URL is returned.
type ExportInput struct {
	SessionID string
	Region    string
	Min       *float64
	Store     bool
}

// Artifact is an exported file.
type Artifact struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Rows        int    `json:"rows"`
	URL         string `json:"url,omitempty"`
	Data        []byte `json:"-"`
}

// HierarchyFilename is the download name of hierarchy exports.
const HierarchyFilename = "sunburst_data.csv"

const csvContentType = "text/csv; charset=utf-8"

// TopFilename returns the download name of a ranking export.
func TopFilename(region string, threshold float64) string {
	state := strings.ReplaceAll(hierarchy.RegionTitle(region), " ", "_")
	return fmt.Sprintf("top_colleges_%s_%splus.csv", state, tabular.FormatNumber(threshold))
}

// ─────────────────────────────────────────────────────────────────────────────
// Implementation
// ─────────────────────────────────────────────────────────────────────────────

// Settings holds presentation parameters.
type Settings struct {
	Epsilon          float64
	Palette          hierarchy.Palette
	PreviewRows      int
	DefaultThreshold float64
	ThresholdOptions []float64
}

// Deps are the collaborators of the service.  Builder, Sessions and Memo are
// required; the rest may be nil.
type Deps struct {
	Builder   *hierarchy.Builder
	Sessions  SessionStore
	Memo      Memo
	Artifacts ArtifactStore
	Source    Source
	Metrics   Metrics
	Settings  Settings
	Now       func() time.Time
}

type serviceImpl struct {
	builder   *hierarchy.Builder
	sessions  SessionStore
	memo      Memo
	artifacts ArtifactStore
	source    Source
	metrics   Metrics
	settings  Settings
	now       func() time.Time
	group     singleflight.Group
	logger    logging.Logger
}

// NewService creates the org-chart application service.
func NewService(deps Deps, logger logging.Logger) Service {
	s := &serviceImpl{
		builder:   deps.Builder,
		sessions:  deps.Sessions,
		memo:      deps.Memo,
		artifacts: deps.Artifacts,
		source:    deps.Source,
		metrics:   deps.Metrics,
		settings:  deps.Settings,
		now:       deps.Now,
		logger:    logger,
	}
	if s.builder == nil {
		s.builder = hierarchy.NewBuilder()
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	if s.settings.Epsilon <= 0 {
		s.settings.Epsilon = hierarchy.DefaultEpsilon
	}
	if s.settings.Palette == nil {
		s.settings.Palette = hierarchy.DefaultPalette()
	}
	if s.settings.PreviewRows <= 0 {
		s.settings.PreviewRows = 10
	}
	if s.settings.DefaultThreshold == 0 {
		s.settings.DefaultThreshold = hierarchy.DefaultThreshold
	}
	if len(s.settings.ThresholdOptions) == 0 {
		s.settings.ThresholdOptions = hierarchy.ThresholdOptions()
	}
	return s
}

func (s *serviceImpl) log(ctx context.Context) logging.Logger {
	return logging.FromContext(ctx, s.logger)
}

func (s *serviceImpl) Ingest(ctx context.Context, input *IngestInput) (*IngestResult, error) {
	if input == nil {
		return nil, errors.InvalidParam("ingest input is required")
	}
	id := input.SessionID
	if id == "" || id == DefaultSessionID || !ValidSessionID(id) {
		id = NewSessionID()
	}
	return s.ingest(ctx, id, input.Interns, input.Leads)
}

func (s *serviceImpl) Reload(ctx context.Context) (*IngestResult, error) {
	if s.source == nil {
		return nil, errors.New(errors.ErrCodeFeatureDisabled, "no file source configured")
	}
	interns, leads, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.ingest(ctx, DefaultSessionID, interns, leads)
}

// ingest parses both payloads concurrently, builds once to surface column and
// duplicate errors, and only then replaces the session's dataset.
func (s *serviceImpl) ingest(ctx context.Context, id string, interns, leads Upload) (*IngestResult, error) {
	logger := s.log(ctx).With(logging.String("session_id", id))

	ds := &Dataset{ID: id, Digest: Digest(interns.Data, leads.Data), LoadedAt: s.now().UTC()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		in, err := parse(gctx, interns)
		ds.Interns = in
		return err
	})
	g.Go(func() error {
		in, err := parse(gctx, leads)
		ds.Leads = in
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.ObserveIngest(0, err)
		logger.Warn("upload rejected", logging.Err(err))
		return nil, err
	}

	res, err := s.build(ctx, ds)
	if err != nil {
		s.metrics.ObserveIngest(0, err)
		logger.Warn("upload rejected", logging.Err(err))
		return nil, err
	}

	if prev, err := s.sessions.Get(ctx, id); err == nil && memoKey(prev, s.builder) != memoKey(ds, s.builder) {
		if err := s.memo.Invalidate(ctx, memoKey(prev, s.builder)); err != nil {
			logger.Warn("memo invalidation failed", logging.Err(err))
		}
	}
	if err := s.sessions.Put(ctx, ds); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSessionStoreError, "failed to store dataset")
	}

	rows := len(ds.Interns.Records) + len(ds.Leads.Records)
	s.metrics.ObserveIngest(rows, nil)
	logger.Info("dataset loaded",
		logging.String("interns", ds.Interns.Source),
		logging.String("leads", ds.Leads.Source),
		logging.Int("rows", rows),
		logging.Int("unassigned_interns", res.Report.UnassignedInterns),
		logging.Strings("duplicates", res.Report.Duplicates),
	)

	return &IngestResult{
		SessionID: id,
		Digest:    ds.Digest,
		Interns:   tabular.Summarize(ds.Interns),
		Leads:     tabular.Summarize(ds.Leads),
		Report:    res.Report,
		Regions:   res.Table.Regions(),
	}, nil
}

func parse(ctx context.Context, up Upload) (hierarchy.Input, error) {
	if err := ctx.Err(); err != nil {
		return hierarchy.Input{}, err
	}
	return tabular.ParseInput(up.Data, up.Name)
}

// build returns the memoised result for ds, building it at most once per key
// across concurrent callers.
func (s *serviceImpl) build(ctx context.Context, ds *Dataset) (*hierarchy.Result, error) {
	key := memoKey(ds, s.builder)
	res, ok, err := s.memo.Get(ctx, key)
	if err != nil {
		s.log(ctx).Warn("memo lookup failed", logging.Err(err))
	}
	if ok {
		s.metrics.ObserveCache(true)
		return res, nil
	}
	s.metrics.ObserveCache(false)

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		start := time.Now()
		res, err := s.builder.Build(ds.Interns, ds.Leads)
		s.metrics.ObserveBuild(time.Since(start), err)
		if err != nil {
			return nil, err
		}
		if err := s.memo.Set(ctx, key, res); err != nil {
			s.log(ctx).Warn("memo store failed", logging.Err(err))
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*hierarchy.Result), nil
}

// load resolves the session's dataset and its built hierarchy.  An empty id
// selects the default dataset.
func (s *serviceImpl) load(ctx context.Context, id string) (*Dataset, *hierarchy.Result, error) {
	if id == "" {
		id = DefaultSessionID
	}
	ds, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.IsCode(err, errors.CodeSessionNotFound) && id == DefaultSessionID {
			return nil, nil, errors.New(errors.CodeDatasetNotLoaded, "no dataset loaded")
		}
		return nil, nil, err
	}
	res, err := s.build(ctx, ds)
	if err != nil {
		return nil, nil, err
	}
	return ds, res, nil
}

// filtered applies region then threshold to the built table.
func filtered(t hierarchy.Table, region string, min *float64) (hierarchy.Table, error) {
	t = hierarchy.FilterByRegion(t, region)
	if min != nil {
		return hierarchy.FilterByThreshold(t, *min)
	}
	return t, nil
}

func (s *serviceImpl) View(ctx context.Context, input *ViewInput) (*ViewResult, error) {
	if input == nil {
		input = &ViewInput{}
	}
	_, res, err := s.load(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	table, err := filtered(res.Table, input.Region, input.Min)
	if err != nil {
		return nil, err
	}
	if input.Focus != "" {
		table = hierarchy.Focus(table, input.Focus)
	}

	chart := hierarchy.Chart(table, hierarchy.ChartOptions{
		Region:    input.Region,
		Highlight: input.Highlight,
		Epsilon:   s.settings.Epsilon,
		Palette:   s.settings.Palette,
	})
	out := &ViewResult{
		Region:  hierarchy.RegionTitle(input.Region),
		NoData:  chart.NoData,
		Code:    chart.Code,
		Message: chart.Message,
		Table:   table,
		Chart:   chart,
	}
	if out.NoData {
		s.metrics.ObserveNoData(out.Region)
		s.log(ctx).Debug("view has no data", logging.String("region", out.Region))
	}
	return out, nil
}

func (s *serviceImpl) TopEntities(ctx context.Context, input *TopInput) (*TopResult, error) {
	if input == nil {
		input = &TopInput{}
	}
	ds, _, err := s.load(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	threshold := s.settings.DefaultThreshold
	if input.Min != nil {
		threshold = *input.Min
	}
	entities, err := hierarchy.TopEntitiesByThreshold(ds.Interns.Records, ds.Leads.Records, input.Region, threshold)
	if err != nil {
		return nil, err
	}
	if entities == nil {
		entities = []hierarchy.Entity{}
	}
	return &TopResult{
		Region:    hierarchy.RegionTitle(input.Region),
		Threshold: threshold,
		Options:   s.settings.ThresholdOptions,
		Entities:  entities,
		Filename:  TopFilename(input.Region, threshold),
	}, nil
}

func (s *serviceImpl) Regions(ctx context.Context, sessionID string) ([]string, error) {
	_, res, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	regions := res.Table.Regions()
	if regions == nil {
		regions = []string{}
	}
	return regions, nil
}

func (s *serviceImpl) Statistics(ctx context.Context, input *StatsInput) (*StatsResult, error) {
	if input == nil {
		input = &StatsInput{}
	}
	_, res, err := s.load(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	view := hierarchy.FilterByRegion(res.Table, input.Region)
	out := &StatsResult{
		Region:  hierarchy.SummarizeRegion(res.Table, input.Region),
		Levels:  hierarchy.LevelTotals(view),
		Preview: hierarchy.Preview(view, s.settings.PreviewRows),
		Report:  res.Report,
	}
	if input.Institution != "" {
		inst := hierarchy.SummarizeInstitution(res.Table, input.Region, input.Institution)
		out.Institution = &inst
	}
	return out, nil
}

func (s *serviceImpl) ExportHierarchy(ctx context.Context, input *ExportInput) (*Artifact, error) {
	if input == nil {
		input = &ExportInput{}
	}
	_, res, err := s.load(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	table, err := filtered(res.Table, input.Region, input.Min)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tabular.WriteTable(&buf, table); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to write hierarchy csv")
	}
	return s.finish(ctx, input, &Artifact{
		Filename:    HierarchyFilename,
		ContentType: csvContentType,
		Rows:        len(table),
		Data:        buf.Bytes(),
	})
}

func (s *serviceImpl) ExportTopEntities(ctx context.Context, input *ExportInput) (*Artifact, error) {
	if input == nil {
		input = &ExportInput{}
	}
	top, err := s.TopEntities(ctx, &TopInput{SessionID: input.SessionID, Region: input.Region, Min: input.Min})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tabular.WriteRanking(&buf, top.Entities); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to write ranking csv")
	}
	return s.finish(ctx, input, &Artifact{
		Filename:    top.Filename,
		ContentType: csvContentType,
		Rows:        len(top.Entities),
		Data:        buf.Bytes(),
	})
}

// finish uploads a when the caller asked for a stored export.
func (s *serviceImpl) finish(ctx context.Context, input *ExportInput, a *Artifact) (*Artifact, error) {
	if !input.Store {
		return a, nil
	}
	if s.artifacts == nil {
		return nil, errors.New(errors.ErrCodeFeatureDisabled, "export storage is not configured")
	}
	session := input.SessionID
	if session == "" {
		session = DefaultSessionID
	}
	name := fmt.Sprintf("%s/%d-%s", session, s.now().UTC().Unix(), a.Filename)
	url, err := s.artifacts.Put(ctx, name, a.Data, a.ContentType)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to store export")
	}
	a.URL = url
	a.Data = nil
	s.log(ctx).Info("export stored", logging.String("object", name), logging.Int("rows", a.Rows))
	return a, nil
}

func (s *serviceImpl) DropSession(ctx context.Context, sessionID string) error {
	if sessionID == "" || sessionID == DefaultSessionID {
		return errors.InvalidParam("only uploaded sessions can be dropped")
	}
	ds, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.memo.Invalidate(ctx, memoKey(ds, s.builder)); err != nil {
		s.log(ctx).Warn("memo invalidation failed", logging.Err(err))
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, errors.ErrCodeSessionStoreError, "failed to drop session")
	}
	return nil
}

func (s *serviceImpl) Ready(ctx context.Context) error {
	if err := s.sessions.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeSessionStoreError, "session store unavailable")
	}
	return nil
}

//Personal.AI order the ending
