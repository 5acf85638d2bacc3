package handlers

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/turtacn/CohortMap/internal/application/orgchart"
	"github.com/turtacn/CohortMap/internal/domain/hierarchy"
	"github.com/turtacn/CohortMap/internal/interfaces/http/middleware"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// Multipart field names of the dataset upload.
const (
	FieldInterns = "interns"
	FieldLeads   = "leads"
)

// DefaultMaxUploadSize bounds the multipart body when none is configured.
const DefaultMaxUploadSize int64 = 32 << 20

// HierarchyHandler serves dataset upload and every hierarchy view.
type HierarchyHandler struct {
	svc           orgchart.Service
	session       middleware.SessionConfig
	maxUploadSize int64
	onExport      func(kind string, stored bool)
}

// NewHierarchyHandler creates a HierarchyHandler.
func NewHierarchyHandler(svc orgchart.Service, session middleware.SessionConfig, maxUploadSize int64) *HierarchyHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &HierarchyHandler{svc: svc, session: session, maxUploadSize: maxUploadSize}
}

// OnExport registers a callback for every successful export.
func (h *HierarchyHandler) OnExport(fn func(kind string, stored bool)) { h.onExport = fn }

func sessionID(r *http.Request) string {
	return middleware.SessionIDFromContext(r.Context())
}

// ViewResponse is the body of GET /hierarchy.
type ViewResponse struct {
	Region  string          `json:"region"`
	NoData  bool            `json:"no_data"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Rows    int             `json:"rows"`
	Table   hierarchy.Table `json:"table"`
}

// RegionsResponse is the body of GET /regions.
type RegionsResponse struct {
	Regions []string `json:"regions"`
}

// Upload handles POST /datasets with the intern and lead CSVs as multipart
// files.  The caller's session is replaced or a new one is started.
func (h *HierarchyHandler) Upload(w http.ResponseWriter, r *http.Request) {
	tooLarge := errors.New(errors.ErrCodePayloadTooLarge, "upload too large").
		WithDetail("limit " + strconv.FormatInt(h.maxUploadSize, 10) + " bytes")
	if r.ContentLength > h.maxUploadSize {
		writeAppError(w, r, tooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeAppError(w, r, tooLarge)
			return
		}
		writeAppError(w, r, errors.InvalidParam("expected a multipart form").WithCause(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	interns, err := formFile(r.MultipartForm, FieldInterns)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	leads, err := formFile(r.MultipartForm, FieldLeads)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	res, err := h.svc.Ingest(r.Context(), &orgchart.IngestInput{
		SessionID: sessionID(r),
		Interns:   interns,
		Leads:     leads,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	middleware.SetSessionCookie(w, h.session, res.SessionID)
	w.Header().Set(middleware.SessionHeader, res.SessionID)
	writeJSON(w, http.StatusCreated, res)
}

func formFile(form *multipart.Form, field string) (orgchart.Upload, error) {
	files := form.File[field]
	if len(files) == 0 {
		return orgchart.Upload{}, errors.InvalidParam("missing file field").WithDetail(field)
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return orgchart.Upload{}, errors.Wrap(err, errors.CodeUnparsableInput, "cannot open upload").WithDetail(fh.Filename)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return orgchart.Upload{}, errors.Wrap(err, errors.CodeUnparsableInput, "cannot read upload").WithDetail(fh.Filename)
	}
	return orgchart.Upload{Name: fh.Filename, Data: data}, nil
}

// Drop handles DELETE /datasets.
func (h *HierarchyHandler) Drop(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DropSession(r.Context(), sessionID(r)); err != nil {
		writeAppError(w, r, err)
		return
	}
	middleware.ClearSessionCookie(w, h.session)
	w.WriteHeader(http.StatusNoContent)
}

func (h *HierarchyHandler) viewInput(r *http.Request) (*orgchart.ViewInput, error) {
	min, err := parseThreshold(r, "min")
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	return &orgchart.ViewInput{
		SessionID: sessionID(r),
		Region:    q.Get("region"),
		Min:       min,
		Focus:     q.Get("focus"),
		Highlight: q.Get("highlight"),
	}, nil
}

// View handles GET /hierarchy?region=&min=&focus=.
func (h *HierarchyHandler) View(w http.ResponseWriter, r *http.Request) {
	in, err := h.viewInput(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	res, err := h.svc.View(r.Context(), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ViewResponse{
		Region:  res.Region,
		NoData:  res.NoData,
		Code:    res.Code,
		Message: res.Message,
		Rows:    len(res.Table),
		Table:   res.Table,
	})
}

// Chart handles GET /hierarchy/chart?region=&min=&focus=&highlight=.
func (h *HierarchyHandler) Chart(w http.ResponseWriter, r *http.Request) {
	in, err := h.viewInput(r)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	res, err := h.svc.View(r.Context(), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Chart)
}

// Regions handles GET /regions.
func (h *HierarchyHandler) Regions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.svc.Regions(r.Context(), sessionID(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RegionsResponse{Regions: regions})
}

// Top handles GET /top?region=&min=.
func (h *HierarchyHandler) Top(w http.ResponseWriter, r *http.Request) {
	min, err := parseThreshold(r, "min")
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	res, err := h.svc.TopEntities(r.Context(), &orgchart.TopInput{
		SessionID: sessionID(r),
		Region:    r.URL.Query().Get("region"),
		Min:       min,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Stats handles GET /stats?region=&institution=.
func (h *HierarchyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.Statistics(r.Context(), &orgchart.StatsInput{
		SessionID:   sessionID(r),
		Region:      q.Get("region"),
		Institution: q.Get("institution"),
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ExportHierarchy handles GET /hierarchy/export?region=&min=&store=.
func (h *HierarchyHandler) ExportHierarchy(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "hierarchy", h.svc.ExportHierarchy)
}

// ExportTop handles GET /top/export?region=&min=&store=.
func (h *HierarchyHandler) ExportTop(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "top", h.svc.ExportTopEntities)
}

type exportFunc func(ctx context.Context, in *orgchart.ExportInput) (*orgchart.Artifact, error)

func (h *HierarchyHandler) export(w http.ResponseWriter, r *http.Request, kind string, fn exportFunc) {
	min, err := parseThreshold(r, "min")
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	store, err := parseBool(r, "store")
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	a, err := fn(r.Context(), &orgchart.ExportInput{
		SessionID: sessionID(r),
		Region:    r.URL.Query().Get("region"),
		Min:       min,
		Store:     store,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	if h.onExport != nil {
		h.onExport(kind, store)
	}
	if store {
		writeJSON(w, http.StatusOK, a)
		return
	}
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition(a.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}

// contentDisposition formats an attachment header, quoting or encoding the
// file name as needed.
func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

//Personal.AI order the ending
