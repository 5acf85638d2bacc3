package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/CohortMap/internal/application/orgchart"
	"github.com/turtacn/CohortMap/internal/domain/hierarchy"
	"github.com/turtacn/CohortMap/internal/interfaces/http/middleware"
	"github.com/turtacn/CohortMap/internal/testutil"
	"github.com/turtacn/CohortMap/pkg/errors"
)

const testSession = "6f1c2d3e-0000-4000-8000-000000000001"

type HierarchyHandlerSuite struct {
	suite.Suite
	svc     *MockService
	handler *HierarchyHandler
}

func (s *HierarchyHandlerSuite) SetupTest() {
	s.svc = new(MockService)
	s.handler = NewHierarchyHandler(s.svc, middleware.SessionConfig{CookieName: "sid", TTL: time.Hour}, 1<<20)
}

func (s *HierarchyHandlerSuite) TearDownTest() {
	s.svc.AssertExpectations(s.T())
}

func withSession(req *http.Request, id string) *http.Request {
	return req.WithContext(middleware.WithSessionID(req.Context(), id))
}

func multipartBody(files map[string]testutil.CSVFile) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, f := range files {
		part, _ := mw.CreateFormFile(field, f.Name)
		_, _ = part.Write(f.Data)
	}
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func (s *HierarchyHandlerSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// ─────────────────────────────────────────────────────────────────────────────
// Upload / Drop
// ─────────────────────────────────────────────────────────────────────────────

func (s *HierarchyHandlerSuite) TestUpload_Success() {
	body, ctype := multipartBody(map[string]testutil.CSVFile{
		FieldInterns: testutil.InternsUpload(),
		FieldLeads:   testutil.LeadsUpload(),
	})
	s.svc.On("Ingest", mock.Anything, mock.MatchedBy(func(in *orgchart.IngestInput) bool {
		return in.SessionID == testSession &&
			in.Interns.Name == "AIInterns.csv" && string(in.Interns.Data) == testutil.InternsCSV &&
			in.Leads.Name == "TechLeads.csv" && string(in.Leads.Data) == testutil.LeadsCSV
	})).Return(&orgchart.IngestResult{SessionID: testSession, Regions: []string{"Goa", "Kerala", "Telangana"}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	s.handler.Upload(w, withSession(req, testSession))

	s.Equal(http.StatusCreated, w.Code)
	s.Equal(testSession, w.Header().Get(middleware.SessionHeader))
	cookies := w.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal("sid", cookies[0].Name)
	s.Equal(testSession, cookies[0].Value)

	var res orgchart.IngestResult
	s.decode(w, &res)
	s.Equal([]string{"Goa", "Kerala", "Telangana"}, res.Regions)
}

func (s *HierarchyHandlerSuite) TestUpload_MissingField() {
	body, ctype := multipartBody(map[string]testutil.CSVFile{FieldInterns: testutil.InternsUpload()})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	s.handler.Upload(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	s.decode(w, &resp)
	s.Equal(string(errors.CodeInvalidParam), resp.Code)
	s.Equal(FieldLeads, resp.Detail)
}

func (s *HierarchyHandlerSuite) TestUpload_NotMultipart() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handler.Upload(w, req)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HierarchyHandlerSuite) TestUpload_TooLarge() {
	small := NewHierarchyHandler(s.svc, middleware.SessionConfig{CookieName: "sid"}, 64)
	big := testutil.CSVFile{Name: "AIInterns.csv", Data: bytes.Repeat([]byte("x"), 4096)}
	body, ctype := multipartBody(map[string]testutil.CSVFile{FieldInterns: big, FieldLeads: big})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	small.Upload(w, req)

	s.Equal(http.StatusRequestEntityTooLarge, w.Code)
}

func (s *HierarchyHandlerSuite) TestUpload_MissingColumnCarriesGuidance() {
	body, ctype := multipartBody(map[string]testutil.CSVFile{
		FieldInterns: testutil.InternsUpload(),
		FieldLeads:   testutil.LeadsUpload(),
	})
	s.svc.On("Ingest", mock.Anything, mock.Anything).
		Return(nil, errors.MissingColumn("TechLeads.csv", "CollegeName"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	s.handler.Upload(w, req)

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp ErrorResponse
	s.decode(w, &resp)
	s.Equal("HIER_001", resp.Code)
	s.Contains(resp.Detail, "TechLeads.csv")
	s.Contains(resp.Guidance, "CollegeName")
	s.Empty(w.Result().Cookies())
}

func (s *HierarchyHandlerSuite) TestDrop() {
	s.svc.On("DropSession", mock.Anything, testSession).Return(nil)
	w := httptest.NewRecorder()
	s.handler.Drop(w, withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/datasets", nil), testSession))

	s.Equal(http.StatusNoContent, w.Code)
	s.Require().Len(w.Result().Cookies(), 1)
	s.Equal(-1, w.Result().Cookies()[0].MaxAge)
}

func (s *HierarchyHandlerSuite) TestDrop_DefaultRejected() {
	s.svc.On("DropSession", mock.Anything, "").Return(errors.InvalidParam("only uploaded sessions can be dropped"))
	w := httptest.NewRecorder()
	s.handler.Drop(w, httptest.NewRequest(http.MethodDelete, "/api/v1/datasets", nil))
	s.Equal(http.StatusBadRequest, w.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Views
// ─────────────────────────────────────────────────────────────────────────────

func (s *HierarchyHandlerSuite) TestView_PassesFilters() {
	table := hierarchy.Table{{Label: "Program Lead", Weight: 226, Category: hierarchy.CategoryProgramLead, Region: "N/A"}}
	s.svc.On("View", mock.Anything, mock.MatchedBy(func(in *orgchart.ViewInput) bool {
		return in.SessionID == testSession && in.Region == "Kerala" && in.Min != nil && *in.Min == 50 && in.Focus == "AI Coach"
	})).Return(&orgchart.ViewResult{Region: "Kerala", Table: table}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/hierarchy?region=Kerala&min=50&focus=AI+Coach", nil)
	w := httptest.NewRecorder()
	s.handler.View(w, withSession(req, testSession))

	s.Equal(http.StatusOK, w.Code)
	var resp ViewResponse
	s.decode(w, &resp)
	s.Equal("Kerala", resp.Region)
	s.Equal(1, resp.Rows)
	s.Equal(table, resp.Table)
}

func (s *HierarchyHandlerSuite) TestView_NoDataCarriesCode() {
	s.svc.On("View", mock.Anything, mock.Anything).Return(&orgchart.ViewResult{
		Region:  "Atlantis",
		NoData:  true,
		Code:    string(errors.CodeNoDataForFilter),
		Message: "No data available for Atlantis",
	}, nil)

	w := httptest.NewRecorder()
	s.handler.View(w, httptest.NewRequest(http.MethodGet, "/api/v1/hierarchy?region=Atlantis", nil))

	s.Equal(http.StatusOK, w.Code)
	var resp ViewResponse
	s.decode(w, &resp)
	s.True(resp.NoData)
	s.Equal("HIER_003", resp.Code)
	s.Equal(0, resp.Rows)
}

func (s *HierarchyHandlerSuite) TestView_BadThreshold() {
	w := httptest.NewRecorder()
	s.handler.View(w, httptest.NewRequest(http.MethodGet, "/api/v1/hierarchy?min=lots", nil))

	s.Equal(http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	s.decode(w, &resp)
	s.Equal("HIER_004", resp.Code)
}

func (s *HierarchyHandlerSuite) TestChart_NoData() {
	chart := hierarchy.ChartSpec{Title: "AI Program Structure - Atlantis", NoData: true, Message: "No data available for Atlantis"}
	s.svc.On("View", mock.Anything, mock.MatchedBy(func(in *orgchart.ViewInput) bool {
		return in.Region == "Atlantis" && in.Highlight == "Alpha" && in.Min == nil
	})).Return(&orgchart.ViewResult{Region: "Atlantis", NoData: true, Chart: chart}, nil)

	w := httptest.NewRecorder()
	s.handler.Chart(w, httptest.NewRequest(http.MethodGet, "/api/v1/hierarchy/chart?region=Atlantis&highlight=Alpha", nil))

	s.Equal(http.StatusOK, w.Code)
	var got hierarchy.ChartSpec
	s.decode(w, &got)
	s.True(got.NoData)
	s.Equal("No data available for Atlantis", got.Message)
}

func (s *HierarchyHandlerSuite) TestRegions_DatasetNotLoaded() {
	s.svc.On("Regions", mock.Anything, "").Return(nil, errors.New(errors.CodeDatasetNotLoaded, "no dataset loaded"))
	w := httptest.NewRecorder()
	s.handler.Regions(w, httptest.NewRequest(http.MethodGet, "/api/v1/regions", nil))

	s.Equal(http.StatusConflict, w.Code)
	var resp ErrorResponse
	s.decode(w, &resp)
	s.Equal("SESS_002", resp.Code)
	s.NotEmpty(resp.Guidance)
}

func (s *HierarchyHandlerSuite) TestTop() {
	s.svc.On("TopEntities", mock.Anything, mock.MatchedBy(func(in *orgchart.TopInput) bool {
		return in.Region == "" && in.Min == nil
	})).Return(&orgchart.TopResult{Region: "All States", Threshold: 100, Filename: "top_colleges_All_States_100plus.csv"}, nil)

	w := httptest.NewRecorder()
	s.handler.Top(w, httptest.NewRequest(http.MethodGet, "/api/v1/top", nil))

	s.Equal(http.StatusOK, w.Code)
	var res orgchart.TopResult
	s.decode(w, &res)
	s.Equal("top_colleges_All_States_100plus.csv", res.Filename)
}

func (s *HierarchyHandlerSuite) TestStats() {
	s.svc.On("Statistics", mock.Anything, &orgchart.StatsInput{SessionID: testSession, Region: "Kerala", Institution: "Alpha"}).
		Return(&orgchart.StatsResult{Region: hierarchy.RegionStats{Institutions: 3}}, nil)

	w := httptest.NewRecorder()
	s.handler.Stats(w, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/stats?region=Kerala&institution=Alpha", nil), testSession))
	s.Equal(http.StatusOK, w.Code)
}

func (s *HierarchyHandlerSuite) TestStats_InternalErrorMasked() {
	s.svc.On("Statistics", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("redis: connection pool exhausted"))

	w := httptest.NewRecorder()
	s.handler.Stats(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "redis")
}

// ─────────────────────────────────────────────────────────────────────────────
// Exports
// ─────────────────────────────────────────────────────────────────────────────

func (s *HierarchyHandlerSuite) TestExportHierarchy_Download() {
	data := []byte("Label,Parent,TotalRegistrations,Level,StateInfo\n")
	s.svc.On("ExportHierarchy", mock.Anything, &orgchart.ExportInput{Region: "Goa"}).
		Return(&orgchart.Artifact{Filename: orgchart.HierarchyFilename, ContentType: "text/csv; charset=utf-8", Data: data}, nil)

	var gotKind string
	var gotStored bool
	s.handler.OnExport(func(kind string, stored bool) { gotKind, gotStored = kind, stored })

	w := httptest.NewRecorder()
	s.handler.ExportHierarchy(w, httptest.NewRequest(http.MethodGet, "/api/v1/hierarchy/export?region=Goa", nil))

	s.Equal(http.StatusOK, w.Code)
	s.Equal(`attachment; filename=sunburst_data.csv`, w.Header().Get("Content-Disposition"))
	s.Equal("text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	s.Equal(data, w.Body.Bytes())
	s.Equal("hierarchy", gotKind)
	s.False(gotStored)
}

func (s *HierarchyHandlerSuite) TestExportTop_Stored() {
	min := 50.0
	s.svc.On("ExportTopEntities", mock.Anything, &orgchart.ExportInput{Min: &min, Store: true}).
		Return(&orgchart.Artifact{Filename: "top_colleges_All_States_50plus.csv", Rows: 2, URL: "https://minio/x"}, nil)

	w := httptest.NewRecorder()
	s.handler.ExportTop(w, httptest.NewRequest(http.MethodGet, "/api/v1/top/export?min=50&store=true", nil))

	s.Equal(http.StatusOK, w.Code)
	var a orgchart.Artifact
	s.decode(w, &a)
	s.Equal("https://minio/x", a.URL)
}

func (s *HierarchyHandlerSuite) TestExportTop_QuotedRegionKeepsHeaderValid() {
	name := `top_colleges_Ka"la, North_100plus.csv`
	s.svc.On("ExportTopEntities", mock.Anything, &orgchart.ExportInput{Region: `Ka"la, North`}).
		Return(&orgchart.Artifact{Filename: name, ContentType: "text/csv; charset=utf-8", Data: []byte("Rank\n")}, nil)

	w := httptest.NewRecorder()
	s.handler.ExportTop(w, httptest.NewRequest(http.MethodGet, "/api/v1/top/export?region=Ka%22la%2C+North", nil))

	s.Equal(http.StatusOK, w.Code)
	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	s.Require().NoError(err)
	s.Equal("attachment", disposition)
	s.Equal(name, params["filename"])
}

func (s *HierarchyHandlerSuite) TestExport_StorageDisabled() {
	s.svc.On("ExportHierarchy", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeFeatureDisabled, "export storage is not configured"))

	w := httptest.NewRecorder()
	s.handler.ExportHierarchy(w, httptest.NewRequest(http.MethodGet, "/api/v1/hierarchy/export?store=1", nil))
	s.Equal(http.StatusNotImplemented, w.Code)
}

func (s *HierarchyHandlerSuite) TestExport_BadStoreFlag() {
	w := httptest.NewRecorder()
	s.handler.ExportTop(w, httptest.NewRequest(http.MethodGet, "/api/v1/top/export?store=maybe", nil))
	s.Equal(http.StatusBadRequest, w.Code)
}

func TestHierarchyHandlerSuite(t *testing.T) {
	suite.Run(t, new(HierarchyHandlerSuite))
}

//Personal.AI order the ending
