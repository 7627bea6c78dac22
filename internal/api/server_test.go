package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"business-finder/internal/common/errors"
	"business-finder/internal/common/logger"
	"business-finder/internal/common/places/placestest"
	"business-finder/internal/finder"
	"business-finder/internal/models"
	exportcsv "business-finder/internal/workers/business-search/export-csv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBakeryServer(t *testing.T) *Server {
	t.Helper()
	provider := placestest.NewServer(t, placestest.Bakery())
	f, err := finder.New(finder.Options{
		Provider: provider.Client(t),
		Logger:   logger.NewTestLogger(t),
		Clock:    func() time.Time { return time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return NewServer(Options{Finder: f, Logger: logger.NewTestLogger(t)})
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ==========================
// Searches
// ==========================

func TestCreateSearch_FilteredResponse(t *testing.T) {
	s := newBakeryServer(t)

	rec := do(t, s, http.MethodPost, "/api/searches",
		`{"keyword":"bakery","location":"28001","locationType":"postal_code","sessionId":"s1","filters":{"rating":"4+"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Matched)
	require.Len(t, resp.Businesses, 2)
	assert.Equal(t, "bk-1", resp.Businesses[0].ID)
	assert.Equal(t, "bk-3", resp.Businesses[1].ID)
	assert.InDelta(t, 40.4251, resp.Location.Lat, 1e-9)
}

func TestGetSearch_Refilters(t *testing.T) {
	s := newBakeryServer(t)
	rec := do(t, s, http.MethodPost, "/api/searches",
		`{"keyword":"bakery","location":"28001","locationType":"zip","sessionId":"s1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/searches/s1?name=goya", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Businesses, 1)
	assert.Equal(t, "Horno Goya", resp.Businesses[0].Name)
}

func TestExportSearch(t *testing.T) {
	s := newBakeryServer(t)
	rec := do(t, s, http.MethodPost, "/api/searches",
		`{"keyword":"bakery","location":"28001","locationType":"postal_code","sessionId":"s1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/searches/s1/export?rating=4%2B&locale=es", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="negocios_2026-03-09.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(rec.Body.String(), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], `"Nombre"`))
	assert.True(t, strings.HasPrefix(lines[1], `"Panadería Serrano"`))
}

func TestCreateSearch_ValidationErrors(t *testing.T) {
	s := newBakeryServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"missing keyword", `{"location":"28001","locationType":"postal_code"}`},
		{"empty location", `{"keyword":"bakery","location":"","locationType":"postal_code"}`},
		{"unknown field", `{"keyword":"bakery","location":"28001","locationType":"postal_code","radius":5}`},
		{"bad rating", `{"keyword":"bakery","location":"28001","locationType":"postal_code","filters":{"rating":"5+"}}`},
		{"unknown location type", `{"keyword":"bakery","location":"28001","locationType":"galaxy"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/searches", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, string(errors.ErrCodeInvalidInput), decodeError(t, rec).Code)
		})
	}
}

func TestCreateSearch_LocationNotFound(t *testing.T) {
	s := newBakeryServer(t)

	rec := do(t, s, http.MethodPost, "/api/searches",
		`{"keyword":"bakery","location":"00000","locationType":"postal_code"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(errors.ErrCodeLocationNotFound), decodeError(t, rec).Code)
}

func TestGetSearch_UnknownSession(t *testing.T) {
	s := newBakeryServer(t)

	rec := do(t, s, http.MethodGet, "/api/searches/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(errors.ErrCodeResultsNotFound), decodeError(t, rec).Code)

	rec = do(t, s, http.MethodGet, "/api/searches/nope/export?locale=fr", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==========================
// Error mapping
// ==========================

type stubFinder struct {
	err error
}

func (f *stubFinder) Search(context.Context, finder.Request) (*models.ResultSet, error) {
	return nil, f.err
}

func (f *stubFinder) Results(context.Context, string, models.Filters) (*models.ResultSet, []models.Business, error) {
	return nil, nil, f.err
}

func (f *stubFinder) Export(context.Context, string, models.Filters, exportcsv.Locale) (*exportcsv.Output, error) {
	return nil, f.err
}

func (f *stubFinder) Ready() error {
	return f.err
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{errors.NewMissingCredentialError("no key"), http.StatusServiceUnavailable},
		{errors.NewProviderUnavailableError("geocode", nil), http.StatusServiceUnavailable},
		{errors.NewSearchFailedError("REQUEST_DENIED", "denied"), http.StatusBadGateway},
		{errors.NewResultStoreFailedError("get", context.Canceled), http.StatusInternalServerError},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		code := string(errors.Normalize(tt.err).Code)
		t.Run(code, func(t *testing.T) {
			s := NewServer(Options{Finder: &stubFinder{err: tt.err}, Logger: logger.NewTestLogger(t)})

			rec := do(t, s, http.MethodPost, "/api/searches",
				`{"keyword":"bakery","location":"28001","locationType":"postal_code"}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, code, decodeError(t, rec).Code)
		})
	}
}

func TestSearchFailedMessage(t *testing.T) {
	s := NewServer(Options{Finder: &stubFinder{err: errors.NewSearchFailedError("OVER_QUERY_LIMIT", "")}})

	rec := do(t, s, http.MethodGet, "/api/searches/s1", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Business search failed: OVER_QUERY_LIMIT", decodeError(t, rec).Message)
}

// ==========================
// Probes
// ==========================

func TestHealthAndReady(t *testing.T) {
	s := NewServer(Options{Finder: &stubFinder{}})

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/metrics", "").Code)

	s = NewServer(Options{Finder: &stubFinder{err: errors.NewMissingCredentialError("no key")}})
	rec := do(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, string(errors.ErrCodeMissingCredential), decodeError(t, rec).Code)
}

func TestUnknownRoute(t *testing.T) {
	s := NewServer(Options{Finder: &stubFinder{}})

	rec := do(t, s, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}
