package aggregateresults

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"business-finder/internal/common/config"
	"business-finder/internal/common/errors"
	"business-finder/internal/common/logger"
	"business-finder/internal/common/places"
	"business-finder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fake provider
// ==========================

type fakePlaces struct {
	search    *places.TextSearchResponse
	searchErr error
	details   map[string]places.Place
	failing   map[string]error
	delays    map[string]time.Duration

	mu         sync.Mutex
	lastSearch places.TextSearchRequest
	inFlight   int32
	maxFlight  int32
	detailHits int32
}

func (f *fakePlaces) TextSearch(ctx context.Context, req places.TextSearchRequest) (*places.TextSearchResponse, error) {
	f.mu.Lock()
	f.lastSearch = req
	f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.search, nil
}

func (f *fakePlaces) Details(ctx context.Context, placeID string, fields []string) (*places.DetailsResponse, error) {
	atomic.AddInt32(&f.detailHits, 1)
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		m := atomic.LoadInt32(&f.maxFlight)
		if n <= m || atomic.CompareAndSwapInt32(&f.maxFlight, m, n) {
			break
		}
	}

	if d, ok := f.delays[placeID]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.failing[placeID]; ok {
		return nil, err
	}
	p, ok := f.details[placeID]
	if !ok {
		return &places.DetailsResponse{Status: places.StatusNotFound}, nil
	}
	return &places.DetailsResponse{Status: places.StatusOK, Result: p}, nil
}

func candidate(id, name string, rating float64) places.Place {
	return places.Place{
		PlaceID:          id,
		Name:             name,
		FormattedAddress: name + " street",
		Rating:           rating,
		UserRatingsTotal: 10,
		Types:            []string{"bakery", "point_of_interest", "establishment"},
	}
}

func madrid() models.Location {
	return models.Location{Lat: 40.4251, Lng: -3.6836}
}

func newService(t *testing.T, fp *fakePlaces, mutate func(*Config)) *Service {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())
	return NewService(ServiceDependencies{Places: fp, Logger: logger.NewTestLogger(t)}, cfg)
}

// ==========================
// Aggregate
// ==========================

func TestService_Aggregate_PreservesRankOrder(t *testing.T) {
	fp := &fakePlaces{
		search: &places.TextSearchResponse{
			Status:  places.StatusOK,
			Results: []places.Place{candidate("a", "A", 4.5), candidate("b", "B", 3.8), candidate("c", "C", 4.1)},
		},
		details: map[string]places.Place{
			"a": {Name: "Bakery A", FormattedPhoneNumber: "910 000 001", URL: "https://maps.example/a"},
			"b": {Name: "Bakery B", InternationalPhoneNumber: "+34 910 000 002", Website: "https://b.es"},
			"c": {Name: "Bakery C"},
		},
		// a finishes last, c first
		delays: map[string]time.Duration{"a": 60 * time.Millisecond, "b": 30 * time.Millisecond},
	}

	svc := newService(t, fp, nil)
	got, err := svc.Aggregate(context.Background(), "bakery", madrid(), models.LocationTypePostalCode)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Bakery A", "Bakery B", "Bakery C"}, []string{got[0].Name, got[1].Name, got[2].Name})
	assert.Equal(t, "910 000 001", got[0].Phone)
	assert.Equal(t, "+34 910 000 002", got[1].Phone)
	assert.Equal(t, "https://b.es", got[1].Website)
	assert.Equal(t, "https://maps.example/a", got[0].MapsURL)
	assert.Equal(t, models.MapsURLFor("c"), got[2].MapsURL)
	assert.Equal(t, []string{"bakery"}, got[0].Categories)
	assert.Equal(t, 10000, fp.lastSearch.Radius)
	assert.Equal(t, "bakery", fp.lastSearch.Query)
}

func TestService_Aggregate_DetailFailureFallsBack(t *testing.T) {
	fp := &fakePlaces{
		search: &places.TextSearchResponse{
			Status:  places.StatusOK,
			Results: []places.Place{candidate("a", "A", 4.5), candidate("b", "B", 0)},
		},
		details: map[string]places.Place{"b": {Name: "Bakery B"}},
		failing: map[string]error{"a": stderrors.New("boom")},
	}

	svc := newService(t, fp, nil)
	got, err := svc.Aggregate(context.Background(), "bakery", madrid(), models.LocationTypeCity)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "A street", got[0].Address)
	assert.Empty(t, got[0].Phone)
	assert.Equal(t, 4.5, got[0].Rating)
	assert.Equal(t, models.MapsURLFor("a"), got[0].MapsURL)
	assert.Equal(t, "Bakery B", got[1].Name)
	assert.False(t, got[1].Rated())
	assert.Equal(t, 20000, fp.lastSearch.Radius)
}

func TestService_Aggregate_DetailTimeoutFallsBack(t *testing.T) {
	fp := &fakePlaces{
		search: &places.TextSearchResponse{
			Status:  places.StatusOK,
			Results: []places.Place{candidate("slow", "Slow", 4.0), candidate("fast", "Fast", 4.0)},
		},
		details: map[string]places.Place{"slow": {Name: "Never"}, "fast": {Name: "Fast Bakery"}},
		delays:  map[string]time.Duration{"slow": 2 * time.Second},
	}

	svc := newService(t, fp, func(c *Config) { c.DetailTimeout = 50 * time.Millisecond })

	start := time.Now()
	got, err := svc.Aggregate(context.Background(), "bakery", madrid(), models.LocationTypeAddress)

	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, got, 2)
	assert.Equal(t, "Slow", got[0].Name)
	assert.Equal(t, "Fast Bakery", got[1].Name)
	assert.Equal(t, 5000, fp.lastSearch.Radius)
}

func TestService_Aggregate_CapAndDedupe(t *testing.T) {
	results := make([]places.Place, 0, 30)
	results = append(results, candidate("p0", "P0", 4))
	for i := 0; i < 29; i++ {
		results = append(results, candidate(fmt.Sprintf("p%d", i), fmt.Sprintf("P%d", i), 4))
	}
	fp := &fakePlaces{search: &places.TextSearchResponse{Status: places.StatusOK, Results: results}}

	svc := newService(t, fp, func(c *Config) { c.DetailConcurrency = 4 })
	got, err := svc.Aggregate(context.Background(), "bakery", madrid(), models.LocationTypeCountry)

	require.NoError(t, err)
	require.Len(t, got, 20)
	ids := make(map[string]bool)
	for _, b := range got {
		assert.False(t, ids[b.ID], "duplicate %s", b.ID)
		ids[b.ID] = true
	}
	assert.Equal(t, "p0", got[0].ID)
	assert.Equal(t, "p19", got[19].ID)
	assert.EqualValues(t, 20, atomic.LoadInt32(&fp.detailHits))
	assert.LessOrEqual(t, atomic.LoadInt32(&fp.maxFlight), int32(4))
	assert.Equal(t, MaxRadius, fp.lastSearch.Radius)
}

func TestService_Aggregate_ZeroResults(t *testing.T) {
	fp := &fakePlaces{search: &places.TextSearchResponse{Status: places.StatusZeroResults}}

	got, err := newService(t, fp, nil).Aggregate(context.Background(), "bakery", madrid(), models.LocationTypeCity)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestService_Aggregate_SearchStatusFailure(t *testing.T) {
	fp := &fakePlaces{search: &places.TextSearchResponse{Status: places.StatusOverQueryLimit, ErrorMessage: "quota"}}

	_, err := newService(t, fp, nil).Aggregate(context.Background(), "bakery", madrid(), models.LocationTypeCity)

	require.Error(t, err)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSearchFailed, stdErr.Code)
	assert.Equal(t, places.StatusOverQueryLimit, stdErr.Metadata["status"])
	assert.Contains(t, stdErr.Message, places.StatusOverQueryLimit)
}

func TestService_Aggregate_TransportFailure(t *testing.T) {
	fp := &fakePlaces{searchErr: stderrors.New("dial tcp: refused")}

	_, err := newService(t, fp, nil).Aggregate(context.Background(), "bakery", madrid(), models.LocationTypeCity)

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeProviderUnavailable))
}

func TestService_Aggregate_EmptyKeyword(t *testing.T) {
	fp := &fakePlaces{}

	_, err := newService(t, fp, nil).Aggregate(context.Background(), "  ", madrid(), models.LocationTypeCity)

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
	assert.Empty(t, fp.lastSearch.Query)
}

// ==========================
// Merge
// ==========================

func TestMerge(t *testing.T) {
	open := true
	two, three := 2, 3

	c := places.Place{
		PlaceID:          "x",
		Name:             "Search Name",
		FormattedAddress: "Search Address",
		Rating:           0,
		UserRatingsTotal: 5,
		PriceLevel:       &three,
		Types:            []string{"cafe"},
	}
	d := places.Place{
		Name:             "Detail Name",
		Rating:           4.2,
		UserRatingsTotal: 40,
		PriceLevel:       &two,
		OpeningHours:     &places.OpeningHours{OpenNow: &open},
		Types:            []string{"establishment", "bakery", "cafe"},
	}

	b := merge(c, d)

	assert.Equal(t, "x", b.ID)
	assert.Equal(t, "Detail Name", b.Name)
	assert.Equal(t, "Search Address", b.Address)
	assert.Equal(t, 4.2, b.Rating)
	assert.Equal(t, 40, b.ReviewCount)
	require.NotNil(t, b.PriceLevel)
	assert.Equal(t, 2, *b.PriceLevel)
	assert.Equal(t, models.OpenStatusOpen, b.OpenStatus)
	assert.Equal(t, []string{"bakery", "cafe"}, b.Categories)

	fallback := fromCandidate(c)
	assert.Equal(t, models.OpenStatusUnknown, fallback.OpenStatus)
	require.NotNil(t, fallback.PriceLevel)
	assert.Equal(t, 3, *fallback.PriceLevel)
}

// ==========================
// Config & handler
// ==========================

func TestConfig_RadiusFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Radii[models.LocationTypeCity] = 80000
	cfg.Radii[models.LocationTypeAddress] = 0

	assert.Equal(t, MaxRadius, cfg.RadiusFor(models.LocationTypeCity))
	assert.Equal(t, 5000, cfg.RadiusFor(models.LocationTypeAddress))
	assert.Equal(t, 10000, cfg.RadiusFor(models.LocationTypePostalCode))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no candidates", mutate: func(c *Config) { c.MaxCandidates = 0 }, errMsg: "max_candidates"},
		{name: "no concurrency", mutate: func(c *Config) { c.DetailConcurrency = 0 }, errMsg: "detail_concurrency"},
		{name: "no detail timeout", mutate: func(c *Config) { c.DetailTimeout = 0 }, errMsg: "detail_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	cfg := createConfigFromAppConfig(&config.Config{
		Places: config.PlacesConfig{
			MaxCandidates:     10,
			DetailConcurrency: 3,
			DetailTimeout:     2500,
			Radii:             map[string]int{"city": 15000, "postal-code": 8000, "nowhere": 1},
		},
	}, nil)

	assert.Equal(t, 10, cfg.MaxCandidates)
	assert.Equal(t, 3, cfg.DetailConcurrency)
	assert.Equal(t, 2500*time.Millisecond, cfg.DetailTimeout)
	assert.Equal(t, 15000, cfg.RadiusFor(models.LocationTypeCity))
	assert.Equal(t, 8000, cfg.RadiusFor(models.LocationTypePostalCode))
}

func TestHandler_Execute_WithHTTPProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/textsearch/json":
			_, _ = w.Write([]byte(`{"status":"OK","results":[
				{"place_id":"a","name":"A","rating":4.6,"types":["bakery"]},
				{"place_id":"b","name":"B","rating":3.2}
			]}`))
		case "/details/json":
			id := r.URL.Query().Get("place_id")
			if id == "b" {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "OK",
				"result": map[string]interface{}{"name": "Horno A", "website": "https://horno.es"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := places.NewClient(places.Options{APIKey: "k", PlacesBaseURL: server.URL, Timeout: 2 * time.Second})
	h, err := NewHandler(HandlerOptions{Places: client, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	out, err := h.Execute(context.Background(), &Input{
		Keyword:      "panadería",
		Location:     madrid(),
		LocationType: "postal_code",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, "Horno A", out.Businesses[0].Name)
	assert.Equal(t, "https://horno.es", out.Businesses[0].Website)
	assert.Equal(t, "B", out.Businesses[1].Name)
	assert.Equal(t, 3.2, out.Businesses[1].Rating)
}

func TestHandler_Execute_InvalidLocationType(t *testing.T) {
	h, err := NewHandler(HandlerOptions{Places: &fakePlaces{}, Logger: logger.NewNoOpLogger()})
	require.NoError(t, err)

	_, err = h.Execute(context.Background(), &Input{Keyword: "x", LocationType: "moon"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestHandler_Execute_PlaceholderKeyIssuesNoRequest(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer server.Close()

	client := places.NewClient(places.Options{APIKey: "your_api_key_here", PlacesBaseURL: server.URL, Timeout: 2 * time.Second})
	h, err := NewHandler(HandlerOptions{Places: client, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	_, err = h.Execute(context.Background(), &Input{
		Keyword:      "bakery",
		Location:     madrid(),
		LocationType: "postal_code",
	})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingCredential), err.Error())
	assert.Zero(t, atomic.LoadInt32(&hits))
}
