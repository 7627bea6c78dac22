package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"business-finder/internal/common/errors"
	"business-finder/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Options{
		APIKey:         "test-key",
		GeocodeBaseURL: server.URL + "/geocode/json",
		PlacesBaseURL:  server.URL + "/place",
		Timeout:        2 * time.Second,
		Logger:         logger.NewTestLogger(t),
	})
}

func TestClient_Geocode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "28001, España", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "OK",
			"results": []map[string]interface{}{{
				"formatted_address": "28001 Madrid, Spain",
				"place_id":          "geo-1",
				"geometry":          map[string]interface{}{"location": map[string]float64{"lat": 40.4251, "lng": -3.6836}},
			}},
		})
	})

	resp, err := client.Geocode(context.Background(), "28001, España")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)
	require.Len(t, resp.Results, 1)
	assert.InDelta(t, 40.4251, resp.Results[0].Geometry.Location.Lat, 1e-9)
	assert.Equal(t, "geo-1", resp.Results[0].PlaceID)
}

func TestClient_TextSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/place/textsearch/json", r.URL.Path)
		assert.Equal(t, "bakery", q.Get("query"))
		assert.Equal(t, "10000", q.Get("radius"))
		assert.Equal(t, "40.4251000,-3.6836000", q.Get("location"))

		_, _ = w.Write([]byte(`{"status":"OK","results":[{"place_id":"a","name":"Pan","rating":4.5,"user_ratings_total":12,"types":["bakery","food"]}]}`))
	})

	resp, err := client.TextSearch(context.Background(), TextSearchRequest{
		Query:    "bakery",
		Location: LatLng{Lat: 40.4251, Lng: -3.6836},
		Radius:   10000,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 4.5, resp.Results[0].Rating)
	assert.Equal(t, 12, resp.Results[0].UserRatingsTotal)
}

func TestClient_Details(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/place/details/json", r.URL.Path)
		assert.Equal(t, "a", q.Get("place_id"))
		assert.Equal(t, "name,website", q.Get("fields"))

		_, _ = w.Write([]byte(`{"status":"OK","result":{"name":"Panadería","website":"https://pan.es","price_level":2,"opening_hours":{"open_now":true}}}`))
	})

	resp, err := client.Details(context.Background(), "a", []string{"name", "website"})
	require.NoError(t, err)
	assert.Equal(t, "Panadería", resp.Result.Name)
	require.NotNil(t, resp.Result.PriceLevel)
	assert.Equal(t, 2, *resp.Result.PriceLevel)
	require.NotNil(t, resp.Result.OpeningHours)
	require.NotNil(t, resp.Result.OpeningHours.OpenNow)
	assert.True(t, *resp.Result.OpeningHours.OpenNow)
}

func TestClient_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Geocode(context.Background(), "x")
	assert.Error(t, err)
}

func TestClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Geocode(ctx, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckCredential(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid key", key: "AIzaSyExample", wantErr: false},
		{name: "empty", key: "", wantErr: true},
		{name: "whitespace", key: "   ", wantErr: true},
		{name: "spanish placeholder", key: "tu_api_key_aqui", wantErr: true},
		{name: "english placeholder", key: "your_api_key_here", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCredential(tt.key)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeMissingCredential))
		})
	}
}
