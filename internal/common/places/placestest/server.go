// Package placestest serves canned geocoding and places responses over httptest.
package placestest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"business-finder/internal/common/logger"
	"business-finder/internal/common/places"
)

// Fixture is the provider state a Server answers from. Unknown geocode
// queries answer ZERO_RESULTS and unknown place IDs answer NOT_FOUND.
type Fixture struct {
	Geocode    map[string]places.GeocodeResponse
	TextSearch places.TextSearchResponse
	Details    map[string]places.DetailsResponse
}

type Server struct {
	*httptest.Server

	mu             sync.Mutex
	fixture        Fixture
	geocodeQueries []string
	textSearches   int
	detailCalls    int
}

func NewServer(t testing.TB, fixture Fixture) *Server {
	t.Helper()
	s := &Server{fixture: fixture}

	mux := http.NewServeMux()
	mux.HandleFunc("/geocode/json", s.geocode)
	mux.HandleFunc("/place/textsearch/json", s.textSearch)
	mux.HandleFunc("/place/details/json", s.details)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Options returns client options pointing at the server.
func (s *Server) Options(t testing.TB) places.Options {
	return places.Options{
		APIKey:         "test-key",
		GeocodeBaseURL: s.URL + "/geocode/json",
		PlacesBaseURL:  s.URL + "/place",
		Timeout:        2 * time.Second,
		Logger:         logger.NewTestLogger(t),
	}
}

func (s *Server) Client(t testing.TB) *places.Client {
	return places.NewClient(s.Options(t))
}

func (s *Server) GeocodeQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.geocodeQueries...)
}

func (s *Server) TextSearches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textSearches
}

func (s *Server) DetailCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailCalls
}

func (s *Server) geocode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("address")

	s.mu.Lock()
	s.geocodeQueries = append(s.geocodeQueries, query)
	resp, ok := s.fixture.Geocode[query]
	s.mu.Unlock()

	if !ok {
		resp = places.GeocodeResponse{Status: places.StatusZeroResults}
	}
	writeJSON(w, resp)
}

func (s *Server) textSearch(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.textSearches++
	resp := s.fixture.TextSearch
	s.mu.Unlock()

	writeJSON(w, resp)
}

func (s *Server) details(w http.ResponseWriter, r *http.Request) {
	placeID := r.URL.Query().Get("place_id")

	s.mu.Lock()
	s.detailCalls++
	resp, ok := s.fixture.Details[placeID]
	s.mu.Unlock()

	if !ok {
		resp = places.DetailsResponse{Status: places.StatusNotFound}
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

// Bakery is the Madrid 28001 scenario: the bare postal code does not geocode,
// the "28001, España" variant does, and the search returns three bakeries of
// which the third has no details.
func Bakery() Fixture {
	return Fixture{
		Geocode: map[string]places.GeocodeResponse{
			"28001, España": {
				Status: places.StatusOK,
				Results: []places.GeocodeResult{{
					FormattedAddress: "28001 Madrid, Spain",
					PlaceID:          "geo-28001",
					Geometry:         places.Geometry{Location: places.LatLng{Lat: 40.4251, Lng: -3.6836}},
				}},
			},
		},
		TextSearch: places.TextSearchResponse{
			Status: places.StatusOK,
			Results: []places.Place{
				{PlaceID: "bk-1", Name: "Panadería Serrano", FormattedAddress: "Calle de Serrano 10, Madrid", Rating: 4.6, UserRatingsTotal: 210, Types: []string{"bakery", "food", "point_of_interest", "establishment"}},
				{PlaceID: "bk-2", Name: "Horno Goya", FormattedAddress: "Calle de Goya 25, Madrid", Rating: 3.8, UserRatingsTotal: 54, Types: []string{"bakery", "store"}},
				{PlaceID: "bk-3", Name: "Pan Velázquez", FormattedAddress: "Calle de Velázquez 40, Madrid", Rating: 4.1, UserRatingsTotal: 98, Types: []string{"bakery"}},
			},
		},
		Details: map[string]places.DetailsResponse{
			"bk-1": {Status: places.StatusOK, Result: places.Place{
				PlaceID: "bk-1", Name: "Panadería Serrano", FormattedAddress: "Calle de Serrano 10, 28001 Madrid, Spain",
				FormattedPhoneNumber: "910 00 00 01", Website: "https://panaderiaserrano.es",
				URL: "https://maps.google.com/?cid=1001", Rating: 4.6, UserRatingsTotal: 212,
				PriceLevel: intPtr(1), OpeningHours: &places.OpeningHours{OpenNow: boolPtr(true)},
				Types: []string{"bakery", "food", "point_of_interest", "establishment"},
			}},
			"bk-2": {Status: places.StatusOK, Result: places.Place{
				PlaceID: "bk-2", Name: "Horno Goya", FormattedAddress: "Calle de Goya 25, 28001 Madrid, Spain",
				InternationalPhoneNumber: "+34 910 00 00 02", Rating: 3.8, UserRatingsTotal: 54,
				OpeningHours: &places.OpeningHours{OpenNow: boolPtr(false)},
				Types:        []string{"bakery", "store"},
			}},
		},
	}
}
