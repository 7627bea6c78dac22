package places

// Provider status values shared by the geocoding and places web services.
const (
	StatusOK             = "OK"
	StatusZeroResults    = "ZERO_RESULTS"
	StatusOverQueryLimit = "OVER_QUERY_LIMIT"
	StatusRequestDenied  = "REQUEST_DENIED"
	StatusInvalidRequest = "INVALID_REQUEST"
	StatusNotFound       = "NOT_FOUND"
	StatusUnknownError   = "UNKNOWN_ERROR"
)

// DetailFields is the field mask requested for every candidate.
var DetailFields = []string{
	"name",
	"formatted_address",
	"formatted_phone_number",
	"international_phone_number",
	"website",
	"url",
	"rating",
	"user_ratings_total",
	"price_level",
	"opening_hours",
	"types",
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Geometry struct {
	Location LatLng `json:"location"`
}

type GeocodeResult struct {
	FormattedAddress string   `json:"formatted_address"`
	PlaceID          string   `json:"place_id"`
	Geometry         Geometry `json:"geometry"`
	Types            []string `json:"types"`
}

type GeocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Results      []GeocodeResult `json:"results"`
}

type OpeningHours struct {
	OpenNow *bool `json:"open_now,omitempty"`
}

// Place is the union of text search and details result fields.
type Place struct {
	PlaceID                  string        `json:"place_id"`
	Name                     string        `json:"name"`
	FormattedAddress         string        `json:"formatted_address"`
	FormattedPhoneNumber     string        `json:"formatted_phone_number,omitempty"`
	InternationalPhoneNumber string        `json:"international_phone_number,omitempty"`
	Website                  string        `json:"website,omitempty"`
	URL                      string        `json:"url,omitempty"`
	Rating                   float64       `json:"rating,omitempty"`
	UserRatingsTotal         int           `json:"user_ratings_total,omitempty"`
	PriceLevel               *int          `json:"price_level,omitempty"`
	OpeningHours             *OpeningHours `json:"opening_hours,omitempty"`
	Types                    []string      `json:"types,omitempty"`
	Geometry                 *Geometry     `json:"geometry,omitempty"`
}

type TextSearchRequest struct {
	Query    string
	Location LatLng
	Radius   int // meters
}

type TextSearchResponse struct {
	Status        string  `json:"status"`
	ErrorMessage  string  `json:"error_message,omitempty"`
	Results       []Place `json:"results"`
	NextPageToken string  `json:"next_page_token,omitempty"`
}

type DetailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Result       Place  `json:"result"`
}
