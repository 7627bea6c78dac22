// internal/models/location.go
package models

import (
	"fmt"
	"strings"
)

type LocationType string

const (
	LocationTypePostalCode LocationType = "postal_code"
	LocationTypeAddress    LocationType = "address"
	LocationTypeCity       LocationType = "city"
	LocationTypeState      LocationType = "state"
	LocationTypeCountry    LocationType = "country"
)

// LocationTypes lists every supported location type in form order.
var LocationTypes = []LocationType{
	LocationTypePostalCode,
	LocationTypeAddress,
	LocationTypeCity,
	LocationTypeState,
	LocationTypeCountry,
}

var locationTypeAliases = map[string]LocationType{
	"postal_code": LocationTypePostalCode,
	"postalcode":  LocationTypePostalCode,
	"zip":         LocationTypePostalCode,
	"zipcode":     LocationTypePostalCode,
	"zip_code":    LocationTypePostalCode,
	"address":     LocationTypeAddress,
	"city":        LocationTypeCity,
	"state":       LocationTypeState,
	"province":    LocationTypeState,
	"country":     LocationTypeCountry,
}

// ParseLocationType accepts the canonical names plus a few common aliases,
// case-insensitive, with '-' or ' ' in place of '_'.
func ParseLocationType(s string) (LocationType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if lt, ok := locationTypeAliases[key]; ok {
		return lt, nil
	}
	return "", fmt.Errorf("unknown location type %q", s)
}

func (t LocationType) Valid() bool {
	for _, lt := range LocationTypes {
		if lt == t {
			return true
		}
	}
	return false
}

func (t LocationType) String() string {
	return string(t)
}

// Location is a resolved geographic point.
type Location struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	PlaceID          string  `json:"placeId,omitempty"`
	Query            string  `json:"query,omitempty"` // the variant that matched
}
