// internal/models/business.go
package models

import (
	"fmt"
	"strings"
)

type OpenStatus string

const (
	OpenStatusOpen    OpenStatus = "open"
	OpenStatusClosed  OpenStatus = "closed"
	OpenStatusUnknown OpenStatus = "unknown"
)

// OpenStatusFrom maps the provider's optional open_now flag.
func OpenStatusFrom(openNow *bool) OpenStatus {
	switch {
	case openNow == nil:
		return OpenStatusUnknown
	case *openNow:
		return OpenStatusOpen
	default:
		return OpenStatusClosed
	}
}

// Business is one enriched search result. A zero Rating means unrated.
type Business struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	Phone       string     `json:"phone,omitempty"`
	Website     string     `json:"website,omitempty"`
	Rating      float64    `json:"rating"`
	ReviewCount int        `json:"reviewCount"`
	PriceLevel  *int       `json:"priceLevel,omitempty"`
	OpenStatus  OpenStatus `json:"openStatus"`
	Categories  []string   `json:"categories,omitempty"`
	MapsURL     string     `json:"mapsUrl"`
}

func (b Business) Rated() bool {
	return b.Rating > 0
}

// MapsURLFor builds the fallback map link for a place id.
func MapsURLFor(placeID string) string {
	return "https://www.google.com/maps/place/?q=place_id:" + placeID
}

type RatingThreshold string

const (
	RatingAny   RatingThreshold = ""
	Rating3     RatingThreshold = "3+"
	Rating3Half RatingThreshold = "3.5+"
	Rating4     RatingThreshold = "4+"
)

// ParseRatingThreshold accepts "", "all", "3+", "3.5+", "4+".
func ParseRatingThreshold(s string) (RatingThreshold, error) {
	switch t := RatingThreshold(strings.TrimSpace(s)); t {
	case RatingAny, Rating3, Rating3Half, Rating4:
		return t, nil
	case "all", "any":
		return RatingAny, nil
	}
	return "", fmt.Errorf("unknown rating threshold %q (want 3+, 3.5+ or 4+)", s)
}

// Min returns the lowest rating that passes the threshold.
func (t RatingThreshold) Min() float64 {
	switch t {
	case Rating3:
		return 3
	case Rating3Half:
		return 3.5
	case Rating4:
		return 4
	}
	return 0
}

// Filters narrows a result set for display and export.
type Filters struct {
	Name   string          `json:"name,omitempty"`
	Rating RatingThreshold `json:"rating,omitempty"`
}
