package filterresults

import "business-finder/internal/models"

type Input struct {
	Businesses []models.Business `json:"businesses"`
	Filters    FilterInput       `json:"filters"`
}

type FilterInput struct {
	Name   string `json:"name,omitempty"`
	Rating string `json:"rating,omitempty"`
}

type Output struct {
	Businesses []models.Business `json:"filteredBusinesses"`
	Total      int               `json:"total"`
	Matched    int               `json:"matched"`

	// counts over the unfiltered input
	RatingBuckets map[models.RatingThreshold]int `json:"ratingBuckets"`
}
