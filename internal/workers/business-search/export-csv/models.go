package exportcsv

import "business-finder/internal/models"

type Input struct {
	Businesses []models.Business `json:"businesses"`
	Filters    *models.Filters   `json:"filters,omitempty"`
	Locale     string            `json:"locale,omitempty"`
}

type Output struct {
	CSV      string `json:"csv"`
	FileName string `json:"fileName"`
	Rows     int    `json:"rows"`
}
