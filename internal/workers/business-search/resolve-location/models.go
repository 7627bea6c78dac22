package resolvelocation

import (
	"business-finder/internal/common/logger"
	"business-finder/internal/models"
)

type Input struct {
	Location     string `json:"location"`
	LocationType string `json:"locationType"`
}

type Output struct {
	Location models.Location `json:"location"`
	Attempts int             `json:"geocodeAttempts"`
}

type ServiceDependencies struct {
	Geocoder Geocoder
	Logger   logger.Logger
}
