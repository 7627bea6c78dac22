package aggregateresults

import (
	"business-finder/internal/common/logger"
	"business-finder/internal/models"
)

type Input struct {
	Keyword      string          `json:"keyword"`
	Location     models.Location `json:"location"`
	LocationType string          `json:"locationType"`
}

type Output struct {
	Businesses []models.Business `json:"businesses"`
	Total      int               `json:"total"`
}

type ServiceDependencies struct {
	Places PlacesSearcher
	Logger logger.Logger
}
