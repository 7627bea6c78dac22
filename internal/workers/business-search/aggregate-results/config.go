package aggregateresults

import (
	"fmt"
	"time"

	"business-finder/internal/models"
)

// MaxRadius is the largest radius the places text search accepts, in meters.
const MaxRadius = 50000

// DefaultRadii maps each location type to a search radius in meters.
var DefaultRadii = map[models.LocationType]int{
	models.LocationTypeAddress:    5000,
	models.LocationTypePostalCode: 10000,
	models.LocationTypeCity:       20000,
	models.LocationTypeState:      50000,
	models.LocationTypeCountry:    50000,
}

type Config struct {
	Enabled           bool                        `mapstructure:"enabled"`
	MaxJobsActive     int                         `mapstructure:"max_jobs_active"`
	Timeout           time.Duration               `mapstructure:"timeout"`
	MaxCandidates     int                         `mapstructure:"max_candidates"`
	DetailConcurrency int                         `mapstructure:"detail_concurrency"`
	DetailTimeout     time.Duration               `mapstructure:"detail_timeout"`
	Radii             map[models.LocationType]int `mapstructure:"radii"`
}

func DefaultConfig() *Config {
	radii := make(map[models.LocationType]int, len(DefaultRadii))
	for k, v := range DefaultRadii {
		radii[k] = v
	}
	return &Config{
		Enabled:           true,
		MaxJobsActive:     5,
		Timeout:           60 * time.Second,
		MaxCandidates:     20,
		DetailConcurrency: 20,
		DetailTimeout:     5 * time.Second,
		Radii:             radii,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("max_candidates must be positive")
	}
	if c.DetailConcurrency <= 0 {
		return fmt.Errorf("detail_concurrency must be positive")
	}
	if c.DetailTimeout <= 0 {
		return fmt.Errorf("detail_timeout must be positive")
	}
	return nil
}

// RadiusFor returns the search radius for a location type, capped at MaxRadius.
func (c *Config) RadiusFor(locationType models.LocationType) int {
	radius, ok := c.Radii[locationType]
	if !ok || radius <= 0 {
		radius, ok = DefaultRadii[locationType]
		if !ok {
			radius = DefaultRadii[models.LocationTypePostalCode]
		}
	}
	if radius > MaxRadius {
		radius = MaxRadius
	}
	return radius
}
