package resolvelocation

import (
	"context"
	"strings"

	"business-finder/internal/common/errors"
	"business-finder/internal/common/logger"
	"business-finder/internal/common/metrics"
	"business-finder/internal/common/places"
	"business-finder/internal/models"
)

// Geocoder is the provider call the resolver depends on.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*places.GeocodeResponse, error)
}

// readiness is implemented by providers that can refuse work up front,
// such as places.Client with a missing or placeholder key.
type readiness interface {
	Ready() error
}

type Service struct {
	config   *Config
	geocoder Geocoder
	logger   logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config:   config,
		geocoder: deps.Geocoder,
		logger:   log,
	}
}

// Variants returns the geocoding queries for a location in the order they are tried.
func (s *Service) Variants(location string, locationType models.LocationType) []string {
	q := strings.TrimSpace(location)
	if q == "" {
		return nil
	}
	r := s.config.Region

	var out []string
	out = append(out, q)

	switch locationType {
	case models.LocationTypeCountry:
		// a country name needs no qualifier
	case models.LocationTypePostalCode:
		out = append(out, qualify(q, r.LocalName), qualify(q, r.EnglishName))
		if r.PostalPrefix != "" {
			out = append(out, qualify(r.PostalPrefix+" "+q, r.LocalName))
		}
	case models.LocationTypeState:
		out = append(out, qualify(q, r.LocalName), qualify(q, r.EnglishName))
		if r.ProvincePrefix != "" {
			out = append(out, qualify(r.ProvincePrefix+" "+q, r.LocalName))
		}
	default:
		out = append(out, qualify(q, r.LocalName), qualify(q, r.EnglishName))
	}

	return dedupe(out)
}

func qualify(q, region string) string {
	if region == "" {
		return q
	}
	return q + ", " + region
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Resolve tries each variant in order and returns the first usable point.
// It returns the number of provider queries issued alongside the result.
func (s *Service) Resolve(ctx context.Context, location string, locationType models.LocationType) (*models.Location, int, error) {
	if strings.TrimSpace(location) == "" {
		return nil, 0, errors.NewInvalidInputError("location is required")
	}
	if !locationType.Valid() {
		return nil, 0, errors.NewInvalidInputError("unknown location type: " + string(locationType))
	}
	if s.geocoder == nil {
		return nil, 0, errors.NewProviderUnavailableError("geocode", nil)
	}
	if r, ok := s.geocoder.(readiness); ok {
		if err := r.Ready(); err != nil {
			return nil, 0, err
		}
	}

	variants := s.Variants(location, locationType)
	attempts := 0
	defer func() { metrics.GeocodeAttempts.Observe(float64(attempts)) }()

	for _, query := range variants {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}

		attempts++
		resp, err := s.geocoder.Geocode(ctx, query)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, attempts, ctxErr
			}
			s.logger.Debug("geocode attempt failed", map[string]interface{}{
				"query":   query,
				"attempt": attempts,
				"error":   err.Error(),
			})
			continue
		}

		if resp.Status != places.StatusOK || len(resp.Results) == 0 {
			s.logger.Debug("geocode attempt returned no usable result", map[string]interface{}{
				"query":   query,
				"attempt": attempts,
				"status":  resp.Status,
			})
			continue
		}

		first := resp.Results[0]
		s.logger.Info("location resolved", map[string]interface{}{
			"query":    query,
			"attempts": attempts,
			"lat":      first.Geometry.Location.Lat,
			"lng":      first.Geometry.Location.Lng,
		})
		return &models.Location{
			Lat:              first.Geometry.Location.Lat,
			Lng:              first.Geometry.Location.Lng,
			FormattedAddress: first.FormattedAddress,
			PlaceID:          first.PlaceID,
			Query:            query,
		}, attempts, nil
	}

	return nil, attempts, errors.NewLocationNotFoundError(strings.TrimSpace(location), string(locationType), attempts)
}
