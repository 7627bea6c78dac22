package aggregateresults

import (
	"context"
	"strings"
	"sync/atomic"

	"business-finder/internal/common/errors"
	"business-finder/internal/common/logger"
	"business-finder/internal/common/metrics"
	"business-finder/internal/common/places"
	"business-finder/internal/models"

	"golang.org/x/sync/errgroup"
)

// PlacesSearcher is the provider surface the aggregator depends on.
type PlacesSearcher interface {
	TextSearch(ctx context.Context, req places.TextSearchRequest) (*places.TextSearchResponse, error)
	Details(ctx context.Context, placeID string, fields []string) (*places.DetailsResponse, error)
}

// readiness is implemented by providers that can refuse work up front,
// such as places.Client with a missing or placeholder key.
type readiness interface {
	Ready() error
}

// genericTypes are provider types that say nothing about the business.
var genericTypes = map[string]bool{
	"point_of_interest": true,
	"establishment":     true,
}

type Service struct {
	config *Config
	places PlacesSearcher
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config: config,
		places: deps.Places,
		logger: log,
	}
}

// Aggregate runs one text search around loc and enriches every candidate with
// its details. Output order is search rank order. A failed details fetch
// yields a record built from the search fields alone.
func (s *Service) Aggregate(ctx context.Context, keyword string, loc models.Location, locationType models.LocationType) ([]models.Business, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, errors.NewInvalidInputError("keyword is required")
	}
	if s.places == nil {
		return nil, errors.NewProviderUnavailableError("text_search", nil)
	}
	if r, ok := s.places.(readiness); ok {
		if err := r.Ready(); err != nil {
			return nil, err
		}
	}

	radius := s.config.RadiusFor(locationType)
	resp, err := s.places.TextSearch(ctx, places.TextSearchRequest{
		Query:    keyword,
		Location: places.LatLng{Lat: loc.Lat, Lng: loc.Lng},
		Radius:   radius,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.NewProviderUnavailableError("text_search", err)
	}

	switch resp.Status {
	case places.StatusOK:
	case places.StatusZeroResults:
		s.logger.Info("text search returned no candidates", map[string]interface{}{
			"keyword": keyword,
			"radius":  radius,
		})
		return []models.Business{}, nil
	default:
		return nil, errors.NewSearchFailedError(resp.Status, resp.ErrorMessage)
	}

	candidates := s.candidates(resp.Results)
	slots := make([]models.Business, len(candidates))
	var fallbacks int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.DetailConcurrency)

	for i, candidate := range candidates {
		g.Go(func() error {
			detail, err := s.fetchDetails(gctx, candidate.PlaceID)
			if err != nil {
				atomic.AddInt64(&fallbacks, 1)
				metrics.DetailFallbacks.Inc()
				s.logger.Warn("details fetch failed, using search fields", map[string]interface{}{
					"placeId": candidate.PlaceID,
					"rank":    i,
					"error":   err.Error(),
				})
				slots[i] = fromCandidate(candidate)
				return nil
			}
			slots[i] = merge(candidate, *detail)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("results aggregated", map[string]interface{}{
		"keyword":    keyword,
		"radius":     radius,
		"candidates": len(candidates),
		"fallbacks":  atomic.LoadInt64(&fallbacks),
	})

	return slots, nil
}

// candidates drops repeated place ids, keeping the first rank, then applies the cap.
func (s *Service) candidates(results []places.Place) []places.Place {
	seen := make(map[string]bool, len(results))
	out := make([]places.Place, 0, len(results))
	for _, p := range results {
		if p.PlaceID != "" {
			if seen[p.PlaceID] {
				continue
			}
			seen[p.PlaceID] = true
		}
		out = append(out, p)
		if len(out) == s.config.MaxCandidates {
			break
		}
	}
	return out
}

func (s *Service) fetchDetails(ctx context.Context, placeID string) (*places.Place, error) {
	if placeID == "" {
		return nil, errors.NewInvalidInputError("candidate has no place id")
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.DetailTimeout)
	defer cancel()

	resp, err := s.places.Details(ctx, placeID, places.DetailFields)
	if err != nil {
		return nil, err
	}
	if resp.Status != places.StatusOK {
		return nil, errors.NewSearchFailedError(resp.Status, resp.ErrorMessage)
	}
	return &resp.Result, nil
}

func fromCandidate(c places.Place) models.Business {
	return merge(c, places.Place{})
}

// merge prefers detail values and falls back to the candidate's.
func merge(c, d places.Place) models.Business {
	b := models.Business{
		ID:          c.PlaceID,
		Name:        firstNonEmpty(d.Name, c.Name),
		Address:     firstNonEmpty(d.FormattedAddress, c.FormattedAddress),
		Phone:       firstNonEmpty(d.FormattedPhoneNumber, d.InternationalPhoneNumber, c.FormattedPhoneNumber, c.InternationalPhoneNumber),
		Website:     firstNonEmpty(d.Website, c.Website),
		Rating:      c.Rating,
		ReviewCount: c.UserRatingsTotal,
		PriceLevel:  c.PriceLevel,
		OpenStatus:  models.OpenStatusFrom(openNow(c)),
		MapsURL:     firstNonEmpty(d.URL, c.URL),
	}

	if b.Rating == 0 {
		b.Rating = d.Rating
	}
	if d.UserRatingsTotal > 0 {
		b.ReviewCount = d.UserRatingsTotal
	}
	if d.PriceLevel != nil {
		level := *d.PriceLevel
		b.PriceLevel = &level
	} else if b.PriceLevel != nil {
		level := *b.PriceLevel
		b.PriceLevel = &level
	}
	if now := openNow(d); now != nil {
		b.OpenStatus = models.OpenStatusFrom(now)
	}

	types := d.Types
	if len(types) == 0 {
		types = c.Types
	}
	b.Categories = categories(types)

	if b.MapsURL == "" && c.PlaceID != "" {
		b.MapsURL = models.MapsURLFor(c.PlaceID)
	}
	return b
}

func openNow(p places.Place) *bool {
	if p.OpeningHours == nil {
		return nil
	}
	return p.OpeningHours.OpenNow
}

func categories(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		if t == "" || genericTypes[t] {
			continue
		}
		out = append(out, t)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
