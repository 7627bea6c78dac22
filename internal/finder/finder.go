// Package finder composes the location resolver and the result aggregator into
// one search operation and keeps the resulting set per session.
package finder

import (
	"context"
	"strings"
	"time"

	"business-finder/internal/common/config"
	"business-finder/internal/common/database"
	"business-finder/internal/common/errors"
	"business-finder/internal/common/logger"
	"business-finder/internal/common/observability"
	"business-finder/internal/common/places"
	"business-finder/internal/models"
	aggregateresults "business-finder/internal/workers/business-search/aggregate-results"
	exportcsv "business-finder/internal/workers/business-search/export-csv"
	filterresults "business-finder/internal/workers/business-search/filter-results"
	resolvelocation "business-finder/internal/workers/business-search/resolve-location"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultTTL = 30 * time.Minute

// Provider is the full places surface a search needs.
type Provider interface {
	resolvelocation.Geocoder
	aggregateresults.PlacesSearcher
	Ready() error
}

type Request struct {
	SessionID    string
	Keyword      string
	Location     string
	LocationType models.LocationType
}

type Options struct {
	AppConfig     *config.Config
	Provider      Provider
	Store         models.ResultSetRepository
	Observability *observability.Observability
	Logger        logger.Logger
	Clock         func() time.Time
}

type Finder struct {
	provider   Provider
	resolver   *resolvelocation.Service
	aggregator *aggregateresults.Service
	exporter   *exportcsv.Handler
	store      models.ResultSetRepository
	obs        *observability.Observability
	logger     logger.Logger
	ttl        time.Duration
	now        func() time.Time
}

func New(opts Options) (*Finder, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	store := opts.Store
	if store == nil {
		store = NewMemoryStore()
	}

	var geocoder resolvelocation.Geocoder
	var searcher aggregateresults.PlacesSearcher
	if opts.Provider != nil {
		geocoder, searcher = opts.Provider, opts.Provider
	}

	resolver, err := resolvelocation.NewHandler(resolvelocation.HandlerOptions{
		AppConfig: opts.AppConfig,
		Geocoder:  geocoder,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}
	aggregator, err := aggregateresults.NewHandler(aggregateresults.HandlerOptions{
		AppConfig: opts.AppConfig,
		Places:    searcher,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}
	exporter, err := exportcsv.NewHandler(exportcsv.HandlerOptions{
		AppConfig: opts.AppConfig,
		Logger:    log,
		Clock:     clock,
	})
	if err != nil {
		return nil, err
	}

	ttl := DefaultTTL
	if opts.AppConfig != nil && opts.AppConfig.Results.TTL > 0 {
		ttl = config.GetDuration(opts.AppConfig.Results.TTL)
	}

	return &Finder{
		provider:   opts.Provider,
		resolver:   resolver.Service(),
		aggregator: aggregator.Service(),
		exporter:   exporter,
		store:      store,
		obs:        opts.Observability,
		logger:     log,
		ttl:        ttl,
		now:        clock,
	}, nil
}

// Ready reports whether a search could be attempted right now.
func (f *Finder) Ready() error {
	if f.provider == nil {
		return errors.NewProviderUnavailableError("places", nil)
	}
	return f.provider.Ready()
}

// Search resolves the location, aggregates businesses around it and replaces
// the session's stored result set. The stored set is unfiltered.
func (f *Finder) Search(ctx context.Context, req Request) (*models.ResultSet, error) {
	start := f.now()

	ctx, span := f.obs.StartSpan(ctx, "finder.search",
		attribute.String("keyword", req.Keyword),
		attribute.String("location_type", req.LocationType.String()),
	)
	defer span.End()

	rs, err := f.search(ctx, req)
	total := 0
	status := "success"
	if err != nil {
		status = string(errors.Normalize(err).Code)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		total = len(rs.Businesses)
	}
	f.obs.RecordSearch(ctx, status, f.now().Sub(start), total)

	if err != nil {
		f.logger.Warn("search failed", map[string]interface{}{
			"keyword":      req.Keyword,
			"location":     req.Location,
			"locationType": req.LocationType.String(),
			"error":        err.Error(),
		})
		return nil, err
	}

	f.logger.Info("search completed", map[string]interface{}{
		"sessionId": rs.SessionID,
		"keyword":   rs.Keyword,
		"location":  rs.LocationInput,
		"total":     total,
		"duration":  f.now().Sub(start).String(),
	})
	return rs, nil
}

func (f *Finder) search(ctx context.Context, req Request) (*models.ResultSet, error) {
	keyword := strings.TrimSpace(req.Keyword)
	location := strings.TrimSpace(req.Location)
	if keyword == "" {
		return nil, errors.NewInvalidInputError("keyword is required")
	}
	if location == "" {
		return nil, errors.NewInvalidInputError("location is required")
	}
	if !req.LocationType.Valid() {
		return nil, errors.NewInvalidInputError("unknown location type: " + req.LocationType.String())
	}
	if err := f.Ready(); err != nil {
		return nil, err
	}

	loc, _, err := f.resolver.Resolve(ctx, location, req.LocationType)
	if err != nil {
		return nil, err
	}

	businesses, err := f.aggregator.Aggregate(ctx, keyword, *loc, req.LocationType)
	if err != nil {
		return nil, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	now := f.now().UTC()
	rs := &models.ResultSet{
		SessionID:     sessionID,
		Keyword:       keyword,
		LocationInput: location,
		LocationType:  req.LocationType,
		Location:      *loc,
		Businesses:    businesses,
		CreatedAt:     now,
		ExpiresAt:     now.Add(f.ttl),
	}
	if err := f.store.Save(ctx, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// Results returns the stored set for a session and the businesses that pass filters.
func (f *Finder) Results(ctx context.Context, sessionID string, filters models.Filters) (*models.ResultSet, []models.Business, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, nil, errors.NewInvalidInputError("session id is required")
	}
	rs, err := f.store.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return rs, filterresults.Filter(rs.Businesses, filters), nil
}

// Export renders the filtered stored set of a session as CSV.
func (f *Finder) Export(ctx context.Context, sessionID string, filters models.Filters, locale exportcsv.Locale) (*exportcsv.Output, error) {
	rs, _, err := f.Results(ctx, sessionID, models.Filters{})
	if err != nil {
		return nil, err
	}
	if locale == "" {
		locale = f.exporter.Locale()
	}
	return f.exporter.Export(rs.Businesses, filters, locale), nil
}

// NewStore picks the Redis store when an address is configured and the memory
// store otherwise. The returned close func is never nil.
func NewStore(cfg *config.Config, log logger.Logger) (models.ResultSetRepository, func() error, error) {
	noop := func() error { return nil }
	if cfg == nil || !cfg.Database.Redis.Enabled() {
		return NewMemoryStore(), noop, nil
	}

	client, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return nil, noop, errors.NewResultStoreFailedError("connect", err)
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, noop, errors.NewResultStoreFailedError("connect", err)
	}
	if log != nil {
		log.Info("using redis result store", map[string]interface{}{
			"address": cfg.Database.Redis.Address,
		})
	}
	return NewRedisStore(client, cfg.Results.KeyPrefix, config.GetDuration(cfg.Results.TTL)), client.Close, nil
}

// NewProvider builds the places client. A missing credential is reported by Ready.
func NewProvider(cfg *config.Config, log logger.Logger) Provider {
	if cfg == nil {
		return nil
	}
	return places.NewClientFromConfig(cfg.Places, log)
}
