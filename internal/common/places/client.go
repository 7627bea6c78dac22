package places

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"business-finder/internal/common/config"
	commonhttp "business-finder/internal/common/http"
	"business-finder/internal/common/logger"
	"business-finder/internal/common/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "business-finder/places"

// Client talks to the Google geocoding and places web services.
type Client struct {
	apiKey         string
	geocodeBaseURL string
	placesBaseURL  string
	language       string
	http           *commonhttp.Client
	logger         logger.Logger
}

type Options struct {
	APIKey            string
	GeocodeBaseURL    string
	PlacesBaseURL     string
	Language          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Logger            logger.Logger
}

func NewClient(opts Options) *Client {
	if opts.GeocodeBaseURL == "" {
		opts.GeocodeBaseURL = config.DefaultGeocodeBaseURL
	}
	if opts.PlacesBaseURL == "" {
		opts.PlacesBaseURL = config.DefaultPlacesBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}

	return &Client{
		apiKey:         strings.TrimSpace(opts.APIKey),
		geocodeBaseURL: opts.GeocodeBaseURL,
		placesBaseURL:  strings.TrimRight(opts.PlacesBaseURL, "/"),
		language:       opts.Language,
		http:           commonhttp.NewClient(opts.Timeout).WithRateLimit(opts.RequestsPerSecond, opts.Burst),
		logger:         opts.Logger,
	}
}

func NewClientFromConfig(cfg config.PlacesConfig, log logger.Logger) *Client {
	return NewClient(Options{
		APIKey:            cfg.APIKey,
		GeocodeBaseURL:    cfg.GeocodeBaseURL,
		PlacesBaseURL:     cfg.PlacesBaseURL,
		Language:          cfg.Language,
		Timeout:           config.GetDuration(cfg.Timeout),
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Logger:            log,
	})
}

// Ready reports a missing or placeholder credential.
func (c *Client) Ready() error {
	return CheckCredential(c.apiKey)
}

// Geocode resolves a free-form address.
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	params := url.Values{}
	params.Set("address", address)

	var resp GeocodeResponse
	if err := c.get(ctx, "geocode", c.geocodeBaseURL, params, &resp, func() string { return resp.Status }); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TextSearch runs a keyword search biased to a circle.
func (c *Client) TextSearch(ctx context.Context, req TextSearchRequest) (*TextSearchResponse, error) {
	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("location", fmt.Sprintf("%.7f,%.7f", req.Location.Lat, req.Location.Lng))
	if req.Radius > 0 {
		params.Set("radius", strconv.Itoa(req.Radius))
	}

	var resp TextSearchResponse
	if err := c.get(ctx, "text_search", c.placesBaseURL+"/textsearch/json", params, &resp, func() string { return resp.Status }); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Details fetches the requested fields for one place.
func (c *Client) Details(ctx context.Context, placeID string, fields []string) (*DetailsResponse, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}

	var resp DetailsResponse
	if err := c.get(ctx, "details", c.placesBaseURL+"/details/json", params, &resp, func() string { return resp.Status }); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, operation, endpoint string, params url.Values, out interface{}, status func() string) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "places."+operation)
	defer span.End()

	if c.language != "" {
		params.Set("language", c.language)
	}
	params.Set("key", c.apiKey)

	start := time.Now()
	err := c.http.GetJSON(ctx, endpoint+"?"+params.Encode(), out)
	metrics.ProviderRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProviderRequests.WithLabelValues(operation, "transport_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("places request failed", map[string]interface{}{
			"operation": operation,
			"error":     err.Error(),
		})
		return fmt.Errorf("places %s: %w", operation, err)
	}

	st := status()
	metrics.ProviderRequests.WithLabelValues(operation, st).Inc()
	span.SetAttributes(attribute.String("places.status", st))
	return nil
}
