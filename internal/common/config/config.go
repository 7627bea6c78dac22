// internal/common/config/config.go
package config

import "fmt"

// Config is the root configuration for the business finder services.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Server   ServerConfig            `mapstructure:"server"`
	Places   PlacesConfig            `mapstructure:"places"`
	Results  ResultsConfig           `mapstructure:"results"`
	Export   ExportConfig            `mapstructure:"export"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Registry RegistryConfig          `mapstructure:"registry"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

// App metadata
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// PlacesConfig configures the geocoding and places provider.
type PlacesConfig struct {
	APIKey            string         `mapstructure:"api_key"`
	GeocodeBaseURL    string         `mapstructure:"geocode_base_url"`
	PlacesBaseURL     string         `mapstructure:"places_base_url"`
	Language          string         `mapstructure:"language"`
	Timeout           int            `mapstructure:"timeout"` // milliseconds
	MaxCandidates     int            `mapstructure:"max_candidates"`
	DetailConcurrency int            `mapstructure:"detail_concurrency"`
	DetailTimeout     int            `mapstructure:"detail_timeout"` // milliseconds
	RequestsPerSecond float64        `mapstructure:"requests_per_second"`
	Burst             int            `mapstructure:"burst"`
	Radii             map[string]int `mapstructure:"radii"` // meters, keyed by location type
	Region            RegionConfig   `mapstructure:"region"`
}

// RegionConfig holds the qualifiers appended to geocoding fallback queries.
type RegionConfig struct {
	LocalName      string `mapstructure:"local_name"`
	EnglishName    string `mapstructure:"english_name"`
	PostalPrefix   string `mapstructure:"postal_prefix"`
	ProvincePrefix string `mapstructure:"province_prefix"`
}

type ResultsConfig struct {
	TTL       int    `mapstructure:"ttl"` // milliseconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

type ExportConfig struct {
	Locale string `mapstructure:"locale"`
	Dir    string `mapstructure:"dir"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// Per-worker config
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// Logging
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// RadiusFor returns the configured search radius for a location type, or 0 when unset.
func (p PlacesConfig) RadiusFor(locationType string) int {
	if p.Radii == nil {
		return 0
	}
	return p.Radii[locationType]
}

func (p PlacesConfig) String() string {
	return fmt.Sprintf("places{geocode=%s places=%s maxCandidates=%d detailConcurrency=%d}",
		p.GeocodeBaseURL, p.PlacesBaseURL, p.MaxCandidates, p.DetailConcurrency)
}
