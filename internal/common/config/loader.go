// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultGeocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"
	DefaultPlacesBaseURL  = "https://maps.googleapis.com/maps/api/place"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// PLACES_API_KEY overrides places.api_key
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional overlay

	return build(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env", // test/e2e
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills values that are still empty after expansion.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Places.APIKey == "" {
		for _, name := range []string{"GOOGLE_PLACES_API_KEY", "REACT_APP_GOOGLE_PLACES_API_KEY"} {
			if val := os.Getenv(name); val != "" {
				cfg.Places.APIKey = val
				break
			}
		}
	}

	if cfg.Database.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Database.Redis.Address = val
		}
	}
	if cfg.Camunda.BrokerAddress == "" {
		if val := os.Getenv("ZEEBE_ADDRESS"); val != "" {
			cfg.Camunda.BrokerAddress = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "business-finder"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.Places.GeocodeBaseURL == "" {
		cfg.Places.GeocodeBaseURL = DefaultGeocodeBaseURL
	}
	if cfg.Places.PlacesBaseURL == "" {
		cfg.Places.PlacesBaseURL = DefaultPlacesBaseURL
	}
	if cfg.Places.Timeout == 0 {
		cfg.Places.Timeout = 10000
	}
	if cfg.Places.MaxCandidates == 0 {
		cfg.Places.MaxCandidates = 20
	}
	if cfg.Places.DetailConcurrency == 0 {
		cfg.Places.DetailConcurrency = cfg.Places.MaxCandidates
	}
	if cfg.Places.DetailTimeout == 0 {
		cfg.Places.DetailTimeout = 5000
	}
	if cfg.Places.RequestsPerSecond == 0 {
		cfg.Places.RequestsPerSecond = 50
	}
	if cfg.Places.Burst == 0 {
		cfg.Places.Burst = cfg.Places.MaxCandidates
	}
	if cfg.Places.Region == (RegionConfig{}) {
		cfg.Places.Region = RegionConfig{
			LocalName:      "España",
			EnglishName:    "Spain",
			PostalPrefix:   "CP",
			ProvincePrefix: "Provincia de",
		}
	}

	if cfg.Results.TTL == 0 {
		cfg.Results.TTL = 30 * 60 * 1000
	}
	if cfg.Results.KeyPrefix == "" {
		cfg.Results.KeyPrefix = "business-finder:results:"
	}

	if cfg.Export.Locale == "" {
		cfg.Export.Locale = "en"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "."
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Registry.Path == "" {
		cfg.Registry.Path = "configs/activity-registry.json"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields. A missing API key is
// not a load error: it is reported per request as a missing credential.
func validateConfig(cfg *Config) error {
	if cfg.Places.MaxCandidates < 0 {
		return fmt.Errorf("places.max_candidates must be >= 0")
	}
	if cfg.Places.DetailConcurrency < 0 {
		return fmt.Errorf("places.detail_concurrency must be >= 0")
	}
	if cfg.Places.RequestsPerSecond < 0 {
		return fmt.Errorf("places.requests_per_second must be >= 0")
	}
	for locType, radius := range cfg.Places.Radii {
		if radius <= 0 {
			return fmt.Errorf("places.radii.%s must be positive", locType)
		}
	}
	switch cfg.Export.Locale {
	case "en", "es":
	default:
		return fmt.Errorf("export.locale must be one of en, es")
	}
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
