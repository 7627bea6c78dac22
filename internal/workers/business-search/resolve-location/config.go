package resolvelocation

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Region        Region        `mapstructure:"region"`
}

// Region holds the qualifiers used to build geocoding fallback queries.
type Region struct {
	LocalName      string `mapstructure:"local_name"`
	EnglishName    string `mapstructure:"english_name"`
	PostalPrefix   string `mapstructure:"postal_prefix"`
	ProvincePrefix string `mapstructure:"province_prefix"`
}

func DefaultRegion() Region {
	return Region{
		LocalName:      "España",
		EnglishName:    "Spain",
		PostalPrefix:   "CP",
		ProvincePrefix: "Provincia de",
	}
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		Region:        DefaultRegion(),
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	return nil
}
