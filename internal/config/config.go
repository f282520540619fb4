package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Service   *svcConfig
	Analysis  *analysisConfig
	Lifecycle *lifecycleConfig
}

type svcConfig struct {
	Address        string    `envconfig:"RVSUMMARY_ADDRESS" default:":8080" validate:"required"`
	MetricsAddress string    `envconfig:"RVSUMMARY_METRICS_ADDRESS" default:":8081"`
	LogLevel       string    `envconfig:"RVSUMMARY_LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	MaxUploadMiB   int64     `envconfig:"RVSUMMARY_MAX_UPLOAD_MIB" default:"256" validate:"min=1"`
	LatencyBuckets []float64 `envconfig:"RVSUMMARY_LATENCY_BUCKETS" default:"5,25,100,500,1000"`
	AllowedOrigins []string  `envconfig:"RVSUMMARY_ALLOWED_ORIGINS" default:"*"`
	EventsOutput   string    `envconfig:"RVSUMMARY_EVENTS_OUTPUT" default:"" validate:"omitempty,oneof=log stdout"`
	EventsQueue    int       `envconfig:"RVSUMMARY_EVENTS_QUEUE" default:"100" validate:"min=1"`
}

type analysisConfig struct {
	TopVMs         int `envconfig:"RVSUMMARY_TOP_VMS" default:"10" validate:"min=1"`
	HistogramLimit int `envconfig:"RVSUMMARY_HISTOGRAM_LIMIT" default:"8" validate:"min=1"`
	MaxFiles       int `envconfig:"RVSUMMARY_MAX_FILES" default:"10" validate:"min=1"`
}

type lifecycleConfig struct {
	WarningMonths           int    `envconfig:"RVSUMMARY_WARNING_MONTHS" default:"6" validate:"min=0,max=120"`
	SupportMode             string `envconfig:"RVSUMMARY_SUPPORT_MODE" default:"standard" validate:"oneof=standard extended"`
	ForecastIncrementMonths int    `envconfig:"RVSUMMARY_FORECAST_INCREMENT_MONTHS" default:"6" validate:"min=1,max=120"`
	ForecastSteps           int    `envconfig:"RVSUMMARY_FORECAST_STEPS" default:"3" validate:"min=1,max=40"`
	DataFile                string `envconfig:"RVSUMMARY_LIFECYCLE_FILE" default:""`
}

func New() (*Config, error) {
	if singleConfig == nil {
		cfg, err := Load()
		if err != nil {
			return nil, err
		}
		singleConfig = cfg
	}
	return singleConfig, nil
}

// Load reads the environment into a fresh Config and validates it.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	v := validator.New()
	for _, section := range []any{c.Service, c.Analysis, c.Lifecycle} {
		if err := v.Struct(section); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return nil
}
