// Package config loads service configuration from layered YAML/JSON files
// and PAPERGRAPH_* environment variables, and can hot reload it in
// development.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"papergraph-backend/internal/errors"
)

// Environment names a deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
	Test        Environment = "test"
)

// Config is the complete service configuration.
type Config struct {
	Environment Environment `yaml:"environment" json:"environment" validate:"required,oneof=development staging production test"`
	PaperID     string      `yaml:"paper_id" json:"paper_id" validate:"required"`

	Server     Server     `yaml:"server" json:"server"`
	Storage    Storage    `yaml:"storage" json:"storage"`
	Extraction Extraction `yaml:"extraction" json:"extraction"`
	Logging    Logging    `yaml:"logging" json:"logging"`
	Metrics    Metrics    `yaml:"metrics" json:"metrics"`
	Tracing    Tracing    `yaml:"tracing" json:"tracing"`
	CORS       CORS       `yaml:"cors" json:"cors"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-" json:"-"`
}

// Server holds HTTP server settings.
type Server struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"gt=0"`
	MaxRequestSize  int64         `yaml:"max_request_size" json:"max_request_size" validate:"gt=0"`
}

// Storage holds snapshot persistence settings.
type Storage struct {
	Path     string `yaml:"path" json:"path" validate:"required"`
	Autosave bool   `yaml:"autosave" json:"autosave"`
}

// Extraction configures the knowledge-graph producer.
type Extraction struct {
	Provider string         `yaml:"provider" json:"provider" validate:"oneof=mock openai"`
	APIKey   string         `yaml:"api_key" json:"-"`
	BaseURL  string         `yaml:"base_url" json:"base_url" validate:"omitempty,url"`
	Model    string         `yaml:"model" json:"model"`
	Timeout  time.Duration  `yaml:"timeout" json:"timeout" validate:"gt=0"`
	Breaker  CircuitBreaker `yaml:"circuit_breaker" json:"circuit_breaker"`
}

// CircuitBreaker configures the producer circuit breaker.
type CircuitBreaker struct {
	MaxRequests      uint32        `yaml:"max_requests" json:"max_requests" validate:"min=1"`
	Interval         time.Duration `yaml:"interval" json:"interval"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
	FailureThreshold float64       `yaml:"failure_threshold" json:"failure_threshold" validate:"gt=0,lte=1"`
	MinRequests      uint32        `yaml:"min_requests" json:"min_requests" validate:"min=1"`
}

// Logging configures zap.
type Logging struct {
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace" validate:"required"`
	Path      string `yaml:"path" json:"path" validate:"startswith=/"`
}

// Tracing configures OTLP export. An empty endpoint disables tracing.
type Tracing struct {
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	ServiceName string `yaml:"service_name" json:"service_name" validate:"required"`
}

// CORS configures cross-origin access.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers"`
	MaxAge         int      `yaml:"max_age" json:"max_age" validate:"min=0"`
}

var validate = validator.New()

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Validation(errors.CodeConfigInvalid.String(), "invalid configuration").
			WithDetails(err.Error()).
			WithCause(err).
			Build()
	}
	return nil
}

// Address returns host:port for the HTTP listener.
func (s Server) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// Default returns the built-in configuration for env.
func Default(env Environment) *Config {
	cfg := &Config{
		Environment: env,
		PaperID:     "default",
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    90 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestSize:  10 * 1024 * 1024,
		},
		Storage: Storage{
			Path:     "papergraph.db",
			Autosave: true,
		},
		Extraction: Extraction{
			Provider: "mock",
			Timeout:  60 * time.Second,
			Breaker: CircuitBreaker{
				MaxRequests:      1,
				Interval:         60 * time.Second,
				Timeout:          30 * time.Second,
				FailureThreshold: 0.6,
				MinRequests:      3,
			},
		},
		Logging: Logging{Level: "info"},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "papergraph",
			Path:      "/metrics",
		},
		Tracing: Tracing{ServiceName: "papergraph-backend"},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		},
	}
	if env == Development {
		cfg.Logging.Level = "debug"
	}
	return cfg
}
