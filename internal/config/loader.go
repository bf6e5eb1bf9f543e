package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"papergraph-backend/internal/errors"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "PAPERGRAPH_"

// FileLoader decodes one configuration file format.
type FileLoader interface {
	Load(reader io.Reader, target interface{}) error
	Extension() string
}

// YAMLLoader decodes .yaml files.
type YAMLLoader struct{}

func (YAMLLoader) Load(r io.Reader, target interface{}) error {
	err := yaml.NewDecoder(r).Decode(target)
	if err == io.EOF {
		return nil
	}
	return err
}

func (YAMLLoader) Extension() string { return "yaml" }

// JSONLoader decodes .json files.
type JSONLoader struct{}

func (JSONLoader) Load(r io.Reader, target interface{}) error {
	return json.NewDecoder(r).Decode(target)
}

func (JSONLoader) Extension() string { return "json" }

// Loader layers configuration sources, lowest priority first:
//  1. built-in defaults
//  2. base.{yaml,json}
//  3. <environment>.{yaml,json}
//  4. local.{yaml,json}, development only
//  5. PAPERGRAPH_* environment variables
type Loader struct {
	basePath    string
	environment Environment
	lookupEnv   func(string) (string, bool)
	logger      *zap.Logger
	fileLoaders []FileLoader
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithLookupEnv replaces os.LookupEnv, mainly for tests.
func WithLookupEnv(fn func(string) (string, bool)) LoaderOption {
	return func(l *Loader) { l.lookupEnv = fn }
}

// WithLoaderLogger sets the logger used for non-fatal warnings.
func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader reading files from basePath.
func NewLoader(basePath string, env Environment, opts ...LoaderOption) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	l := &Loader{
		basePath:    basePath,
		environment: env,
		lookupEnv:   os.LookupEnv,
		logger:      zap.NewNop(),
		fileLoaders: []FileLoader{YAMLLoader{}, JSONLoader{}},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// EnvironmentFromEnv reads PAPERGRAPH_ENV, defaulting to development.
func EnvironmentFromEnv() Environment {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvPrefix + "ENV"))); v != "" {
		return Environment(v)
	}
	return Development
}

// BasePath returns the directory the loader reads from.
func (l *Loader) BasePath() string { return l.basePath }

// Load builds and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := Default(l.environment)
	sources := []string{"defaults"}

	for _, name := range l.layers() {
		path, err := l.loadFile(name, cfg)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			if name == "local" {
				l.logger.Warn("ignoring local config", zap.Error(err))
				continue
			}
			return nil, errors.Validation(errors.CodeConfigInvalid.String(), "failed to load configuration file").
				WithDetailsf("%s: %v", name, err).
				WithCause(err).
				Build()
		}
		sources = append(sources, path)
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	sources = append(sources, "environment")
	cfg.LoadedFrom = sources

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) layers() []string {
	layers := []string{"base", strings.ToLower(string(l.environment))}
	if l.environment == Development {
		layers = append(layers, "local")
	}
	return layers
}

// loadFile tries each registered extension and decodes the first file found.
func (l *Loader) loadFile(name string, cfg *Config) (string, error) {
	for _, fl := range l.fileLoaders {
		path := filepath.Join(l.basePath, name+"."+fl.Extension())
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return path, err
		}
		err = fl.Load(f, cfg)
		f.Close()
		if err != nil {
			return path, fmt.Errorf("parse %s: %w", path, err)
		}
		return path, nil
	}
	return "", os.ErrNotExist
}

// applyEnv overlays PAPERGRAPH_* variables. Malformed numbers and durations
// are errors rather than silently ignored.
func (l *Loader) applyEnv(cfg *Config) error {
	var errs []string
	get := func(key string) (string, bool) {
		v, ok := l.lookupEnv(EnvPrefix + key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	setString := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, EnvPrefix+key)
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := get(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, EnvPrefix+key)
				return
			}
			*dst = b
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, EnvPrefix+key)
				return
			}
			*dst = d
		}
	}
	setList := func(key string, dst *[]string) {
		if v, ok := get(key); ok {
			var out []string
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
			*dst = out
		}
	}

	setString("PAPER_ID", &cfg.PaperID)

	setString("SERVER_HOST", &cfg.Server.Host)
	setInt("SERVER_PORT", &cfg.Server.Port)
	setDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	setDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	setString("STORAGE_PATH", &cfg.Storage.Path)
	setBool("STORAGE_AUTOSAVE", &cfg.Storage.Autosave)

	setString("EXTRACTION_PROVIDER", &cfg.Extraction.Provider)
	setString("EXTRACTION_API_KEY", &cfg.Extraction.APIKey)
	setString("EXTRACTION_BASE_URL", &cfg.Extraction.BaseURL)
	setString("EXTRACTION_MODEL", &cfg.Extraction.Model)
	setDuration("EXTRACTION_TIMEOUT", &cfg.Extraction.Timeout)

	setString("LOG_LEVEL", &cfg.Logging.Level)

	setBool("METRICS_ENABLED", &cfg.Metrics.Enabled)
	setString("METRICS_NAMESPACE", &cfg.Metrics.Namespace)

	setString("TRACING_ENDPOINT", &cfg.Tracing.Endpoint)
	setString("TRACING_SERVICE_NAME", &cfg.Tracing.ServiceName)

	setList("CORS_ALLOWED_ORIGINS", &cfg.CORS.AllowedOrigins)

	if len(errs) > 0 {
		return errors.Validation(errors.CodeConfigInvalid.String(), "malformed environment variables").
			WithDetails(strings.Join(errs, ", ")).
			Build()
	}
	return nil
}
