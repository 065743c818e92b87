package shared

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"

	"estate_reco/internal/adapters/sparql"
	"estate_reco/internal/app"
	"estate_reco/internal/domain"
)

// ConfigPathEnvVar names an optional YAML file layered between the defaults
// and the environment.
const ConfigPathEnvVar = "CONFIG_PATH"

type Config struct {
	AppEnv          string        `koanf:"app_env" validate:"required"`
	LogLevel        string        `koanf:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	HTTPAddr        string        `koanf:"http_addr" validate:"required"`
	MetricsAddr     string        `koanf:"metrics_addr"`
	SPARQLEndpoint  string        `koanf:"sparql_endpoint" validate:"required,url"`
	OntologyPrefix  string        `koanf:"ontology_prefix" validate:"required,uri"`
	UpstreamRPS     int           `koanf:"upstream_rps" validate:"gt=0"`
	UpstreamTimeout time.Duration `koanf:"upstream_timeout" validate:"gt=0"`
	DefaultLat      float64       `koanf:"default_lat" validate:"latitude"`
	DefaultLon      float64       `koanf:"default_lon" validate:"longitude"`
	MaxCandidates   int           `koanf:"max_candidates" validate:"gt=0,lte=100"`
	TopK            int           `koanf:"top_k" validate:"gt=0,lte=5"`
	Workers         int           `koanf:"workers" validate:"gt=0"`
	RateLimitPerMin int           `koanf:"rate_limit_per_min" validate:"gte=0"`
}

func defaults() Config {
	return Config{
		AppEnv:          "prod",
		LogLevel:        "info",
		HTTPAddr:        ":8080",
		MetricsAddr:     "",
		SPARQLEndpoint:  "http://localhost:3030/NhaTot_realestate/sparql",
		OntologyPrefix:  sparql.DefaultOntologyPrefix,
		UpstreamRPS:     5,
		UpstreamTimeout: 20 * time.Second,
		DefaultLat:      domain.DefaultReference.Lat,
		DefaultLon:      domain.DefaultReference.Lon,
		MaxCandidates:   app.DefaultMaxCandidates,
		TopK:            app.DefaultTopK,
		Workers:         4,
		RateLimitPerMin: 120,
	}
}

// Load layers defaults, the optional YAML file named by CONFIG_PATH and the
// environment (APP_ENV -> app_env), then validates the result.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if c.RateLimitPerMin == 0 {
		log.Warn().Msg("RATE_LIMIT_PER_MIN is 0; per-client rate limiting disabled")
	}
	return c, nil
}

// DefaultReference is the configured fallback reference point.
func (c Config) DefaultReference() domain.Coordinate {
	return domain.Coordinate{Lat: c.DefaultLat, Lon: c.DefaultLon}
}
