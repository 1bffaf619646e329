package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TITLEMATCH_"

// Matching holds the resolver's thresholds and per-stage caps. It is fixed when a
// Matcher is built.
type Matching struct {
	MinRatio          float64 `yaml:"min_ratio" validate:"gte=0,lte=100"`
	AuthorMinRatio    float64 `yaml:"author_min_ratio" validate:"gte=0,lte=100"`
	TieBreakKey       string  `yaml:"tie_break_key" validate:"required"`
	SearchMode        string  `yaml:"search_mode" validate:"oneof=full partial"`
	AuthorKeyLimit    int     `yaml:"author_key_limit" validate:"gte=1"`
	AuthorK           int     `yaml:"author_k" validate:"gte=1"`
	GeneralK          int     `yaml:"general_k" validate:"gte=1"`
	FallbackK         int     `yaml:"fallback_k" validate:"gte=1"`
	MaxQueryLength    int     `yaml:"max_query_length" validate:"gte=1"`
	PrefilterFraction float64 `yaml:"prefilter_fraction" validate:"gt=0,lte=1"`
	PrefilterMinSize  int     `yaml:"prefilter_min_size" validate:"gte=0"`
}

// Catalog points at the bulk tables the index is built from.
type Catalog struct {
	Books  string `yaml:"books"`
	Series string `yaml:"series"`
}

// Server configures the HTTP API.
type Server struct {
	Port           string        `yaml:"port" validate:"required,numeric"`
	ReloadInterval time.Duration `yaml:"reload_interval" validate:"gte=0"`
}

// Config is the complete application configuration.
type Config struct {
	Matching Matching `yaml:"matching"`
	Catalog  Catalog  `yaml:"catalog"`
	Server   Server   `yaml:"server"`
}

// DefaultMatching returns the tuned thresholds for the Indel ratio.
func DefaultMatching() Matching {
	return Matching{
		MinRatio:          85,
		AuthorMinRatio:    80,
		TieBreakKey:       "popularity",
		SearchMode:        "full",
		AuthorKeyLimit:    5,
		AuthorK:           4,
		GeneralK:          4,
		FallbackK:         3,
		MaxQueryLength:    150,
		PrefilterFraction: 0.1,
		PrefilterMinSize:  1000,
	}
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		Matching: DefaultMatching(),
		Server: Server{
			Port: "8888",
		},
	}
}

// Load reads defaults, then the YAML file at path (skipped when path is empty), then
// TITLEMATCH_* environment variables, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		slog.Debug("Loaded config file", "path", path)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate checks the matching section on its own.
func (m Matching) Validate() error {
	if err := validate(&m); err != nil {
		return fmt.Errorf("invalid matching config: %w", err)
	}
	return nil
}

func validate(v any) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(v)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return err
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	floats := map[string]*float64{
		"MIN_RATIO":          &c.Matching.MinRatio,
		"AUTHOR_MIN_RATIO":   &c.Matching.AuthorMinRatio,
		"PREFILTER_FRACTION": &c.Matching.PrefilterFraction,
	}
	ints := map[string]*int{
		"AUTHOR_KEY_LIMIT":   &c.Matching.AuthorKeyLimit,
		"AUTHOR_K":           &c.Matching.AuthorK,
		"GENERAL_K":          &c.Matching.GeneralK,
		"FALLBACK_K":         &c.Matching.FallbackK,
		"MAX_QUERY_LENGTH":   &c.Matching.MaxQueryLength,
		"PREFILTER_MIN_SIZE": &c.Matching.PrefilterMinSize,
	}
	strs := map[string]*string{
		"TIE_BREAK_KEY": &c.Matching.TieBreakKey,
		"SEARCH_MODE":   &c.Matching.SearchMode,
		"BOOKS":         &c.Catalog.Books,
		"SERIES":        &c.Catalog.Series,
		"PORT":          &c.Server.Port,
	}

	for name, dst := range floats {
		if v, ok := lookup(EnvPrefix + name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
			}
			*dst = f
		}
	}
	for name, dst := range ints {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	if v, ok := lookup(EnvPrefix + "RELOAD_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sRELOAD_INTERVAL: %w", EnvPrefix, err)
		}
		c.Server.ReloadInterval = d
	}
	return nil
}
