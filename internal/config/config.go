// Package config loads rootseek settings from defaults, a YAML (or JSON) file
// and ROOTSEEK_* environment variables, in that order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/rootseek"
	"github.com/aretw0/rootseek/internal/logging"
	"github.com/aretw0/rootseek/pkg/persistence/middleware"
	"github.com/aretw0/rootseek/pkg/solver"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "rootseek.yaml"

// EnvPrefix prefixes every environment override, e.g. ROOTSEEK_PLOT_DIR.
const EnvPrefix = "ROOTSEEK_"

// Config holds every tunable of the explorer.
type Config struct {
	Tolerance     float64 `mapstructure:"tolerance" yaml:"tolerance"`
	MaxIterations int     `mapstructure:"max_iterations" yaml:"max_iterations"`
	StepBound     float64 `mapstructure:"step_bound" yaml:"step_bound"`

	PlotIntersection       bool `mapstructure:"plot_intersection" yaml:"plot_intersection"`
	ValidateIntersection   bool `mapstructure:"validate_intersection" yaml:"validate_intersection"`
	RepromptInvalidGuesses bool `mapstructure:"reprompt_invalid_guesses" yaml:"reprompt_invalid_guesses"`

	Plot  PlotConfig  `mapstructure:"plot" yaml:"plot"`
	Store StoreConfig `mapstructure:"store" yaml:"store"`
	Log   LogConfig   `mapstructure:"log" yaml:"log"`
}

type PlotConfig struct {
	Enabled         bool    `mapstructure:"enabled" yaml:"enabled"`
	Dir             string  `mapstructure:"dir" yaml:"dir"`
	RangeMin        float64 `mapstructure:"range_min" yaml:"range_min"`
	RangeMax        float64 `mapstructure:"range_max" yaml:"range_max"`
	Samples         int     `mapstructure:"samples" yaml:"samples"`
	IntersectionMin float64 `mapstructure:"intersection_min" yaml:"intersection_min"`
	IntersectionMax float64 `mapstructure:"intersection_max" yaml:"intersection_max"`
}

type StoreConfig struct {
	Kind     string        `mapstructure:"kind" yaml:"kind"` // memory, file, sqlite or redis
	Dir      string        `mapstructure:"dir" yaml:"dir"`
	Path     string        `mapstructure:"path" yaml:"path"` // sqlite database file
	RedisURL string        `mapstructure:"redis_url" yaml:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`

	// EncryptionKey (base64, 32 bytes) seals saved sessions with AES-GCM.
	// FallbackKeys still open sessions sealed before a key rotation.
	EncryptionKey string   `mapstructure:"encryption_key" yaml:"encryption_key,omitempty"`
	FallbackKeys  []string `mapstructure:"fallback_keys" yaml:"fallback_keys,omitempty"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	plots := rootseek.DefaultPlotSettings()
	return Config{
		Tolerance:        solver.DefaultTolerance,
		MaxIterations:    solver.DefaultMaxIterations,
		StepBound:        solver.DefaultStepBound,
		PlotIntersection: true,
		Plot: PlotConfig{
			Enabled:         plots.Enabled,
			Dir:             "plots",
			RangeMin:        plots.XMin,
			RangeMax:        plots.XMax,
			Samples:         400,
			IntersectionMin: plots.IntersectionXMin,
			IntersectionMax: plots.IntersectionXMax,
		},
		Store: StoreConfig{Kind: "memory", Dir: ".rootseek/sessions", Path: ".rootseek/sessions.db"},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Keys lists every dotted configuration key. Each one can be overridden by
// the environment variable EnvPrefix + upper(key with "." replaced by "_").
var Keys = []string{
	"tolerance",
	"max_iterations",
	"step_bound",
	"plot_intersection",
	"validate_intersection",
	"reprompt_invalid_guesses",
	"plot.enabled",
	"plot.dir",
	"plot.range_min",
	"plot.range_max",
	"plot.samples",
	"plot.intersection_min",
	"plot.intersection_max",
	"store.kind",
	"store.dir",
	"store.path",
	"store.redis_url",
	"store.ttl",
	"store.encryption_key",
	"store.fallback_keys",
	"log.level",
	"log.format",
}

// EnvName returns the environment variable overriding key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load reads path (or DefaultFile when path is empty) over the defaults and
// applies environment overrides. A missing DefaultFile is not an error; a
// missing explicit path is.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	raw := map[string]any{}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	fileValues, err := readFile(path)
	switch {
	case err == nil:
		raw = fileValues
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, err
	}

	for _, key := range Keys {
		if v, ok := lookup(EnvName(key)); ok {
			setPath(raw, key, v)
		}
	}

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	out := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return out, nil
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return out, nil
}

// decode merges raw into cfg. Fields absent from raw keep their current value;
// strings from the environment are converted to numbers, bools and durations.
func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setPath(m map[string]any, key, value string) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// Validate rejects settings the explorer cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("tolerance must be positive, got %g", c.Tolerance))
	}
	if c.MaxIterations < 0 {
		errs = append(errs, fmt.Errorf("max_iterations must not be negative, got %d", c.MaxIterations))
	}
	if c.Plot.RangeMin >= c.Plot.RangeMax {
		errs = append(errs, fmt.Errorf("plot range [%g, %g] is inverted", c.Plot.RangeMin, c.Plot.RangeMax))
	}
	if c.Plot.IntersectionMin >= c.Plot.IntersectionMax {
		errs = append(errs, fmt.Errorf("intersection plot range [%g, %g] is inverted", c.Plot.IntersectionMin, c.Plot.IntersectionMax))
	}
	if c.Plot.Samples < 2 {
		errs = append(errs, fmt.Errorf("plot.samples must be at least 2, got %d", c.Plot.Samples))
	}
	switch c.Store.Kind {
	case "memory", "file", "sqlite":
	case "redis":
		if c.Store.RedisURL == "" {
			errs = append(errs, errors.New("store.redis_url is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q", c.Store.Kind))
	}
	if _, err := c.Encryption(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Encryption decodes the session keys. It returns nil when sessions are stored in clear.
func (c Config) Encryption() (*middleware.EncryptionConfig, error) {
	if c.Store.EncryptionKey == "" {
		return nil, nil
	}
	active, err := middleware.DecodeKey(c.Store.EncryptionKey)
	if err != nil {
		return nil, err
	}
	enc := &middleware.EncryptionConfig{ActiveKey: active}
	for _, k := range c.Store.FallbackKeys {
		key, err := middleware.DecodeKey(k)
		if err != nil {
			return nil, err
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, enc.Validate()
}

// PlotSettings converts the plot keys for the engine.
func (c Config) PlotSettings() rootseek.PlotSettings {
	return rootseek.PlotSettings{
		Enabled:          c.Plot.Enabled,
		XMin:             c.Plot.RangeMin,
		XMax:             c.Plot.RangeMax,
		Intersection:     c.Plot.Enabled && c.PlotIntersection,
		IntersectionXMin: c.Plot.IntersectionMin,
		IntersectionXMax: c.Plot.IntersectionMax,
	}
}

// EngineOptions converts the configuration into engine options.
func (c Config) EngineOptions() []rootseek.Option {
	return []rootseek.Option{
		rootseek.WithTolerance(c.Tolerance),
		rootseek.WithSolverSettings(solver.Settings{
			MaxIterations: c.MaxIterations,
			XTol:          solver.DefaultXTol,
			StepBound:     c.StepBound,
		}),
		rootseek.WithValidateIntersection(c.ValidateIntersection),
		rootseek.WithRepromptInvalidGuesses(c.RepromptInvalidGuesses),
		rootseek.WithPlotSettings(c.PlotSettings()),
	}
}
