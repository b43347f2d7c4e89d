package config

import (
	"fmt"
	"io"
	"math"

	"github.com/mezzoeditor/mezzo-sub000/internal/config/loader"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/metrics"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/text"
	"github.com/mezzoeditor/mezzo-sub000/internal/highlight"
	"github.com/mezzoeditor/mezzo-sub000/internal/log"
	"github.com/mezzoeditor/mezzo-sub000/internal/search"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "MEZZO_"

// Measurers accepted by TextConfig.Measurer.
const (
	MeasurerFixed     = "fixed"
	MeasurerRuneWidth = "runewidth"
)

// Config holds every mezzo setting.
type Config struct {
	Text      TextConfig
	Highlight HighlightConfig
	Search    SearchConfig
	Log       LogConfig
}

// TextConfig configures the text rope.
type TextConfig struct {
	ChunkSize int
	Seed      uint64
	Measurer  string
	TabWidth  int
}

// HighlightConfig configures the incremental highlighter.
type HighlightConfig struct {
	Budget  int
	Density int
}

// SearchConfig configures background search.
type SearchConfig struct {
	Budget int
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string
	Format string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Text: TextConfig{
			ChunkSize: text.DefaultChunkSize,
			Seed:      text.DefaultSeed,
			Measurer:  MeasurerFixed,
			TabWidth:  8,
		},
		Highlight: HighlightConfig{
			Budget:  highlight.DefaultBudget,
			Density: highlight.DefaultDensity,
		},
		Search: SearchConfig{Budget: search.DefaultBudget},
		Log:    LogConfig{Level: "info", Format: string(log.FormatText)},
	}
}

type options struct {
	fs        loader.FileSystem
	files     []string
	env       loader.Loader
	overrides map[string]any
}

// Option configures Load.
type Option func(*options)

// WithFile adds a configuration file layer. Missing files are skipped.
func WithFile(path string) Option {
	return func(o *options) {
		if path != "" {
			o.files = append(o.files, path)
		}
	}
}

// WithFS sets the file system files are read from.
func WithFS(fs loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithEnv replaces the environment layer. A nil loader disables it.
func WithEnv(env loader.Loader) Option {
	return func(o *options) {
		o.env = env
	}
}

// WithOverride sets one setting by dotted path, above every other layer.
func WithOverride(path string, value any) Option {
	return func(o *options) {
		loader.SetByPath(o.overrides, path, value)
	}
}

// Load merges the configured layers over the defaults and validates the
// result.
func Load(opts ...Option) (*Config, error) {
	o := options{
		fs:        loader.DefaultFS(),
		env:       loader.NewEnvLoader(EnvPrefix),
		overrides: map[string]any{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	merged := map[string]any{}
	var layers []loader.Loader
	for _, path := range o.files {
		l, err := loader.ForPath(o.fs, path)
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}
	if o.env != nil {
		layers = append(layers, o.env)
	}
	for _, l := range layers {
		m, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, m)
	}
	merged = loader.DeepMerge(merged, o.overrides)

	cfg, err := FromMap(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromMap decodes settings over the defaults. It does not validate.
func FromMap(m map[string]any) (*Config, error) {
	cfg := Default()
	d := decoder{data: m}
	d.getInt("text.chunkSize", &cfg.Text.ChunkSize)
	d.getUint64("text.seed", &cfg.Text.Seed)
	d.getString("text.measurer", &cfg.Text.Measurer)
	d.getInt("text.tabWidth", &cfg.Text.TabWidth)
	d.getInt("highlight.budget", &cfg.Highlight.Budget)
	d.getInt("highlight.density", &cfg.Highlight.Density)
	d.getInt("search.budget", &cfg.Search.Budget)
	d.getString("log.level", &cfg.Log.Level)
	d.getString("log.format", &cfg.Log.Format)
	if d.err != nil {
		return nil, d.err
	}
	return cfg, nil
}

// Validate checks every setting and reports all failures.
func (c *Config) Validate() error {
	var errs ValidationErrors
	positive := func(path string, v int) {
		if v <= 0 {
			errs = append(errs, &ValidationError{Path: path, Message: "must be positive", Value: v})
		}
	}
	oneOf := func(path, v string, allowed ...string) {
		for _, a := range allowed {
			if v == a {
				return
			}
		}
		errs = append(errs, &ValidationError{Path: path, Message: fmt.Sprintf("must be one of %v", allowed), Value: v})
	}

	positive("text.chunkSize", c.Text.ChunkSize)
	oneOf("text.measurer", c.Text.Measurer, MeasurerFixed, MeasurerRuneWidth)
	positive("text.tabWidth", c.Text.TabWidth)
	positive("highlight.budget", c.Highlight.Budget)
	positive("highlight.density", c.Highlight.Density)
	positive("search.budget", c.Search.Budget)
	oneOf("log.level", c.Log.Level, "debug", "info", "warn", "warning", "error")
	oneOf("log.format", c.Log.Format, string(log.FormatText), string(log.FormatJSON))

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TextOptions returns the options for building texts.
func (c *Config) TextOptions() []text.Option {
	var m metrics.Measurer = metrics.Fixed(1)
	if c.Text.Measurer == MeasurerRuneWidth {
		m = metrics.NewRuneWidth(metrics.WithTabWidth(c.Text.TabWidth))
	}
	return []text.Option{
		text.WithChunkSize(c.Text.ChunkSize),
		text.WithSeed(c.Text.Seed),
		text.WithMeasurer(m),
	}
}

// HighlightOptions returns the indexer options.
func (c *Config) HighlightOptions() highlight.Options {
	return highlight.Options{Budget: c.Highlight.Budget, Density: c.Highlight.Density}
}

// SearchOptions returns the search configuration with the given logger.
func (c *Config) SearchOptions(logger *log.Logger) search.Config {
	return search.Config{Budget: c.Search.Budget, Logger: logger}
}

// Logger creates a logger writing to w.
func (c *Config) Logger(w io.Writer) *log.Logger {
	return log.New(log.Config{
		Level:  log.ParseLevel(c.Log.Level),
		Format: log.Format(c.Log.Format),
		Output: w,
		Prefix: "mezzo",
	})
}

// decoder reads typed values from a merged settings map, keeping the
// first error.
type decoder struct {
	data map[string]any
	err  error
}

func (d *decoder) mismatch(path, want string, v any) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s must be %s, got %T", ErrTypeMismatch, path, want, v)
	}
}

// getInt reports whether it stored a value.
func (d *decoder) getInt(path string, dst *int) bool {
	v, ok := loader.GetByPath(d.data, path)
	if !ok {
		return false
	}
	switch n := v.(type) {
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	case uint64:
		*dst = int(min(n, math.MaxInt))
	case float64:
		if n != math.Trunc(n) {
			d.mismatch(path, "an integer", v)
			return false
		}
		*dst = int(n)
	default:
		d.mismatch(path, "an integer", v)
		return false
	}
	return true
}

func (d *decoder) getUint64(path string, dst *uint64) {
	n := int(*dst)
	if !d.getInt(path, &n) {
		return
	}
	if n < 0 {
		d.mismatch(path, "a non-negative integer", n)
		return
	}
	*dst = uint64(n)
}

func (d *decoder) getString(path string, dst *string) {
	v, ok := loader.GetByPath(d.data, path)
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		d.mismatch(path, "a string", v)
		return
	}
	*dst = s
}
