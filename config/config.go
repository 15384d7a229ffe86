// Package config holds the settings of a termtext terminal as read from a
// TOML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/hnimtadd/termtext/logger"
	"github.com/hnimtadd/termtext/terminal/buffer"
	"github.com/hnimtadd/termtext/terminal/grapheme"
	"github.com/hnimtadd/termtext/terminal/search"
	"github.com/hnimtadd/termtext/terminal/style"
)

// ErrUnknownKeys is returned by Load when the file sets keys that no field
// decodes.
var ErrUnknownKeys = errors.New("unknown configuration keys")

// Config represents the entire set of configuration values. The zero value
// is not valid, start from Default.
type Config struct {
	Terminal TerminalConfig `toml:"terminal"`
	Unicode  UnicodeConfig  `toml:"unicode"`
	Search   SearchConfig   `toml:"search"`
	Log      LogConfig      `toml:"log"`
}

// TerminalConfig represents the "terminal" TOML table.
type TerminalConfig struct {
	Cols int `toml:"cols"`
	Rows int `toml:"rows"`

	// Scrollback is the number of rows kept above the viewport.
	Scrollback int `toml:"scrollback"`

	// ConvertEOL makes a line feed also return the carriage.
	ConvertEOL bool `toml:"convert_eol"`
}

// UnicodeConfig represents the "unicode" TOML table.
type UnicodeConfig struct {
	// Version selects the provider, one of grapheme.Versions().
	Version string `toml:"version"`

	AmbiguousWide bool `toml:"ambiguous_wide"`
}

// SearchConfig represents the "search" TOML table.
type SearchConfig struct {
	HighlightLimit int           `toml:"highlight_limit"`
	Debounce       time.Duration `toml:"debounce"`
	LineCacheTTL   time.Duration `toml:"line_cache_ttl"`
	RegexTimeout   time.Duration `toml:"regex_timeout"`

	Decorations DecorationsConfig `toml:"decorations"`
}

// DecorationsConfig represents the "search.decorations" TOML table. Colors
// are written as #rgb, #rrggbb or a color name. Empty means not drawn.
type DecorationsConfig struct {
	MatchBackground    string `toml:"match_background"`
	MatchBorder        string `toml:"match_border"`
	MatchOverviewRuler string `toml:"match_overview_ruler"`

	ActiveMatchBackground    string `toml:"active_match_background"`
	ActiveMatchBorder        string `toml:"active_match_border"`
	ActiveMatchOverviewRuler string `toml:"active_match_overview_ruler"`
}

// LogConfig represents the "log" TOML table.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Terminal: TerminalConfig{
			Cols:       buffer.DefaultCols,
			Rows:       buffer.DefaultRows,
			Scrollback: buffer.DefaultScrollback,
			ConvertEOL: true,
		},
		Unicode: UnicodeConfig{
			Version: grapheme.DefaultVersion,
		},
		Search: SearchConfig{
			HighlightLimit: search.DefaultHighlightLimit,
			Debounce:       search.DefaultDebounce,
			LineCacheTTL:   search.DefaultLineCacheTTL,
			RegexTimeout:   search.DefaultRegexTimeout,
			Decorations: DecorationsConfig{
				MatchBackground:          "#555555",
				MatchBorder:              "#888888",
				MatchOverviewRuler:       "#888888",
				ActiveMatchBackground:    "#ffff00",
				ActiveMatchBorder:        "#ffaa00",
				ActiveMatchOverviewRuler: "#ffaa00",
			},
		},
		Log: LogConfig{
			Level:  logger.DefaultLevel.String(),
			Format: "text",
		},
	}
}

// Load reads the TOML file at path over the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	c := Default()
	if err := c.UpdateFromFile(path); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %v: %w", path, err)
	}
	return c, nil
}

// UpdateFromFile overlays the values set in the file at path. Keys that do
// not map to a field are an error.
func (c *Config) UpdateFromFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("unable to decode configuration %v: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fmt.Errorf("%w in %v: %s", ErrUnknownKeys, path, strings.Join(keys, ", "))
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Terminal.Cols <= 0 {
		errs = append(errs, fmt.Errorf("terminal.cols must be positive, got %d", c.Terminal.Cols))
	}
	if c.Terminal.Rows <= 0 {
		errs = append(errs, fmt.Errorf("terminal.rows must be positive, got %d", c.Terminal.Rows))
	}
	if c.Terminal.Scrollback < 0 {
		errs = append(errs, fmt.Errorf("terminal.scrollback must not be negative, got %d", c.Terminal.Scrollback))
	}

	known := false
	for _, v := range grapheme.Versions() {
		known = known || v == c.Unicode.Version
	}
	if !known {
		errs = append(errs, fmt.Errorf("unicode.version %q is not one of %s",
			c.Unicode.Version, strings.Join(grapheme.Versions(), ", ")))
	}

	if c.Search.HighlightLimit <= 0 {
		errs = append(errs, fmt.Errorf("search.highlight_limit must be positive, got %d", c.Search.HighlightLimit))
	}
	for name, d := range map[string]time.Duration{
		"search.debounce":       c.Search.Debounce,
		"search.line_cache_ttl": c.Search.LineCacheTTL,
		"search.regex_timeout":  c.Search.RegexTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}
	if _, err := c.Search.Decorations.Options(); err != nil {
		errs = append(errs, err)
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logger.ParseType(c.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}
	return errors.Join(errs...)
}

// Options parses the colors into search decoration options.
func (d DecorationsConfig) Options() (*search.DecorationOptions, error) {
	opts := &search.DecorationOptions{}
	for _, f := range []struct {
		name  string
		value string
		dst   *style.Color
	}{
		{"match_background", d.MatchBackground, &opts.MatchBackground},
		{"match_border", d.MatchBorder, &opts.MatchBorder},
		{"match_overview_ruler", d.MatchOverviewRuler, &opts.MatchOverviewRuler},
		{"active_match_background", d.ActiveMatchBackground, &opts.ActiveMatchBackground},
		{"active_match_border", d.ActiveMatchBorder, &opts.ActiveMatchBorder},
		{"active_match_overview_ruler", d.ActiveMatchOverviewRuler, &opts.ActiveMatchOverviewRuler},
	} {
		c, err := style.ParseColor(f.value)
		if err != nil {
			return nil, fmt.Errorf("search.decorations.%s: %w", f.name, err)
		}
		*f.dst = c
	}
	return opts, nil
}

// Logger builds the logger described by the "log" table, writing to w.
func (c *Config) Logger(w io.Writer) (logger.Logger, error) {
	level, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	typ, err := logger.ParseType(c.Log.Format)
	if err != nil {
		return nil, err
	}
	return logger.New(logger.Options{Buffer: w, Level: level, Type: typ}), nil
}

// Provider selects the unicode provider.
func (c *Config) Provider(l logger.Logger) (grapheme.Provider, error) {
	return grapheme.Select(c.Unicode.Version, grapheme.Options{
		AmbiguousWide: c.Unicode.AmbiguousWide,
		Logger:        l,
	})
}

// BufferOptions returns the buffer settings. Provider and Logger are left
// for the caller.
func (c *Config) BufferOptions() buffer.Options {
	return buffer.Options{
		Cols:       c.Terminal.Cols,
		Rows:       c.Terminal.Rows,
		Scrollback: c.Terminal.Scrollback,
		ConvertEOL: c.Terminal.ConvertEOL,
	}
}

// EngineOptions returns the search engine settings. Clock, Metrics and
// Logger are left for the caller.
func (c *Config) EngineOptions() search.EngineOptions {
	return search.EngineOptions{
		HighlightLimit: c.Search.HighlightLimit,
		Debounce:       c.Search.Debounce,
		LineCacheTTL:   c.Search.LineCacheTTL,
		RegexTimeout:   c.Search.RegexTimeout,
	}
}
