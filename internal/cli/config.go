package cli

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dl/vsearch/internal/matcher"
)

// ColorMode controls when colored output is used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // color when stdout is a terminal
	ColorAlways                  // always use color
	ColorNever                   // never use color
)

// ParseColorMode parses the --color flag value.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
}

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	}
	return "auto"
}

// Config holds all configuration for a vsearch run.
type Config struct {
	Keyword       string
	MatchCase     bool
	WholeWord     bool
	Regex         bool
	Exact         bool
	PCRE          bool
	Dictionary    string // variant table; empty disables variant folding
	CountOnly     bool
	FileNamesOnly bool
	JSONOutput    bool
	Color         ColorMode
	WatchMode     bool
	Overlays      bool // paint highlight overlays to stderr in watch mode
	ExcludeID     string
	SettingsPath  string
	Glob          string
	NoIgnore      bool
	Hidden        bool
	Workers       int
	MaxColumns    int
	MaxSize       int64
	Verbose       bool
	Paths         []string
}

// Options returns the match options selected by the flags. PCRE implies
// a regex search.
func (c *Config) Options() matcher.Options {
	return matcher.Options{
		MatchCase:  c.MatchCase,
		WholeWord:  c.WholeWord,
		UseRegex:   c.Regex || c.PCRE,
		ExactMatch: c.Exact,
	}
}

// RegexEngine returns the engine for regex searches.
func (c *Config) RegexEngine() matcher.RegexEngine {
	if c.PCRE {
		return matcher.PCRE
	}
	return matcher.RE2
}

// Validate checks that the config is valid and returns an error if not.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Keyword) == "" {
		return fmt.Errorf("no keyword specified")
	}
	if c.CountOnly && c.FileNamesOnly {
		return fmt.Errorf("cannot use --count and --files-with-matches together")
	}
	if c.WatchMode && (c.CountOnly || c.FileNamesOnly) {
		return fmt.Errorf("cannot use --watch with --count or --files-with-matches")
	}
	if c.Overlays && !c.WatchMode {
		return fmt.Errorf("--overlays requires --watch")
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}
	if c.MaxColumns < 0 {
		return fmt.Errorf("invalid max columns: %d", c.MaxColumns)
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("invalid max size: %d", c.MaxSize)
	}
	if c.Glob != "" && !doublestar.ValidatePattern(c.Glob) {
		return fmt.Errorf("invalid glob %q", c.Glob)
	}
	return nil
}
