// Package settings holds the user-tunable highlight appearance, loaded from
// YAML and shared between readers through a Store.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/dl/vsearch/internal/highlight"
)

// Settings is the persisted highlight configuration.
type Settings struct {
	HighlightColor string `yaml:"highlight_color"`
	CurrentColor   string `yaml:"current_color"`
	ShowOutline    bool   `yaml:"show_outline"`
	FrameInterval  string `yaml:"frame_interval,omitempty"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		HighlightColor: "#ffff00",
		CurrentColor:   "#ff9632",
		FrameInterval:  highlight.DefaultFrame.String(),
	}
}

// Load reads settings from path. A missing file yields the defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings file %q: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes YAML over the defaults, so omitted keys keep their
// default values. Unknown keys are an error.
func Parse(data []byte, source string) (Settings, error) {
	s := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return s, fmt.Errorf("parse YAML in %q: %w", source, err)
	}

	if errs := s.Validate(); len(errs) > 0 {
		return s, fmt.Errorf("invalid settings in %q: %s", source, strings.Join(errs, "; "))
	}
	return s, nil
}

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[0-9]{1,3})$`)

// Validate returns one message per invalid field.
func (s Settings) Validate() []string {
	var errs []string
	if !colorPattern.MatchString(s.HighlightColor) {
		errs = append(errs, fmt.Sprintf("highlight_color %q is not a hex or ANSI color", s.HighlightColor))
	}
	if !colorPattern.MatchString(s.CurrentColor) {
		errs = append(errs, fmt.Sprintf("current_color %q is not a hex or ANSI color", s.CurrentColor))
	}
	if s.FrameInterval != "" {
		d, err := time.ParseDuration(s.FrameInterval)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("frame_interval: %v", err))
		case d <= 0:
			errs = append(errs, "frame_interval must be positive")
		}
	}
	return errs
}

// Frame returns the paint interval, falling back to the default.
func (s Settings) Frame() time.Duration {
	d, err := time.ParseDuration(s.FrameInterval)
	if err != nil || d <= 0 {
		return highlight.DefaultFrame
	}
	return d
}

// Style converts the settings into overlay styles.
func (s Settings) Style() highlight.Style {
	black := lipgloss.Color("#000000")
	return highlight.Style{
		Match:   lipgloss.NewStyle().Background(lipgloss.Color(s.HighlightColor)).Foreground(black),
		Current: lipgloss.NewStyle().Background(lipgloss.Color(s.CurrentColor)).Foreground(black).Bold(true),
		Outline: s.ShowOutline,
	}
}
