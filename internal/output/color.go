package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sys/unix"

	"github.com/dl/vsearch/internal/highlight"
)

// Styles holds the lipgloss styles for output formatting.
type Styles struct {
	Filename  lipgloss.Style
	Index     lipgloss.Style
	Separator lipgloss.Style
	Match     lipgloss.Style
	Current   lipgloss.Style
}

// NewStyles creates the default color styles.
func NewStyles() Styles {
	return Styles{
		Filename:  lipgloss.NewStyle().Foreground(lipgloss.Color("5")),             // magenta
		Index:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),             // green
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),             // cyan
		Match:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),  // bold red
		Current:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true).Underline(true),
	}
}

// StylesFrom returns the default styles with match colors taken from the
// highlight style.
func StylesFrom(h highlight.Style) Styles {
	s := NewStyles()
	s.Match = h.Match
	s.Current = h.Current
	return s
}

// NoStyles returns styles with no coloring.
func NoStyles() Styles {
	return Styles{
		Filename:  lipgloss.NewStyle(),
		Index:     lipgloss.NewStyle(),
		Separator: lipgloss.NewStyle(),
		Match:     lipgloss.NewStyle(),
		Current:   lipgloss.NewStyle(),
	}
}

// IsTerminal checks if the given file descriptor is a terminal using ioctl.
func IsTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	return err == nil
}

// StdoutIsTerminal returns true if stdout is a terminal.
func StdoutIsTerminal() bool {
	return IsTerminal(os.Stdout.Fd())
}
