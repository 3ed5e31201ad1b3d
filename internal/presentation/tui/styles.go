package tui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Styles colours CLI output. The zero profile (Ascii) prints plain text.
type Styles struct {
	profile termenv.Profile
}

// NewStyles detects the colour profile of f; non-terminals get plain text.
func NewStyles(f *os.File) Styles {
	if !IsTerminal(f) {
		return Styles{profile: termenv.Ascii}
	}
	return Styles{profile: termenv.NewOutput(f).Profile}
}

// Plain returns styles that never emit escape codes.
func Plain() Styles { return Styles{profile: termenv.Ascii} }

// Success renders s in green.
func (s Styles) Success(text string) string {
	return s.profile.String(text).Foreground(s.profile.Color("#22c55e")).Bold().String()
}

// Failure renders s in red.
func (s Styles) Failure(text string) string {
	return s.profile.String(text).Foreground(s.profile.Color("#ef4444")).Bold().String()
}

// Field renders a field path.
func (s Styles) Field(text string) string {
	return s.profile.String(text).Foreground(s.profile.Color("#a78bfa")).String()
}

// Added renders an inserted diff line.
func (s Styles) Added(text string) string {
	return s.profile.String(text).Foreground(s.profile.Color("#22c55e")).String()
}

// Removed renders a deleted diff line.
func (s Styles) Removed(text string) string {
	return s.profile.String(text).Foreground(s.profile.Color("#ef4444")).String()
}
