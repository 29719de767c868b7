// Package utils provides small helpers shared by the CLI and the TUI.
package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands tilde and all environment variables from the given path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// GlamourStyle returns the renderer option for a style name or a JSON style
// path.
func GlamourStyle(style string) glamour.TermRendererOption {
	switch {
	case style == "" || style == styles.AutoStyle:
		return glamour.WithAutoStyle()
	case styles.DefaultStyles[style] != nil:
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithStylePath(ExpandPath(style))
	}
}

// IsStyleFile reports whether style names a JSON style on disk rather than
// a built-in style.
func IsStyleFile(style string) bool {
	if style == styles.AutoStyle || styles.DefaultStyles[style] != nil {
		return false
	}
	return strings.EqualFold(filepath.Ext(style), ".json")
}
