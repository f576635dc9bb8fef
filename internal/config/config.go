// Package config holds the strongly-typed run configuration built once at
// startup from flags, environment, config file and saved preferences.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// IndicatorMode controls which content-export markers the tree shows.
type IndicatorMode string

const (
	IndicatorsAll      IndicatorMode = "all"
	IndicatorsIncluded IndicatorMode = "included"
	IndicatorsNone     IndicatorMode = "none"
)

// Styles lists the accepted tree style ids.
var Styles = []string{"ascii", "unicode", "bold", "rounded", "emoji", "minimal"}

// DefaultStyle is used when no style is configured.
const DefaultStyle = "unicode"

// DefaultMaxFileSize is the per-file content cap for export.
const DefaultMaxFileSize int64 = 100 * 1024

// ErrInvalidRoot reports a missing or non-directory root.
var ErrInvalidRoot = errors.New("invalid root directory")

// ValidationError reports one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Config is the complete configuration for one run.
type Config struct {
	Root string

	// Display
	Style      string
	MaxDepth   int
	ShowHidden bool
	Colorize   bool
	ShowSize   bool

	// Filtering
	Include      []string
	Exclude      []string
	SmartExclude bool
	GitIgnore    bool

	// Export
	Export      bool
	MaxFileSize int64
	// ContentExtensions overrides the default content heuristic when non-nil.
	ContentExtensions  []string
	ContentDirExcludes []string
	OutputDir          string
	Indicators         IndicatorMode
	AddMarker          bool

	// Export sinks
	Tokens    bool
	PDFPath   string
	Clipboard bool

	// Behavior
	Verbose     bool
	SkipErrors  bool
	DryRun      bool
	Interactive bool
}

// Default returns the built-in configuration rooted at the working directory.
func Default() Config {
	return Config{
		Root:         ".",
		Style:        DefaultStyle,
		SmartExclude: true,
		MaxFileSize:  DefaultMaxFileSize,
		Indicators:   IndicatorsIncluded,
	}
}

// Validate checks every field and normalizes the root to an absolute path.
// Root problems wrap ErrInvalidRoot; other problems are *ValidationError.
func (c *Config) Validate() error {
	if !slices.Contains(Styles, c.Style) {
		return &ValidationError{Field: "style", Message: fmt.Sprintf("unknown style %q (available: %s)", c.Style, strings.Join(Styles, ", "))}
	}
	switch c.Indicators {
	case IndicatorsAll, IndicatorsIncluded, IndicatorsNone:
	default:
		return &ValidationError{Field: "indicators", Message: fmt.Sprintf("unknown mode %q (all, included, none)", c.Indicators)}
	}
	if c.MaxDepth < 0 {
		return &ValidationError{Field: "max_depth", Message: "must not be negative"}
	}
	if c.MaxFileSize <= 0 {
		return &ValidationError{Field: "max_file_size", Message: "must be positive"}
	}
	for _, ext := range c.ContentExtensions {
		if strings.TrimLeft(strings.TrimSpace(ext), ".") == "" {
			return &ValidationError{Field: "content_extensions", Message: "empty extension"}
		}
	}

	root := c.Root
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s does not exist", ErrInvalidRoot, abs)
		}
		return fmt.Errorf("%w: %s: %v", ErrInvalidRoot, abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, abs)
	}
	c.Root = filepath.Clean(abs)
	return nil
}

// LogLevel maps the verbose flag to a logger level.
func (c *Config) LogLevel() string {
	if c.Verbose {
		return "debug"
	}
	return "warn"
}
