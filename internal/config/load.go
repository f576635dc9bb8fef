package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Configuration keys shared by flags, environment, config file and saved
// preferences.
const (
	KeyStyle             = "style"
	KeyMaxDepth          = "max_depth"
	KeyShowHidden        = "show_hidden"
	KeyColorize          = "colorize"
	KeyShowSize          = "show_size"
	KeyInclude           = "include"
	KeyExclude           = "exclude"
	KeySmartExclude      = "smart_exclude"
	KeyGitIgnore         = "gitignore"
	KeyExport            = "export"
	KeyMaxFileSize       = "max_file_size"
	KeyContentExtensions = "content_extensions"
	KeyOutputDir         = "output_dir"
	KeyIndicators        = "indicators"
	KeyAddMarker         = "add_marker"
	KeyTokens            = "tokens"
	KeyPDF               = "pdf"
	KeyClipboard         = "clipboard"
	KeyVerbose           = "verbose"
	KeySkipErrors        = "skip_errors"
	KeyDryRun            = "dry_run"
	KeyInteractive       = "interactive"
)

// Keys lists every accepted configuration key.
var Keys = []string{
	KeyStyle, KeyMaxDepth, KeyShowHidden, KeyColorize, KeyShowSize,
	KeyInclude, KeyExclude, KeySmartExclude, KeyGitIgnore,
	KeyExport, KeyMaxFileSize, KeyContentExtensions, KeyOutputDir, KeyIndicators, KeyAddMarker,
	KeyTokens, KeyPDF, KeyClipboard,
	KeyVerbose, KeySkipErrors, KeyDryRun, KeyInteractive,
}

// SetDefaults registers the built-in defaults on v. colorize is the
// terminal-detected color default.
func SetDefaults(v *viper.Viper, colorize bool) {
	d := Default()
	v.SetDefault(KeyStyle, d.Style)
	v.SetDefault(KeyMaxDepth, 0)
	v.SetDefault(KeyShowHidden, false)
	v.SetDefault(KeyColorize, colorize)
	v.SetDefault(KeyShowSize, false)
	v.SetDefault(KeySmartExclude, d.SmartExclude)
	v.SetDefault(KeyGitIgnore, false)
	v.SetDefault(KeyExport, false)
	v.SetDefault(KeyMaxFileSize, "100k")
	v.SetDefault(KeyIndicators, string(d.Indicators))
	v.SetDefault(KeyAddMarker, false)
	v.SetDefault(KeyTokens, false)
	v.SetDefault(KeyClipboard, false)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeySkipErrors, false)
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyInteractive, false)
}

// Load builds a validated Config for root from v. Keys that are not part of
// the configuration surface are rejected.
func Load(v *viper.Viper, root string) (Config, error) {
	for _, key := range v.AllKeys() {
		if !slices.Contains(Keys, key) {
			return Config{}, &ValidationError{Field: key, Message: "unknown configuration key"}
		}
	}

	maxSize, err := ParseSize(v.GetString(KeyMaxFileSize))
	if err != nil {
		return Config{}, &ValidationError{Field: KeyMaxFileSize, Message: err.Error()}
	}

	cfg := Config{
		Root:         root,
		Style:        strings.ToLower(strings.TrimSpace(v.GetString(KeyStyle))),
		MaxDepth:     v.GetInt(KeyMaxDepth),
		ShowHidden:   v.GetBool(KeyShowHidden),
		Colorize:     v.GetBool(KeyColorize),
		ShowSize:     v.GetBool(KeyShowSize),
		Include:      SplitList(v.GetStringSlice(KeyInclude)),
		Exclude:      SplitList(v.GetStringSlice(KeyExclude)),
		SmartExclude: v.GetBool(KeySmartExclude),
		GitIgnore:    v.GetBool(KeyGitIgnore),
		Export:       v.GetBool(KeyExport),
		MaxFileSize:  maxSize,
		OutputDir:    v.GetString(KeyOutputDir),
		Indicators:   IndicatorMode(strings.ToLower(strings.TrimSpace(v.GetString(KeyIndicators)))),
		AddMarker:    v.GetBool(KeyAddMarker),
		Tokens:       v.GetBool(KeyTokens),
		PDFPath:      v.GetString(KeyPDF),
		Clipboard:    v.GetBool(KeyClipboard),
		Verbose:      v.GetBool(KeyVerbose),
		SkipErrors:   v.GetBool(KeySkipErrors),
		DryRun:       v.GetBool(KeyDryRun),
		Interactive:  v.GetBool(KeyInteractive),
	}
	if exts := SplitList(v.GetStringSlice(KeyContentExtensions)); len(exts) > 0 {
		cfg.ContentExtensions = exts
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SplitList flattens comma-separated items and drops empty entries, so
// "-E a,b -E c" and DIRTREE_EXCLUDE="a,b c" both work.
func SplitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Summary returns a one-line description of the effective options for
// debug logging.
func (c *Config) Summary() string {
	exts := "default"
	if c.ContentExtensions != nil {
		exts = strings.Join(c.ContentExtensions, ",")
	}
	return fmt.Sprintf("style=%s max_depth=%d hidden=%t color=%t size=%t smart=%t export=%t max_file_size=%s extensions=%s skip_errors=%t",
		c.Style, c.MaxDepth, c.ShowHidden, c.Colorize, c.ShowSize, c.SmartExclude, c.Export,
		FormatBytes(c.MaxFileSize), exts, c.SkipErrors)
}
