package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{-1, "N/A"},
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in))
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"100k", 100 * 1024, false},
		{"1.5m", 1572864, false},
		{"2G", 2 * 1024 * 1024 * 1024, false},
		{"100b", 100, false},
		{" 4096 ", 4096, false},
		{"", 0, true},
		{"lots", 0, true},
		{"k", 0, true},
		{"-5k", 0, true},
		{"inf", 0, true},
		{"nan", 0, true},
		{"infk", 0, true},
		{"1e30", 0, true},
		{"9e18g", 0, true},
		{"1e6g", 1e6 * 1024 * 1024 * 1024, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSizeOverflowMessage(t *testing.T) {
	_, err := ParseSize("1e30")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	t.Run("defaults are valid", func(t *testing.T) {
		c := Default()
		c.Root = dir
		require.NoError(t, c.Validate())
		assert.True(t, filepath.IsAbs(c.Root))
	})

	t.Run("unknown style", func(t *testing.T) {
		c := Default()
		c.Root = dir
		c.Style = "fancy"
		var verr *ValidationError
		require.ErrorAs(t, c.Validate(), &verr)
		assert.Equal(t, "style", verr.Field)
	})

	t.Run("unknown indicators", func(t *testing.T) {
		c := Default()
		c.Root = dir
		c.Indicators = "some"
		var verr *ValidationError
		require.ErrorAs(t, c.Validate(), &verr)
		assert.Equal(t, "indicators", verr.Field)
	})

	t.Run("negative depth", func(t *testing.T) {
		c := Default()
		c.Root = dir
		c.MaxDepth = -1
		var verr *ValidationError
		require.ErrorAs(t, c.Validate(), &verr)
	})

	t.Run("missing root", func(t *testing.T) {
		c := Default()
		c.Root = filepath.Join(dir, "nope")
		assert.True(t, errors.Is(c.Validate(), ErrInvalidRoot))
	})

	t.Run("file root", func(t *testing.T) {
		c := Default()
		c.Root = file
		assert.True(t, errors.Is(c.Validate(), ErrInvalidRoot))
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	v := viper.New()
	SetDefaults(v, false)
	v.Set(KeyInclude, []string{"*.go,*.md", " "})
	v.Set(KeyContentExtensions, []string{"py", "go"})
	v.Set(KeyMaxFileSize, "1m")
	v.Set(KeyStyle, "ASCII")

	cfg, err := Load(v, dir)
	require.NoError(t, err)

	assert.Equal(t, "ascii", cfg.Style)
	assert.Equal(t, []string{"*.go", "*.md"}, cfg.Include)
	assert.Nil(t, cfg.Exclude)
	assert.Equal(t, []string{"py", "go"}, cfg.ContentExtensions)
	assert.Equal(t, int64(1024*1024), cfg.MaxFileSize)
	assert.True(t, cfg.SmartExclude)
	assert.Equal(t, IndicatorsIncluded, cfg.Indicators)
}

func TestLoadDefaultsLeaveHeuristicExtensions(t *testing.T) {
	v := viper.New()
	SetDefaults(v, false)

	cfg, err := Load(v, t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg.ContentExtensions)
	assert.Equal(t, DefaultMaxFileSize, cfg.MaxFileSize)
	assert.Equal(t, "warn", cfg.LogLevel())
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	v := viper.New()
	SetDefaults(v, false)
	v.Set("colour", true)

	_, err := Load(v, t.TempDir())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "colour", verr.Field)
}

func TestLoadRejectsBadSize(t *testing.T) {
	v := viper.New()
	SetDefaults(v, false)
	v.Set(KeyMaxFileSize, "big")

	_, err := Load(v, t.TempDir())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KeyMaxFileSize, verr.Field)
}
