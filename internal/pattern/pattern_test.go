package pattern

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadenpxrk/dirtree/internal/logger"
)

func TestMatcherSemantics(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		candidate string
		want      bool
	}{
		{"extension on bare name", "*.md", "README.md", true},
		{"single star stays in one segment", "*.md", "docs/guide.md", false},
		{"double star crosses segments", "**/*.md", "docs/deep/guide.md", true},
		{"double star matches zero segments", "**/*.md", "guide.md", true},
		{"directory prefix with double star", "src/**/*.js", "src/feature/a/component.js", true},
		{"literal directory name", "node_modules", "node_modules", true},
		{"literal does not match substring", "node", "node_modules", false},
		{"trailing slash is ignored", "build/", "build", true},
		{"leading dot slash is ignored", "./dist", "dist", true},
		{"character class", "file[0-9].txt", "file7.txt", true},
		{"alternatives", "*.{yml,yaml}", "config.yaml", true},
		{"egg-info glob", "*.egg-info", "pkg.egg-info", true},
		{"empty candidate never matches", "*", "", false},
	}

	c := NewCache(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := c.Compile(tt.pattern)
			require.True(t, m.Valid())
			assert.Equal(t, tt.want, m.Match(tt.candidate))
		})
	}
}

func TestCompileCachesBySource(t *testing.T) {
	c := NewCache(nil)

	first := c.Compile("*.go")
	second := c.Compile("*.go")
	c.Compile("*.md")

	assert.Same(t, first, second)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "*.go", first.Source())
}

func TestMalformedPatternNeverMatches(t *testing.T) {
	buf := &bytes.Buffer{}
	c := NewCache(logger.NewConsoleLogger(buf, "warn"))

	m := c.Compile("[abc")

	assert.False(t, m.Valid())
	assert.False(t, m.Match("[abc"))
	assert.False(t, m.Match("a"))
	assert.Contains(t, buf.String(), "malformed pattern")

	// the warning is emitted once per pattern
	c.Compile("[abc")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("malformed")))
}

func TestMatchAny(t *testing.T) {
	c := NewCache(nil)
	patterns := []string{"*.log", "src/**/*.tmp"}

	hit, ok := c.MatchAny(patterns, "debug.log", "logs/debug.log")
	assert.True(t, ok)
	assert.Equal(t, "*.log", hit)

	hit, ok = c.MatchAny(patterns, "x.tmp", "src/a/x.tmp")
	assert.True(t, ok)
	assert.Equal(t, "src/**/*.tmp", hit)

	_, ok = c.MatchAny(patterns, "x.tmp", "other/x.tmp")
	assert.False(t, ok)

	_, ok = c.MatchAny(nil, "anything", "anything")
	assert.False(t, ok)
}
