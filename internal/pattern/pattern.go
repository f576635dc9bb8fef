// Package pattern compiles shell-glob patterns into cached matchers.
//
// Patterns follow doublestar semantics: "*" matches within a single path
// segment, "**" matches across segments, and "{a,b}" and "[...]" are
// supported. Candidates are bare entry names or root-relative paths using
// forward slashes without a leading slash.
package pattern

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jadenpxrk/dirtree/internal/logger"
)

// Matcher tests candidates against one compiled pattern.
// A malformed pattern yields a Matcher that never matches.
type Matcher struct {
	source  string
	glob    string
	invalid bool
}

// Source returns the raw pattern string the matcher was compiled from.
func (m *Matcher) Source() string {
	return m.source
}

// Valid reports whether the pattern compiled cleanly.
func (m *Matcher) Valid() bool {
	return !m.invalid
}

// Match reports whether candidate matches the pattern.
func (m *Matcher) Match(candidate string) bool {
	if m.invalid || candidate == "" {
		return false
	}
	ok, err := doublestar.Match(m.glob, candidate)
	if err != nil {
		return false
	}
	return ok
}

// Cache compiles patterns once per raw source string.
type Cache struct {
	mu       sync.Mutex
	compiled map[string]*Matcher
	log      logger.Logger
}

// NewCache creates an empty matcher cache. Warnings about malformed patterns
// are reported through log; a nil log discards them.
func NewCache(log logger.Logger) *Cache {
	if log == nil {
		log = logger.Discard
	}
	return &Cache{
		compiled: make(map[string]*Matcher),
		log:      log,
	}
}

// Compile returns the cached matcher for pattern, compiling it on first use.
func (c *Cache) Compile(pattern string) *Matcher {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.compiled[pattern]; ok {
		return m
	}

	m := &Matcher{source: pattern, glob: normalize(pattern)}
	if m.glob == "" || !doublestar.ValidatePattern(m.glob) {
		m.invalid = true
		c.log.LogWarn(fmt.Sprintf("Ignoring malformed pattern %q: it will never match", pattern))
	}
	c.compiled[pattern] = m
	return m
}

// Len returns the number of distinct patterns compiled so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.compiled)
}

// MatchAny tests name and relPath against every pattern and returns the
// first pattern that hits either candidate.
func (c *Cache) MatchAny(patterns []string, name, relPath string) (string, bool) {
	for _, p := range patterns {
		m := c.Compile(p)
		if m.Match(name) || (relPath != "" && relPath != "." && m.Match(relPath)) {
			return p, true
		}
	}
	return "", false
}

// normalize strips decorations users commonly add to directory patterns
// ("./build/", "/dist") so they compare against root-relative candidates.
func normalize(pattern string) string {
	p := strings.TrimSpace(pattern)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
