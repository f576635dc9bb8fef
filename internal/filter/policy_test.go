package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "/p"

func smartPolicy(opts Options) *Policy {
	opts.SmartDirExcludes = DefaultSmartDirExcludes()
	opts.SmartFileExcludes = DefaultSmartFileExcludes()
	return New(root, opts, nil, nil)
}

func TestVisible(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		path       string
		isDir      bool
		wantOK     bool
		wantReason Reason
	}{
		{"plain file", Options{}, "/p/a.py", false, true, ReasonNone},
		{"root is never hidden", Options{}, "/p", true, true, ReasonNone},
		{"hidden dir", Options{}, "/p/.git", true, false, ReasonHidden},
		{"hidden shown", Options{ShowHidden: true}, "/p/.git", true, true, ReasonNone},
		{"cli exclude by name", Options{ExcludePatterns: []string{"*.tmp"}}, "/p/x/y.tmp", false, false, ReasonCLIExcluded},
		{"cli exclude by rel path", Options{ExcludePatterns: []string{"docs/**"}}, "/p/docs/a/b.md", false, false, ReasonCLIExcluded},
		{"inside smart dir", Options{}, "/p/node_modules/x.js", false, false, ReasonInsideSmart},
		{"deep inside smart dir", Options{}, "/p/src/build/out.o", false, false, ReasonInsideSmart},
		{"smart dir itself stays visible", Options{}, "/p/node_modules", true, true, ReasonNone},
		{"include matches", Options{IncludePatterns: []string{"*.md"}}, "/p/README.md", false, true, ReasonNone},
		{"include misses", Options{IncludePatterns: []string{"*.md"}}, "/p/notes.txt", false, false, ReasonNotIncluded},
		{"include exempts dirs", Options{IncludePatterns: []string{"*.md"}}, "/p/docs", true, true, ReasonNone},
		{"hidden wins over exclude", Options{ExcludePatterns: []string{".env"}}, "/p/.env", false, false, ReasonHidden},
		{"exclude wins over include", Options{IncludePatterns: []string{"*.md"}, ExcludePatterns: []string{"CHANGELOG.md"}}, "/p/CHANGELOG.md", false, false, ReasonCLIExcluded},
		{"smart containment wins over include", Options{IncludePatterns: []string{"*.js"}}, "/p/node_modules/x.js", false, false, ReasonInsideSmart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := smartPolicy(tt.opts)
			ok, reason := p.Visible(tt.path, tt.isDir)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestShouldRecurse(t *testing.T) {
	p := smartPolicy(Options{
		IncludePatterns: []string{"*.md"},
		ExcludePatterns: []string{"vendor"},
	})

	assert.True(t, p.ShouldRecurse("/p"))
	assert.True(t, p.ShouldRecurse("/p/src"), "include patterns never block recursion")
	assert.False(t, p.ShouldRecurse("/p/.cache"))
	assert.False(t, p.ShouldRecurse("/p/vendor"))
	assert.False(t, p.ShouldRecurse("/p/node_modules"))
	assert.False(t, p.ShouldRecurse("/p/pkg.egg-info"))

	reason, ok := p.RecurseReason("/p/dist")
	assert.False(t, ok)
	assert.Equal(t, ReasonSmartDir, reason)
}

func TestSmartExcludeDisabled(t *testing.T) {
	p := New(root, Options{}, nil, nil)

	assert.True(t, p.ShouldRecurse("/p/node_modules"))
	ok, _ := p.Visible("/p/node_modules/x.js", false)
	assert.True(t, ok)
	ok, _ = p.ContentEligible("/p/package-lock.json", 10)
	assert.True(t, ok)
}

func TestContentEligible(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		path       string
		size       int64
		wantOK     bool
		wantReason Reason
	}{
		{"text file", Options{}, "/p/a.py", 10, true, ReasonNone},
		{"cli excluded", Options{ExcludePatterns: []string{"secret*"}}, "/p/secret.txt", 10, false, ReasonCLIExcluded},
		{"under smart dir", Options{}, "/p/build/gen.go", 10, false, ReasonInsideSmart},
		{"under dunder dir", Options{}, "/p/__snapshots__/a.txt", 10, false, ReasonDunderDir},
		{"under interactive dir exclude", Options{ContentDirExcludes: []string{"fixtures"}}, "/p/test/fixtures/a.json", 10, false, ReasonContentDir},
		{"smart file", Options{}, "/p/package-lock.json", 10, false, ReasonSmartFile},
		{"dotenv variant", Options{}, "/p/.env.local", 10, false, ReasonSmartFile},
		{"earlier export", Options{}, "/p/dirtree_export_p_20240101_000000.md", 10, false, ReasonSmartFile},
		{"unknown size", Options{}, "/p/a.py", -1, false, ReasonUnknownSize},
		{"too large", Options{MaxContentSize: 100}, "/p/a.py", 101, false, ReasonTooLarge},
		{"at the cap", Options{MaxContentSize: 100}, "/p/a.py", 100, true, ReasonNone},
		{"binary extension", Options{}, "/p/logo.png", 10, false, ReasonBinary},
		{"unknown extension defaults to included", Options{}, "/p/Makefile", 10, true, ReasonNone},
		{"uppercase extension", Options{}, "/p/IMAGE.JPG", 10, false, ReasonBinary},
		{"explicit extensions include", Options{ContentExtensions: []string{".PY", "md"}}, "/p/a.py", 10, true, ReasonNone},
		{"explicit extensions exclude text", Options{ContentExtensions: []string{"md"}}, "/p/a.py", 10, false, ReasonExtension},
		{"explicit extensions admit binary", Options{ContentExtensions: []string{"png"}}, "/p/logo.png", 10, true, ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := smartPolicy(tt.opts)
			ok, reason := p.ContentEligible(tt.path, tt.size)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestHeuristicWithoutSmartFiles(t *testing.T) {
	p := New(root, Options{}, nil, nil)
	ok, _ := p.ContentEligible("/p/app.log", 10)
	assert.True(t, ok)

	assert.True(t, IsTextExtension("go"))
	assert.True(t, IsBinaryExtension("lock"))
	assert.False(t, IsBinaryExtension("go"))
}

func TestDefaultMaxContentSize(t *testing.T) {
	p := New(root, Options{}, nil, nil)
	assert.Equal(t, DefaultMaxContentSize, p.MaxContentSize())
	assert.Nil(t, p.ContentExtensions())
}

func TestPolicyCopiesInputs(t *testing.T) {
	excludes := []string{"*.tmp"}
	p := New(root, Options{ExcludePatterns: excludes}, nil, nil)
	excludes[0] = "*.go"

	ok, _ := p.Visible("/p/main.go", false)
	assert.True(t, ok)
	ok, _ = p.Visible("/p/x.tmp", false)
	assert.False(t, ok)
}

func TestRel(t *testing.T) {
	p := New(root, Options{}, nil, nil)
	assert.Equal(t, ".", p.Rel("/p"))
	assert.Equal(t, "a/b.txt", p.Rel("/p/a/b.txt"))
	assert.Equal(t, "elsewhere.txt", p.Rel("/q/elsewhere.txt"))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "py", Extension("a.PY"))
	assert.Equal(t, "", Extension("Makefile"))
	assert.Equal(t, "gz", Extension("a.tar.gz"))
	assert.Equal(t, "gitignore", Extension(".gitignore"))
	assert.Equal(t, "md", NormalizeExtension(" ..MD "))
}

func TestGitIgnore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.secret\ngenerated/\n"), 0o644))

	matcher, err := LoadGitIgnore(dir)
	require.NoError(t, err)
	require.NotNil(t, matcher)

	p := New(dir, Options{GitIgnore: matcher}, nil, nil)

	ok, reason := p.Visible(filepath.Join(dir, "keys.secret"), false)
	assert.False(t, ok)
	assert.Equal(t, ReasonGitIgnored, reason)

	assert.False(t, p.ShouldRecurse(filepath.Join(dir, "generated")))

	ok, _ = p.Visible(filepath.Join(dir, "main.go"), false)
	assert.True(t, ok)

	ok, reason = p.ContentEligible(filepath.Join(dir, "keys.secret"), 5)
	assert.False(t, ok)
	assert.Equal(t, ReasonGitIgnored, reason)
}

func TestLoadGitIgnoreMissing(t *testing.T) {
	matcher, err := LoadGitIgnore(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, matcher)
}
