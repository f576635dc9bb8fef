package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadenpxrk/dirtree/internal/resolve"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
}

func TestScanExtensions(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"main.go", "util.GO", "README.md", "Makefile",
		"src/a.go", "src/deep/b.py",
		"node_modules/pkg/index.js",
		".hidden/secret.txt", ".env",
	)

	res, err := Scan(context.Background(), root, Options{Mode: ModeExtensions})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"go":        3,
		"md":        1,
		"py":        1,
		NoExtension: 1,
	}, res.Counts)
	assert.False(t, res.Truncated)
	assert.False(t, res.Interrupted)

	sorted := res.Sorted()
	require.NotEmpty(t, sorted)
	assert.Equal(t, Count{Name: "go", Count: 3}, sorted[0])
	assert.Equal(t, NoExtension, sorted[1].Name, "ties sort by name")
}

func TestScanDirNames(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "src/tests/a.go", "lib/tests/b.go", "node_modules/x/y.js")

	res, err := Scan(context.Background(), root, Options{Mode: ModeDirNames})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Counts["tests"])
	assert.Equal(t, 1, res.Counts["node_modules"], "heavy directories are counted")
	assert.Zero(t, res.Counts["x"], "but never entered")
}

func TestScanHiddenAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, ".config/a.toml", "gen/b.pb", "c.txt")

	res, err := Scan(context.Background(), root, Options{
		Mode:       ModeExtensions,
		ShowHidden: true,
		Exclude:    []string{"gen"},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"toml": 1, "txt": 1}, res.Counts)
}

func TestScanBudget(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.txt", "b.txt", "c.txt", "d.txt", "e.txt")

	var reports []Progress
	res, err := Scan(context.Background(), root, Options{
		Mode:     ModeExtensions,
		MaxItems: 3,
		Progress: func(p Progress) { reports = append(reports, p) },
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Scanned)
	assert.True(t, res.Truncated)
	assert.Equal(t, 3, res.Counts["txt"])
	require.NotEmpty(t, reports)
	last := reports[len(reports)-1]
	assert.Equal(t, 3, last.Scanned)
	assert.Equal(t, "file types", last.Label)
}

func TestScanSymlinkCycle(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "sub/a.go")
	if err := os.Symlink(root, filepath.Join(root, "sub", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	res, err := Scan(context.Background(), root, Options{Mode: ModeExtensions})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Counts["go"])
}

func TestScanInterrupted(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.go")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Scan(ctx, root, Options{})
	require.NoError(t, err)
	assert.True(t, res.Interrupted)
	assert.Zero(t, res.Scanned)
}

func TestScanMissingRoot(t *testing.T) {
	res, err := Scan(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Counts)
}

type abortPrompter struct{ asked int }

func (p *abortPrompter) Prompt(resolve.Problem) (resolve.Choice, error) {
	p.asked++
	return resolve.ChoiceAbort, nil
}

func (p *abortPrompter) ShowDetails(resolve.Problem) {}

// vanishingTree holds a "gone" directory followed by progressEvery text
// files. The returned progress callback removes "gone" after it has been
// queued, so listing it fails regardless of the user running the test.
func vanishingTree(t *testing.T) (string, func(Progress)) {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, "gone/inner.go")
	for i := range progressEvery {
		writeFiles(t, root, fmt.Sprintf("z%02d.txt", i))
	}
	gone := filepath.Join(root, "gone")
	return root, func(Progress) { _ = os.RemoveAll(gone) }
}

func TestScanListingErrorIsSkipped(t *testing.T) {
	root, progress := vanishingTree(t)
	state := resolve.NewState(false)

	res, err := Scan(context.Background(), root, Options{
		Mode:     ModeExtensions,
		Progress: progress,
		Resolver: resolve.New(resolve.Options{}),
		State:    state,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"txt": progressEvery}, res.Counts, "counts before the failure survive")
	skipped := state.Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, filepath.Join(root, "gone"), skipped[0].Path)
	assert.Contains(t, skipped[0].Reason, string(resolve.PhaseScan))
}

func TestScanMissingRootIsSkipped(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	state := resolve.NewState(false)

	res, err := Scan(context.Background(), missing, Options{
		Resolver: resolve.New(resolve.Options{}),
		State:    state,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Counts)
	require.Len(t, state.Skipped(), 1)
	assert.Equal(t, missing, state.Skipped()[0].Path)
}

func TestScanListingErrorAbort(t *testing.T) {
	root, progress := vanishingTree(t)
	prompter := &abortPrompter{}

	res, err := Scan(context.Background(), root, Options{
		Mode:     ModeExtensions,
		Progress: progress,
		Resolver: resolve.New(resolve.Options{Prompter: prompter, Interactive: true}),
		State:    resolve.NewState(false),
	})

	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, resolve.ErrAborted))
	var abort *resolve.AbortError
	require.ErrorAs(t, err, &abort)
	assert.Equal(t, filepath.Join(root, "gone"), abort.Path)
	assert.Equal(t, resolve.PhaseScan, abort.Phase)
	assert.Equal(t, 1, prompter.asked)
}
