// Package scanner runs the quick breadth-first discovery pass that feeds the
// interactive pickers. It is independent of the tree walker: it applies only
// the hidden-file rule, optional name excludes and a fixed list of heavy
// directories it never descends into.
package scanner

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jadenpxrk/dirtree/internal/logger"
	"github.com/jadenpxrk/dirtree/internal/pattern"
	"github.com/jadenpxrk/dirtree/internal/resolve"
)

// Mode selects what the scan counts.
type Mode int

const (
	// ModeExtensions counts lowercase file extensions.
	ModeExtensions Mode = iota
	// ModeDirNames counts directory base names.
	ModeDirNames
)

func (m Mode) label() string {
	if m == ModeDirNames {
		return "directory names"
	}
	return "file types"
}

// NoExtension is the key used for files without an extension.
const NoExtension = "(no ext)"

// DefaultMaxItems bounds a scan when no budget is given.
const DefaultMaxItems = 10000

// progressEvery is how many items pass between progress callbacks.
const progressEvery = 50

var noRecurse = map[string]struct{}{
	"node_modules": {}, "__pycache__": {}, ".git": {}, ".venv": {}, "venv": {}, "env": {},
	"build": {}, "dist": {}, ".cache": {}, ".npm": {}, ".next": {}, "out": {},
}

// Progress is reported periodically while scanning.
type Progress struct {
	Scanned  int
	MaxItems int
	Unique   int
	Label    string
	Elapsed  time.Duration
}

// Options configures a scan.
type Options struct {
	Mode       Mode
	MaxItems   int
	ShowHidden bool
	// Exclude patterns are matched against entry names only.
	Exclude  []string
	Patterns *pattern.Cache

	// Progress, when set, is called every few dozen items and once at the end.
	Progress func(Progress)

	// Resolver and State are optional. Without them listing failures are
	// logged and the directory is skipped.
	Resolver *resolve.Resolver
	State    *resolve.State
	Logger   logger.Logger
}

// Count is one discovered item and how often it was seen.
type Count struct {
	Name  string
	Count int
}

// Result holds the (possibly partial) counts of a scan.
type Result struct {
	Counts  map[string]int
	Scanned int
	// Truncated is set when the item budget stopped the scan.
	Truncated bool
	// Interrupted is set when the context was cancelled mid-scan.
	Interrupted bool
}

// Sorted returns the counts ordered by frequency, then name.
func (r *Result) Sorted() []Count {
	out := make([]Count, 0, len(r.Counts))
	for name, n := range r.Counts {
		out = append(out, Count{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Scan walks root breadth-first until the tree is exhausted, the item budget
// is spent or ctx is cancelled. Cancellation is not an error: the partial
// counts are returned with Interrupted set. Only an abort from the error
// resolver yields an error.
func Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.Patterns == nil {
		opts.Patterns = pattern.NewCache(log)
	}

	res := &Result{Counts: make(map[string]int)}
	start := time.Now()
	report := func() {
		if opts.Progress != nil {
			opts.Progress(Progress{
				Scanned:  res.Scanned,
				MaxItems: opts.MaxItems,
				Unique:   len(res.Counts),
				Label:    opts.Mode.label(),
				Elapsed:  time.Since(start),
			})
		}
	}

	log.LogInfo(fmt.Sprintf("Starting %s scan in %s (max: %d, hidden: %t)", opts.Mode.label(), root, opts.MaxItems, opts.ShowHidden))

	seen := make(map[string]struct{})
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		seen[resolved] = struct{}{}
	} else {
		log.LogWarn(fmt.Sprintf("Could not resolve root %s for scan: %v", root, err))
		seen[root] = struct{}{}
	}
	queue := []string{root}

scan:
	for len(queue) > 0 {
		if ctx.Err() != nil {
			res.Interrupted = true
			log.LogWarn("Scan interrupted")
			break
		}

		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			if opts.Resolver != nil && opts.State != nil {
				if herr := opts.State.Handle(opts.Resolver, dir, err, resolve.PhaseScan); herr != nil {
					return nil, herr
				}
			} else {
				log.LogWarn(fmt.Sprintf("Scan: skipping %s: %v", dir, err))
			}
			continue
		}

		for _, d := range entries {
			if res.Scanned >= opts.MaxItems {
				res.Truncated = true
				log.LogInfo(fmt.Sprintf("Scan reached max items (%d)", opts.MaxItems))
				break scan
			}

			name := d.Name()
			if !opts.ShowHidden && strings.HasPrefix(name, ".") {
				continue
			}
			if pat, ok := opts.Patterns.MatchAny(opts.Exclude, name, ""); ok {
				log.LogDebug(fmt.Sprintf("Scan: skipping %s (pattern %q)", name, pat))
				continue
			}

			res.Scanned++
			if res.Scanned%progressEvery == 0 {
				report()
			}

			path := filepath.Join(dir, name)
			info, err := os.Stat(path)
			if err != nil {
				log.LogWarn(fmt.Sprintf("Scan: could not stat %s: %v", path, err))
				continue
			}

			switch {
			case info.Mode().IsRegular():
				if opts.Mode == ModeExtensions {
					res.Counts[extensionKey(name)]++
				}
			case info.IsDir():
				if opts.Mode == ModeDirNames {
					res.Counts[name]++
				}
				if _, skip := noRecurse[name]; skip {
					continue
				}
				resolved, err := filepath.EvalSymlinks(path)
				if err != nil {
					log.LogWarn(fmt.Sprintf("Scan: could not resolve %s: %v", path, err))
					continue
				}
				if _, ok := seen[resolved]; ok {
					continue
				}
				seen[resolved] = struct{}{}
				queue = append(queue, path)
			}
		}
	}

	report()
	log.LogInfo(fmt.Sprintf("Scan finished. Found %d unique %s from %d items", len(res.Counts), opts.Mode.label(), res.Scanned))
	return res, nil
}

func extensionKey(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return NoExtension
	}
	return ext
}
