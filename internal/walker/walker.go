// Package walker performs the single depth-first pass over a directory tree.
//
// The walk uses an explicit stack. A directory's real path is added to the
// active set when it is opened and removed when its frame is popped, so only
// true cycles (a directory re-entered while it is still being processed) are
// cut; the same physical directory reached through unrelated paths is listed
// each time.
package walker

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jadenpxrk/dirtree/internal/config"
	"github.com/jadenpxrk/dirtree/internal/filter"
	"github.com/jadenpxrk/dirtree/internal/logger"
	"github.com/jadenpxrk/dirtree/internal/resolve"
)

// Options configures a Walker.
type Options struct {
	// MaxDepth limits listing; 0 means unlimited. The root is depth 0 and a
	// directory at depth MaxDepth is listed but not opened.
	MaxDepth int
	ShowSize bool

	// Export enables content-eligibility checks and indicators.
	Export     bool
	Indicators config.IndicatorMode

	Decorator Decorator
	Resolver  *resolve.Resolver
	State     *resolve.State
	Logger    logger.Logger
}

// Walker walks one root with one filter policy.
type Walker struct {
	policy *filter.Policy
	opts   Options
	log    logger.Logger
}

// New creates a Walker. Missing collaborators get quiet defaults: plain
// decoration, non-interactive error resolution and discarded logs.
func New(policy *filter.Policy, opts Options) *Walker {
	if opts.Decorator == nil {
		opts.Decorator = PlainDecorator{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard
	}
	if opts.Resolver == nil {
		opts.Resolver = resolve.New(resolve.Options{Logger: opts.Logger})
	}
	if opts.State == nil {
		opts.State = resolve.NewState(false)
	}
	if opts.Indicators == "" {
		opts.Indicators = config.IndicatorsIncluded
	}
	return &Walker{policy: policy, opts: opts, log: opts.Logger}
}

// entry is a visible child waiting to become a node.
type entry struct {
	path    string
	name    string
	kind    Kind
	isDir   bool
	regular bool
	// info is the followed stat, present for symlinks only.
	info fs.FileInfo
	d    fs.DirEntry
}

type frame struct {
	real     string
	depth    int
	prefix   string
	children []entry
	next     int
}

// Walk traverses the policy root. It returns an error wrapping
// resolve.ErrAborted when the user aborts, or the context error when ctx is
// cancelled; partial results are discarded in both cases.
func (w *Walker) Walk(ctx context.Context) (*Result, error) {
	root := w.policy.Root()
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	deco := w.opts.Decorator
	res := &Result{
		Root:     root,
		RootLine: deco.Root(filepath.Base(root)),
	}
	skippedBefore := len(w.opts.State.Skipped())
	active := make(map[string]struct{})

	w.log.LogInfo(fmt.Sprintf("Starting tree generation for %s", root))

	rootFrame, notes, err := w.open(root, 0, "", active, res)
	if err != nil {
		return nil, err
	}
	res.RootNotes = notes

	var stack []*frame
	if rootFrame != nil {
		stack = append(stack, rootFrame)
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		top := stack[len(stack)-1]
		if top.next >= len(top.children) {
			// Leave
			delete(active, top.real)
			stack = stack[:len(stack)-1]
			continue
		}

		c := top.children[top.next]
		top.next++
		isLast := top.next == len(top.children)

		node, line := w.describe(c, top, isLast, res)

		var child *frame
		if c.isDir && !node.Excluded {
			childPrefix := top.prefix + deco.Continuation(isLast)
			child, node.Notes, err = w.open(c.path, top.depth+1, childPrefix, active, res)
			if err != nil {
				return nil, err
			}
		}

		res.Nodes = append(res.Nodes, node)
		res.Lines = append(res.Lines, line)
		res.Listed++

		if child != nil {
			stack = append(stack, child)
		}
	}

	res.Skipped = w.opts.State.Skipped()[skippedBefore:]
	w.log.LogInfo(fmt.Sprintf("Tree generation complete. Scanned: %d, Listed: %d, Skipped: %d",
		res.Scanned, res.Listed, len(res.Skipped)))
	return res, nil
}

// open enters dir: it checks the depth limit and the active set, lists the
// directory and returns a frame of its visible children. When the directory
// cannot be entered, the returned notes explain why and the frame is nil.
func (w *Walker) open(dir string, depth int, prefix string, active map[string]struct{}, res *Result) (*frame, []string, error) {
	if w.opts.MaxDepth > 0 && depth >= w.opts.MaxDepth {
		w.log.LogDebug(fmt.Sprintf("Max depth %d reached at %s, stopping recursion", w.opts.MaxDepth, dir))
		return nil, nil, nil
	}

	deco := w.opts.Decorator

	realPath, err := filepath.EvalSymlinks(dir)
	if err != nil {
		if herr := w.opts.State.Handle(w.opts.Resolver, dir, err, resolve.PhaseEnter); herr != nil {
			return nil, nil, herr
		}
		note := prefix + deco.Note(NoteError, fmt.Sprintf("! Error processing subdirectory: %v", err))
		return nil, []string{note}, nil
	}

	if _, ok := active[realPath]; ok {
		w.log.LogWarn(fmt.Sprintf("Symlink loop detected: %s -> %s, skipping", dir, realPath))
		res.Cycles++
		return nil, []string{prefix + deco.Note(NoteCycle, "...(skipped: symlink loop)")}, nil
	}
	active[realPath] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		delete(active, realPath)
		if herr := w.opts.State.Handle(w.opts.Resolver, dir, err, resolve.PhaseList); herr != nil {
			return nil, nil, herr
		}
		note := prefix + deco.Note(NoteError, fmt.Sprintf("! Error listing directory: %v", err))
		return nil, []string{note}, nil
	}
	res.Scanned += len(entries)

	return &frame{
		real:     realPath,
		depth:    depth,
		prefix:   prefix,
		children: w.visibleChildren(dir, entries),
	}, nil, nil
}

// visibleChildren orders entries (directories, files, then everything else,
// each case-insensitively) and drops the ones the policy hides.
func (w *Walker) visibleChildren(dir string, entries []fs.DirEntry) []entry {
	slices.SortStableFunc(entries, func(a, b fs.DirEntry) int {
		if c := cmp.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name())); c != 0 {
			return c
		}
		return cmp.Compare(a.Name(), b.Name())
	})

	groups := [3][]entry{}
	for _, d := range entries {
		e := entry{
			path: filepath.Join(dir, d.Name()),
			name: d.Name(),
			d:    d,
		}
		switch {
		case d.IsDir():
			e.kind, e.isDir = KindDir, true
		case d.Type().IsRegular():
			e.kind, e.regular = KindFile, true
		default:
			e.kind = KindOther
			if d.Type()&fs.ModeSymlink != 0 {
				// broken links stay plain "other" entries
				if fi, err := os.Stat(e.path); err == nil {
					e.info = fi
					e.isDir = fi.IsDir()
					e.regular = fi.Mode().IsRegular()
				}
			}
		}

		if ok, _ := w.policy.Visible(e.path, e.isDir); !ok {
			continue
		}
		groups[e.kind] = append(groups[e.kind], e)
	}

	out := make([]entry, 0, len(groups[0])+len(groups[1])+len(groups[2]))
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// describe builds the node and display line for one visible child.
func (w *Walker) describe(c entry, parent *frame, isLast bool, res *Result) (Node, string) {
	deco := w.opts.Decorator
	node := Node{
		Path:      c.path,
		Name:      c.name,
		Depth:     parent.depth + 1,
		Kind:      c.kind,
		IsDir:     c.isDir,
		IsRegular: c.regular,
		IsLast:    isLast,
		Size:      -1,
	}

	var b strings.Builder
	b.WriteString(parent.prefix)
	b.WriteString(deco.Pointer(c.isDir, isLast))
	b.WriteString(deco.Name(c.name, c.isDir))

	if !c.isDir && (w.opts.ShowSize || w.opts.Export) {
		size, known := w.size(c)
		if known {
			node.Size = size
		}
		if w.opts.ShowSize {
			b.WriteString(deco.Size(size, known))
		}
		if w.opts.Export && c.regular && known {
			res.EligibleFiles++
			ok, reason := w.policy.ContentEligible(c.path, size)
			node.ContentEligible = ok
			if ok {
				res.IncludedFiles++
			} else {
				w.log.LogDebug(fmt.Sprintf("Content excluded: %s: %s", c.path, reason))
			}
			b.WriteString(w.indicator(ok))
		}
	}

	if c.isDir && !w.policy.ShouldRecurse(c.path) {
		node.Excluded = true
		b.WriteString(deco.Excluded())
	}

	return node, b.String()
}

func (w *Walker) size(c entry) (int64, bool) {
	info := c.info
	if info == nil {
		var err error
		info, err = c.d.Info()
		if err != nil {
			w.log.LogWarn(fmt.Sprintf("Could not get size for %s: %v", c.path, err))
			return 0, false
		}
	}
	return info.Size(), true
}

func (w *Walker) indicator(included bool) string {
	switch w.opts.Indicators {
	case config.IndicatorsAll:
		return w.opts.Decorator.Indicator(included)
	case config.IndicatorsIncluded:
		if included {
			return w.opts.Decorator.Indicator(true)
		}
	}
	return ""
}
