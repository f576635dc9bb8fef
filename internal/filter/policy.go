// Package filter decides what the tree walker shows, what it enters, and
// which files qualify to have their content exported.
//
// A Policy is built once per run and is read-only afterwards. Its decision
// methods never touch the filesystem: callers supply the entry kind and size.
package filter

import (
	"fmt"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/jadenpxrk/dirtree/internal/logger"
	"github.com/jadenpxrk/dirtree/internal/pattern"
)

// Reason explains why a candidate was rejected. The empty Reason means the
// candidate passed.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonHidden      Reason = "hidden"
	ReasonCLIExcluded Reason = "matches exclude pattern"
	ReasonGitIgnored  Reason = "ignored by .gitignore"
	ReasonInsideSmart Reason = "inside smart-excluded directory"
	ReasonNotIncluded Reason = "does not match any include pattern"
	ReasonSmartDir    Reason = "smart-excluded directory"
	ReasonDunderDir   Reason = "inside double-underscore directory"
	ReasonContentDir  Reason = "inside content-excluded directory"
	ReasonSmartFile   Reason = "matches smart file exclude"
	ReasonUnknownSize Reason = "size unknown"
	ReasonTooLarge    Reason = "exceeds maximum content size"
	ReasonExtension   Reason = "extension not selected"
	ReasonBinary      Reason = "binary extension"
)

// DefaultMaxContentSize is the per-file export cap used when none is set.
const DefaultMaxContentSize int64 = 100 * 1024

// Options is the caller-facing description of a filter policy.
type Options struct {
	ShowHidden bool

	// IncludePatterns and ExcludePatterns come from the command line. Order
	// does not change matching; it is kept for diagnostics.
	IncludePatterns []string
	ExcludePatterns []string

	// SmartDirExcludes are directory patterns never recursed into.
	// SmartFileExcludes are file patterns kept out of export content only.
	// Both are empty when smart exclusion is disabled.
	SmartDirExcludes  []string
	SmartFileExcludes []string

	// ContentExtensions, when non-nil, decides export eligibility by
	// extension membership instead of the built-in heuristic.
	ContentExtensions []string
	MaxContentSize    int64

	// ContentDirExcludes are directory names whose files are kept out of
	// export content while still being listed in the tree.
	ContentDirExcludes []string

	// GitIgnore, when set, is consulted alongside ExcludePatterns.
	GitIgnore gitignore.IgnoreMatcher
}

// Policy holds immutable filter state for one traversal.
type Policy struct {
	root               string
	showHidden         bool
	include            []string
	exclude            []string
	smartDirs          []string
	smartFiles         []string
	contentExt         map[string]struct{}
	maxContentSize     int64
	contentDirExcludes map[string]struct{}
	ignore             gitignore.IgnoreMatcher

	patterns *pattern.Cache
	log      logger.Logger
}

// New builds a Policy rooted at root, which must be an absolute, cleaned
// directory path. patterns may be shared with other components; a nil cache
// gets a private one.
func New(root string, opts Options, patterns *pattern.Cache, log logger.Logger) *Policy {
	if log == nil {
		log = logger.Discard
	}
	if patterns == nil {
		patterns = pattern.NewCache(log)
	}
	maxSize := opts.MaxContentSize
	if maxSize == 0 {
		maxSize = DefaultMaxContentSize
	}

	p := &Policy{
		root:               filepath.Clean(root),
		showHidden:         opts.ShowHidden,
		include:            append([]string(nil), opts.IncludePatterns...),
		exclude:            append([]string(nil), opts.ExcludePatterns...),
		smartDirs:          append([]string(nil), opts.SmartDirExcludes...),
		smartFiles:         append([]string(nil), opts.SmartFileExcludes...),
		maxContentSize:     maxSize,
		contentDirExcludes: setOf(opts.ContentDirExcludes...),
		ignore:             opts.GitIgnore,
		patterns:           patterns,
		log:                log,
	}
	if opts.ContentExtensions != nil {
		p.contentExt = make(map[string]struct{}, len(opts.ContentExtensions))
		for _, ext := range opts.ContentExtensions {
			p.contentExt[NormalizeExtension(ext)] = struct{}{}
		}
	}

	// compile up front so malformed patterns are reported before the walk
	for _, group := range [][]string{p.include, p.exclude, p.smartDirs, p.smartFiles} {
		for _, pat := range group {
			patterns.Compile(pat)
		}
	}
	return p
}

// Root returns the directory the policy is anchored at.
func (p *Policy) Root() string { return p.root }

// MaxContentSize returns the per-file export cap in bytes.
func (p *Policy) MaxContentSize() int64 { return p.maxContentSize }

// ContentExtensions returns the explicit extension allowlist, or nil when
// the built-in heuristic applies.
func (p *Policy) ContentExtensions() []string {
	if p.contentExt == nil {
		return nil
	}
	out := make([]string, 0, len(p.contentExt))
	for ext := range p.contentExt {
		out = append(out, ext)
	}
	return out
}

// Visible decides whether an entry appears in the tree. Checks run in a
// fixed order and the first failing one supplies the reason: hidden, CLI
// exclude, smart-directory containment, CLI include (files only).
func (p *Policy) Visible(path string, isDir bool) (bool, Reason) {
	name := filepath.Base(path)
	rel := p.Rel(path)
	isRoot := rel == "."

	if !p.showHidden && !isRoot && strings.HasPrefix(name, ".") {
		p.debug(rel, "hidden")
		return false, ReasonHidden
	}

	if !isRoot {
		if reason, excluded := p.cliExcluded(name, rel, isDir); excluded {
			return false, reason
		}
	}

	for _, anc := range ancestors(rel) {
		if pat, ok := p.patterns.MatchAny(p.smartDirs, anc.name, anc.rel); ok {
			p.debug(rel, fmt.Sprintf("inside %q (smart pattern %q)", anc.rel, pat))
			return false, ReasonInsideSmart
		}
	}

	if len(p.include) > 0 && !isDir && !isRoot {
		if _, ok := p.patterns.MatchAny(p.include, name, rel); !ok {
			p.debug(rel, "no include pattern matched")
			return false, ReasonNotIncluded
		}
	}

	return true, ReasonNone
}

// ShouldRecurse decides whether the walker enters a directory. It does not
// consult include patterns, so non-matching directories are still searched
// for matching descendants. The root is always entered.
func (p *Policy) ShouldRecurse(dir string) bool {
	_, ok := p.RecurseReason(dir)
	return ok
}

// RecurseReason is ShouldRecurse with the blocking reason attached.
func (p *Policy) RecurseReason(dir string) (Reason, bool) {
	rel := p.Rel(dir)
	if rel == "." {
		return ReasonNone, true
	}
	name := filepath.Base(dir)

	if !p.showHidden && strings.HasPrefix(name, ".") {
		return ReasonHidden, false
	}
	if reason, excluded := p.cliExcluded(name, rel, true); excluded {
		return reason, false
	}
	if pat, ok := p.patterns.MatchAny(p.smartDirs, name, rel); ok {
		p.debug(rel, fmt.Sprintf("not entering (smart pattern %q)", pat))
		return ReasonSmartDir, false
	}
	return ReasonNone, true
}

// ContentEligible decides whether a file's bytes belong in the export.
// size is the stat size in bytes; a negative size means it is unknown.
func (p *Policy) ContentEligible(path string, size int64) (bool, Reason) {
	name := filepath.Base(path)
	rel := p.Rel(path)

	if reason, excluded := p.cliExcluded(name, rel, false); excluded {
		return false, reason
	}

	for _, anc := range ancestors(rel) {
		if _, ok := p.patterns.MatchAny(p.smartDirs, anc.name, anc.rel); ok {
			return false, ReasonInsideSmart
		}
		if strings.HasPrefix(anc.name, "__") {
			return false, ReasonDunderDir
		}
		if _, ok := p.contentDirExcludes[anc.name]; ok {
			return false, ReasonContentDir
		}
	}

	if _, ok := p.patterns.MatchAny(p.smartFiles, name, rel); ok {
		return false, ReasonSmartFile
	}

	if size < 0 {
		return false, ReasonUnknownSize
	}
	if size > p.maxContentSize {
		return false, ReasonTooLarge
	}

	ext := Extension(name)
	if p.contentExt != nil {
		if _, ok := p.contentExt[ext]; ok {
			return true, ReasonNone
		}
		return false, ReasonExtension
	}
	if IsTextExtension(ext) {
		return true, ReasonNone
	}
	if IsBinaryExtension(ext) {
		return false, ReasonBinary
	}
	return true, ReasonNone
}

// Rel returns path relative to the policy root using forward slashes. A path
// outside the root falls back to its base name.
func (p *Policy) Rel(path string) string {
	rel, err := filepath.Rel(p.root, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func (p *Policy) cliExcluded(name, rel string, isDir bool) (Reason, bool) {
	if pat, ok := p.patterns.MatchAny(p.exclude, name, rel); ok {
		p.debug(rel, fmt.Sprintf("exclude pattern %q", pat))
		return ReasonCLIExcluded, true
	}
	if p.ignore != nil && p.ignore.Match(filepath.Join(p.root, filepath.FromSlash(rel)), isDir) {
		p.debug(rel, "matched .gitignore")
		return ReasonGitIgnored, true
	}
	return ReasonNone, false
}

func (p *Policy) debug(rel, msg string) {
	p.log.LogDebug(fmt.Sprintf("Filter: %s: %s", rel, msg))
}

type ancestor struct {
	name string
	rel  string
}

// ancestors lists the directories strictly between the root and the entry
// at rel, outermost first.
func ancestors(rel string) []ancestor {
	if rel == "." || rel == "" {
		return nil
	}
	parts := strings.Split(rel, "/")
	out := make([]ancestor, 0, len(parts)-1)
	for i := 0; i < len(parts)-1; i++ {
		out = append(out, ancestor{
			name: parts[i],
			rel:  strings.Join(parts[:i+1], "/"),
		})
	}
	return out
}

// Extension returns the lowercase extension of name without the dot.
func Extension(name string) string {
	return NormalizeExtension(filepath.Ext(name))
}

// NormalizeExtension lowercases ext and strips any leading dots.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
}
