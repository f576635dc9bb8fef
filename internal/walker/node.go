package walker

import (
	"github.com/jadenpxrk/dirtree/internal/resolve"
)

// Kind is the raw, non-followed type of an entry. It decides sibling order.
type Kind int

const (
	KindDir Kind = iota
	KindFile
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindFile:
		return "file"
	default:
		return "other"
	}
}

// Node is one listed entry. Nodes are never modified after the walk creates
// them.
type Node struct {
	Path  string
	Name  string
	Depth int
	Kind  Kind

	// IsDir and IsRegular follow symlinks. IsDir decides recursion.
	IsDir     bool
	IsRegular bool

	IsLast bool

	// Size is the followed size in bytes for non-directories, or -1 when it
	// was not needed or could not be read.
	Size int64

	// Excluded marks a visible directory that was not entered.
	Excluded bool

	// ContentEligible is set when export is enabled and the file passed the
	// content policy during the walk.
	ContentEligible bool

	// Notes are extra rendered lines emitted directly below this node, such
	// as cycle markers and listing errors.
	Notes []string
}

// IsFile reports whether the node is a regular file after following links.
func (n *Node) IsFile() bool {
	return !n.IsDir && n.IsRegular
}

// Result is the ordered outcome of one walk. Lines[i] renders Nodes[i].
type Result struct {
	Root      string
	RootLine  string
	RootNotes []string

	Nodes []Node
	Lines []string

	Scanned int
	Listed  int
	Cycles  int
	Skipped []resolve.SkippedItem

	// Content indicator counters, populated only when export is enabled.
	EligibleFiles int
	IncludedFiles int
}

// TreeLines returns the full rendering: the root line, then every node line
// followed by its notes.
func (r *Result) TreeLines() []string {
	out := make([]string, 0, len(r.Lines)+len(r.RootNotes)+1)
	out = append(out, r.RootLine)
	out = append(out, r.RootNotes...)
	for i, line := range r.Lines {
		out = append(out, line)
		out = append(out, r.Nodes[i].Notes...)
	}
	return out
}

// Files returns the listed regular files in walk order.
func (r *Result) Files() []*Node {
	var files []*Node
	for i := range r.Nodes {
		if r.Nodes[i].IsFile() {
			files = append(files, &r.Nodes[i])
		}
	}
	return files
}
