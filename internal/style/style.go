// Package style holds the tree drawing sets, the per-extension color and
// emoji tables, and the Decorator that applies them to walker output.
package style

import (
	"fmt"
	"slices"

	"github.com/jadenpxrk/dirtree/internal/config"
	"github.com/jadenpxrk/dirtree/internal/filter"
	"github.com/jadenpxrk/dirtree/internal/walker"
)

// Tree is one connector set.
type Tree struct {
	Branch  string
	Tee     string
	LastTee string
	Empty   string
	// Emojis prefixes every entry with a type emoji and the root with a tree.
	Emojis bool
}

var trees = map[string]Tree{
	"ascii":   {Branch: "|   ", Tee: "|-- ", LastTee: "`-- ", Empty: "    "},
	"unicode": {Branch: "│   ", Tee: "├── ", LastTee: "└── ", Empty: "    "},
	"bold":    {Branch: "┃   ", Tee: "┣━━ ", LastTee: "┗━━ ", Empty: "    "},
	"rounded": {Branch: "│   ", Tee: "├── ", LastTee: "╰── ", Empty: "    "},
	"emoji":   {Branch: "┃   ", Tee: "├── ", LastTee: "└── ", Empty: "    ", Emojis: true},
	"minimal": {Branch: "  ", Tee: "- ", LastTee: "- ", Empty: "  "},
}

// Lookup returns the connector set for name.
func Lookup(name string) (Tree, bool) {
	t, ok := trees[name]
	return t, ok
}

// Names returns the available style ids in sorted order.
func Names() []string {
	names := make([]string, 0, len(trees))
	for name := range trees {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Decorator renders walker lines with a Tree and an optional Palette.
type Decorator struct {
	tree    Tree
	palette *Palette
}

var _ walker.Decorator = (*Decorator)(nil)

// New returns the Decorator for the named style. colorize enables ANSI
// colors regardless of the terminal; callers decide whether it applies.
func New(name string, colorize bool) (*Decorator, error) {
	t, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown style %q", name)
	}
	return &Decorator{tree: t, palette: NewPalette(colorize)}, nil
}

func (d *Decorator) Root(name string) string {
	s := d.palette.dir.Sprint(name)
	if d.tree.Emojis {
		return "🌳 " + s
	}
	return s
}

func (d *Decorator) Pointer(_ bool, isLast bool) string {
	if isLast {
		return d.tree.LastTee
	}
	return d.tree.Tee
}

func (d *Decorator) Continuation(isLast bool) string {
	if isLast {
		return d.tree.Empty
	}
	return d.tree.Branch
}

func (d *Decorator) Name(name string, isDir bool) string {
	var s string
	if isDir {
		s = d.palette.dir.Sprint(name)
	} else {
		s = d.palette.ForExtension(filter.Extension(name)).Sprint(name)
	}
	if d.tree.Emojis {
		return Emoji(name, isDir) + " " + s
	}
	return s
}

func (d *Decorator) Size(size int64, known bool) string {
	if !known {
		return " (" + d.palette.failure.Sprint("Size N/A") + ")"
	}
	return " (" + d.palette.muted.Sprint(config.FormatBytes(size)) + ")"
}

func (d *Decorator) Indicator(included bool) string {
	if included {
		return " " + d.palette.success.Sprint("[LLM✓]")
	}
	return " " + d.palette.muted.Sprint("[LLM✗]")
}

func (d *Decorator) Excluded() string {
	return " " + d.palette.warning.Sprint("[excluded]")
}

func (d *Decorator) Note(kind walker.NoteKind, text string) string {
	if kind == walker.NoteError {
		return d.palette.failure.Sprint(text)
	}
	return d.palette.muted.Sprint(text)
}
