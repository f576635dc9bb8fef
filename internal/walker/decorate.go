package walker

import (
	"fmt"

	"github.com/jadenpxrk/dirtree/internal/config"
)

// NoteKind classifies an annotation line.
type NoteKind int

const (
	NoteCycle NoteKind = iota
	NoteError
)

// Decorator turns entry facts into display fragments. Implementations hold
// their own immutable style tables.
type Decorator interface {
	Root(name string) string
	// Pointer is the connector drawn before an entry name.
	Pointer(isDir, isLast bool) string
	// Continuation is the prefix segment children inherit from their parent.
	Continuation(isLast bool) string
	Name(name string, isDir bool) string
	// Size renders the size suffix, including its leading space.
	Size(size int64, known bool) string
	// Indicator renders the content-export marker, including its leading space.
	Indicator(included bool) string
	// Excluded renders the marker for a directory that was not entered.
	Excluded() string
	Note(kind NoteKind, text string) string
}

// PlainDecorator draws unicode connectors without color.
type PlainDecorator struct{}

func (PlainDecorator) Root(name string) string { return name }

func (PlainDecorator) Pointer(_ bool, isLast bool) string {
	if isLast {
		return "└── "
	}
	return "├── "
}

func (PlainDecorator) Continuation(isLast bool) string {
	if isLast {
		return "    "
	}
	return "│   "
}

func (PlainDecorator) Name(name string, _ bool) string { return name }

func (PlainDecorator) Size(size int64, known bool) string {
	if !known {
		return " (Size N/A)"
	}
	return fmt.Sprintf(" (%s)", config.FormatBytes(size))
}

func (PlainDecorator) Indicator(included bool) string {
	if included {
		return " [LLM✓]"
	}
	return " [LLM✗]"
}

func (PlainDecorator) Excluded() string { return " [excluded]" }

func (PlainDecorator) Note(_ NoteKind, text string) string { return text }
