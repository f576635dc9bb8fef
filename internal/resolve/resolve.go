// Package resolve turns per-entry I/O failures into skip, skip-all or abort
// decisions for the tree walker and the discovery scanner.
package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"github.com/jadenpxrk/dirtree/internal/logger"
)

// ErrAborted is the sentinel wrapped by every abort. Callers test for it with
// errors.Is and must discard partial results when it surfaces.
var ErrAborted = errors.New("aborted by user")

// Phase names the operation that failed.
type Phase string

const (
	PhaseList  Phase = "listing directory"
	PhaseEnter Phase = "entering directory"
	PhaseScan  Phase = "scanning"
)

// Choice is an answer from an interactive prompt.
type Choice int

const (
	ChoiceSkipItem Choice = iota
	ChoiceSkipAll
	ChoiceAbort
	ChoiceShowDetails
)

func (c Choice) String() string {
	switch c {
	case ChoiceSkipItem:
		return "Skip this item"
	case ChoiceSkipAll:
		return "Skip all future errors"
	case ChoiceAbort:
		return "Abort"
	case ChoiceShowDetails:
		return "Show details"
	default:
		return fmt.Sprintf("Choice(%d)", int(c))
	}
}

// Prompter asks the user how to handle a failure. ShowDetails is called when
// the user picks ChoiceShowDetails, after which Prompt is asked again.
// A Prompt error is treated as an abort.
type Prompter interface {
	Prompt(p Problem) (Choice, error)
	ShowDetails(p Problem)
}

// Problem describes one failure presented to a Prompter.
type Problem struct {
	Path     string
	Err      error
	Phase    Phase
	Guidance string
}

// Decision is the outcome of resolving one failure.
type Decision struct {
	Skip    bool
	SkipAll bool
	// Diagnostic is a one-line message for the caller to surface when the
	// failure was skipped without asking.
	Diagnostic string
}

// Aborted reports whether the decision terminates the run.
func (d Decision) Aborted() bool { return !d.Skip }

// Options configures a Resolver.
type Options struct {
	// Prompter is consulted only when Interactive is true.
	Prompter    Prompter
	Interactive bool
	Logger      logger.Logger
}

// Resolver is stateless; skip-all state is carried by State.
type Resolver struct {
	prompter    Prompter
	interactive bool
	log         logger.Logger
}

// New creates a Resolver. Without a Prompter it is always non-interactive.
func New(opts Options) *Resolver {
	log := opts.Logger
	if log == nil {
		log = logger.Discard
	}
	return &Resolver{
		prompter:    opts.Prompter,
		interactive: opts.Interactive && opts.Prompter != nil,
		log:         log,
	}
}

// Resolve decides what to do about err, raised while performing phase on
// path, given the current skip-all flag.
func (r *Resolver) Resolve(path string, err error, phase Phase, skipAll bool) Decision {
	if skipAll {
		return Decision{
			Skip:       true,
			SkipAll:    true,
			Diagnostic: fmt.Sprintf("Auto-skipping %s: %v", path, err),
		}
	}

	problem := Problem{Path: path, Err: err, Phase: phase, Guidance: Guidance(err)}

	if !r.interactive {
		msg := fmt.Sprintf("Error %s '%s': %v; skipping", phase, path, err)
		if problem.Guidance != "" {
			msg += " (" + problem.Guidance + ")"
		}
		return Decision{Skip: true, SkipAll: false, Diagnostic: msg}
	}

	for {
		choice, perr := r.prompter.Prompt(problem)
		if perr != nil {
			r.log.LogDebug(fmt.Sprintf("Error prompt closed: %v", perr))
			return Decision{Skip: false, SkipAll: false}
		}
		switch choice {
		case ChoiceSkipItem:
			return Decision{Skip: true, SkipAll: false}
		case ChoiceSkipAll:
			return Decision{Skip: true, SkipAll: true}
		case ChoiceAbort:
			return Decision{Skip: false, SkipAll: false}
		case ChoiceShowDetails:
			r.prompter.ShowDetails(problem)
		default:
			r.log.LogWarn(fmt.Sprintf("Invalid choice %d", int(choice)))
		}
	}
}

// Guidance returns a short hint for well-known failure kinds.
func Guidance(err error) string {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return "permission denied; elevated privileges may be required"
	case errors.Is(err, fs.ErrNotExist):
		return "the file or directory no longer exists or was moved"
	case errors.Is(err, syscall.EBUSY):
		return "the file is being used by another process"
	case errors.Is(err, syscall.ELOOP):
		return "too many levels of symbolic links"
	}
	return ""
}

// AbortError reports where a run was aborted. It wraps ErrAborted.
type AbortError struct {
	Path  string
	Phase Phase
	Err   error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("aborted while %s %s: %v", e.Phase, e.Path, e.Err)
}

// Unwrap exposes ErrAborted so errors.Is works on the abort path.
func (e *AbortError) Unwrap() error { return ErrAborted }
