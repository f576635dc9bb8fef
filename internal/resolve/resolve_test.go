package resolve

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadenpxrk/dirtree/internal/logger"
)

// scriptedPrompter answers prompts from a fixed script.
type scriptedPrompter struct {
	answers []Choice
	err     error
	asked   int
	details int
}

func (p *scriptedPrompter) Prompt(Problem) (Choice, error) {
	if p.err != nil {
		return 0, p.err
	}
	c := p.answers[p.asked]
	p.asked++
	return c, nil
}

func (p *scriptedPrompter) ShowDetails(Problem) { p.details++ }

var errDenied = fmt.Errorf("open /p/secret: %w", fs.ErrPermission)

func TestResolveSkipAllShortCircuits(t *testing.T) {
	p := &scriptedPrompter{}
	r := New(Options{Prompter: p, Interactive: true})

	d := r.Resolve("/p/secret", errDenied, PhaseList, true)

	assert.True(t, d.Skip)
	assert.True(t, d.SkipAll)
	assert.Equal(t, 0, p.asked, "no prompt once skip-all is set")
}

func TestResolveNonInteractive(t *testing.T) {
	r := New(Options{})

	d := r.Resolve("/p/secret", errDenied, PhaseList, false)

	assert.True(t, d.Skip)
	assert.False(t, d.SkipAll)
	assert.Contains(t, d.Diagnostic, "/p/secret")
	assert.Contains(t, d.Diagnostic, "permission denied")
}

func TestResolveInteractiveWithoutPrompterIsNonInteractive(t *testing.T) {
	r := New(Options{Interactive: true})
	d := r.Resolve("/p/x", errDenied, PhaseScan, false)
	assert.True(t, d.Skip)
	assert.NotEmpty(t, d.Diagnostic)
}

func TestResolveInteractiveChoices(t *testing.T) {
	tests := []struct {
		name        string
		answers     []Choice
		wantSkip    bool
		wantSkipAll bool
		wantDetails int
	}{
		{"skip item", []Choice{ChoiceSkipItem}, true, false, 0},
		{"skip all", []Choice{ChoiceSkipAll}, true, true, 0},
		{"abort", []Choice{ChoiceAbort}, false, false, 0},
		{"details then skip", []Choice{ChoiceShowDetails, ChoiceShowDetails, ChoiceSkipItem}, true, false, 2},
		{"invalid then abort", []Choice{Choice(42), ChoiceAbort}, false, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedPrompter{answers: tt.answers}
			r := New(Options{Prompter: p, Interactive: true})

			d := r.Resolve("/p/x", errDenied, PhaseList, false)

			assert.Equal(t, tt.wantSkip, d.Skip)
			assert.Equal(t, tt.wantSkipAll, d.SkipAll)
			assert.Equal(t, tt.wantDetails, p.details)
			assert.Equal(t, len(tt.answers), p.asked)
		})
	}
}

func TestResolvePromptErrorAborts(t *testing.T) {
	p := &scriptedPrompter{err: errors.New("prompt closed")}
	r := New(Options{Prompter: p, Interactive: true})

	d := r.Resolve("/p/x", errDenied, PhaseList, false)
	assert.True(t, d.Aborted())
}

func TestStateHandle(t *testing.T) {
	buf := &bytes.Buffer{}
	p := &scriptedPrompter{answers: []Choice{ChoiceSkipItem, ChoiceSkipAll}}
	r := New(Options{Prompter: p, Interactive: true, Logger: logger.NewConsoleLogger(buf, "info")})
	s := NewState(false)

	require.NoError(t, s.Handle(r, "/p/a", errDenied, PhaseList))
	assert.False(t, s.SkipAll())

	require.NoError(t, s.Handle(r, "/p/b", errDenied, PhaseEnter))
	assert.True(t, s.SkipAll())

	// skip-all is sticky and the prompter is no longer consulted
	require.NoError(t, s.Handle(r, "/p/c", errDenied, PhaseList))
	assert.Equal(t, 2, p.asked)

	skipped := s.Skipped()
	require.Len(t, skipped, 3)
	assert.Equal(t, "/p/a", skipped[0].Path)
	assert.Equal(t, "/p/c", skipped[2].Path)
	assert.Contains(t, skipped[1].Reason, string(PhaseEnter))
	assert.Contains(t, buf.String(), "skip all subsequent errors")
}

func TestStateHandleAbort(t *testing.T) {
	p := &scriptedPrompter{answers: []Choice{ChoiceAbort}}
	r := New(Options{Prompter: p, Interactive: true})
	s := NewState(false)

	err := s.Handle(r, "/p/a", errDenied, PhaseList)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAborted))
	var abort *AbortError
	require.True(t, errors.As(err, &abort))
	assert.Equal(t, "/p/a", abort.Path)
	assert.Empty(t, s.Skipped(), "aborted items are not recorded as skipped")
}

func TestGuidance(t *testing.T) {
	assert.Contains(t, Guidance(errDenied), "permission")
	assert.Contains(t, Guidance(fs.ErrNotExist), "no longer exists")
	assert.Empty(t, Guidance(errors.New("other")))
}
