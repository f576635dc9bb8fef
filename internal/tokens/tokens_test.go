package tokens

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wordCounter struct{}

func (wordCounter) CountTokens(text string) int { return len(strings.Fields(text)) }

func TestCountAllKeepsOrder(t *testing.T) {
	var items []Item
	want := 0
	for i := range 25 {
		text := strings.Repeat("w ", i)
		items = append(items, Item{Name: fmt.Sprintf("f%02d", i), Text: text})
		want += i
	}

	report, err := CountAll(context.Background(), wordCounter{}, items, 4)
	require.NoError(t, err)

	require.Len(t, report.Counts, len(items))
	for i, c := range report.Counts {
		assert.Equal(t, items[i].Name, c.Name)
		assert.Equal(t, i, c.Tokens)
	}
	assert.Equal(t, want, report.Total)
}

func TestCountAllEmpty(t *testing.T) {
	report, err := CountAll(context.Background(), wordCounter{}, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, report.Counts)
	assert.Zero(t, report.Total)
}

func TestCountAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := CountAll(ctx, wordCounter{}, []Item{{Name: "a", Text: "one two"}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Total)
	assert.Equal(t, "a", report.Counts[0].Name)
}

func TestTiktoken(t *testing.T) {
	tk, err := NewTiktoken("", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, tk.Model())

	assert.Equal(t, 2, tk.CountTokens("hello world"))
	assert.Zero(t, tk.CountTokens(""))

	fallback, err := NewTiktoken("no-such-model", nil)
	require.NoError(t, err)
	assert.Equal(t, fallbackEncoding, fallback.Model())
}
