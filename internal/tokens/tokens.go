// Package tokens estimates how many model tokens an export will cost.
package tokens

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/jadenpxrk/dirtree/internal/logger"
)

// Counter counts tokens in text.
type Counter interface {
	CountTokens(text string) int
}

// DefaultModel is used when no model is named.
const DefaultModel = "gpt-4o"

const fallbackEncoding = "cl100k_base"

var loaderOnce sync.Once

// Tiktoken counts tokens with a BPE encoding bundled into the binary, so no
// network access is needed.
type Tiktoken struct {
	enc   *tiktoken.Tiktoken
	model string
}

// NewTiktoken returns a counter for model, falling back to cl100k_base when
// the model is unknown.
func NewTiktoken(model string, log logger.Logger) (*Tiktoken, error) {
	if log == nil {
		log = logger.Discard
	}
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	if model == "" {
		model = DefaultModel
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err == nil {
		return &Tiktoken{enc: enc, model: model}, nil
	}

	log.LogWarn(fmt.Sprintf("Tiktoken model '%s' not available, falling back to '%s': %v", model, fallbackEncoding, err))
	enc, err = tiktoken.GetEncoding(fallbackEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding '%s': %w", fallbackEncoding, err)
	}
	return &Tiktoken{enc: enc, model: fallbackEncoding}, nil
}

// Model returns the model or encoding name in use.
func (t *Tiktoken) Model() string { return t.model }

func (t *Tiktoken) CountTokens(text string) int {
	if t.enc == nil {
		return 0
	}
	return len(t.enc.EncodeOrdinary(text))
}

// Item is one piece of text to count.
type Item struct {
	Name string
	Text string
}

// Count is the token count of one Item.
type Count struct {
	Name   string
	Tokens int
}

// Report holds per-item counts in input order.
type Report struct {
	Counts []Count
	Total  int
}

type job struct {
	index int
	item  Item
}

type result struct {
	index  int
	tokens int
}

// CountAll counts items on a pool of workers. workers <= 0 uses one per
// CPU. Items not reached before ctx is cancelled count as zero and the
// context error is returned with the partial report.
func CountAll(ctx context.Context, counter Counter, items []Item, workers int) (Report, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = max(1, min(workers, len(items)))

	jobs := make(chan job, len(items))
	results := make(chan result, len(items))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go tokenWorker(ctx, counter, jobs, results, &wg)
	}

	for i, it := range items {
		jobs <- job{index: i, item: it}
	}
	close(jobs)

	wg.Wait()
	close(results)

	report := Report{Counts: make([]Count, len(items))}
	for i, it := range items {
		report.Counts[i].Name = it.Name
	}
	for res := range results {
		report.Counts[res.index].Tokens = res.tokens
		report.Total += res.tokens
	}
	return report, ctx.Err()
}

func tokenWorker(ctx context.Context, counter Counter, jobs <-chan job, results chan<- result, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		if ctx.Err() != nil {
			continue
		}
		n := 0
		if j.item.Text != "" {
			n = counter.CountTokens(j.item.Text)
		}
		results <- result{index: j.index, tokens: n}
	}
}
