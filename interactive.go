package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/jadenpxrk/dirtree/internal/config"
	"github.com/jadenpxrk/dirtree/internal/filter"
	"github.com/jadenpxrk/dirtree/internal/logger"
	"github.com/jadenpxrk/dirtree/internal/pattern"
	"github.com/jadenpxrk/dirtree/internal/resolve"
	"github.com/jadenpxrk/dirtree/internal/scanner"
)

// interactiveSetup discovers the file types and directory names under the
// root and lets the user pick which extensions to export and which
// directories to keep out of the export content.
func (a *app) interactiveSetup(ctx context.Context, cfg *config.Config, patterns *pattern.Cache, resolver *resolve.Resolver, state *resolve.State, log logger.Logger) error {
	fmt.Fprintln(a.stderr, "Launching interactive setup...")
	if !cfg.Export {
		log.LogInfo("Interactive setup selects export content; enabling export")
		cfg.Export = true
	}

	exts, err := a.discover(ctx, cfg, scanner.ModeExtensions, patterns, resolver, state, log)
	if err != nil {
		return err
	}
	exts = dropNoExtension(exts)
	picked, err := pickCounts(ctx, exts,
		"Extensions to export > ",
		"Tab selects, Enter confirms, Esc keeps the default text-file heuristic",
		extensionPreview)
	if err != nil {
		return err
	}
	if len(picked) > 0 {
		cfg.ContentExtensions = picked
		log.LogInfo("Exporting content for extensions: " + strings.Join(picked, ", "))
	}

	dirs, err := a.discover(ctx, cfg, scanner.ModeDirNames, patterns, resolver, state, log)
	if err != nil {
		return err
	}
	picked, err = pickCounts(ctx, dirs,
		"Directories to leave out of the export > ",
		"Tab selects, Enter confirms, Esc excludes nothing",
		dirPreview)
	if err != nil {
		return err
	}
	if len(picked) > 0 {
		cfg.ContentDirExcludes = picked
		log.LogInfo("Excluding export content inside: " + strings.Join(picked, ", "))
	}
	return nil
}

// discover runs one scanner pass with a progress line on stderr.
func (a *app) discover(ctx context.Context, cfg *config.Config, mode scanner.Mode, patterns *pattern.Cache, resolver *resolve.Resolver, state *resolve.State, log logger.Logger) ([]scanner.Count, error) {
	res, err := scanner.Scan(ctx, cfg.Root, scanner.Options{
		Mode:       mode,
		ShowHidden: cfg.ShowHidden,
		Exclude:    cfg.Exclude,
		Patterns:   patterns,
		Progress: func(p scanner.Progress) {
			fmt.Fprintf(a.stderr, "\rScanning %s: %d/%d items, %d unique (%.1fs)",
				p.Label, p.Scanned, p.MaxItems, p.Unique, p.Elapsed.Seconds())
		},
		Resolver: resolver,
		State:    state,
		Logger:   log,
	})
	fmt.Fprintln(a.stderr)
	if err != nil {
		return nil, err
	}
	if res.Interrupted {
		return nil, ctx.Err()
	}
	if res.Truncated {
		log.LogWarn(fmt.Sprintf("Scan stopped after %d items; the list below may be incomplete", res.Scanned))
	}
	return res.Sorted(), nil
}

func dropNoExtension(counts []scanner.Count) []scanner.Count {
	out := counts[:0:0]
	for _, c := range counts {
		if c.Name != scanner.NoExtension {
			out = append(out, c)
		}
	}
	return out
}

// pickCounts shows counts in a multi-select fuzzy finder and returns the
// chosen names. Escape returns no selection.
func pickCounts(ctx context.Context, counts []scanner.Count, prompt, header string, preview func(scanner.Count) string) ([]string, error) {
	if len(counts) == 0 {
		return nil, nil
	}
	idx, err := fuzzyfinder.FindMulti(
		counts,
		func(i int) string {
			return fmt.Sprintf("%s (%d)", counts[i].Name, counts[i].Count)
		},
		fuzzyfinder.WithPromptString(prompt),
		fuzzyfinder.WithHeader(header),
		fuzzyfinder.WithContext(ctx),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return header
			}
			return preview(counts[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, nil
		}
		return nil, fmt.Errorf("fuzzy finder error: %w", err)
	}

	picked := make([]string, len(idx))
	for i, index := range idx {
		picked[i] = counts[index].Name
	}
	return picked, nil
}

func extensionPreview(c scanner.Count) string {
	kind := "unknown type, exported by the default heuristic"
	switch {
	case filter.IsTextExtension(c.Name):
		kind = "text"
	case filter.IsBinaryExtension(c.Name):
		kind = "binary, never exported by default"
	}
	return fmt.Sprintf("Extension: .%s\nFiles: %d\nType: %s", c.Name, c.Count, kind)
}

func dirPreview(c scanner.Count) string {
	return fmt.Sprintf("Directory name: %s\nOccurrences: %d\n\nFiles inside every directory with this name\nare listed in the tree but left out of the export.", c.Name, c.Count)
}

// finderPrompter asks how to handle a filesystem error with a single-select
// fuzzy finder.
type finderPrompter struct {
	w io.Writer
}

func newFinderPrompter(w io.Writer) *finderPrompter {
	return &finderPrompter{w: w}
}

var promptChoices = []resolve.Choice{
	resolve.ChoiceSkipItem,
	resolve.ChoiceSkipAll,
	resolve.ChoiceAbort,
	resolve.ChoiceShowDetails,
}

func (f *finderPrompter) Prompt(p resolve.Problem) (resolve.Choice, error) {
	header := fmt.Sprintf("Error %s '%s': %v", p.Phase, p.Path, p.Err)
	if p.Guidance != "" {
		header += " (" + p.Guidance + ")"
	}
	i, err := fuzzyfinder.Find(
		promptChoices,
		func(i int) string { return promptChoices[i].String() },
		fuzzyfinder.WithPromptString("How do you want to proceed? > "),
		fuzzyfinder.WithHeader(header),
	)
	if err != nil {
		return resolve.ChoiceAbort, fmt.Errorf("error prompt: %w", err)
	}
	return promptChoices[i], nil
}

func (f *finderPrompter) ShowDetails(p resolve.Problem) {
	fmt.Fprintln(f.w)
	fmt.Fprintln(f.w, "Error details:")
	fmt.Fprintf(f.w, "  Path:  %s\n", p.Path)
	fmt.Fprintf(f.w, "  Phase: %s\n", p.Phase)
	fmt.Fprintf(f.w, "  Type:  %T\n", p.Err)
	fmt.Fprintf(f.w, "  Error: %v\n", p.Err)
	var errno syscall.Errno
	if errors.As(p.Err, &errno) {
		fmt.Fprintf(f.w, "  Errno: %d (%s)\n", int(errno), errno.Error())
	}
	if p.Guidance != "" {
		fmt.Fprintf(f.w, "  Hint:  %s\n", p.Guidance)
	}
}
