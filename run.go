package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/jadenpxrk/dirtree/internal/config"
	"github.com/jadenpxrk/dirtree/internal/export"
	"github.com/jadenpxrk/dirtree/internal/filter"
	"github.com/jadenpxrk/dirtree/internal/logger"
	"github.com/jadenpxrk/dirtree/internal/pattern"
	"github.com/jadenpxrk/dirtree/internal/pdf"
	"github.com/jadenpxrk/dirtree/internal/prefs"
	"github.com/jadenpxrk/dirtree/internal/resolve"
	"github.com/jadenpxrk/dirtree/internal/style"
	"github.com/jadenpxrk/dirtree/internal/tokens"
	"github.com/jadenpxrk/dirtree/internal/walker"
)

// execute runs one tree generation for root with the layered configuration.
func (a *app) execute(ctx context.Context, root string) error {
	cfg, err := config.Load(a.v, root)
	if err != nil {
		return err
	}
	log := logger.NewConsoleLogger(a.stderr, cfg.LogLevel())
	log.LogDebug("Effective options: " + cfg.Summary())
	out := newPrinter(a.stdout, cfg.Colorize)

	if a.flags.saveConfig || a.flags.setDefault {
		a.savePreferences(cfg, out)
	}

	if (cfg.Tokens || cfg.PDFPath != "" || cfg.Clipboard) && !cfg.Export {
		log.LogInfo("Token, PDF and clipboard output need the export document; enabling export")
		cfg.Export = true
	}

	patterns := pattern.NewCache(log)
	state := resolve.NewState(cfg.SkipErrors)
	interactive := !cfg.SkipErrors && a.stdinTTY && a.stdoutTTY
	var prompter resolve.Prompter
	if interactive {
		prompter = newFinderPrompter(a.stderr)
	}
	resolver := resolve.New(resolve.Options{Prompter: prompter, Interactive: interactive, Logger: log})

	if cfg.Interactive {
		if !a.stdinTTY {
			log.LogWarn("Interactive setup needs a terminal; continuing with the current options")
		} else if err := a.interactiveSetup(ctx, &cfg, patterns, resolver, state, log); err != nil {
			return a.reportStop(out, err)
		}
	}

	policy := newPolicy(cfg, patterns, log)
	deco, err := style.New(cfg.Style, cfg.Colorize)
	if err != nil {
		return err
	}

	res, err := walker.New(policy, walker.Options{
		MaxDepth:   cfg.MaxDepth,
		ShowSize:   cfg.ShowSize,
		Export:     cfg.Export,
		Indicators: cfg.Indicators,
		Decorator:  deco,
		Resolver:   resolver,
		State:      state,
		Logger:     log,
	}).Walk(ctx)
	if err != nil {
		return a.reportStop(out, err)
	}

	if cfg.DryRun {
		out.Notice("Dry run mode: scanning without generating output.")
		out.DryRun(res, cfg)
		if cfg.Verbose {
			out.Skipped(res.Skipped)
		}
		return nil
	}

	out.Tree(res.TreeLines())

	var exportPath string
	var doc *export.Document
	if cfg.Export {
		doc = export.New(policy, export.Options{AddMarker: cfg.AddMarker, Logger: log}).Build(res)
		exportPath, err = export.Write(cfg.OutputDir, doc, log)
		if err != nil {
			log.LogError(err.Error())
		}
	}

	out.Summary(res)
	if doc != nil {
		out.ExportStats(doc)
	}
	if cfg.Verbose {
		out.Skipped(res.Skipped)
	}

	if doc == nil {
		return nil
	}
	if exportPath == "" {
		out.ExportFailed()
		return nil
	}
	out.ExportCreated(exportPath)

	return a.writeSinks(ctx, cfg, doc, res, out, log)
}

// reportStop prints the notice for an aborted or interrupted run and passes
// the error on for the exit code.
func (a *app) reportStop(out *printer, err error) error {
	switch {
	case errors.Is(err, resolve.ErrAborted):
		out.Aborted(err)
	case errors.Is(err, context.Canceled):
		out.Interrupted()
	}
	return err
}

// newPolicy builds the filter policy for cfg.
func newPolicy(cfg config.Config, patterns *pattern.Cache, log logger.Logger) *filter.Policy {
	opts := filter.Options{
		ShowHidden:         cfg.ShowHidden,
		IncludePatterns:    cfg.Include,
		ExcludePatterns:    cfg.Exclude,
		ContentExtensions:  cfg.ContentExtensions,
		MaxContentSize:     cfg.MaxFileSize,
		ContentDirExcludes: cfg.ContentDirExcludes,
	}
	if cfg.SmartExclude {
		opts.SmartDirExcludes = filter.DefaultSmartDirExcludes()
		opts.SmartFileExcludes = filter.DefaultSmartFileExcludes()
	}
	if cfg.GitIgnore {
		matcher, err := filter.LoadGitIgnore(cfg.Root)
		switch {
		case err != nil:
			log.LogWarn(fmt.Sprintf("Ignoring .gitignore: %v", err))
		case matcher == nil:
			log.LogInfo("No .gitignore found in " + cfg.Root)
		default:
			opts.GitIgnore = matcher
		}
	}
	return filter.New(cfg.Root, opts, patterns, log)
}

// writeSinks produces the token estimate, the PDF and the clipboard copy.
// Failures are reported and do not fail the run.
func (a *app) writeSinks(ctx context.Context, cfg config.Config, doc *export.Document, res *walker.Result, out *printer, log logger.Logger) error {
	var counts map[string]int
	if cfg.Tokens {
		tk, err := tokens.NewTiktoken(a.flags.tokenModel, log)
		if err != nil {
			log.LogError(fmt.Sprintf("Token counting unavailable: %v", err))
		} else {
			items := make([]tokens.Item, 0, len(doc.Files))
			for _, f := range doc.Files {
				items = append(items, tokens.Item{Name: f.Rel, Text: f.Content.Text})
			}
			report, err := tokens.CountAll(ctx, tk, items, 0)
			if err != nil {
				return a.reportStop(out, err)
			}
			counts = make(map[string]int, len(report.Counts))
			for _, c := range report.Counts {
				counts[c.Name] = c.Tokens
			}
			whole := tk.CountTokens(doc.Markdown)
			out.Tokens(report, tk.Model(), cfg.Verbose)
			out.Notice(fmt.Sprintf("Whole export document: %d tokens", whole))
		}
	}

	if cfg.PDFPath != "" {
		err := pdf.Write(cfg.PDFPath, doc, res.TreeLines(), pdf.Options{
			Style:  a.flags.pdfStyle,
			Tokens: counts,
			Logger: log,
		})
		if err != nil {
			log.LogError(fmt.Sprintf("Error generating PDF: %v", err))
		} else {
			out.Notice("PDF saved to " + cfg.PDFPath)
		}
	}

	if cfg.Clipboard {
		if err := clipboard.WriteAll(doc.Markdown); err != nil {
			log.LogError(fmt.Sprintf("Error writing to clipboard: %v", err))
		} else {
			out.Notice("Export copied to clipboard.")
		}
	}
	return nil
}

// savePreferences stores the current options and, with --set-default, the
// root directory. Failures are warnings.
func (a *app) savePreferences(cfg config.Config, out *printer) {
	store, err := a.prefsStore()
	if err != nil {
		out.Warn(fmt.Sprintf("Warning: could not save preferences: %v", err))
		return
	}
	if a.flags.saveConfig {
		if err := store.Save(prefs.Snapshot(a.v)); err != nil {
			out.Warn(fmt.Sprintf("Warning: could not save preferences: %v", err))
		} else {
			out.Notice("Preferences saved to " + store.Path())
		}
	}
	if a.flags.setDefault {
		if err := store.SetDefaultDir(cfg.Root); err != nil {
			out.Warn(fmt.Sprintf("Warning: could not save default directory: %v", err))
		} else {
			out.Notice("Default directory set to " + cfg.Root)
		}
	}
}
