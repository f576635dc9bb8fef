package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jadenpxrk/dirtree/internal/config"
	"github.com/jadenpxrk/dirtree/internal/export"
	"github.com/jadenpxrk/dirtree/internal/resolve"
	"github.com/jadenpxrk/dirtree/internal/tokens"
	"github.com/jadenpxrk/dirtree/internal/walker"
)

const ruleWidth = 80

// styles holds lipgloss styles for the run summary.
type styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Key     lipgloss.Style
	Border  lipgloss.Color
}

// printer writes the tree and the human-readable summary to stdout.
type printer struct {
	w      io.Writer
	styled bool
	styles styles
}

func newPrinter(w io.Writer, styled bool) *printer {
	s := styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Muted:   lipgloss.NewStyle().Faint(true),
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Border:  lipgloss.Color("8"),
	}
	if !styled {
		plain := lipgloss.NewStyle()
		s = styles{Title: plain, Success: plain, Warning: plain, Error: plain, Muted: plain, Key: plain}
	}
	return &printer{w: w, styled: styled, styles: s}
}

func (p *printer) println(a ...any) {
	_, _ = fmt.Fprintln(p.w, a...)
}

func (p *printer) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.w, format, a...)
}

// Tree prints the rendered lines between two rules.
func (p *printer) Tree(lines []string) {
	rule := p.styles.Muted.Render(strings.Repeat("-", ruleWidth))
	p.println()
	p.println(rule)
	for _, line := range lines {
		p.println(line)
	}
	p.println(rule)
}

// Summary prints the listed, scanned and skipped counts.
func (p *printer) Summary(res *walker.Result) {
	summary := fmt.Sprintf("%d items listed in tree", res.Listed)
	if res.Scanned > 0 {
		summary += fmt.Sprintf(" (Total items scanned: %d)", res.Scanned)
	}
	if n := len(res.Skipped); n > 0 {
		summary += ", " + p.styles.Warning.Render(fmt.Sprintf("%d skipped due to errors", n))
	}
	p.println(summary + ".")
}

// ExportStats prints how many files made it into the export document.
func (p *printer) ExportStats(doc *export.Document) {
	if doc.Checked == 0 {
		p.println("No files were considered eligible for LLM content based on filters.")
		return
	}
	line := fmt.Sprintf("LLM Export: %d/%d files included in content", doc.Included(), doc.Checked)
	if doc.IncludedBytes > 0 {
		line += fmt.Sprintf(" (%s total content size)", config.FormatBytes(doc.IncludedBytes))
	}
	p.println(line)
}

// Skipped lists every item that was skipped after an error.
func (p *printer) Skipped(items []resolve.SkippedItem) {
	if len(items) == 0 {
		return
	}
	p.println()
	p.println("Skipped items details:")
	for _, it := range items {
		p.printf("  - %s: %s\n", it.Path, p.styles.Muted.Render(it.Reason))
	}
}

// ExportCreated reports the export file.
func (p *printer) ExportCreated(path string) {
	p.println()
	p.println(p.styles.Success.Render("✅ LLM export created: " + path))
	p.println("   To use this export with an LLM, upload the file or copy its contents.")
}

// ExportFailed reports an enabled export that produced no file.
func (p *printer) ExportFailed() {
	p.println()
	p.println(p.styles.Warning.Render("⚠️ LLM export was enabled, but no content was included or an error occurred."))
}

// Tokens prints the token estimate, per file when verbose.
func (p *printer) Tokens(report tokens.Report, model string, verbose bool) {
	p.printf("%s %d (%s)\n", p.styles.Key.Render("Estimated tokens:"), report.Total, model)
	if !verbose {
		return
	}
	for _, c := range report.Counts {
		p.printf("  %8d  %s\n", c.Tokens, c.Name)
	}
}

// Notice prints a one-line status message.
func (p *printer) Notice(msg string) {
	p.println(p.styles.Muted.Render(msg))
}

// Warn prints a highlighted warning on the summary stream.
func (p *printer) Warn(msg string) {
	p.println(p.styles.Warning.Render(msg))
}

// Aborted reports a run stopped from the error prompt. No export is written.
func (p *printer) Aborted(err error) {
	p.println()
	p.println(p.styles.Error.Render("Operation aborted by user."))
	p.println(p.styles.Muted.Render(err.Error()))
	p.println("No export was generated.")
}

// Interrupted reports a run cancelled by a signal.
func (p *printer) Interrupted() {
	p.println()
	p.println("Operation cancelled by user.")
}

// DryRun prints statistics for a walk that produced no output files.
func (p *printer) DryRun(res *walker.Result, cfg config.Config) {
	var b strings.Builder
	row := func(key string, value any) {
		fmt.Fprintf(&b, "%s %v\n", p.styles.Key.Render(fmt.Sprintf("%-18s", key+":")), value)
	}
	row("Items scanned", res.Scanned)
	row("Items filtered", max(0, res.Scanned-res.Listed))
	row("Items listed", res.Listed)
	if n := len(res.Skipped); n > 0 {
		row("Errors skipped", n)
	}
	if cfg.Export && res.EligibleFiles > 0 {
		b.WriteString("\nLLM Export Estimates:\n")
		row("  Files considered", res.EligibleFiles)
		row("  Files to include", res.IncludedFiles)
		if res.IncludedFiles > 0 {
			// rough estimate: half the cap per file
			row("  Est. export size", config.FormatBytes(int64(res.IncludedFiles)*(cfg.MaxFileSize/2)))
		}
	}
	p.box("DRY RUN SUMMARY", strings.TrimRight(b.String(), "\n"))
}

// box renders content in a rounded border when styled, plain otherwise.
func (p *printer) box(title, content string) {
	if !p.styled {
		rule := strings.Repeat("=", 60)
		p.println()
		p.println(rule)
		p.println(title)
		p.println(rule)
		p.println(content)
		p.println(rule)
		return
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.styles.Border).
		Padding(0, 1)
	p.println()
	p.println(style.Render(p.styles.Title.Render(title) + "\n\n" + content))
}
