// Package pdf renders an export document as a syntax-highlighted PDF.
package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"
	"github.com/jung-kurt/gofpdf"

	"github.com/jadenpxrk/dirtree/internal/config"
	"github.com/jadenpxrk/dirtree/internal/export"
	"github.com/jadenpxrk/dirtree/internal/filelock"
	"github.com/jadenpxrk/dirtree/internal/logger"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10  // Margin in mm
	pdfLineHeight = 5   // Line height in mm
	pdfFontSize   = 9
	pdfTabWidth   = 4
	pdfTextWidth  = pdfPageWidth - 2*pdfMargin
)

// DefaultStyle is the chroma style used when none is set.
const DefaultStyle = "github"

// Options configures rendering.
type Options struct {
	// Style is a chroma style name.
	Style string
	// Tokens, when set, maps a file's relative path to its token count.
	Tokens map[string]int
	Logger logger.Logger
}

// The core PDF fonts only cover Windows-1252, so box drawing becomes ASCII.
var boxDrawing = strings.NewReplacer(
	"├", "|", "└", "`", "╰", "`", "│", "|", "─", "-",
	"┣", "|", "┗", "`", "┃", "|", "━", "-",
)

// Render lays out the tree, every embedded file and a summary.
func Render(doc *export.Document, treeLines []string, opts Options) ([]byte, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard
	}
	style := styles.Get(opts.Style)
	if opts.Style == "" || style == nil {
		style = styles.Get(DefaultStyle)
	}
	if style == nil {
		style = styles.Fallback
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", pdfFontSize+5)
	pdf.MultiCell(pdfTextWidth, pdfLineHeight+2, tr("Directory Tree for: "+doc.RootName), "", "L", false)
	pdf.SetFont("Helvetica", "", pdfFontSize)
	pdf.MultiCell(pdfTextWidth, pdfLineHeight, "Generated on: "+doc.Generated.Format("2006-01-02 15:04:05"), "", "L", false)
	pdf.Ln(pdfLineHeight)

	tree := make([]string, len(treeLines))
	for i, line := range treeLines {
		tree[i] = boxDrawing.Replace(ansi.Strip(line))
	}
	pdf.SetFont("Courier", "", pdfFontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(pdfTextWidth, pdfLineHeight, tr(strings.Join(tree, "\n")), "", "L", false)

	for _, f := range doc.Files {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", pdfFontSize+1)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(pdfTextWidth, pdfLineHeight, tr("File: "+f.Rel), "", "L", false)
		pdf.Ln(pdfLineHeight / 2)

		if n, ok := opts.Tokens[f.Rel]; ok {
			pdf.SetFont("Helvetica", "", pdfFontSize-1)
			pdf.MultiCell(pdfTextWidth, pdfLineHeight, fmt.Sprintf("Tokens: %d", n), "", "L", false)
			pdf.Ln(pdfLineHeight / 2)
		}

		pdf.Line(pdfMargin, pdf.GetY(), pdfPageWidth-pdfMargin, pdf.GetY())
		pdf.Ln(pdfLineHeight / 2)

		if err := writeHighlightedCode(pdf, style, tr, f.Content.Text, f.Rel); err != nil {
			log.LogWarn(fmt.Sprintf("Syntax highlighting failed for %s: %v. Writing plain text.", f.Rel, err))
			pdf.SetFont("Courier", "", pdfFontSize)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(pdfTextWidth, pdfLineHeight, tr(f.Content.Text), "", "L", false)
		}
	}

	pdf.SetFont("Helvetica", "B", pdfFontSize+1)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(pdfLineHeight)
	pdf.MultiCell(pdfTextWidth, pdfLineHeight, "Summary", "", "L", false)
	pdf.Ln(pdfLineHeight / 2)
	pdf.SetFont("Helvetica", "", pdfFontSize)
	summary := fmt.Sprintf("Files with content included: %d/%d\nTotal content size: %s",
		doc.Included(), doc.Checked, config.FormatBytes(doc.IncludedBytes))
	if len(opts.Tokens) > 0 {
		total := 0
		for _, n := range opts.Tokens {
			total += n
		}
		summary += fmt.Sprintf("\nTotal tokens: %d", total)
	}
	pdf.MultiCell(pdfTextWidth, pdfLineHeight, summary, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders the document and stores it atomically at path.
func Write(path string, doc *export.Document, treeLines []string, opts Options) error {
	data, err := Render(doc, treeLines, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := filelock.AtomicWrite(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save PDF to %s: %w", path, err)
	}
	return nil
}

// lexerFor picks a lexer by file name, then by content.
func lexerFor(name, content string) chroma.Lexer {
	lexer := lexers.Match(filepath.Base(name))
	if lexer == nil {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// writeHighlightedCode writes content token by token in the style's colors.
func writeHighlightedCode(pdf *gofpdf.Fpdf, style *chroma.Style, tr func(string) string, content, name string) error {
	iterator, err := lexerFor(name, content).Tokenise(nil, content)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	pdf.SetFont("Courier", "", pdfFontSize)
	fallback := style.Get(chroma.Text).Colour

	for token := iterator(); token != chroma.EOF; token = iterator() {
		entry := style.Get(token.Type)
		fontStyle := ""
		if entry.Bold == chroma.Yes {
			fontStyle += "B"
		}
		if entry.Italic == chroma.Yes {
			fontStyle += "I"
		}
		pdf.SetFontStyle(fontStyle)

		switch {
		case entry.Colour.IsSet():
			pdf.SetTextColor(int(entry.Colour.Red()), int(entry.Colour.Green()), int(entry.Colour.Blue()))
		case fallback.IsSet():
			pdf.SetTextColor(int(fallback.Red()), int(fallback.Green()), int(fallback.Blue()))
		default:
			pdf.SetTextColor(0, 0, 0)
		}

		value := strings.ReplaceAll(token.Value, "\t", strings.Repeat(" ", pdfTabWidth))
		pdf.Write(pdfLineHeight, tr(value))
	}
	pdf.Ln(-1)
	return pdf.Error()
}
