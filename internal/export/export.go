// Package export assembles the Markdown bundle of a walk: the cleaned tree
// followed by the contents of every file that passes the content policy.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/jadenpxrk/dirtree/internal/config"
	"github.com/jadenpxrk/dirtree/internal/filter"
	"github.com/jadenpxrk/dirtree/internal/logger"
	"github.com/jadenpxrk/dirtree/internal/walker"
)

// Marker is written as the first line of a document when requested. Files
// starting with it are never embedded in later exports.
const Marker = "\u200B<!-- DIRTREE_GENERATED_FILE -->"

// Options configures an Exporter.
type Options struct {
	AddMarker bool
	Logger    logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// File is one embedded file.
type File struct {
	// Rel is the slash-separated path relative to the root.
	Rel       string
	Content   Content
	Extension string
}

// Document is an assembled export. The caller decides where it is stored.
type Document struct {
	RootName  string
	Generated time.Time
	Markdown  string
	Files     []File

	// Checked counts file nodes whose size could be read.
	Checked       int
	IncludedBytes int64
}

// Included returns the number of files whose content was embedded.
func (d *Document) Included() int { return len(d.Files) }

// Exporter builds Documents from walk results.
type Exporter struct {
	policy *filter.Policy
	opts   Options
}

// New returns an Exporter that re-checks eligibility against policy.
func New(policy *filter.Policy, opts Options) *Exporter {
	if opts.Logger == nil {
		opts.Logger = logger.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Exporter{policy: policy, opts: opts}
}

// Build re-stats every listed file, embeds the eligible ones and returns the
// assembled document. Per-file failures are logged and the file is left
// out; Build itself does not fail.
func (e *Exporter) Build(res *walker.Result) *Document {
	log := e.opts.Logger
	log.LogInfo("Starting LLM export generation...")

	doc := &Document{
		RootName:  filepath.Base(res.Root),
		Generated: e.opts.Now(),
	}

	for _, node := range res.Files() {
		size := int64(-1)
		if info, err := os.Stat(node.Path); err == nil {
			size = info.Size()
			doc.Checked++
		} else {
			log.LogWarn(fmt.Sprintf("LLM Export: Could not stat file '%s' for size check: %v", node.Path, err))
		}

		if ok, reason := e.policy.ContentEligible(node.Path, size); !ok {
			log.LogDebug(fmt.Sprintf("LLM Export: Skipping content for '%s' (%s).", node.Name, reason))
			continue
		}
		if HasMarker(node.Path) {
			log.LogDebug(fmt.Sprintf("LLM Export: Skipping content for '%s' (generated export file).", node.Name))
			continue
		}

		content, err := ReadContent(node.Path, e.policy.MaxContentSize())
		if err != nil {
			log.LogWarn(fmt.Sprintf("LLM Export: Skipping content for '%s' due to read error: %v", node.Name, err))
			continue
		}
		if content.Truncated {
			log.LogWarn(fmt.Sprintf("LLM Export: Content truncated for '%s' (read > %s).", node.Name, config.FormatBytes(e.policy.MaxContentSize())))
		}
		if content.Encoding != EncodingUTF8 {
			log.LogDebug(fmt.Sprintf("LLM Export: Read '%s' as %s.", node.Name, content.Encoding))
		}

		doc.Files = append(doc.Files, File{
			Rel:       e.policy.Rel(node.Path),
			Content:   content,
			Extension: filter.Extension(node.Name),
		})
		doc.IncludedBytes += int64(len(content.Text))
	}

	doc.Markdown = e.render(doc, res.TreeLines())
	log.LogInfo(fmt.Sprintf("LLM export assembled: %d/%d files, %s", doc.Included(), doc.Checked, config.FormatBytes(doc.IncludedBytes)))
	return doc
}

func (e *Exporter) render(doc *Document, treeLines []string) string {
	var b strings.Builder

	if e.opts.AddMarker {
		b.WriteString(Marker + "\n")
	}
	fmt.Fprintf(&b, "# Directory Tree for: %s\n", doc.RootName)
	fmt.Fprintf(&b, "Generated on: %s\n", doc.Generated.Format("2006-01-02 15:04:05"))

	b.WriteString("\n## Directory Structure\n")
	tree := make([]string, len(treeLines))
	for i, line := range treeLines {
		tree[i] = ansi.Strip(line)
	}
	treeText := strings.Join(tree, "\n")
	fence := fenceFor(treeText)
	b.WriteString(fence + "\n" + treeText + "\n" + fence + "\n\n")

	b.WriteString("## File Contents\n\n")
	if exts := e.policy.ContentExtensions(); exts != nil {
		slices.Sort(exts)
		fmt.Fprintf(&b, "*Content included for file extensions: %s*\n\n", strings.Join(exts, ", "))
	} else {
		b.WriteString("*Content included for all non-binary files (excluding common binary formats).*\n\n")
	}
	fmt.Fprintf(&b, "*Maximum file size for inclusion: %s*\n\n", config.FormatBytes(e.policy.MaxContentSize()))

	if len(doc.Files) == 0 {
		b.WriteString("*No file content included based on current settings (size, type, or errors).*\n\n")
		b.WriteString("*Possible reasons:*\n\n")
		b.WriteString("* *All found files exceed the maximum size limit*\n")
		b.WriteString("* *No files match the extension criteria*\n")
		b.WriteString("* *Only binary files were found*\n")
		b.WriteString("\n*Try adjusting the LLM export settings to include more content.*\n")
		return b.String()
	}

	for _, f := range doc.Files {
		text := f.Content.Text
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		fence := fenceFor(text)
		fmt.Fprintf(&b, "### `%s`\n\n", f.Rel)
		b.WriteString(fence + f.Extension + "\n" + text + fence + "\n\n")
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "* Files with content included: %d/%d\n", doc.Included(), doc.Checked)
	fmt.Fprintf(&b, "* Total content size: %s\n", config.FormatBytes(doc.IncludedBytes))
	return b.String()
}
