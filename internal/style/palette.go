package style

import (
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Palette is the set of colors used for one run. Every color in a Palette is
// either forced on or forced off, independent of the global NoColor switch.
type Palette struct {
	enabled bool

	dir     *color.Color
	file    *color.Color
	muted   *color.Color
	success *color.Color
	warning *color.Color
	failure *color.Color

	byExt map[string]*color.Color
}

var extensionColors = map[string][]color.Attribute{
	"py": {color.FgGreen}, "pyw": {color.FgGreen},
	"js": {color.FgYellow}, "jsx": {color.FgYellow},
	"ts": {color.FgBlue}, "tsx": {color.FgBlue},
	"html": {color.FgMagenta}, "htm": {color.FgMagenta},
	"css": {color.FgCyan}, "scss": {color.FgCyan}, "sass": {color.FgCyan},
	"java": {color.FgRed}, "class": {color.FgRed},
	"c": {color.FgBlue}, "h": {color.FgBlue}, "cpp": {color.FgBlue}, "hpp": {color.FgBlue}, "hxx": {color.FgBlue},
	"cs":    {color.FgGreen},
	"go":    {color.FgCyan},
	"rb":    {color.FgRed},
	"php":   {color.FgMagenta},
	"swift": {color.FgYellow},
	"kt":    {color.FgMagenta}, "kts": {color.FgMagenta},
	"rs": {color.FgYellow},
	"sh": {color.FgGreen}, "bash": {color.FgGreen}, "zsh": {color.FgGreen},
	"ps1": {color.FgBlue}, "psm1": {color.FgBlue}, "bat": {color.FgBlue}, "cmd": {color.FgBlue},
	"json": {color.FgYellow}, "yaml": {color.FgYellow}, "yml": {color.FgYellow}, "toml": {color.FgYellow},
	"xml": {color.FgMagenta},
	"ini": {color.FgWhite}, "cfg": {color.FgWhite}, "conf": {color.FgWhite}, "txt": {color.FgWhite},
	"csv": {color.FgCyan},
	"sql": {color.FgBlue},
	"md":  {color.FgYellow}, "markdown": {color.FgYellow}, "rst": {color.FgYellow},
	"log": {color.FgHiBlack},
	"zip": {color.FgRed}, "rar": {color.FgRed}, "7z": {color.FgRed}, "tar": {color.FgRed},
	"gz": {color.FgRed}, "bz2": {color.FgRed}, "xz": {color.FgRed}, "deb": {color.FgRed}, "rpm": {color.FgRed},
	"exe": {color.FgGreen, color.Bold}, "msi": {color.FgGreen},
	"png": {color.FgMagenta}, "jpg": {color.FgMagenta}, "jpeg": {color.FgMagenta}, "gif": {color.FgMagenta},
	"bmp": {color.FgMagenta}, "ico": {color.FgMagenta}, "svg": {color.FgMagenta}, "webp": {color.FgMagenta},
	"mp3": {color.FgCyan}, "wav": {color.FgCyan}, "ogg": {color.FgCyan},
	"mp4": {color.FgMagenta}, "avi": {color.FgMagenta}, "mkv": {color.FgMagenta}, "mov": {color.FgMagenta},
	"pdf": {color.FgRed},
	"doc": {color.FgBlue}, "docx": {color.FgBlue},
	"xls": {color.FgGreen}, "xlsx": {color.FgGreen},
	"ppt": {color.FgYellow}, "pptx": {color.FgYellow},
	"iso": {color.FgRed}, "img": {color.FgRed},
	"dockerfile": {color.FgBlue},
	"tf":         {color.FgMagenta},
}

// NewPalette builds a palette with colors on or off.
func NewPalette(enabled bool) *Palette {
	p := &Palette{
		enabled: enabled,
		dir:     newColor(enabled, color.FgBlue, color.Bold),
		file:    newColor(enabled, color.FgWhite),
		muted:   newColor(enabled, color.FgHiBlack),
		success: newColor(enabled, color.FgGreen),
		warning: newColor(enabled, color.FgYellow),
		failure: newColor(enabled, color.FgRed),
		byExt:   make(map[string]*color.Color, len(extensionColors)),
	}
	for ext, attrs := range extensionColors {
		p.byExt[ext] = newColor(enabled, attrs...)
	}
	return p
}

func newColor(enabled bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Enabled reports whether the palette emits escape codes.
func (p *Palette) Enabled() bool { return p.enabled }

// ForExtension returns the color for a lowercase extension, falling back to
// the plain file color.
func (p *Palette) ForExtension(ext string) *color.Color {
	if c, ok := p.byExt[ext]; ok {
		return c
	}
	return p.file
}

// Dir, Muted, Success, Warning and Failure expose the shared roles for the
// CLI summary.
func (p *Palette) Dir() *color.Color     { return p.dir }
func (p *Palette) Muted() *color.Color   { return p.muted }
func (p *Palette) Success() *color.Color { return p.success }
func (p *Palette) Warning() *color.Color { return p.warning }
func (p *Palette) Failure() *color.Color { return p.failure }

var extensionEmojis = map[string]string{
	"py": "🐍", "pyw": "🐍",
	"js": "📜", "ts": "📜", "jsx": "⚛️", "tsx": "⚛️",
	"html": "🌐", "htm": "🌐",
	"css": "🎨", "scss": "🎨", "sass": "🎨", "svg": "🎨",
	"java": "☕", "class": "☕",
	"c": "🔧", "h": "🔧", "cpp": "🔧", "hpp": "🔧", "hxx": "🔧",
	"cs":    "✨",
	"go":    "🐹",
	"rb":    "💎",
	"php":   "🐘",
	"swift": "🐦",
	"kt":    "💜", "kts": "💜",
	"rs": "🦀",
	"sh": "⚙️", "bash": "⚙️", "zsh": "⚙️",
	"ps1": "💻", "psm1": "💻", "bat": "💻", "cmd": "💻",
	"json": "📦", "yaml": "📦", "yml": "📦",
	"xml":  "📰",
	"toml": "🔩", "ini": "🔩", "cfg": "🔩", "conf": "🔩",
	"csv": "📊", "xls": "📊", "xlsx": "📊", "ppt": "📊", "pptx": "📊",
	"sql": "🗃️", "db": "🗃️", "sqlite": "🗃️",
	"md": "📝", "markdown": "📝", "rst": "📝",
	"txt": "📄", "doc": "📄", "docx": "📄",
	"pdf": "📕",
	"log": "📜",
	"zip": "📦", "rar": "📦", "7z": "📦", "tar": "📦", "gz": "📦", "bz2": "📦", "xz": "📦", "deb": "📦", "rpm": "📦",
	"exe": "🚀", "msi": "🚀",
	"png": "🖼️", "jpg": "🖼️", "jpeg": "🖼️", "gif": "🖼️", "bmp": "🖼️", "ico": "🖼️", "webp": "🖼️",
	"mp3": "🎵", "wav": "🎵", "ogg": "🎵",
	"mp4": "🎬", "avi": "🎬", "mkv": "🎬", "mov": "🎬",
	"iso": "📀", "img": "📀",
	"lock":       "🔒",
	"key":        "🔑",
	"dockerfile": "🐳",
	"tf":         "🏗️",
}

// Emoji returns the emoji shown before name in the emoji style.
func Emoji(name string, isDir bool) string {
	if isDir {
		return "📂"
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		// Dockerfile and friends carry their type in the name.
		ext = strings.ToLower(name)
	}
	if e, ok := extensionEmojis[ext]; ok {
		return e
	}
	return "📄"
}
