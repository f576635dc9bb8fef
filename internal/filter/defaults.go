package filter

// Default smart-exclude directory patterns. Matching directories are listed
// in the tree but never entered.
var smartDirExcludes = []string{
	// Version control
	".git", ".svn", ".hg",
	// Dependency caches
	"node_modules", "__pycache__", "venv", "env", ".venv", "*.egg-info",
	".pytest_cache", ".mypy_cache",
	// Build output
	"dist", "build", "htmlcov", ".next", "out", "coverage", "bin", "obj", "target",
	// Editors and scratch space
	".idea", ".vscode", ".vs", "logs", "tmp", "temp", "__MACOSX",
}

// Default smart-exclude file patterns. They only affect export content.
var smartFileExcludes = []string{
	".gitignore", ".gitattributes", ".gitmodules",
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml",
	"*.pyc", "*.pyo",
	".env", ".env.*", ".envrc",
	".DS_Store", "Thumbs.db",
	"*.log",
	"dirtree_export_*.md",
}

// binaryExtensions are considered not useful as text context.
var binaryExtensions = setOf(
	// Images
	"jpg", "jpeg", "png", "gif", "bmp", "ico", "webp", "tiff", "tif", "psd", "svg",
	// Audio/Video
	"mp3", "mp4", "wav", "avi", "mov", "wmv", "flv", "ogg", "webm", "mkv", "aac", "flac",
	// Archives
	"zip", "tar", "gz", "bz2", "xz", "rar", "7z", "jar", "war", "ear",
	// Executables
	"exe", "dll", "so", "dylib", "bin", "o", "a", "lib", "class", "msi", "dmg", "pkg",
	// Documents
	"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "odt", "ods", "odp",
	// Databases
	"db", "sqlite", "sqlite3", "mdb", "accdb", "dump", "sqlitedb",
	// Fonts
	"ttf", "otf", "woff", "woff2", "eot",
	// Other
	"iso", "img", "swf", "dat", "pickle", "pkl", "model", "pt", "onnx", "lock",
)

// textExtensions win over binaryExtensions when both apply.
var textExtensions = setOf(
	"py", "pyw", "js", "jsx", "ts", "tsx", "java", "c", "cpp", "h", "hpp",
	"cs", "go", "rb", "php", "swift", "kt", "rs", "sh", "bash", "zsh",
	"ps1", "bat", "cmd",
	"json", "yaml", "yml", "xml", "toml", "ini", "cfg", "conf", "csv",
	"md", "markdown", "rst", "txt", "html", "htm", "css", "scss", "sass",
	"sql",
	"log", "gitignore",
)

func setOf(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

// DefaultSmartDirExcludes returns a copy of the built-in directory clutter list.
func DefaultSmartDirExcludes() []string {
	return append([]string(nil), smartDirExcludes...)
}

// DefaultSmartFileExcludes returns a copy of the built-in content-only file list.
func DefaultSmartFileExcludes() []string {
	return append([]string(nil), smartFileExcludes...)
}

// IsBinaryExtension reports whether ext (lowercase, no dot) is on the denylist.
func IsBinaryExtension(ext string) bool {
	_, ok := binaryExtensions[ext]
	return ok
}

// IsTextExtension reports whether ext (lowercase, no dot) is on the allowlist.
func IsTextExtension(ext string) bool {
	_, ok := textExtensions[ext]
	return ok
}

// CommonCodeExtensions is the "recommended" preset offered by interactive
// extension pickers.
func CommonCodeExtensions() []string {
	return []string{
		"py", "js", "ts", "jsx", "tsx", "java", "c", "cpp", "cs", "go",
		"rb", "php", "html", "css", "scss", "json", "yaml", "yml",
		"xml", "md", "txt", "rst", "toml", "ini", "sh", "bat",
	}
}
