package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jadenpxrk/dirtree/internal/filelock"
	"github.com/jadenpxrk/dirtree/internal/logger"
)

// FileName returns the deterministic name of an export of rootName made at t.
// Separators in rootName are replaced; a filesystem root or a dot name
// becomes "root".
func FileName(rootName string, t time.Time) string {
	return fmt.Sprintf("dirtree_export_%s_%s.md", fileStem(rootName), t.Format("20060102_150405"))
}

func fileStem(rootName string) string {
	stem := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, rootName)
	if strings.Trim(stem, "._") == "" {
		return "root"
	}
	return stem
}

// Write stores doc in dir under its deterministic name and returns the path.
// When dir cannot be created the current working directory is used instead.
// An empty dir means the working directory.
func Write(dir string, doc *Document, log logger.Logger) (string, error) {
	if log == nil {
		log = logger.Discard
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.LogError(fmt.Sprintf("LLM Export: Could not create output directory '%s': %v", dir, err))
		log.LogWarn("LLM Export: Falling back to current working directory.")
		dir = "."
	}

	path := filepath.Join(dir, FileName(doc.RootName, doc.Generated))
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if err := filelock.LockAndWrite(path, []byte(doc.Markdown), 0o644); err != nil {
		return "", fmt.Errorf("error writing LLM export file '%s': %w", path, err)
	}
	// The lock file is only needed while writing.
	_ = os.Remove(path + ".lock")

	log.LogInfo(fmt.Sprintf("LLM export successfully created: %s", path))
	return path, nil
}
