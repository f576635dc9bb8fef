package filter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	gitignore "github.com/monochromegane/go-gitignore"
)

// LoadGitIgnore parses the .gitignore file at the top of root. It returns a
// nil matcher and no error when the file does not exist. Only the root file
// is consulted; nested .gitignore files are not merged.
func LoadGitIgnore(root string) (gitignore.IgnoreMatcher, error) {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	matcher, err := gitignore.NewGitIgnore(path, root)
	if err != nil {
		return nil, fmt.Errorf("could not parse .gitignore file %s: %w", path, err)
	}
	return matcher, nil
}
