// Package prefs persists the user's saved options and default directory as a
// small YAML document under the user config directory.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jadenpxrk/dirtree/internal/config"
	"github.com/jadenpxrk/dirtree/internal/filelock"
	"github.com/jadenpxrk/dirtree/internal/logger"
)

// KeyDefaultDir stores the directory used when none is given.
const KeyDefaultDir = "default_dir"

// SavedKeys are the options --save-config persists. Per-run options such as
// patterns and output locations are not saved.
var SavedKeys = []string{
	config.KeyStyle, config.KeyMaxDepth, config.KeyShowHidden, config.KeyColorize, config.KeyShowSize,
	config.KeySmartExclude, config.KeyExport, config.KeyMaxFileSize, config.KeyContentExtensions,
	config.KeyVerbose, config.KeySkipErrors,
}

// Preferences is the decoded document. Only SavedKeys and KeyDefaultDir
// survive loading.
type Preferences map[string]any

// DefaultDir returns the saved default directory, if any.
func (p Preferences) DefaultDir() string {
	s, _ := p[KeyDefaultDir].(string)
	return s
}

// Apply registers the saved options as defaults on v, so flags, environment
// and the config file still take precedence.
func (p Preferences) Apply(v *viper.Viper) {
	for _, key := range SavedKeys {
		if val, ok := p[key]; ok {
			v.SetDefault(key, val)
		}
	}
}

// Store reads and writes one preferences file.
type Store struct {
	path string
	log  logger.Logger
}

// DefaultPath returns ~/.config/dirtree/preferences.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", "dirtree", "preferences.yaml"), nil
}

// NewStore returns a Store for path.
func NewStore(path string, log logger.Logger) *Store {
	if log == nil {
		log = logger.Discard
	}
	return &Store{path: path, log: log}
}

// Path returns the file the store manages.
func (s *Store) Path() string { return s.path }

// Load reads the document. A missing file yields empty preferences; a
// corrupt one is reported as a warning and treated as empty.
func (s *Store) Load() (Preferences, error) {
	data, err := filelock.LockAndRead(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Preferences{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		s.log.LogWarn(fmt.Sprintf("Ignoring unreadable preferences %s: %v", s.path, err))
		return Preferences{}, nil
	}
	return s.filter(raw), nil
}

// Save merges the SavedKeys present in values into the stored document.
// Other keys are dropped with a warning.
func (s *Store) Save(values map[string]any) error {
	return s.update(func(p Preferences) {
		for key, val := range s.filter(values) {
			if key == KeyDefaultDir {
				continue
			}
			p[key] = val
		}
	})
}

// SetDefaultDir stores dir, made absolute, as the default directory.
func (s *Store) SetDefaultDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}
	return s.update(func(p Preferences) { p[KeyDefaultDir] = abs })
}

func (s *Store) update(change func(Preferences)) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}

	lock := filelock.For(s.path)
	if err := lock.Lock(); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	current := Preferences{}
	if data, err := os.ReadFile(s.path); err == nil {
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			s.log.LogWarn(fmt.Sprintf("Replacing unreadable preferences %s: %v", s.path, err))
		} else {
			current = s.filter(raw)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading preferences: %w", err)
	}

	change(current)

	out, err := yaml.Marshal(map[string]any(current))
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := filelock.AtomicWrite(s.path, out, 0o644); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	s.log.LogDebug(fmt.Sprintf("Saved preferences to %s", s.path))
	return nil
}

func (s *Store) filter(raw map[string]any) Preferences {
	p := make(Preferences, len(raw))
	for key, val := range raw {
		if key != KeyDefaultDir && !slices.Contains(SavedKeys, key) {
			s.log.LogWarn(fmt.Sprintf("Ignoring unknown preference %q", key))
			continue
		}
		p[key] = val
	}
	return p
}

// Snapshot collects the current values of SavedKeys from v for Save.
// An empty extension list is stored explicitly so it replaces a saved one.
func Snapshot(v *viper.Viper) map[string]any {
	out := make(map[string]any, len(SavedKeys))
	for _, key := range SavedKeys {
		switch key {
		case config.KeyContentExtensions:
			exts := config.SplitList(v.GetStringSlice(key))
			if exts == nil {
				exts = []string{}
			}
			out[key] = exts
		case config.KeyMaxFileSize, config.KeyStyle:
			out[key] = v.GetString(key)
		case config.KeyMaxDepth:
			out[key] = v.GetInt(key)
		default:
			out[key] = v.GetBool(key)
		}
	}
	return out
}
