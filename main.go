// Package main provides the entry point for the dirtree CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jadenpxrk/dirtree/internal/config"
	"github.com/jadenpxrk/dirtree/internal/logger"
	"github.com/jadenpxrk/dirtree/internal/prefs"
	"github.com/jadenpxrk/dirtree/internal/resolve"
	"github.com/jadenpxrk/dirtree/internal/style"
)

// Build info set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitAborted     = 2
	exitInterrupted = 130
)

// appFlags are command-line flags that are not configuration keys and so
// are never bound to viper.
type appFlags struct {
	configFile string
	prefsFile  string
	saveConfig bool
	setDefault bool
	noColor    bool
	askErrors  bool
	tokenModel string
	pdfStyle   string
}

// app carries the per-invocation state of the command.
type app struct {
	v      *viper.Viper
	flags  appFlags
	stdout io.Writer
	stderr io.Writer
	// stdinTTY reports whether prompts and pickers can be shown.
	stdinTTY  bool
	stdoutTTY bool
}

func main() {
	os.Exit(run())
}

func run() int {
	a := newApp(os.Stdout, os.Stderr)
	err := fang.Execute(context.Background(), a.rootCmd(),
		fang.WithVersion(version),
		fang.WithCommit(commit),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	)
	return exitCode(err)
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		v:         viper.New(),
		stdout:    stdout,
		stderr:    stderr,
		stdinTTY:  isTerminal(os.Stdin),
		stdoutTTY: isTerminal(os.Stdout),
	}
}

// errorHandler leaves aborts and interrupts to the run summary, which has
// already reported them.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	if errors.Is(err, resolve.ErrAborted) || errors.Is(err, context.Canceled) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, resolve.ErrAborted):
		return exitAborted
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		return exitFailure
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dirtree [DIRECTORY]",
		Short: "Print a filtered directory tree and export file contents for LLMs",
		Long: `dirtree prints a styled directory tree with smart filtering of build
output, caches and dependency folders.

With --export it also writes a Markdown document containing the tree and the
contents of the selected text files, ready to hand to a language model.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return a.initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd.Context(), a.resolveRoot(args))
		},
	}

	f := cmd.Flags()

	// Display
	f.StringP("style", "s", config.DefaultStyle, fmt.Sprintf("Tree style (%s)", strings.Join(style.Names(), ", ")))
	f.IntP("max-depth", "d", 0, "Maximum depth to display (0 = unlimited)")
	f.BoolP("hidden", "H", false, "Show hidden files and directories")
	f.Bool("color", false, "Colorize output (default: on when stdout is a terminal)")
	f.BoolVar(&a.flags.noColor, "no-color", false, "Disable colors")
	f.Bool("size", false, "Show file sizes")

	// Filtering
	f.StringSliceP("include", "I", nil, "Only list files matching these glob patterns (repeatable)")
	f.StringSliceP("exclude", "E", nil, "Hide entries matching these glob patterns (repeatable)")
	f.Bool("smart-exclude", true, "Hide common clutter such as node_modules, .git and build output")
	f.Bool("gitignore", false, "Also hide entries matched by the root .gitignore")

	// Export
	f.BoolP("export", "x", false, "Write a Markdown export with file contents for LLMs")
	f.String("max-file-size", "100k", "Maximum size of a file whose content is exported (e.g. 50k, 1.5m)")
	f.StringSlice("content-extensions", nil, "Export content only for these extensions (e.g. go,md)")
	f.StringP("output-dir", "o", "", "Directory for the export file (default: current directory)")
	f.String("indicators", string(config.IndicatorsIncluded), "Content markers in the tree: all, included or none")
	f.Bool("add-marker", false, "Mark the export so later exports skip it")
	f.Bool("tokens", false, "Estimate the token count of the exported content")
	f.StringVar(&a.flags.tokenModel, "token-model", "", "Model whose tokenizer is used for --tokens (default gpt-4o)")
	f.String("pdf", "", "Also render the export as a PDF at this path")
	f.StringVar(&a.flags.pdfStyle, "pdf-style", "", "Syntax highlighting style for --pdf")
	f.BoolP("clipboard", "c", false, "Copy the export document to the clipboard")

	// Behavior
	f.BoolP("verbose", "v", false, "Verbose logging and a list of skipped items")
	f.Bool("skip-errors", false, "Skip filesystem errors without prompting")
	f.BoolVar(&a.flags.askErrors, "ask-errors", false, "Prompt when filesystem errors occur (default)")
	f.Bool("dry-run", false, "Walk and print statistics without writing any output")
	f.BoolP("interactive", "i", false, "Pick content extensions and excluded directories interactively")

	// Config and preferences
	f.StringVar(&a.flags.configFile, "config", "", "Config file (default: ~/.config/dirtree/config.toml)")
	f.StringVar(&a.flags.prefsFile, "preferences", "", "Preferences file (default: ~/.config/dirtree/preferences.yaml)")
	f.BoolVar(&a.flags.saveConfig, "save-config", false, "Save the current display and export options as preferences")
	f.BoolVar(&a.flags.setDefault, "set-default", false, "Remember DIRECTORY as the default when none is given")

	cmd.MarkFlagsMutuallyExclusive("color", "no-color")
	cmd.MarkFlagsMutuallyExclusive("skip-errors", "ask-errors")

	a.bindFlags(cmd)
	return cmd
}

// flagKeys maps flag names to the configuration keys they set.
var flagKeys = map[string]string{
	"style":              config.KeyStyle,
	"max-depth":          config.KeyMaxDepth,
	"hidden":             config.KeyShowHidden,
	"color":              config.KeyColorize,
	"size":               config.KeyShowSize,
	"include":            config.KeyInclude,
	"exclude":            config.KeyExclude,
	"smart-exclude":      config.KeySmartExclude,
	"gitignore":          config.KeyGitIgnore,
	"export":             config.KeyExport,
	"max-file-size":      config.KeyMaxFileSize,
	"content-extensions": config.KeyContentExtensions,
	"output-dir":         config.KeyOutputDir,
	"indicators":         config.KeyIndicators,
	"add-marker":         config.KeyAddMarker,
	"tokens":             config.KeyTokens,
	"pdf":                config.KeyPDF,
	"clipboard":          config.KeyClipboard,
	"verbose":            config.KeyVerbose,
	"skip-errors":        config.KeySkipErrors,
	"dry-run":            config.KeyDryRun,
	"interactive":        config.KeyInteractive,
}

func (a *app) bindFlags(cmd *cobra.Command) {
	for name, key := range flagKeys {
		if err := a.v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			fmt.Fprintf(a.stderr, "Warning: could not bind flag --%s: %v\n", name, err)
		}
	}
}

// initConfig layers built-in defaults, saved preferences, the config file
// and the environment under the bound flags.
func (a *app) initConfig() error {
	config.SetDefaults(a.v, a.stdoutTTY && !color.NoColor)

	store, err := a.prefsStore()
	if err != nil {
		fmt.Fprintf(a.stderr, "Warning: preferences unavailable: %v\n", err)
	} else if p, err := store.Load(); err != nil {
		fmt.Fprintf(a.stderr, "Warning: could not load preferences: %v\n", err)
	} else {
		p.Apply(a.v)
	}

	if a.flags.configFile != "" {
		a.v.SetConfigFile(a.flags.configFile)
	} else if dir, err := configDir(); err == nil {
		a.v.AddConfigPath(dir)
		a.v.SetConfigName("config")
		a.v.SetConfigType("toml")
	}

	a.v.SetEnvPrefix("DIRTREE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// --no-color and --ask-errors are negations of bound keys
	if a.flags.noColor {
		a.v.Set(config.KeyColorize, false)
	}
	if a.flags.askErrors {
		a.v.Set(config.KeySkipErrors, false)
	}
	return nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "dirtree"), nil
}

func (a *app) prefsStore() (*prefs.Store, error) {
	path := a.flags.prefsFile
	if path == "" {
		var err error
		if path, err = prefs.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return prefs.NewStore(path, logger.NewConsoleLogger(a.stderr, "warn")), nil
}

// resolveRoot picks the directory argument, then the saved default
// directory, then the working directory.
func (a *app) resolveRoot(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	store, err := a.prefsStore()
	if err != nil {
		return "."
	}
	p, err := store.Load()
	if err != nil {
		return "."
	}
	if dir := p.DefaultDir(); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		fmt.Fprintf(a.stderr, "Warning: saved default directory %s is not available, using the current directory\n", dir)
	}
	return "."
}
