package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/matzehuels/overlaysmith/pkg/buildinfo"
	"github.com/matzehuels/overlaysmith/pkg/cache"
	"github.com/matzehuels/overlaysmith/pkg/config"
	"github.com/matzehuels/overlaysmith/pkg/db"
	"github.com/matzehuels/overlaysmith/pkg/errors"
	"github.com/matzehuels/overlaysmith/pkg/manifest"
	"github.com/matzehuels/overlaysmith/pkg/tree"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Persistent flag values.
	configPath string
	overlay    string
	repository string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Overlaysmith generates package overlays from package databases",
		Long: `Overlaysmith maintains a generated package-repository overlay. It syncs a
package database, resolves dependency closures over it, writes ebuilds,
metadata and eclasses, and keeps the tree and its Manifests consistent
across regenerations.`,
		Version:      buildinfo.Resolved(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.installHooks()
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVarP(&c.overlay, "overlay", "o", "", "overlay directory (default: overlay from config)")
	flags.StringVarP(&c.repository, "repository", "r", "", "repository name (default: the only one synced)")

	root.AddCommand(c.syncCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.generateTreeCommand())
	root.AddCommand(c.updateTreeCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Environment
// =============================================================================

// env is everything a command needs to work on one overlay and repository.
type env struct {
	cfg        *config.Config
	overlay    string
	repository string
	repo       config.Repository
	info       *config.Info
}

// loadEnv reads the configuration and selects the overlay and repository.
func (c *CLI) loadEnv() (*env, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}

	overlay := c.overlay
	if overlay == "" {
		overlay = cfg.Overlay
	}
	if overlay == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no overlay given; pass --overlay or set overlay in %s", config.DefaultPath())
	}

	info, err := config.ReadInfo(overlay)
	if err != nil {
		return nil, err
	}
	repository, err := info.SelectRepository(c.repository)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:        cfg,
		overlay:    overlay,
		repository: repository,
		repo:       cfg.Repository(repository),
		info:       info,
	}, nil
}

func (e *env) dbDir() string {
	return config.DBDir(e.overlay, e.repository)
}

// openDB opens the synced database of the repository.
func (e *env) openDB() (*db.PackageDB, error) {
	d, err := db.Open(e.dbDir())
	if err != nil {
		return nil, err
	}
	if d.Len() == 0 {
		return nil, errors.New(errors.ErrCodeDatabase, "database for %s is empty; run `%s sync -r %s` first", e.repository, appName, e.repository)
	}
	return d, nil
}

// synchronizer returns a tree synchronizer configured for the environment.
func (c *CLI) synchronizer(e *env, d *db.PackageDB) *tree.Synchronizer {
	s := tree.New(e.overlay, d, c.Logger)
	s.Masters = e.repo.Masters
	s.Repos = tree.ReposConf{Path: e.cfg.ReposConf}
	s.Workers = e.cfg.Digest.Workers
	s.Tool = &manifest.Tool{
		Command: e.cfg.Digest.Command,
		Env:     e.cfg.Digest.Env,
		Logger:  c.Logger,
	}
	return s
}

// =============================================================================
// Cache
// =============================================================================

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(cacheDir())
}

// cacheDir returns the cache directory using XDG standard (~/.cache/overlaysmith/).
func cacheDir() string {
	return config.CacheDir()
}

// isTerminal reports whether the process is attached to an interactive terminal.
func isTerminal() bool {
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}
