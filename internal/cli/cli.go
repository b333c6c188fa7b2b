// Package cli implements the depman command-line interface.
//
// # Commands
//
//   - list (default): show every dependency with its declared, installed,
//     compatible and latest version
//   - info: registry metadata of one dependency
//   - search: search the project's registry
//   - install: add or upgrade a dependency in the manifest
//   - delete: remove a dependency from the manifest
//   - cache: manage the registry response cache
//
// All commands accept --verbose (-v) for debug logging. The logger travels
// through the command context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depman/pkg/buildinfo"
	"github.com/matzehuels/depman/pkg/cache"
	"github.com/matzehuels/depman/pkg/deps"
	"github.com/matzehuels/depman/pkg/deps/languages"
	"github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/observability"
)

// appName is the application name used for directories and display.
const appName = "depman"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	flags  globalFlags
}

type globalFlags struct {
	dir         string
	registry    string
	noCache     bool
	concurrency int
	timeout     time.Duration
	config      string
	kind        string
	refresh     bool
	verbose     bool
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Without a subcommand it behaves like "list".
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "depman inspects and upgrades project dependencies",
		Long:          `depman reads a project's manifest and lockfile, asks the registry which versions exist, and shows which upgrades stay within the declared requirements. Supports npm (package.json) and Cargo (Cargo.toml) projects.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.flags.verbose {
				c.SetLogLevel(LogDebug)
				observability.NewLogHooks(c.Logger).Install()
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList(cmd, false)
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVarP(&c.flags.dir, "dir", "d", ".", "project directory")
	pf.StringVar(&c.flags.registry, "registry", "", "registry base URL for the detected project kind")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable the registry response cache")
	pf.IntVar(&c.flags.concurrency, "concurrency", 0, "maximum concurrent registry requests (default 16)")
	pf.DurationVar(&c.flags.timeout, "timeout", 0, "timeout per registry request (default 15s)")
	pf.StringVar(&c.flags.config, "config", "", "config file (default $XDG_CONFIG_HOME/depman/config.yaml)")
	pf.StringVar(&c.flags.kind, "kind", "", "project kind, npm or cargo (default: detected from --dir)")
	pf.BoolVar(&c.flags.refresh, "refresh", false, "ignore cached registry responses and fetch again")
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.listCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// session is the configured backend of the project in --dir.
type session struct {
	kind    deps.Kind
	backend deps.Backend
	opts    deps.Options
	store   cache.Cache
}

func (s *session) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

// newSession detects the project kind and builds its backend from the
// config file and flags. Flags win over the config file.
func (c *CLI) newSession(ctx context.Context) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	kind, err := c.detect()
	if err != nil {
		return nil, err
	}
	store, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := deps.Options{
		Concurrency:    cfg.Concurrency,
		RequestTimeout: cfg.Timeout,
		RegistryURL:    cfg.Registries.For(kind),
		Cache:          store,
		CacheTTL:       cfg.Cache.TTL,
		Refresh:        c.flags.refresh,
		Logger:         loggerFromContext(ctx),
	}
	if c.flags.concurrency > 0 {
		opts.Concurrency = c.flags.concurrency
	}
	if c.flags.timeout > 0 {
		opts.RequestTimeout = c.flags.timeout
	}
	if c.flags.registry != "" {
		opts.RegistryURL = c.flags.registry
	}

	b, err := languages.New(kind, opts)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	opts.Logger.Debug("project detected", "kind", kind, "dir", c.flags.dir, "registry", opts.RegistryURL)
	return &session{kind: kind, backend: b, opts: opts, store: store}, nil
}

// detect returns the project kind named by --kind, or the one found in --dir.
func (c *CLI) detect() (deps.Kind, error) {
	if c.flags.kind != "" {
		return deps.ParseKind(c.flags.kind)
	}
	kind, ok := languages.Detect(c.flags.dir)
	if !ok {
		return "", errors.New(errors.ErrCodeNoProject, "no package.json or Cargo.toml in %s", c.flags.dir)
	}
	return kind, nil
}

// parse parses the project while a spinner runs on w.
func (s *session) parse(ctx context.Context, dir string, w io.Writer) (*deps.Project, error) {
	spinner := newSpinnerWithContext(ctx, w, "Fetching registry metadata...")
	spinner.Start()
	defer spinner.Stop()

	prog := newProgress(s.opts.Logger)
	p, err := deps.Parse(ctx, dir, s.backend, s.opts)
	if err != nil {
		return nil, err
	}
	prog.debug("parsed %s project with %d dependencies", p.Kind, len(deps.Names(p.Config)))
	return p, nil
}
