package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/codeforasia/git-jekyll-preview/checkout"
	"github.com/codeforasia/git-jekyll-preview/config"
)

type globalFlags struct {
	configPath string
	cacheDir   string
	verbose    bool
}

func buildRootCommand(out io.Writer) *cobra.Command {
	flags := &globalFlags{}

	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "jekit",
		Short: "Prepare local checkouts of GitHub repositories",
		Long: `jekit keeps mirrors of GitHub repositories and working tree checkouts of
their branches and commits in a cache directory, so a preview server can
build any ref without cloning it again.

  jekit prepare octo demo main     Print the path of an up to date checkout
  jekit resolve octo demo main     Print the commit a ref points at
  jekit prune --older-than 168h    Remove checkouts not used for a week`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().StringVar(&flags.cacheDir, "cache-dir", "",
		"Cache directory (overrides the config file)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false,
		"Enable verbose output")

	cmd.AddCommand(
		newPrepareCommand(flags),
		newResolveCommand(flags),
		newPruneCommand(flags),
	)
	return cmd
}

// loadConfig reads the configuration, applies global flags and sets the
// log level.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.cacheDir != "" {
		cfg.CacheDir = g.cacheDir
	}

	switch {
	case g.verbose, os.Getenv("DEBUG") == "true":
		logger.SetLevel(logger.DebugLevel)
	default:
		if level, err := logger.ParseLevel(cfg.Log.Level); err == nil {
			logger.SetLevel(level)
		}
	}

	return cfg, nil
}

// withCoordinator builds the components for cfg and hands fn the
// coordinator.
func withCoordinator(cfg *config.Config, fn func(*checkout.Coordinator) error) error {
	container, err := newContainer(cfg)
	if err != nil {
		return err
	}

	var coord *checkout.Coordinator
	if err := container.Invoke(func(c *checkout.Coordinator) {
		coord = c
	}); err != nil {
		return unwrapDig(err)
	}
	return fn(coord)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

type prepareOutput struct {
	Account string `json:"account"`
	Repo    string `json:"repository"`
	Ref     string `json:"ref"`
	Path    string `json:"path"`
}

func newPrepareCommand(g *globalFlags) *cobra.Command {
	var token string
	var force, asJSON bool

	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "prepare <account> <repository> <ref>",
		Short: "Clone or update a repository and check out a ref",
		Args:  cobra.ExactArgs(3),
		RunE: func(command *cobra.Command, args []string) error {
			err := runPrepare(command, g, args, token, force, asJSON)
			if err != nil {
				reportError(command.OutOrStdout(), err, asJSON)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "GitHub token (default: from config)")
	cmd.Flags().BoolVar(&force, "force", false, "Ignore a fresh cached checkout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func runPrepare(command *cobra.Command, g *globalFlags, args []string, token string, force, asJSON bool) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if force {
		cfg.Freshness = 0
	}
	if token == "" {
		token = cfg.GitHub.Token
	}

	ctx, cancel := signalContext(command.Context())
	defer cancel()

	return withCoordinator(cfg, func(coord *checkout.Coordinator) error {
		path, err := coord.PrepareCheckout(ctx, args[0], args[1], args[2], token)
		if err != nil {
			return err
		}

		if asJSON {
			return json.NewEncoder(command.OutOrStdout()).Encode(prepareOutput{
				Account: args[0],
				Repo:    args[1],
				Ref:     args[2],
				Path:    path,
			})
		}
		_, err = fmt.Fprintln(command.OutOrStdout(), path)
		return err
	})
}

func newResolveCommand(g *globalFlags) *cobra.Command {
	var token string
	var asJSON bool

	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "resolve <account> <repository> <ref>",
		Short: "Print the commit a branch or commit reference resolves to",
		Args:  cobra.ExactArgs(3),
		RunE: func(command *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err == nil {
				if token == "" {
					token = cfg.GitHub.Token
				}
				ctx, cancel := signalContext(command.Context())
				defer cancel()

				err = withCoordinator(cfg, func(coord *checkout.Coordinator) error {
					sha, err := coord.ResolveRef(ctx, args[0], args[1], args[2], token)
					if err != nil {
						return err
					}
					if asJSON {
						return json.NewEncoder(command.OutOrStdout()).Encode(map[string]string{"commit": sha})
					}
					_, err = fmt.Fprintln(command.OutOrStdout(), sha)
					return err
				})
			}
			if err != nil {
				reportError(command.OutOrStdout(), err, asJSON)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "GitHub token (default: from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newPruneCommand(g *globalFlags) *cobra.Command {
	var olderThan, every time.Duration
	var maxBytes int64

	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove checkouts that have not been used recently",
		Long: `Remove checkouts that have not been used recently. Mirrors are kept.

With --every the command keeps running and prunes on that interval until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				reportError(command.OutOrStdout(), err, false)
				return err
			}
			if !command.Flags().Changed("older-than") {
				olderThan = cfg.Prune.OlderThan
			}
			if !command.Flags().Changed("max-bytes") {
				maxBytes = cfg.Prune.MaxBytes
			}
			if !command.Flags().Changed("every") {
				every = cfg.Prune.Interval
			}

			strategies := []checkout.PruneStrategy{checkout.PruneOlderThan(olderThan)}
			if maxBytes > 0 {
				strategies = append(strategies, checkout.PruneToSize(maxBytes))
			}

			ctx, cancel := signalContext(command.Context())
			defer cancel()

			err = withCoordinator(cfg, func(coord *checkout.Coordinator) error {
				if every > 0 {
					logger.Infof("Pruning every %v until interrupted", every)
					stop := coord.StartGC(every, strategies...)
					<-ctx.Done()
					stop()
					return nil
				}

				removed, err := coord.Prune(ctx, strategies...)
				for _, path := range removed {
					_, _ = fmt.Fprintln(command.OutOrStdout(), path)
				}
				return err
			})
			if err != nil {
				reportError(command.OutOrStdout(), err, false)
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "Remove checkouts unused for longer than this")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "Also remove least recently used checkouts above this total size")
	cmd.Flags().DurationVar(&every, "every", 0, "Keep running and prune on this interval")
	return cmd
}
