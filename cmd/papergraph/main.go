// Command papergraph serves and manipulates a paper's knowledge graph.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"papergraph-backend/internal/config"
	"papergraph-backend/internal/di"
	"papergraph-backend/internal/infrastructure/observability"
)

var version = "0.1.0-dev"

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configDir string
	env       string
	jsonOut   bool

	loader *config.Loader
	cfg    *config.Config
	logger *observability.Logger
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "papergraph",
		Short: "Knowledge graphs extracted from research papers",
		Long: `papergraph keeps a knowledge graph of one research paper: concepts,
methods and findings joined by typed relationships.

It serves the graph over HTTP, ingests extraction output and answers
path and centrality queries from the command line. State is kept in a
SQLite snapshot between runs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", envOr("PAPERGRAPH_CONFIG_DIR", "config"), "Directory holding base/<env>/local config files")
	root.PersistentFlags().StringVar(&a.env, "env", string(config.EnvironmentFromEnv()), "Environment: development, staging, production or test")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Output as JSON")

	root.AddCommand(
		newVersionCmd(a),
		newServeCmd(a),
		newIngestCmd(a),
		newExtractCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newPathCmd(a),
		newCentralityCmd(a),
		newRankCmd(a),
		newComponentsCmd(a),
		newSnapshotsCmd(a),
	)

	return root
}

func (a *app) setup() error {
	a.loader = config.NewLoader(a.configDir, config.Environment(a.env))
	cfg, err := a.loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(string(cfg.Environment), cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// withContainer builds the container and runs fn without touching the
// stored graph.
func (a *app) withContainer(ctx context.Context, fn func(ctx context.Context, c *di.Container) error) error {
	c, cleanup, err := di.InitializeContainer(ctx, a.cfg, a.logger, di.Version(version))
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(ctx, c)
}

// withGraph restores the stored snapshot and runs fn. When save is set the
// graph is written back after fn succeeds.
func (a *app) withGraph(ctx context.Context, save bool, fn func(ctx context.Context, c *di.Container) error) error {
	return a.withContainer(ctx, func(ctx context.Context, c *di.Container) error {
		if err := c.Autosaver.Restore(ctx); err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
		if err := fn(ctx, c); err != nil {
			return err
		}
		if save {
			return c.Autosaver.Flush(ctx)
		}
		return nil
	})
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOut {
				return a.printJSON(map[string]string{"version": version})
			}
			fmt.Printf("papergraph version %s\n", version)
			return nil
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
