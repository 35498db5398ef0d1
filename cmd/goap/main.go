package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/goap/engine"
	"github.com/tailored-agentic-units/goap/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("goap: %v", err)
	}
}

type rootOptions struct {
	configFile string
	verbose    bool

	cfg *engine.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "goap",
		Short: "Plan action sequences with goal-oriented action planning",
		Long: `goap finds the cheapest sequence of actions that turns a current world
state into one satisfying a goal. Problems are YAML or JSON documents,
planned one at a time, in batches from a library directory, or over RPC.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to engine config JSON file")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable verbose logging to stderr")

	root.AddCommand(
		newPlanCmd(opts),
		newSolveCmd(opts),
		newListCmd(opts),
		newServeCmd(opts),
	)

	return root
}

// load installs the stderr logger as the "slog" observer and reads the
// config file, falling back to defaults.
func (o *rootOptions) load(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))

	if o.configFile == "" {
		cfg := engine.DefaultConfig()
		o.cfg = &cfg
		return nil
	}

	cfg, err := engine.LoadConfig(o.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	o.cfg = cfg
	return nil
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}
