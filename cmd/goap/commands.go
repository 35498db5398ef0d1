package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/goap/engine"
	"github.com/tailored-agentic-units/goap/goap"
	"github.com/tailored-agentic-units/goap/library"
	"github.com/tailored-agentic-units/goap/rpc"
)

func newPlanCmd(root *rootOptions) *cobra.Command {
	var (
		maxNodes        int
		maxDepth        int
		acceptSatisfied bool
		server          string
	)

	cmd := &cobra.Command{
		Use:   "plan <file>",
		Short: "Plan a single problem file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read problem: %w", err)
			}
			p, err := library.Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if p.Name == "" {
				p.Name = args[0]
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			if server != "" {
				resp, err := rpc.NewClient(http.DefaultClient, server).Plan(ctx, p)
				if resp != nil {
					printResponse(cmd.OutOrStdout(), p.Name, resp)
				}
				return err
			}

			cfg := root.cfg.Planner
			if cmd.Flags().Changed("max-nodes") {
				cfg.MaxNodes = maxNodes
			}
			if cmd.Flags().Changed("max-depth") {
				cfg.MaxDepth = maxDepth
			}
			if cmd.Flags().Changed("accept-satisfied") {
				cfg.AcceptSatisfiedStart = acceptSatisfied
			}

			planner, err := goap.New(cfg)
			if err != nil {
				return err
			}

			result, err := planner.Plan(ctx, p.Actions, p.Current, p.Goal)
			if result != nil {
				printResult(cmd.OutOrStdout(), p.Name, result)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "search tree size limit; 0 for unlimited (overrides config)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "plan length limit; 0 for unlimited (overrides config)")
	cmd.Flags().BoolVar(&acceptSatisfied, "accept-satisfied", false, "return an empty plan when the current state already meets the goal")
	cmd.Flags().StringVar(&server, "server", "", "plan on a remote goap server (e.g. http://localhost:8080)")

	return cmd
}

func newSolveCmd(root *rootOptions) *cobra.Command {
	var libraryPath string

	cmd := &cobra.Command{
		Use:   "solve <name>...",
		Short: "Plan library problems concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(root, libraryPath)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			results, err := e.SolveAll(ctx, args...)
			for i, r := range results {
				if r != nil {
					printResult(cmd.OutOrStdout(), args[i], r)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&libraryPath, "library", "", "problem library directory (overrides config)")
	return cmd
}

func newListCmd(root *rootOptions) *cobra.Command {
	var libraryPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(root, libraryPath)
			if err != nil {
				return err
			}

			names, err := e.Names(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&libraryPath, "library", "", "problem library directory (overrides config)")
	return cmd
}

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr        string
		libraryPath string
		maxNodes    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner over Connect RPC with Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				root.cfg.Server.Addr = addr
			}
			if maxNodes > 0 {
				root.cfg.Server.MaxNodes = maxNodes
			}

			e, err := newEngine(root, libraryPath)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			return e.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&libraryPath, "library", "", "problem library directory (overrides config)")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "node cap for each served search (overrides config)")
	return cmd
}

func newEngine(root *rootOptions, libraryPath string) (*engine.Engine, error) {
	if libraryPath != "" {
		root.cfg.Library.Path = libraryPath
	}

	e, err := engine.New(root.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return e, nil
}

func printResult(w io.Writer, name string, r *goap.Result) {
	fmt.Fprintf(w, "%s:\n", name)
	if !r.Found {
		fmt.Fprintln(w, "  no plan found")
	}
	for i, a := range r.Actions {
		fmt.Fprintf(w, "  %d. %s (%g)\n", i+1, a.Name, a.Cost)
	}
	fmt.Fprintf(w, "  cost %g, %d nodes%s\n", r.Cost, r.Nodes, truncatedNote(r.Truncated))
}

func printResponse(w io.Writer, name string, r *rpc.PlanResponse) {
	fmt.Fprintf(w, "%s:\n", name)
	if !r.Found {
		fmt.Fprintln(w, "  no plan found")
	}
	for i, a := range r.Actions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, a)
	}
	fmt.Fprintf(w, "  cost %g, %d nodes%s\n", r.Cost, r.Nodes, truncatedNote(r.Truncated))
}

func truncatedNote(truncated bool) string {
	if truncated {
		return " (search stopped early)"
	}
	return ""
}
