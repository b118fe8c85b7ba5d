// Command gridhalo decomposes a structured grid described by an HCL file and
// prints the ghost exchange plan for the blocks owned by one rank.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"cogentcore.org/core/base/mpi"
	"github.com/notargets/GridHalo/config"
	"github.com/notargets/GridHalo/ctxlog"
	"github.com/notargets/GridHalo/partitions"
)

// ExitError carries a process exit code
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	mpi.Printf("gridhalo: %d process(es)\n", mpi.WorldSize())

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	ghost      int
	rank       int
	all        bool
	logLevel   string
	logFormat  string
	vars       map[string]string
}

// parse returns the options, or nil when the program should exit cleanly
func parse(args []string, output io.Writer) (*options, error) {
	opts := &options{vars: make(map[string]string)}

	flagSet := flag.NewFlagSet("gridhalo", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
gridhalo - ghost exchange planner for structured grids.

Usage:
  gridhalo [options] [CONFIG]

Options:
`)
		flagSet.PrintDefaults()
	}

	flagSet.StringVar(&opts.configPath, "config", "", "Path to the HCL decomposition file.")
	flagSet.IntVar(&opts.ghost, "ghost", -1, "Ghost layers, overrides the file when >= 0.")
	flagSet.IntVar(&opts.rank, "rank", mpi.WorldRank(), "Rank whose blocks are printed.")
	flagSet.BoolVar(&opts.all, "all", false, "Print the blocks of every rank.")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "Logging level: debug, info, warn or error.")
	flagSet.StringVar(&opts.logFormat, "log-format", "text", "Log output format: text or json.")
	flagSet.Func("var", "Set an input variable, name=value (repeatable).", func(s string) error {
		name, value, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return fmt.Errorf("expected name=value, got %q", s)
		}
		opts.vars[name] = value
		return nil
	})

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, nil
		}
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}

	if opts.configPath == "" && flagSet.NArg() > 0 {
		opts.configPath = flagSet.Arg(0)
	}
	if opts.configPath == "" {
		flagSet.Usage()
		return nil, nil
	}

	opts.logFormat = strings.ToLower(opts.logFormat)
	if opts.logFormat != "text" && opts.logFormat != "json" {
		return nil, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	opts.logLevel = strings.ToLower(opts.logLevel)
	switch opts.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	return opts, nil
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	opts, err := parse(args, outW)
	if err != nil || opts == nil {
		return err
	}

	logger := ctxlog.New(os.Stderr, opts.logFormat, opts.logLevel)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	cfg, err := config.Load(ctx, opts.configPath, opts.vars)
	if err != nil {
		return err
	}
	lb, err := cfg.Builder()
	if err != nil {
		return err
	}
	if opts.ghost >= 0 {
		lb.GhostLayers = opts.ghost
	}

	layout, err := lb.BuildLayout()
	if err != nil {
		return err
	}
	if !opts.all && (opts.rank < 0 || opts.rank >= layout.NumRanks) {
		return &ExitError{Code: 2, Message: fmt.Sprintf("rank %d outside [0,%d)", opts.rank, layout.NumRanks)}
	}
	logger.Info("Layout built.", "blocks", len(layout.Blocks), "ranks", layout.NumRanks,
		"ghost_layers", layout.GhostLayers, "shared_boundary", layout.SharedBoundary)

	plan, err := partitions.BuildExchangePlan(ctx, layout)
	if err != nil {
		return err
	}
	if layout.SharedBoundary {
		if err := partitions.ValidateCommunicationSymmetry(plan); err != nil {
			return fmt.Errorf("exchange plan is not symmetric: %w", err)
		}
	} else {
		logger.Warn("Cell-disjoint layout, send and receive extents are not paired.")
	}

	printPlan(outW, layout, plan, opts)
	return nil
}

func printPlan(outW io.Writer, layout *partitions.Layout, plan *partitions.ExchangePlan, opts *options) {
	stats := layout.Statistics()
	fmt.Fprintf(outW, "whole %v, %d blocks on %d ranks, %d ghost layers, imbalance %.3f\n",
		layout.Whole, stats.NumBlocks, stats.NumRanks, layout.GhostLayers, stats.Imbalance)

	tw := tabwriter.NewWriter(outW, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BLOCK\tRANK\tNEIGHBOR\tNRANK\tORIENT\tSEND\tRECV")
	for _, b := range layout.Blocks {
		if !opts.all && b.Rank != opts.rank {
			continue
		}
		for _, e := range plan.EntriesFor(b.ID) {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%v/%v/%v\t%v\t%v\n",
				e.BlockID, e.Rank, e.NeighborID, e.NeighborRank,
				e.Orientation[0], e.Orientation[1], e.Orientation[2], e.Send, e.Receive)
		}
	}
	tw.Flush()

	for _, b := range layout.Blocks {
		if !opts.all && b.Rank != opts.rank {
			continue
		}
		send, recv := plan.Volume(b.ID)
		fmt.Fprintf(outW, "block %d real %v ghosted %v: send %d points, receive %d points\n",
			b.ID, b.Real, layout.GhostedExtent(b.ID, layout.GhostLayers), send, recv)
	}
}
