// Package main provides the entry point for the okhstats CLI application.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/osegermany/ont2wb/internal/application/handlers"
	"github.com/osegermany/ont2wb/internal/infrastructure/config"
	"github.com/osegermany/ont2wb/internal/infrastructure/logging"
	"github.com/osegermany/ont2wb/internal/infrastructure/okh"
)

var version = "0.1.0-dev"

type statsFlags struct {
	pattern  string
	output   string
	download bool
	verbose  bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logging.Preinit()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var flags statsFlags

	cmd := &cobra.Command{
		Use:   "okhstats [dir]",
		Short: "Count key usage across OKH manifests",
		Long: `Reads every Open Know-How manifest in a directory and prints how often each
key occurs, least used first. Nested keys are joined with dots.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runStats(cmd, dir, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.pattern, "pattern", "p", handlers.DefaultManifestPattern, "Manifest file pattern (doublestar syntax)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&flags.download, "download", false, "Fetch the manifests listed in the OKH index, even if the directory exists")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func runStats(cmd *cobra.Command, dir string, flags statsFlags) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Log.Level
	if flags.verbose {
		level = "debug"
	}
	closeLog, err := logging.Init(os.Stderr, level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer closeLog()

	// A missing directory is downloaded even without --download.
	handler := handlers.NewStatsHandler(okh.NewDownloader(cfg.OKH.ListURL, cfg.WikiBase.Timeout))

	result, err := handler.Handle(ctx, dir, handlers.StatsOptions{
		Pattern:  flags.pattern,
		Download: flags.download,
	})
	if err != nil {
		return err
	}
	if len(result.Skipped) > 0 {
		slog.Warn("Some manifests could not be parsed", "skipped", len(result.Skipped))
	}

	return writeReport(result, flags.output, cmd.OutOrStdout())
}

func writeReport(result *handlers.StatsResult, output string, stdout io.Writer) error {
	w := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := result.Stats.WriteTo(w); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
