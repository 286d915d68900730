package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/osegermany/ont2wb/internal/application/handlers"
	"github.com/osegermany/ont2wb/internal/domain/entities"
	"github.com/osegermany/ont2wb/internal/infrastructure/config"
)

type syncFlags struct {
	file        string
	format      string
	dryRun      bool
	journalPath string
	metricsFile string
}

func newSyncCmd() *cobra.Command {
	var flags syncFlags

	cmd := &cobra.Command{
		Use:   "ont2wb [user] [password]",
		Short: "Synchronize an RDF ontology into a WikiBase instance",
		Long: `Reads a Turtle ontology and makes a WikiBase instance mirror it: every class,
property and individual becomes an item or property, and the relations between
them become statements.

Credentials default to the WIKIBASE_USER and WIKIBASE_PASSWORD environment
variables, then to the config file.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Ontology file (default from config)")
	cmd.Flags().StringVar(&flags.format, "format", "auto", "File format (turtle, ntriples, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Plan the changes without writing")
	cmd.Flags().StringVar(&flags.journalPath, "journal", "", "Record the run in this SQLite journal")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics", "", "Write Prometheus metrics to this file")

	return cmd
}

func runSync(cmd *cobra.Command, args []string, flags syncFlags) error {
	ctx := cmd.Context()
	overrides := depsOverrides{journalPath: flags.journalPath, metricsFile: flags.metricsFile}

	return withDeps(ctx, overrides, func(d *Deps) error {
		user, password := credentials(args, d.Config.WikiBase)

		filePath := flags.file
		if filePath == "" {
			filePath = d.Config.Ontology.File
		}

		opts := handlers.SyncOptions{
			Format:              flags.format,
			Username:            user,
			Password:            password,
			DryRun:              flags.dryRun,
			Language:            d.Config.WikiBase.Language,
			SourceIRIProperty:   d.Config.WikiBase.SourceIRIProperty,
			PredicateProperties: d.Config.PredicateProperties(),
		}

		slog.Info("Synchronizing", "file", filePath, "endpoint", d.Config.WikiBase.APIURL, "dry_run", flags.dryRun)

		result, err := d.SyncHandler.Handle(ctx, filePath, opts)
		if result != nil {
			displaySummary(result, flags.dryRun)
		}
		if err != nil {
			return err
		}

		if result.Summary.HasFailures() {
			return fmt.Errorf("%d of %d entities failed", result.Summary.Failed, result.Summary.Total())
		}
		return nil
	})
}

// credentials picks user and password from the arguments, the environment,
// then the config file.
func credentials(args []string, cfg config.WikiBaseConfig) (string, string) {
	user := firstNonEmpty(argAt(args, 0), os.Getenv(envUser), cfg.Username)
	password := firstNonEmpty(argAt(args, 1), os.Getenv(envPassword), cfg.Password)
	return user, password
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func displaySummary(result *handlers.SyncResult, dryRun bool) {
	s := result.Summary

	if len(s.Failures) > 0 {
		fmt.Printf("\nFailures (%d):\n", len(s.Failures))
		for _, f := range s.Failures {
			fmt.Printf("  %s: %s\n", f.IRI, f.Err)
		}
	}

	fmt.Println()
	if dryRun {
		fmt.Print("Dry run. ")
	}
	fmt.Println(summaryLine(s))
	fmt.Printf("Relations written: %d, skipped: %d\n", s.RelationsWritten, s.RelationsSkipped)
	if result.RunID != "" {
		fmt.Printf("Run: %s\n", result.RunID)
	}
}

func summaryLine(s entities.SyncSummary) string {
	return fmt.Sprintf("Created: %d, updated: %d, unchanged: %d, failed: %d",
		s.Created, s.Updated, s.Unchanged, s.Failed)
}
