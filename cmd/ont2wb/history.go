package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/osegermany/ont2wb/internal/application/handlers"
	"github.com/osegermany/ont2wb/internal/domain/entities"
)

type historyFlags struct {
	limit       int
	journalPath string
}

func newHistoryCmd() *cobra.Command {
	var flags historyFlags

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List journaled runs",
		Long:  "Lists recent runs recorded in the journal, or the actions taken by one run.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.limit, "limit", "l", DefaultHistoryLimit, "Maximum number of runs to display")
	cmd.Flags().StringVar(&flags.journalPath, "journal", "", "SQLite journal to read")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string, flags historyFlags) error {
	ctx := cmd.Context()

	return withDeps(ctx, depsOverrides{journalPath: flags.journalPath}, func(d *Deps) error {
		if d.HistoryHandler == nil {
			return errJournalDisabled
		}

		opts := handlers.HistoryOptions{Limit: flags.limit}
		if len(args) == 1 {
			opts.RunID = args[0]
		}

		result, err := d.HistoryHandler.Handle(ctx, opts)
		if err != nil {
			return err
		}

		if opts.RunID != "" {
			displayEntries(result.Entries)
			return nil
		}
		displayRuns(result.Runs)
		return nil
	})
}

func displayRuns(runs []entities.SyncRun) {
	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return
	}

	fmt.Printf("Showing %d runs:\n\n", len(runs))
	for _, run := range runs {
		mode := ""
		if run.DryRun {
			mode = " (dry run)"
		}
		fmt.Printf("%s  %s%s\n", run.ID, run.StartedAt.Local().Format(time.DateTime), mode)
		fmt.Printf("  Source:   %s\n", run.SourceFile)
		fmt.Printf("  Endpoint: %s\n", run.Endpoint)
		if run.FinishedAt == nil {
			fmt.Println("  Unfinished")
		} else {
			fmt.Printf("  %s\n", summaryLine(run.Summary))
		}
		fmt.Println()
	}
}

func displayEntries(entries []entities.JournalEntry) {
	fmt.Printf("Showing %d actions:\n\n", len(entries))
	for _, e := range entries {
		remote := e.RemoteID
		if remote == "" {
			remote = "-"
		}
		fmt.Printf("  %-7s %-10s %s\n", e.Action, remote, e.IRI)
		if msg, ok := e.Details["error"]; ok {
			fmt.Printf("          %v\n", msg)
		}
	}
}
