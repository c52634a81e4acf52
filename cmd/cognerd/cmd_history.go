package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"cognerd/internal/store"
)

// =============================================================================
// RUN HISTORY COMMANDS
// =============================================================================

var historyDBPath string

// runsCmd lists recorded runs
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runListRuns,
}

// conceptsCmd prints the end-of-run concept snapshot
var conceptsCmd = &cobra.Command{
	Use:   "concepts <run-id>",
	Short: "Show the concept snapshot of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowConcepts,
}

// reportsCmd prints the IN/OUT/ANSWER lines of a run
var reportsCmd = &cobra.Command{
	Use:   "reports <run-id>",
	Short: "Show the reports of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowReports,
}

func init() {
	for _, c := range []*cobra.Command{runsCmd, conceptsCmd, reportsCmd} {
		c.Flags().StringVar(&historyDBPath, "db", "", "Run history database (default from config)")
	}
}

func openHistory() (*store.Store, error) {
	path := cfg.Store.DatabasePath
	if historyDBPath != "" {
		path = historyDBPath
	}
	return store.Open(inWorkspace(path))
}

func runListRuns(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	runs, err := history.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tCYCLES\tSTATUS")
	for _, r := range runs {
		status := "running"
		if r.Finished() {
			status = "finished in " + r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.ID, r.StartedAt.Format(time.RFC3339), r.Cycles, status)
	}
	return tw.Flush()
}

func runShowConcepts(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	concepts, err := history.LoadSnapshot(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(concepts) == 0 {
		fmt.Fprintln(out, "No concepts in snapshot.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BUDGET\tBELIEFS\tQUESTIONS\tTASK LINKS\tTERM LINKS\tCONCEPT")
	for _, c := range concepts {
		fmt.Fprintf(tw, "$%.4f;%.4f;%.4f$\t%d\t%d\t%d\t%d\t%s\n",
			c.Priority, c.Durability, c.Quality, c.Beliefs, c.Questions, c.TaskLinks, c.TermLinks, c.Key)
	}
	return tw.Flush()
}

func runShowReports(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	reports, err := history.Reports(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, r := range reports {
		fmt.Fprintf(out, "%6d %s: %s\n", r.Cycle, r.Kind, r.Text)
	}
	return nil
}
