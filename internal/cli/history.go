package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/shoplist/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit   int
	Summary bool
}

// HistoryResult is the output of the history command.
type HistoryResult struct {
	Entries []journal.Entry        `json:"entries,omitempty"`
	Summary []journal.OutcomeCount `json:"summary,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show events recorded in the journal",
		Long: `Show the most recent events handled by the bot, newest first.

Needs journal.path (JOURNAL_PATH) to be set.

Example:
  shoplist history --limit 50
  shoplist history --summary --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of entries to show")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "count entries by operation and result instead")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cfg, _, err := opts.loadConfig()
	if err != nil {
		return err
	}
	out := opts.formatter(cmd)

	if cfg.Journal.Path == "" {
		_ = out.Error(CodeJournal, "journal is disabled (set journal.path or JOURNAL_PATH)", nil)
		return NewExitError(ExitCommandError, "journal is disabled")
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		_ = out.Error(CodeJournal, "failed to open journal", err.Error())
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	var res HistoryResult
	if opts.Summary {
		res.Summary, err = j.CountByOutcome(cmd.Context())
	} else {
		res.Entries, err = j.Recent(cmd.Context(), opts.Limit)
	}
	if err != nil {
		_ = out.Error(CodeJournal, "failed to read journal", err.Error())
		return WrapExitError(ExitFailure, "failed to read journal", err)
	}

	return out.Success(res, func(w io.Writer) {
		if opts.Summary {
			printSummary(w, res.Summary)
			return
		}
		printEntries(w, res.Entries)
	})
}

func printEntries(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No events recorded.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-13s %-8s %-10s sender=%d",
			e.At.Format("2006-01-02 15:04:05"), e.Event, e.Op, e.Result, e.Sender)
		if e.Product != "" {
			fmt.Fprintf(w, " product=%q", e.Product)
		}
		if e.Error != "" {
			fmt.Fprintf(w, " error=%q", e.Error)
		}
		fmt.Fprintln(w)
	}
}

func printSummary(w io.Writer, counts []journal.OutcomeCount) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "No events recorded.")
		return
	}
	for _, c := range counts {
		fmt.Fprintf(w, "%-8s %-10s %d\n", c.Op, c.Result, c.Count)
	}
}
