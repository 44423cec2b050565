package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/spella/spella/internal/store"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Database string
	Run      string
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Re-emit a persisted run as a TSV dump",
		Long: `Dump a compiled dictionary from a SQLite database.

Without --run, lists the persisted runs. With --run, writes the run's
dictionary as tab-separated rows to stdout.

Example:
  spella dump --db out.db
  spella dump --db out.db --run 6d1f...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Run, "run", "", "run ID to dump")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runDump(opts *DumpOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return fail(formatter, ErrCodeStore, err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if opts.Run == "" {
		return listRuns(ctx, formatter, st)
	}

	s, err := st.ReadScript(ctx, opts.Run)
	if err != nil {
		return fail(formatter, ErrCodeStore, err)
	}
	if err := s.Dump(cmd.OutOrStdout()); err != nil {
		return fail(formatter, ErrCodeWriteFailed, err)
	}
	return nil
}

// listRuns prints the persisted runs.
func listRuns(ctx context.Context, formatter *OutputFormatter, st *store.Store) error {
	runs, err := st.Runs(ctx)
	if err != nil {
		return fail(formatter, ErrCodeStore, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(formatter.Writer, "%s\t%s\t%s\t%d syllable(s)\t%d spelling(s)\n",
			run.ID, run.SchemaName, run.SchemaVersion, run.Syllables, run.Spellings)
	}
	return nil
}
