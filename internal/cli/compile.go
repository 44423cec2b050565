package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spella/spella/internal/algebra"
	"github.com/spella/spella/internal/calculus"
	"github.com/spella/spella/internal/schema"
	"github.com/spella/spella/internal/script"
	"github.com/spella/spella/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Dict     string // dictionary source path (required)
	Database string // optional SQLite output
	Dump     string // optional TSV output path
	Workers  int    // worker pool size, 0 = GOMAXPROCS
}

// CompileSummary is the success payload of the compile command.
type CompileSummary struct {
	Schema    string `json:"schema"`
	Version   string `json:"version,omitempty"`
	Rules     int    `json:"rules"`
	Syllables int    `json:"syllables"`
	Spellings int    `json:"spellings"`
	Changed   bool   `json:"changed"`
	RunID     string `json:"run_id,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <schema-dir>",
		Short: "Project a dictionary through a schema's spelling algebra",
		Long: `Compile a dictionary: load the schema's algebra, read the dictionary
source, run the projection, and persist and/or dump the result.

Example:
  spella compile ./schemas/pinyin --dict pinyin.dict --db out.db
  spella compile ./schemas/pinyin --dict pinyin.dict --dump out.tsv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dict, "dict", "", "path to dictionary source (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "write the compiled dictionary to this SQLite database")
	cmd.Flags().StringVar(&opts.Dump, "dump", "", "write a TSV dump to this file (\"-\" for stdout)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "worker pool size (0 = number of CPUs)")
	_ = cmd.MarkFlagRequired("dict")

	return cmd
}

func runCompile(opts *CompileOptions, schemaDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sch, err := schema.Load(schemaDir)
	if err != nil {
		return fail(formatter, ErrCodeSchema, err)
	}
	formatter.VerboseLog("Loaded schema %s with %d formula(s)", sch.Name, len(sch.Algebra))

	proj, err := loadProjection(sch, opts.Workers)
	if err != nil {
		return fail(formatter, ErrCodeFormula, err)
	}

	s, err := readDict(opts.Dict)
	if err != nil {
		return fail(formatter, ErrCodeDict, err)
	}
	slog.Info("dictionary loaded", "path", opts.Dict, "syllables", s.Len())

	changed, err := proj.ApplyToScript(s)
	if err != nil {
		return fail(formatter, ErrCodeApply, err)
	}
	slog.Info("projection applied", "schema", sch.Name, "changed", changed, "syllables", s.Len())

	summary := CompileSummary{
		Schema:    sch.Name,
		Version:   sch.Version,
		Rules:     proj.Len(),
		Syllables: s.Len(),
		Changed:   changed,
	}
	for _, syllable := range s.Syllables() {
		summary.Spellings += len(s.Spellings(syllable))
	}

	if opts.Database != "" {
		runID, err := persist(cmd.Context(), opts.Database, sch, s)
		if err != nil {
			return fail(formatter, ErrCodeStore, err)
		}
		summary.RunID = runID
	}

	if opts.Dump != "" {
		if err := writeDump(opts.Dump, s, cmd); err != nil {
			return fail(formatter, ErrCodeWriteFailed, err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "✓ Compiled %s: %d rule(s), %d syllable(s), %d spelling(s)\n",
		summary.Schema, summary.Rules, summary.Syllables, summary.Spellings)
	if summary.RunID != "" {
		fmt.Fprintf(formatter.Writer, "Run: %s\n", summary.RunID)
	}
	return nil
}

// loadProjection compiles the schema's algebra into a projection.
func loadProjection(sch *schema.Schema, workers int) (*algebra.Projection, error) {
	opts := []algebra.Option{}
	if workers > 0 {
		opts = append(opts, algebra.WithWorkers(workers))
	}
	return algebra.Load(sch.Algebra, calculus.Parse, opts...)
}

// readDict opens and parses a dictionary source file.
func readDict(path string) (*script.Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	header, s, err := script.ReadDict(f)
	if err != nil {
		return nil, err
	}
	if header.Name != "" {
		slog.Debug("dictionary header", "name", header.Name, "version", header.Version)
	}
	return s, nil
}

// persist writes the compiled script to the SQLite store as a new run.
func persist(ctx context.Context, path string, sch *schema.Schema, s *script.Script) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	run := store.NewRun(sch.Name, sch.Version, s)
	if err := st.WriteScript(ctx, run, s); err != nil {
		return "", err
	}
	slog.Info("run persisted", "run_id", run.ID, "db", path, "spellings", run.Spellings)
	return run.ID, nil
}

// writeDump emits the TSV dump to a file, or stdout for "-".
func writeDump(path string, s *script.Script, cmd *cobra.Command) error {
	if path == "-" {
		return s.Dump(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dump file: %w", err)
	}
	if err := s.Dump(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fail reports an error in the configured format and wraps it with the
// appropriate exit code.
func fail(formatter *OutputFormatter, code string, err error) error {
	_ = formatter.Error(code, err.Error(), nil)

	var loadErr *algebra.LoadError
	var applyErr *algebra.ApplyError
	if errors.As(err, &loadErr) || errors.As(err, &applyErr) {
		return WrapExitError(ExitFailure, code, err)
	}
	return WrapExitError(ExitCommandError, code, err)
}
