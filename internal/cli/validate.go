package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spella/spella/internal/algebra"
	"github.com/spella/spella/internal/calculus"
	"github.com/spella/spella/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidateSummary is the success payload of the validate command.
type ValidateSummary struct {
	Schema  string `json:"schema"`
	Version string `json:"version,omitempty"`
	Rules   int    `json:"rules"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <schema-dir>",
		Short: "Compile-check a schema's spelling algebra",
		Long: `Load a schema and compile every formula of its algebra without
touching any dictionary. Reports the first malformed formula with its
1-based position.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, schemaDir string, cmd *cobra.Command) error {
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

	proj, err := algebra.Load(sch.Algebra, calculus.Parse)
	if err != nil {
		var loadErr *algebra.LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(ErrCodeFormula, err.Error(), map[string]any{
				"index":   loadErr.Index,
				"formula": loadErr.Formula,
			})
			return WrapExitError(ExitFailure, ErrCodeFormula, err)
		}
		return fail(formatter, ErrCodeFormula, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidateSummary{Schema: sch.Name, Version: sch.Version, Rules: proj.Len()})
	}
	fmt.Fprintf(formatter.Writer, "✓ %s: %d formula(s) compiled\n", sch.Name, proj.Len())
	return nil
}
