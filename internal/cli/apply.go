package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spella/spella/internal/schema"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
}

// ApplyResult is the success payload of the apply command.
type ApplyResult struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	Changed bool   `json:"changed"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <schema-dir> <text>",
		Short: "Run a single string through a schema's spelling algebra",
		Long: `Apply every formula of the schema's algebra, in order, to one string.

Example:
  spella apply ./schemas/pinyin zhong`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runApply(opts *ApplyOptions, schemaDir, text string, cmd *cobra.Command) error {
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

	proj, err := loadProjection(sch, 0)
	if err != nil {
		return fail(formatter, ErrCodeFormula, err)
	}

	out, changed, err := proj.ApplyToText(text)
	if err != nil {
		return fail(formatter, ErrCodeApply, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ApplyResult{Input: text, Output: out, Changed: changed})
	}
	fmt.Fprintln(formatter.Writer, out)
	return nil
}
