// Command spella compiles input-method dictionaries by projecting syllable
// spellings through a schema's spelling algebra.
package main

import (
	"os"

	"github.com/spella/spella/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands print their own error output (SilenceErrors); cobra
		// reports flag and usage errors itself.
		os.Exit(cli.GetExitCode(err))
	}
}
