package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireInputFiles validates the load arguments: two input files and up
// to three optional positional settings.
func RequireInputFiles(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf(`requires at least 2 arg(s), only received %d: TRUE_FILE and FALSE_FILE

Usage: %s

Example:
  %s prepaid_true.csv prepaid_false.csv bss:secret@localhost:5434/bss 8 4096`,
			len(args), cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 5 {
		return fmt.Errorf("accepts at most 5 arg(s), received %d", len(args))
	}
	return nil
}
