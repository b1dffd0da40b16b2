package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PhatDave/BssPrepaidImporter/internal/logging"
	"github.com/PhatDave/BssPrepaidImporter/internal/tui"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

var rootCmd = &cobra.Command{
	Use:   "bssimport",
	Short: "Bulk-load prepaid flags for subscriber billings into PostgreSQL",
	Long: `bssimport loads MSISDN/prepaid records from two text files into PostgreSQL.

Records are staged in parallel into a staging table created from the target
table's definition, then merged into the target. Rows whose MSISDN already
exists in the target are left untouched, so re-running an import is safe.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration, arguments or input files
  11 - Database connection failed
  12 - Staging table could not be prepared
  13 - One or more workers failed to stage their chunk
  14 - Merge into the target table failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("log-format", string(logging.FormatText),
		"Log output format: text|json")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

// newLogger builds the logger selected by --log-format. Text output on an
// interactive terminal highlights status lines.
func newLogger(cmd *cobra.Command, verbose bool) (bssimport.Logger, logging.Format, error) {
	raw, err := cmd.Flags().GetString("log-format")
	if err != nil {
		raw = string(logging.FormatText)
	}
	format, err := logging.ParseFormat(raw)
	if err != nil {
		return nil, "", err
	}

	logger := logging.New(format, verbose)
	if format == logging.FormatText && tui.IsInteractive() {
		logger = tui.NewStatusLogger(logger)
	}
	return logger, format, nil
}
