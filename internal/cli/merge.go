package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PhatDave/BssPrepaidImporter/internal/db"
	"github.com/PhatDave/BssPrepaidImporter/internal/db/manager"
	"github.com/PhatDave/BssPrepaidImporter/internal/services"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [CONNECTION]",
	Short: "Merge a retained staging table into the target table",
	Long: `Merge inserts the rows of the staging table whose key the target table
does not have yet, then drops the staging table.

Use it after a load whose workers failed: the staging table is kept in that
case, and merging it applies whatever was staged. Existing target rows are
never updated.`,
	Example: `  bssimport merge bss:secret@localhost:5434/bss
  bssimport merge --table billing.subscriber_billings --staging-table billing.billings_retry`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMerge,
}

type mergeFlagValues struct {
	conn       connectionFlagValues
	tables     tableFlagValues
	configPath string
}

var mergeFlags mergeFlagValues

func init() {
	rootCmd.AddCommand(mergeCmd)

	addConnectionFlags(mergeCmd, &mergeFlags.conn)
	addTableFlags(mergeCmd, &mergeFlags.tables)
	addConfigFlag(mergeCmd, &mergeFlags.configPath)
}

// buildMergeRequest resolves connection and table names for merge.
func buildMergeRequest(args []string) (services.MergeRequest, error) {
	projectCfg, err := loadProjectConfig(mergeFlags.configPath)
	if err != nil {
		return services.MergeRequest{}, err
	}

	var positional string
	if len(args) > 0 {
		positional = args[0]
	}
	connConfig, err := resolveConnection(positional, mergeFlags.conn, projectCfg)
	if err != nil {
		return services.MergeRequest{}, err
	}

	return services.MergeRequest{
		Connection: connConfig,
		Tables:     resolveTables(mergeFlags.tables, projectCfg),
	}, nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger, _, err := newLogger(cmd, verbose)
	if err != nil {
		return err
	}

	req, err := buildMergeRequest(args)
	if err != nil {
		return err
	}
	logConnectionVerbose(logger, req.Connection)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, bssimport.DefaultTimeout)
	defer cancel()

	importer := services.NewImportService(db.NewConnector, manager.New(), logger)
	inserted, err := importer.Merge(ctx, req)
	if err != nil {
		return err
	}

	logger.Info("Done: %d new rows merged into %s", inserted, req.Tables.Target)
	return nil
}
