package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PhatDave/BssPrepaidImporter/internal/db"
	"github.com/PhatDave/BssPrepaidImporter/internal/db/manager"
	"github.com/PhatDave/BssPrepaidImporter/internal/logging"
	"github.com/PhatDave/BssPrepaidImporter/internal/services"
	"github.com/PhatDave/BssPrepaidImporter/internal/tui"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// interactiveProgressInterval is the redraw period of the terminal progress view.
const interactiveProgressInterval = 100 * time.Millisecond

var loadCmd = &cobra.Command{
	Use:   "load TRUE_FILE FALSE_FILE [CONNECTION] [WORKERS] [BATCH_SIZE]",
	Short: "Load prepaid flags from two files into the billing table",
	Long: `Load reads MSISDNs from two files and upserts their prepaid flag.

The load command:
1. Reads TRUE_FILE (prepaid = true) and FALSE_FILE (prepaid = false)
2. Recreates the staging table from the target table's definition
3. Splits the records across WORKERS parallel workers, each inserting
   BATCH_SIZE rows per statement into the staging table
4. Waits for every worker, then inserts the staged rows the target table
   does not have yet and drops the staging table

Arguments:
  TRUE_FILE     Records flagged prepaid. One header line, then msisdn,flag lines
  FALSE_FILE    Records flagged postpaid. Same format
  CONNECTION    user:password@host:port/database, e.g. bss:secret@localhost:5434/bss
                A postgres:// URI is accepted as well
  WORKERS       Number of parallel workers (default 1)
  BATCH_SIZE    Rows per INSERT statement (default 1, recommended < 16k,
                at most 32767)

Settings are resolved in order: arguments and flags, environment
($BSSIMPORT_CONNECTION, $BSSIMPORT_WORKERS, $BSSIMPORT_BATCH_SIZE),
bssimport.yaml in the working directory, then defaults. A .env file in the
working directory is loaded into the environment first.

If a worker fails, the merge is skipped and the staging table is kept for
inspection (--merge-policy on-success). Use 'bssimport merge' to merge it
later, or --merge-policy always to merge whatever was staged.`,
	Example: `  # Load with 8 workers and 4096 rows per statement
  bssimport load true.csv false.csv bss:secret@localhost:5434/bss 8 4096

  # Connection from the environment
  BSSIMPORT_CONNECTION=bss:secret@db:5432/bss bssimport load true.csv false.csv

  # Different target table
  bssimport load true.csv false.csv --connection bss:secret@db:5432/bss \
    --table billing.subscriber_billings --workers 4 --batch-size 8192`,
	Args: RequireInputFiles,
	RunE: runLoad,
}

type loadFlagValues struct {
	conn        connectionFlagValues
	tables      tableFlagValues
	workers     int
	batchSize   int
	mergePolicy string
	timeout     time.Duration
	configPath  string
}

var loadFlags loadFlagValues

func init() {
	rootCmd.AddCommand(loadCmd)

	addConnectionFlags(loadCmd, &loadFlags.conn)
	addTableFlags(loadCmd, &loadFlags.tables)

	loadCmd.Flags().IntVarP(&loadFlags.workers, "workers", "w", 0,
		"Number of parallel workers (default 1)\n"+
			"Clamped to the number of records")
	loadCmd.Flags().IntVarP(&loadFlags.batchSize, "batch-size", "b", 0,
		fmt.Sprintf("Rows per INSERT statement (default 1, recommended < 16k, max %d)", bssimport.MaxBatchSize))
	loadCmd.Flags().StringVar(&loadFlags.mergePolicy, "merge-policy", "",
		"What to do after a worker failure: on-success|always (default on-success)\n"+
			"on-success skips the merge and keeps the staging table")
	loadCmd.Flags().DurationVar(&loadFlags.timeout, "timeout", 0,
		"Overall timeout for the job (default 2h)\n"+
			"Examples: 30m, 1h30m")
	addConfigFlag(loadCmd, &loadFlags.configPath)
}

func addTableFlags(cmd *cobra.Command, f *tableFlagValues) {
	cmd.Flags().StringVar(&f.target, "table", "",
		"Target table, optionally schema-qualified (default "+bssimport.DefaultTargetTable+")")
	cmd.Flags().StringVar(&f.staging, "staging-table", "",
		"Staging table (default: target table name + "+bssimport.StagingSuffix+")")
	cmd.Flags().StringVar(&f.keyColumn, "key-column", "",
		"Unique key column of the target table (default "+bssimport.DefaultKeyColumn+")")
	cmd.Flags().StringVar(&f.flagColumn, "flag-column", "",
		"Boolean flag column of the target table (default "+bssimport.DefaultFlagColumn+")")
}

func addConfigFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVar(path, "config", "",
		"Path to a config file (default: ./bssimport.yaml if present)")
}

// buildLoadConfig resolves the job configuration from arguments, flags,
// environment and bssimport.yaml.
func buildLoadConfig(args []string, verbose bool) (bssimport.LoadConfig, error) {
	projectCfg, err := loadProjectConfig(loadFlags.configPath)
	if err != nil {
		return bssimport.LoadConfig{}, err
	}

	positional := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	connConfig, err := resolveConnection(positional(2), loadFlags.conn, projectCfg)
	if err != nil {
		return bssimport.LoadConfig{}, err
	}

	var fileWorkers, fileBatch int
	var filePolicy string
	if projectCfg != nil {
		fileWorkers, fileBatch, filePolicy = projectCfg.Workers, projectCfg.BatchSize, projectCfg.MergePolicy
	}

	workers, err := resolveCount("workers", positional(3), loadFlags.workers, envWorkers, fileWorkers, bssimport.DefaultWorkers)
	if err != nil {
		return bssimport.LoadConfig{}, err
	}
	batchSize, err := resolveCount("batch size", positional(4), loadFlags.batchSize, envBatchSize, fileBatch, bssimport.DefaultBatchSize)
	if err != nil {
		return bssimport.LoadConfig{}, err
	}

	policy, err := bssimport.ParseMergePolicy(firstNonEmpty(loadFlags.mergePolicy, filePolicy))
	if err != nil {
		return bssimport.LoadConfig{}, err
	}

	timeout, err := resolveEffectiveTimeout(loadFlags.timeout, projectCfg)
	if err != nil {
		return bssimport.LoadConfig{}, err
	}

	cfg := bssimport.LoadConfig{
		Connection:  connConfig,
		Tables:      resolveTables(loadFlags.tables, projectCfg),
		Workers:     workers,
		BatchSize:   batchSize,
		MergePolicy: policy,
		Timeout:     timeout,
		Verbose:     verbose,
	}
	return cfg, cfg.Validate()
}

func runLoad(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger, format, err := newLogger(cmd, verbose)
	if err != nil {
		return err
	}

	cfg, err := buildLoadConfig(args, verbose)
	if err != nil {
		return err
	}
	logConnectionVerbose(logger, cfg.Connection)
	if cfg.BatchSize > bssimport.RecommendedMaxBatchSize {
		logger.Info("Batch size %d is above the recommended %d", cfg.BatchSize, bssimport.RecommendedMaxBatchSize)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req := services.ImportRequest{
		Config:  cfg,
		Sources: args[:2],
	}
	if format == logging.FormatText && tui.IsInteractive() {
		view := tui.NewProgressView(os.Stderr, "Staging records")
		view.Start()
		defer func() { _ = view.Stop() }()
		req.Observers = append(req.Observers, view)
		req.ProgressInterval = interactiveProgressInterval
	} else {
		req.Observers = append(req.Observers, tui.NewLogObserver(logger))
	}

	importer := services.NewImportService(db.NewConnector, manager.New(), logger)
	result, err := importer.Import(ctx, req)
	if err != nil {
		printLoadFailure(result, cfg)
		return err
	}

	logger.Info("Done: %d records staged, %d new rows merged in %s",
		result.Staged(), result.Inserted, result.Duration.Round(time.Millisecond))
	return nil
}

// printLoadFailure tells the operator what was left behind.
func printLoadFailure(result *bssimport.LoadResult, cfg bssimport.LoadConfig) {
	if result == nil {
		return
	}
	switch {
	case result.Failed == bssimport.ComponentLoad && !result.Merged:
		fmt.Fprintln(os.Stderr, tui.Warning("Staging table %s retained with %d of %d records; run 'bssimport merge' to merge it",
			cfg.Tables.Staging, result.Staged(), result.Records))
	case result.Failed == bssimport.ComponentLoad:
		fmt.Fprintln(os.Stderr, tui.Warning("Merged %d new rows, but %d of %d records were not staged",
			result.Inserted, result.Records-result.Staged(), result.Records))
	case result.Failed == bssimport.ComponentMerge:
		fmt.Fprintln(os.Stderr, tui.Warning("Staging table %s may still exist; run 'bssimport merge' to retry", cfg.Tables.Staging))
	}
}
