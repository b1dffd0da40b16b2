package bssimport

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Import completed and merged
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration, arguments or input files
	ExitConnectionError = 11 // Failed to connect to database
	ExitStagingFailed   = 12 // Staging table could not be reset
	ExitLoadFailed      = 13 // One or more workers failed to stage their chunk
	ExitMergeFailed     = 14 // Merge into the target table failed
)

const (
	// DefaultTargetTable is the permanent table receiving subscriber billings.
	DefaultTargetTable = "subscriber_billings"

	// DefaultKeyColumn is the unique identifier column of the target table.
	DefaultKeyColumn = "msisdn"

	// DefaultFlagColumn is the boolean column of the target table.
	DefaultFlagColumn = "prepaid"

	// StagingSuffix is appended to the target table name when no staging
	// table is configured explicitly.
	StagingSuffix = "_temp"

	// DefaultWorkers and DefaultBatchSize apply when nothing is configured.
	DefaultWorkers   = 1
	DefaultBatchSize = 1

	// RecommendedMaxBatchSize is printed in usage text. Larger batches work
	// but make every failed statement more expensive.
	RecommendedMaxBatchSize = 16384

	// MaxBindParameters is PostgreSQL's limit of bind parameters per statement.
	MaxBindParameters = 65535

	// ColumnsPerRecord is the number of bind parameters each staged record uses.
	ColumnsPerRecord = 2

	// MaxBatchSize is the largest batch a single multi-row INSERT can carry.
	MaxBatchSize = MaxBindParameters / ColumnsPerRecord

	// DefaultProgressBuffer bounds the progress channel. Events beyond it are dropped.
	DefaultProgressBuffer = 256

	// DefaultProgressInterval throttles non-interactive progress log lines.
	DefaultProgressInterval = 2 * time.Second

	// DefaultTimeout protects against hangs; a full load can legitimately take long.
	DefaultTimeout = 2 * time.Hour

	// DefaultRetryInitialDelay is the default initial delay before the first
	// connection retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between connection retries.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of connection retries.
	DefaultRetryMaxAttempts = 3

	// DefaultPort is used for URI connection strings without a port.
	DefaultPort = 5432

	// ApplicationName identifies import sessions in pg_stat_activity.
	ApplicationName = "bssimport"
)
