package db

import (
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// DefaultMaxConnIdleTime keeps worker connections open across slow batches.
const DefaultMaxConnIdleTime = 30 * time.Minute

// PoolOptions sizes and instruments the connection pool.
type PoolOptions struct {
	// MaxConns should equal the worker count. Staging and merge run before
	// and after the workers, never alongside them.
	MaxConns int

	// Logger receives server notices at verbose level. Optional.
	Logger bssimport.Logger
}

func configurePool(poolConfig *pgxpool.Config, opts PoolOptions) {
	maxConns := opts.MaxConns
	if maxConns < 1 {
		maxConns = 1
	}
	poolConfig.MaxConns = int32(maxConns)
	poolConfig.MinConns = 0
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime

	if opts.Logger != nil {
		logger := opts.Logger
		poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, n *pgconn.Notice) {
			logger.Verbose("postgres %s: %s", n.Severity, n.Message)
		}
	}
}
