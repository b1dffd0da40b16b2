package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PhatDave/BssPrepaidImporter/internal/retry"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// StandardConnector connects with username and password, retrying
// transient failures during pool setup.
type StandardConnector struct {
	config   *bssimport.ConnectionConfig
	opts     PoolOptions
	executor *retry.Executor
}

// NewStandardConnector creates a connector for password authentication.
func NewStandardConnector(config *bssimport.ConnectionConfig, opts PoolOptions) *StandardConnector {
	return &StandardConnector{
		config:   config,
		opts:     opts,
		executor: newConnectExecutor(opts.Logger),
	}
}

func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	connStr := BuildConnectionString(c.config)

	var pool *pgxpool.Pool
	err := c.executor.Execute(ctx, func(ctx context.Context) error {
		p, err := openPool(ctx, connStr, c.config, c.opts)
		if err != nil {
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewConnector returns the connector for cfg.AuthMethod.
func NewConnector(cfg *bssimport.ConnectionConfig, opts PoolOptions) (bssimport.Connector, error) {
	switch cfg.AuthMethod {
	case bssimport.AuthMethodStandard:
		return NewStandardConnector(cfg, opts), nil
	case bssimport.AuthMethodAWSIAM:
		provider, err := NewAWSIAMTokenProvider(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), cfg.AWSRegion, cfg.Username)
		if err != nil {
			return nil, err
		}
		return NewTokenConnector(cfg, provider, opts), nil
	case bssimport.AuthMethodAzureEntraID:
		provider, err := newAzureProvider(cfg)
		if err != nil {
			return nil, err
		}
		return NewTokenConnector(cfg, provider, opts), nil
	case bssimport.AuthMethodGoogleIAM:
		if cfg.GoogleInstance == "" {
			return nil, fmt.Errorf("google IAM auth requires --google-instance (project:region:instance): %w", bssimport.ErrInvalidConfig)
		}
		if cfg.Username == "" {
			return nil, fmt.Errorf("google IAM auth requires a database user: %w", bssimport.ErrInvalidConfig)
		}
		return NewGoogleCloudSQLConnector(cfg, opts), nil
	}
	return nil, fmt.Errorf("auth method %v: %w", cfg.AuthMethod, bssimport.ErrUnsupportedAuthMethod)
}

func newConnectExecutor(logger bssimport.Logger) *retry.Executor {
	strategy := retry.NewExponentialBackoff(bssimport.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(bssimport.DefaultRetryInitialDelay),
		retry.WithMaxDelay(bssimport.DefaultRetryMaxDelay),
	)
	exec := retry.NewExecutor(retry.NewConnectClassifier(), strategy)
	if logger == nil {
		return exec
	}
	return exec.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Verbose("connect attempt %d failed, retrying in %v: %v", attempt+1, delay.Round(time.Millisecond), err)
	})
}

// openPool creates and pings a pool. The pool is closed on failure.
func openPool(ctx context.Context, connStr string, cfg *bssimport.ConnectionConfig, opts PoolOptions) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", bssimport.ErrInvalidConfig)
	}
	configurePool(poolConfig, opts)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, cfg)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, cfg)
	}
	return pool, nil
}

// wrapConnectionError adds a hint for the common failure causes.
func wrapConnectionError(err error, cfg *bssimport.ConnectionConfig) error {
	msg := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var hint string
	switch {
	case strings.Contains(msg, "connection refused"):
		hint = fmt.Sprintf("nothing is listening on %s (check: pg_isready -h %s -p %d)", addr, cfg.Host, cfg.Port)
	case strings.Contains(msg, "no such host"):
		hint = fmt.Sprintf("cannot resolve host %q", cfg.Host)
	case strings.Contains(msg, "password authentication failed"):
		hint = fmt.Sprintf("wrong user or password for %q", cfg.Username)
	case strings.Contains(msg, "does not exist"):
		hint = fmt.Sprintf("database %q or role %q does not exist", cfg.Database, cfg.Username)
	case strings.Contains(msg, "too many connections"):
		hint = "server max_connections reached; lower --workers"
	case strings.Contains(msg, "timeout"):
		hint = fmt.Sprintf("connection to %s timed out", addr)
	}

	if hint == "" {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return fmt.Errorf("failed to connect to %s: %s: %w", addr, hint, err)
}
