package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PhatDave/BssPrepaidImporter/internal/retry"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// TokenProvider issues short-lived passwords for cloud IAM authentication.
type TokenProvider interface {
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider without secrets.
	String() string
}

// TokenConnector uses a fresh token as the password of every connection
// attempt. Tokens only need to be valid at connect time; established
// connections outlive them.
type TokenConnector struct {
	config   *bssimport.ConnectionConfig
	provider TokenProvider
	opts     PoolOptions
	executor *retry.Executor
}

// NewTokenConnector returns a connector authenticating through provider.
func NewTokenConnector(config *bssimport.ConnectionConfig, provider TokenProvider, opts PoolOptions) *TokenConnector {
	return &TokenConnector{
		config:   config,
		provider: provider,
		opts:     opts,
		executor: newConnectExecutor(opts.Logger),
	}
}

func (c *TokenConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := c.executor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.provider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire token from %s: %w", c.provider, err)
		}
		if c.opts.Logger != nil {
			c.opts.Logger.Verbose("acquired token from %s, expires in %v", c.provider, time.Until(expiresOn).Round(time.Second))
		}

		withToken := *c.config
		withToken.Password = token
		if withToken.SSLMode == "" {
			withToken.SSLMode = "require"
		}

		p, err := openPool(ctx, BuildConnectionString(&withToken), c.config, c.opts)
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
