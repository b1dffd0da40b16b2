package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// GoogleCloudSQLConnector dials Cloud SQL through the Cloud SQL Go
// connector with IAM database authentication.
//
// Close must be called after the returned pool is closed.
type GoogleCloudSQLConnector struct {
	config *bssimport.ConnectionConfig
	opts   PoolOptions
	dialer *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLConnector uses config.GoogleInstance as the instance
// connection name.
func NewGoogleCloudSQLConnector(config *bssimport.ConnectionConfig, opts PoolOptions) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{config: config, opts: opts}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
	}

	dsn := fmt.Sprintf("user=%s dbname=%s sslmode=disable", c.config.Username, c.config.Database)
	if c.config.AppName != "" {
		dsn += " application_name=" + c.config.AppName
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	instance := c.config.GoogleInstance
	poolConfig.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, instance)
	}
	configurePool(poolConfig, c.opts)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", instance, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		dialer.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", instance, err)
	}

	c.dialer = dialer
	return pool, nil
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer != nil {
		c.dialer.Close()
		c.dialer = nil
	}
	return nil
}

var _ bssimport.Connector = (*GoogleCloudSQLConnector)(nil)
