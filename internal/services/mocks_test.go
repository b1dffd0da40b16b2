package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PhatDave/BssPrepaidImporter/internal/db"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

type mockConnector struct {
	pool   *pgxpool.Pool
	err    error
	closed bool
}

func (m *mockConnector) Connect(_ context.Context) (*pgxpool.Pool, error) {
	return m.pool, m.err
}

func (m *mockConnector) Close() error {
	m.closed = true
	return nil
}

// factoryFor returns a ConnectorFactory that hands out c and records what
// it was asked for.
func factoryFor(c *mockConnector, gotConfig **bssimport.ConnectionConfig, gotOpts *db.PoolOptions) ConnectorFactory {
	return func(cfg *bssimport.ConnectionConfig, opts db.PoolOptions) (bssimport.Connector, error) {
		if gotConfig != nil {
			*gotConfig = cfg
		}
		if gotOpts != nil {
			*gotOpts = opts
		}
		return c, nil
	}
}

type nopTables struct{}

func (nopTables) TableExists(context.Context, bssimport.PooledConnection, string) (bool, error) {
	return false, errors.New("not implemented")
}
func (nopTables) DropTable(context.Context, bssimport.PooledConnection, string) error { return nil }
func (nopTables) CreateTableLike(context.Context, bssimport.PooledConnection, string, string) error {
	return nil
}
func (nopTables) InsertMissing(context.Context, bssimport.PooledConnection, string, string, string, string) (int64, error) {
	return 0, nil
}
