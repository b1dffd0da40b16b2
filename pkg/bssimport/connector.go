package bssimport

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector establishes the connection pool shared by the staging manager,
// the workers and the merge coordinator. Implementations differ by
// authentication method.
type Connector interface {
	// Connect establishes a connection pool to the database.
	// The returned pool should be closed by the caller when done.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}
