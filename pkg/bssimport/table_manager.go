package bssimport

import "context"

// TableManager runs the DDL and DML that surround the parallel load.
// Every method runs on the connection it is given, never on a worker's.
type TableManager interface {
	// TableExists reports whether the named (optionally schema-qualified) table exists.
	TableExists(ctx context.Context, conn PooledConnection, table string) (bool, error)

	// DropTable drops the table if it exists.
	DropTable(ctx context.Context, conn PooledConnection, table string) error

	// CreateTableLike creates an empty table with the columns of source and
	// none of its constraints.
	CreateTableLike(ctx context.Context, conn PooledConnection, table, source string) error

	// InsertMissing copies rows of src into dst, skipping rows whose key
	// already exists in dst. It returns the number of inserted rows.
	InsertMissing(ctx context.Context, conn PooledConnection, dst, src, keyColumn, flagColumn string) (int64, error)
}
