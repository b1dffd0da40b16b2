package load

import (
	"context"
	"fmt"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// Merge copies staged rows whose key is not yet in the target, then drops
// the staging table. It returns the number of inserted rows. Existing
// target rows are never updated, so running it twice is harmless.
//
// If the insert fails the staging table is left in place for a later
// retry.
func Merge(ctx context.Context, pool bssimport.DBConnection, mgr bssimport.TableManager, tables bssimport.TableSpec) (int64, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	exists, err := mgr.TableExists(ctx, conn, tables.Staging)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("staging table %q does not exist: %w", tables.Staging, bssimport.ErrInvalidConfig)
	}

	inserted, err := mgr.InsertMissing(ctx, conn, tables.Target, tables.Staging, tables.KeyColumn, tables.FlagColumn)
	if err != nil {
		return 0, err
	}

	if err := mgr.DropTable(ctx, conn, tables.Staging); err != nil {
		return inserted, fmt.Errorf("merged %d rows but %w", inserted, err)
	}
	return inserted, nil
}
