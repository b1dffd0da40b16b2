package load

import (
	"context"
	"fmt"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// ResetStaging checks that the target exists, then drops and recreates the
// staging table with the target's columns. It runs on one dedicated
// connection before any worker starts.
func ResetStaging(ctx context.Context, pool bssimport.DBConnection, mgr bssimport.TableManager, tables bssimport.TableSpec) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	exists, err := mgr.TableExists(ctx, conn, tables.Target)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("target table %q does not exist: %w", tables.Target, bssimport.ErrInvalidConfig)
	}

	if err := mgr.DropTable(ctx, conn, tables.Staging); err != nil {
		return err
	}
	return mgr.CreateTableLike(ctx, conn, tables.Staging, tables.Target)
}
