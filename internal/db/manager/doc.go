// Package manager runs the table-level statements around a parallel load:
// checking that the target exists, dropping and recreating the staging
// table, and merging staging into the target.
//
// Table and column names go through pgx.Identifier.Sanitize(). A dotted
// name such as "billing.subscriber_billings" is treated as schema.table.
//
//	mgr := manager.New()
//	exists, err := mgr.TableExists(ctx, conn, "subscriber_billings")
//	err = mgr.DropTable(ctx, conn, "subscriber_billings_temp")
//	err = mgr.CreateTableLike(ctx, conn, "subscriber_billings_temp", "subscriber_billings")
//	n, err := mgr.InsertMissing(ctx, conn, "subscriber_billings", "subscriber_billings_temp", "msisdn", "prepaid")
package manager
