package testing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PhatDave/BssPrepaidImporter/internal/db"
	"github.com/PhatDave/BssPrepaidImporter/internal/db/manager"
	"github.com/PhatDave/BssPrepaidImporter/internal/testinfra"
)

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		container, err := testinfra.StartPostgres(context.Background())
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: BSSIMPORT_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv("BSSIMPORT_TEST_CONN"); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("BSSIMPORT_TEST_CONN not set and Docker unavailable: %v", err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// NewTestPool opens a pool on connString, closed when the test completes.
func NewTestPool(t *testing.T, connString string) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// CreateTargetTable creates a uniquely named subscriber billings table in
// the public schema and drops it (and its staging twin) after the test.
// It returns the table name.
func CreateTargetTable(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	name := "billings_" + uuid.NewString()[:8]
	ddl := fmt.Sprintf(`CREATE TABLE %s (
		msisdn  varchar(20) PRIMARY KEY,
		prepaid boolean NOT NULL
	)`, manager.QuoteTable(name))

	ctx := context.Background()
	if _, err := pool.Exec(ctx, ddl); err != nil {
		t.Fatalf("Failed to create table %s: %v", name, err)
	}

	t.Cleanup(func() {
		for _, table := range []string{name + "_temp", name} {
			if _, err := pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+manager.QuoteTable(table)); err != nil {
				t.Logf("Warning: Failed to drop %s: %v", table, err)
			}
		}
	})
	return name
}

// ReadTable returns the target table as msisdn -> prepaid.
func ReadTable(t *testing.T, pool *pgxpool.Pool, table string) map[string]bool {
	t.Helper()

	rows, err := pool.Query(context.Background(), "SELECT msisdn, prepaid FROM "+manager.QuoteTable(table))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", table, err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var id string
		var flag bool
		if err := rows.Scan(&id, &flag); err != nil {
			t.Fatalf("Failed to scan %s: %v", table, err)
		}
		out[id] = flag
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("Failed to read %s: %v", table, err)
	}
	return out
}

// TableExists reports whether table exists.
func TableExists(t *testing.T, pool *pgxpool.Pool, table string) bool {
	t.Helper()

	var exists bool
	if err := pool.QueryRow(context.Background(), "SELECT to_regclass($1) IS NOT NULL", manager.QuoteTable(table)).Scan(&exists); err != nil {
		t.Fatalf("Failed to check %s: %v", table, err)
	}
	return exists
}

// Descriptor converts a URI into the short user:password@host:port/database form.
func Descriptor(t *testing.T, connString string) string {
	t.Helper()

	cfg, err := db.ParseDescriptor(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	return fmt.Sprintf("%s:%s@%s:%d/%s", cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
}
