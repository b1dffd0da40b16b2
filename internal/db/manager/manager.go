package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

const queryTableExists = "SELECT to_regclass($1) IS NOT NULL"

// Manager implements bssimport.TableManager. It is stateless.
type Manager struct{}

// New creates a new table manager.
func New() *Manager {
	return &Manager{}
}

// QuoteTable quotes a possibly schema-qualified table name.
func QuoteTable(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

// QuoteColumn quotes a single column name.
func QuoteColumn(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (m *Manager) TableExists(ctx context.Context, conn bssimport.PooledConnection, table string) (bool, error) {
	var exists bool
	if err := conn.QueryRow(ctx, queryTableExists, QuoteTable(table)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to look up table %q: %w", table, err)
	}
	return exists, nil
}

func (m *Manager) DropTable(ctx context.Context, conn bssimport.PooledConnection, table string) error {
	if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS "+QuoteTable(table)); err != nil {
		return fmt.Errorf("failed to drop table %q: %w", table, err)
	}
	return nil
}

// CreateTableLike copies the column layout of source. CREATE TABLE AS
// carries no constraints or indexes, so duplicate keys are accepted.
func (m *Manager) CreateTableLike(ctx context.Context, conn bssimport.PooledConnection, table, source string) error {
	query := fmt.Sprintf("CREATE TABLE %s AS TABLE %s WITH NO DATA", QuoteTable(table), QuoteTable(source))
	if _, err := conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %q like %q: %w", table, source, err)
	}
	return nil
}

// InsertMissing never updates existing rows. Duplicate keys inside src
// resolve to whichever row the server inserts first.
func (m *Manager) InsertMissing(ctx context.Context, conn bssimport.PooledConnection, dst, src, keyColumn, flagColumn string) (int64, error) {
	tag, err := conn.Exec(ctx, MergeSQL(dst, src, keyColumn, flagColumn))
	if err != nil {
		return 0, fmt.Errorf("failed to merge %q into %q: %w", src, dst, err)
	}
	return tag.RowsAffected(), nil
}

// MergeSQL renders the insert-or-skip statement used by InsertMissing.
func MergeSQL(dst, src, keyColumn, flagColumn string) string {
	key, flag := QuoteColumn(keyColumn), QuoteColumn(flagColumn)
	return fmt.Sprintf(
		"INSERT INTO %s (%s, %s) SELECT %s, %s FROM %s ON CONFLICT (%s) DO NOTHING",
		QuoteTable(dst), key, flag, key, flag, QuoteTable(src), key,
	)
}

var _ bssimport.TableManager = (*Manager)(nil)
