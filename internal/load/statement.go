package load

import (
	"strconv"
	"strings"

	"github.com/PhatDave/BssPrepaidImporter/internal/db/manager"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// insertStatement renders parameterized multi-row INSERTs into staging.
// The SQL for a full batch is built once and reused.
type insertStatement struct {
	prefix    string
	batchSize int
	full      string
}

func newInsertStatement(tables bssimport.TableSpec, batchSize int) *insertStatement {
	s := &insertStatement{
		prefix: "INSERT INTO " + manager.QuoteTable(tables.Staging) +
			" (" + manager.QuoteColumn(tables.KeyColumn) + ", " + manager.QuoteColumn(tables.FlagColumn) + ") VALUES ",
		batchSize: batchSize,
	}
	s.full = s.sql(batchSize)
	return s
}

// sql returns the statement for n rows: VALUES ($1, $2), ($3, $4), ...
func (s *insertStatement) sql(n int) string {
	var b strings.Builder
	b.Grow(len(s.prefix) + n*16)
	b.WriteString(s.prefix)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		p := i*bssimport.ColumnsPerRecord + 1
		b.WriteString("($")
		b.WriteString(strconv.Itoa(p))
		b.WriteString(", $")
		b.WriteString(strconv.Itoa(p + 1))
		b.WriteByte(')')
	}
	return b.String()
}

// build returns the SQL and arguments for batch.
func (s *insertStatement) build(batch []bssimport.Record) (string, []any) {
	args := make([]any, 0, len(batch)*bssimport.ColumnsPerRecord)
	for _, r := range batch {
		args = append(args, r.Identifier, r.Flag)
	}
	if len(batch) == s.batchSize {
		return s.full, args
	}
	return s.sql(len(batch)), args
}
