package load

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// mockPool is a test double for bssimport.DBConnection. Every Exec on an
// acquired connection is recorded.
type mockPool struct {
	mu         sync.Mutex
	execs      []execCall
	acquired   int
	released   int
	execFunc   func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	acquireErr error
}

type execCall struct {
	sql  string
	args []any
}

func (m *mockPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return m.connExec(ctx, sql, args...)
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) bssimport.Row {
	return &mockRow{}
}

func (m *mockPool) Acquire(ctx context.Context) (bssimport.PooledConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acquireErr != nil {
		return nil, m.acquireErr
	}
	m.acquired++
	return &mockConn{pool: m}, nil
}

func (m *mockPool) connExec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.mu.Lock()
	m.execs = append(m.execs, execCall{sql: sql, args: args})
	fn := m.execFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, sql, args...)
	}
	return pgconn.NewCommandTag("INSERT 0 0"), nil
}

func (m *mockPool) stagedIdentifiers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, c := range m.execs {
		for i := 0; i < len(c.args); i += 2 {
			ids = append(ids, c.args[i].(string))
		}
	}
	return ids
}

type mockConn struct {
	pool *mockPool
}

func (c *mockConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.pool.connExec(ctx, sql, args...)
}

func (c *mockConn) QueryRow(ctx context.Context, sql string, args ...any) bssimport.Row {
	return &mockRow{}
}

func (c *mockConn) Release() {
	c.pool.mu.Lock()
	c.pool.released++
	c.pool.mu.Unlock()
}

type mockRow struct{}

func (r *mockRow) Scan(dest ...any) error { return nil }

// fakeTables is a test double for bssimport.TableManager.
type fakeTables struct {
	mu       sync.Mutex
	calls    []string
	exists   map[string]bool
	inserted int64

	dropErr   error
	createErr error
	mergeErr  error
}

func newFakeTables(existing ...string) *fakeTables {
	f := &fakeTables{exists: map[string]bool{}}
	for _, t := range existing {
		f.exists[t] = true
	}
	return f
}

func (f *fakeTables) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeTables) TableExists(ctx context.Context, conn bssimport.PooledConnection, table string) (bool, error) {
	f.record("exists " + table)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exists[table], nil
}

func (f *fakeTables) DropTable(ctx context.Context, conn bssimport.PooledConnection, table string) error {
	f.record("drop " + table)
	if f.dropErr != nil {
		return f.dropErr
	}
	f.mu.Lock()
	delete(f.exists, table)
	f.mu.Unlock()
	return nil
}

func (f *fakeTables) CreateTableLike(ctx context.Context, conn bssimport.PooledConnection, table, source string) error {
	f.record("create " + table + " like " + source)
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	f.exists[table] = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTables) InsertMissing(ctx context.Context, conn bssimport.PooledConnection, dst, src, keyColumn, flagColumn string) (int64, error) {
	f.record("merge " + src + " into " + dst)
	if f.mergeErr != nil {
		return 0, f.mergeErr
	}
	return f.inserted, nil
}

// recordingObserver collects observer callbacks.
type recordingObserver struct {
	mu       sync.Mutex
	updates  int
	finished bssimport.ProgressSnapshot
}

func (o *recordingObserver) OnProgress(bssimport.ProgressSnapshot) {
	o.mu.Lock()
	o.updates++
	o.mu.Unlock()
}

func (o *recordingObserver) OnFinish(s bssimport.ProgressSnapshot) {
	o.mu.Lock()
	o.finished = s
	o.mu.Unlock()
}

func makeRecords(n int) []bssimport.Record {
	recs := make([]bssimport.Record, n)
	for i := range recs {
		recs[i] = bssimport.Record{Identifier: fmt.Sprintf("38591%06d", i), Flag: i%2 == 0}
	}
	return recs
}
