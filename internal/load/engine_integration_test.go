package load_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhatDave/BssPrepaidImporter/internal/db"
	"github.com/PhatDave/BssPrepaidImporter/internal/db/manager"
	"github.com/PhatDave/BssPrepaidImporter/internal/load"
	"github.com/PhatDave/BssPrepaidImporter/internal/logging"
	testhelpers "github.com/PhatDave/BssPrepaidImporter/internal/testing"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

func runEngine(t *testing.T, pool *db.PoolAdapter, table string, workers, batch int, records []bssimport.Record) (*bssimport.LoadResult, error) {
	t.Helper()
	engine := load.NewEngine(pool, manager.New(), logging.NewNullLogger(), load.Options{
		Tables:    bssimport.TableSpec{Target: table},
		Workers:   workers,
		BatchSize: batch,
		RunID:     bssimport.NewRunID(),
	})
	return engine.Run(context.Background(), records)
}

func TestEngine_Integration_Scenario(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	pgPool := testhelpers.NewTestPool(t, connString)
	table := testhelpers.CreateTargetTable(t, pgPool)

	records := []bssimport.Record{
		{Identifier: "38591000001", Flag: true},
		{Identifier: "38591000002", Flag: true},
		{Identifier: "38591000003", Flag: false},
	}

	res, err := runEngine(t, db.NewPoolAdapter(pgPool), table, 1, 2, records)

	require.NoError(t, err)
	assert.Equal(t, bssimport.StateDone, res.State)
	assert.Equal(t, int64(3), res.Inserted)
	assert.Equal(t, map[string]bool{
		"38591000001": true,
		"38591000002": true,
		"38591000003": false,
	}, testhelpers.ReadTable(t, pgPool, table))
	assert.False(t, testhelpers.TableExists(t, pgPool, table+"_temp"), "staging table must be dropped")
}

func TestEngine_Integration_IdempotentRerun(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	pgPool := testhelpers.NewTestPool(t, connString)
	table := testhelpers.CreateTargetTable(t, pgPool)
	adapter := db.NewPoolAdapter(pgPool)

	records := make([]bssimport.Record, 1000)
	for i := range records {
		records[i] = bssimport.Record{Identifier: fmt.Sprintf("3859%07d", i), Flag: i%3 == 0}
	}

	first, err := runEngine(t, adapter, table, 4, 64, records)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), first.Inserted)
	before := testhelpers.ReadTable(t, pgPool, table)

	// Second run flips every flag; existing rows must not be updated.
	flipped := make([]bssimport.Record, len(records))
	for i, r := range records {
		flipped[i] = bssimport.Record{Identifier: r.Identifier, Flag: !r.Flag}
	}
	second, err := runEngine(t, adapter, table, 3, 100, flipped)
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.Equal(t, before, testhelpers.ReadTable(t, pgPool, table))
}

func TestEngine_Integration_DuplicateKeysInStaging(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	pgPool := testhelpers.NewTestPool(t, connString)
	table := testhelpers.CreateTargetTable(t, pgPool)

	records := []bssimport.Record{
		{Identifier: "38591000001", Flag: true},
		{Identifier: "38591000002", Flag: false},
		{Identifier: "38591000001", Flag: false},
		{Identifier: "38591000002", Flag: true},
	}

	res, err := runEngine(t, db.NewPoolAdapter(pgPool), table, 2, 1, records)

	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Inserted)
	assert.Len(t, testhelpers.ReadTable(t, pgPool, table), 2)
}

func TestEngine_Integration_WorkerFailureRetainsStaging(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	pgPool := testhelpers.NewTestPool(t, connString)
	table := testhelpers.CreateTargetTable(t, pgPool)

	// varchar(20) rejects the oversized identifier in the second chunk.
	records := []bssimport.Record{
		{Identifier: "38591000001", Flag: true},
		{Identifier: "38591000002", Flag: true},
		{Identifier: "385910000030000000000000", Flag: false},
		{Identifier: "38591000004", Flag: false},
	}

	res, err := runEngine(t, db.NewPoolAdapter(pgPool), table, 2, 2, records)

	require.Error(t, err)
	assert.ErrorIs(t, err, bssimport.ErrLoadFailed)
	assert.True(t, res.Workers[0].Succeeded())
	assert.False(t, res.Workers[1].Succeeded())
	assert.Empty(t, testhelpers.ReadTable(t, pgPool, table))
	assert.True(t, testhelpers.TableExists(t, pgPool, table+"_temp"), "staging table must be retained")
	assert.Len(t, testhelpers.ReadTable(t, pgPool, table+"_temp"), 2)
}

func TestEngine_Integration_MissingTarget(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	pgPool := testhelpers.NewTestPool(t, connString)

	_, err := runEngine(t, db.NewPoolAdapter(pgPool), "no_such_table", 1, 1, nil)

	assert.ErrorIs(t, err, bssimport.ErrInvalidConfig)
}
