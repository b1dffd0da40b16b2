package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhatDave/BssPrepaidImporter/internal/db"
	"github.com/PhatDave/BssPrepaidImporter/internal/logging"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

func validRequest() ImportRequest {
	return ImportRequest{
		Config: bssimport.LoadConfig{
			Connection: &bssimport.ConnectionConfig{Host: "localhost", Port: 5432, Database: "bss", Username: "bss"},
			Workers:    4,
			BatchSize:  100,
		},
		Sources: []string{"prepaid_true.txt", "prepaid_false.txt"},
	}
}

func stubRecords(n int) RecordReader {
	return func(paths ...string) ([]bssimport.Record, error) {
		return make([]bssimport.Record, n), nil
	}
}

func TestNewImportService_PanicsOnNil(t *testing.T) {
	logger := logging.NewNullLogger()
	factory := factoryFor(&mockConnector{}, nil, nil)

	assert.Panics(t, func() { NewImportService(nil, nopTables{}, logger) })
	assert.Panics(t, func() { NewImportService(factory, nil, logger) })
	assert.Panics(t, func() { NewImportService(factory, nopTables{}, nil) })
}

func TestImport_InvalidConfig(t *testing.T) {
	svc := NewImportService(factoryFor(&mockConnector{}, nil, nil), nopTables{}, logging.NewNullLogger())
	req := validRequest()
	req.Config.BatchSize = bssimport.MaxBatchSize + 1

	res, err := svc.Import(context.Background(), req)

	assert.ErrorIs(t, err, bssimport.ErrInvalidConfig)
	assert.Equal(t, bssimport.ComponentConfig, res.Failed)
	assert.Equal(t, bssimport.ExitConfigError, bssimport.ExitCodeForError(err))
}

func TestImport_NoSources(t *testing.T) {
	svc := NewImportService(factoryFor(&mockConnector{}, nil, nil), nopTables{}, logging.NewNullLogger())
	req := validRequest()
	req.Sources = nil

	_, err := svc.Import(context.Background(), req)

	assert.ErrorIs(t, err, bssimport.ErrInvalidConfig)
}

func TestImport_UnreadableInput(t *testing.T) {
	svc := NewImportService(factoryFor(&mockConnector{}, nil, nil), nopTables{}, logging.NewNullLogger())
	svc.readRecords = func(paths ...string) ([]bssimport.Record, error) {
		return nil, errors.Join(errors.New("prepaid_true.txt:7: invalid flag"), bssimport.ErrInvalidConfig)
	}

	res, err := svc.Import(context.Background(), validRequest())

	assert.ErrorIs(t, err, bssimport.ErrInvalidConfig)
	assert.Equal(t, bssimport.ComponentConfig, res.Failed)
}

func TestImport_ConnectionFailure(t *testing.T) {
	var gotCfg *bssimport.ConnectionConfig
	var gotOpts db.PoolOptions
	connector := &mockConnector{err: errors.New("dial tcp: connection refused")}
	svc := NewImportService(factoryFor(connector, &gotCfg, &gotOpts), nopTables{}, logging.NewNullLogger())
	svc.readRecords = stubRecords(2)
	req := validRequest()
	req.RunID = bssimport.NewRunID()

	res, err := svc.Import(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, bssimport.ErrConnectionFailed)
	assert.Equal(t, bssimport.ExitConnectionError, bssimport.ExitCodeForError(err))
	assert.Equal(t, bssimport.ComponentConnect, res.Failed)
	assert.Equal(t, req.RunID, res.RunID)
	assert.True(t, connector.closed)

	// Pool is sized to the clamped worker count.
	assert.Equal(t, 2, gotOpts.MaxConns)
	assert.Equal(t, "bssimport/"+req.RunID.String()[:8], gotCfg.AppName)
	assert.Empty(t, req.Config.Connection.AppName, "caller config must not be modified")
}

func TestImport_ConnectorConfigError(t *testing.T) {
	factory := func(*bssimport.ConnectionConfig, db.PoolOptions) (bssimport.Connector, error) {
		return nil, bssimport.ErrUnsupportedAuthMethod
	}
	svc := NewImportService(factory, nopTables{}, logging.NewNullLogger())
	svc.readRecords = stubRecords(1)

	res, err := svc.Import(context.Background(), validRequest())

	assert.Equal(t, bssimport.ComponentConfig, res.Failed)
	assert.Equal(t, bssimport.ExitConfigError, bssimport.ExitCodeForError(err))
}

func TestMerge_ConnectionFailure(t *testing.T) {
	svc := NewImportService(factoryFor(&mockConnector{err: errors.New("connection refused")}, nil, nil), nopTables{}, logging.NewNullLogger())

	_, err := svc.Merge(context.Background(), MergeRequest{Connection: validRequest().Config.Connection})

	assert.ErrorIs(t, err, bssimport.ErrConnectionFailed)
}

func TestMerge_RequiresConnection(t *testing.T) {
	svc := NewImportService(factoryFor(&mockConnector{}, nil, nil), nopTables{}, logging.NewNullLogger())

	_, err := svc.Merge(context.Background(), MergeRequest{})

	assert.ErrorIs(t, err, bssimport.ErrInvalidConfig)
}
