package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PhatDave/BssPrepaidImporter/internal/db"
	"github.com/PhatDave/BssPrepaidImporter/internal/load"
	"github.com/PhatDave/BssPrepaidImporter/internal/records"
	"github.com/PhatDave/BssPrepaidImporter/pkg/bssimport"
)

// ConnectorFactory builds the connector for a connection config.
type ConnectorFactory func(*bssimport.ConnectionConfig, db.PoolOptions) (bssimport.Connector, error)

// RecordReader reads and concatenates the input files in order.
type RecordReader func(paths ...string) ([]bssimport.Record, error)

// ImportService wires input files, the connection pool and the load engine.
// Thread-Safety: NOT safe for concurrent calls on the same instance.
type ImportService struct {
	connectorFactory ConnectorFactory
	tables           bssimport.TableManager
	logger           bssimport.Logger
	readRecords      RecordReader
}

// NewImportService panics on nil dependencies.
func NewImportService(connectorFactory ConnectorFactory, tables bssimport.TableManager, logger bssimport.Logger) *ImportService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if tables == nil {
		panic("tables cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ImportService{
		connectorFactory: connectorFactory,
		tables:           tables,
		logger:           logger,
		readRecords:      records.ReadAll,
	}
}

// ImportRequest describes one load job.
type ImportRequest struct {
	Config bssimport.LoadConfig

	// Sources are read in order: the "true" file, then the "false" file.
	Sources []string

	Observers []bssimport.ProgressObserver

	// ProgressInterval throttles observer updates. Defaults to DefaultProgressInterval.
	ProgressInterval time.Duration

	RunID bssimport.RunID
}

// Import reads the sources, connects and runs the load engine. Errors are
// *bssimport.JobError values naming the failing component.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*bssimport.LoadResult, error) {
	cfg := req.Config
	cfg.Tables = cfg.Tables.WithDefaults()
	if req.RunID == (bssimport.RunID{}) {
		req.RunID = bssimport.NewRunID()
	}
	if req.ProgressInterval <= 0 {
		req.ProgressInterval = bssimport.DefaultProgressInterval
	}
	failed := &bssimport.LoadResult{RunID: req.RunID, State: bssimport.StateFailed}

	if err := cfg.Validate(); err != nil {
		failed.Failed = bssimport.ComponentConfig
		return failed, bssimport.NewJobError(bssimport.ComponentConfig, err)
	}
	if len(req.Sources) == 0 {
		failed.Failed = bssimport.ComponentConfig
		return failed, bssimport.NewJobError(bssimport.ComponentConfig, fmt.Errorf("no input files: %w", bssimport.ErrInvalidConfig))
	}

	recs, err := s.readRecords(req.Sources...)
	if err != nil {
		failed.Failed = bssimport.ComponentConfig
		return failed, bssimport.NewJobError(bssimport.ComponentConfig, err)
	}
	s.logger.Info("Loaded %d msisdns", len(recs))

	workers := min(cfg.Workers, max(len(recs), 1))
	pool, closeFn, err := s.connect(ctx, cfg.Connection, req.RunID, workers)
	if err != nil {
		failed.Failed = componentFor(err, bssimport.ComponentConnect)
		return failed, bssimport.NewJobError(failed.Failed, err)
	}
	defer closeFn()

	engine := load.NewEngine(db.NewPoolAdapter(pool), s.tables, s.logger, load.Options{
		Tables:           cfg.Tables,
		Workers:          cfg.Workers,
		BatchSize:        cfg.BatchSize,
		MergePolicy:      cfg.MergePolicy,
		ProgressInterval: req.ProgressInterval,
		Observers:        req.Observers,
		RunID:            req.RunID,
	})
	return engine.Run(ctx, recs)
}

// MergeRequest runs only the merge step against a retained staging table.
type MergeRequest struct {
	Connection *bssimport.ConnectionConfig
	Tables     bssimport.TableSpec
	RunID      bssimport.RunID
}

// Merge inserts the rows of the staging table that the target lacks and
// drops staging. It returns the number of inserted rows.
func (s *ImportService) Merge(ctx context.Context, req MergeRequest) (int64, error) {
	tables := req.Tables.WithDefaults()
	if req.RunID == (bssimport.RunID{}) {
		req.RunID = bssimport.NewRunID()
	}
	if err := tables.Validate(); err != nil {
		return 0, bssimport.NewJobError(bssimport.ComponentConfig, err)
	}
	if req.Connection == nil {
		return 0, bssimport.NewJobError(bssimport.ComponentConfig, fmt.Errorf("connection is required: %w", bssimport.ErrInvalidConfig))
	}

	pool, closeFn, err := s.connect(ctx, req.Connection, req.RunID, 1)
	if err != nil {
		return 0, bssimport.NewJobError(componentFor(err, bssimport.ComponentConnect), err)
	}
	defer closeFn()

	s.logger.Info("Merging %s into %s (could take a minute) ...", tables.Staging, tables.Target)
	inserted, err := load.Merge(ctx, db.NewPoolAdapter(pool), s.tables, tables)
	if err != nil {
		return inserted, bssimport.NewJobError(componentFor(err, bssimport.ComponentMerge), err)
	}
	return inserted, nil
}

// componentFor blames configuration for errors caused by bad input.
func componentFor(err error, c bssimport.Component) bssimport.Component {
	if errors.Is(err, bssimport.ErrInvalidConfig) || errors.Is(err, bssimport.ErrUnsupportedAuthMethod) {
		return bssimport.ComponentConfig
	}
	return c
}

// connect opens a pool with one connection per worker. The returned
// function closes the pool and any connector resources.
func (s *ImportService) connect(ctx context.Context, cfg *bssimport.ConnectionConfig, runID bssimport.RunID, maxConns int) (*pgxpool.Pool, func(), error) {
	withApp := *cfg
	if withApp.AppName == "" {
		withApp.AppName = bssimport.ApplicationName + "/" + runID.String()[:8]
	}

	connector, err := s.connectorFactory(&withApp, db.PoolOptions{MaxConns: maxConns, Logger: s.logger})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Connecting to database %s", withApp.Database)
	pool, err := connector.Connect(ctx)
	if err != nil {
		if c, ok := connector.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, nil, fmt.Errorf("%s: %w", db.Describe(&withApp), err)
	}
	s.logger.Info("Connected to %s", withApp.Database)

	return pool, func() {
		pool.Close()
		if c, ok := connector.(io.Closer); ok {
			_ = c.Close()
		}
	}, nil
}
