// Package sqlsource implements a streaming relational source: it acquires
// a driver registration, executes the configured query, matches the result
// set against the expected columns and streams mapped records over a
// channel until the cursor is exhausted.
package sqlsource

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ailegion/database-plugins/pkg/access"
	"github.com/ailegion/database-plugins/pkg/access/sqldb"
	"github.com/ailegion/database-plugins/pkg/config"
	"github.com/ailegion/database-plugins/pkg/dberrors"
	"github.com/ailegion/database-plugins/pkg/dialect"
	"github.com/ailegion/database-plugins/pkg/driverreg"
	"github.com/ailegion/database-plugins/pkg/logger"
	"github.com/ailegion/database-plugins/pkg/record"
	"github.com/ailegion/database-plugins/pkg/sqltype"
)

// RecordStream carries streamed records and the terminal error, if any.
// Both channels are closed when streaming ends.
type RecordStream struct {
	Records <-chan *record.Record
	Errors  <-chan error
}

// Source streams query results as records.
type Source struct {
	cfg     *config.SourceConfig
	dialect dialect.Dialect
	manager *driverreg.Manager
	janitor *driverreg.Janitor
	scope   driverreg.Scope
	logger  *zap.Logger

	mu          sync.Mutex
	handle      *driverreg.Handle
	initialized bool
	closed      bool
}

// New resolves the configured dialect and builds the source.
func New(cfg *config.SourceConfig, scope driverreg.Scope) (*Source, error) {
	d, err := dialect.Lookup(cfg.DriverName)
	if err != nil {
		return nil, err
	}
	return &Source{
		cfg:     cfg,
		dialect: d,
		manager: driverreg.NewManager(nil),
		janitor: driverreg.GlobalJanitor(),
		scope:   scope,
		logger: logger.Get().With(
			zap.String("component", "sql_source"),
			zap.String("source", cfg.Name),
			zap.String("scope", string(scope))),
	}, nil
}

// Initialize validates the config and acquires the driver registration.
func (s *Source) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return dberrors.New(dberrors.ErrorTypeConfiguration, "source already initialized")
	}

	collector := dberrors.NewCollector(dberrors.ErrorTypeConfiguration)
	s.cfg.ConnectionConfig.Validate(collector)
	s.cfg.Validate(collector)
	if err := collector.Err(); err != nil {
		return err
	}

	handle, err := s.manager.Acquire(s.dialect.Driver(), s.dialect.Prefix(),
		s.cfg.ConnectionString, s.scope)
	if err != nil {
		return err
	}
	s.handle = handle
	s.janitor.Install(s.scope, s.dialect.InstallHooks())
	s.initialized = true

	s.logger.Info("source initialized",
		zap.String("dialect", s.dialect.Name()),
		zap.Int("columns", len(s.cfg.Columns)))
	return nil
}

// Read starts streaming. The returned channels close when the query is
// drained, fails or the context is cancelled.
func (s *Source) Read(ctx context.Context) (*RecordStream, error) {
	s.mu.Lock()
	if !s.initialized || s.closed {
		s.mu.Unlock()
		return nil, dberrors.New(dberrors.ErrorTypeConfiguration, "source not initialized")
	}
	s.mu.Unlock()

	bufferSize := s.cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 100
	}
	records := make(chan *record.Record, bufferSize)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		dsn, err := s.dialect.DSN(&s.cfg.ConnectionConfig)
		if err != nil {
			errs <- err
			return
		}
		drv, ok := s.manager.Resolve(s.cfg.ConnectionString)
		if !ok {
			drv = s.dialect.Driver()
		}
		db, err := sqldb.Open(drv, dsn)
		if err != nil {
			errs <- err
			return
		}
		defer db.Close()

		result, err := sqldb.Query(ctx, db, s.cfg.Query)
		if err != nil {
			errs <- err
			return
		}
		defer result.Close()

		if err := s.stream(ctx, result, records); err != nil {
			errs <- err
		}
	}()

	return &RecordStream{Records: records, Errors: errs}, nil
}

// stream matches the result set, then maps and forwards every row.
func (s *Source) stream(ctx context.Context, result access.Result, records chan<- *record.Record) error {
	columns, err := sqltype.MatchColumns(result.Metadata(), s.cfg.Columns)
	if err != nil {
		return err
	}

	reader := record.NewReader(s.cfg.Name, columns, result.Cursor())
	count := 0
	for {
		rec, err := reader.Next()
		if err != nil {
			return err
		}
		if rec == nil {
			break
		}
		select {
		case records <- rec:
			count++
		case <-ctx.Done():
			rec.Release()
			return ctx.Err()
		}
	}

	s.logger.Info("streaming complete", zap.Int("records", count))
	return nil
}

// Close releases the driver registration and runs scope cleanup. Safe to
// call more than once.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.handle != nil {
		s.handle.Release()
	}
	results := s.janitor.Cleanup(s.scope)
	for _, r := range results {
		if r.Kind == driverreg.CleanupFailed {
			s.logger.Warn("vendor cleanup failed",
				zap.String("target", r.Target),
				zap.Error(r.Reason))
		}
	}
	s.logger.Info("source closed")
	return nil
}
