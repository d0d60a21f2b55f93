// Package action implements the run-scoped database actions: the argument
// setter, which turns one configuration row into runtime arguments, and the
// query action, which executes a statement after a run.
package action

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ailegion/database-plugins/pkg/access"
	"github.com/ailegion/database-plugins/pkg/access/sqldb"
	"github.com/ailegion/database-plugins/pkg/config"
	"github.com/ailegion/database-plugins/pkg/dberrors"
	"github.com/ailegion/database-plugins/pkg/dialect"
	"github.com/ailegion/database-plugins/pkg/driverreg"
	"github.com/ailegion/database-plugins/pkg/logger"
	"github.com/ailegion/database-plugins/pkg/metrics"
)

// Arguments receives runtime arguments extracted from the database.
type Arguments interface {
	Set(name, value string)
}

// ArgumentSetter reads exactly one row from a configuration table and turns
// the configured column's value into a runtime argument.
type ArgumentSetter struct {
	cfg     *config.ArgumentSetterConfig
	dialect dialect.Dialect
	manager *driverreg.Manager
	janitor *driverreg.Janitor
	scope   driverreg.Scope
	logger  *zap.Logger
}

// NewArgumentSetter resolves the configured dialect and builds the action.
func NewArgumentSetter(cfg *config.ArgumentSetterConfig, scope driverreg.Scope) (*ArgumentSetter, error) {
	d, err := dialect.Lookup(cfg.DriverName)
	if err != nil {
		return nil, err
	}
	return &ArgumentSetter{
		cfg:     cfg,
		dialect: d,
		manager: driverreg.NewManager(nil),
		janitor: driverreg.GlobalJanitor(),
		scope:   scope,
		logger: logger.Get().With(
			zap.String("component", "argument_setter"),
			zap.String("scope", string(scope))),
	}, nil
}

// Run validates the config, executes the selection query and sets the
// argument. The driver registration is released and scope cleanup runs on
// every path.
func (s *ArgumentSetter) Run(ctx context.Context, args Arguments) error {
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
	s.janitor.Install(s.scope, s.dialect.InstallHooks())
	defer func() {
		handle.Release()
		s.janitor.Cleanup(s.scope)
	}()

	dsn, err := s.dialect.DSN(&s.cfg.ConnectionConfig)
	if err != nil {
		return err
	}
	// Connections go through whatever the registry resolved, so a resident
	// registration is actually reused rather than shadowed.
	drv, ok := s.manager.Resolve(s.cfg.ConnectionString)
	if !ok {
		drv = s.dialect.Driver()
	}
	db, err := sqldb.Open(drv, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	query := s.cfg.Query()
	s.logger.Info("running argument selection query", zap.String("query", query))

	timer := prometheus.NewTimer(metrics.QueryDuration.WithLabelValues("argument_setter"))
	result, err := sqldb.Query(ctx, db, query)
	timer.ObserveDuration()
	if err != nil {
		return err
	}
	defer result.Close()

	return setArguments(result.Cursor(), s.cfg.ArgumentsColumn, args)
}

// setArguments enforces the exactly-one-row contract: zero rows or more
// than one row abort without setting anything.
func setArguments(cursor access.Cursor, column string, args Arguments) error {
	collector := dberrors.NewCollector(dberrors.ErrorTypeCardinality)

	if !cursor.Next() {
		if err := cursor.Err(); err != nil {
			return err
		}
		collector.AddFailure("No record found",
			"No data is returned for the argument selection conditions")
		return collector.Err()
	}

	value, err := cursor.Row().String(0)
	if err != nil {
		return dberrors.Wrap(err, dberrors.ErrorTypeDataAccess,
			"failed to read arguments column").WithDetail("column", column)
	}

	if cursor.Next() {
		collector.AddFailure("More than one record found",
			"The argument selection conditions return multiple rows")
		return collector.Err()
	}
	if err := cursor.Err(); err != nil {
		return err
	}

	args.Set(column, value)
	return nil
}
