package action

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ailegion/database-plugins/pkg/access/sqldb"
	"github.com/ailegion/database-plugins/pkg/config"
	"github.com/ailegion/database-plugins/pkg/dberrors"
	"github.com/ailegion/database-plugins/pkg/dialect"
	"github.com/ailegion/database-plugins/pkg/driverreg"
	"github.com/ailegion/database-plugins/pkg/logger"
	"github.com/ailegion/database-plugins/pkg/metrics"
)

// QueryAction executes a configured statement after a run, optionally only
// when the run succeeded.
type QueryAction struct {
	cfg     *config.QueryActionConfig
	dialect dialect.Dialect
	manager *driverreg.Manager
	janitor *driverreg.Janitor
	scope   driverreg.Scope
	logger  *zap.Logger
}

// NewQueryAction resolves the configured dialect and builds the action.
func NewQueryAction(cfg *config.QueryActionConfig, scope driverreg.Scope) (*QueryAction, error) {
	d, err := dialect.Lookup(cfg.DriverName)
	if err != nil {
		return nil, err
	}
	return &QueryAction{
		cfg:     cfg,
		dialect: d,
		manager: driverreg.NewManager(nil),
		janitor: driverreg.GlobalJanitor(),
		scope:   scope,
		logger: logger.Get().With(
			zap.String("component", "query_action"),
			zap.String("scope", string(scope))),
	}, nil
}

// Run executes the statement. When RunOnSuccessOnly is set and the run did
// not succeed, the statement is skipped without error.
func (a *QueryAction) Run(ctx context.Context, succeeded bool) error {
	if a.cfg.RunOnSuccessOnly && !succeeded {
		a.logger.Info("run did not succeed, skipping query action")
		return nil
	}

	collector := dberrors.NewCollector(dberrors.ErrorTypeConfiguration)
	a.cfg.ConnectionConfig.Validate(collector)
	a.cfg.Validate(collector)
	if err := collector.Err(); err != nil {
		return err
	}

	handle, err := a.manager.Acquire(a.dialect.Driver(), a.dialect.Prefix(),
		a.cfg.ConnectionString, a.scope)
	if err != nil {
		return err
	}
	a.janitor.Install(a.scope, a.dialect.InstallHooks())
	defer func() {
		handle.Release()
		a.janitor.Cleanup(a.scope)
	}()

	dsn, err := a.dialect.DSN(&a.cfg.ConnectionConfig)
	if err != nil {
		return err
	}
	drv, ok := a.manager.Resolve(a.cfg.ConnectionString)
	if !ok {
		drv = a.dialect.Driver()
	}
	db, err := sqldb.Open(drv, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	a.logger.Info("executing query action", zap.String("query", a.cfg.Query))

	timer := prometheus.NewTimer(metrics.QueryDuration.WithLabelValues("query_action"))
	_, err = db.ExecContext(ctx, a.cfg.Query)
	timer.ObserveDuration()
	if err != nil {
		return dberrors.Wrap(err, dberrors.ErrorTypeQuery, "query action failed").
			WithDetail("query", a.cfg.Query)
	}
	return nil
}
