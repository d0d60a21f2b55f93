package driverreg

import (
	"database/sql/driver"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ailegion/database-plugins/pkg/dberrors"
	"github.com/ailegion/database-plugins/pkg/logger"
	"github.com/ailegion/database-plugins/pkg/metrics"
)

// Manager acquires and releases driver registrations against a Registry.
type Manager struct {
	registry Registry
	logger   *zap.Logger
}

// NewManager creates a manager over the given registry; a nil registry
// means the process-wide one.
func NewManager(reg Registry) *Manager {
	if reg == nil {
		reg = Global()
	}
	return &Manager{
		registry: reg,
		logger:   logger.Get().With(zap.String("component", "driver_manager")),
	}
}

// Acquire ensures a driver serving connectionString is registered and
// returns the handle owning whatever the call installed.
//
// If the registry already resolves a driver for the connection string,
// another registration owns it and the returned handle is a no-op.
// Otherwise the given driver is wrapped in a shim; any stale registrations
// sharing the same (driver identity, scope) are swept best-effort first,
// then the shim is registered.
func (m *Manager) Acquire(d driver.Driver, prefix, connectionString string, scope Scope) (*Handle, error) {
	if _, ok := m.registry.Lookup(connectionString); ok {
		m.logger.Debug("driver already resolves for connection string, nothing to register",
			zap.String("prefix", prefix),
			zap.String("scope", string(scope)))
		return &Handle{}, nil
	}

	shim := NewShim(d)
	m.logger.Debug("registering driver via shim",
		zap.String("driver", driverKey(d)),
		zap.String("prefix", prefix),
		zap.String("scope", string(scope)))

	m.sweepStale(d, scope)

	reg := Registration{Prefix: prefix, Scope: scope, Driver: shim}
	if err := m.registry.Register(reg); err != nil {
		return nil, dberrors.Wrap(err, dberrors.ErrorTypeConnection, "failed to register driver shim")
	}
	metrics.DriverRegistrations.WithLabelValues(driverKey(d)).Inc()

	return &Handle{
		registry:   m.registry,
		reg:        reg,
		registered: true,
		logger:     m.logger,
	}, nil
}

// Resolve returns the registered driver serving the connection string.
// After a successful Acquire this is the driver connections should be
// opened through, whether this manager installed it or a resident
// registration already owned the prefix.
func (m *Manager) Resolve(connectionString string) (driver.Driver, bool) {
	return m.registry.Lookup(connectionString)
}

// sweepStale deregisters previous entries sharing the driver's identity and
// the caller's scope, so repeated invocations do not accumulate stale
// registrations. Best-effort: problems are logged and swallowed, never
// fatal.
func (m *Manager) sweepStale(d driver.Driver, scope Scope) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("unable to sweep stale driver registrations",
				zap.String("driver", driverKey(d)),
				zap.Any("panic", r))
		}
	}()

	key := driverKey(d)
	for _, entry := range m.registry.Snapshot() {
		if entry.Scope != scope || driverKey(entry.Driver) != key {
			continue
		}
		// A concurrent release may have removed the entry already; that is
		// fine, the snapshot tolerates removal races.
		if m.registry.Deregister(entry) {
			m.logger.Debug("removed stale driver registration",
				zap.String("driver", key),
				zap.String("prefix", entry.Prefix))
		}
	}
}

// Handle represents ownership of a driver registration. The zero value is
// the no-op handle.
//
// A handle moves through unregistered → registered → released; release is
// terminal and idempotent, so calling it again from a cleanup path after a
// partial failure is safe.
type Handle struct {
	registry   Registry
	reg        Registration
	registered bool
	released   atomic.Bool
	logger     *zap.Logger
}

// Registered reports whether this handle owns a shim registration.
func (h *Handle) Registered() bool {
	return h.registered && !h.released.Load()
}

// Release deregisters the shim this handle installed, if any. Safe to call
// multiple times and on no-op handles.
func (h *Handle) Release() {
	if !h.registered {
		return
	}
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	removed := h.registry.Deregister(h.reg)
	if h.logger != nil {
		h.logger.Debug("released driver registration",
			zap.String("prefix", h.reg.Prefix),
			zap.Bool("removed", removed))
	}
}
