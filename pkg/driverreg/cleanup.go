package driverreg

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ailegion/database-plugins/pkg/logger"
	"github.com/ailegion/database-plugins/pkg/metrics"
)

// CleanupKind is the outcome of one best-effort cleanup check.
type CleanupKind int

const (
	// CleanupApplied means the target existed and was shut down.
	CleanupApplied CleanupKind = iota
	// CleanupNotApplicable means the target was not present, which counts
	// as success.
	CleanupNotApplicable
	// CleanupFailed means the target existed but could not be shut down.
	// The failure is logged and swallowed.
	CleanupFailed
)

// String returns the lowercase name of the kind.
func (k CleanupKind) String() string {
	switch k {
	case CleanupApplied:
		return "applied"
	case CleanupNotApplicable:
		return "not_applicable"
	case CleanupFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CleanupResult describes the outcome of one cleanup target.
type CleanupResult struct {
	Target string
	Kind   CleanupKind
	Reason error
}

// VendorHooks are the teardown entry points a vendor dialect installs for a
// scope. Some vendor drivers leave background state behind that outlives
// the connection: a connection-reaper goroutine, or a diagnostics
// registration keyed by the owning scope. Hooks that are nil are treated as
// not applicable.
type VendorHooks struct {
	// ReaperShutdown stops the vendor's background connection reaper.
	ReaperShutdown func() error
	// DiagnosticsUnregister removes the vendor's diagnostics registration.
	DiagnosticsUnregister func() error
}

// Janitor performs best-effort vendor cleanup per scope. Cleanup must never
// throw: every failure is logged and converted into a result kind.
type Janitor struct {
	mu     sync.Mutex
	hooks  map[Scope]VendorHooks
	logger *zap.Logger
}

// NewJanitor creates an empty janitor.
func NewJanitor() *Janitor {
	return &Janitor{
		hooks:  make(map[Scope]VendorHooks),
		logger: logger.Get().With(zap.String("component", "driver_janitor")),
	}
}

var globalJanitor = NewJanitor()

// GlobalJanitor returns the process-wide janitor.
func GlobalJanitor() *Janitor {
	return globalJanitor
}

// Install registers vendor hooks for a scope, replacing any previous hooks.
func (j *Janitor) Install(scope Scope, hooks VendorHooks) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.hooks[scope] = hooks
}

// Remove drops the hooks for a scope.
func (j *Janitor) Remove(scope Scope) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.hooks, scope)
}

// Cleanup runs every vendor teardown installed for the scope. Each check
// independently swallows "not present" as success and unexpected failures
// as logged warnings; the call never returns an error and never panics.
func (j *Janitor) Cleanup(scope Scope) []CleanupResult {
	j.mu.Lock()
	hooks, ok := j.hooks[scope]
	j.mu.Unlock()

	results := []CleanupResult{
		j.run("connection_reaper", scope, ok, hooks.ReaperShutdown),
		j.run("diagnostics_registration", scope, ok, hooks.DiagnosticsUnregister),
	}
	for _, r := range results {
		metrics.CleanupResults.WithLabelValues(r.Target, r.Kind.String()).Inc()
	}
	return results
}

func (j *Janitor) run(target string, scope Scope, installed bool, fn func() error) (result CleanupResult) {
	result = CleanupResult{Target: target, Kind: CleanupNotApplicable}
	if !installed || fn == nil {
		j.logger.Debug("cleanup target not present, nothing to do",
			zap.String("target", target),
			zap.String("scope", string(scope)))
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result = CleanupResult{Target: target, Kind: CleanupFailed,
				Reason: fmt.Errorf("cleanup panicked: %v", r)}
			j.logger.Warn("cleanup panicked, ignoring",
				zap.String("target", target),
				zap.String("scope", string(scope)),
				zap.Any("panic", r))
		}
	}()

	if err := fn(); err != nil {
		j.logger.Warn("cleanup failed, ignoring",
			zap.String("target", target),
			zap.String("scope", string(scope)),
			zap.Error(err))
		return CleanupResult{Target: target, Kind: CleanupFailed, Reason: err}
	}

	j.logger.Debug("cleanup applied",
		zap.String("target", target),
		zap.String("scope", string(scope)))
	return CleanupResult{Target: target, Kind: CleanupApplied}
}

// Cleanup runs the process-wide janitor for the scope.
func Cleanup(scope Scope) []CleanupResult {
	return globalJanitor.Cleanup(scope)
}
