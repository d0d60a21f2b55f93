// Package driverreg manages the lifecycle of database driver registrations.
//
// The process-wide driver registry is shared mutable state: multiple
// pipeline workers may acquire and release driver registrations for the
// same vendor concurrently. The registry is therefore an explicit,
// injectable register/list/deregister contract rather than hidden runtime
// state, which also allows deterministic testing against a fake.
//
// Driver identity is the dynamic type of the driver value; registrations
// additionally carry an opaque Scope token supplied by the caller, so that
// one worker's registrations never collide with another's.
package driverreg

import (
	"database/sql/driver"
	"reflect"
	"strings"
	"sync"

	"github.com/ailegion/database-plugins/pkg/dberrors"
)

// Scope is an opaque registration-scope token. Registrations made under one
// scope are invisible to stale-entry sweeps of another.
type Scope string

// Registration is one entry of the registry.
type Registration struct {
	// Prefix is the connection-string prefix the driver accepts,
	// e.g. "mysql://" or "snowflake://".
	Prefix string
	// Scope identifies the owner of the entry.
	Scope Scope
	// Driver is the registered driver, possibly wrapped in a shim.
	Driver driver.Driver
}

// Registry is the process-wide register/list/deregister contract.
type Registry interface {
	// Register adds an entry. Registering an identical entry twice is an
	// error.
	Register(reg Registration) error
	// Deregister removes the exact entry and reports whether it was found.
	// Removing an entry that is already gone is not an error.
	Deregister(reg Registration) bool
	// Lookup resolves a driver for the connection string, if any
	// registration accepts it.
	Lookup(connectionString string) (driver.Driver, bool)
	// Snapshot returns a copy of all current entries. Callers iterate the
	// snapshot so concurrent mutation cannot invalidate the walk.
	Snapshot() []Registration
}

// memoryRegistry is the standard mutex-guarded Registry.
type memoryRegistry struct {
	mu      sync.Mutex
	entries []Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() Registry {
	return &memoryRegistry{}
}

var global = NewRegistry()

// Global returns the process-wide registry shared by all components.
func Global() Registry {
	return global
}

func (r *memoryRegistry) Register(reg Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e == reg {
			return dberrors.Newf(dberrors.ErrorTypeConfiguration,
				"driver already registered for prefix '%s'", reg.Prefix).
				WithDetail("scope", string(reg.Scope))
		}
	}
	r.entries = append(r.entries, reg)
	return nil
}

func (r *memoryRegistry) Deregister(reg Registration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e == reg {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (r *memoryRegistry) Lookup(connectionString string) (driver.Driver, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Prefix != "" && strings.HasPrefix(connectionString, e.Prefix) {
			return e.Driver, true
		}
	}
	return nil, false
}

func (r *memoryRegistry) Snapshot() []Registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Registration, len(r.entries))
	copy(out, r.entries)
	return out
}

// driverKey returns the identity key of a driver value: the dynamic type of
// the innermost driver, with shims unwrapped.
func driverKey(d driver.Driver) string {
	for {
		shim, ok := d.(*Shim)
		if !ok {
			break
		}
		d = shim.Unwrap()
	}
	t := reflect.TypeOf(d)
	if t == nil {
		return ""
	}
	return t.String()
}
