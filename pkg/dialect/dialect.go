// Package dialect binds vendor-specific pieces together: the concrete
// driver value, the canonical connection-string scheme used for driver
// registration, the translation from canonical settings to the vendor's
// native DSN, and the best-effort cleanup hooks the driver lifecycle
// manager runs on release.
package dialect

import (
	"database/sql/driver"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/ailegion/database-plugins/pkg/config"
	"github.com/ailegion/database-plugins/pkg/dberrors"
	"github.com/ailegion/database-plugins/pkg/driverreg"
)

// Dialect describes one supported database vendor.
type Dialect interface {
	// Name is the dialect identifier used in configuration.
	Name() string
	// Prefix is the canonical scheme keying driver registrations.
	Prefix() string
	// ConnectionString builds the canonical connection string.
	ConnectionString(host string, port int, database string) string
	// DSN translates a connection config into the vendor driver's
	// native DSN.
	DSN(cfg *config.ConnectionConfig) (string, error)
	// Driver returns the vendor driver value.
	Driver() driver.Driver
	// InstallHooks activates any vendor diagnostics for the lifetime of a
	// registration and returns the teardown hooks the lifecycle janitor
	// runs on scope cleanup. Zero-valued hooks mean the vendor needs no
	// cleanup.
	InstallHooks() driverreg.VendorHooks
}

var (
	mu       sync.RWMutex
	dialects = map[string]Dialect{}
)

// Register adds a dialect to the package registry. Later registrations
// with the same name win.
func Register(d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[d.Name()] = d
}

// Lookup resolves a dialect by name.
func Lookup(name string) (Dialect, error) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := dialects[name]
	if !ok {
		return nil, dberrors.Newf(dberrors.ErrorTypeConfiguration,
			"unknown dialect %q", name).WithDetail("dialect", name)
	}
	return d, nil
}

// Names lists the registered dialect names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseCanonical splits a scheme-prefixed connection string into host,
// port and database path.
func parseCanonical(connString, wantScheme string) (*url.URL, error) {
	u, err := url.Parse(connString)
	if err != nil {
		return nil, dberrors.Wrap(err, dberrors.ErrorTypeConfiguration,
			"invalid connection string")
	}
	if u.Scheme != strings.TrimSuffix(wantScheme, "://") {
		return nil, dberrors.Newf(dberrors.ErrorTypeConfiguration,
			"connection string %q does not match dialect prefix %s", connString, wantScheme)
	}
	return u, nil
}

func canonical(scheme, host string, port int, database string) string {
	return fmt.Sprintf("%s://%s:%d/%s", scheme, host, port, database)
}
