package driverreg

import (
	"context"
	"database/sql/driver"
)

// Shim is a delegating wrapper installed in place of a direct driver
// instance. Registering the shim rather than the vendor driver lets the
// manager track and later remove exactly the entries it introduced, no
// matter how many identical vendor drivers other components registered.
type Shim struct {
	delegate driver.Driver
}

// NewShim wraps a driver in a shim.
func NewShim(d driver.Driver) *Shim {
	return &Shim{delegate: d}
}

// Open delegates to the wrapped driver.
func (s *Shim) Open(name string) (driver.Conn, error) {
	return s.delegate.Open(name)
}

// OpenConnector delegates when the wrapped driver supports connectors and
// falls back to a DSN connector otherwise.
func (s *Shim) OpenConnector(name string) (driver.Connector, error) {
	if dc, ok := s.delegate.(driver.DriverContext); ok {
		return dc.OpenConnector(name)
	}
	return dsnConnector{dsn: name, driver: s.delegate}, nil
}

// Unwrap returns the wrapped driver.
func (s *Shim) Unwrap() driver.Driver {
	return s.delegate
}

// dsnConnector adapts a plain driver.Driver to driver.Connector for use
// with sql.OpenDB.
type dsnConnector struct {
	dsn    string
	driver driver.Driver
}

func (c dsnConnector) Connect(_ context.Context) (driver.Conn, error) {
	return c.driver.Open(c.dsn)
}

func (c dsnConnector) Driver() driver.Driver {
	return c.driver
}
