package dialect

import (
	"database/sql/driver"
	"net/url"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/ailegion/database-plugins/pkg/config"
	"github.com/ailegion/database-plugins/pkg/driverreg"
)

const postgresPrefix = "postgres://"

func init() {
	Register(&postgresDialect{})
}

type postgresDialect struct{}

func (d *postgresDialect) Name() string   { return "postgres" }
func (d *postgresDialect) Prefix() string { return postgresPrefix }

func (d *postgresDialect) ConnectionString(host string, port int, database string) string {
	return canonical("postgres", host, port, database)
}

// DSN returns a postgres URL; pgx consumes the canonical form directly,
// with credentials and extra arguments folded in.
func (d *postgresDialect) DSN(cfg *config.ConnectionConfig) (string, error) {
	u, err := parseCanonical(cfg.ConnectionString, postgresPrefix)
	if err != nil {
		return "", err
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	if len(cfg.ConnectionArguments) > 0 {
		q := u.Query()
		for k, v := range cfg.ConnectionArguments {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (d *postgresDialect) Driver() driver.Driver { return stdlib.GetDefaultDriver() }

// InstallHooks returns zero hooks: the pgx stdlib driver keeps no
// process-wide state that needs teardown.
func (d *postgresDialect) InstallHooks() driverreg.VendorHooks {
	return driverreg.VendorHooks{}
}
