package dialect

import (
	"database/sql/driver"
	"strings"

	"github.com/snowflakedb/gosnowflake"

	"github.com/ailegion/database-plugins/pkg/config"
	"github.com/ailegion/database-plugins/pkg/driverreg"
)

const snowflakePrefix = "snowflake://"

func init() {
	Register(&snowflakeDialect{})
}

type snowflakeDialect struct{}

func (d *snowflakeDialect) Name() string   { return "snowflake" }
func (d *snowflakeDialect) Prefix() string { return snowflakePrefix }

func (d *snowflakeDialect) ConnectionString(host string, port int, database string) string {
	return canonical("snowflake", host, port, database)
}

func (d *snowflakeDialect) DSN(cfg *config.ConnectionConfig) (string, error) {
	u, err := parseCanonical(cfg.ConnectionString, snowflakePrefix)
	if err != nil {
		return "", err
	}
	sc := &gosnowflake.Config{
		Account:  u.Hostname(),
		User:     cfg.User,
		Password: cfg.Password,
		Database: strings.TrimPrefix(u.Path, "/"),
	}
	if len(cfg.ConnectionArguments) > 0 {
		sc.Params = make(map[string]*string, len(cfg.ConnectionArguments))
		for k, v := range cfg.ConnectionArguments {
			v := v
			sc.Params[k] = &v
		}
	}
	return gosnowflake.DSN(sc)
}

func (d *snowflakeDialect) Driver() driver.Driver { return &gosnowflake.SnowflakeDriver{} }

// InstallHooks returns zero hooks: gosnowflake keeps no process-wide state
// that needs teardown, so cleanup reports not-applicable for this dialect.
func (d *snowflakeDialect) InstallHooks() driverreg.VendorHooks {
	return driverreg.VendorHooks{}
}
