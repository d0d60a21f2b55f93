package dialect

import (
	"database/sql/driver"
	"log"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/ailegion/database-plugins/pkg/config"
	"github.com/ailegion/database-plugins/pkg/driverreg"
	"github.com/ailegion/database-plugins/pkg/logger"
)

const mysqlPrefix = "mysql://"

func init() {
	Register(&mysqlDialect{})
}

type mysqlDialect struct{}

func (d *mysqlDialect) Name() string   { return "mysql" }
func (d *mysqlDialect) Prefix() string { return mysqlPrefix }

func (d *mysqlDialect) ConnectionString(host string, port int, database string) string {
	return canonical("mysql", host, port, database)
}

func (d *mysqlDialect) DSN(cfg *config.ConnectionConfig) (string, error) {
	u, err := parseCanonical(cfg.ConnectionString, mysqlPrefix)
	if err != nil {
		return "", err
	}
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = u.Host
	mc.DBName = strings.TrimPrefix(u.Path, "/")
	mc.ParseTime = true
	for k, v := range cfg.ConnectionArguments {
		if mc.Params == nil {
			mc.Params = map[string]string{}
		}
		mc.Params[k] = v
	}
	return mc.FormatDSN(), nil
}

func (d *mysqlDialect) Driver() driver.Driver { return &mysql.MySQLDriver{} }

// InstallHooks routes the driver's internal diagnostics through the
// structured logger while a registration is live; the returned hook
// restores the stock logger when the lifecycle manager cleans the scope up.
func (d *mysqlDialect) InstallHooks() driverreg.VendorHooks {
	if err := mysql.SetLogger(zapMySQLLogger{}); err != nil {
		logger.Warn("failed to install mysql diagnostics logger", zap.Error(err))
		return driverreg.VendorHooks{}
	}
	return driverreg.VendorHooks{
		DiagnosticsUnregister: func() error {
			return mysql.SetLogger(log.New(os.Stderr, "[mysql] ", log.Ldate|log.Ltime))
		},
	}
}

type zapMySQLLogger struct{}

func (zapMySQLLogger) Print(v ...interface{}) {
	logger.Get().Sugar().Warnw("mysql driver", "message", v)
}
