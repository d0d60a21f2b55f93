// Package config defines the configuration structures for the database
// connectivity core: connection settings shared by every component, the
// argument-setter lookup config, and the post-run query action config.
// Structs carry yaml tags so they load from config files directly.
package config

import (
	"strings"

	"github.com/ailegion/database-plugins/pkg/dberrors"
)

// ConnectionConfig holds the settings needed to reach a database. It is
// embedded by the higher-level configs.
type ConnectionConfig struct {
	// ConnectionString is the full DSN, including the database name.
	ConnectionString string `yaml:"connection_string" json:"connection_string"`
	// DriverName selects the dialect to resolve the driver from.
	DriverName string `yaml:"driver_name" json:"driver_name"`
	// User and Password are optional credentials. A password without a
	// user is rejected during validation.
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	// ConnectionArguments are extra driver properties appended to the DSN.
	ConnectionArguments map[string]string `yaml:"connection_arguments" json:"connection_arguments"`
}

// Validate records connection-level failures on the collector.
func (c *ConnectionConfig) Validate(collector *dberrors.Collector) {
	if c.ConnectionString == "" {
		collector.AddFailure("Invalid connection string",
			"Connection string must be specified")
	}
	if c.DriverName == "" {
		collector.AddFailure("Invalid driver name",
			"Driver name must be specified")
	}
	if c.Password != "" && c.User == "" {
		collector.AddFailure("Missing username",
			"A username must be provided when a password is set")
	}
}

// ArgumentSetterConfig configures the lookup that turns one database row
// into runtime arguments.
type ArgumentSetterConfig struct {
	ConnectionConfig `yaml:",inline" json:",inline"`

	// DatabaseName is the database holding the configuration table.
	DatabaseName string `yaml:"database_name" json:"database_name"`
	// TableName is the table holding the configurations.
	TableName string `yaml:"table_name" json:"table_name"`
	// SelectionConditions identify the row to read, in the form
	// column1=value1;column2=value2. The conditions are ANDed; the query
	// must return exactly one row.
	SelectionConditions string `yaml:"selection_conditions" json:"selection_conditions"`
	// ArgumentsColumn is the column whose value becomes the argument.
	ArgumentsColumn string `yaml:"arguments_column" json:"arguments_column"`
}

// Query builds the selection statement from the configured conditions.
func (c *ArgumentSetterConfig) Query() string {
	conditions := strings.Join(strings.Split(c.SelectionConditions, ";"), " AND ")
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(c.ArgumentsColumn)
	b.WriteString(" FROM ")
	b.WriteString(c.TableName)
	b.WriteString(" WHERE ")
	b.WriteString(conditions)
	return b.String()
}

// Validate records a failure per missing field on the collector.
func (c *ArgumentSetterConfig) Validate(collector *dberrors.Collector) {
	if c.DatabaseName == "" {
		collector.AddFailure("Invalid database", "Invalid database is specified")
	}
	if c.TableName == "" {
		collector.AddFailure("Invalid table", "Invalid table is specified")
	}
	if c.ArgumentsColumn == "" {
		collector.AddFailure("Invalid argument column", "Argument column name must be specified")
	}
	if c.SelectionConditions == "" {
		collector.AddFailure("Invalid conditions", "Filter conditions must be specified")
	}
}

// QueryActionConfig configures a statement executed after a run.
type QueryActionConfig struct {
	ConnectionConfig `yaml:",inline" json:",inline"`

	// Query is the statement to execute.
	Query string `yaml:"query" json:"query"`
	// RunOnSuccessOnly skips the statement when the run failed.
	RunOnSuccessOnly bool `yaml:"run_on_success_only" json:"run_on_success_only"`
}

// Validate records query-action failures on the collector.
func (c *QueryActionConfig) Validate(collector *dberrors.Collector) {
	if c.Query == "" {
		collector.AddFailure("Invalid query", "A query must be specified")
	}
}

// SourceConfig configures the streaming relational source.
type SourceConfig struct {
	ConnectionConfig `yaml:",inline" json:",inline"`

	// Name identifies the source instance in logs and metrics.
	Name string `yaml:"name" json:"name"`
	// Query is the statement whose rows are streamed as records.
	Query string `yaml:"query" json:"query"`
	// Columns are the expected output columns, matched against the result
	// set before streaming starts.
	Columns []string `yaml:"columns" json:"columns"`
	// BufferSize is the record channel capacity.
	BufferSize int `yaml:"buffer_size" json:"buffer_size"`
}

// Validate records source-level failures on the collector.
func (c *SourceConfig) Validate(collector *dberrors.Collector) {
	if c.Name == "" {
		collector.AddFailure("Invalid name", "Source name must be specified")
	}
	if c.Query == "" {
		collector.AddFailure("Invalid query", "A query must be specified")
	}
	if len(c.Columns) == 0 {
		collector.AddFailure("Invalid columns", "Expected columns must be specified")
	}
}
