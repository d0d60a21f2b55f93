package action

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailegion/database-plugins/pkg/config"
	"github.com/ailegion/database-plugins/pkg/dberrors"
	"github.com/ailegion/database-plugins/pkg/driverreg"
	"github.com/ailegion/database-plugins/pkg/sqltype"
)

type mapArguments struct {
	values map[string]string
}

func newMapArguments() *mapArguments {
	return &mapArguments{values: map[string]string{}}
}

func (m *mapArguments) Set(name, value string) { m.values[name] = value }

type fakeRow struct {
	values []interface{}
}

func (r *fakeRow) Object(i int) (interface{}, error) { return r.values[i], nil }

func (r *fakeRow) Time(int) (time.Time, error) {
	return time.Time{}, errors.New("not a temporal row")
}

func (r *fakeRow) String(i int) (string, error) {
	s, ok := r.values[i].(string)
	if !ok {
		return "", errors.New("not a string")
	}
	return s, nil
}

type fakeCursor struct {
	rows    [][]interface{}
	pos     int
	current fakeRow
	err     error
}

func (c *fakeCursor) Next() bool {
	if c.pos >= len(c.rows) {
		return false
	}
	c.current = fakeRow{values: c.rows[c.pos]}
	c.pos++
	return true
}

func (c *fakeCursor) Row() sqltype.Row { return &c.current }
func (c *fakeCursor) Err() error       { return c.err }
func (c *fakeCursor) Close() error     { return nil }

func TestSetArgumentsExactlyOneRow(t *testing.T) {
	args := newMapArguments()
	cursor := &fakeCursor{rows: [][]interface{}{{"key1=val1;key2=val2"}}}

	require.NoError(t, setArguments(cursor, "arguments", args))
	assert.Equal(t, "key1=val1;key2=val2", args.values["arguments"])
}

func TestSetArgumentsNoRows(t *testing.T) {
	args := newMapArguments()
	cursor := &fakeCursor{}

	err := setArguments(cursor, "arguments", args)
	require.Error(t, err)
	assert.True(t, dberrors.IsType(err, dberrors.ErrorTypeCardinality))
	assert.Contains(t, err.Error(), "No record found")
	assert.Empty(t, args.values, "no argument may be set on cardinality failure")
}

func TestSetArgumentsMultipleRows(t *testing.T) {
	args := newMapArguments()
	cursor := &fakeCursor{rows: [][]interface{}{{"first"}, {"second"}}}

	err := setArguments(cursor, "arguments", args)
	require.Error(t, err)
	assert.True(t, dberrors.IsType(err, dberrors.ErrorTypeCardinality))
	assert.Contains(t, err.Error(), "More than one record found")
	assert.Empty(t, args.values, "no argument may be set on cardinality failure")
}

func TestSetArgumentsCursorErrorWins(t *testing.T) {
	args := newMapArguments()
	boom := errors.New("connection lost")
	cursor := &fakeCursor{err: boom}

	err := setArguments(cursor, "arguments", args)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, args.values)
}

func TestArgumentSetterRejectsInvalidConfig(t *testing.T) {
	cfg := &config.ArgumentSetterConfig{
		ConnectionConfig: config.ConnectionConfig{
			ConnectionString: "mysql://host:3306/app",
			DriverName:       "mysql",
		},
		// table, conditions and column missing
	}
	setter, err := NewArgumentSetter(cfg, driverreg.Scope("run-1"))
	require.NoError(t, err)

	err = setter.Run(context.Background(), newMapArguments())
	require.Error(t, err)
	assert.True(t, dberrors.IsType(err, dberrors.ErrorTypeConfiguration))
}

func TestNewArgumentSetterUnknownDialect(t *testing.T) {
	cfg := &config.ArgumentSetterConfig{
		ConnectionConfig: config.ConnectionConfig{DriverName: "dbase"},
	}
	_, err := NewArgumentSetter(cfg, "run-1")
	require.Error(t, err)
	assert.True(t, dberrors.IsType(err, dberrors.ErrorTypeConfiguration))
}

func TestQueryActionSkipsOnFailedRun(t *testing.T) {
	cfg := &config.QueryActionConfig{
		ConnectionConfig: config.ConnectionConfig{
			ConnectionString: "mysql://host:3306/app",
			DriverName:       "mysql",
		},
		Query:            "DELETE FROM staging",
		RunOnSuccessOnly: true,
	}
	action, err := NewQueryAction(cfg, "run-1")
	require.NoError(t, err)

	assert.NoError(t, action.Run(context.Background(), false),
		"failed run with RunOnSuccessOnly must be a silent skip")
}

func TestQueryActionRejectsEmptyQuery(t *testing.T) {
	cfg := &config.QueryActionConfig{
		ConnectionConfig: config.ConnectionConfig{
			ConnectionString: "mysql://host:3306/app",
			DriverName:       "mysql",
		},
	}
	action, err := NewQueryAction(cfg, "run-1")
	require.NoError(t, err)

	err = action.Run(context.Background(), true)
	require.Error(t, err)
	assert.True(t, dberrors.IsType(err, dberrors.ErrorTypeConfiguration))
}
