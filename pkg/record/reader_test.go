package record

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailegion/database-plugins/pkg/sqltype"
)

type sliceRow struct {
	values []interface{}
}

func (r *sliceRow) Object(i int) (interface{}, error) { return r.values[i], nil }

func (r *sliceRow) Time(i int) (time.Time, error) {
	t, ok := r.values[i].(time.Time)
	if !ok {
		return time.Time{}, errors.New("not a time")
	}
	return t, nil
}

func (r *sliceRow) String(i int) (string, error) {
	s, ok := r.values[i].(string)
	if !ok {
		return "", errors.New("not a string")
	}
	return s, nil
}

type sliceCursor struct {
	rows    [][]interface{}
	pos     int
	current sliceRow
	err     error
	closed  bool
}

func (c *sliceCursor) Next() bool {
	if c.pos >= len(c.rows) {
		return false
	}
	c.current = sliceRow{values: c.rows[c.pos]}
	c.pos++
	return true
}

func (c *sliceCursor) Row() sqltype.Row { return &c.current }
func (c *sliceCursor) Err() error       { return c.err }
func (c *sliceCursor) Close() error     { c.closed = true; return nil }

func TestReaderAssemblesRecords(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	cursor := &sliceCursor{rows: [][]interface{}{
		{int64(7), "alice", ts},
		{int64(8), "bob", ts},
	}}
	columns := []sqltype.ColumnType{
		{Name: "id", Code: sqltype.BigInt, Ordinal: 0},
		{Name: "name", Code: sqltype.VarChar, Ordinal: 1},
		{Name: "created", Code: sqltype.Timestamp, Ordinal: 2},
	}

	reader := NewReader("users", columns, cursor)

	rec, err := reader.Next()
	require.NoError(t, err)
	require.NotNil(t, rec)
	defer rec.Release()

	id, ok := rec.GetData("id")
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
	name, _ := rec.GetData("name")
	assert.Equal(t, "alice", name)
	created, _ := rec.GetData("created")
	assert.Equal(t, ts, created)
	assert.Equal(t, "users", rec.Metadata.Source)

	second, err := reader.Next()
	require.NoError(t, err)
	require.NotNil(t, second)
	second.Release()

	done, err := reader.Next()
	require.NoError(t, err)
	assert.Nil(t, done, "exhausted cursor yields nil record")
}

func TestReaderUsesExpectedNameNotResultLabel(t *testing.T) {
	// By-name matching can reorder ordinals; the reader must follow them.
	cursor := &sliceCursor{rows: [][]interface{}{{"first", "second"}}}
	columns := []sqltype.ColumnType{
		{Name: "b", Code: sqltype.VarChar, Ordinal: 1},
		{Name: "a", Code: sqltype.VarChar, Ordinal: 0},
	}

	reader := NewReader("swap", columns, cursor)
	rec, err := reader.Next()
	require.NoError(t, err)
	defer rec.Release()

	a, _ := rec.GetData("a")
	b, _ := rec.GetData("b")
	assert.Equal(t, "first", a)
	assert.Equal(t, "second", b)
}

func TestReaderPropagatesCursorError(t *testing.T) {
	boom := errors.New("connection reset")
	cursor := &sliceCursor{err: boom}

	reader := NewReader("users", nil, cursor)
	rec, err := reader.Next()
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, boom)
}

func TestReadAll(t *testing.T) {
	cursor := &sliceCursor{rows: [][]interface{}{
		{int64(1)}, {int64(2)}, {int64(3)},
	}}
	columns := []sqltype.ColumnType{{Name: "n", Code: sqltype.BigInt, Ordinal: 0}}

	reader := NewReader("seq", columns, cursor)
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		n, _ := rec.GetData("n")
		assert.Equal(t, int64(i+1), n)
		rec.Release()
	}

	require.NoError(t, reader.Close())
	assert.True(t, cursor.closed)
}

func TestRecordPoolRoundTrip(t *testing.T) {
	rec := Get("s")
	rec.SetData("k", "v")
	rec.Release()

	fresh := Get("s")
	defer fresh.Release()
	_, ok := fresh.GetData("k")
	assert.False(t, ok, "released record must come back clean")
}

func TestRecordToJSON(t *testing.T) {
	rec := Get("s")
	defer rec.Release()
	rec.SetData("id", int64(1))

	data, err := rec.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":1`)
	assert.Contains(t, string(data), `"source":"s"`)
}
