package sqldb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailegion/database-plugins/pkg/sqltype"
)

func TestTypeCodeForName(t *testing.T) {
	cases := map[string]sqltype.TypeCode{
		"TINYINT":       sqltype.TinyInt,
		"SMALLINT":      sqltype.SmallInt,
		"INT":           sqltype.Integer,
		"BIGINT":        sqltype.BigInt,
		"DECIMAL":       sqltype.Decimal,
		"NUMERIC":       sqltype.Decimal,
		"DOUBLE":        sqltype.Double,
		"VARCHAR":       sqltype.VarChar,
		"TEXT":          sqltype.LongVarChar,
		"DATE":          sqltype.Date,
		"TIME":          sqltype.Time,
		"DATETIME":      sqltype.Timestamp,
		"TIMESTAMP_NTZ": sqltype.Timestamp,
		"LONGBLOB":      sqltype.Blob,
		"CLOB":          sqltype.Clob,
		"ROWID":         sqltype.RowID,
		"GEOMETRY":      sqltype.Other,
	}
	for name, want := range cases {
		assert.Equal(t, want, TypeCodeForName(name), name)
	}

	// Vendor names come back in mixed case from some drivers.
	assert.Equal(t, sqltype.VarChar, TypeCodeForName("varchar"))
}

func TestSQLRowTimeAcceptsNativeAndTextual(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	row := &sqlRow{values: []interface{}{
		want,
		[]byte("2024-05-01 10:30:00"),
		"2024-05-01",
	}}

	got, err := row.Time(0)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = row.Time(1)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = row.Time(2)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = row.Time(0)
	require.NoError(t, err)
}

func TestSQLRowTimeRejectsNonTemporal(t *testing.T) {
	row := &sqlRow{values: []interface{}{int64(42), "not a date"}}

	_, err := row.Time(0)
	assert.Error(t, err)
	_, err = row.Time(1)
	assert.Error(t, err)
}

func TestSQLRowStringStringifies(t *testing.T) {
	row := &sqlRow{values: []interface{}{"plain", []byte("bytes"), int64(7), nil}}

	for i, want := range []string{"plain", "bytes", "7", ""} {
		got, err := row.String(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMemBlobChunkedReads(t *testing.T) {
	blob := memBlob("abcdefghij")

	n, err := blob.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	// Lob positions are 1-based.
	head, err := blob.Bytes(1, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), head)

	tail, err := blob.Bytes(9, 100)
	require.NoError(t, err)
	assert.Equal(t, []byte("ij"), tail)

	_, err = blob.Bytes(0, 1)
	assert.Error(t, err)
}

func TestMemClobCountsCharactersNotBytes(t *testing.T) {
	clob := memClob("héllo wörld")

	n, err := clob.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(11), n, "length is in characters, not bytes")

	s, err := clob.SubString(7, 5)
	require.NoError(t, err)
	assert.Equal(t, "wörld", s)

	// A full length-prefixed read round-trips multibyte content.
	full, err := clob.SubString(1, int(n))
	require.NoError(t, err)
	assert.Equal(t, "héllo wörld", full)
}

func TestMemClobSubString(t *testing.T) {
	clob := memClob("hello world")

	n, err := clob.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)

	s, err := clob.SubString(7, 5)
	require.NoError(t, err)
	assert.Equal(t, "world", s)
}

func TestLobAdaptersSatisfyMapperContract(t *testing.T) {
	var _ sqltype.BlobReader = memBlob(nil)
	var _ sqltype.ClobReader = memClob("")
}
