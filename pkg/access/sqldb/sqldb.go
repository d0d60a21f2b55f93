// Package sqldb adapts database/sql to the access-layer contract of the
// connectivity core. It opens connections from a bare driver value without
// touching the global database/sql registry, and exposes query results as
// metadata plus a forward-only cursor whose rows satisfy the mapper's
// accessor surface.
package sqldb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ailegion/database-plugins/pkg/access"
	"github.com/ailegion/database-plugins/pkg/dberrors"
	"github.com/ailegion/database-plugins/pkg/driverreg"
	"github.com/ailegion/database-plugins/pkg/sqltype"
)

// Open builds a *sql.DB on top of a bare driver and DSN. The driver is not
// registered globally; connection pooling stays with database/sql.
func Open(d driver.Driver, dsn string) (*sql.DB, error) {
	connector, err := driverreg.NewShim(d).OpenConnector(dsn)
	if err != nil {
		return nil, dberrors.Wrap(err, dberrors.ErrorTypeConnection, "failed to build connector")
	}
	return sql.OpenDB(connector), nil
}

// Query executes a statement and wraps the rows as an access.Result.
func Query(ctx context.Context, db *sql.DB, query string, args ...interface{}) (*Result, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dberrors.Wrap(err, dberrors.ErrorTypeQuery, "failed to execute query").
			WithDetail("query", query)
	}
	meta, err := metadataFromRows(rows)
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	return &Result{
		rows:   rows,
		meta:   meta,
		cursor: &cursor{rows: rows, meta: meta},
	}, nil
}

// Result couples the result-set metadata with its row cursor.
type Result struct {
	rows   *sql.Rows
	meta   *resultMeta
	cursor *cursor
}

// Metadata returns the ordered column metadata.
func (r *Result) Metadata() sqltype.ResultMetadata { return r.meta }

// Cursor returns the forward-only row cursor.
func (r *Result) Cursor() access.Cursor { return r.cursor }

// Close releases the underlying rows.
func (r *Result) Close() error { return r.rows.Close() }

// resultMeta implements sqltype.ResultMetadata over sql.ColumnType values.
type resultMeta struct {
	names      []string
	typeNames  []string
	codes      []sqltype.TypeCode
	precisions []int64
	scales     []int64
}

func (m *resultMeta) ColumnCount() int            { return len(m.names) }
func (m *resultMeta) ColumnName(i int) string     { return m.names[i] }
func (m *resultMeta) ColumnTypeName(i int) string { return m.typeNames[i] }
func (m *resultMeta) ColumnCode(i int) sqltype.TypeCode {
	return m.codes[i]
}
func (m *resultMeta) Precision(i int) int64 { return m.precisions[i] }
func (m *resultMeta) Scale(i int) int64     { return m.scales[i] }

func metadataFromRows(rows *sql.Rows) (*resultMeta, error) {
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, dberrors.Wrap(err, dberrors.ErrorTypeDataAccess, "failed to read column metadata")
	}
	meta := &resultMeta{
		names:      make([]string, len(columnTypes)),
		typeNames:  make([]string, len(columnTypes)),
		codes:      make([]sqltype.TypeCode, len(columnTypes)),
		precisions: make([]int64, len(columnTypes)),
		scales:     make([]int64, len(columnTypes)),
	}
	for i, ct := range columnTypes {
		meta.names[i] = ct.Name()
		meta.typeNames[i] = ct.DatabaseTypeName()
		meta.codes[i] = TypeCodeForName(ct.DatabaseTypeName())
		if precision, scale, ok := ct.DecimalSize(); ok {
			meta.precisions[i] = precision
			meta.scales[i] = scale
		}
	}
	return meta, nil
}

// TypeCodeForName maps a vendor type name reported by a database/sql driver
// to the numeric SQL type code used for mapper dispatch. Unknown names map
// to Other, which the mapper passes through unchanged.
func TypeCodeForName(name string) sqltype.TypeCode {
	switch strings.ToUpper(name) {
	case "TINYINT":
		return sqltype.TinyInt
	case "SMALLINT", "INT2":
		return sqltype.SmallInt
	case "INT", "INTEGER", "MEDIUMINT", "INT4":
		return sqltype.Integer
	case "BIGINT", "INT8":
		return sqltype.BigInt
	case "DECIMAL", "NUMERIC", "FIXED":
		return sqltype.Decimal
	case "REAL":
		return sqltype.Real
	case "FLOAT":
		return sqltype.Float
	case "DOUBLE", "DOUBLE PRECISION":
		return sqltype.Double
	case "CHAR":
		return sqltype.Char
	case "VARCHAR":
		return sqltype.VarChar
	case "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT":
		return sqltype.LongVarChar
	case "NCHAR":
		return sqltype.NChar
	case "NVARCHAR":
		return sqltype.NVarChar
	case "DATE":
		return sqltype.Date
	case "TIME":
		return sqltype.Time
	case "DATETIME", "TIMESTAMP", "TIMESTAMP_NTZ", "TIMESTAMP_LTZ", "TIMESTAMP_TZ":
		return sqltype.Timestamp
	case "BINARY":
		return sqltype.Binary
	case "VARBINARY":
		return sqltype.VarBinary
	case "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BYTEA":
		return sqltype.Blob
	case "CLOB":
		return sqltype.Clob
	case "ROWID", "UROWID":
		return sqltype.RowID
	case "BOOLEAN", "BOOL":
		return sqltype.Boolean
	case "BIT":
		return sqltype.Bit
	default:
		return sqltype.Other
	}
}

// cursor implements access.Cursor over *sql.Rows.
type cursor struct {
	rows    *sql.Rows
	meta    *resultMeta
	current sqlRow
	scanErr error
}

func (c *cursor) Next() bool {
	if c.scanErr != nil || !c.rows.Next() {
		return false
	}
	n := c.meta.ColumnCount()
	values := make([]interface{}, n)
	dests := make([]interface{}, n)
	for i := range values {
		dests[i] = &values[i]
	}
	if err := c.rows.Scan(dests...); err != nil {
		c.scanErr = dberrors.Wrap(err, dberrors.ErrorTypeDataAccess, "failed to scan row")
		return false
	}
	// database/sql drivers materialize lobs to []byte; re-wrap them so the
	// mapper sees the lob contract.
	for i := range values {
		switch c.meta.codes[i] {
		case sqltype.Blob:
			if b, ok := values[i].([]byte); ok {
				values[i] = memBlob(b)
			}
		case sqltype.Clob, sqltype.NClob:
			switch v := values[i].(type) {
			case []byte:
				values[i] = memClob(v)
			case string:
				values[i] = memClob(v)
			}
		}
	}
	c.current = sqlRow{values: values}
	return true
}

func (c *cursor) Row() sqltype.Row { return &c.current }

func (c *cursor) Err() error {
	if c.scanErr != nil {
		return c.scanErr
	}
	if err := c.rows.Err(); err != nil {
		return dberrors.Wrap(err, dberrors.ErrorTypeDataAccess, "row iteration failed")
	}
	return nil
}

func (c *cursor) Close() error { return c.rows.Close() }

// sqlRow exposes one scanned row through the mapper's accessor surface.
type sqlRow struct {
	values []interface{}
}

func (r *sqlRow) Object(i int) (interface{}, error) {
	return r.values[i], nil
}

// temporal layouts drivers commonly report when not parsing natively.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02",
	"15:04:05.999999999",
	"15:04:05",
}

func (r *sqlRow) Time(i int) (time.Time, error) {
	switch v := r.values[i].(type) {
	case time.Time:
		return v, nil
	case []byte:
		return parseTime(string(v))
	case string:
		return parseTime(v)
	}
	return time.Time{}, dberrors.Newf(dberrors.ErrorTypeDataAccess,
		"cannot interpret %T as a temporal value", r.values[i])
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, dberrors.Newf(dberrors.ErrorTypeDataAccess,
		"unrecognized temporal literal %q", s)
}

func (r *sqlRow) String(i int) (string, error) {
	switch v := r.values[i].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	}
	return fmt.Sprintf("%v", r.values[i]), nil
}

// memBlob is a fully materialized blob satisfying the lob contract.
type memBlob []byte

func (b memBlob) Length() (int64, error) { return int64(len(b)), nil }

func (b memBlob) Bytes(pos int64, n int) ([]byte, error) {
	start := pos - 1
	if start < 0 || start > int64(len(b)) {
		return nil, dberrors.Newf(dberrors.ErrorTypeDataAccess, "blob position %d out of range", pos)
	}
	end := start + int64(n)
	if end > int64(len(b)) {
		end = int64(len(b))
	}
	out := make([]byte, end-start)
	copy(out, b[start:end])
	return out, nil
}

// memClob is a fully materialized clob satisfying the lob contract.
// Length and SubString count characters, not bytes, so multibyte content
// reads the same as it would through a vendor lob handle.
type memClob string

func (c memClob) Length() (int64, error) {
	return int64(utf8.RuneCountInString(string(c))), nil
}

func (c memClob) SubString(pos int64, n int) (string, error) {
	runes := []rune(string(c))
	start := pos - 1
	if start < 0 || start > int64(len(runes)) {
		return "", dberrors.Newf(dberrors.ErrorTypeDataAccess, "clob position %d out of range", pos)
	}
	end := start + int64(n)
	if end > int64(len(runes)) {
		end = int64(len(runes))
	}
	return string(runes[start:end]), nil
}
