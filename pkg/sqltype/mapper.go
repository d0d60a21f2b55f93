package sqltype

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ailegion/database-plugins/pkg/dberrors"
)

// Row is the per-row accessor surface the mapper needs from the access
// layer. Object returns whatever generic form the driver produced for the
// column; the typed accessors re-fetch the cell through a type-specific
// path. Some drivers hand back lossy vendor subclasses from the generic
// accessor for temporal columns, so the mapper never trusts it for those.
type Row interface {
	Object(i int) (interface{}, error)
	Time(i int) (time.Time, error)
	String(i int) (string, error)
}

// Lob is a large object handle exposed by the access layer. Reads consume
// the underlying streaming handle; a lob can only be drained once.
type Lob interface {
	Length() (int64, error)
}

// BlobReader is a binary large object handle.
type BlobReader interface {
	Lob
	// Bytes reads n bytes starting at the 1-based position pos.
	Bytes(pos int64, n int) ([]byte, error)
}

// ClobReader is a character large object handle.
type ClobReader interface {
	Lob
	// SubString reads n characters starting at the 1-based position pos.
	SubString(pos int64, n int) (string, error)
}

// Transform converts one cell of the current row into its canonical tagged
// value, dispatching on the column's SQL type code.
//
// A nil raw value maps to null unconditionally. SMALLINT and TINYINT widen
// numerically to int32. NUMERIC and DECIMAL pass through as
// arbitrary-precision decimals with the driver-reported scale preserved.
// DATE, TIME and TIMESTAMP are re-fetched through the typed accessor. ROWID
// is stringified. BLOB and CLOB are materialized eagerly in full, which
// bounds memory by lob size. Every other code is an identity passthrough.
//
// Access-layer errors propagate unchanged; the mapper adds no error
// classification of its own.
func Transform(row Row, idx int, col ColumnType) (Value, error) {
	original, err := row.Object(idx)
	if err != nil {
		return Value{}, err
	}
	if original == nil {
		return NullValue(), nil
	}

	switch col.Code {
	case SmallInt, TinyInt:
		n, err := widenToInt32(original, col)
		if err != nil {
			return Value{}, err
		}
		return IntValue(n), nil

	case Numeric, Decimal:
		d, err := toDecimal(original, col)
		if err != nil {
			return Value{}, err
		}
		return DecimalValue(d), nil

	case Date:
		t, err := row.Time(idx)
		if err != nil {
			return Value{}, err
		}
		return DateValue(t), nil

	case Time:
		t, err := row.Time(idx)
		if err != nil {
			return Value{}, err
		}
		return TimeValue(t), nil

	case Timestamp:
		t, err := row.Time(idx)
		if err != nil {
			return Value{}, err
		}
		return TimestampValue(t), nil

	case RowID:
		s, err := row.String(idx)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil

	case Blob:
		blob, ok := original.(BlobReader)
		if !ok {
			return Value{}, dberrors.Newf(dberrors.ErrorTypeDataAccess,
				"column '%s' reported as BLOB but driver returned %T", col.Name, original)
		}
		b, err := materializeBlob(blob)
		if err != nil {
			return Value{}, err
		}
		return BytesValue(b), nil

	case Clob, NClob:
		clob, ok := original.(ClobReader)
		if !ok {
			return Value{}, dberrors.Newf(dberrors.ErrorTypeDataAccess,
				"column '%s' reported as CLOB but driver returned %T", col.Name, original)
		}
		s, err := materializeClob(clob)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	}

	return RawValue(original), nil
}

// widenToInt32 numerically widens whatever narrow numeric wrapper the driver
// produced. Reinterpreting bits is not enough: an int8 value 7 must become
// the int32 value 7.
func widenToInt32(v interface{}, col ColumnType) (int32, error) {
	switch n := v.(type) {
	case int8:
		return int32(n), nil
	case int16:
		return int32(n), nil
	case int32:
		return n, nil
	case int:
		return int32(n), nil
	case int64:
		return int32(n), nil
	case uint8:
		return int32(n), nil
	case uint16:
		return int32(n), nil
	case uint32:
		return int32(n), nil
	case uint64:
		return int32(n), nil
	case float32:
		return int32(n), nil
	case float64:
		return int32(n), nil
	}
	return 0, dberrors.Newf(dberrors.ErrorTypeDataAccess,
		"column '%s': cannot widen %T to int32", col.Name, v)
}

// toDecimal passes the driver value through as an arbitrary-precision
// decimal, keeping the scale exactly as reported rather than re-scaling.
func toDecimal(v interface{}, col ColumnType) (decimal.Decimal, error) {
	switch d := v.(type) {
	case decimal.Decimal:
		return d, nil
	case string:
		parsed, err := decimal.NewFromString(d)
		if err != nil {
			return decimal.Decimal{}, dberrors.Wrap(err, dberrors.ErrorTypeDataAccess,
				"column '"+col.Name+"': invalid decimal").WithDetail("value", d)
		}
		return parsed, nil
	case []byte:
		parsed, err := decimal.NewFromString(string(d))
		if err != nil {
			return decimal.Decimal{}, dberrors.Wrap(err, dberrors.ErrorTypeDataAccess,
				"column '"+col.Name+"': invalid decimal").WithDetail("value", string(d))
		}
		return parsed, nil
	case int64:
		return decimal.NewFromInt(d), nil
	case int32:
		return decimal.NewFromInt32(d), nil
	case float64:
		return decimal.NewFromFloat(d), nil
	}
	return decimal.Decimal{}, dberrors.Newf(dberrors.ErrorTypeDataAccess,
		"column '%s': cannot convert %T to decimal", col.Name, v)
}

// materializeBlob drains the whole blob eagerly with a length-prefixed read.
// This is a deliberate simplicity trade-off: memory is bounded by blob size
// and callers needing back-pressure must bound it externally.
func materializeBlob(b BlobReader) ([]byte, error) {
	length, err := b.Length()
	if err != nil {
		return nil, err
	}
	return b.Bytes(1, int(length))
}

func materializeClob(c ClobReader) (string, error) {
	length, err := c.Length()
	if err != nil {
		return "", err
	}
	return c.SubString(1, int(length))
}
