// Package sqltype implements the type-mapping core of the database
// connectivity layer. It converts SQL column metadata and raw driver values
// into canonical tagged values, and reconciles requested column lists
// against actual result-set metadata.
package sqltype

// TypeCode is the numeric SQL type code reported by the access layer for a
// column. The values follow the standard SQL type code assignments so that
// codes surfaced by wire protocols can be carried through unchanged.
type TypeCode int

const (
	Bit           TypeCode = -7
	TinyInt       TypeCode = -6
	SmallInt      TypeCode = 5
	Integer       TypeCode = 4
	BigInt        TypeCode = -5
	Float         TypeCode = 6
	Real          TypeCode = 7
	Double        TypeCode = 8
	Numeric       TypeCode = 2
	Decimal       TypeCode = 3
	Char          TypeCode = 1
	VarChar       TypeCode = 12
	LongVarChar   TypeCode = -1
	NChar         TypeCode = -15
	NVarChar      TypeCode = -9
	LongNVarChar  TypeCode = -16
	Date          TypeCode = 91
	Time          TypeCode = 92
	Timestamp     TypeCode = 93
	Binary        TypeCode = -2
	VarBinary     TypeCode = -3
	LongVarBinary TypeCode = -4
	Null          TypeCode = 0
	Other         TypeCode = 1111
	Blob          TypeCode = 2004
	Clob          TypeCode = 2005
	NClob         TypeCode = 2011
	RowID         TypeCode = -8
	Boolean       TypeCode = 16
)

// ColumnType describes one matched column of a result set. It is created
// once per query by MatchColumns and consumed by Transform for every row.
type ColumnType struct {
	// Name is the column name as requested by the caller.
	Name string
	// TypeName is the vendor-specific type name, carried for diagnostics.
	TypeName string
	// Code is the numeric SQL type code used for mapper dispatch.
	Code TypeCode
	// Ordinal is the 0-based position of the column in the result set.
	Ordinal int
	// Precision and Scale are the driver-reported numeric metadata.
	Precision int64
	Scale     int64
}

// ResultMetadata exposes the ordered column metadata of a result set.
// Positions are 0-based here; access-layer implementations translate from
// 1-based wire ordinals.
type ResultMetadata interface {
	ColumnCount() int
	ColumnName(i int) string
	ColumnTypeName(i int) string
	ColumnCode(i int) TypeCode
	Precision(i int) int64
	Scale(i int) int64
}
