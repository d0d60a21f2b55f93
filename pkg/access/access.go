// Package access defines the upstream relational access surface consumed by
// the connectivity core: a forward-only row cursor whose rows expose the
// generic and type-specific accessors the mapper needs. Implementations
// adapt a concrete driver stack; see the sqldb sub-package for the
// database/sql adapter.
package access

import (
	"github.com/ailegion/database-plugins/pkg/sqltype"
)

// Cursor is a forward-only row cursor over a query result. Next advances to
// the next row; Row exposes the current row; Err reports the terminal
// iteration error after Next returns false. Close releases the underlying
// statement resources.
type Cursor interface {
	Next() bool
	Row() sqltype.Row
	Err() error
	Close() error
}

// Result couples a cursor with the metadata of its result set.
type Result interface {
	Metadata() sqltype.ResultMetadata
	Cursor() Cursor
}
