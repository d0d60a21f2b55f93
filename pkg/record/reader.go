package record

import (
	"github.com/ailegion/database-plugins/pkg/access"
	"github.com/ailegion/database-plugins/pkg/dberrors"
	"github.com/ailegion/database-plugins/pkg/metrics"
	"github.com/ailegion/database-plugins/pkg/sqltype"
)

// Reader assembles records from a row cursor using a matched column list.
// Every cell goes through the type mapper; the record field name is the
// expected column name from matching, not the raw result-set label.
type Reader struct {
	source  string
	columns []sqltype.ColumnType
	cursor  access.Cursor
}

// NewReader builds a reader over the given cursor. The column list must come
// from column matching against the cursor's result metadata.
func NewReader(source string, columns []sqltype.ColumnType, cursor access.Cursor) *Reader {
	return &Reader{source: source, columns: columns, cursor: cursor}
}

// Next assembles the next record. It returns nil, nil when the cursor is
// exhausted. The caller owns the returned record and must Release it.
func (r *Reader) Next() (*Record, error) {
	if !r.cursor.Next() {
		if err := r.cursor.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	row := r.cursor.Row()
	rec := Get(r.source)
	for _, col := range r.columns {
		v, err := sqltype.Transform(row, col.Ordinal, col)
		if err != nil {
			rec.Release()
			return nil, dberrors.Wrap(err, dberrors.ErrorTypeDataAccess, "failed to map row cell").
				WithDetail("column", col.Name)
		}
		metrics.CellsMapped.WithLabelValues(v.Kind().String()).Inc()
		rec.SetData(col.Name, v.Go())
	}
	metrics.RowsMapped.WithLabelValues(r.source).Inc()
	return rec, nil
}

// ReadAll drains the cursor into a slice of records.
func (r *Reader) ReadAll() ([]*Record, error) {
	var out []*Record
	for {
		rec, err := r.Next()
		if err != nil {
			for _, prev := range out {
				prev.Release()
			}
			return nil, err
		}
		if rec == nil {
			return out, nil
		}
		out = append(out, rec)
	}
}

// Close closes the underlying cursor.
func (r *Reader) Close() error { return r.cursor.Close() }
