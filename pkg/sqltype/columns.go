package sqltype

import (
	"strings"

	"github.com/ailegion/database-plugins/pkg/dberrors"
)

// matchPolicy controls how expected column names are reconciled against
// result-set metadata. The default is strictly positional and
// case-insensitive: position i of the expected list must correspond to
// position i of the result set, pushing SELECT-list ordering onto the query
// author.
type matchPolicy struct {
	caseSensitive bool
	byName        bool
}

// MatchOption adjusts the column matching policy.
type MatchOption func(*matchPolicy)

// MatchCaseSensitive makes name comparison case-sensitive.
func MatchCaseSensitive() MatchOption {
	return func(p *matchPolicy) { p.caseSensitive = true }
}

// MatchByName locates each expected column anywhere in the result set
// instead of requiring positional correspondence, supporting reordered
// SELECT lists.
func MatchByName() MatchOption {
	return func(p *matchPolicy) { p.byName = true }
}

// MatchColumns reconciles the expected column list against the result-set
// metadata and returns the matched columns in expected-list order, each
// carrying the vendor type name for diagnostics and the SQL type code for
// mapper dispatch.
//
// A name mismatch is schema or table drift, a configuration error rather
// than a recoverable condition, and fails fast naming the offending column.
func MatchColumns(meta ResultMetadata, expected []string, opts ...MatchOption) ([]ColumnType, error) {
	var policy matchPolicy
	for _, opt := range opts {
		opt(&policy)
	}

	count := meta.ColumnCount()
	if len(expected) != count {
		return nil, dberrors.Newf(dberrors.ErrorTypeConfiguration,
			"expected %d columns but result set has %d", len(expected), count).
			WithDetail("expected_columns", len(expected)).
			WithDetail("result_columns", count)
	}

	columns := make([]ColumnType, 0, len(expected))
	for i, name := range expected {
		ordinal := i
		if policy.byName {
			ordinal = findColumn(meta, name, policy.caseSensitive)
			if ordinal < 0 {
				return nil, missingColumn(name)
			}
		} else if !sameName(name, meta.ColumnName(i), policy.caseSensitive) {
			return nil, missingColumn(name)
		}

		columns = append(columns, ColumnType{
			Name:      name,
			TypeName:  meta.ColumnTypeName(ordinal),
			Code:      meta.ColumnCode(ordinal),
			Ordinal:   ordinal,
			Precision: meta.Precision(ordinal),
			Scale:     meta.Scale(ordinal),
		})
	}
	return columns, nil
}

func sameName(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

func findColumn(meta ResultMetadata, name string, caseSensitive bool) int {
	for i := 0; i < meta.ColumnCount(); i++ {
		if sameName(name, meta.ColumnName(i), caseSensitive) {
			return i
		}
	}
	return -1
}

func missingColumn(name string) error {
	return dberrors.Newf(dberrors.ErrorTypeConfiguration,
		"missing column '%s' in SQL table", name).
		WithDetail("column", name)
}
