package export

import "iter"

// Table is a lazily generated tabular dataset. Rows may be ranged over more
// than once; each pass regenerates the rows from their source.
type Table struct {
	Title   string
	Headers []string
	// Numeric marks columns holding integer counts.
	Numeric []bool
	Rows    iter.Seq[[]string]
}

func (t Table) numeric(col int) bool {
	return col < len(t.Numeric) && t.Numeric[col]
}
