package executor

// Result collects every row of a statement list. Cells are converted with
// CellValue. AffectedRows is the change count of the last statement.
type Result struct {
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`

	AffectedRows int64 `json:"affected_rows"`
}

// HasRows reports whether the last statement produced a result set, even an
// empty one.
func (r *Result) HasRows() bool { return r != nil && len(r.Columns) > 0 }
