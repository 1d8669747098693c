package engine

import (
	"strconv"

	"github.com/tuannm99/csvsql/internal/record"
	"github.com/tuannm99/csvsql/internal/sql/executor"
	"github.com/tuannm99/csvsql/internal/sql/opcode"
	"github.com/tuannm99/csvsql/internal/sqlerr"
)

// Ownership of a buffer passed to BindBytes.
type Ownership = opcode.Ownership

const (
	Transient = opcode.Transient
	Static    = opcode.Static
)

// Stmt is a prepared statement. It is not safe for concurrent use.
type Stmt struct {
	db        *Database
	sql       string
	prog      *opcode.Program
	model     *executor.Model
	finalized bool
}

var _ executor.Statement = (*Stmt)(nil)

func (s *Stmt) SQL() string    { return s.sql }
func (s *Stmt) NumParams() int { return s.prog.NumParams() }

// Explain lists the compiled program.
func (s *Stmt) Explain() string { return s.prog.String() }

// BindText binds the 1-based placeholder index to s.
func (s *Stmt) BindText(index int, v string) error {
	if s.finalized {
		return ErrStmtFinalized
	}
	return s.prog.BindText(index, v)
}

// BindBytes binds b as text. With Static the buffer is read at execution
// time and must not change until the statement is done.
func (s *Stmt) BindBytes(index int, b []byte, own Ownership) error {
	if s.finalized {
		return ErrStmtFinalized
	}
	return s.prog.BindBytes(index, b, own)
}

func (s *Stmt) BindInt(index int, v int64) error {
	if s.finalized {
		return ErrStmtFinalized
	}
	return s.prog.BindInt(index, v)
}

func (s *Stmt) BindDouble(index int, v float64) error {
	if s.finalized {
		return ErrStmtFinalized
	}
	return s.prog.BindDouble(index, v)
}

func (s *Stmt) ClearBindings() {
	s.prog.ClearBindings()
}

// Step runs until the next row (true) or the end of the program (false).
func (s *Stmt) Step() (bool, error) {
	if s.finalized {
		return false, ErrStmtFinalized
	}
	if s.db.isClosed() {
		return false, ErrDatabaseClosed
	}
	res, err := executor.Step(s.model, s.prog)
	if err != nil {
		return false, err
	}
	return res == executor.StepRow, nil
}

// ColumnCount is the number of result columns. It is known once the first
// Step has returned.
func (s *Stmt) ColumnCount() int { return len(s.model.Columns()) }

func (s *Stmt) column(i int) (record.ColumnType, error) {
	cols := s.model.Columns()
	if i < 0 || i >= len(cols) {
		return record.ColumnType{}, sqlerr.New(sqlerr.KindIndexOutOfRange, "column index %d out of range [0, %d)", i, len(cols))
	}
	return cols[i], nil
}

func (s *Stmt) cell(i int) (string, error) {
	if _, err := s.column(i); err != nil {
		return "", err
	}
	row := s.model.Row()
	if i >= len(row) {
		return "", sqlerr.New(sqlerr.KindIndexOutOfRange, "no current row")
	}
	return row[i], nil
}

// ColumnName returns "" when i is out of range.
func (s *Stmt) ColumnName(i int) string {
	col, err := s.column(i)
	if err != nil {
		return ""
	}
	return col.Name
}

// ColumnDeclType is the declared type and constraints, e.g. "INTEGER PRIMARY KEY".
func (s *Stmt) ColumnDeclType(i int) string {
	col, err := s.column(i)
	if err != nil {
		return ""
	}
	return col.Def
}

func (s *Stmt) ColumnText(i int) (string, error) {
	return s.cell(i)
}

// ColumnInt converts the cell to an integer. Non numeric text reads as 0 and
// a float is truncated.
func (s *Stmt) ColumnInt(i int) (int64, error) {
	c, err := s.cell(i)
	if err != nil {
		return 0, err
	}
	if n, err := strconv.ParseInt(c, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(c, 64); err == nil {
		return int64(f), nil
	}
	return 0, nil
}

// ColumnDouble converts the cell to a float. Non numeric text reads as 0.
func (s *Stmt) ColumnDouble(i int) (float64, error) {
	c, err := s.cell(i)
	if err != nil {
		return 0, err
	}
	if f, err := strconv.ParseFloat(c, 64); err == nil {
		return f, nil
	}
	return 0, nil
}

// ColumnValue returns an int64 for INTEGER cells and a string otherwise.
func (s *Stmt) ColumnValue(i int) (any, error) {
	col, err := s.column(i)
	if err != nil {
		return nil, err
	}
	c, err := s.cell(i)
	if err != nil {
		return nil, err
	}
	return executor.CellValue(col, c), nil
}

// Changes counts the rows inserted, updated or deleted since the last Reset.
func (s *Stmt) Changes() int64 { return s.model.Changes() }

// Reset rewinds the statement. Bindings are kept.
func (s *Stmt) Reset() error {
	if s.finalized {
		return ErrStmtFinalized
	}
	return s.model.Reset()
}

// Finalize releases the statement. It is safe to call more than once.
func (s *Stmt) Finalize() error {
	if s.finalized {
		return nil
	}
	s.finalized = true
	return s.model.Close()
}
