package executor

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tuannm99/csvsql/internal/record"
)

// Statement is the prepared statement surface Executor drives.
type Statement interface {
	Step() (bool, error)
	ColumnCount() int
	ColumnName(i int) string
	ColumnValue(i int) (any, error)
	Changes() int64
	Finalize() error
}

// PrepareFunc compiles sql into a Statement.
type PrepareFunc func(sql string) (Statement, error)

// Executor runs whole SQL texts and collects their output.
type Executor struct {
	prepare PrepareFunc
}

func NewExecutor(prepare PrepareFunc) *Executor {
	return &Executor{prepare: prepare}
}

// ExecSQL is the top-level entry: SQL string -> Result. Rows of every
// statement in the text are collected, Columns describe the last one.
func (e *Executor) ExecSQL(sql string) (*Result, error) {
	if e.prepare == nil {
		return nil, fmt.Errorf("executor: no statement preparer")
	}
	stmt, err := e.prepare(sql)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := stmt.Finalize(); err != nil {
			slog.Warn("executor: finalize", "err", err)
		}
	}()

	res := &Result{}
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, err
		}
		if !hasRow {
			break
		}
		row := make([]any, stmt.ColumnCount())
		for i := range row {
			v, err := stmt.ColumnValue(i)
			if err != nil {
				return nil, err
			}
			row[i] = v
		}
		res.Rows = append(res.Rows, row)
	}

	for i := 0; i < stmt.ColumnCount(); i++ {
		res.Columns = append(res.Columns, stmt.ColumnName(i))
	}
	res.AffectedRows = stmt.Changes()
	return res, nil
}

// CellValue converts a stored cell to a Go value: int64 for INTEGER columns
// holding an integer, string otherwise.
func CellValue(col record.ColumnType, cell string) any {
	if col.Integer {
		if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return n
		}
	}
	return cell
}
