package driver

import (
	"context"
	"database/sql/driver"
	"io"
	"strings"

	"github.com/tuannm99/csvsql/internal/engine"
)

// Stmt implements driver.Stmt with context variants. The engine runs
// synchronously, so ctx is checked between steps.
type Stmt struct {
	st     *engine.Stmt
	closed bool
}

func (s *Stmt) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.st.Finalize()
}

func (s *Stmt) NumInput() int {
	return s.st.NumParams()
}

func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), valuesToNamed(args))
}

func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), valuesToNamed(args))
}

func (s *Stmt) start(args []driver.NamedValue) error {
	if s.closed {
		return driver.ErrBadConn
	}
	if err := s.st.Reset(); err != nil {
		return err
	}
	s.st.ClearBindings()
	return bindArgs(s.st, args)
}

func (s *Stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	if err := s.start(args); err != nil {
		return nil, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		more, err := s.st.Step()
		if err != nil {
			return nil, err
		}
		if !more {
			return Result{rowsAffected: s.st.Changes()}, nil
		}
	}
}

// QueryContext steps once before returning so the column list is known.
func (s *Stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if err := s.start(args); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	more, err := s.st.Step()
	if err != nil {
		return nil, err
	}
	return &Rows{ctx: ctx, st: s.st, pending: more, done: !more}, nil
}

// CheckNamedValue accepts every argument; bindArgs converts it.
func (s *Stmt) CheckNamedValue(nv *driver.NamedValue) error {
	return nil
}

func valuesToNamed(args []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(args))
	for i, v := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}

// Rows implements driver.Rows over a running statement.
type Rows struct {
	ctx     context.Context
	st      *engine.Stmt
	pending bool // a row is ready from the previous Step
	done    bool
}

func (r *Rows) Columns() []string {
	n := r.st.ColumnCount()
	cols := make([]string, n)
	for i := range cols {
		cols[i] = r.st.ColumnName(i)
	}
	return cols
}

// Close rewinds the statement so it can run again.
func (r *Rows) Close() error {
	r.done = true
	return r.st.Reset()
}

func (r *Rows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	if !r.pending {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		more, err := r.st.Step()
		if err != nil {
			return err
		}
		if !more {
			r.done = true
			return io.EOF
		}
	}
	r.pending = false
	for i := range dest {
		v, err := r.st.ColumnValue(i)
		if err != nil {
			return err
		}
		dest[i] = v
	}
	return nil
}

// ColumnTypeDatabaseTypeName is INTEGER or TEXT.
func (r *Rows) ColumnTypeDatabaseTypeName(i int) string {
	if strings.HasPrefix(r.st.ColumnDeclType(i), "INTEGER") {
		return "INTEGER"
	}
	return "TEXT"
}

var (
	_ driver.Stmt                           = &Stmt{}
	_ driver.StmtExecContext                = &Stmt{}
	_ driver.StmtQueryContext               = &Stmt{}
	_ driver.NamedValueChecker              = &Stmt{}
	_ driver.Rows                           = &Rows{}
	_ driver.RowsColumnTypeDatabaseTypeName = &Rows{}
)
