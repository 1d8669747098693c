// Package csvsql is an embeddable SQL engine that keeps every table as a CSV
// file in one directory.
//
//	db, err := csvsql.Open("test_db")
//	st, err := db.Prepare("SELECT name FROM users WHERE id = ?")
//	err = st.BindInt(1, 2)
//	for ok, err := st.Step(); ok && err == nil; ok, err = st.Step() {
//		name, _ := st.ColumnText(0)
//	}
//	_ = st.Finalize()
package csvsql

import (
	"github.com/spf13/afero"

	"github.com/tuannm99/csvsql/internal/engine"
	"github.com/tuannm99/csvsql/internal/sql/executor"
	"github.com/tuannm99/csvsql/internal/sqlerr"
)

type (
	Database  = engine.Database
	Stmt      = engine.Stmt
	Option    = engine.Option
	Ownership = engine.Ownership
	Limits    = executor.Limits
	Result    = executor.Result
	Error     = sqlerr.Error
	ErrorKind = sqlerr.Kind
)

const (
	Transient = engine.Transient
	Static    = engine.Static
)

var (
	ErrDatabaseClosed = engine.ErrDatabaseClosed
	ErrStmtFinalized  = engine.ErrStmtFinalized

	ErrMem             = sqlerr.ErrMem
	ErrBufOverflow     = sqlerr.ErrBufOverflow
	ErrTokenize        = sqlerr.ErrTokenize
	ErrSyntax          = sqlerr.ErrSyntax
	ErrExec            = sqlerr.ErrExec
	ErrFileIO          = sqlerr.ErrFileIO
	ErrIndexOutOfRange = sqlerr.ErrIndexOutOfRange
)

// Open returns a handle on the database directory dir.
func Open(dir string, opts ...Option) (*Database, error) {
	return engine.Open(dir, opts...)
}

func WithFS(fs afero.Fs) Option  { return engine.WithFS(fs) }
func WithLimits(l Limits) Option { return engine.WithLimits(l) }
func WithCreateDir() Option      { return engine.WithCreateDir() }
func WithStmtCache(n int) Option { return engine.WithStmtCache(n) }
func DefaultLimits() Limits      { return executor.DefaultLimits() }
func KindOf(err error) ErrorKind { return sqlerr.KindOf(err) }
