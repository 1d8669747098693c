package engine

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/spf13/afero"

	"github.com/tuannm99/csvsql/internal/sql/executor"
	"github.com/tuannm99/csvsql/internal/sql/opcode"
	"github.com/tuannm99/csvsql/internal/sql/parser"
	"github.com/tuannm99/csvsql/internal/sqlerr"
	"github.com/tuannm99/csvsql/internal/storage"
	"github.com/tuannm99/csvsql/pkg/cache"
)

var (
	ErrDatabaseClosed = errors.New("csvsql: database is closed")
	ErrStmtFinalized  = errors.New("csvsql: statement is finalized")
)

const DefaultStmtCacheSize = 64

type options struct {
	fs        afero.Fs
	limits    executor.Limits
	createDir bool
	cacheSize int
}

type Option func(*options)

// WithFS runs the database on fs instead of the OS filesystem. Only OS
// backed files are memory mapped.
func WithFS(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

func WithLimits(l executor.Limits) Option {
	return func(o *options) { o.limits = l }
}

// WithCreateDir creates the database directory when it is missing.
func WithCreateDir() Option {
	return func(o *options) { o.createDir = true }
}

// WithStmtCache sets how many compiled programs are kept per handle. Zero
// disables the cache.
func WithStmtCache(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// Database is a handle on one directory of CSV tables.
type Database struct {
	Dir string

	files  *storage.Files
	limits executor.Limits
	progs  *cache.LRU[string, *opcode.Program]

	mu     sync.Mutex
	closed bool
}

// Open returns a handle on dir. The directory must exist unless
// WithCreateDir is given.
func Open(dir string, opts ...Option) (*Database, error) {
	o := options{limits: executor.DefaultLimits(), cacheSize: DefaultStmtCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	files := storage.NewFiles(o.fs)
	if !files.Exists(dir) {
		if !o.createDir {
			return nil, sqlerr.New(sqlerr.KindFileIO, "database directory %s does not exist", dir)
		}
		if err := files.MkdirAll(dir); err != nil {
			return nil, err
		}
	}
	if !files.IsDir(dir) {
		return nil, sqlerr.New(sqlerr.KindFileIO, "%s is not a directory", dir)
	}

	slog.Debug("engine: open database", "dir", dir)
	return &Database{
		Dir:    dir,
		files:  files,
		limits: o.limits,
		progs:  cache.NewLRU[string, *opcode.Program](o.cacheSize),
	}, nil
}

func (db *Database) isClosed() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.closed
}

// Prepare compiles sql into a statement. sql may hold several statements
// separated by ';', they run in order.
func (db *Database) Prepare(sql string) (*Stmt, error) {
	if db.isClosed() {
		return nil, ErrDatabaseClosed
	}

	prog, ok := db.progs.Get(sql)
	if !ok {
		list, err := parser.Parse(sql)
		if err != nil {
			return nil, err
		}
		prog, err = opcode.Compile(list)
		if err != nil {
			return nil, err
		}
		if err := prog.Validate(); err != nil {
			return nil, err
		}
		db.progs.Put(sql, prog)
	}
	slog.Debug("engine: prepare", "sql", sql, "cached", ok, "instrs", len(prog.Instrs))

	return &Stmt{
		db:    db,
		sql:   sql,
		prog:  prog.Clone(),
		model: executor.NewModel(db.Dir, db.files, db.limits),
	}, nil
}

// Exec runs sql to completion, discarding rows, and returns the number of
// rows changed.
func (db *Database) Exec(sql string) (int64, error) {
	st, err := db.Prepare(sql)
	if err != nil {
		return 0, err
	}
	defer db.finalize(st)

	for {
		more, err := st.Step()
		if err != nil {
			return 0, err
		}
		if !more {
			return st.Changes(), nil
		}
	}
}

// ExecSQL runs sql and collects every row.
func (db *Database) ExecSQL(sql string) (*executor.Result, error) {
	return executor.NewExecutor(func(sql string) (executor.Statement, error) {
		st, err := db.Prepare(sql)
		if err != nil {
			return nil, err
		}
		return st, nil
	}).ExecSQL(sql)
}

// Tables lists the table names in the database directory.
func (db *Database) Tables() ([]string, error) {
	if db.isClosed() {
		return nil, ErrDatabaseClosed
	}
	return db.files.ListTables(db.Dir)
}

func (db *Database) finalize(st *Stmt) {
	if err := st.Finalize(); err != nil {
		slog.Warn("engine: finalize", "sql", st.sql, "err", err)
	}
}

// Close marks the handle closed. Statements prepared from it fail with
// ErrDatabaseClosed on their next Step.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true
	db.progs.Purge()
	return nil
}
