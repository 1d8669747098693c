package executor

import (
	"github.com/tuannm99/csvsql/internal/record"
	"github.com/tuannm99/csvsql/internal/sql/opcode"
	"github.com/tuannm99/csvsql/internal/storage"
)

// Limits bounds every growable VM buffer. Exceeding one is a BUF_OVERFLOW
// error, never a silent truncation.
type Limits struct {
	StackSize   int
	MaxColumns  int // names in one column list, columns in CREATE TABLE
	MaxValues   int // literals in one VALUES tuple
	MaxAssigns  int // SET assignments and WHERE terms
	MaxRowCells int // cells parsed from one CSV record
}

func DefaultLimits() Limits {
	return Limits{
		StackSize:   256,
		MaxColumns:  32,
		MaxValues:   32,
		MaxAssigns:  128,
		MaxRowCells: record.DefaultMaxCells,
	}
}

// withDefaults fills zero fields from DefaultLimits.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.StackSize <= 0 {
		l.StackSize = d.StackSize
	}
	if l.MaxColumns <= 0 {
		l.MaxColumns = d.MaxColumns
	}
	if l.MaxValues <= 0 {
		l.MaxValues = d.MaxValues
	}
	if l.MaxAssigns <= 0 {
		l.MaxAssigns = d.MaxAssigns
	}
	if l.MaxRowCells <= 0 {
		l.MaxRowCells = d.MaxRowCells
	}
	return l
}

type clauseMode uint8

const (
	modeNone clauseMode = iota
	modeWhere
	modeSet
)

// Model is the execution state of one prepared program. It survives between
// Step calls so that a SELECT can hand out one row per call.
type Model struct {
	Dir    string
	Files  *storage.Files
	Limits Limits

	ip    int
	done  bool
	stack Stack
	mode  clauseMode

	// current statement
	op          opcode.Kind
	table       string
	path        string
	ifNotExists bool
	header      *record.Header
	defs        []record.ColumnDef
	inNames     bool
	names       []string
	star        bool
	tuples      [][]record.Value
	sets        []KeyValue
	projection  []record.ColumnType

	// scan state
	mapping   *storage.Mapping
	scanning  bool
	loopIP    int
	cursor    int
	rowStart  int
	row       record.Row
	eof       bool
	needFetch bool
	pending   []record.Row

	// SHOW TABLES
	tables   []string
	tableIdx int

	// output
	columns  []record.ColumnType
	selected []string
	changes  int64
}

// NewModel returns a model bound to the database directory dir.
func NewModel(dir string, files *storage.Files, limits Limits) *Model {
	limits = limits.withDefaults()
	return &Model{
		Dir:    dir,
		Files:  files,
		Limits: limits,
		stack:  newStack(limits.StackSize),
	}
}

// Columns describes the result columns of the statement that produced the
// latest row. TEXT columns synthesized by the VM (SHOW TABLES) carry Text.
func (m *Model) Columns() []record.ColumnType { return m.columns }

// Row returns the cells of the latest row. It is valid until the next Step.
func (m *Model) Row() []string { return m.selected }

// Changes counts rows inserted, updated or deleted since the last Reset.
func (m *Model) Changes() int64 { return m.changes }

// Done reports whether the program ran to completion.
func (m *Model) Done() bool { return m.done }

// Reset rewinds the model so the program can run again from the start.
func (m *Model) Reset() error {
	err := m.Close()
	m.ip = 0
	m.done = false
	m.changes = 0
	m.columns = nil
	m.selected = nil
	return err
}

// Close releases the mapping and the row buffers. It is idempotent.
func (m *Model) Close() error {
	var err error
	if m.mapping != nil {
		err = m.mapping.Close()
		m.mapping = nil
	}
	m.clearStatement()
	return err
}

func (m *Model) clearStatement() {
	m.stack.Reset()
	m.mode = modeNone
	m.op = opcode.OpNone
	m.table, m.path = "", ""
	m.ifNotExists = false
	m.header = nil
	m.defs = nil
	m.inNames = false
	m.names = nil
	m.star = false
	m.tuples = nil
	m.sets = nil
	m.projection = nil

	m.scanning = false
	m.loopIP = 0
	m.cursor, m.rowStart = 0, 0
	m.row = nil
	m.eof = false
	m.needFetch = false
	m.pending = nil

	m.tables = nil
	m.tableIdx = 0
}
