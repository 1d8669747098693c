package record

import (
	"strings"

	"github.com/tuannm99/csvsql/internal/sqlerr"
)

// ModeColumn is the hidden first header cell. Its per-row value is the
// deletion flag.
const ModeColumn = "__MODE__"

// Row deletion flags stored in cell 0.
const (
	FlagLive    = "0"
	FlagDeleted = "1"
)

// Row is one parsed CSV record, cell 0 being the deletion flag.
type Row []string

// Deleted reports whether the row carries the deletion flag.
func (r Row) Deleted() bool {
	return len(r) > 0 && r[0] == FlagDeleted
}

// Clone returns a copy that does not share backing storage with r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// ColumnType describes one header cell, "name TYPE [PRIMARY KEY] ...".
type ColumnType struct {
	Name  string
	Def   string // everything after the name, as written in the header
	Index int

	Integer       bool
	Text          bool
	PrimaryKey    bool
	Autoincrement bool
	NotNull       bool
	Nullable      bool
}

// ColumnDef is the header form of a declared column.
type ColumnDef struct {
	Name          string
	Integer       bool
	PrimaryKey    bool
	Autoincrement bool
	NotNull       bool
}

// String renders the definition the way CREATE TABLE writes it.
func (d ColumnDef) String() string {
	var b strings.Builder
	b.WriteString(d.Name)
	if d.Integer {
		b.WriteString(" INTEGER")
	} else {
		b.WriteString(" TEXT")
	}
	if d.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if d.Autoincrement {
		b.WriteString(" AUTOINCREMENT")
	}
	if d.NotNull {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}

// Header is the parsed first line of a table file.
type Header struct {
	Columns []ColumnType
}

// NewHeaderRow builds the header record for a new table.
func NewHeaderRow(defs []ColumnDef) Row {
	row := make(Row, 0, len(defs)+1)
	row = append(row, ModeColumn)
	for _, d := range defs {
		row = append(row, d.String())
	}
	return row
}

// ParseHeader interprets a header record. Cell 0 must be __MODE__.
func ParseHeader(row Row) (*Header, error) {
	if len(row) == 0 || row[0] != ModeColumn {
		return nil, sqlerr.New(sqlerr.KindExec, "invalid table header: first column is not %s", ModeColumn)
	}

	h := &Header{Columns: make([]ColumnType, 0, len(row))}
	h.Columns = append(h.Columns, ColumnType{Name: ModeColumn, Index: 0, Integer: true})

	for i := 1; i < len(row); i++ {
		name, def, ok := strings.Cut(strings.TrimSpace(row[i]), " ")
		if !ok || name == "" {
			return nil, sqlerr.New(sqlerr.KindExec, "invalid header column %q", row[i])
		}
		ct := ColumnType{Name: name, Def: strings.TrimSpace(def), Index: i}
		parseTypeDef(&ct)
		if !ct.Integer && !ct.Text {
			return nil, sqlerr.New(sqlerr.KindExec, "invalid type in header column %q", row[i])
		}
		h.Columns = append(h.Columns, ct)
	}
	return h, nil
}

func parseTypeDef(ct *ColumnType) {
	words := strings.Fields(strings.ToUpper(ct.Def))
	for i := 0; i < len(words); i++ {
		switch words[i] {
		case "INTEGER":
			ct.Integer = true
		case "TEXT":
			ct.Text = true
		case "PRIMARY":
			if i+1 < len(words) && words[i+1] == "KEY" {
				ct.PrimaryKey = true
				i++
			}
		case "AUTOINCREMENT":
			ct.Autoincrement = true
		case "NOT":
			if i+1 < len(words) && words[i+1] == "NULL" {
				ct.NotNull = true
				i++
			}
		}
	}
	ct.Nullable = !ct.NotNull
}

// Find returns the column named name, ok=false when it is absent.
func (h *Header) Find(name string) (ColumnType, bool) {
	for _, c := range h.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnType{}, false
}

// FindUser is Find restricted to user columns; __MODE__ is never found.
func (h *Header) FindUser(name string) (ColumnType, bool) {
	col, ok := h.Find(name)
	if !ok || col.Index == 0 {
		return ColumnType{}, false
	}
	return col, true
}

// UserColumns returns every column except __MODE__.
func (h *Header) UserColumns() []ColumnType {
	if len(h.Columns) <= 1 {
		return nil
	}
	return h.Columns[1:]
}

// Len is the number of cells a full row has, mode column included.
func (h *Header) Len() int { return len(h.Columns) }
