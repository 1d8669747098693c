// Package opcode defines the flat bytecode the executor runs and compiles
// parsed statements into it.
package opcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tuannm99/csvsql/internal/record"
)

// Kind is an instruction kind. Statement and clause bodies are bracketed by
// *_BEG / *_END pairs.
type Kind uint8

const (
	OpNone Kind = iota

	OpCreateTableBeg
	OpCreateTableEnd
	OpSelectBeg
	OpSelectEnd
	OpInsertBeg
	OpInsertEnd
	OpUpdateBeg
	OpUpdateEnd
	OpDeleteBeg
	OpDeleteEnd
	OpShowTablesBeg
	OpShowTablesEnd

	OpColumnNamesBeg
	OpColumnNamesEnd
	OpValuesBeg
	OpValuesEnd
	OpWhereBeg
	OpWhereEnd
	OpUpdateSetBeg
	OpUpdateSetEnd

	OpIdent       // push identifier
	OpStringValue // push string literal
	OpIntValue    // push integer literal
	OpDoubleValue // push float literal
	OpColumnDef   // column definition of CREATE TABLE
	OpAssign      // pop rhs and lhs: compare (WHERE) or build key/value (SET)
	OpStar        // '*' projection
	OpPlaceholder // unbound '?'
)

var kindNames = [...]string{
	OpNone:           "NONE",
	OpCreateTableBeg: "CREATE_TABLE_BEG",
	OpCreateTableEnd: "CREATE_TABLE_END",
	OpSelectBeg:      "SELECT_BEG",
	OpSelectEnd:      "SELECT_END",
	OpInsertBeg:      "INSERT_BEG",
	OpInsertEnd:      "INSERT_END",
	OpUpdateBeg:      "UPDATE_BEG",
	OpUpdateEnd:      "UPDATE_END",
	OpDeleteBeg:      "DELETE_BEG",
	OpDeleteEnd:      "DELETE_END",
	OpShowTablesBeg:  "SHOW_TABLES_BEG",
	OpShowTablesEnd:  "SHOW_TABLES_END",
	OpColumnNamesBeg: "COLUMN_NAMES_BEG",
	OpColumnNamesEnd: "COLUMN_NAMES_END",
	OpValuesBeg:      "VALUES_BEG",
	OpValuesEnd:      "VALUES_END",
	OpWhereBeg:       "WHERE_BEG",
	OpWhereEnd:       "WHERE_END",
	OpUpdateSetBeg:   "UPDATE_SET_BEG",
	OpUpdateSetEnd:   "UPDATE_SET_END",
	OpIdent:          "IDENT",
	OpStringValue:    "STRING_VALUE",
	OpIntValue:       "INT_VALUE",
	OpDoubleValue:    "DOUBLE_VALUE",
	OpColumnDef:      "COLUMN_DEF",
	OpAssign:         "ASSIGN",
	OpStar:           "STAR",
	OpPlaceholder:    "PLACE_HOLDER",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// End returns the closing kind of a *_BEG kind, or OpNone.
func (k Kind) End() Kind {
	switch k {
	case OpCreateTableBeg, OpSelectBeg, OpInsertBeg, OpUpdateBeg, OpDeleteBeg, OpShowTablesBeg,
		OpColumnNamesBeg, OpValuesBeg, OpWhereBeg, OpUpdateSetBeg:
		return k + 1
	}
	return OpNone
}

// Operand is the payload of an instruction.
type Operand interface {
	operand()
	String() string
}

type Table struct {
	Name        string
	IfNotExists bool
}

type Ident struct{ Name string }

// Str is a string literal. A statically bound parameter keeps a reference to
// the caller's buffer and reads it at execution time.
type Str struct {
	Value  string
	static []byte
}

type Int struct{ Value int64 }

type Double struct{ Value float64 }

type Column struct{ Def record.ColumnDef }

func (Table) operand()  {}
func (Ident) operand()  {}
func (Str) operand()    {}
func (Int) operand()    {}
func (Double) operand() {}
func (Column) operand() {}

func (t Table) String() string {
	if t.IfNotExists {
		return t.Name + " IF NOT EXISTS"
	}
	return t.Name
}
func (i Ident) String() string  { return i.Name }
func (s Str) String() string    { return strconv.Quote(s.Text()) }
func (i Int) String() string    { return strconv.FormatInt(i.Value, 10) }
func (d Double) String() string { return strconv.FormatFloat(d.Value, 'g', -1, 64) }
func (c Column) String() string { return c.Def.String() }

// Text returns the literal's current text.
func (s Str) Text() string {
	if s.static != nil {
		return string(s.static)
	}
	return s.Value
}

// Instr is one bytecode instruction.
type Instr struct {
	Kind    Kind
	Operand Operand
	// Param is the 1-based placeholder ordinal this slot was compiled from,
	// 0 for ordinary instructions. It survives binding.
	Param int
}

func (in Instr) String() string {
	var b strings.Builder
	b.WriteString(in.Kind.String())
	if in.Operand != nil {
		b.WriteByte(' ')
		b.WriteString(in.Operand.String())
	}
	if in.Param > 0 {
		fmt.Fprintf(&b, " ?%d", in.Param)
	}
	return b.String()
}

// Value converts a literal instruction to a record value.
func (in Instr) Value() (record.Value, bool) {
	switch in.Kind {
	case OpIntValue:
		return record.IntValue(in.Operand.(Int).Value), true
	case OpDoubleValue:
		return record.DoubleValue(in.Operand.(Double).Value), true
	case OpStringValue:
		return record.StringValue(in.Operand.(Str).Text()), true
	case OpPlaceholder:
		return record.Value{Kind: record.ValuePlaceholder}, true
	}
	return record.Value{}, false
}
