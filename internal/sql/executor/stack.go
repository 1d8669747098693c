package executor

import (
	"fmt"

	"github.com/tuannm99/csvsql/internal/record"
	"github.com/tuannm99/csvsql/internal/sqlerr"
)

// ElemKind tags a StackElem.
type ElemKind uint8

const (
	ElemNone ElemKind = iota
	ElemString
	ElemInt
	ElemDouble
	ElemBool
	ElemIdent
	ElemStar
	ElemKeyValue

	// scope markers pushed by *_BEG
	ElemColumnNamesBeg
	ElemValuesBeg
	ElemUpdateSetBeg
	ElemWhereBeg
)

var elemNames = [...]string{
	ElemNone:           "NONE",
	ElemString:         "STRING",
	ElemInt:            "INT",
	ElemDouble:         "DOUBLE",
	ElemBool:           "BOOL",
	ElemIdent:          "IDENT",
	ElemStar:           "STAR",
	ElemKeyValue:       "KEY_VALUE",
	ElemColumnNamesBeg: "COLUMN_NAMES_BEG",
	ElemValuesBeg:      "VALUES_BEG",
	ElemUpdateSetBeg:   "UPDATE_SET_BEG",
	ElemWhereBeg:       "WHERE_BEG",
}

func (k ElemKind) String() string {
	if int(k) < len(elemNames) {
		return elemNames[k]
	}
	return fmt.Sprintf("ElemKind(%d)", uint8(k))
}

// KeyValue is one SET assignment.
type KeyValue struct {
	Key   string
	Value record.Value
}

// StackElem is one VM stack slot. Which payload field is meaningful depends
// on Kind.
type StackElem struct {
	Kind ElemKind
	Str  string // ElemString, ElemIdent
	Int  int64
	Dbl  float64
	Bool bool
	KV   KeyValue
}

func identElem(name string) StackElem { return StackElem{Kind: ElemIdent, Str: name} }
func boolElem(b bool) StackElem       { return StackElem{Kind: ElemBool, Bool: b} }
func markerElem(k ElemKind) StackElem { return StackElem{Kind: k} }

func valueElem(v record.Value) (StackElem, error) {
	switch v.Kind {
	case record.ValueInt:
		return StackElem{Kind: ElemInt, Int: v.Int}, nil
	case record.ValueDouble:
		return StackElem{Kind: ElemDouble, Dbl: v.Double}, nil
	case record.ValueString:
		return StackElem{Kind: ElemString, Str: v.Str}, nil
	case record.ValuePlaceholder:
		return StackElem{}, sqlerr.New(sqlerr.KindExec, "found place holder")
	default:
		return StackElem{}, sqlerr.New(sqlerr.KindExec, "invalid value kind %s", v.Kind)
	}
}

// Value converts a literal element back to a record value.
func (e StackElem) Value() (record.Value, bool) {
	switch e.Kind {
	case ElemInt:
		return record.IntValue(e.Int), true
	case ElemDouble:
		return record.DoubleValue(e.Dbl), true
	case ElemString:
		return record.StringValue(e.Str), true
	}
	return record.Value{}, false
}

// Stack is the bounded VM operand stack.
type Stack struct {
	elems []StackElem
	limit int
}

func newStack(limit int) Stack {
	return Stack{elems: make([]StackElem, 0, min(limit, 64)), limit: limit}
}

func (s *Stack) Len() int { return len(s.elems) }

func (s *Stack) Push(e StackElem) error {
	if len(s.elems) >= s.limit {
		return sqlerr.New(sqlerr.KindBufOverflow, "stack overflow (limit %d)", s.limit)
	}
	s.elems = append(s.elems, e)
	return nil
}

func (s *Stack) Pop() (StackElem, error) {
	if len(s.elems) == 0 {
		return StackElem{}, sqlerr.New(sqlerr.KindExec, "stack underflow")
	}
	e := s.elems[len(s.elems)-1]
	s.elems = s.elems[:len(s.elems)-1]
	return e, nil
}

// Top returns the top element without popping, ok=false on an empty stack.
func (s *Stack) Top() (StackElem, bool) {
	if len(s.elems) == 0 {
		return StackElem{}, false
	}
	return s.elems[len(s.elems)-1], true
}

// PopGroup pops everything above marker and the marker itself, returning the
// group in push order. At most max elements are accepted.
func (s *Stack) PopGroup(marker ElemKind, max int) ([]StackElem, error) {
	i := len(s.elems) - 1
	for i >= 0 && s.elems[i].Kind != marker {
		i--
	}
	if i < 0 {
		return nil, sqlerr.New(sqlerr.KindExec, "stack underflow: %s marker not found", marker)
	}
	n := len(s.elems) - i - 1
	if n > max {
		return nil, sqlerr.New(sqlerr.KindBufOverflow, "too many elements in %s scope: %d > %d", marker, n, max)
	}
	group := make([]StackElem, n)
	copy(group, s.elems[i+1:])
	s.elems = s.elems[:i]
	return group, nil
}

func (s *Stack) Reset() { s.elems = s.elems[:0] }
