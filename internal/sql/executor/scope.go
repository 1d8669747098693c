package executor

import (
	"github.com/tuannm99/csvsql/internal/record"
	"github.com/tuannm99/csvsql/internal/sql/opcode"
	"github.com/tuannm99/csvsql/internal/sqlerr"
)

func (m *Model) columnNamesEnd() (action, error) {
	m.inNames = false
	group, err := m.stack.PopGroup(ElemColumnNamesBeg, m.Limits.MaxColumns)
	if err != nil {
		return actNext, err
	}

	names := make([]string, 0, len(group))
	star := false
	for _, e := range group {
		switch e.Kind {
		case ElemIdent:
			names = append(names, e.Str)
		case ElemStar:
			if star {
				return actNext, sqlerr.New(sqlerr.KindExec, "duplicate * in column list")
			}
			star = true
		default:
			return actNext, sqlerr.New(sqlerr.KindExec, "invalid stack element %s in column list", e.Kind)
		}
	}
	if star && len(names) > 0 {
		return actNext, sqlerr.New(sqlerr.KindExec, "* cannot be combined with other columns")
	}
	m.names = names
	m.star = star

	if m.op == opcode.OpSelectBeg {
		return actNext, m.startSelect()
	}
	return actNext, nil
}

func (m *Model) valuesEnd() error {
	group, err := m.stack.PopGroup(ElemValuesBeg, m.Limits.MaxValues)
	if err != nil {
		return err
	}
	tuple := make([]record.Value, len(group))
	for i, e := range group {
		v, ok := e.Value()
		if !ok {
			return sqlerr.New(sqlerr.KindExec, "invalid stack element %s in VALUES", e.Kind)
		}
		tuple[i] = v
	}
	m.tuples = append(m.tuples, tuple)
	return nil
}

// assign pops rhs then lhs. In WHERE it pushes the comparison result, in SET
// it pushes the key/value pair.
func (m *Model) assign() error {
	rhs, err := m.stack.Pop()
	if err != nil {
		return err
	}
	lhs, err := m.stack.Pop()
	if err != nil {
		return err
	}
	if lhs.Kind != ElemIdent {
		return sqlerr.New(sqlerr.KindExec, "invalid stack element %s on left of =", lhs.Kind)
	}
	v, ok := rhs.Value()
	if !ok {
		return sqlerr.New(sqlerr.KindExec, "invalid stack element %s on right of =", rhs.Kind)
	}

	switch m.mode {
	case modeWhere:
		col, ok := m.header.FindUser(lhs.Str)
		if !ok {
			return sqlerr.New(sqlerr.KindExec, "invalid column name. %q is not in header types", lhs.Str)
		}
		match := m.row != nil && v.Matches(cellAt(m.row, col.Index))
		return m.stack.Push(boolElem(match))
	case modeSet:
		return m.stack.Push(StackElem{Kind: ElemKeyValue, KV: KeyValue{Key: lhs.Str, Value: v}})
	default:
		return sqlerr.New(sqlerr.KindExec, "assign outside of WHERE or SET")
	}
}

func (m *Model) whereEnd() error {
	group, err := m.stack.PopGroup(ElemWhereBeg, m.Limits.MaxAssigns)
	if err != nil {
		return err
	}
	m.mode = modeNone
	result := true
	for _, e := range group {
		if e.Kind != ElemBool {
			return sqlerr.New(sqlerr.KindExec, "invalid stack element %s in WHERE", e.Kind)
		}
		result = result && e.Bool
	}
	return m.stack.Push(boolElem(result))
}

func (m *Model) updateSetEnd(p *opcode.Program) (action, error) {
	group, err := m.stack.PopGroup(ElemUpdateSetBeg, m.Limits.MaxAssigns)
	if err != nil {
		return actNext, err
	}
	m.mode = modeNone

	sets := make([]KeyValue, len(group))
	for i, e := range group {
		if e.Kind != ElemKeyValue {
			return actNext, sqlerr.New(sqlerr.KindExec, "invalid stack element %s in SET", e.Kind)
		}
		if _, ok := m.header.FindUser(e.KV.Key); !ok {
			return actNext, sqlerr.New(sqlerr.KindExec, "invalid update key %q", e.KV.Key)
		}
		sets[i] = e.KV
	}
	m.sets = sets

	// With a WHERE clause the rows are visited one by one; without one the
	// whole table is rewritten at UPDATE_END.
	if next := m.ip + 1; next < len(p.Instrs) && p.Instrs[next].Kind == opcode.OpWhereBeg {
		return actNext, m.openScan(next)
	}
	return actNext, nil
}

// takeMatch pops the WHERE result if there is one. No WHERE means every row
// matches.
func (m *Model) takeMatch() (bool, error) {
	top, ok := m.stack.Top()
	if !ok || top.Kind != ElemBool {
		return true, nil
	}
	if _, err := m.stack.Pop(); err != nil {
		return false, err
	}
	return top.Bool, nil
}

func cellAt(row record.Row, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
