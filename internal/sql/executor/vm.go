// Package executor runs compiled programs. The VM is a stack machine whose
// whole state lives in a Model, so a statement can be suspended after each
// result row and resumed by the next Step call.
package executor

import (
	"log/slog"

	"github.com/tuannm99/csvsql/internal/sql/opcode"
	"github.com/tuannm99/csvsql/internal/sqlerr"
	"github.com/tuannm99/csvsql/internal/storage"
)

// StepResult is what one Step call produced.
type StepResult uint8

const (
	StepDone StepResult = iota
	StepRow
)

func (r StepResult) String() string {
	if r == StepRow {
		return "ROW"
	}
	return "DONE"
}

// action tells the dispatch loop how to move the instruction pointer.
type action uint8

const (
	actNext  action = iota // ip++
	actJump                // ip already set
	actYield               // ip already set, a row is ready
)

// Step runs p from the saved instruction pointer until a row is ready or the
// program ends. On error the model is closed and further calls return Done.
func Step(m *Model, p *opcode.Program) (StepResult, error) {
	if m.done {
		return StepDone, nil
	}
	for m.ip < len(p.Instrs) {
		act, err := m.exec(p, p.Instrs[m.ip])
		if err != nil {
			if cerr := m.Close(); cerr != nil {
				slog.Warn("executor: close after error", "err", cerr)
			}
			m.done = true
			return StepDone, err
		}
		switch act {
		case actYield:
			return StepRow, nil
		case actJump:
		default:
			m.ip++
		}
	}
	m.done = true
	return StepDone, nil
}

func (m *Model) exec(p *opcode.Program, in opcode.Instr) (action, error) {
	switch in.Kind {
	case opcode.OpCreateTableBeg, opcode.OpSelectBeg, opcode.OpInsertBeg,
		opcode.OpUpdateBeg, opcode.OpDeleteBeg, opcode.OpShowTablesBeg:
		return m.beginStatement(in)

	case opcode.OpCreateTableEnd:
		return actNext, m.createTable()
	case opcode.OpInsertEnd:
		return actNext, m.insert()
	case opcode.OpSelectEnd:
		return m.selectEnd()
	case opcode.OpUpdateEnd:
		return m.updateEnd()
	case opcode.OpDeleteEnd:
		return m.deleteEnd()
	case opcode.OpShowTablesEnd:
		return m.showTablesEnd()

	case opcode.OpColumnDef:
		if m.op != opcode.OpCreateTableBeg {
			return actNext, invalidOp(in)
		}
		if len(m.defs) >= m.Limits.MaxColumns {
			return actNext, sqlerr.New(sqlerr.KindBufOverflow, "too many columns (limit %d)", m.Limits.MaxColumns)
		}
		m.defs = append(m.defs, in.Operand.(opcode.Column).Def)
		return actNext, nil

	case opcode.OpColumnNamesBeg:
		m.inNames = true
		return actNext, m.stack.Push(markerElem(ElemColumnNamesBeg))
	case opcode.OpColumnNamesEnd:
		return m.columnNamesEnd()
	case opcode.OpStar:
		if m.inNames {
			return actNext, m.stack.Push(StackElem{Kind: ElemStar})
		}
		if m.op != opcode.OpSelectBeg {
			return actNext, invalidOp(in)
		}
		m.star = true
		return actNext, m.startSelect()
	case opcode.OpIdent:
		return actNext, m.stack.Push(identElem(in.Operand.(opcode.Ident).Name))

	case opcode.OpValuesBeg:
		return actNext, m.stack.Push(markerElem(ElemValuesBeg))
	case opcode.OpValuesEnd:
		return actNext, m.valuesEnd()

	case opcode.OpIntValue, opcode.OpDoubleValue, opcode.OpStringValue:
		v, _ := in.Value()
		e, err := valueElem(v)
		if err != nil {
			return actNext, err
		}
		return actNext, m.stack.Push(e)
	case opcode.OpPlaceholder:
		return actNext, sqlerr.New(sqlerr.KindExec, "found place holder")

	case opcode.OpAssign:
		return actNext, m.assign()

	case opcode.OpWhereBeg:
		if err := m.fetchRow(); err != nil {
			return actNext, err
		}
		m.mode = modeWhere
		return actNext, m.stack.Push(markerElem(ElemWhereBeg))
	case opcode.OpWhereEnd:
		return actNext, m.whereEnd()

	case opcode.OpUpdateSetBeg:
		m.mode = modeSet
		return actNext, m.stack.Push(markerElem(ElemUpdateSetBeg))
	case opcode.OpUpdateSetEnd:
		return m.updateSetEnd(p)
	}
	return actNext, invalidOp(in)
}

func invalidOp(in opcode.Instr) error {
	return sqlerr.New(sqlerr.KindExec, "invalid opcode %s in current context", in.Kind)
}

func (m *Model) beginStatement(in opcode.Instr) (action, error) {
	if m.mapping != nil {
		if err := m.mapping.Close(); err != nil {
			return actNext, err
		}
		m.mapping = nil
	}
	m.clearStatement()
	m.op = in.Kind
	m.columns = nil
	m.selected = nil

	if in.Kind == opcode.OpShowTablesBeg {
		slog.Debug("executor: begin statement", "op", in.Kind)
		return actNext, m.showTablesBeg()
	}

	t := in.Operand.(opcode.Table)
	m.table = t.Name
	m.path = storage.TablePath(m.Dir, t.Name)
	m.ifNotExists = t.IfNotExists
	slog.Debug("executor: begin statement", "op", in.Kind, "table", t.Name)

	switch in.Kind {
	case opcode.OpCreateTableBeg:
		return actNext, nil
	case opcode.OpDeleteBeg:
		if err := m.loadHeader(); err != nil {
			return actNext, err
		}
		return actNext, m.openScan(m.ip + 1)
	default:
		return actNext, m.loadHeader()
	}
}
