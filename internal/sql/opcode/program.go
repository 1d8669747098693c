package opcode

import (
	"fmt"
	"strings"

	"github.com/tuannm99/csvsql/internal/sqlerr"
)

// Ownership tells BindBytes whether the caller's buffer may be referenced.
type Ownership uint8

const (
	// Transient copies the bytes at bind time.
	Transient Ownership = iota
	// Static references the buffer, which must stay alive and unchanged
	// until the statement is done stepping.
	Static
)

// Program is a compiled statement list.
type Program struct {
	Instrs []Instr
	// params[i] is the instruction index of placeholder i+1.
	params []int
}

// NumParams is the number of '?' placeholders.
func (p *Program) NumParams() int { return len(p.params) }

func (p *Program) slot(index int) (*Instr, error) {
	if index < 1 || index > len(p.params) {
		return nil, sqlerr.New(sqlerr.KindIndexOutOfRange, "bind index %d out of range [1, %d]", index, len(p.params))
	}
	return &p.Instrs[p.params[index-1]], nil
}

func (p *Program) BindInt(index int, v int64) error {
	in, err := p.slot(index)
	if err != nil {
		return err
	}
	in.Kind, in.Operand = OpIntValue, Int{Value: v}
	return nil
}

func (p *Program) BindDouble(index int, v float64) error {
	in, err := p.slot(index)
	if err != nil {
		return err
	}
	in.Kind, in.Operand = OpDoubleValue, Double{Value: v}
	return nil
}

func (p *Program) BindText(index int, s string) error {
	in, err := p.slot(index)
	if err != nil {
		return err
	}
	in.Kind, in.Operand = OpStringValue, Str{Value: s}
	return nil
}

// BindBytes binds b as text.
func (p *Program) BindBytes(index int, b []byte, own Ownership) error {
	in, err := p.slot(index)
	if err != nil {
		return err
	}
	if own == Static && b != nil {
		in.Kind, in.Operand = OpStringValue, Str{static: b}
		return nil
	}
	in.Kind, in.Operand = OpStringValue, Str{Value: string(b)}
	return nil
}

// ClearBindings turns every bound slot back into a placeholder.
func (p *Program) ClearBindings() {
	for _, idx := range p.params {
		p.Instrs[idx].Kind = OpPlaceholder
		p.Instrs[idx].Operand = nil
	}
}

// Clone returns a program whose bindings are independent of p.
func (p *Program) Clone() *Program {
	out := &Program{
		Instrs: make([]Instr, len(p.Instrs)),
		params: make([]int, len(p.params)),
	}
	copy(out.Instrs, p.Instrs)
	copy(out.params, p.params)
	return out
}

// Validate checks that every *_BEG has its matching *_END.
func (p *Program) Validate() error {
	var open []Kind
	for i, in := range p.Instrs {
		if end := in.Kind.End(); end != OpNone {
			open = append(open, end)
			continue
		}
		if !isEnd(in.Kind) {
			continue
		}
		if len(open) == 0 || open[len(open)-1] != in.Kind {
			return sqlerr.New(sqlerr.KindExec, "unbalanced %s at %d", in.Kind, i)
		}
		open = open[:len(open)-1]
	}
	if len(open) > 0 {
		return sqlerr.New(sqlerr.KindExec, "missing %s", open[len(open)-1])
	}
	return nil
}

func isEnd(k Kind) bool {
	switch k {
	case OpCreateTableEnd, OpSelectEnd, OpInsertEnd, OpUpdateEnd, OpDeleteEnd, OpShowTablesEnd,
		OpColumnNamesEnd, OpValuesEnd, OpWhereEnd, OpUpdateSetEnd:
		return true
	}
	return false
}

// String is an explain listing, one instruction per line.
func (p *Program) String() string {
	var b strings.Builder
	depth := 0
	for i, in := range p.Instrs {
		if isEnd(in.Kind) && depth > 0 {
			depth--
		}
		fmt.Fprintf(&b, "%4d  %s%s\n", i, strings.Repeat("  ", depth), in)
		if in.Kind.End() != OpNone {
			depth++
		}
	}
	return b.String()
}
