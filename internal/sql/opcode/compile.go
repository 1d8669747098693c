package opcode

import (
	"github.com/tuannm99/csvsql/internal/record"
	"github.com/tuannm99/csvsql/internal/sql/parser"
	"github.com/tuannm99/csvsql/internal/sqlerr"
)

// Compile lowers a statement list to bytecode. Strings are moved out of the
// tree, so list must not be used afterwards.
func Compile(list *parser.StmtList) (*Program, error) {
	if list == nil {
		return nil, sqlerr.New(sqlerr.KindExec, "nil statement list")
	}
	c := &compiler{prog: &Program{}}
	for _, stmt := range list.Stmts {
		if err := c.stmt(stmt); err != nil {
			return nil, err
		}
	}
	list.Stmts = nil
	return c.prog, nil
}

type compiler struct {
	prog *Program
}

// take moves the string out of *s.
func take(s *string) string {
	v := *s
	*s = ""
	return v
}

func (c *compiler) emit(k Kind, op Operand) {
	c.prog.Instrs = append(c.prog.Instrs, Instr{Kind: k, Operand: op})
}

func (c *compiler) stmt(stmt parser.Statement) error {
	switch s := stmt.(type) {
	case *parser.CreateTableStmt:
		return c.createTable(s)
	case *parser.SelectStmt:
		return c.selectStmt(s)
	case *parser.InsertStmt:
		return c.insert(s)
	case *parser.UpdateStmt:
		return c.update(s)
	case *parser.DeleteStmt:
		return c.delete(s)
	case *parser.ShowTablesStmt:
		c.emit(OpShowTablesBeg, nil)
		c.emit(OpShowTablesEnd, nil)
		return nil
	default:
		return sqlerr.New(sqlerr.KindExec, "unsupported statement %T", stmt)
	}
}

func (c *compiler) createTable(s *parser.CreateTableStmt) error {
	c.emit(OpCreateTableBeg, Table{Name: take(&s.TableName), IfNotExists: s.IfNotExists})
	for _, col := range s.Columns {
		def := record.ColumnDef{Name: take(&col.Name), Integer: col.Type == parser.TypeInteger}
		if col.Constraint != nil {
			def.PrimaryKey = col.Constraint.PrimaryKey
			def.Autoincrement = col.Constraint.Autoincrement
			def.NotNull = col.Constraint.NotNull
		}
		c.emit(OpColumnDef, Column{Def: def})
	}
	c.emit(OpCreateTableEnd, nil)
	return nil
}

func (c *compiler) selectStmt(s *parser.SelectStmt) error {
	c.emit(OpSelectBeg, Table{Name: take(&s.TableName)})
	if len(s.Columns) == 1 && s.Columns[0].Star {
		c.emit(OpStar, nil)
	} else {
		c.columnNames(s.Columns)
	}
	if err := c.where(s.Where); err != nil {
		return err
	}
	c.emit(OpSelectEnd, nil)
	return nil
}

func (c *compiler) columnNames(cols []*parser.ColumnName) {
	c.emit(OpColumnNamesBeg, nil)
	for _, col := range cols {
		if col.Star {
			c.emit(OpStar, nil)
			continue
		}
		c.emit(OpIdent, Ident{Name: take(&col.Name)})
	}
	c.emit(OpColumnNamesEnd, nil)
}

func (c *compiler) where(e parser.Expr) error {
	if e == nil {
		return nil
	}
	c.emit(OpWhereBeg, nil)
	if err := c.expr(e); err != nil {
		return err
	}
	c.emit(OpWhereEnd, nil)
	return nil
}

func (c *compiler) insert(s *parser.InsertStmt) error {
	c.emit(OpInsertBeg, Table{Name: take(&s.TableName)})
	c.columnNames(s.Columns)
	for _, v := range s.Values {
		c.emit(OpValuesBeg, nil)
		for _, e := range v.Exprs {
			if err := c.expr(e); err != nil {
				return err
			}
		}
		c.emit(OpValuesEnd, nil)
	}
	c.emit(OpInsertEnd, nil)
	return nil
}

func (c *compiler) update(s *parser.UpdateStmt) error {
	c.emit(OpUpdateBeg, Table{Name: take(&s.TableName)})
	c.emit(OpUpdateSetBeg, nil)
	for _, a := range s.Assigns {
		if err := c.assign(a); err != nil {
			return err
		}
	}
	c.emit(OpUpdateSetEnd, nil)
	if err := c.where(s.Where); err != nil {
		return err
	}
	c.emit(OpUpdateEnd, nil)
	return nil
}

func (c *compiler) delete(s *parser.DeleteStmt) error {
	c.emit(OpDeleteBeg, Table{Name: take(&s.TableName)})
	if err := c.where(s.Where); err != nil {
		return err
	}
	c.emit(OpDeleteEnd, nil)
	return nil
}

// assign emits IDENT, expr, ASSIGN.
func (c *compiler) assign(a *parser.AssignExpr) error {
	c.emit(OpIdent, Ident{Name: take(&a.Ident)})
	if err := c.expr(a.Expr); err != nil {
		return err
	}
	c.emit(OpAssign, nil)
	return nil
}

func (c *compiler) expr(e parser.Expr) error {
	switch x := e.(type) {
	case *parser.AssignExpr:
		return c.assign(x)
	case *parser.NumberLit:
		if x.IsDouble {
			c.emit(OpDoubleValue, Double{Value: x.Double})
		} else {
			c.emit(OpIntValue, Int{Value: x.Int})
		}
	case *parser.StringLit:
		c.emit(OpStringValue, Str{Value: take(&x.Value)})
	case *parser.Placeholder:
		if x.Index < 1 {
			return sqlerr.New(sqlerr.KindExec, "invalid placeholder index %d", x.Index)
		}
		for len(c.prog.params) < x.Index {
			c.prog.params = append(c.prog.params, -1)
		}
		c.prog.params[x.Index-1] = len(c.prog.Instrs)
		c.prog.Instrs = append(c.prog.Instrs, Instr{Kind: OpPlaceholder, Param: x.Index})
	default:
		return sqlerr.New(sqlerr.KindExec, "unsupported expression %T", e)
	}
	return nil
}
