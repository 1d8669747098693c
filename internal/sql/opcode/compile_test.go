package opcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/csvsql/internal/record"
	"github.com/tuannm99/csvsql/internal/sql/parser"
	"github.com/tuannm99/csvsql/internal/sqlerr"
)

func compileSQL(t *testing.T, sql string) *Program {
	t.Helper()
	list, err := parser.Parse(sql)
	require.NoError(t, err)
	prog, err := Compile(list)
	require.NoError(t, err)
	require.NoError(t, prog.Validate())
	return prog
}

func opKinds(p *Program) []Kind {
	out := make([]Kind, len(p.Instrs))
	for i, in := range p.Instrs {
		out[i] = in.Kind
	}
	return out
}

func TestCompile_CreateTable(t *testing.T) {
	p := compileSQL(t, "CREATE TABLE IF NOT EXISTS users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, age INTEGER)")

	assert.Equal(t, []Kind{OpCreateTableBeg, OpColumnDef, OpColumnDef, OpColumnDef, OpCreateTableEnd}, opKinds(p))
	assert.Equal(t, Table{Name: "users", IfNotExists: true}, p.Instrs[0].Operand)
	assert.Equal(t, Column{Def: record.ColumnDef{Name: "id", Integer: true, PrimaryKey: true, Autoincrement: true}}, p.Instrs[1].Operand)
	assert.Equal(t, Column{Def: record.ColumnDef{Name: "name", NotNull: true}}, p.Instrs[2].Operand)
}

func TestCompile_SelectStar(t *testing.T) {
	p := compileSQL(t, "SELECT * FROM users")
	assert.Equal(t, []Kind{OpSelectBeg, OpStar, OpSelectEnd}, opKinds(p))
}

func TestCompile_SelectWhere(t *testing.T) {
	p := compileSQL(t, "SELECT id, name FROM users WHERE name = 'Alice'")
	assert.Equal(t, []Kind{
		OpSelectBeg,
		OpColumnNamesBeg, OpIdent, OpIdent, OpColumnNamesEnd,
		OpWhereBeg, OpIdent, OpStringValue, OpAssign, OpWhereEnd,
		OpSelectEnd,
	}, opKinds(p))
	assert.Equal(t, Ident{Name: "name"}, p.Instrs[6].Operand)
	assert.Equal(t, "Alice", p.Instrs[7].Operand.(Str).Text())
}

func TestCompile_SelectStarMixedStaysInColumnList(t *testing.T) {
	p := compileSQL(t, "SELECT id, * FROM users")
	assert.Equal(t, []Kind{OpSelectBeg, OpColumnNamesBeg, OpIdent, OpStar, OpColumnNamesEnd, OpSelectEnd}, opKinds(p))
}

func TestCompile_InsertMultipleValues(t *testing.T) {
	p := compileSQL(t, `INSERT INTO users (name, age) VALUES ("Hanako", 123), ("Taro", 2.5)`)
	assert.Equal(t, []Kind{
		OpInsertBeg,
		OpColumnNamesBeg, OpIdent, OpIdent, OpColumnNamesEnd,
		OpValuesBeg, OpStringValue, OpIntValue, OpValuesEnd,
		OpValuesBeg, OpStringValue, OpDoubleValue, OpValuesEnd,
		OpInsertEnd,
	}, opKinds(p))

	v, ok := p.Instrs[11].Value()
	require.True(t, ok)
	assert.Equal(t, record.DoubleValue(2.5), v)
}

func TestCompile_UpdateWithAndWithoutWhere(t *testing.T) {
	p := compileSQL(t, `UPDATE users SET age = 200, name = "Tamako" WHERE id = 2`)
	assert.Equal(t, []Kind{
		OpUpdateBeg,
		OpUpdateSetBeg,
		OpIdent, OpIntValue, OpAssign,
		OpIdent, OpStringValue, OpAssign,
		OpUpdateSetEnd,
		OpWhereBeg, OpIdent, OpIntValue, OpAssign, OpWhereEnd,
		OpUpdateEnd,
	}, opKinds(p))

	p = compileSQL(t, `UPDATE users SET age = 1`)
	assert.Equal(t, []Kind{
		OpUpdateBeg, OpUpdateSetBeg, OpIdent, OpIntValue, OpAssign, OpUpdateSetEnd, OpUpdateEnd,
	}, opKinds(p))
}

func TestCompile_DeleteAndShowTables(t *testing.T) {
	p := compileSQL(t, "DELETE FROM users; SHOW TABLES")
	assert.Equal(t, []Kind{OpDeleteBeg, OpDeleteEnd, OpShowTablesBeg, OpShowTablesEnd}, opKinds(p))
}

func TestCompile_MovesStringsOutOfTree(t *testing.T) {
	list, err := parser.Parse("SELECT name FROM users")
	require.NoError(t, err)
	sel := list.Stmts[0].(*parser.SelectStmt)

	_, err = Compile(list)
	require.NoError(t, err)
	assert.Empty(t, sel.TableName)
	assert.Empty(t, sel.Columns[0].Name)
	assert.Empty(t, list.Stmts)
}

func TestProgram_Bind(t *testing.T) {
	p := compileSQL(t, "INSERT INTO users (name, age) VALUES (?, ?)")
	require.Equal(t, 2, p.NumParams())

	require.NoError(t, p.BindText(1, "Bob"))
	require.NoError(t, p.BindInt(2, 30))

	name, _ := p.Instrs[6].Value()
	age, _ := p.Instrs[7].Value()
	assert.Equal(t, record.StringValue("Bob"), name)
	assert.Equal(t, record.IntValue(30), age)

	err := p.BindInt(3, 1)
	require.ErrorIs(t, err, sqlerr.ErrIndexOutOfRange)
	err = p.BindInt(0, 1)
	require.ErrorIs(t, err, sqlerr.ErrIndexOutOfRange)

	p.ClearBindings()
	assert.Equal(t, OpPlaceholder, p.Instrs[6].Kind)
	assert.Equal(t, 1, p.Instrs[6].Param)
}

func TestProgram_BindBytesOwnership(t *testing.T) {
	p := compileSQL(t, "SELECT a FROM t WHERE a = ?")
	buf := []byte("one")

	require.NoError(t, p.BindBytes(1, buf, Transient))
	copy(buf, "two")
	v, _ := p.Instrs[p.params[0]].Value()
	assert.Equal(t, "one", v.Str)

	require.NoError(t, p.BindBytes(1, buf, Static))
	copy(buf, "six")
	v, _ = p.Instrs[p.params[0]].Value()
	assert.Equal(t, "six", v.Str)
}

func TestProgram_CloneIsolatesBindings(t *testing.T) {
	p := compileSQL(t, "DELETE FROM t WHERE a = ?")
	c := p.Clone()
	require.NoError(t, c.BindInt(1, 5))

	assert.Equal(t, OpPlaceholder, p.Instrs[3].Kind)
	assert.Equal(t, OpIntValue, c.Instrs[3].Kind)
}

func TestProgram_ValidateAndString(t *testing.T) {
	p := compileSQL(t, "DELETE FROM t WHERE a = 1")
	out := p.String()
	assert.Contains(t, out, "DELETE_BEG t")
	assert.Contains(t, out, "    WHERE_BEG")

	bad := &Program{Instrs: []Instr{{Kind: OpSelectBeg}, {Kind: OpWhereEnd}}}
	require.Error(t, bad.Validate())
	bad = &Program{Instrs: []Instr{{Kind: OpSelectBeg}}}
	require.Error(t, bad.Validate())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "UPDATE_SET_BEG", OpUpdateSetBeg.String())
	assert.Equal(t, OpWhereEnd, OpWhereBeg.End())
	assert.Equal(t, OpNone, OpIdent.End())
}
