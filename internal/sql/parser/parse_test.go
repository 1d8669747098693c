package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/csvsql/internal/sql/lexer"
	"github.com/tuannm99/csvsql/internal/sqlerr"
)

func parseOne(t *testing.T, sql string) Statement {
	t.Helper()
	list, err := Parse(sql)
	require.NoError(t, err)
	require.Len(t, list.Stmts, 1)
	return list.Stmts[0]
}

func requireSyntax(t *testing.T, sql, msg string) {
	t.Helper()
	_, err := Parse(sql)
	require.Error(t, err)
	require.ErrorIs(t, err, sqlerr.ErrSyntax)
	require.Contains(t, err.Error(), msg)
}

func TestParse_CreateTable(t *testing.T) {
	stmt := parseOne(t, `CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		age INTEGER
	);`)

	s, ok := stmt.(*CreateTableStmt)
	require.True(t, ok, "want *CreateTableStmt, got %T", stmt)

	require.Equal(t, "users", s.TableName)
	assert.True(t, s.IfNotExists)
	require.Len(t, s.Columns, 3)

	assert.Equal(t, &ColumnDef{
		Name:       "id",
		Type:       TypeInteger,
		Constraint: &ColumnConstraint{PrimaryKey: true, Autoincrement: true},
	}, s.Columns[0])
	assert.Equal(t, &ColumnDef{
		Name:       "name",
		Type:       TypeText,
		Constraint: &ColumnConstraint{NotNull: true},
	}, s.Columns[1])
	assert.Equal(t, &ColumnDef{Name: "age", Type: TypeInteger}, s.Columns[2])
}

func TestParse_CreateTable_Invalid(t *testing.T) {
	requireSyntax(t, "CREATE TABLE users id INTEGER", "not found ( on CREATE TABLE")
	requireSyntax(t, "CREATE TABLE users ()", "not found first column def on CREATE TABLE")
	requireSyntax(t, "CREATE TABLE users (id INTEGER,)", "not found column_def after comma on CREATE TABLE")
	requireSyntax(t, "CREATE TABLE users (id INTEGER", "not found ) on CREATE TABLE")
	requireSyntax(t, "CREATE TABLE users (id INTEGER PRIMARY)", "not found KEY after PRIMARY on column_constraint")
	requireSyntax(t, "CREATE TABLE users (id INTEGER NOT)", "not found NULL after NOT on column_constraint")
	requireSyntax(t, "CREATE TABLE users (id BLOB)", "invalid type name")
	requireSyntax(t, "CREATE TABLE IF EXISTS users (id INTEGER)", "not found NOT after IF on CREATE TABLE")
	requireSyntax(t, "CREATE TABLE (id INTEGER)", "not found table_name on CREATE TABLE")
}

func TestParse_Select(t *testing.T) {
	stmt := parseOne(t, "SELECT id, name FROM users WHERE age = 20")

	s, ok := stmt.(*SelectStmt)
	require.True(t, ok, "want *SelectStmt, got %T", stmt)
	assert.Equal(t, "users", s.TableName)
	assert.Equal(t, []*ColumnName{{Name: "id"}, {Name: "name"}}, s.Columns)
	assert.Equal(t, &AssignExpr{Ident: "age", Expr: &NumberLit{Int: 20}}, s.Where)
}

func TestParse_SelectStar(t *testing.T) {
	s := parseOne(t, "SELECT * FROM users;").(*SelectStmt)
	assert.Equal(t, []*ColumnName{{Star: true}}, s.Columns)
	assert.Nil(t, s.Where)
}

func TestParse_Select_Invalid(t *testing.T) {
	requireSyntax(t, "SELECT id users", "not found FROM on select statement")
	requireSyntax(t, "SELECT FROM users", "failed to parse column name on select statement")
	requireSyntax(t, "SELECT id FROM", "not found table name on select statement")
	requireSyntax(t, "SELECT id FROM users WHERE", "failed to parse WHERE expression on select statement")
}

func TestParse_Insert(t *testing.T) {
	stmt := parseOne(t, `INSERT INTO users (name, age) VALUES ("Hanako", 123), ('Taro', 2.5)`)

	s, ok := stmt.(*InsertStmt)
	require.True(t, ok, "want *InsertStmt, got %T", stmt)
	assert.Equal(t, "users", s.TableName)
	assert.Equal(t, []*ColumnName{{Name: "name"}, {Name: "age"}}, s.Columns)
	require.Len(t, s.Values, 2)
	assert.Equal(t, []Expr{&StringLit{Value: "Hanako"}, &NumberLit{Int: 123}}, s.Values[0].Exprs)
	assert.Equal(t, []Expr{&StringLit{Value: "Taro"}, &NumberLit{IsDouble: true, Double: 2.5}}, s.Values[1].Exprs)
}

func TestParse_Insert_NoColumnList(t *testing.T) {
	s := parseOne(t, `INSERT INTO users VALUES (1, "a", 2)`).(*InsertStmt)
	assert.Empty(t, s.Columns)
	require.Len(t, s.Values, 1)
	assert.Len(t, s.Values[0].Exprs, 3)
}

func TestParse_Insert_Invalid(t *testing.T) {
	requireSyntax(t, "INSERT users VALUES (1)", "not found INTO after INSERT on insert statement")
	requireSyntax(t, "INSERT INTO VALUES (1)", "not found table name after INSERT INTO on insert statement")
	requireSyntax(t, "INSERT INTO users (name age) VALUES (1)", "not found ) after column name on insert statement")
	requireSyntax(t, "INSERT INTO users (name)", "not found values on insert statement")
	requireSyntax(t, "INSERT INTO users (name) VALUES (1", "not found ) on VALUES")
	requireSyntax(t, "INSERT INTO users (name) VALUES ()", "not found expression on VALUES")
	requireSyntax(t, "INSERT INTO users (name) VALUES (1),", "not found values after comma on insert statement")
}

func TestParse_Placeholders(t *testing.T) {
	list, err := Parse("INSERT INTO users (name, age) VALUES (?, ?); SELECT name FROM users WHERE id = ?")
	require.NoError(t, err)
	require.Len(t, list.Stmts, 2)

	ins := list.Stmts[0].(*InsertStmt)
	assert.Equal(t, []Expr{&Placeholder{Index: 1}, &Placeholder{Index: 2}}, ins.Values[0].Exprs)

	sel := list.Stmts[1].(*SelectStmt)
	assert.Equal(t, &AssignExpr{Ident: "id", Expr: &Placeholder{Index: 3}}, sel.Where)
}

func TestParse_Update(t *testing.T) {
	stmt := parseOne(t, `UPDATE users SET age = 200, name = "Tamako" WHERE id = 2;`)

	s, ok := stmt.(*UpdateStmt)
	require.True(t, ok, "want *UpdateStmt, got %T", stmt)
	assert.Equal(t, "users", s.TableName)
	assert.Equal(t, []*AssignExpr{
		{Ident: "age", Expr: &NumberLit{Int: 200}},
		{Ident: "name", Expr: &StringLit{Value: "Tamako"}},
	}, s.Assigns)
	assert.Equal(t, &AssignExpr{Ident: "id", Expr: &NumberLit{Int: 2}}, s.Where)
}

func TestParse_Update_Invalid(t *testing.T) {
	requireSyntax(t, "UPDATE SET a = 1", "not found table name on update statement")
	requireSyntax(t, "UPDATE users a = 1", "not found SET on update statement")
	requireSyntax(t, "UPDATE users SET 1", "failed to parse assign expression on update statement")
	requireSyntax(t, "UPDATE users SET a 1", "not found assign in assign expr")
	requireSyntax(t, "UPDATE users SET a =", "failed to parse expr in assign expr")
}

func TestParse_Delete(t *testing.T) {
	s := parseOne(t, "DELETE FROM users WHERE name = 'Alice'").(*DeleteStmt)
	assert.Equal(t, "users", s.TableName)
	assert.Equal(t, &AssignExpr{Ident: "name", Expr: &StringLit{Value: "Alice"}}, s.Where)

	s = parseOne(t, "DELETE FROM users").(*DeleteStmt)
	assert.Nil(t, s.Where)

	requireSyntax(t, "DELETE users", "not found FROM on DELETE")
	requireSyntax(t, "DELETE FROM", "not found table name on DELETE")
}

func TestParse_ShowTables(t *testing.T) {
	stmt := parseOne(t, "show tables;")
	_, ok := stmt.(*ShowTablesStmt)
	require.True(t, ok, "want *ShowTablesStmt, got %T", stmt)

	requireSyntax(t, "SHOW users", "not found TABLES after SHOW")
}

func TestParse_StatementList(t *testing.T) {
	list, err := Parse(";; SELECT a FROM t ; ; DELETE FROM t;")
	require.NoError(t, err)
	require.Len(t, list.Stmts, 2)

	list, err = Parse("   ")
	require.NoError(t, err)
	assert.Empty(t, list.Stmts)
}

func TestParse_RejectTrailingTokens(t *testing.T) {
	requireSyntax(t, "SELECT a FROM t extra", "unexpected token IDENT after statement")
	requireSyntax(t, "DROP TABLE t", "unsupported statement")
	requireSyntax(t, "CREATE users", "unsupported statement starting with CREATE")
}

func TestParse_TokenizeErrorPropagates(t *testing.T) {
	_, err := Parse("SELECT a FROM t WHERE a < 1")
	require.ErrorIs(t, err, sqlerr.ErrTokenize)
}

func TestParseTokens_RequiresRoot(t *testing.T) {
	_, err := ParseTokens(&lexer.Token{Kind: lexer.Select})
	require.ErrorIs(t, err, sqlerr.ErrSyntax)
}
