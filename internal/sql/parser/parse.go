package parser

import (
	"github.com/tuannm99/csvsql/internal/sql/lexer"
	"github.com/tuannm99/csvsql/internal/sqlerr"
)

// Parse tokenizes and parses sql into a statement list.
func Parse(sql string) (*StmtList, error) {
	root, err := lexer.Tokenize(sql)
	if err != nil {
		return nil, err
	}
	return ParseTokens(root)
}

// ParseTokens parses a token list produced by lexer.Tokenize.
//
// Every production returns (nil, nil) when its first token does not match,
// so the caller can try the next alternative. Once a production has consumed
// its leading keyword, a mismatch is a syntax error.
func ParseTokens(root *lexer.Token) (*StmtList, error) {
	if root == nil || root.Kind != lexer.Root {
		return nil, syntaxErr("not found root token")
	}
	p := &parser{tok: root.Next}
	return p.stmtList()
}

type parser struct {
	tok     *lexer.Token
	nparams int
}

func syntaxErr(format string, args ...any) error {
	return sqlerr.New(sqlerr.KindSyntax, format, args...)
}

func (p *parser) kind() lexer.Kind {
	if p.tok == nil {
		return lexer.None
	}
	return p.tok.Kind
}

func (p *parser) atEnd() bool { return p.tok == nil }

func (p *parser) advance() {
	if p.tok != nil {
		p.tok = p.tok.Next
	}
}

// accept consumes the current token when it has kind k.
func (p *parser) accept(k lexer.Kind) bool {
	if p.kind() != k {
		return false
	}
	p.advance()
	return true
}

func (p *parser) stmtList() (*StmtList, error) {
	list := &StmtList{}
	for {
		for p.accept(lexer.Semicolon) {
			// skip empty statements
		}
		if p.atEnd() {
			return list, nil
		}

		stmt, err := p.stmt()
		if err != nil {
			return nil, err
		}
		if stmt == nil {
			return nil, syntaxErr("unsupported statement starting with %s", p.tok.Kind)
		}
		list.Stmts = append(list.Stmts, stmt)

		if p.atEnd() {
			return list, nil
		}
		if !p.accept(lexer.Semicolon) {
			return nil, syntaxErr("unexpected token %s after statement", p.tok.Kind)
		}
	}
}

func (p *parser) stmt() (Statement, error) {
	type production func() (Statement, error)
	for _, fn := range []production{
		p.createTableStmt,
		p.selectStmt,
		p.insertStmt,
		p.updateStmt,
		p.deleteStmt,
		p.showTablesStmt,
	} {
		stmt, err := fn()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			return stmt, nil
		}
	}
	return nil, nil
}

// CREATE TABLE [IF NOT EXISTS] table_name '(' column_def (',' column_def)* ')'
func (p *parser) createTableStmt() (Statement, error) {
	save := p.tok
	if !p.accept(lexer.Create) {
		return nil, nil
	}
	if !p.accept(lexer.Table) {
		p.tok = save
		return nil, nil
	}

	s := &CreateTableStmt{}
	if p.accept(lexer.If) {
		if !p.accept(lexer.Not) {
			return nil, syntaxErr("not found NOT after IF on CREATE TABLE")
		}
		if !p.accept(lexer.Exists) {
			return nil, syntaxErr("not found EXISTS after IF NOT on CREATE TABLE")
		}
		s.IfNotExists = true
	}

	if p.kind() != lexer.Ident {
		return nil, syntaxErr("not found table_name on CREATE TABLE")
	}
	s.TableName = p.tok.Text
	p.advance()

	if !p.accept(lexer.LParen) {
		return nil, syntaxErr("not found ( on CREATE TABLE")
	}

	def, err := p.columnDef()
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, syntaxErr("not found first column def on CREATE TABLE")
	}
	s.Columns = append(s.Columns, def)

	for p.accept(lexer.Comma) {
		def, err := p.columnDef()
		if err != nil {
			return nil, err
		}
		if def == nil {
			return nil, syntaxErr("not found column_def after comma on CREATE TABLE")
		}
		s.Columns = append(s.Columns, def)
	}

	if !p.accept(lexer.RParen) {
		return nil, syntaxErr("not found ) on CREATE TABLE")
	}
	return s, nil
}

// column_def := column_name type_name [column_constraint]
func (p *parser) columnDef() (*ColumnDef, error) {
	if p.kind() != lexer.Ident {
		return nil, nil
	}
	def := &ColumnDef{Name: p.tok.Text}
	p.advance()

	switch p.kind() {
	case lexer.Integer:
		def.Type = TypeInteger
	case lexer.Text:
		def.Type = TypeText
	default:
		if p.atEnd() {
			return nil, syntaxErr("not found type name on column_def")
		}
		return nil, syntaxErr("invalid type name: %s: %s", p.tok.Kind, p.tok.Text)
	}
	p.advance()

	c, err := p.columnConstraint()
	if err != nil {
		return nil, err
	}
	def.Constraint = c
	return def, nil
}

// column_constraint := [PRIMARY KEY] [AUTOINCREMENT] [NOT NULL], in any order
func (p *parser) columnConstraint() (*ColumnConstraint, error) {
	var c *ColumnConstraint
	get := func() *ColumnConstraint {
		if c == nil {
			c = &ColumnConstraint{}
		}
		return c
	}

	for {
		switch {
		case p.accept(lexer.Primary):
			if !p.accept(lexer.Key) {
				return nil, syntaxErr("not found KEY after PRIMARY on column_constraint")
			}
			get().PrimaryKey = true
		case p.accept(lexer.Autoincrement):
			get().Autoincrement = true
		case p.accept(lexer.Not):
			if !p.accept(lexer.Null) {
				return nil, syntaxErr("not found NULL after NOT on column_constraint")
			}
			get().NotNull = true
		default:
			return c, nil
		}
	}
}

// SELECT column_name (',' column_name)* FROM table_name [WHERE expr]
func (p *parser) selectStmt() (Statement, error) {
	if !p.accept(lexer.Select) {
		return nil, nil
	}

	s := &SelectStmt{}
	col := p.columnName()
	if col == nil {
		return nil, syntaxErr("failed to parse column name on select statement")
	}
	s.Columns = append(s.Columns, col)
	for p.accept(lexer.Comma) {
		col := p.columnName()
		if col == nil {
			return nil, syntaxErr("failed to parse column name on select statement")
		}
		s.Columns = append(s.Columns, col)
	}

	if !p.accept(lexer.From) {
		return nil, syntaxErr("not found FROM on select statement")
	}
	if p.kind() != lexer.Ident {
		return nil, syntaxErr("not found table name on select statement")
	}
	s.TableName = p.tok.Text
	p.advance()

	where, err := p.whereClause("select statement")
	if err != nil {
		return nil, err
	}
	s.Where = where
	return s, nil
}

func (p *parser) columnName() *ColumnName {
	switch p.kind() {
	case lexer.Ident:
		c := &ColumnName{Name: p.tok.Text}
		p.advance()
		return c
	case lexer.Star:
		p.advance()
		return &ColumnName{Star: true}
	default:
		return nil
	}
}

func (p *parser) whereClause(on string) (Expr, error) {
	if !p.accept(lexer.Where) {
		return nil, nil
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, syntaxErr("failed to parse WHERE expression on %s", on)
	}
	return e, nil
}

// INSERT INTO table_name ['(' column_name (',' column_name)* ')']
// VALUES values (',' values)*
func (p *parser) insertStmt() (Statement, error) {
	if !p.accept(lexer.Insert) {
		return nil, nil
	}
	if !p.accept(lexer.Into) {
		return nil, syntaxErr("not found INTO after INSERT on insert statement")
	}
	if p.kind() != lexer.Ident {
		return nil, syntaxErr("not found table name after INSERT INTO on insert statement")
	}
	s := &InsertStmt{TableName: p.tok.Text}
	p.advance()

	if p.accept(lexer.LParen) {
		col := p.columnName()
		if col == nil || col.Star {
			return nil, syntaxErr("not found column name after table name on insert statement")
		}
		s.Columns = append(s.Columns, col)
		for p.accept(lexer.Comma) {
			col := p.columnName()
			if col == nil || col.Star {
				return nil, syntaxErr("not found column name after comma on insert statement")
			}
			s.Columns = append(s.Columns, col)
		}
		if !p.accept(lexer.RParen) {
			return nil, syntaxErr("not found ) after column name on insert statement")
		}
	}

	if !p.accept(lexer.Values) {
		return nil, syntaxErr("not found values on insert statement")
	}
	v, err := p.values()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, syntaxErr("not found values on insert statement")
	}
	s.Values = append(s.Values, v)

	for p.accept(lexer.Comma) {
		v, err := p.values()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, syntaxErr("not found values after comma on insert statement")
		}
		s.Values = append(s.Values, v)
	}
	return s, nil
}

// values := '(' expr (',' expr)* ')'
func (p *parser) values() (*Values, error) {
	if !p.accept(lexer.LParen) {
		return nil, nil
	}

	v := &Values{}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, syntaxErr("not found expression on VALUES")
	}
	v.Exprs = append(v.Exprs, e)

	for p.accept(lexer.Comma) {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, syntaxErr("not found expression after comma on VALUES")
		}
		v.Exprs = append(v.Exprs, e)
	}

	if !p.accept(lexer.RParen) {
		return nil, syntaxErr("not found ) on VALUES")
	}
	return v, nil
}

// UPDATE table_name SET assign_expr (',' assign_expr)* [WHERE expr]
func (p *parser) updateStmt() (Statement, error) {
	if !p.accept(lexer.Update) {
		return nil, nil
	}
	if p.kind() != lexer.Ident {
		return nil, syntaxErr("not found table name on update statement")
	}
	s := &UpdateStmt{TableName: p.tok.Text}
	p.advance()

	if !p.accept(lexer.Set) {
		return nil, syntaxErr("not found SET on update statement")
	}

	a, err := p.assignExpr()
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, syntaxErr("failed to parse assign expression on update statement")
	}
	s.Assigns = append(s.Assigns, a)

	for p.accept(lexer.Comma) {
		a, err := p.assignExpr()
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, syntaxErr("failed to parse assign expression on update statement")
		}
		s.Assigns = append(s.Assigns, a)
	}

	where, err := p.whereClause("update statement")
	if err != nil {
		return nil, err
	}
	s.Where = where
	return s, nil
}

// DELETE FROM table_name [WHERE expr]
func (p *parser) deleteStmt() (Statement, error) {
	if !p.accept(lexer.Delete) {
		return nil, nil
	}
	if !p.accept(lexer.From) {
		return nil, syntaxErr("not found FROM on DELETE")
	}
	if p.kind() != lexer.Ident {
		return nil, syntaxErr("not found table name on DELETE")
	}
	s := &DeleteStmt{TableName: p.tok.Text}
	p.advance()

	where, err := p.whereClause("DELETE")
	if err != nil {
		return nil, err
	}
	s.Where = where
	return s, nil
}

// SHOW TABLES
func (p *parser) showTablesStmt() (Statement, error) {
	if !p.accept(lexer.Show) {
		return nil, nil
	}
	if !p.accept(lexer.Tables) {
		return nil, syntaxErr("not found TABLES after SHOW")
	}
	return &ShowTablesStmt{}, nil
}

// expr := assign_expr | number | string | '?'
func (p *parser) expr() (Expr, error) {
	a, err := p.assignExpr()
	if err != nil || a != nil {
		return a, err
	}

	switch p.kind() {
	case lexer.Int:
		e := &NumberLit{Int: p.tok.Int}
		p.advance()
		return e, nil
	case lexer.Double:
		e := &NumberLit{IsDouble: true, Double: p.tok.Double}
		p.advance()
		return e, nil
	case lexer.String:
		e := &StringLit{Value: p.tok.Text}
		p.advance()
		return e, nil
	case lexer.Placeholder:
		p.nparams++
		p.advance()
		return &Placeholder{Index: p.nparams}, nil
	}
	return nil, nil
}

// assign_expr := ident '=' expr
func (p *parser) assignExpr() (*AssignExpr, error) {
	if p.kind() != lexer.Ident {
		return nil, nil
	}
	a := &AssignExpr{Ident: p.tok.Text}
	p.advance()

	if !p.accept(lexer.Assign) {
		return nil, syntaxErr("not found assign in assign expr")
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, syntaxErr("failed to parse expr in assign expr")
	}
	a.Expr = e
	return a, nil
}
