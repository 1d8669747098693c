package parser

// Statement is the root interface for all SQL statements.
type Statement interface {
	stmtNode()
}

// StmtList is a semicolon separated sequence of statements.
type StmtList struct {
	Stmts []Statement
}

// ----- CREATE TABLE -----

type TypeName uint8

const (
	TypeInteger TypeName = iota + 1
	TypeText
)

func (t TypeName) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeText:
		return "TEXT"
	default:
		return "UNKNOWN"
	}
}

type ColumnConstraint struct {
	PrimaryKey    bool
	Autoincrement bool
	NotNull       bool
}

type ColumnDef struct {
	Name       string
	Type       TypeName
	Constraint *ColumnConstraint // nil when no constraint follows the type
}

type CreateTableStmt struct {
	TableName   string
	IfNotExists bool
	Columns     []*ColumnDef
}

func (*CreateTableStmt) stmtNode() {}

// ----- SELECT -----

// ColumnName is a projected or target column. Star is set for '*'.
type ColumnName struct {
	Name string
	Star bool
}

type SelectStmt struct {
	TableName string
	Columns   []*ColumnName
	Where     Expr
}

func (*SelectStmt) stmtNode() {}

// ----- INSERT -----

// Values is one parenthesised tuple.
type Values struct {
	Exprs []Expr
}

type InsertStmt struct {
	TableName string
	Columns   []*ColumnName // empty means every column in header order
	Values    []*Values
}

func (*InsertStmt) stmtNode() {}

// ----- UPDATE -----

type UpdateStmt struct {
	TableName string
	Assigns   []*AssignExpr
	Where     Expr
}

func (*UpdateStmt) stmtNode() {}

// ----- DELETE -----

type DeleteStmt struct {
	TableName string
	Where     Expr
}

func (*DeleteStmt) stmtNode() {}

// ----- SHOW TABLES -----

type ShowTablesStmt struct{}

func (*ShowTablesStmt) stmtNode() {}

// ----- Expressions -----

type Expr interface {
	exprNode()
}

// AssignExpr is "ident = expr": a comparison in WHERE, an assignment in SET.
type AssignExpr struct {
	Ident string
	Expr  Expr
}

func (*AssignExpr) exprNode() {}

type NumberLit struct {
	IsDouble bool
	Int      int64
	Double   float64
}

func (*NumberLit) exprNode() {}

type StringLit struct {
	Value string
}

func (*StringLit) exprNode() {}

// Placeholder is '?'. Index is 1-based in source order.
type Placeholder struct {
	Index int
}

func (*Placeholder) exprNode() {}
