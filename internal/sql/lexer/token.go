package lexer

import "strings"

type Kind uint8

const (
	None Kind = iota
	Root

	Ident
	Semicolon   // ;
	Assign      // =
	LParen      // (
	RParen      // )
	Placeholder // ?
	Star        // *
	Comma       // ,
	Int         // 123
	Double      // 3.14
	String      // "abc" or 'abc'

	// keywords
	Create
	Select
	Insert
	Update
	Delete
	Show
	Tables
	From
	Set
	Where
	Into
	Values
	Table
	If
	Not
	Exists
	Integer
	Primary
	Key
	Text
	Null
	Autoincrement
)

var kindNames = [...]string{
	None:          "NONE",
	Root:          "ROOT",
	Ident:         "IDENT",
	Semicolon:     ";",
	Assign:        "=",
	LParen:        "(",
	RParen:        ")",
	Placeholder:   "?",
	Star:          "*",
	Comma:         ",",
	Int:           "INT",
	Double:        "DOUBLE",
	String:        "STRING",
	Create:        "CREATE",
	Select:        "SELECT",
	Insert:        "INSERT",
	Update:        "UPDATE",
	Delete:        "DELETE",
	Show:          "SHOW",
	Tables:        "TABLES",
	From:          "FROM",
	Set:           "SET",
	Where:         "WHERE",
	Into:          "INTO",
	Values:        "VALUES",
	Table:         "TABLE",
	If:            "IF",
	Not:           "NOT",
	Exists:        "EXISTS",
	Integer:       "INTEGER",
	Primary:       "PRIMARY",
	Key:           "KEY",
	Text:          "TEXT",
	Null:          "NULL",
	Autoincrement: "AUTOINCREMENT",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= Create && k <= Autoincrement
}

var keywords = func() map[string]Kind {
	m := make(map[string]Kind, Autoincrement-Create+1)
	for k := Create; k <= Autoincrement; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

// LookupKeyword maps an identifier to its keyword kind, case-insensitively.
func LookupKeyword(word string) (Kind, bool) {
	k, ok := keywords[strings.ToUpper(word)]
	return k, ok
}

// Token is one lexeme. Tokens form a singly linked list starting at a Root
// token.
type Token struct {
	Kind   Kind
	Text   string // identifier, keyword or string literal content
	Int    int64
	Double float64
	Pos    int // byte offset in the source
	Next   *Token
}
