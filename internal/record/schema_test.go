package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHeaderRow(t *testing.T) {
	row := NewHeaderRow([]ColumnDef{
		{Name: "id", Integer: true, PrimaryKey: true, Autoincrement: true},
		{Name: "name", NotNull: true},
		{Name: "age", Integer: true},
	})
	assert.Equal(t,
		"__MODE__,id INTEGER PRIMARY KEY AUTOINCREMENT,name TEXT NOT NULL,age INTEGER\n",
		FormatLine(row))
}

func TestParseHeader(t *testing.T) {
	row, err := ParseString("__MODE__,id INTEGER PRIMARY KEY AUTOINCREMENT,name TEXT NOT NULL,age INTEGER\n", 0)
	require.NoError(t, err)

	h, err := ParseHeader(row)
	require.NoError(t, err)
	require.Equal(t, 4, h.Len())
	require.Len(t, h.UserColumns(), 3)

	id, ok := h.Find("id")
	require.True(t, ok)
	assert.Equal(t, 1, id.Index)
	assert.True(t, id.Integer)
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.Autoincrement)
	assert.True(t, id.Nullable)

	name, ok := h.Find("name")
	require.True(t, ok)
	assert.True(t, name.Text)
	assert.True(t, name.NotNull)
	assert.False(t, name.Nullable)
	assert.Equal(t, "TEXT NOT NULL", name.Def)

	_, ok = h.Find("missing")
	assert.False(t, ok)

	_, ok = h.Find(ModeColumn)
	assert.True(t, ok)
	_, ok = h.FindUser(ModeColumn)
	assert.False(t, ok)
	_, ok = h.FindUser("id")
	assert.True(t, ok)
}

func TestParseHeader_Invalid(t *testing.T) {
	_, err := ParseHeader(Row{"id INTEGER"})
	require.Error(t, err)

	_, err = ParseHeader(Row{ModeColumn, "id"})
	require.Error(t, err)

	_, err = ParseHeader(Row{ModeColumn, "id BLOB"})
	require.Error(t, err)
}

func TestValue_CellAndMatches(t *testing.T) {
	assert.Equal(t, "42", IntValue(42).Cell())
	assert.Equal(t, "3.140000", DoubleValue(3.14).Cell())
	assert.Equal(t, "x,y", StringValue("x,y").Cell())
	assert.Equal(t, "", Value{}.Cell())

	assert.True(t, IntValue(2).Matches("2"))
	assert.False(t, IntValue(2).Matches("20"))
	assert.False(t, IntValue(2).Matches("two"))
	assert.True(t, DoubleValue(1.5).Matches("1.500000"))
	assert.True(t, StringValue("Alice").Matches("Alice"))
	assert.False(t, StringValue("Alice").Matches("alice"))
	assert.False(t, Value{}.Matches(""))
}
