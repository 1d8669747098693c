package driver

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open(DriverName, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDriver_ExecAndQuery(t *testing.T) {
	db := openDB(t)
	_, err := db.Exec("CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, age INTEGER)")
	require.NoError(t, err)

	res, err := db.Exec("INSERT INTO users (name, age) VALUES (?, ?)", "Alice", 20)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = res.LastInsertId()
	require.Error(t, err)

	_, err = db.Exec("INSERT INTO users (name, age) VALUES (?, ?)", []byte("Bob"), true)
	require.NoError(t, err)

	rows, err := db.Query("SELECT id, name, age FROM users")
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "age"}, cols)

	types, err := rows.ColumnTypes()
	require.NoError(t, err)
	assert.Equal(t, "INTEGER", types[0].DatabaseTypeName())
	assert.Equal(t, "TEXT", types[1].DatabaseTypeName())

	type user struct {
		id   int64
		name string
		age  int64
	}
	var got []user
	for rows.Next() {
		var u user
		require.NoError(t, rows.Scan(&u.id, &u.name, &u.age))
		got = append(got, u)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []user{{1, "Alice", 20}, {2, "Bob", 1}}, got)
}

func TestDriver_QueryNoRowsKeepsColumns(t *testing.T) {
	db := openDB(t)
	_, err := db.Exec("CREATE TABLE t (a TEXT, b INTEGER)")
	require.NoError(t, err)

	rows, err := db.Query("SELECT b, a FROM t")
	require.NoError(t, err)
	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, cols)
	assert.False(t, rows.Next())
	require.NoError(t, rows.Close())
}

func TestDriver_PreparedReuse(t *testing.T) {
	db := openDB(t)
	_, err := db.Exec("CREATE TABLE kv (k TEXT, v TEXT)")
	require.NoError(t, err)

	ins, err := db.Prepare("INSERT INTO kv (k, v) VALUES (?, ?)")
	require.NoError(t, err)
	defer ins.Close()

	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, args := range [][]any{{"a", 1.5}, {"b", when}, {"c", nil}} {
		_, err := ins.Exec(args...)
		require.NoError(t, err)
	}

	sel, err := db.Prepare("SELECT v FROM kv WHERE k = ?")
	require.NoError(t, err)
	defer sel.Close()

	var v string
	require.NoError(t, sel.QueryRow("a").Scan(&v))
	assert.Equal(t, "1.500000", v)
	require.NoError(t, sel.QueryRow("b").Scan(&v))
	assert.Equal(t, "2024-05-01T12:00:00Z", v)
	require.NoError(t, sel.QueryRow("c").Scan(&v))
	assert.Equal(t, "", v)
	assert.ErrorIs(t, sel.QueryRow("zzz").Scan(&v), sql.ErrNoRows)
}

func TestDriver_Errors(t *testing.T) {
	db := openDB(t)

	_, err := db.Begin()
	require.ErrorIs(t, err, ErrNoTransactions)

	_, err = db.Exec("SELECT FROM")
	require.Error(t, err)

	_, err = db.Exec("CREATE TABLE t (a TEXT)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO t (a) VALUES (?)", sql.Named("x", "y"))
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = db.ExecContext(ctx, "INSERT INTO t (a) VALUES ('x')")
	require.ErrorIs(t, err, context.Canceled)
}

func TestDriver_MissingDirectory(t *testing.T) {
	db, err := sql.Open(DriverName, t.TempDir()+"/missing")
	require.NoError(t, err)
	defer db.Close()
	require.Error(t, db.Ping())
}
