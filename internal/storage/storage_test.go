package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/csvsql/internal/record"
)

const usersHeader = "__MODE__,id INTEGER PRIMARY KEY AUTOINCREMENT,name TEXT NOT NULL,age INTEGER\n"

func newTestTable(t *testing.T, f *Files, dir, body string) string {
	t.Helper()
	require.NoError(t, f.MkdirAll(dir))
	path := TablePath(dir, "users")
	require.NoError(t, f.WriteFile(path, []byte(usersHeader+body)))
	return path
}

func TestNextID_Monotonic(t *testing.T) {
	f := NewFiles(afero.NewMemMapFs())

	for want := int64(1); want <= 3; want++ {
		got, err := NextID(f, "/db", "users", "id")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	b, err := f.ReadFile(IDPath("/db", "users", "id"))
	require.NoError(t, err)
	assert.Equal(t, "4", string(b))
}

func TestNextID_ZeroCounterStartsAtOne(t *testing.T) {
	f := NewFiles(afero.NewMemMapFs())
	require.NoError(t, f.MkdirAll("/db/id"))
	require.NoError(t, f.WriteFile(IDPath("/db", "users", "id"), []byte("0")))

	got, err := NextID(f, "/db", "users", "id")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestNextID_Corrupt(t *testing.T) {
	f := NewFiles(afero.NewMemMapFs())
	require.NoError(t, f.MkdirAll("/db/id"))
	require.NoError(t, f.WriteFile(IDPath("/db", "users", "id"), []byte("abc")))

	_, err := NextID(f, "/db", "users", "id")
	require.Error(t, err)
}

func TestReadHeader(t *testing.T) {
	f := NewFiles(afero.NewMemMapFs())
	path := newTestTable(t, f, "/db", "0,1,Alice,20\n")

	h, err := ReadHeader(f, path, 0)
	require.NoError(t, err)
	require.Equal(t, 4, h.Len())
	assert.Equal(t, "age", h.Columns[3].Name)

	_, err = ReadHeader(f, "/db/missing.csv", 0)
	require.Error(t, err)
}

func testMappingFlip(t *testing.T, f *Files, dir string) {
	path := newTestTable(t, f, dir, "0,1,Alice,20\n0,2,Hanako,123\n")

	m, err := OpenMapping(f, path)
	require.NoError(t, err)

	off, err := HeaderEnd(m.Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, len(usersHeader), off)

	row, next, err := m.ReadRow(off, 0)
	require.NoError(t, err)
	assert.Equal(t, record.Row{"0", "1", "Alice", "20"}, row)

	start := next
	row, next, err = m.ReadRow(start, 0)
	require.NoError(t, err)
	assert.Equal(t, "Hanako", row[2])
	require.NoError(t, m.SetByte(start, '1'))

	_, _, err = m.ReadRow(next, 0)
	require.ErrorIs(t, err, io.EOF)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	require.ErrorIs(t, m.SetByte(0, 'x'), ErrMappingClosed)

	b, err := f.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, usersHeader+"0,1,Alice,20\n1,2,Hanako,123\n", string(b))
}

func TestMapping_FlipOnOS(t *testing.T) {
	testMappingFlip(t, OS(), t.TempDir())
}

func TestMapping_FlipInMemory(t *testing.T) {
	testMappingFlip(t, NewFiles(afero.NewMemMapFs()), "/db")
}

func TestMapping_EmptyFile(t *testing.T) {
	f := NewFiles(afero.NewMemMapFs())
	require.NoError(t, f.MkdirAll("/db"))
	require.NoError(t, f.Touch("/db/empty.csv"))

	m, err := OpenMapping(f, "/db/empty.csv")
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	assert.Equal(t, 0, m.Len())
	_, _, err = m.ReadRow(0, 0)
	require.ErrorIs(t, err, io.EOF)
	require.ErrorIs(t, m.SetByte(0, '1'), ErrOutOfRange)
}

func TestRewrite_DropsAndTransforms(t *testing.T) {
	f := OS()
	dir := t.TempDir()
	path := newTestTable(t, f, dir, "0,1,Alice,20\n1,2,Hanako,123\n0,3,Taro,223\n")

	kept, err := Rewrite(f, path, 0, func(row record.Row) (record.Row, bool, error) {
		if row.Deleted() {
			return nil, false, nil
		}
		out := row.Clone()
		out[3] = "99"
		return out, true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), kept)

	b, err := f.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, usersHeader+"0,1,Alice,99\n0,3,Taro,99\n", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be gone")
}

func TestRewrite_ErrorKeepsOriginal(t *testing.T) {
	f := NewFiles(afero.NewMemMapFs())
	path := newTestTable(t, f, "/db", "0,1,Alice,20\n")

	boom := errors.New("boom")
	_, err := Rewrite(f, path, 0, func(record.Row) (record.Row, bool, error) {
		return nil, false, boom
	})
	require.ErrorIs(t, err, boom)

	b, err := f.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, usersHeader+"0,1,Alice,20\n", string(b))

	tables, err := f.ListTables("/db")
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, tables)
}

func TestFiles_CreateExclusiveAndAppend(t *testing.T) {
	f := NewFiles(afero.NewMemMapFs())
	require.NoError(t, f.MkdirAll("/db"))
	path := filepath.Join("/db", "t.csv")

	require.NoError(t, f.CreateExclusive(path, []byte("__MODE__,a TEXT\n")))
	err := f.CreateExclusive(path, []byte("x"))
	require.ErrorIs(t, err, os.ErrExist)

	require.NoError(t, AppendRows(f, path, []record.Row{{"0", "x,y"}, {"0", "z"}}))
	b, err := f.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "__MODE__,a TEXT\n0,\"x,y\"\n0,z\n", string(b))
}

func TestFiles_ListTables(t *testing.T) {
	f := NewFiles(afero.NewMemMapFs())
	require.NoError(t, f.MkdirAll("/db/id"))
	for _, name := range []string{"b.csv", "a.csv", "notes.txt"} {
		require.NoError(t, f.Touch(filepath.Join("/db", name)))
	}

	tables, err := f.ListTables("/db")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tables)
}

func TestAppendRows_TerminatesLastLine(t *testing.T) {
	f := NewFiles(afero.NewMemMapFs())
	path := newTestTable(t, f, "/db", "0,1,Alice,20")

	require.NoError(t, AppendRows(f, path, []record.Row{{"0", "2", "Bob", "30"}}))
	b, err := f.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, usersHeader+"0,1,Alice,20\n0,2,Bob,30\n", string(b))
}
