package csvsql_test

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/csvsql"
)

func TestOpen_PrepareStepFinalize(t *testing.T) {
	db, err := csvsql.Open("db", csvsql.WithFS(afero.NewMemMapFs()), csvsql.WithCreateDir())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, age INTEGER)")
	require.NoError(t, err)
	n, err := db.Exec("INSERT INTO users (name, age) VALUES ('Alice', 20), ('Hanako', 123)")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	st, err := db.Prepare("SELECT name FROM users WHERE id = ?")
	require.NoError(t, err)
	require.NoError(t, st.BindInt(1, 2))

	var names []string
	for {
		ok, err := st.Step()
		require.NoError(t, err)
		if !ok {
			break
		}
		name, err := st.ColumnText(0)
		require.NoError(t, err)
		names = append(names, name)
	}
	assert.Equal(t, []string{"Hanako"}, names)
	require.NoError(t, st.Finalize())

	_, err = st.Step()
	assert.ErrorIs(t, err, csvsql.ErrStmtFinalized)
}

func TestKindOf(t *testing.T) {
	db, err := csvsql.Open("db", csvsql.WithFS(afero.NewMemMapFs()), csvsql.WithCreateDir())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Prepare("SELECT FROM")
	require.Error(t, err)
	assert.True(t, errors.Is(err, csvsql.ErrSyntax))
	assert.Equal(t, "SYNTAX", csvsql.KindOf(err).String())
}
