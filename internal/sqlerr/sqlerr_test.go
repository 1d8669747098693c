package sqlerr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := New(KindSyntax, "not found FROM on select statement")
	require.ErrorIs(t, err, ErrSyntax)
	assert.NotErrorIs(t, err, ErrExec)
	assert.Equal(t, "csvsql: SYNTAX: not found FROM on select statement", err.Error())
}

func TestWrap_KeepsCause(t *testing.T) {
	err := Wrap(KindFileIO, io.ErrUnexpectedEOF, "read header %s", "users.csv")
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.ErrorIs(t, err, ErrFileIO)
	assert.Contains(t, err.Error(), "read header users.csv")

	assert.Nil(t, Wrap(KindFileIO, nil, "noop"))
}

func TestKindOf_ThroughFmtWrap(t *testing.T) {
	inner := New(KindBufOverflow, "stack overflow")
	outer := fmt.Errorf("engine: step: %w", inner)
	assert.Equal(t, KindBufOverflow, KindOf(outer))
	assert.Equal(t, KindNone, KindOf(errors.New("plain")))
	assert.Equal(t, "INDEX_OUT_OF_RANGE", KindIndexOutOfRange.String())
}
