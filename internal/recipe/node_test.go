package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingGet(t *testing.T) {
	m := Mapping{Entries: []MapEntry{
		{Key: "first", Value: Literal{Value: "1"}},
		{Key: "second", Value: Literal{Value: "2"}},
	}}

	assert.Equal(t, Literal{Value: "2"}, m.Get("second"))
	assert.Nil(t, m.Get("third"))
}

func TestStrings(t *testing.T) {
	got, err := Strings(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Strings(Literal{Value: "single"})
	require.NoError(t, err)
	assert.Equal(t, []string{"single"}, got)

	got, err = Strings(Sequence{Items: []Node{Literal{Value: "a"}, Literal{Value: "b"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestStringsRejectsUnresolvedNodes(t *testing.T) {
	_, err := Strings(Sequence{Items: []Node{If{Cond: "x"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = Strings(Mapping{})
	require.Error(t, err)
}
