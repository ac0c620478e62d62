package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListValue(t *testing.T) {
	v, err := StringList{"a", "b"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, v.(string))

	v, err = StringList(nil).Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, v.(string))
}

func TestStringListScan(t *testing.T) {
	var s StringList
	require.NoError(t, s.Scan(`["u1","u2"]`))
	assert.Equal(t, StringList{"u1", "u2"}, s)

	require.NoError(t, s.Scan([]byte(`[]`)))
	assert.Empty(t, s)

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)

	assert.Error(t, s.Scan(`{"not":"a list"}`))
	assert.Error(t, s.Scan(42))
}

func TestStringListContainsIsExact(t *testing.T) {
	s := StringList{"user-12"}
	assert.True(t, s.Contains("user-12"))
	// A prefix of a stored id must not match.
	assert.False(t, s.Contains("user-1"))
	assert.False(t, s.Contains(""))
}

func TestNormalizeIDSet(t *testing.T) {
	got := NormalizeIDSet([]string{"b", "", "a", "b", "a"})
	assert.ElementsMatch(t, StringList{"a", "b"}, got)

	assert.Empty(t, NormalizeIDSet(nil))
	assert.NotNil(t, NormalizeIDSet(nil))
}
