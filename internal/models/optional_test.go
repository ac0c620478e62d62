package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalAbsentNullAndValue(t *testing.T) {
	var req PatchTodoRequest
	require.NoError(t, json.Unmarshal([]byte(`{"due_at": null, "title": "x"}`), &req))

	assert.True(t, req.DueAt.Set)
	assert.Nil(t, req.DueAt.Value)

	require.True(t, req.Title.Set)
	require.NotNil(t, req.Title.Value)
	assert.Equal(t, "x", *req.Title.Value)

	assert.False(t, req.RemindAt.Set)
	assert.False(t, req.Done.Set)
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var req PatchTodoRequest
	assert.Error(t, json.Unmarshal([]byte(`{"shared_with": "not-a-list"}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"done": "yes"}`), &req))
}

func TestPatchRequestEmpty(t *testing.T) {
	var req PatchTodoRequest
	require.NoError(t, json.Unmarshal([]byte(`{"if_version": 3}`), &req))
	assert.True(t, req.Empty())

	require.NoError(t, json.Unmarshal([]byte(`{"done": true}`), &req))
	assert.False(t, req.Empty())
}
