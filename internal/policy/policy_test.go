package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func TestCanSee(t *testing.T) {
	assert.True(t, CanSee("u1", "u1", nil, nil), "creator sees")
	assert.True(t, CanSee("u2", "u1", ptr("u2"), nil), "assignee sees")
	assert.True(t, CanSee("u3", "u1", nil, []string{"u3"}), "shared user sees")
	assert.False(t, CanSee("u4", "u1", ptr("u2"), []string{"u3"}))

	// Membership is exact, never substring.
	assert.False(t, CanSee("u1", "u10", nil, []string{"u11"}))
}

func TestCanDeleteIsCreatorOnly(t *testing.T) {
	assert.True(t, CanDelete("u1", "u1"))
	assert.False(t, CanDelete("u2", "u1"), "shared users cannot delete")
}

func TestCanPurgeIsBroaderThanDelete(t *testing.T) {
	// Any visible principal may purge, even non-creators.
	assert.True(t, CanPurge("u2", "u1", ptr("u2"), nil))
	assert.True(t, CanPurge("u3", "u1", nil, []string{"u3"}))
	assert.False(t, CanPurge("u4", "u1", nil, nil))
}
