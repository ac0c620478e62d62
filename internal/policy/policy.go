// Package policy holds the pure visibility and ownership predicates shared by
// the todo and note handlers. Keeping them free of storage makes the rules
// testable in isolation.
package policy

// CanSee reports whether a user may read or patch an entity: creator,
// assignee (todos only; pass nil otherwise), or member of shared_with.
func CanSee(userID, createdBy string, assignedTo *string, sharedWith []string) bool {
	if createdBy == userID {
		return true
	}
	if assignedTo != nil && *assignedTo == userID {
		return true
	}
	for _, id := range sharedWith {
		if id == userID {
			return true
		}
	}
	return false
}

// CanDelete: trash and restore are creator-only. Shared users may edit via
// patch but not remove the creator's record.
func CanDelete(userID, createdBy string) bool {
	return createdBy == userID
}

// CanPurge: any principal who can see an already-trashed entity may purge it.
// Deliberately looser than CanDelete.
func CanPurge(userID, createdBy string, assignedTo *string, sharedWith []string) bool {
	return CanSee(userID, createdBy, assignedTo, sharedWith)
}
