package lobby

// DidMembersChange reports whether two successive membership snapshots
// differ. The comparison is positional: the provider returns members in a
// stable order, so comparing old[i] against new[i] is enough and keeps the
// steady-state poll cheap. A reorder without a membership change would read
// as a change here; that matches the provider's contract.
func DidMembersChange(oldMembers, newMembers []Member) bool {
	if len(oldMembers) != len(newMembers) {
		return true
	}

	for i := range newMembers {
		if oldMembers[i].ID != newMembers[i].ID ||
			oldMembers[i].IsReady != newMembers[i].IsReady {
			return true
		}
	}

	return false
}

// IsGameReady reports whether a lobby can start: more than one member and
// every member flagged ready. A solo lobby is never ready.
func IsGameReady(members []Member) bool {
	if len(members) <= 1 {
		return false
	}

	for _, m := range members {
		if !m.IsReady {
			return false
		}
	}

	return true
}

// ContainsMember reports whether id is present in the snapshot.
func ContainsMember(members []Member, id string) bool {
	for _, m := range members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// CheckNameUnique is the lobby-level duplicate-name check, run after a join
// has already inserted the caller into the snapshot. A unique name therefore
// matches exactly once (the caller themself); two or more matches mean
// someone else already holds the name and the caller should leave and pick a
// new one. Distinct from the connection-layer name registry, which guards a
// different membership universe at a different protocol phase.
func CheckNameUnique(name string, members []Member) bool {
	matches := 0
	for _, m := range members {
		if m.DisplayName == name {
			matches++
			if matches == 2 {
				return false
			}
		}
	}
	return true
}
