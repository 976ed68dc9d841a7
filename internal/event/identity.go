package event

import "strings"

// Identity is the pair (uid, recurrence_id), the only key used for matching
// across local, remote, and known-identity sets.
type Identity struct {
	UID          string
	RecurrenceID string
}

const identitySep = "__"

// IdentityOf returns the identity of e.
func IdentityOf(e *Event) Identity {
	return Identity{UID: e.UID, RecurrenceID: e.RecurrenceID}
}

// String serializes the identity: uid alone when RecurrenceID is absent,
// else uid + "__" + recurrence_id.
func (id Identity) String() string {
	if id.RecurrenceID == "" {
		return id.UID
	}
	return id.UID + identitySep + id.RecurrenceID
}

// ParseIdentity parses the serialized form back into an Identity. Absent a
// separator, the whole string is the UID.
func ParseIdentity(s string) Identity {
	if i := strings.LastIndex(s, identitySep); i >= 0 {
		return Identity{UID: s[:i], RecurrenceID: s[i+len(identitySep):]}
	}
	return Identity{UID: s}
}

// Less orders identities lexicographically on their serialized form, used
// by the diff engine and sync applier for reproducible apply order.
func (id Identity) Less(other Identity) bool {
	return id.String() < other.String()
}
