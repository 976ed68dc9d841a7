package event

import "github.com/google/uuid"

// NewUID mints an opaque identifier for a locally authored event that has
// not yet been pushed to any provider. UID minting for the `new` CLI
// command lives outside this package; callers that need one before a
// push assigns the provider's own identifier use this. A minted UID is
// indistinguishable from a provider-issued one once assigned; identity
// is opaque throughout the core.
func NewUID() string {
	return uuid.New().String()
}
