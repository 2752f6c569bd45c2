package types

// Event represents a typed event emitted during state transitions. Events are
// fire-and-forget notifications for indexers; they never feed back into the
// ledger.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
