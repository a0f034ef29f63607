package domain

// Snapshot is the persisted run: position, state and back-stack.
type Snapshot struct {
	CurrentID string   `json:"currentId"`
	State     State    `json:"state"`
	History   []string `json:"history"`
}
