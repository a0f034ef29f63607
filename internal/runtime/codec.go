package runtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xdsai/persephone/pkg/domain"
)

// ErrCorruptSave is returned when a save payload cannot be decoded into a run.
var ErrCorruptSave = errors.New("corrupt save")

// saveDoc keeps the raw fields so each one can be validated on its own.
type saveDoc struct {
	CurrentID json.RawMessage `json:"currentId"`
	State     json.RawMessage `json:"state"`
	History   json.RawMessage `json:"history"`
}

// Encode renders a snapshot as the persisted transport string.
func Encode(snap domain.Snapshot) (string, error) {
	if snap.History == nil {
		snap.History = []string{}
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode save: %w", err)
	}
	return string(b), nil
}

// Decode parses a persisted transport string. The payload must be an object with
// a string currentId and an object state. A history that is not a list is treated
// as empty and non-string entries are dropped. Node ids are not checked here.
func Decode(payload string) (domain.Snapshot, error) {
	var doc saveDoc
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(doc.CurrentID, &snap.CurrentID); err != nil || !isJSON(doc.CurrentID, '"') {
		return domain.Snapshot{}, fmt.Errorf("%w: currentId must be a string", ErrCorruptSave)
	}
	if !isJSON(doc.State, '{') {
		return domain.Snapshot{}, fmt.Errorf("%w: state must be an object", ErrCorruptSave)
	}
	if err := json.Unmarshal(doc.State, &snap.State); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: state: %v", ErrCorruptSave, err)
	}

	var entries []any
	if isJSON(doc.History, '[') {
		_ = json.Unmarshal(doc.History, &entries)
	}
	for _, entry := range entries {
		if id, ok := entry.(string); ok {
			snap.History = append(snap.History, id)
		}
	}
	return snap, nil
}

func isJSON(raw json.RawMessage, lead byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == lead
}

// Snapshot captures the run as {currentId, state, history}.
func (e *Engine) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		CurrentID: e.currentID,
		State:     e.State(),
		History:   e.History(),
	}
}

// Serialize encodes the run for storage by the host.
func (e *Engine) Serialize() (string, error) {
	return Encode(e.Snapshot())
}

// Deserialize replaces the run with a saved one. A corrupt payload resets the
// run to its initial values and returns false; see Restore for the rest.
func (e *Engine) Deserialize(payload string) bool {
	snap, err := Decode(payload)
	if err != nil {
		e.report(domain.Diagnostic{
			Kind:   domain.DiagCorruptSave,
			NodeID: e.currentID,
			Detail: err.Error(),
		})
		e.Reset()
		return false
	}
	e.Restore(snap)
	return true
}

// Restore fully replaces state, position and history. A position that is no
// longer in the graph falls back to the start node and history entries naming
// unknown nodes are dropped.
func (e *Engine) Restore(snap domain.Snapshot) {
	from := e.currentID

	e.state = snap.State.Clone()
	e.currentID = snap.CurrentID
	if !e.graph.Has(snap.CurrentID) {
		e.report(domain.Diagnostic{
			Kind:   domain.DiagStaleSave,
			NodeID: snap.CurrentID,
			Detail: "saved node missing, falling back to start",
			Value:  e.start,
		})
		e.currentID = e.start
	}

	e.history = nil
	for _, id := range snap.History {
		if e.graph.Has(id) {
			e.history = append(e.history, id)
		}
	}
	e.enter(from, "restore")
}
