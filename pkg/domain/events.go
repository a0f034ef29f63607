package domain

import "fmt"

// DiagnosticKind classifies a non-fatal problem reported by the engine.
type DiagnosticKind string

const (
	// Data integrity issues.
	DiagMissingStart    DiagnosticKind = "missing_start"
	DiagInvalidNode     DiagnosticKind = "invalid_node"
	DiagDuplicateNode   DiagnosticKind = "duplicate_node"
	DiagDanglingTarget  DiagnosticKind = "dangling_target"
	DiagUnknownOperator DiagnosticKind = "unknown_operator"
	DiagBadExpression   DiagnosticKind = "bad_expression"
	DiagCorruptSave     DiagnosticKind = "corrupt_save"
	DiagStaleSave       DiagnosticKind = "stale_save"

	// Caller misuse.
	DiagInvalidChoice  DiagnosticKind = "invalid_choice"
	DiagUnknownNode    DiagnosticKind = "unknown_node"
	DiagUnknownCommand DiagnosticKind = "unknown_command"
	DiagLockedCommand  DiagnosticKind = "locked_command"
)

// Diagnostic is a non-fatal report. The run always continues after one.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	NodeID string         `json:"node_id,omitempty"`
	Detail string         `json:"detail"`
	Value  any            `json:"value,omitempty"`
}

func (d Diagnostic) String() string {
	if d.NodeID == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Detail)
	}
	return fmt.Sprintf("%s at %s: %s", d.Kind, d.NodeID, d.Detail)
}

// NodeEvent is emitted whenever the position changes.
type NodeEvent struct {
	FromID string `json:"from_id,omitempty"`
	NodeID string `json:"node_id"`
	Ending bool   `json:"ending,omitempty"`
	// Via is "choice", "goto", "back", "reset" or "restore".
	Via string `json:"via"`
}

// ChoiceEvent is emitted after a choice was taken.
type ChoiceEvent struct {
	NodeID string `json:"node_id"`
	Index  int    `json:"index"`
	Text   string `json:"text"`
	To     string `json:"to"`
}

// LockEvent is emitted when the run reaches a point of no return.
type LockEvent struct {
	NodeID         string `json:"node_id"`
	DroppedHistory int    `json:"dropped_history"`
}

// LifecycleHooks defines callbacks for engine observability.
// OnDiagnostic is the single channel for every non-fatal problem.
type LifecycleHooks struct {
	OnNodeEnter  func(*NodeEvent)
	OnChoice     func(*ChoiceEvent)
	OnLockIn     func(*LockEvent)
	OnDiagnostic func(*Diagnostic)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter:  chain(h.OnNodeEnter, other.OnNodeEnter),
		OnChoice:     chain(h.OnChoice, other.OnChoice),
		OnLockIn:     chain(h.OnLockIn, other.OnLockIn),
		OnDiagnostic: chain(h.OnDiagnostic, other.OnDiagnostic),
	}
}

func chain[T any](a, b func(*T)) func(*T) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e *T) {
		a(e)
		b(e)
	}
}
