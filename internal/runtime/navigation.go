package runtime

import (
	"fmt"

	"github.com/xdsai/persephone/pkg/domain"
)

// Choose takes the visible choice at index: effects are applied, the previous
// position is pushed while roaming, and lock-in is evaluated at the target.
// An out-of-range index changes nothing and returns false.
func (e *Engine) Choose(index int) bool {
	choices := e.VisibleChoices()
	if index < 0 || index >= len(choices) {
		e.report(domain.Diagnostic{
			Kind:   domain.DiagInvalidChoice,
			NodeID: e.currentID,
			Detail: fmt.Sprintf("choice index out of range (%d visible)", len(choices)),
			Value:  index,
		})
		return false
	}
	choice := choices[index]
	from := e.currentID

	ApplyEffects(choice.Effects, &e.state, e.story.Meta.LoreRegistry)
	if e.state.CanRoam {
		e.history = append(e.history, from)
	}
	e.currentID = choice.To

	if e.hooks.OnChoice != nil {
		e.hooks.OnChoice(&domain.ChoiceEvent{
			NodeID: from,
			Index:  index,
			Text:   choice.Text,
			To:     choice.To,
		})
	}
	e.enter(from, "choice")
	e.checkLockIn()
	return true
}

// GoTo jumps directly to id. It fails without mutation when id is not in the graph.
func (e *Engine) GoTo(id string, pushHistory bool) bool {
	if !e.graph.Has(id) {
		e.report(domain.Diagnostic{
			Kind:   domain.DiagUnknownNode,
			NodeID: e.currentID,
			Detail: "goto target is not in the graph",
			Value:  id,
		})
		return false
	}
	from := e.currentID
	if pushHistory && e.state.CanRoam {
		e.history = append(e.history, from)
	}
	e.currentID = id
	e.enter(from, "goto")
	e.checkLockIn()
	return true
}

// Back pops the history stack. It returns false without mutation when the run is
// locked, the stack is empty, or the top entry no longer names a node.
func (e *Engine) Back() bool {
	if !e.state.CanRoam || len(e.history) == 0 {
		return false
	}
	prev := e.history[len(e.history)-1]
	if !e.graph.Has(prev) {
		e.report(domain.Diagnostic{
			Kind:   domain.DiagUnknownNode,
			NodeID: e.currentID,
			Detail: "history entry is not in the graph",
			Value:  prev,
		})
		return false
	}
	from := e.currentID
	e.history = e.history[:len(e.history)-1]
	e.currentID = prev
	e.enter(from, "back")
	return true
}

// checkLockIn turns roaming off for good once a lock-at node is reached.
func (e *Engine) checkLockIn() {
	if !e.state.CanRoam || !e.story.Meta.Flow.LocksAt(e.currentID) {
		return
	}
	dropped := len(e.history)
	e.state.CanRoam = false
	e.history = nil
	e.logger.Info("run locked", "node_id", e.currentID, "dropped_history", dropped)
	if e.hooks.OnLockIn != nil {
		e.hooks.OnLockIn(&domain.LockEvent{NodeID: e.currentID, DroppedHistory: dropped})
	}
}
