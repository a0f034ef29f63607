package runtime

import (
	"errors"

	"github.com/xdsai/persephone/pkg/domain"
)

// RenderedChoice is one entry of the presentation view of a node's choices.
type RenderedChoice struct {
	Choice  domain.Choice `json:"choice"`
	Enabled bool          `json:"enabled"`
	Reason  string        `json:"reason,omitempty"`
	// Index is the position Choose accepts for this entry, or -1 when disabled.
	Index int `json:"index"`
}

type choiceCheck struct {
	reachable bool
	passes    bool
}

// scan evaluates every choice of node once, reporting dangling targets and
// unknown operators as it goes.
func (e *Engine) scan(node domain.Node) []choiceCheck {
	checks := make([]choiceCheck, len(node.Choices))
	for i, c := range node.Choices {
		if !e.graph.Has(c.To) {
			e.report(domain.Diagnostic{
				Kind:   domain.DiagDanglingTarget,
				NodeID: node.ID,
				Detail: "choice target is not in the graph, skipping",
				Value:  c.To,
			})
			continue
		}
		checks[i].reachable = true

		ok, err := EvaluateAll(c.Conditions, &e.state)
		if errors.Is(err, ErrUnknownOperator) {
			e.report(domain.Diagnostic{
				Kind:   domain.DiagUnknownOperator,
				NodeID: node.ID,
				Detail: err.Error(),
				Value:  c.Text,
			})
		}
		checks[i].passes = ok
	}
	return checks
}

// VisibleChoices returns the choices of the current node the player may take:
// reachable targets whose conditions all pass, in declaration order.
// Endings have none.
func (e *Engine) VisibleChoices() []domain.Choice {
	node := e.Current()
	if node.IsEnding() {
		return nil
	}
	var out []domain.Choice
	for i, check := range e.scan(node) {
		if check.reachable && check.passes {
			out = append(out, node.Choices[i])
		}
	}
	return out
}

// RenderableChoices returns the richer view used by presentation layers.
// Failing choices are shown disabled only when the story enables locked choices
// and the choice opts in. Choices sharing a slug collapse into one entry picked by
// variant precedence, then enabled over disabled, then declaration order.
func (e *Engine) RenderableChoices() []RenderedChoice {
	node := e.Current()
	if node.IsEnding() {
		return nil
	}
	showLocked := e.story.Meta.UX.ShowLockedChoices

	type candidate struct {
		RenderedChoice
		pos int
	}
	var candidates []candidate
	visible := 0
	for i, check := range e.scan(node) {
		if !check.reachable {
			continue
		}
		c := node.Choices[i]
		switch {
		case check.passes:
			candidates = append(candidates, candidate{
				RenderedChoice: RenderedChoice{Choice: c, Enabled: true, Index: visible},
				pos:            i,
			})
			visible++
		case showLocked && c.ShowIfLocked:
			reason := c.LockedText
			if reason == "" {
				reason = domain.DefaultLockedReason
			}
			candidates = append(candidates, candidate{
				RenderedChoice: RenderedChoice{Choice: c, Reason: reason, Index: -1},
				pos:            i,
			})
		}
	}

	winners := make(map[string]int)
	for k, cand := range candidates {
		slug := cand.Choice.Slug
		if slug == "" {
			continue
		}
		best, seen := winners[slug]
		if !seen || outranks(cand.RenderedChoice, candidates[best].RenderedChoice) {
			winners[slug] = k
		}
	}

	out := make([]RenderedChoice, 0, len(candidates))
	for k, cand := range candidates {
		if slug := cand.Choice.Slug; slug != "" && winners[slug] != k {
			continue
		}
		out = append(out, cand.RenderedChoice)
	}
	return out
}

// outranks reports whether a beats an earlier-declared b within a slug group.
// Ties keep b, which preserves the lowest index.
func outranks(a, b RenderedChoice) bool {
	pa, pb := a.Choice.Precedence(), b.Choice.Precedence()
	if pa != pb {
		return pa > pb
	}
	return a.Enabled && !b.Enabled
}

// OfferedIndices returns the Choose index of every enabled RenderableChoices
// entry, in menu order. Hosts number their menus from this list.
func (e *Engine) OfferedIndices() []int {
	var out []int
	for _, rc := range e.RenderableChoices() {
		if rc.Enabled {
			out = append(out, rc.Index)
		}
	}
	return out
}

// ChooseOffered is Choose restricted to the entries RenderableChoices offers.
// A visible choice that lost its group collapse is rejected without mutation.
func (e *Engine) ChooseOffered(index int) bool {
	for _, offered := range e.OfferedIndices() {
		if offered == index {
			return e.Choose(index)
		}
	}
	e.report(domain.Diagnostic{
		Kind:   domain.DiagInvalidChoice,
		NodeID: e.currentID,
		Detail: "choice is not offered",
		Value:  index,
	})
	return false
}
