package runtime

import (
	"strings"

	"github.com/xdsai/persephone/pkg/domain"
)

// CommandResult describes what invoking a hidden command did.
type CommandResult struct {
	Command domain.HiddenCommand `json:"command"`
	// Moved is true when the command effect named a node and the engine jumped to it.
	Moved bool `json:"moved"`
	// Message is the effect text for the host to display when nothing moved.
	Message string `json:"message,omitempty"`
}

// Commands returns the hidden commands declared by the story.
func (e *Engine) Commands() []domain.HiddenCommand {
	return e.story.Meta.HiddenCommands
}

// FindCommand looks a command up by name or alias, ignoring case.
func (e *Engine) FindCommand(name string) (domain.HiddenCommand, bool) {
	name = strings.TrimSpace(name)
	for _, cmd := range e.story.Meta.HiddenCommands {
		for _, n := range cmd.Names() {
			if n != "" && strings.EqualFold(n, name) {
				return cmd, true
			}
		}
	}
	return domain.HiddenCommand{}, false
}

// CommandUnlocked evaluates the command requirement against the current state.
// A malformed requirement fails closed and is reported.
func (e *Engine) CommandUnlocked(cmd domain.HiddenCommand) bool {
	ok, err := EvaluateRequirement(cmd.Requires, &e.state)
	if err != nil {
		kind := domain.DiagBadExpression
		if len(cmd.Requires.Conditions) > 0 {
			kind = domain.DiagUnknownOperator
		}
		e.report(domain.Diagnostic{
			Kind:   kind,
			NodeID: e.currentID,
			Detail: err.Error(),
			Value:  cmd.Cmd,
		})
		return false
	}
	return ok
}

// UnlockedCommands returns the commands whose requirements currently pass.
func (e *Engine) UnlockedCommands() []domain.HiddenCommand {
	var out []domain.HiddenCommand
	for _, cmd := range e.story.Meta.HiddenCommands {
		if e.CommandUnlocked(cmd) {
			out = append(out, cmd)
		}
	}
	return out
}

// Invoke runs a hidden command by name. It returns false when the command is
// unknown or locked. An effect naming a graph node jumps there with history.
func (e *Engine) Invoke(name string) (CommandResult, bool) {
	cmd, ok := e.FindCommand(name)
	if !ok {
		e.report(domain.Diagnostic{
			Kind:   domain.DiagUnknownCommand,
			NodeID: e.currentID,
			Detail: "no hidden command with that name",
			Value:  name,
		})
		return CommandResult{}, false
	}
	if !e.CommandUnlocked(cmd) {
		e.report(domain.Diagnostic{
			Kind:   domain.DiagLockedCommand,
			NodeID: e.currentID,
			Detail: "hidden command requirement not met",
			Value:  cmd.Cmd,
		})
		return CommandResult{Command: cmd}, false
	}

	res := CommandResult{Command: cmd}
	if e.graph.Has(cmd.Effect) {
		res.Moved = e.GoTo(cmd.Effect, true)
		return res, true
	}
	res.Message = cmd.Effect
	return res, true
}
