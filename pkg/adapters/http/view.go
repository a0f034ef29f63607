package http

import (
	"github.com/xdsai/persephone/internal/runtime"
	"github.com/xdsai/persephone/pkg/domain"
)

// NodeView is the public part of the current node.
type NodeView struct {
	ID       string `json:"id"`
	Type     string `json:"type,omitempty"`
	Text     string `json:"text"`
	EndingID string `json:"endingId,omitempty"`
	Title    string `json:"title,omitempty"`
}

// SessionView is what every session endpoint returns.
type SessionView struct {
	ID      string                   `json:"id"`
	Node    NodeView                 `json:"node"`
	Ending  bool                     `json:"ending"`
	Choices []runtime.RenderedChoice `json:"choices"`
	State   domain.State             `json:"state"`
	History []string                 `json:"history"`
	CanBack bool                     `json:"canBack"`
	Lore    []domain.LoreItem        `json:"lore"`

	// Message carries the text of a hidden command that did not move the run.
	Message string `json:"message,omitempty"`
}

func newSessionView(id string, e *runtime.Engine) SessionView {
	node := e.Current()
	view := SessionView{
		ID: id,
		Node: NodeView{
			ID:       node.ID,
			Type:     node.Type,
			Text:     node.Text,
			EndingID: node.EndingID,
			Title:    node.Title,
		},
		Ending:  node.IsEnding(),
		Choices: e.RenderableChoices(),
		State:   e.State(),
		History: e.History(),
		CanBack: e.CanBack(),
		Lore:    e.Lore(),
	}
	if view.Choices == nil {
		view.Choices = []runtime.RenderedChoice{}
	}
	if view.History == nil {
		view.History = []string{}
	}
	return view
}

type chooseRequest struct {
	Index *int `json:"index"`
}

type gotoRequest struct {
	NodeID      string `json:"nodeId"`
	PushHistory bool   `json:"pushHistory"`
}

type commandRequest struct {
	Input string `json:"input"`
}

type errorResponse struct {
	Error string `json:"error"`
}
