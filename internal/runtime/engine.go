package runtime

import (
	"log/slog"

	"github.com/xdsai/persephone/internal/logging"
	"github.com/xdsai/persephone/pkg/domain"
)

// placeholderText is shown when the current position does not resolve to a node.
const placeholderText = "Unknown node. The story data is missing this passage."

// Engine drives one run through a story graph.
// It is not safe for concurrent use; one engine serves exactly one run.
type Engine struct {
	story   *domain.Story
	graph   *Graph
	start   string
	initial domain.State

	currentID string
	state     domain.State
	history   []string

	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks, including the diagnostic sink.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger diagnostics are written to.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine indexes the story graph and starts a fresh run.
// A missing start node falls back to the first declared node, or to an
// empty position when the graph has no nodes.
func NewEngine(story *domain.Story, opts ...EngineOption) *Engine {
	if story == nil {
		story = &domain.Story{}
	}
	e := &Engine{
		story:  story,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.graph = NewGraph(story.Nodes, e.report)
	e.start = story.Start
	if !e.graph.Has(e.start) {
		fallback := e.graph.First()
		e.report(domain.Diagnostic{
			Kind:   domain.DiagMissingStart,
			NodeID: story.Start,
			Detail: "start node missing, falling back to first node",
			Value:  fallback,
		})
		e.start = fallback
	}

	// A state that never went through decoding (nil flags) starts roaming.
	e.initial = story.Meta.State.Clone()
	if story.Meta.State.Flags == nil {
		e.initial.CanRoam = true
	}

	e.init()
	return e
}

func (e *Engine) init() {
	e.state = e.initial.Clone()
	e.currentID = e.start
	e.history = nil
}

// Reset restores the initial state, the start position and an empty history.
func (e *Engine) Reset() {
	from := e.currentID
	e.init()
	e.enter(from, "reset")
}

// Story returns the story document the engine was built from.
func (e *Engine) Story() *domain.Story {
	return e.story
}

// Graph returns the node index.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// Meta returns the story metadata.
func (e *Engine) Meta() domain.Meta {
	return e.story.Meta
}

// Flow returns the flow configuration (hub and lock-at nodes).
func (e *Engine) Flow() domain.Flow {
	return e.story.Meta.Flow
}

// StartID returns the resolved start node id.
func (e *Engine) StartID() string {
	return e.start
}

// CurrentID returns the current position.
func (e *Engine) CurrentID() string {
	return e.currentID
}

// Current returns the current node. An invalid position yields a
// placeholder regular node with no choices instead of failing.
func (e *Engine) Current() domain.Node {
	if n, ok := e.graph.Get(e.currentID); ok {
		return *n
	}
	return domain.Node{ID: e.currentID, Text: placeholderText}
}

// IsEnding reports whether the current node is an ending.
func (e *Engine) IsEnding() bool {
	return e.Current().IsEnding()
}

// State returns a copy of the player state.
func (e *Engine) State() domain.State {
	return e.state.Clone()
}

// History returns a copy of the back-stack, oldest first.
func (e *Engine) History() []string {
	return append([]string(nil), e.history...)
}

// HistoryLen returns the depth of the back-stack.
func (e *Engine) HistoryLen() int {
	return len(e.history)
}

// CanBack reports whether Back could move at all.
func (e *Engine) CanBack() bool {
	return e.state.CanRoam && len(e.history) > 0
}

// Lore returns the discovered lore entries in discovery order.
func (e *Engine) Lore() []domain.LoreItem {
	registry := e.story.Meta.LoreRegistry
	out := make([]domain.LoreItem, 0, len(e.state.LoreDiscoveries))
	for _, slug := range e.state.LoreDiscoveries {
		if item, ok := registry.Find(slug); ok {
			out = append(out, item)
		}
	}
	return out
}

func (e *Engine) report(d domain.Diagnostic) {
	e.logger.Warn("narrative diagnostic",
		"kind", string(d.Kind),
		"node_id", d.NodeID,
		"detail", d.Detail,
		"value", d.Value,
	)
	if e.hooks.OnDiagnostic != nil {
		e.hooks.OnDiagnostic(&d)
	}
}

func (e *Engine) enter(from, via string) {
	e.logger.Debug("node enter", "from", from, "node_id", e.currentID, "via", via)
	if e.hooks.OnNodeEnter == nil {
		return
	}
	node := e.Current()
	e.hooks.OnNodeEnter(&domain.NodeEvent{
		FromID: from,
		NodeID: e.currentID,
		Ending: node.IsEnding(),
		Via:    via,
	})
}
