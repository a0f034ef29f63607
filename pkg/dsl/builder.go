package dsl

import (
	"errors"
	"fmt"

	"github.com/xdsai/persephone/pkg/domain"
)

// Builder manages the story construction.
type Builder struct {
	story domain.Story
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a new story builder.
func New(title string) *Builder {
	b := &Builder{nodes: make(map[string]*NodeBuilder)}
	b.story.SchemaVersion = 1
	b.story.Meta.Title = title
	b.story.Meta.State = domain.NewState()
	return b
}

// Add creates a new node in the story.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{node: domain.Node{ID: id}}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Start sets the start node. It defaults to the first node added.
func (b *Builder) Start(id string) *Builder {
	b.story.Start = id
	return b
}

// Protagonist names the player character.
func (b *Builder) Protagonist(name string) *Builder {
	b.story.Meta.Protagonist = name
	return b
}

// State replaces the initial state.
func (b *Builder) State(state domain.State) *Builder {
	b.story.Meta.State = state
	return b
}

// Hub marks the hub node.
func (b *Builder) Hub(id string) *Builder {
	b.story.Meta.Flow.HubNodeID = id
	return b
}

// LockAt adds points of no return.
func (b *Builder) LockAt(ids ...string) *Builder {
	b.story.Meta.Flow.LockAtNodeIDs = append(b.story.Meta.Flow.LockAtNodeIDs, ids...)
	return b
}

// Lore registers lore entries.
func (b *Builder) Lore(items ...domain.LoreItem) *Builder {
	b.story.Meta.LoreRegistry = append(b.story.Meta.LoreRegistry, items...)
	return b
}

// Command registers a hidden command.
func (b *Builder) Command(cmd domain.HiddenCommand) *Builder {
	b.story.Meta.HiddenCommands = append(b.story.Meta.HiddenCommands, cmd)
	return b
}

// UX sets the presentation toggles.
func (b *Builder) UX(ux domain.UX) *Builder {
	b.story.Meta.UX = ux
	return b
}

// Build assembles the story. Dangling choice targets are allowed; the
// validator and the engine report them.
func (b *Builder) Build() (*domain.Story, error) {
	if len(b.order) == 0 {
		return nil, errors.New("story has no nodes")
	}

	story := b.story
	story.Nodes = make([]domain.Node, 0, len(b.order))
	var errs []error
	for _, id := range b.order {
		nb := b.nodes[id]
		if nb.node.IsEnding() && len(nb.node.Choices) > 0 {
			errs = append(errs, fmt.Errorf("ending %q has choices", id))
		}
		story.Nodes = append(story.Nodes, nb.node)
	}

	if story.Start == "" {
		story.Start = b.order[0]
	}
	if _, ok := b.nodes[story.Start]; !ok {
		errs = append(errs, fmt.Errorf("start node %q was never added", story.Start))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to build story: %w", err)
	}
	return &story, nil
}
