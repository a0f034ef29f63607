package dsl

import "github.com/xdsai/persephone/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node domain.Node
}

// Text sets the narrative text of the node.
func (n *NodeBuilder) Text(content string) *NodeBuilder {
	n.node.Text = content
	return n
}

// Ending turns the node into a terminal node.
func (n *NodeBuilder) Ending(endingID, title string) *NodeBuilder {
	n.node.Type = domain.NodeTypeEnding
	n.node.EndingID = endingID
	n.node.Title = title
	return n
}

// Choice adds an edge to target.
func (n *NodeBuilder) Choice(text, target string, opts ...ChoiceOption) *NodeBuilder {
	c := domain.Choice{Text: text, To: target}
	for _, opt := range opts {
		opt(&c)
	}
	n.node.Choices = append(n.node.Choices, c)
	return n
}

// Go adds an unconditional choice to target.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	return n.Choice("Continue", target)
}

// ChoiceOption configures a choice added with Choice.
type ChoiceOption func(*domain.Choice)

// If gates the choice on a condition. Repeated conditions must all hold.
func If(name string, op domain.Operator, value any) ChoiceOption {
	return func(c *domain.Choice) {
		c.Conditions = append(c.Conditions, domain.Condition{Var: name, Op: op, Value: value})
	}
}

// Gain adds delta to a stat when the choice is taken.
func Gain(stat string, delta int) ChoiceOption {
	return func(c *domain.Choice) {
		eff := effects(c)
		if eff.Deltas == nil {
			eff.Deltas = make(map[string]int)
		}
		eff.Deltas[stat] += delta
	}
}

// Set writes a flag when the choice is taken.
func Set(flag string, value bool) ChoiceOption {
	return func(c *domain.Choice) {
		eff := effects(c)
		if eff.Flags == nil {
			eff.Flags = make(map[string]bool)
		}
		eff.Flags[flag] = value
	}
}

// Discover registers lore slugs when the choice is taken.
func Discover(slugs ...string) ChoiceOption {
	return func(c *domain.Choice) {
		eff := effects(c)
		eff.AddLore = append(eff.AddLore, slugs...)
	}
}

// ShortMode overwrites the short mode toggle when the choice is taken.
func ShortMode(on bool) ChoiceOption {
	return func(c *domain.Choice) {
		effects(c).ShortMode = &on
	}
}

// ShowLocked keeps the choice visible while its conditions fail.
// An empty reason falls back to the default locked text.
func ShowLocked(reason string) ChoiceOption {
	return func(c *domain.Choice) {
		c.ShowIfLocked = true
		c.LockedText = reason
	}
}

// Variant groups the choice with other variants of slug.
func Variant(slug, variant string) ChoiceOption {
	return func(c *domain.Choice) {
		c.Slug = slug
		c.Variant = variant
	}
}

func effects(c *domain.Choice) *domain.Effects {
	if c.Effects == nil {
		c.Effects = &domain.Effects{}
	}
	return c.Effects
}
