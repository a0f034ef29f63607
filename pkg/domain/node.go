package domain

// NodeTypeEnding marks a terminal node. Any other type is a regular node.
const NodeTypeEnding = "ending"

// Choice variants used for grouped-variant collapse.
const (
	VariantDone      = "done"
	VariantAvailable = "available"
	VariantLocked    = "locked"
)

// DefaultLockedReason is shown for a locked choice that has no lockedText.
const DefaultLockedReason = "Requirements not met."

// Node represents a unit of narrative content.
// Regular nodes carry Choices; Ending nodes carry EndingID and Title and never branch.
type Node struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	Text string `json:"text" yaml:"text"`

	// Regular
	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`

	// Ending
	EndingID string `json:"endingId,omitempty" yaml:"endingId,omitempty"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
}

// IsEnding reports whether the node is the terminal Ending variant.
func (n Node) IsEnding() bool {
	return n.Type == NodeTypeEnding
}

// Choice is an edge from a regular node to a target node.
type Choice struct {
	Text       string      `json:"text" yaml:"text"`
	To         string      `json:"to" yaml:"to"`
	Effects    *Effects    `json:"effects,omitempty" yaml:"effects,omitempty"`
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// Unlock hints
	ShowIfLocked bool   `json:"showIfLocked,omitempty" yaml:"showIfLocked,omitempty"`
	LockedText   string `json:"lockedText,omitempty" yaml:"lockedText,omitempty"`

	// Variant collapse
	Slug    string `json:"slug,omitempty" yaml:"slug,omitempty"`
	Variant string `json:"variant,omitempty" yaml:"variant,omitempty"`
}

// Precedence ranks the choice variant for group collapse.
// done > available > locked; an empty variant counts as available, unknown ones as 0.
func (c Choice) Precedence() int {
	switch c.Variant {
	case VariantDone:
		return 3
	case VariantAvailable, "":
		return 2
	case VariantLocked:
		return 1
	default:
		return 0
	}
}
