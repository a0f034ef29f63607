package domain

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// HiddenCommand is an optional out-of-band command the host can expose.
type HiddenCommand struct {
	Cmd          string      `json:"cmd" yaml:"cmd"`
	Aliases      []string    `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	DiscoverHint string      `json:"discoverHint,omitempty" yaml:"discoverHint,omitempty"`
	Effect       string      `json:"effect,omitempty" yaml:"effect,omitempty"`
	Requires     Requirement `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// Names returns the command name followed by its aliases.
func (c HiddenCommand) Names() []string {
	return append([]string{c.Cmd}, c.Aliases...)
}

// Requirement gates a hidden command. It is either a text expression
// (e.g. "ghostKey && !corpContract") or a list of Conditions that must all pass.
// The zero value has no requirement.
type Requirement struct {
	Expr       string
	Conditions []Condition
}

// IsZero reports whether no requirement was declared.
func (r Requirement) IsZero() bool {
	return r.Expr == "" && len(r.Conditions) == 0
}

// DecodeRequirement builds a Requirement from a decoded document value.
func DecodeRequirement(raw any) (Requirement, error) {
	switch v := raw.(type) {
	case nil:
		return Requirement{}, nil
	case string:
		return Requirement{Expr: v}, nil
	case []any:
		var conds []Condition
		if err := mapstructure.Decode(v, &conds); err != nil {
			return Requirement{}, fmt.Errorf("decode requirement conditions: %w", err)
		}
		return Requirement{Conditions: conds}, nil
	}
	return Requirement{}, fmt.Errorf("requirement must be a string or a condition list, got %T", raw)
}

// UnmarshalJSON accepts either a string or a condition list.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	req, err := DecodeRequirement(raw)
	if err != nil {
		return err
	}
	*r = req
	return nil
}

// UnmarshalYAML accepts either a string or a condition list.
func (r *Requirement) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	req, err := DecodeRequirement(raw)
	if err != nil {
		return err
	}
	*r = req
	return nil
}

// MarshalJSON emits the expression string, the condition list, or null.
func (r Requirement) MarshalJSON() ([]byte, error) {
	switch {
	case len(r.Conditions) > 0:
		return json.Marshal(r.Conditions)
	case r.Expr != "":
		return json.Marshal(r.Expr)
	}
	return []byte("null"), nil
}
