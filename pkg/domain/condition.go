package domain

// Operator is a comparison used by a Condition.
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
)

// Valid reports whether op is one of the six supported operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	}
	return false
}

// Condition is a declarative predicate over State.
type Condition struct {
	Var   string   `json:"var" yaml:"var" mapstructure:"var"`
	Op    Operator `json:"op" yaml:"op" mapstructure:"op"`
	Value any      `json:"value" yaml:"value" mapstructure:"value"`
}
