package runtime

import (
	"errors"
	"fmt"

	"github.com/xdsai/persephone/pkg/domain"
)

// ErrUnknownOperator is returned for a condition whose operator is not supported.
var ErrUnknownOperator = errors.New("unknown operator")

// EvaluateCondition checks a single condition against state.
// Equality is strict; relational operators coerce both sides to numbers.
// A missing variable never strictly equals anything, not even an explicit null.
// An unknown operator evaluates to false together with ErrUnknownOperator.
func EvaluateCondition(cond domain.Condition, state *domain.State) (bool, error) {
	left, present := state.Lookup(cond.Var)
	right := cond.Value

	switch cond.Op {
	case domain.OpEqual:
		return present && domain.StrictEqual(left, right), nil
	case domain.OpNotEqual:
		return !present || !domain.StrictEqual(left, right), nil
	case domain.OpLess:
		return domain.Coerce(left) < domain.Coerce(right), nil
	case domain.OpLessEqual:
		return domain.Coerce(left) <= domain.Coerce(right), nil
	case domain.OpGreater:
		return domain.Coerce(left) > domain.Coerce(right), nil
	case domain.OpGreaterEqual:
		return domain.Coerce(left) >= domain.Coerce(right), nil
	}
	return false, fmt.Errorf("%w %q on %q", ErrUnknownOperator, cond.Op, cond.Var)
}

// EvaluateAll reports whether every condition passes, stopping at the first
// false or unknown operator. An empty list passes.
func EvaluateAll(conds []domain.Condition, state *domain.State) (bool, error) {
	for _, cond := range conds {
		ok, err := EvaluateCondition(cond, state)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
