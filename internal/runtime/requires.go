package runtime

import (
	"github.com/xdsai/persephone/internal/compiler"
	"github.com/xdsai/persephone/pkg/domain"
)

// EvaluateRequirement checks a hidden-command requirement against state.
// A zero requirement passes. A condition list uses AND semantics and skips the
// text grammar; an expression goes through the requires interpreter.
// Errors always come with a false result.
func EvaluateRequirement(req domain.Requirement, state *domain.State) (bool, error) {
	if len(req.Conditions) > 0 {
		return EvaluateAll(req.Conditions, state)
	}
	return compiler.EvalRequires(req.Expr, state.Var)
}
