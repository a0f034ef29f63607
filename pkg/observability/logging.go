package observability

import (
	"log/slog"

	"github.com/xdsai/persephone/pkg/domain"
)

// LoggingHooks logs the run as it progresses. Diagnostics are left to the
// engine logger.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(e *domain.NodeEvent) {
			logger.Info("node_enter",
				"node_id", e.NodeID,
				"from", e.FromID,
				"via", e.Via,
				"ending", e.Ending,
			)
		},
		OnChoice: func(e *domain.ChoiceEvent) {
			logger.Info("choice", "node_id", e.NodeID, "index", e.Index, "to", e.To)
		},
		OnLockIn: func(e *domain.LockEvent) {
			logger.Info("lock_in", "node_id", e.NodeID, "dropped_history", e.DroppedHistory)
		},
	}
}
