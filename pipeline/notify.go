package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dialwise/evalpipe/core"
)

// notify emits the terminal-path notification. eval is non-nil on the success
// path, cause non-nil on the failure path. Notification failures are logged
// only; the terminal transition has already been committed.
func (o *Orchestrator) notify(ctx context.Context, sess *core.Session, eval *core.Evaluation, cause error) {
	n := &core.Notification{
		ID:      uuid.NewString(),
		UserID:  sess.UserID,
		Created: time.Now(),
		Data:    map[string]any{"session_id": sess.ID},
	}
	if cause == nil {
		n.Type = core.NotifyEvaluationReady
		n.Title = "Call evaluation ready"
		n.Message = fmt.Sprintf("Your call was scored %.0f/100 (%s).", eval.OverallScore, eval.Tier)
		n.Data["evaluation_id"] = eval.ID
		n.Data["score"] = eval.OverallScore
		n.Data["tier"] = string(eval.Tier)
	} else {
		n.Type = core.NotifyEvaluationFailed
		n.Title = "Call evaluation failed"
		n.Message = fmt.Sprintf("We could not evaluate your call: %s.", cause)
	}

	if err := o.deps.Notifications.Insert(ctx, n); err != nil {
		o.logger.Error("failed to insert notification", "session_id", sess.ID, "type", n.Type, "error", err)
	}
}
