package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dialwise/evalpipe/core"
)

// fanOut runs the best-effort side effects of a completed evaluation. Each
// emitter is isolated: a failure or panic there is logged and never reaches
// the already-committed evaluation record.
func (o *Orchestrator) fanOut(ctx context.Context, sess *core.Session, eval *core.Evaluation, transcript string) {
	o.runEmitter("calendar_sync", sess.ID, func() error {
		return o.syncCalendar(ctx, sess, eval)
	})
	o.runEmitter("practice_scenario", sess.ID, func() error {
		return o.generateScenario(ctx, sess, eval, transcript)
	})
}

// runEmitter executes one fan-out branch with panic recovery; outcomes are
// logged only.
func (o *Orchestrator) runEmitter(name, sessionID string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("fan-out emitter panicked", "emitter", name, "session_id", sessionID, "panic", fmt.Sprintf("%v", r))
		}
	}()
	if err := fn(); err != nil {
		o.logger.Warn("fan-out emitter failed", "emitter", name, "session_id", sessionID, "error", err)
	}
}

// syncCalendar marks the pre-scheduled calendar entry for the session as
// completed. No matching entry is the expected case for ad-hoc calls.
func (o *Orchestrator) syncCalendar(ctx context.Context, sess *core.Session, eval *core.Evaluation) error {
	if o.deps.Calendar == nil {
		return nil
	}
	matched, err := o.deps.Calendar.CompleteBySession(ctx, sess.ID, eval.ID)
	if err != nil {
		return err
	}
	if !matched {
		o.logger.Debug("no calendar entry for session", "session_id", sess.ID)
	}
	return nil
}

// generateScenario requests a tailored correction roleplay and saves it as a
// pending practice scenario linked to the evaluation.
func (o *Orchestrator) generateScenario(ctx context.Context, sess *core.Session, eval *core.Evaluation, transcript string) error {
	if o.deps.Generator == nil || o.deps.Scenarios == nil {
		return nil
	}
	cfg, err := o.deps.Generator.Generate(ctx, eval, transcript, sess.OrgID)
	if err != nil {
		return fmt.Errorf("generate scenario: %w", err)
	}
	sc := &core.PracticeScenario{
		ID:           uuid.NewString(),
		EvaluationID: eval.ID,
		Status:       core.ScenarioPending,
		Config:       cfg,
		Created:      time.Now(),
	}
	if err := o.deps.Scenarios.Insert(ctx, sc); err != nil {
		return fmt.Errorf("save scenario: %w", err)
	}
	return nil
}
