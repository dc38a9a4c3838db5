package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dialwise/evalpipe/core"
	"github.com/dialwise/evalpipe/logging"
	"github.com/dialwise/evalpipe/scoring"
)

// ErrEmptyTranscript is the terminal failure reason when the provider has no
// transcript after the single bounded retry.
var ErrEmptyTranscript = errors.New("empty transcript")

// Deps aggregates the collaborators a run is wired against. All fields are
// required except Notes, Calendar and Generator, which degrade to skipped
// optional steps when nil.
type Deps struct {
	Sessions      core.SessionStore
	Evaluations   core.EvaluationStore
	Notifications core.NotificationStore
	Calendar      core.CalendarStore
	Scenarios     core.ScenarioStore
	OrgConfig     core.OrgConfigStore
	Transcripts   core.TranscriptSource
	Scorer        core.Scorer
	Notes         core.NotesExtractor
	Generator     core.ScenarioGenerator
}

// Options configure orchestrator timing and logging.
type Options struct {
	// RetryBackoff is the fixed delay before the single transcript retry.
	RetryBackoff time.Duration
	// SettleDelay is the pause between the completed transition and fan-out.
	SettleDelay time.Duration
	Logger      logging.Logger
}

// Orchestrator coordinates pipeline runs. Runs for different sessions are
// independent and may execute concurrently; the persistent store is the only
// shared state.
type Orchestrator struct {
	deps         Deps
	retryBackoff time.Duration
	settleDelay  time.Duration
	logger       logging.Logger
}

// New constructs an orchestrator with optional overrides.
func New(deps Deps, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		RetryBackoff: 5 * time.Second,
		SettleDelay:  2 * time.Second,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{deps: deps, retryBackoff: opts.RetryBackoff, settleDelay: opts.SettleDelay, logger: opts.Logger}
}

// Run executes one pipeline run for the session named by the trigger. It
// always drives the session to a terminal state; the returned error mirrors
// the terminal failure for callers that want it, but the fire-and-forget
// trigger path only logs it.
func (o *Orchestrator) Run(ctx context.Context, sessionID string) error {
	sess, err := o.deps.Sessions.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if sess.Status.Terminal() {
		o.logger.Info("session already terminal, ignoring trigger", "session_id", sessionID, "status", sess.Status)
		return nil
	}

	// Idempotency guard: a webhook redelivery or a synchronous evaluation
	// path may have produced the record already.
	existing, err := o.deps.Evaluations.GetBySession(ctx, sessionID)
	if err != nil {
		return o.fail(ctx, sess, fmt.Errorf("idempotency check: %w", err))
	}
	if existing != nil {
		o.logger.Info("evaluation already exists, completing without work", "session_id", sessionID, "evaluation_id", existing.ID)
		return o.complete(ctx, sess, existing)
	}

	if err := o.transition(ctx, sess, core.StatusProcessing); err != nil {
		return o.fail(ctx, sess, err)
	}

	segments := o.fetchWithRetry(ctx, sessionID)
	if len(segments) == 0 {
		return o.fail(ctx, sess, ErrEmptyTranscript)
	}

	sess.Transcript = segments
	if err := o.transition(ctx, sess, core.StatusEvaluating); err != nil {
		return o.fail(ctx, sess, err)
	}

	transcript := core.FlattenTranscript(segments)
	scoreRes, notesRes := o.dispatch(ctx, transcript, sess.OrgID)

	// Reconciliation: the scorer branch is required, the notes branch never
	// fails the run.
	if scoreRes.err != nil {
		return o.fail(ctx, sess, fmt.Errorf("scoring: %w", scoreRes.err))
	}
	if scoreRes.value == nil {
		return o.fail(ctx, sess, errors.New("scoring: no usable result"))
	}
	var callNotes *core.CallNotes
	if notesRes.err != nil {
		o.logger.Warn("notes extraction failed, continuing without notes", "session_id", sessionID, "error", notesRes.err)
	} else {
		callNotes = notesRes.value
	}

	eval := buildEvaluation(sess, scoreRes.value, callNotes)
	stored, created, err := o.deps.Evaluations.InsertOrExisting(ctx, eval)
	if err != nil {
		return o.fail(ctx, sess, fmt.Errorf("persist evaluation: %w", err))
	}
	if !created {
		o.logger.Info("lost evaluation insert race, adopting existing record", "session_id", sessionID, "evaluation_id", stored.ID)
	}

	if err := o.complete(ctx, sess, stored); err != nil {
		return err
	}

	o.sleep(ctx, o.settleDelay)
	o.fanOut(ctx, sess, stored, transcript)
	return nil
}

// fetchWithRetry asks the transcript source once and, on an empty result,
// exactly once more after the fixed back-off. Still-empty means terminal
// failure for the caller; there is no third attempt.
func (o *Orchestrator) fetchWithRetry(ctx context.Context, sessionID string) []core.TranscriptSegment {
	segments, _ := o.deps.Transcripts.Fetch(ctx, sessionID)
	if len(segments) > 0 {
		return segments
	}
	o.logger.Info("transcript not ready, retrying once", "session_id", sessionID, "backoff", o.retryBackoff)
	if !o.sleep(ctx, o.retryBackoff) {
		return nil
	}
	segments, _ = o.deps.Transcripts.Fetch(ctx, sessionID)
	return segments
}

// dispatch runs the scorer and notes branches concurrently, each isolated so
// one branch's failure or panic cannot prevent observing the other's result.
func (o *Orchestrator) dispatch(ctx context.Context, transcript, orgID string) (branchResult[*core.Scorecard], branchResult[*core.CallNotes]) {
	scoreCh := make(chan branchResult[*core.Scorecard], 1)
	notesCh := make(chan branchResult[*core.CallNotes], 1)

	go func() {
		scoreCh <- runIsolated(func() (*core.Scorecard, error) {
			return o.deps.Scorer.Score(ctx, transcript, orgID)
		})
	}()
	go func() {
		notesCh <- runIsolated(func() (*core.CallNotes, error) {
			if o.deps.Notes == nil {
				return nil, errors.New("notes extractor not configured")
			}
			org := &core.OrgContext{OrgID: orgID}
			if o.deps.OrgConfig != nil {
				if loaded, err := o.deps.OrgConfig.OrgContext(ctx, orgID); err == nil {
					org = loaded
				}
			}
			return o.deps.Notes.Extract(ctx, transcript, org)
		})
	}()

	return <-scoreCh, <-notesCh
}

// buildEvaluation assembles the record to persist, normalizing the raw
// aggregate onto the canonical 0-100 scale and deriving the tier.
func buildEvaluation(sess *core.Session, card *core.Scorecard, notes *core.CallNotes) *core.Evaluation {
	score := scoring.NormalizeOverall(card.Overall)
	return &core.Evaluation{
		ID:              uuid.NewString(),
		SessionID:       sess.ID,
		UserID:          sess.UserID,
		OrgID:           sess.OrgID,
		ObjectionScores: card.ObjectionScores,
		Spin:            card.Spin,
		OverallScore:    score,
		Tier:            scoring.TierForScore(score),
		Summary:         card.Summary,
		Strengths:       card.Strengths,
		Gaps:            card.Gaps,
		PriorityActions: card.PriorityActions,
		Speakers:        card.Speakers,
		Notes:           notes,
		Created:         time.Now(),
	}
}

// transition persists a state-machine step on the session.
func (o *Orchestrator) transition(ctx context.Context, sess *core.Session, to core.SessionStatus) error {
	from := sess.Status
	sess.Status = to
	if err := o.deps.Sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("transition %s -> %s: %w", from, to, err)
	}
	o.logger.Debug("session transition", "session_id", sess.ID, "from", from, "to", to)
	return nil
}

// complete enters the terminal success state and emits the success
// notification.
func (o *Orchestrator) complete(ctx context.Context, sess *core.Session, eval *core.Evaluation) error {
	sess.EvaluationID = eval.ID
	sess.ErrorMessage = ""
	if err := o.transition(ctx, sess, core.StatusCompleted); err != nil {
		return err
	}
	o.notify(ctx, sess, eval, nil)
	return nil
}

// fail enters the terminal error state, persists the reason on the session,
// emits the failure notification, and echoes the error to the caller.
func (o *Orchestrator) fail(ctx context.Context, sess *core.Session, cause error) error {
	o.logger.Error("pipeline run failed", "session_id", sess.ID, "error", cause)
	sess.Status = core.StatusError
	sess.ErrorMessage = cause.Error()
	if err := o.deps.Sessions.Save(ctx, sess); err != nil {
		o.logger.Error("failed to persist error state", "session_id", sess.ID, "error", err)
	}
	o.notify(ctx, sess, nil, cause)
	return cause
}

// sleep waits for d or until the context is cancelled; it reports whether the
// full delay elapsed.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
