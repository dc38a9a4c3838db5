package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialwise/evalpipe/core"
	"github.com/dialwise/evalpipe/store/memory"
)

// fakeTranscripts returns scripted fetch results in order, repeating the last
// one, and counts calls.
type fakeTranscripts struct {
	results [][]core.TranscriptSegment
	calls   int
}

func (f *fakeTranscripts) Fetch(_ context.Context, _ string) ([]core.TranscriptSegment, error) {
	idx := f.calls
	f.calls++
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	if idx < 0 {
		return nil, nil
	}
	return f.results[idx], nil
}

type fakeScorer struct {
	fn    func() (*core.Scorecard, error)
	calls int
}

func (f *fakeScorer) Score(_ context.Context, _, _ string) (*core.Scorecard, error) {
	f.calls++
	return f.fn()
}

type fakeNotes struct {
	fn    func() (*core.CallNotes, error)
	calls int
}

func (f *fakeNotes) Extract(_ context.Context, _ string, _ *core.OrgContext) (*core.CallNotes, error) {
	f.calls++
	return f.fn()
}

type fakeGenerator struct {
	fn func() (json.RawMessage, error)
}

func (f *fakeGenerator) Generate(_ context.Context, _ *core.Evaluation, _, _ string) (json.RawMessage, error) {
	return f.fn()
}

// harness bundles an orchestrator wired against in-memory stores and fakes,
// with zero delays so retries and settling don't slow tests down.
type harness struct {
	sessions      *memory.SessionStore
	evaluations   *memory.EvaluationStore
	notifications *memory.NotificationStore
	calendar      *memory.CalendarStore
	scenarios     *memory.ScenarioStore
	transcripts   *fakeTranscripts
	scorer        *fakeScorer
	notes         *fakeNotes
	generator     *fakeGenerator
	orch          *Orchestrator
}

func goodCard() (*core.Scorecard, error) {
	return &core.Scorecard{
		ObjectionScores: map[string]float64{"price": 7},
		Spin: core.SpinScores{
			Situation: core.DimensionScore{Score: 8},
			Problem:   core.DimensionScore{Score: 7},
		},
		Overall:  8.7,
		Summary:  "solid discovery call",
		Speakers: core.Speakers{Seller: "Ana", Client: "Ben"},
	}, nil
}

func goodNotes() (*core.CallNotes, error) {
	return &core.CallNotes{
		Sections:  []core.NoteSection{{Name: "Company", Facts: []string{"50 seats"}}},
		NextSteps: []core.NextStep{{Description: "send proposal", Owner: core.OwnerSeller, Status: core.StepAgreed}},
	}, nil
}

func segments() []core.TranscriptSegment {
	return []core.TranscriptSegment{
		{Speaker: "Ana", Text: "Hi Ben, thanks for joining.", Timestamp: "00:00:01"},
		{Speaker: "Ben", Text: "Happy to be here.", Timestamp: "00:00:04"},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sessions:      memory.NewSessionStore(),
		evaluations:   memory.NewEvaluationStore(),
		notifications: memory.NewNotificationStore(),
		calendar:      memory.NewCalendarStore(),
		scenarios:     memory.NewScenarioStore(),
		transcripts:   &fakeTranscripts{results: [][]core.TranscriptSegment{segments()}},
		scorer:        &fakeScorer{fn: goodCard},
		notes:         &fakeNotes{fn: goodNotes},
		generator:     &fakeGenerator{fn: func() (json.RawMessage, error) { return json.RawMessage(`{"title":"redo"}`), nil }},
	}
	h.orch = New(Deps{
		Sessions:      h.sessions,
		Evaluations:   h.evaluations,
		Notifications: h.notifications,
		Calendar:      h.calendar,
		Scenarios:     h.scenarios,
		OrgConfig:     memory.NewOrgConfigStore(),
		Transcripts:   h.transcripts,
		Scorer:        h.scorer,
		Notes:         h.notes,
		Generator:     h.generator,
	}, func(o *Options) {
		o.RetryBackoff = 0
		o.SettleDelay = 0
	})
	h.sessions.Seed(core.NewSession("sess-1", "user-1", "org-1"))
	return h
}

func (h *harness) session(t *testing.T, id string) *core.Session {
	t.Helper()
	sess, err := h.sessions.Get(context.Background(), id)
	require.NoError(t, err)
	return sess
}

func TestRun_Success(t *testing.T) {
	h := newHarness(t)

	err := h.orch.Run(context.Background(), "sess-1")
	require.NoError(t, err)

	sess := h.session(t, "sess-1")
	assert.Equal(t, core.StatusCompleted, sess.Status)
	assert.NotEmpty(t, sess.EvaluationID)
	assert.Len(t, sess.Transcript, 2)

	eval, err := h.evaluations.GetBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, eval)
	assert.Equal(t, sess.EvaluationID, eval.ID)
	assert.NotNil(t, eval.Notes)

	notifs := h.notifications.All()
	require.Len(t, notifs, 1)
	assert.Equal(t, core.NotifyEvaluationReady, notifs[0].Type)
	assert.Equal(t, "user-1", notifs[0].UserID)
	assert.Equal(t, eval.ID, notifs[0].Data["evaluation_id"])
	assert.Equal(t, 87.0, notifs[0].Data["score"])
}

func TestRun_UnknownSession(t *testing.T) {
	h := newHarness(t)

	err := h.orch.Run(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	assert.Empty(t, h.notifications.All())
}

func TestRun_Idempotency(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.orch.Run(context.Background(), "sess-1"))
	first := h.session(t, "sess-1").EvaluationID
	require.NotEmpty(t, first)

	// Simulated duplicate trigger: webhook redelivery after completion.
	require.NoError(t, h.orch.Run(context.Background(), "sess-1"))

	eval, err := h.evaluations.GetBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, first, eval.ID)
	assert.Equal(t, first, h.session(t, "sess-1").EvaluationID)
	assert.Equal(t, 1, h.scorer.calls)
}

func TestRun_PreflightGuardAdoptsExistingEvaluation(t *testing.T) {
	h := newHarness(t)

	// A racing synchronous path already produced the record while the
	// session still reads as pending.
	existing := &core.Evaluation{ID: "eval-existing", SessionID: "sess-1", UserID: "user-1", OrgID: "org-1", OverallScore: 60, Tier: core.TierGood}
	_, created, err := h.evaluations.InsertOrExisting(context.Background(), existing)
	require.NoError(t, err)
	require.True(t, created)

	require.NoError(t, h.orch.Run(context.Background(), "sess-1"))

	sess := h.session(t, "sess-1")
	assert.Equal(t, core.StatusCompleted, sess.Status)
	assert.Equal(t, "eval-existing", sess.EvaluationID)
	assert.Equal(t, 0, h.scorer.calls)
	assert.Equal(t, 0, h.transcripts.calls)
}

func TestRun_NotesFailureIsNonFatal(t *testing.T) {
	h := newHarness(t)
	h.notes.fn = func() (*core.CallNotes, error) { return nil, errors.New("extractor down") }

	require.NoError(t, h.orch.Run(context.Background(), "sess-1"))

	sess := h.session(t, "sess-1")
	assert.Equal(t, core.StatusCompleted, sess.Status)

	eval, err := h.evaluations.GetBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, eval)
	assert.Nil(t, eval.Notes)

	notifs := h.notifications.All()
	require.Len(t, notifs, 1)
	assert.Equal(t, core.NotifyEvaluationReady, notifs[0].Type)
}

func TestRun_ScorerFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	sentinel := errors.New("scorer exploded")
	h.scorer.fn = func() (*core.Scorecard, error) { return nil, sentinel }

	err := h.orch.Run(context.Background(), "sess-1")
	assert.ErrorIs(t, err, sentinel)

	sess := h.session(t, "sess-1")
	assert.Equal(t, core.StatusError, sess.Status)
	assert.Contains(t, sess.ErrorMessage, "scorer exploded")

	eval, err := h.evaluations.GetBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Nil(t, eval)

	notifs := h.notifications.All()
	require.Len(t, notifs, 1)
	assert.Equal(t, core.NotifyEvaluationFailed, notifs[0].Type)
	assert.Equal(t, "sess-1", notifs[0].Data["session_id"])

	// Notes branch ran despite the sibling failure.
	assert.Equal(t, 1, h.notes.calls)
}

func TestRun_ScorerPanicIsCaptured(t *testing.T) {
	h := newHarness(t)
	h.scorer.fn = func() (*core.Scorecard, error) { panic("boom") }

	err := h.orch.Run(context.Background(), "sess-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branch panic")
	assert.Equal(t, core.StatusError, h.session(t, "sess-1").Status)
}

func TestRun_EmptyTranscriptRetriesExactlyOnce(t *testing.T) {
	t.Run("second attempt succeeds", func(t *testing.T) {
		h := newHarness(t)
		h.transcripts.results = [][]core.TranscriptSegment{nil, segments()}

		require.NoError(t, h.orch.Run(context.Background(), "sess-1"))
		assert.Equal(t, 2, h.transcripts.calls)
		assert.Equal(t, core.StatusCompleted, h.session(t, "sess-1").Status)
	})

	t.Run("both attempts empty", func(t *testing.T) {
		h := newHarness(t)
		h.transcripts.results = [][]core.TranscriptSegment{nil, nil}

		err := h.orch.Run(context.Background(), "sess-1")
		assert.ErrorIs(t, err, ErrEmptyTranscript)
		assert.Equal(t, 2, h.transcripts.calls)

		sess := h.session(t, "sess-1")
		assert.Equal(t, core.StatusError, sess.Status)
		assert.Equal(t, "empty transcript", sess.ErrorMessage)
		assert.Equal(t, 0, h.scorer.calls)
	})
}

func TestRun_ScoreNormalization(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		want float64
		tier core.Tier
	}{
		{name: "small scale is multiplied", raw: 8.7, want: 87, tier: core.TierExcellent},
		{name: "large scale passes through", raw: 72, want: 72, tier: core.TierVeryGood},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.scorer.fn = func() (*core.Scorecard, error) {
				return &core.Scorecard{Overall: tt.raw, Summary: "x"}, nil
			}

			require.NoError(t, h.orch.Run(context.Background(), "sess-1"))

			eval, err := h.evaluations.GetBySession(context.Background(), "sess-1")
			require.NoError(t, err)
			require.NotNil(t, eval)
			assert.Equal(t, tt.want, eval.OverallScore)
			assert.Equal(t, tt.tier, eval.Tier)
		})
	}
}

func TestRun_TerminalSessionIgnoresTrigger(t *testing.T) {
	h := newHarness(t)
	sess := h.session(t, "sess-1")
	sess.Status = core.StatusError
	sess.ErrorMessage = "empty transcript"
	require.NoError(t, h.sessions.Save(context.Background(), sess))

	require.NoError(t, h.orch.Run(context.Background(), "sess-1"))
	assert.Equal(t, 0, h.transcripts.calls)
	assert.Empty(t, h.notifications.All())
}
