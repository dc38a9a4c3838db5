package evalpipe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialwise/evalpipe/core"
	"github.com/dialwise/evalpipe/store/memory"
)

type stubTranscripts struct{}

func (stubTranscripts) Fetch(context.Context, string) ([]core.TranscriptSegment, error) {
	return []core.TranscriptSegment{{Speaker: "Ana", Text: "hello", Timestamp: "00:00:01"}}, nil
}

type stubScorer struct{}

func (stubScorer) Score(context.Context, string, string) (*core.Scorecard, error) {
	return &core.Scorecard{Overall: 6.8, Summary: "decent"}, nil
}

func TestNew_DefaultsAndProcess(t *testing.T) {
	sessions := memory.NewSessionStore()
	evaluations := memory.NewEvaluationStore()
	sessions.Seed(core.NewSession("sess-1", "user-1", "org-1"))

	p := New(func(o *Options) {
		o.Sessions = sessions
		o.Evaluations = evaluations
		o.Transcripts = stubTranscripts{}
		o.Scorer = stubScorer{}
		o.RetryBackoff = 0
		o.SettleDelay = 0
	})

	require.NoError(t, p.Process(context.Background(), "sess-1"))

	sess, err := sessions.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, sess.Status)

	eval, err := evaluations.GetBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, eval)
	assert.Equal(t, 68.0, eval.OverallScore)
	assert.Equal(t, core.TierGood, eval.Tier)
}

func TestTrigger_FireAndForget(t *testing.T) {
	sessions := memory.NewSessionStore()
	sessions.Seed(core.NewSession("sess-1", "user-1", "org-1"))

	p := New(func(o *Options) {
		o.Sessions = sessions
		o.Transcripts = stubTranscripts{}
		o.Scorer = stubScorer{}
		o.RetryBackoff = 0
		o.SettleDelay = 0
	})

	p.Trigger("sess-1")

	// The trigger returns immediately; the run drives the session to a
	// terminal state in the background.
	require.Eventually(t, func() bool {
		sess, err := sessions.Get(context.Background(), "sess-1")
		return err == nil && sess.Status.Terminal()
	}, 2*time.Second, 10*time.Millisecond)

	sess, err := sessions.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, sess.Status)
}
