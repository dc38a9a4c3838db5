// Package evalpipe provides a high-level façade over the pipeline
// orchestrator and its service abstractions (stores, transcript source,
// scoring services & logging), enabling rapid construction of the
// meeting-evaluation background pipeline. Most applications interact with
// this package by:
//  1. Creating an EvalPipe via New() (optionally overriding default
//     in-memory stores with durable implementations)
//  2. Triggering runs from a webhook or poller (Trigger) or synchronously
//     (Process)
//
// The façade delegates orchestration to pipeline.Orchestrator while keeping
// setup ergonomics concise. All defaults are safe for local development and
// testing; production deployments supply durable stores, real provider
// clients and a structured logger.
package evalpipe

import (
	"context"
	"time"

	"github.com/dialwise/evalpipe/core"
	"github.com/dialwise/evalpipe/logging"
	"github.com/dialwise/evalpipe/pipeline"
	"github.com/dialwise/evalpipe/store/memory"
)

// Options configures the EvalPipe instance.
type Options struct {
	// RetryBackoff is the fixed delay before the single transcript retry.
	RetryBackoff time.Duration
	// SettleDelay is the pause between completion and fan-out.
	SettleDelay time.Duration

	// Stores (default to in-memory implementations if not provided).
	Sessions      core.SessionStore
	Evaluations   core.EvaluationStore
	Notifications core.NotificationStore
	Calendar      core.CalendarStore
	Scenarios     core.ScenarioStore
	OrgConfig     core.OrgConfigStore

	// Collaborators. Transcripts and Scorer are required for real runs;
	// Notes and Generator are optional and skipped when nil.
	Transcripts core.TranscriptSource
	Scorer      core.Scorer
	Notes       core.NotesExtractor
	Generator   core.ScenarioGenerator

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// EvalPipe is the high-level façade aggregating the orchestrator and its
// wired services.
type EvalPipe struct {
	opts Options
	orch *pipeline.Orchestrator
}

// New creates a new EvalPipe instance with optional overrides. Any unset
// store is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *EvalPipe {
	opts := Options{
		RetryBackoff:  5 * time.Second,
		SettleDelay:   2 * time.Second,
		Sessions:      memory.NewSessionStore(),
		Evaluations:   memory.NewEvaluationStore(),
		Notifications: memory.NewNotificationStore(),
		Calendar:      memory.NewCalendarStore(),
		Scenarios:     memory.NewScenarioStore(),
		OrgConfig:     memory.NewOrgConfigStore(),
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	orch := pipeline.New(pipeline.Deps{
		Sessions:      opts.Sessions,
		Evaluations:   opts.Evaluations,
		Notifications: opts.Notifications,
		Calendar:      opts.Calendar,
		Scenarios:     opts.Scenarios,
		OrgConfig:     opts.OrgConfig,
		Transcripts:   opts.Transcripts,
		Scorer:        opts.Scorer,
		Notes:         opts.Notes,
		Generator:     opts.Generator,
	}, func(o *pipeline.Options) {
		o.RetryBackoff = opts.RetryBackoff
		o.SettleDelay = opts.SettleDelay
		o.Logger = opts.Logger
	})

	return &EvalPipe{opts: opts, orch: orch}
}

// Trigger accepts a session identifier from a webhook or poller and starts a
// pipeline run in the background. The trigger is fire-and-forget: the run
// proceeds to a terminal state even though nothing waits on it, and its
// outcome surfaces through the session record and notifications.
func (p *EvalPipe) Trigger(sessionID string) {
	go func() {
		if err := p.orch.Run(context.Background(), sessionID); err != nil {
			p.opts.Logger.Error("pipeline run terminated with failure", "session_id", sessionID, "error", err)
		}
	}()
}

// Process runs the pipeline synchronously, for callers that invoke it
// directly instead of through a webhook.
func (p *EvalPipe) Process(ctx context.Context, sessionID string) error {
	return p.orch.Run(ctx, sessionID)
}
