package core

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrSessionNotFound is returned when no session exists for the id a
	// trigger named.
	ErrSessionNotFound = errors.New("session not found")
)

// SessionStore reads and mutates session records. Save replaces the stored
// record wholesale; the orchestrator is the only writer.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
}

// EvaluationStore persists evaluation records with a uniqueness guarantee on
// session id.
//
// InsertOrExisting is the named insert-or-fetch operation backing the
// idempotency guard: it atomically inserts eval unless an evaluation for the
// same session already exists, in which case it returns the existing record
// with created=false. Implementations must never fail on the duplicate case.
type EvaluationStore interface {
	InsertOrExisting(ctx context.Context, eval *Evaluation) (stored *Evaluation, created bool, err error)
	// GetBySession returns (nil, nil) when no evaluation exists for the session.
	GetBySession(ctx context.Context, sessionID string) (*Evaluation, error)
}

// NotificationStore appends user-facing notifications.
type NotificationStore interface {
	Insert(ctx context.Context, n *Notification) error
}

// CalendarStore updates the calendar entry correlated with a session, if one
// exists. A missing entry is the expected case and reported as (false, nil).
type CalendarStore interface {
	CompleteBySession(ctx context.Context, sessionID, evaluationID string) (matched bool, err error)
}

// ScenarioStore appends saved practice scenarios.
type ScenarioStore interface {
	Insert(ctx context.Context, sc *PracticeScenario) error
}

// OrgConfigStore resolves the organization context fed to the notes
// extractor.
type OrgConfigStore interface {
	OrgContext(ctx context.Context, orgID string) (*OrgContext, error)
}

// TranscriptSource fetches the finalized transcript for a session from the
// recording provider. An empty slice with a nil error means "not ready yet";
// implementations swallow provider errors into that shape so the caller can
// treat emptiness uniformly.
type TranscriptSource interface {
	Fetch(ctx context.Context, sessionID string) ([]TranscriptSegment, error)
}

// Scorer produces the required scoring fields for a transcript. Any error is
// fatal to the pipeline run.
type Scorer interface {
	Score(ctx context.Context, transcript, orgID string) (*Scorecard, error)
}

// NotesExtractor produces optional structured notes for a transcript. Errors
// are non-fatal; the run proceeds with nil notes.
type NotesExtractor interface {
	Extract(ctx context.Context, transcript string, org *OrgContext) (*CallNotes, error)
}

// ScenarioGenerator requests a tailored correction-roleplay configuration
// from the generation service. Best effort; errors are logged only.
type ScenarioGenerator interface {
	Generate(ctx context.Context, eval *Evaluation, transcript, orgID string) (json.RawMessage, error)
}
