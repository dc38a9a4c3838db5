package core

import (
	"strings"
	"time"
)

// SessionStatus tracks a session through the pipeline state machine.
type SessionStatus string

const (
	// StatusPending marks a session created by the recording layer but not
	// yet picked up by the pipeline.
	StatusPending SessionStatus = "pending"
	// StatusProcessing marks a session whose transcript is being retrieved.
	StatusProcessing SessionStatus = "processing"
	// StatusEvaluating marks a session dispatched to the scoring services.
	StatusEvaluating SessionStatus = "evaluating"
	// StatusCompleted is the terminal success state.
	StatusCompleted SessionStatus = "completed"
	// StatusError is the terminal failure state, reachable from any
	// non-terminal state.
	StatusError SessionStatus = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// TranscriptSegment is a single speaker turn captured by the recording
// provider. Segments are produced once per session, ordered, and immutable
// after write.
type TranscriptSegment struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	IsPartial bool   `json:"is_partial"`
}

// Session is the per-recording unit of work. It is created when a recording
// job starts (outside this module) and mutated exclusively by the pipeline
// orchestrator; it is never deleted here.
//
// Contract:
//   - ID is the opaque token tied to the external recording provider
//   - Transcript is written once, on the first successful retrieval
//   - EvaluationID links the session to its unique evaluation record
//   - ErrorMessage is set only on the terminal error transition
type Session struct {
	ID           string              `json:"id"`
	UserID       string              `json:"user_id"`
	OrgID        string              `json:"org_id"`
	Status       SessionStatus       `json:"status"`
	Transcript   []TranscriptSegment `json:"transcript,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
	EvaluationID string              `json:"evaluation_id,omitempty"`
	Created      time.Time           `json:"created"`
	Updated      time.Time           `json:"updated"`
}

// NewSession creates a pending session owned by the given user and org.
func NewSession(id, userID, orgID string) *Session {
	now := time.Now()
	return &Session{ID: id, UserID: userID, OrgID: orgID, Status: StatusPending, Created: now, Updated: now}
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	clone := *s
	clone.Transcript = make([]TranscriptSegment, len(s.Transcript))
	copy(clone.Transcript, s.Transcript)
	return &clone
}

// FlattenTranscript renders segments as newline separated "speaker: text"
// lines, the form both LLM services consume.
func FlattenTranscript(segments []TranscriptSegment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(seg.Speaker)
		b.WriteString(": ")
		b.WriteString(seg.Text)
	}
	return b.String()
}
