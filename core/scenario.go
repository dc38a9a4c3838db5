package core

import (
	"encoding/json"
	"time"
)

// ScenarioStatus tracks a saved practice scenario's lifecycle. This module
// only ever creates scenarios in the pending state.
type ScenarioStatus string

const (
	// ScenarioPending marks a scenario generated but not yet practiced.
	ScenarioPending ScenarioStatus = "pending"
)

// PracticeScenario is a tailored correction-roleplay configuration linked
// back to the evaluation it was derived from. Creation failure never affects
// the evaluation's validity.
type PracticeScenario struct {
	ID           string          `json:"id"`
	EvaluationID string          `json:"evaluation_id"`
	Status       ScenarioStatus  `json:"status"`
	Config       json.RawMessage `json:"config"`
	Created      time.Time       `json:"created"`
}

// CalendarEntry correlates a pre-scheduled meeting with a recording session.
// The pipeline only updates BotStatus and EvaluationID on sync.
type CalendarEntry struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title,omitempty"`
	StartsAt     time.Time `json:"starts_at"`
	BotStatus    string    `json:"bot_status"`
	EvaluationID string    `json:"evaluation_id,omitempty"`
}

// BotStatusCompleted is the calendar bot status set once an evaluation for
// the linked session has been persisted.
const BotStatusCompleted = "completed"
