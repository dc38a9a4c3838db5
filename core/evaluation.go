package core

import "time"

// Tier buckets an overall score into a user-facing performance band.
type Tier string

const (
	TierPoor             Tier = "poor"
	TierNeedsImprovement Tier = "needs_improvement"
	TierGood             Tier = "good"
	TierVeryGood         Tier = "very_good"
	TierExcellent        Tier = "excellent"
	TierLegendary        Tier = "legendary"
)

// DimensionScore holds one SPIN dimension: the dimension score plus its
// sub-indicator scores, all on a 0-10 scale.
type DimensionScore struct {
	Score      float64            `json:"score"`
	Indicators map[string]float64 `json:"indicators,omitempty"`
}

// SpinScores covers the four SPIN selling dimensions.
type SpinScores struct {
	Situation   DimensionScore `json:"situation"`
	Problem     DimensionScore `json:"problem"`
	Implication DimensionScore `json:"implication"`
	NeedPayoff  DimensionScore `json:"need_payoff"`
}

// Speakers records the identified participants of the call.
type Speakers struct {
	Seller string `json:"seller,omitempty"`
	Client string `json:"client,omitempty"`
}

// Scorecard is the raw output of the evaluation scorer, before the overall
// score is normalized to the canonical 0-100 range.
type Scorecard struct {
	ObjectionScores map[string]float64 `json:"objection_scores"`
	Spin            SpinScores         `json:"spin"`
	Overall         float64            `json:"overall"`
	Summary         string             `json:"summary"`
	Strengths       []string           `json:"strengths"`
	Gaps            []string           `json:"gaps"`
	PriorityActions []string           `json:"priority_actions"`
	Speakers        Speakers           `json:"speakers"`
}

// Evaluation is the persisted, structured scoring output for one session.
// Exactly one evaluation may exist per session id; creation is append-only.
type Evaluation struct {
	ID              string             `json:"id"`
	SessionID       string             `json:"session_id"`
	UserID          string             `json:"user_id"`
	OrgID           string             `json:"org_id"`
	ObjectionScores map[string]float64 `json:"objection_scores"`
	Spin            SpinScores         `json:"spin"`
	OverallScore    float64            `json:"overall_score"` // canonical 0-100
	Tier            Tier               `json:"tier"`
	Summary         string             `json:"summary"`
	Strengths       []string           `json:"strengths"`
	Gaps            []string           `json:"gaps"`
	PriorityActions []string           `json:"priority_actions"`
	Speakers        Speakers           `json:"speakers"`
	Notes           *CallNotes         `json:"notes,omitempty"`
	Created         time.Time          `json:"created"`
}
