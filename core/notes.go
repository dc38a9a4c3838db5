package core

// NextStepOwner identifies who committed to a next step.
type NextStepOwner string

const (
	OwnerSeller NextStepOwner = "seller"
	OwnerClient NextStepOwner = "client"
	OwnerBoth   NextStepOwner = "both"
)

// NextStepStatus records how firm a next-step commitment is.
type NextStepStatus string

const (
	StepAgreed    NextStepStatus = "agreed"
	StepSuggested NextStepStatus = "suggested"
	StepPending   NextStepStatus = "pending"
)

// NoteSection groups extracted facts under a dynamically named heading
// (e.g. "Company", "Budget", "Decision process"); the extractor chooses the
// headings based on the organization context.
type NoteSection struct {
	Name  string   `json:"name"`
	Facts []string `json:"facts"`
}

// NextStep is one follow-up commitment surfaced from the call.
type NextStep struct {
	Description string         `json:"description"`
	Owner       NextStepOwner  `json:"owner"`
	Status      NextStepStatus `json:"status"`
}

// DealHealth is the extractor's assessment of where the deal stands.
type DealHealth struct {
	Temperature   string   `json:"temperature"`
	Probability   string   `json:"probability"` // e.g. "40-60%"
	Blockers      []string `json:"blockers,omitempty"`
	BuyingSignals []string `json:"buying_signals,omitempty"`
	RiskFactors   []string `json:"risk_factors,omitempty"`
}

// CallNotes is the optional structured-notes payload attached to an
// evaluation. A nil CallNotes on an evaluation means the extraction branch
// failed or was skipped; the evaluation itself remains valid.
type CallNotes struct {
	Sections   []NoteSection `json:"sections,omitempty"`
	NextSteps  []NextStep    `json:"next_steps,omitempty"`
	DealHealth *DealHealth   `json:"deal_health,omitempty"`
}

// OrgContext carries the organization facts that steer notes extraction:
// descriptive profile fields plus free-text custom observation prompts
// configured by the organization.
type OrgContext struct {
	OrgID         string   `json:"org_id"`
	Company       string   `json:"company,omitempty"`
	Product       string   `json:"product,omitempty"`
	Audience      string   `json:"audience,omitempty"`
	SalesModel    string   `json:"sales_model,omitempty"`
	CustomPrompts []string `json:"custom_prompts,omitempty"`
}
