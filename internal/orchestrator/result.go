package orchestrator

// Outcome tags carried in BranchResult.Type
const (
	OutcomeCasualReply     = "casual_reply"
	OutcomeEmailWritten    = "email_written"
	OutcomeEmailSent       = "email_sent"
	OutcomeActionableTask  = "actionable_task"
	OutcomeNoAction        = "no_action"
	OutcomeReminderCreated = "reminder_created"
	OutcomeEventCreated    = "event_created"
	OutcomeSpam            = "spam/irrelevant"
	OutcomeUnknown         = "unknown_category"
)

// Fixed terminal answers that never involve a model call
const (
	spamMessage            = "The message was skipped. It was not relevant to the user."
	unknownCategoryMessage = "The message was skipped. Unknown Category."
)

// StepResult is the typed result every pipeline step returns: either
// plain text or a structured map decoded from model output.
type StepResult struct {
	text       string
	structured map[string]any
}

// TextResult wraps plain text output
func TextResult(text string) StepResult {
	return StepResult{text: text}
}

// StructuredResult wraps decoded structured output
func StructuredResult(fields map[string]any) StepResult {
	return StepResult{structured: fields}
}

func (r StepResult) IsStructured() bool {
	return r.structured != nil
}

func (r StepResult) Text() string {
	return r.text
}

func (r StepResult) Structured() map[string]any {
	return r.structured
}

// BranchResult is the terminal output of a dispatch
type BranchResult struct {
	Type     string `json:"type"`
	Answer   string `json:"answer"`
	Question string `json:"question,omitempty"`
}
