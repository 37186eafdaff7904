package orchestrator

import "time"

// Context field names shared between the dispatcher and the branch
// pipelines. Seeding sets every key a branch may read, with explicit
// empty values rather than absent keys.
const (
	KeyQuestion    = "question"
	KeyMailID      = "mail_id"
	KeySubject     = "subject"
	KeyBody        = "body"
	KeyBodyPreview = "body_preview"
	KeySender      = "sender"
	KeyReceiver    = "receiver"
	KeyUserID      = "user_id"
	KeyReceivedAt  = "received_at"
	KeyAttachments = "attachments"
	KeyCurrentDate = "current_date"

	KeyContent        = "content"
	KeyDraftReply     = "draft_reply"
	KeySummary        = "summary"
	KeyExtractedItems = "extracted_items"
	KeyReviewFeedback = "review_feedback"
	KeyEmail          = "email"
	KeyEventFields    = "event_fields"
	KeyTitle          = "title"
	KeyDetail         = "detail"
	KeyDue            = "due"
	KeyAnswer         = "answer"
)

// Context is the shared mutable key-value map threaded through one
// pipeline run. Every step's outputs are merged in, visible to all
// later steps.
type Context map[string]any

// GetTime returns the value as a time.Time, zero when absent
func (c Context) GetTime(key string) time.Time {
	if v, ok := c[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func NewContext() Context {
	return make(Context)
}

func (c Context) Set(key string, value any) {
	c[key] = value
}

func (c Context) Has(key string) bool {
	_, ok := c[key]
	return ok
}

func (c Context) Get(key string) any {
	return c[key]
}

// GetString returns the value as a string, empty when absent or not a
// string
func (c Context) GetString(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

func (c Context) GetInt64(key string) int64 {
	switch v := c[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// GetAttachments returns the attachments slice, nil-safe
func (c Context) GetAttachments(key string) []Attachment {
	if v, ok := c[key].([]Attachment); ok {
		return v
	}
	return nil
}

// Merge copies every entry of m into the context
func (c Context) Merge(m map[string]any) {
	for k, v := range m {
		c[k] = v
	}
}
