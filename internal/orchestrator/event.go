package orchestrator

// EventType distinguishes the two inbound event shapes
type EventType string

const (
	EventIncomingEmail EventType = "incoming-email"
	EventUserRequest   EventType = "user-request"
)

// Attachment is a file carried with an event. The content survives the
// whole pipeline untouched; only the send step reads it.
type Attachment struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Content  []byte `json:"-"`
}

// Event is the inbound trigger for a dispatch. An incoming-email event
// carries a mail ID; a user-request event carries a question. Exactly
// one of the two determines the event type.
type Event struct {
	// Incoming-email shape
	ID               string `json:"id,omitempty"`
	Subject          string `json:"subject,omitempty"`
	BodyPreview      string `json:"bodyPreview,omitempty"`
	Body             string `json:"body,omitempty"`
	Receiver         string `json:"receiver,omitempty"`
	ReceivedDateTime string `json:"receivedDateTime,omitempty"`

	// User-request shape
	Question       string `json:"question,omitempty"`
	ConversationID int64  `json:"conversationId,omitempty"`

	// Shared
	Sender      string       `json:"sender,omitempty"`
	UserID      int64        `json:"userId,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// ResolveType determines the event type from its shape. The mail ID
// wins when both fields are set.
func (e *Event) ResolveType() (EventType, error) {
	if e.ID != "" {
		return EventIncomingEmail, nil
	}
	if e.Question != "" {
		return EventUserRequest, nil
	}
	return "", ErrMalformedEvent
}
