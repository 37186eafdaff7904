package orchestrator

import "strings"

// Categories of event content
const (
	CategoryRequiresResponse = "requires_response"
	CategoryActionableTask   = "actionable_task"
	CategoryScheduleEvent    = "schedule_event"
	CategoryReminder         = "reminder"
	CategoryNoAction         = "no_action"
	CategorySpam             = "spam"
)

// Intents, sub-classification within requires_response for
// user-request events
const (
	IntentGeneral         = "general"
	IntentCanYouSendEmail = "can you send email"
	IntentWriteEmail      = "write email"
	IntentSendEmail       = "send email"
)

// Reminder sub-types
const (
	ReminderTodo  = "todo"
	ReminderEvent = "event"
)

// allowedRoutes gates categories by event type. Pairs not listed fall
// through to the unknown_category terminal result.
var allowedRoutes = map[string]EventType{
	CategoryRequiresResponse: EventUserRequest,
	CategoryReminder:         EventUserRequest,
	CategoryScheduleEvent:    EventUserRequest,
	CategoryActionableTask:   EventIncomingEmail,
	CategorySpam:             EventIncomingEmail,
	CategoryNoAction:         EventIncomingEmail,
}

// routeAllowed reports whether the category is permitted for the
// event type
func routeAllowed(category string, t EventType) bool {
	allowed, ok := allowedRoutes[category]
	return ok && allowed == t
}

// normalizeLabel case-normalizes and trims a classifier label
func normalizeLabel(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
