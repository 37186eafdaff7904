// Package prompts holds the prompt templates shared by every AI provider,
// so Gemini and Ollama classify against the same taxonomy.
package prompts

import (
	"fmt"
	"strings"
)

// Classification kinds understood by ForClassifier.
const (
	KindCategory = "category"
	KindIntent   = "intent"
	KindReminder = "reminder"
)

const categoryTemplate = `You will receive a single string called CONTENT.

Your job is to classify this CONTENT into one of the following categories:

- 'requires_response': expects a direct reply, asks for information, OR requests the AGENT to perform an action on behalf of the user (such as writing an email, sending information, or executing an instruction), OR is a greeting/conversational opener where a social reply is typically expected.
- 'actionable_task': contains statements where the USER themselves intends to perform an action or is confirming/planning an action they will do (not asking the agent to do it, nor explicitly asking for a reply). This includes language such as "I will", "I plan to", "We will", "I would like to prepare".
- 'schedule_event': is about scheduling meetings or events.
- 'reminder': asks to be reminded about something or to create a to-do item.
- 'no_action': purely informational, trivial, FYI only, no response or tasks needed.
- 'spam': spam, marketing, or irrelevant content.

IMPORTANT RULES:
- If the content contains both instructions for the agent and other actions or information, prioritize 'requires_response'.
- Treat greetings ("Hi", "Hello there", "Good morning") as 'requires_response'.
- If the content describes scheduling, even if polite, classify as 'schedule_event'.
- If the content contains tasks clearly intended for the USER to perform, classify as 'actionable_task'.
- If the content is clearly junk or ads, classify as 'spam'.
- Use your best judgment to pick exactly ONE category.

Examples:
- "Hello there" -> requires_response
- "Can you provide the report?" -> requires_response
- "Please write an email to John about the project." -> requires_response
- "FYI, we updated the server." -> no_action
- "Please schedule a meeting for next week." -> schedule_event
- "Remind me to call Bob tomorrow." -> reminder
- "Prepare the budget by Friday." -> actionable_task
- "Buy now!!!" -> spam

Reply with ONLY the category label, nothing else.

CONTENT:
%s`

const intentTemplate = `Classify the message as one of:
- 'general': for unrelated casual questions.
- 'can you send email': if the user is asking about capabilities.
- 'write email': if the user wants the system to draft an email.
- 'send email': if the user wants the system to draft and send an email now.

Reply with ONLY the label, nothing else.

Message: %s`

const reminderTemplate = `The user asked for a reminder. Decide whether it is a plain to-do item or a calendar event.
- 'todo': a task to be done by some time ("remind me to call Bob tomorrow").
- 'event': a meeting or appointment with a start time ("remind me about the standup at 9am").

Reply with ONLY 'todo' or 'event'.

Message: %s`

// ForClassifier renders the classification prompt for the given kind.
func ForClassifier(kind, content string) (string, error) {
	switch kind {
	case KindCategory:
		return fmt.Sprintf(categoryTemplate, content), nil
	case KindIntent:
		return fmt.Sprintf(intentTemplate, content), nil
	case KindReminder:
		return fmt.Sprintf(reminderTemplate, content), nil
	default:
		return "", fmt.Errorf("unknown classification kind: %s", kind)
	}
}

// NormalizeLabel trims whitespace, quoting and casing from a model-returned
// label so "  Requires_Response." compares equal to "requires_response".
func NormalizeLabel(raw string) string {
	label := strings.ToLower(strings.TrimSpace(raw))
	label = strings.Trim(label, "'\"`.")
	// Models occasionally answer with a full sentence; keep the first line.
	if idx := strings.IndexAny(label, "\r\n"); idx != -1 {
		label = strings.TrimSpace(label[:idx])
	}
	return label
}
