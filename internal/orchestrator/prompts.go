package orchestrator

// Generation prompts used by the branch pipelines. Classification
// prompts live in pkg/ai/prompts.

const casualReplyPrompt = `You are a helpful email assistant chatting with %s.
Recent conversation:
%s

User message: %s

Reply naturally and concisely. Return only the reply text.`

const draftEmailPrompt = `Write an email following this instruction from %s: %s

Sender profile: %s

Return ONLY a JSON object with the fields:
{"receiver": "<recipient name or email>", "subject": "<subject line>", "content": "<full email body>"}`

const reviewEmailPrompt = `Review this email draft for tone, clarity and completeness.

Subject: %s

%s

If the draft is acceptable, return {"approved": true, "feedback": ""}.
Otherwise return {"approved": false, "feedback": "<what should change>"}.
Return ONLY the JSON object.`

const draftReplyPrompt = `Write a brief, polite reply to this email on behalf of the recipient.

From: %s
Subject: %s

%s

Return only the reply body text.`

const summarizeEmailPrompt = `Summarize this email in two or three sentences.

Subject: %s

%s

Return only the summary text.`

const extractTasksPrompt = `Extract the actionable items from this email. Today is %s.

%s

Return ONLY a JSON array, one object per actionable item:
[{"title": "<short imperative title>", "detail": "<one-line detail>", "due": "<due date expression as written, or empty>"}]
Return [] if there are no actionable items.`

const extractTodoPrompt = `Extract a reminder from this request. Today is %s.

Request: %s

Return ONLY a JSON object:
{"title": "<short title>", "detail": "<optional detail>", "due": "<due date expression as written, or empty>"}`

const extractEventPrompt = `Extract a calendar event from this request. Today is %s.

Request: %s

Return ONLY a JSON object:
{"subject": "<event title>", "start": "<start date/time expression>", "end": "<end date/time expression, or empty>", "location": "<location, or empty>", "attendees": ["<email or name>", ...]}`
