package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Email is a simplified view of a Gmail message
type Email struct {
	ID          string       `json:"id"`
	ThreadID    string       `json:"threadId"`
	From        string       `json:"from"`
	FromName    string       `json:"fromName"`
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	BodyPreview string       `json:"bodyPreview"`
	IsHTML      bool         `json:"isHtml"`
	ReceivedAt  time.Time    `json:"receivedAt"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment carries raw attachment bytes for outgoing mail and
// metadata for incoming mail
type Attachment struct {
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size,omitempty"`
	Data     []byte `json:"-"`
}

// gmailService creates a Gmail service with the user's access token
func (s *Service) gmailService(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*gmail.Service, error) {
	client := s.httpClient(ctx, accessToken, refreshToken, onTokenRefresh)
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

// UserProfile returns the authenticated user's email address
func (s *Service) UserProfile(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (string, error) {
	srv, err := s.gmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return "", err
	}

	profile, err := srv.Users.GetProfile("me").Do()
	if err != nil {
		return "", fmt.Errorf("unable to get profile: %v", err)
	}
	return profile.EmailAddress, nil
}

// SendMail sends an email with optional attachments
func (s *Service) SendMail(ctx context.Context, accessToken, refreshToken, fromName, fromEmail, to, cc, bcc, subject, body string, attachments []Attachment, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.gmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return err
	}

	raw := buildMimeMessage(fromName, fromEmail, to, cc, bcc, subject, body, attachments, nil)

	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}

	_, err = srv.Users.Messages.Send("me", msg).Do()
	if err != nil {
		return fmt.Errorf("unable to send message: %v", err)
	}

	return nil
}

// ReplyMail sends a reply in the thread of an existing message. The
// reply keeps the original subject with a Re: prefix and sets the
// In-Reply-To and References headers so mail clients thread it.
func (s *Service) ReplyMail(ctx context.Context, accessToken, refreshToken, messageID, body string, attachments []Attachment, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.gmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return err
	}

	original, err := srv.Users.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return fmt.Errorf("unable to retrieve original message: %v", err)
	}

	from := getHeader(original.Payload.Headers, "From")
	replyTo := getHeader(original.Payload.Headers, "Reply-To")
	if replyTo != "" {
		from = replyTo
	}
	subject := getHeader(original.Payload.Headers, "Subject")
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}
	rfcMessageID := getHeader(original.Payload.Headers, "Message-ID")
	if rfcMessageID == "" {
		rfcMessageID = getHeader(original.Payload.Headers, "Message-Id")
	}

	threadHeaders := map[string]string{}
	if rfcMessageID != "" {
		threadHeaders["In-Reply-To"] = rfcMessageID
		references := getHeader(original.Payload.Headers, "References")
		if references != "" {
			threadHeaders["References"] = references + " " + rfcMessageID
		} else {
			threadHeaders["References"] = rfcMessageID
		}
	}

	raw := buildMimeMessage("", "", from, "", "", subject, body, attachments, threadHeaders)

	msg := &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString(raw),
		ThreadId: original.ThreadId,
	}

	_, err = srv.Users.Messages.Send("me", msg).Do()
	if err != nil {
		return fmt.Errorf("unable to send reply: %v", err)
	}

	return nil
}

// ReadEmail retrieves a specific email by ID
func (s *Service) ReadEmail(ctx context.Context, accessToken, refreshToken, messageID string, onTokenRefresh TokenUpdateFunc) (*Email, error) {
	srv, err := s.gmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message: %v", err)
	}

	return convertMessage(msg), nil
}

// FetchThread retrieves all messages in the thread of the given
// message, oldest first
func (s *Service) FetchThread(ctx context.Context, accessToken, refreshToken, messageID string, onTokenRefresh TokenUpdateFunc) ([]*Email, error) {
	srv, err := s.gmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", messageID).Format("minimal").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message: %v", err)
	}

	thread, err := srv.Users.Threads.Get("me", msg.ThreadId).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve thread: %v", err)
	}

	emails := make([]*Email, 0, len(thread.Messages))
	for _, m := range thread.Messages {
		emails = append(emails, convertMessage(m))
	}
	return emails, nil
}

// LatestInboxMessage returns the newest message in the user's inbox
func (s *Service) LatestInboxMessage(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*Email, error) {
	srv, err := s.gmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	list, err := srv.Users.Messages.List("me").LabelIds("INBOX").MaxResults(1).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %v", err)
	}
	if len(list.Messages) == 0 {
		return nil, errors.New("inbox is empty")
	}

	msg, err := srv.Users.Messages.Get("me", list.Messages[0].Id).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message: %v", err)
	}
	return convertMessage(msg), nil
}

// LastInboundMessage returns the most recent message in the thread
// that was not sent by the authenticated user
func (s *Service) LastInboundMessage(ctx context.Context, accessToken, refreshToken, messageID, selfEmail string, onTokenRefresh TokenUpdateFunc) (*Email, error) {
	emails, err := s.FetchThread(ctx, accessToken, refreshToken, messageID, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	for i := len(emails) - 1; i >= 0; i-- {
		if !strings.Contains(emails[i].From, selfEmail) {
			return emails[i], nil
		}
	}
	return nil, errors.New("no inbound message found in thread")
}

// buildMimeMessage assembles an RFC 2822 multipart message
func buildMimeMessage(fromName, fromEmail, to, cc, bcc, subject, body string, attachments []Attachment, extraHeaders map[string]string) []byte {
	var emailMsg bytes.Buffer
	boundary := "foo_bar_baz"

	if fromName != "" && fromEmail != "" {
		encodedName := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(fromName)))
		emailMsg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", encodedName, fromEmail))
	}
	emailMsg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	if cc != "" {
		emailMsg.WriteString(fmt.Sprintf("Cc: %s\r\n", cc))
	}
	if bcc != "" {
		emailMsg.WriteString(fmt.Sprintf("Bcc: %s\r\n", bcc))
	}
	// Encode subject to handle non-ASCII characters (RFC 2047)
	encodedSubject := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(subject)))
	emailMsg.WriteString(fmt.Sprintf("Subject: %s\r\n", encodedSubject))
	for name, value := range extraHeaders {
		emailMsg.WriteString(fmt.Sprintf("%s: %s\r\n", name, value))
	}
	emailMsg.WriteString("MIME-Version: 1.0\r\n")
	emailMsg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n\r\n", boundary))

	emailMsg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	emailMsg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	emailMsg.WriteString(body)
	emailMsg.WriteString("\r\n")

	for _, att := range attachments {
		encodedContent := base64.StdEncoding.EncodeToString(att.Data)

		mimeType := att.MimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		emailMsg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		emailMsg.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", mimeType, att.Filename))
		emailMsg.WriteString("Content-Transfer-Encoding: base64\r\n")
		emailMsg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n\r\n", att.Filename))

		// Split base64 into lines of 76 characters
		for i := 0; i < len(encodedContent); i += 76 {
			end := i + 76
			if end > len(encodedContent) {
				end = len(encodedContent)
			}
			emailMsg.WriteString(encodedContent[i:end] + "\r\n")
		}
	}

	emailMsg.WriteString(fmt.Sprintf("--%s--", boundary))

	return emailMsg.Bytes()
}

func convertMessage(msg *gmail.Message) *Email {
	from := getHeader(msg.Payload.Headers, "From")
	fromName := from
	if idx := strings.Index(from, "<"); idx > 0 {
		fromName = strings.TrimSpace(from[:idx])
	}

	body, isHTML := getEmailBody(msg.Payload)
	preview := body

	if isHTML {
		re := regexp.MustCompile(`<[^>]*>`)
		preview = re.ReplaceAllString(preview, " ")
		preview = strings.ReplaceAll(preview, "&nbsp;", " ")
		preview = strings.ReplaceAll(preview, "&lt;", "<")
		preview = strings.ReplaceAll(preview, "&gt;", ">")
		preview = strings.ReplaceAll(preview, "&amp;", "&")
		preview = strings.ReplaceAll(preview, "&quot;", "\"")
	}

	preview = strings.Join(strings.Fields(preview), " ")
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}

	return &Email{
		ID:          msg.Id,
		ThreadID:    msg.ThreadId,
		From:        from,
		FromName:    fromName,
		To:          getHeader(msg.Payload.Headers, "To"),
		Subject:     getHeader(msg.Payload.Headers, "Subject"),
		Body:        body,
		BodyPreview: preview,
		IsHTML:      isHTML,
		ReceivedAt:  time.Unix(msg.InternalDate/1000, 0),
		Attachments: getAttachments(msg.Payload),
	}
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}

func getEmailBody(payload *gmail.MessagePart) (string, bool) {
	if payload.Body != nil && payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(payload.Body.Data)
		if err == nil {
			return string(data), payload.MimeType == "text/html"
		}
	}

	var htmlBody string
	var plainBody string

	var findBody func(parts []*gmail.MessagePart)
	findBody = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.MimeType == "text/html" {
				if part.Body != nil && part.Body.Data != "" {
					data, err := base64.URLEncoding.DecodeString(part.Body.Data)
					if err == nil {
						htmlBody = string(data)
					}
				}
			} else if part.MimeType == "text/plain" {
				if part.Body != nil && part.Body.Data != "" {
					data, err := base64.URLEncoding.DecodeString(part.Body.Data)
					if err == nil {
						plainBody = string(data)
					}
				}
			}

			if len(part.Parts) > 0 {
				findBody(part.Parts)
			}
		}
	}

	findBody(payload.Parts)

	if htmlBody != "" {
		return htmlBody, true
	}
	return plainBody, false
}

func getAttachments(payload *gmail.MessagePart) []Attachment {
	var attachments []Attachment

	var findAttachments func(parts []*gmail.MessagePart)
	findAttachments = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
				attachments = append(attachments, Attachment{
					ID:       part.Body.AttachmentId,
					Filename: part.Filename,
					Size:     int64(part.Body.Size),
					MimeType: part.MimeType,
				})
			}

			if len(part.Parts) > 0 {
				findAttachments(part.Parts)
			}
		}
	}

	findAttachments(payload.Parts)
	return attachments
}
