package connector

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/oauth2"

	authrepo "mailmind-backend/internal/auth/repository"
	"mailmind-backend/internal/orchestrator"
	"mailmind-backend/pkg/google"
)

// GoogleConnector implements the orchestrator's external operations on
// top of the Google Workspace APIs. Credentials are looked up per call
// by the acting user's email address, and refreshed tokens are written
// back to the user record.
type GoogleConnector struct {
	google   *google.Service
	userRepo authrepo.UserRepository
}

func NewGoogleConnector(googleService *google.Service, userRepo authrepo.UserRepository) *GoogleConnector {
	return &GoogleConnector{google: googleService, userRepo: userRepo}
}

type credentials struct {
	userID       int64
	name         string
	email        string
	accessToken  string
	refreshToken string
}

func (c *GoogleConnector) credentialsFor(userEmail string) (*credentials, error) {
	user, err := c.userRepo.FindByEmail(userEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("no account found for %s", userEmail)
	}
	if user.GoogleAccessToken == "" {
		return nil, fmt.Errorf("account %s is not linked to Google", userEmail)
	}
	return &credentials{
		userID:       user.ID,
		name:         user.Name,
		email:        user.Email,
		accessToken:  user.GoogleAccessToken,
		refreshToken: user.GoogleRefreshToken,
	}, nil
}

func (c *GoogleConnector) persistTokens(creds *credentials) google.TokenUpdateFunc {
	return func(token *oauth2.Token) error {
		if err := c.userRepo.UpdateGoogleTokens(creds.userID, token.AccessToken, token.RefreshToken); err != nil {
			log.Printf("[Connector] failed to persist refreshed tokens for user %d: %v", creds.userID, err)
			return err
		}
		return nil
	}
}

func (c *GoogleConnector) SendMail(ctx context.Context, userEmail, receiver, subject, content string, attachments []orchestrator.Attachment) error {
	creds, err := c.credentialsFor(userEmail)
	if err != nil {
		return err
	}
	return c.google.SendMail(ctx, creds.accessToken, creds.refreshToken,
		creds.name, creds.email, receiver, "", "", subject, content,
		toGoogleAttachments(attachments), c.persistTokens(creds))
}

func (c *GoogleConnector) ReplyMail(ctx context.Context, userEmail, mailID, body string, attachments []orchestrator.Attachment) error {
	creds, err := c.credentialsFor(userEmail)
	if err != nil {
		return err
	}
	return c.google.ReplyMail(ctx, creds.accessToken, creds.refreshToken,
		mailID, body, toGoogleAttachments(attachments), c.persistTokens(creds))
}

func (c *GoogleConnector) ReadEmail(ctx context.Context, userEmail, mailID string) (*orchestrator.EmailMessage, error) {
	creds, err := c.credentialsFor(userEmail)
	if err != nil {
		return nil, err
	}
	email, err := c.google.ReadEmail(ctx, creds.accessToken, creds.refreshToken, mailID, c.persistTokens(creds))
	if err != nil {
		return nil, err
	}
	return fromGoogleEmail(email), nil
}

func (c *GoogleConnector) FetchThread(ctx context.Context, userEmail, mailID string) ([]*orchestrator.EmailMessage, error) {
	creds, err := c.credentialsFor(userEmail)
	if err != nil {
		return nil, err
	}
	emails, err := c.google.FetchThread(ctx, creds.accessToken, creds.refreshToken, mailID, c.persistTokens(creds))
	if err != nil {
		return nil, err
	}
	messages := make([]*orchestrator.EmailMessage, 0, len(emails))
	for _, email := range emails {
		messages = append(messages, fromGoogleEmail(email))
	}
	return messages, nil
}

func (c *GoogleConnector) LastInboundMessage(ctx context.Context, userEmail, mailID string) (*orchestrator.EmailMessage, error) {
	creds, err := c.credentialsFor(userEmail)
	if err != nil {
		return nil, err
	}
	email, err := c.google.LastInboundMessage(ctx, creds.accessToken, creds.refreshToken, mailID, creds.email, c.persistTokens(creds))
	if err != nil {
		return nil, err
	}
	return fromGoogleEmail(email), nil
}

func (c *GoogleConnector) LookupContactEmail(ctx context.Context, userEmail, name string) (string, error) {
	creds, err := c.credentialsFor(userEmail)
	if err != nil {
		return "", err
	}
	return c.google.LookupContactEmail(ctx, creds.accessToken, creds.refreshToken, name, c.persistTokens(creds))
}

func (c *GoogleConnector) CreateCalendarEvent(ctx context.Context, userEmail string, event orchestrator.CalendarEvent) (string, error) {
	creds, err := c.credentialsFor(userEmail)
	if err != nil {
		return "", err
	}
	input := google.EventInput{
		Title:       event.Subject,
		Description: event.Description,
		Location:    event.Location,
		Start:       event.Start,
		End:         event.End,
		Attendees:   event.Attendees,
	}
	return c.google.CreateCalendarEvent(ctx, creds.accessToken, creds.refreshToken, input, c.persistTokens(creds))
}

func (c *GoogleConnector) CreateTodoTask(ctx context.Context, userEmail, title, notes string, due *time.Time) (string, error) {
	creds, err := c.credentialsFor(userEmail)
	if err != nil {
		return "", err
	}
	return c.google.CreateTodoTask(ctx, creds.accessToken, creds.refreshToken, title, notes, due, c.persistTokens(creds))
}

func (c *GoogleConnector) UserProfile(ctx context.Context, userEmail string) (string, error) {
	creds, err := c.credentialsFor(userEmail)
	if err != nil {
		return "", err
	}
	return c.google.UserProfile(ctx, creds.accessToken, creds.refreshToken, c.persistTokens(creds))
}

func toGoogleAttachments(attachments []orchestrator.Attachment) []google.Attachment {
	if len(attachments) == 0 {
		return nil
	}
	out := make([]google.Attachment, 0, len(attachments))
	for _, a := range attachments {
		out = append(out, google.Attachment{
			Filename: a.Filename,
			MimeType: a.MimeType,
			Data:     a.Content,
		})
	}
	return out
}

func fromGoogleEmail(email *google.Email) *orchestrator.EmailMessage {
	if email == nil {
		return nil
	}
	attachments := make([]orchestrator.Attachment, 0, len(email.Attachments))
	for _, a := range email.Attachments {
		attachments = append(attachments, orchestrator.Attachment{
			Filename: a.Filename,
			MimeType: a.MimeType,
			Content:  a.Data,
		})
	}
	body := email.Body
	if body == "" {
		body = email.BodyPreview
	}
	return &orchestrator.EmailMessage{
		MailID:      email.ID,
		Subject:     email.Subject,
		Body:        body,
		Sender:      email.From,
		ReceivedAt:  email.ReceivedAt,
		Attachments: attachments,
	}
}
