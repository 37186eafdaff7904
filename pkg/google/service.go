// Package google wraps the Google Workspace APIs used by the
// orchestration pipelines: Gmail, Calendar, Tasks and People.
package google

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenUpdateFunc is a callback invoked when the oauth token is refreshed
type TokenUpdateFunc func(token *oauth2.Token) error

type Service struct {
	clientID        string
	clientSecret    string
	contactsBreaker *gobreaker.CircuitBreaker
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		contactsBreaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "people-search",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			fmt.Printf("Failed to update token: %v\n", err)
		}
	}
	return t, nil
}

// httpClient builds an authenticated HTTP client from the user's tokens.
// Token refreshes are reported through onTokenRefresh.
func (s *Service) httpClient(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) *http.Client {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}

	// Only force refresh if we have a refresh token
	if refreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	wrappedSource := &notifyTokenSource{
		src:      config.TokenSource(ctx, token),
		current:  token,
		callback: onTokenRefresh,
	}

	return oauth2.NewClient(ctx, wrappedSource)
}
