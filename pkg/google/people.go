package google

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

// LookupContactEmail resolves a contact name to an email address using
// the People API. Transient failures are retried with exponential
// backoff; repeated failures open the circuit breaker so the pipelines
// fail fast instead of hammering the API.
func (s *Service) LookupContactEmail(ctx context.Context, accessToken, refreshToken, name string, onTokenRefresh TokenUpdateFunc) (string, error) {
	result, err := s.contactsBreaker.Execute(func() (interface{}, error) {
		var email string
		operation := func() error {
			found, err := s.searchContact(ctx, accessToken, refreshToken, name, onTokenRefresh)
			if err != nil {
				log.Printf("[Contacts] lookup attempt for %q failed: %v", name, err)
				return err
			}
			email = found
			return nil
		}

		// Up to 3 attempts with exponential backoff
		b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
		if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
			return nil, err
		}
		return email, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return "", fmt.Errorf("contact lookup temporarily unavailable: %w", err)
		}
		return "", err
	}

	return result.(string), nil
}

func (s *Service) searchContact(ctx context.Context, accessToken, refreshToken, name string, onTokenRefresh TokenUpdateFunc) (string, error) {
	client := s.httpClient(ctx, accessToken, refreshToken, onTokenRefresh)
	srv, err := people.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", fmt.Errorf("unable to create People service: %v", err)
	}

	resp, err := srv.People.SearchContacts().
		Query(name).
		ReadMask("names,emailAddresses").
		Do()
	if err != nil {
		return "", fmt.Errorf("unable to search contacts: %v", err)
	}

	for _, r := range resp.Results {
		if r.Person == nil {
			continue
		}
		for _, addr := range r.Person.EmailAddresses {
			if addr.Value != "" {
				return addr.Value, nil
			}
		}
	}

	// Fall back to "Other contacts", which holds auto-collected
	// addresses from past correspondence
	otherResp, err := srv.OtherContacts.Search().
		Query(name).
		ReadMask("names,emailAddresses").
		Do()
	if err == nil {
		for _, r := range otherResp.Results {
			if r.Person == nil {
				continue
			}
			for _, addr := range r.Person.EmailAddresses {
				if addr.Value != "" {
					return addr.Value, nil
				}
			}
		}
	}

	return "", fmt.Errorf("no contact found matching %q", strings.TrimSpace(name))
}
