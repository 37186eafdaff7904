package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// EventInput describes an event to create on the user's primary calendar
type EventInput struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// CreateCalendarEvent inserts an event into the primary calendar.
// Missing end time defaults to one hour after start, missing location
// defaults to "Not specified", and a UTC start is interpreted in the
// server's local timezone.
func (s *Service) CreateCalendarEvent(ctx context.Context, accessToken, refreshToken string, input EventInput, onTokenRefresh TokenUpdateFunc) (string, error) {
	client := s.httpClient(ctx, accessToken, refreshToken, onTokenRefresh)
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", fmt.Errorf("unable to create Calendar service: %v", err)
	}

	start := input.Start
	if start.Location() == time.UTC {
		start = time.Date(start.Year(), start.Month(), start.Day(), start.Hour(), start.Minute(), 0, 0, time.Local)
	}
	end := input.End
	if end.IsZero() {
		end = start.Add(time.Hour)
	} else if end.Location() == time.UTC {
		end = time.Date(end.Year(), end.Month(), end.Day(), end.Hour(), end.Minute(), 0, 0, time.Local)
	}

	location := input.Location
	if location == "" {
		location = "Not specified"
	}

	event := &calendar.Event{
		Summary:     input.Title,
		Description: input.Description,
		Location:    location,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
		},
	}

	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := srv.Events.Insert("primary", event).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create event: %v", err)
	}

	return created.HtmlLink, nil
}
