package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"npj/models"
)

// Google syncs events into a single Google Calendar using a service
// account credentials file.
type Google struct {
	svc        *gcal.Service
	calendarID string
}

func NewGoogle(ctx context.Context, credentialsFile, calendarID string) (*Google, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarEventsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return &Google{svc: svc, calendarID: calendarID}, nil
}

func toGoogleEvent(ev models.Event) *gcal.Event {
	return &gcal.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       &gcal.EventDateTime{DateTime: ev.StartAt.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: ev.EndAt.Format(time.RFC3339)},
	}
}

func (g *Google) CreateEvent(ctx context.Context, ev models.Event) (string, error) {
	created, err := g.svc.Events.Insert(g.calendarID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calendar insert: %w", err)
	}
	return created.Id, nil
}

func (g *Google) UpdateEvent(ctx context.Context, externalID string, ev models.Event) error {
	_, err := g.svc.Events.Update(g.calendarID, externalID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("calendar update: %w", err)
	}
	return nil
}

func (g *Google) DeleteEvent(ctx context.Context, externalID string) error {
	if err := g.svc.Events.Delete(g.calendarID, externalID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar delete: %w", err)
	}
	return nil
}
