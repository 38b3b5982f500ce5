// Package calendar is the external calendar capability the workflow syncs
// approved events into. All calls are best effort from the caller's point
// of view; this package only reports errors, it never retries.
package calendar

import (
	"context"

	"npj/models"
)

type Calendar interface {
	CreateEvent(ctx context.Context, ev models.Event) (externalID string, err error)
	UpdateEvent(ctx context.Context, externalID string, ev models.Event) error
	DeleteEvent(ctx context.Context, externalID string) error
}

// Disabled is used when no Google credentials are configured; every call
// succeeds without doing anything, so approvals proceed without sync.
type Disabled struct{}

func (Disabled) CreateEvent(context.Context, models.Event) (string, error) { return "", nil }
func (Disabled) UpdateEvent(context.Context, string, models.Event) error  { return nil }
func (Disabled) DeleteEvent(context.Context, string) error                { return nil }
