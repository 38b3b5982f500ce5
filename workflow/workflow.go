// Package workflow implements the agendamento lifecycle: a requester
// files an event, an admin or professor approves or rejects it, and
// anyone involved may cancel it before it is done. Approved events are
// synced to the external calendar and every decision notifies the people
// affected. Calendar and mail failures are logged and swallowed; they
// never fail the operation that triggered them.
package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"npj/apperr"
	"npj/calendar"
	"npj/dashboard"
	"npj/mailer"
	"npj/models"
)

// Caller is the authenticated user an operation runs as.
type Caller struct {
	ID   int64
	Role models.Role
}

// CanApprove gates the approval/rejection transitions.
func CanApprove(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleProfessor
}

type CreateEventInput struct {
	Title        string
	Description  string
	Location     string
	StartAt      time.Time
	EndAt        time.Time
	CaseID       *int64
	Participants []string
}

// EventDetails is an event with its invitees and display mapping, the
// shape the read endpoints return.
type EventDetails struct {
	models.Event
	Participants []models.Participant `json:"participants"`
	Display      StatusDisplay        `json:"display"`
}

type Stats struct {
	Total    int                   `json:"total"`
	ByStatus map[models.Status]int `json:"byStatus"`
}

type Service struct {
	events        models.EventRepository
	participants  models.ParticipantRepository
	users         models.UserRepository
	cases         models.CaseRepository
	notifications models.NotificationRepository
	mail          mailer.Mailer
	cal           calendar.Calendar
}

func NewService(
	events models.EventRepository,
	participants models.ParticipantRepository,
	users models.UserRepository,
	cases models.CaseRepository,
	notifications models.NotificationRepository,
	mail mailer.Mailer,
	cal calendar.Calendar,
) *Service {
	return &Service{
		events:        events,
		participants:  participants,
		users:         users,
		cases:         cases,
		notifications: notifications,
		mail:          mail,
		cal:           cal,
	}
}

// Request files a new event with status "requested" and tells everyone
// who can approve it.
func (s *Service) Request(ctx context.Context, in CreateEventInput, caller Caller) (models.Event, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Event{}, apperr.Validation("title is required")
	}
	if in.StartAt.IsZero() || in.EndAt.IsZero() {
		return models.Event{}, apperr.Validation("startAt and endAt are required")
	}
	if !in.StartAt.Before(in.EndAt) {
		return models.Event{}, apperr.Validation("startAt must be before endAt")
	}

	if in.CaseID != nil {
		cs, err := s.cases.GetByID(*in.CaseID)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, apperr.NotFound("case not found")
		}
		if err != nil {
			return models.Event{}, err
		}
		if dashboard.IsConcluded(cs.Status) {
			return models.Event{}, apperr.Conflict("cannot schedule events on a concluded case")
		}
	}

	ev := models.Event{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Location:    in.Location,
		StartAt:     in.StartAt,
		EndAt:       in.EndAt,
		RequesterID: caller.ID,
		CaseID:      in.CaseID,
	}
	if err := s.events.Create(&ev); err != nil {
		return models.Event{}, err
	}

	for _, email := range in.Participants {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		p := models.Participant{EventID: ev.ID, Email: email}
		if err := s.participants.Add(&p); err != nil {
			// duplicate invite or similar, the event itself stands
			log.Printf("workflow: add participant %q to event %d: %v", email, ev.ID, err)
		}
	}

	s.notifyApprovers(ev)
	return ev, nil
}

// Approve moves a pending event to "approved" and syncs it to the
// external calendar. A second concurrent approval loses the conditional
// update and gets a conflict.
func (s *Service) Approve(ctx context.Context, id int64, caller Caller, observation string) (models.Event, error) {
	if !CanApprove(caller.Role) {
		return models.Event{}, apperr.Forbidden("only admin or professor can approve events")
	}

	ev, err := s.getEvent(id)
	if err != nil {
		return models.Event{}, err
	}

	ok, err := s.events.Approve(id, caller.ID, observation)
	if err != nil {
		return models.Event{}, err
	}
	if !ok {
		return models.Event{}, apperr.Conflict("event is not pending approval")
	}

	// Best effort: the approval stands even if the calendar is down.
	if externalID, err := s.cal.CreateEvent(ctx, ev); err != nil {
		log.Printf("workflow: calendar sync for event %d: %v", id, err)
	} else if externalID != "" {
		if err := s.events.SetExternalEventID(id, externalID); err != nil {
			log.Printf("workflow: store external id for event %d: %v", id, err)
		}
	}

	s.notifyUser(ev.RequesterID, "event_approved",
		fmt.Sprintf("Your event %q was approved.", ev.Title))

	return s.getEvent(id)
}

// Reject moves a pending event to "rejected". The reason is mandatory
// for every caller, approver or not.
func (s *Service) Reject(ctx context.Context, id int64, caller Caller, reason string) (models.Event, error) {
	if strings.TrimSpace(reason) == "" {
		return models.Event{}, apperr.Validation("rejection reason is required")
	}
	if !CanApprove(caller.Role) {
		return models.Event{}, apperr.Forbidden("only admin or professor can reject events")
	}

	ev, err := s.getEvent(id)
	if err != nil {
		return models.Event{}, err
	}

	ok, err := s.events.Reject(id, caller.ID, reason)
	if err != nil {
		return models.Event{}, err
	}
	if !ok {
		return models.Event{}, apperr.Conflict("event is not pending approval")
	}

	s.notifyUser(ev.RequesterID, "event_rejected",
		fmt.Sprintf("Your event %q was rejected: %s", ev.Title, reason))

	return s.getEvent(id)
}

// Cancel moves an event that is not yet done to "canceled", removes the
// synced calendar entry if there is one, and tells invitees and admins.
func (s *Service) Cancel(ctx context.Context, id int64, caller Caller, reason string) (models.Event, error) {
	if strings.TrimSpace(reason) == "" {
		return models.Event{}, apperr.Validation("cancellation reason is required")
	}

	ev, err := s.getEvent(id)
	if err != nil {
		return models.Event{}, err
	}
	if caller.ID != ev.RequesterID && !CanApprove(caller.Role) {
		return models.Event{}, apperr.Forbidden("only the requester, admin or professor can cancel an event")
	}

	ok, err := s.events.Cancel(id, reason)
	if err != nil {
		return models.Event{}, err
	}
	if !ok {
		return models.Event{}, apperr.Conflict("event is already canceled or completed")
	}

	if ev.ExternalEventID != "" {
		if err := s.cal.DeleteEvent(ctx, ev.ExternalEventID); err != nil {
			log.Printf("workflow: calendar delete for event %d: %v", id, err)
		}
	}

	s.fanOutCancellation(ev, reason)
	return s.getEvent(id)
}

// Complete marks an approved event as held.
func (s *Service) Complete(ctx context.Context, id int64, caller Caller) (models.Event, error) {
	if !CanApprove(caller.Role) {
		return models.Event{}, apperr.Forbidden("only admin or professor can complete events")
	}

	if _, err := s.getEvent(id); err != nil {
		return models.Event{}, err
	}

	ok, err := s.events.Complete(id)
	if err != nil {
		return models.Event{}, err
	}
	if !ok {
		return models.Event{}, apperr.Conflict("only approved events can be completed")
	}
	return s.getEvent(id)
}

// Respond records an invitee's confirmed/declined answer.
func (s *Service) Respond(ctx context.Context, id int64, caller Caller, response string) error {
	if response != "confirmed" && response != "declined" {
		return apperr.Validation("response must be confirmed or declined")
	}

	if _, err := s.getEvent(id); err != nil {
		return err
	}

	u, err := s.users.GetByID(caller.ID)
	if err != nil {
		return err
	}

	ok, err := s.participants.SetResponse(id, u.Email, response)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("you are not invited to this event")
	}
	return nil
}

// Get returns an event with participants and display mapping, honoring
// visibility: requesters see their own, elevated roles see everything.
func (s *Service) Get(ctx context.Context, id int64, caller Caller) (EventDetails, error) {
	ev, err := s.getEvent(id)
	if err != nil {
		return EventDetails{}, err
	}
	if ev.RequesterID != caller.ID && !CanApprove(caller.Role) {
		return EventDetails{}, apperr.Forbidden("not allowed to view this event")
	}

	parts, err := s.participants.ListByEvent(id)
	if err != nil {
		return EventDetails{}, err
	}
	confirmed, declined, err := s.participants.CountResponses(id)
	if err != nil {
		return EventDetails{}, err
	}

	return EventDetails{
		Event:        ev,
		Participants: parts,
		Display:      DisplayStatus(ev, confirmed, declined),
	}, nil
}

// List returns what the caller may see.
func (s *Service) List(ctx context.Context, caller Caller) ([]models.Event, error) {
	if CanApprove(caller.Role) {
		return s.events.ListAll()
	}
	return s.events.ListByRequester(caller.ID)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	byStatus, err := s.events.CountByStatus()
	if err != nil {
		return Stats{}, err
	}
	total := 0
	for _, n := range byStatus {
		total += n
	}
	return Stats{Total: total, ByStatus: byStatus}, nil
}

func (s *Service) getEvent(id int64) (models.Event, error) {
	ev, err := s.events.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, apperr.NotFound("event not found")
	}
	if err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// notifyUser persists an in-app notification and sends the e-mail, both
// best effort.
func (s *Service) notifyUser(userID int64, kind, message string) {
	u, err := s.users.GetByID(userID)
	if err != nil {
		log.Printf("workflow: notify user %d: %v", userID, err)
		return
	}
	n := models.Notification{UserID: u.ID, Kind: kind, Message: message}
	if err := s.notifications.Create(&n); err != nil {
		log.Printf("workflow: save notification for user %d: %v", u.ID, err)
	}
	if err := s.mail.Send(u.Email, "Sistema NPJ", message); err != nil {
		log.Printf("workflow: mail to %s: %v", u.Email, err)
	}
}

func (s *Service) notifyApprovers(ev models.Event) {
	approvers, err := s.users.ListByRoles(models.RoleAdmin, models.RoleProfessor)
	if err != nil {
		log.Printf("workflow: list approvers: %v", err)
		return
	}
	msg := fmt.Sprintf("New event %q awaits approval.", ev.Title)
	for _, u := range approvers {
		s.notifyUser(u.ID, "approval_request", msg)
	}
}

func (s *Service) fanOutCancellation(ev models.Event, reason string) {
	msg := fmt.Sprintf("Event %q was canceled: %s", ev.Title, reason)

	parts, err := s.participants.ListByEvent(ev.ID)
	if err != nil {
		log.Printf("workflow: list participants of event %d: %v", ev.ID, err)
	}
	for _, p := range parts {
		if err := s.mail.Send(p.Email, "Sistema NPJ", msg); err != nil {
			log.Printf("workflow: mail to %s: %v", p.Email, err)
		}
	}

	admins, err := s.users.ListByRoles(models.RoleAdmin)
	if err != nil {
		log.Printf("workflow: list admins: %v", err)
		return
	}
	for _, u := range admins {
		s.notifyUser(u.ID, "event_canceled", msg)
	}
}
