// Package mocks holds in-memory repository implementations for tests.
// The event mock enforces the same status guards as the SQL transitions,
// so conflict behavior is testable without a database.
package mocks

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"npj/models"
)

type MockUserRepo struct {
	mu    sync.Mutex
	Users map[string]models.User // keyed by email
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{Users: map[string]models.User{}}
}

func (m *MockUserRepo) Create(u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[u.Email]; ok {
		return errors.New("dup")
	}
	if u.Role == "" {
		u.Role = models.RoleAluno
	}
	u.ID = int64(len(m.Users) + 1)
	m.Users[u.Email] = *u
	return nil
}

func (m *MockUserRepo) ValidateCredentials(email, plain string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[email]
	if !ok {
		return models.User{}, errors.New("not found")
	}
	// plain comparison keeps tests simple
	if u.Password != plain {
		return models.User{}, errors.New("bad")
	}
	return u, nil
}

func (m *MockUserRepo) GetByID(id int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, errors.New("not found")
}

func (m *MockUserRepo) ListByRoles(roles ...models.Role) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.Users {
		for _, r := range roles {
			if u.Role == r {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

type MockCaseRepo struct {
	mu    sync.Mutex
	Items map[int64]models.Case
}

func NewMockCaseRepo() *MockCaseRepo {
	return &MockCaseRepo{Items: map[int64]models.Case{}}
}

func (m *MockCaseRepo) GetAll() ([]models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Case, 0, len(m.Items))
	for _, cs := range m.Items {
		out = append(out, cs)
	}
	return out, nil
}

func (m *MockCaseRepo) GetByID(id int64) (models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.Items[id]
	if !ok {
		return models.Case{}, sql.ErrNoRows
	}
	return cs, nil
}

func (m *MockCaseRepo) Create(cs *models.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs.ID = int64(len(m.Items) + 1)
	cs.CreatedAt = time.Now()
	cs.UpdatedAt = cs.CreatedAt
	m.Items[cs.ID] = *cs
	return nil
}

func (m *MockCaseRepo) Update(cs *models.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Items[cs.ID]; !ok {
		return sql.ErrNoRows
	}
	m.Items[cs.ID] = *cs
	return nil
}

func (m *MockCaseRepo) Exists(id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Items[id]
	return ok, nil
}

type MockEventRepo struct {
	mu     sync.Mutex
	nextID int64
	Items  map[int64]models.Event
}

func NewMockEventRepo() *MockEventRepo {
	return &MockEventRepo{Items: map[int64]models.Event{}}
}

func (m *MockEventRepo) Create(e *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	e.Status = models.StatusRequested
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	m.Items[e.ID] = *e
	return nil
}

func (m *MockEventRepo) GetByID(id int64) (models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Items[id]
	if !ok {
		return models.Event{}, sql.ErrNoRows
	}
	return e, nil
}

func (m *MockEventRepo) ListAll() ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Event, 0, len(m.Items))
	for _, e := range m.Items {
		out = append(out, e)
	}
	return out, nil
}

func (m *MockEventRepo) ListByRequester(userID int64) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Event
	for _, e := range m.Items {
		if e.RequesterID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockEventRepo) CountByStatus() (map[models.Status]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[models.Status]int{}
	for _, e := range m.Items {
		out[e.Status]++
	}
	return out, nil
}

func (m *MockEventRepo) transition(id int64, from []models.Status, mutate func(*models.Event)) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Items[id]
	if !ok {
		return false, nil
	}
	eligible := false
	for _, s := range from {
		if e.Status == s {
			eligible = true
			break
		}
	}
	if !eligible {
		return false, nil
	}
	mutate(&e)
	e.UpdatedAt = time.Now()
	m.Items[id] = e
	return true, nil
}

func (m *MockEventRepo) Approve(id, approverID int64, observation string) (bool, error) {
	return m.transition(id, models.PendingStatuses, func(e *models.Event) {
		now := time.Now()
		e.Status = models.StatusApproved
		e.ApproverID = &approverID
		e.Observation = observation
		e.RespondedAt = &now
	})
}

func (m *MockEventRepo) Reject(id, approverID int64, reason string) (bool, error) {
	return m.transition(id, models.PendingStatuses, func(e *models.Event) {
		now := time.Now()
		e.Status = models.StatusRejected
		e.ApproverID = &approverID
		e.RejectionReason = reason
		e.RespondedAt = &now
	})
}

func (m *MockEventRepo) Cancel(id int64, reason string) (bool, error) {
	return m.transition(id, models.CancelableStatuses, func(e *models.Event) {
		e.Status = models.StatusCanceled
		e.CancelReason = reason
	})
}

func (m *MockEventRepo) Complete(id int64) (bool, error) {
	return m.transition(id, []models.Status{models.StatusApproved}, func(e *models.Event) {
		e.Status = models.StatusCompleted
	})
}

func (m *MockEventRepo) SetExternalEventID(id int64, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Items[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.ExternalEventID = externalID
	m.Items[id] = e
	return nil
}

type MockParticipantRepo struct {
	mu     sync.Mutex
	nextID int64
	Items  map[string]models.Participant // "eventId:email"
}

func NewMockParticipantRepo() *MockParticipantRepo {
	return &MockParticipantRepo{Items: map[string]models.Participant{}}
}

func pkey(eventID int64, email string) string { return fmt.Sprintf("%d:%s", eventID, email) }

func (m *MockParticipantRepo) Add(p *models.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pkey(p.EventID, p.Email)
	if _, ok := m.Items[k]; ok {
		return errors.New("dup")
	}
	m.nextID++
	p.ID = m.nextID
	if p.Response == "" {
		p.Response = "pending"
	}
	m.Items[k] = *p
	return nil
}

func (m *MockParticipantRepo) ListByEvent(eventID int64) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Participant
	for _, p := range m.Items {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockParticipantRepo) SetResponse(eventID int64, email, response string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pkey(eventID, email)
	p, ok := m.Items[k]
	if !ok {
		return false, nil
	}
	p.Response = response
	m.Items[k] = p
	return true, nil
}

func (m *MockParticipantRepo) CountResponses(eventID int64) (confirmed, declined int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Items {
		if p.EventID != eventID {
			continue
		}
		switch p.Response {
		case "confirmed":
			confirmed++
		case "declined":
			declined++
		}
	}
	return confirmed, declined, nil
}

type MockAttachmentRepo struct {
	mu    sync.Mutex
	Items map[string]models.Attachment
}

func NewMockAttachmentRepo() *MockAttachmentRepo {
	return &MockAttachmentRepo{Items: map[string]models.Attachment{}}
}

func (m *MockAttachmentRepo) Create(a *models.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Items[a.ID] = *a
	return nil
}

func (m *MockAttachmentRepo) GetByID(id string) (models.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Items[id]
	if !ok {
		return models.Attachment{}, errors.New("not found")
	}
	return a, nil
}

func (m *MockAttachmentRepo) ListByCase(caseID int64) ([]models.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Attachment
	for _, a := range m.Items {
		if a.CaseID == caseID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MockAttachmentRepo) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Items, id)
	return nil
}

type MockNotificationRepo struct {
	mu     sync.Mutex
	nextID int64
	Items  []models.Notification
}

func NewMockNotificationRepo() *MockNotificationRepo { return &MockNotificationRepo{} }

func (m *MockNotificationRepo) Create(n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	n.ID = m.nextID
	n.CreatedAt = time.Now()
	m.Items = append(m.Items, *n)
	return nil
}

func (m *MockNotificationRepo) ListByUser(userID int64) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.Items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MockNotificationRepo) MarkRead(id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.Items {
		if n.ID == id && n.UserID == userID {
			m.Items[i].Read = true
		}
	}
	return nil
}
