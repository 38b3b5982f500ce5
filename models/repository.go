package models

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProfessor Role = "professor"
	RoleAluno     Role = "aluno"
)

// Status is the scheduling workflow state of an Event. The workflow only
// ever writes these five values; older Portuguese vocabularies found in
// legacy data are handled on the read side (see dashboard).
type Status string

const (
	StatusRequested Status = "requested"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCanceled  Status = "canceled"
	StatusCompleted Status = "completed"
)

// PendingStatuses are the states an approval decision may act on.
var PendingStatuses = []Status{StatusRequested}

// CancelableStatuses are the states a cancellation may act on.
var CancelableStatuses = []Status{StatusRequested, StatusApproved, StatusRejected}

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Role     Role   `json:"role"`
}

// Case is a legal-aid case ("processo") record. Status is a free-form
// string carried over from legacy data, normalized only for display.
type Case struct {
	ID        int64     `json:"id"`
	Number    string    `json:"number"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Event is a scheduling request for a meeting or hearing.
type Event struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Location        string     `json:"location,omitempty"`
	StartAt         time.Time  `json:"startAt"`
	EndAt           time.Time  `json:"endAt"`
	Status          Status     `json:"status"`
	RequesterID     int64      `json:"requesterId"`
	ApproverID      *int64     `json:"approverId,omitempty"`
	CaseID          *int64     `json:"caseId,omitempty"`
	Observation     string     `json:"observation,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CancelReason    string     `json:"cancelReason,omitempty"`
	ExternalEventID string     `json:"externalEventId,omitempty"`
	RespondedAt     *time.Time `json:"respondedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Participant is an invitee of an Event, identified by email and
// optionally linked to a known user. Rows are cascade-deleted with the
// owning event.
type Participant struct {
	ID       int64  `json:"id"`
	EventID  int64  `json:"eventId"`
	Email    string `json:"email"`
	UserID   *int64 `json:"userId,omitempty"`
	Response string `json:"response"` // pending | confirmed | declined
}

// Attachment is file-upload bookkeeping for a case; the bytes themselves
// live elsewhere, only metadata is kept here (in Mongo).
type Attachment struct {
	ID          string    `json:"id" bson:"id"`
	CaseID      int64     `json:"caseId" bson:"case_id"`
	FileName    string    `json:"fileName" bson:"file_name"`
	ContentType string    `json:"contentType" bson:"content_type"`
	Size        int64     `json:"size" bson:"size"`
	UploadedBy  int64     `json:"uploadedBy" bson:"uploaded_by"`
	UploadedAt  time.Time `json:"uploadedAt" bson:"uploaded_at"`
}

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// ===== Users =====
type UserRepository interface {
	Create(u *User) error
	ValidateCredentials(email, plain string) (User, error)
	GetByID(id int64) (User, error)
	ListByRoles(roles ...Role) ([]User, error)
}

// ===== Cases =====
type CaseRepository interface {
	GetAll() ([]Case, error)
	GetByID(id int64) (Case, error)
	Create(cs *Case) error
	Update(cs *Case) error
	Exists(id int64) (bool, error)
}

// ===== Events =====
//
// The transition methods run a single conditional UPDATE guarded by the
// current status; they report ok=false when the row was not in an
// eligible state, which the caller surfaces as a conflict. Two
// concurrent approvals therefore cannot both win.
type EventRepository interface {
	Create(e *Event) error
	GetByID(id int64) (Event, error)
	ListAll() ([]Event, error)
	ListByRequester(userID int64) ([]Event, error)
	CountByStatus() (map[Status]int, error)

	Approve(id, approverID int64, observation string) (ok bool, err error)
	Reject(id, approverID int64, reason string) (ok bool, err error)
	Cancel(id int64, reason string) (ok bool, err error)
	Complete(id int64) (ok bool, err error)
	SetExternalEventID(id int64, externalID string) error
}

// ===== Participants =====
type ParticipantRepository interface {
	Add(p *Participant) error
	ListByEvent(eventID int64) ([]Participant, error)
	// SetResponse reports ok=false when no participant with that email is
	// invited to the event.
	SetResponse(eventID int64, email, response string) (ok bool, err error)
	CountResponses(eventID int64) (confirmed, declined int, err error)
}

// ===== Attachments =====
type AttachmentRepository interface {
	Create(a *Attachment) error
	GetByID(id string) (Attachment, error)
	ListByCase(caseID int64) ([]Attachment, error)
	Delete(id string) error
}

// ===== Notifications =====
type NotificationRepository interface {
	Create(n *Notification) error
	ListByUser(userID int64) ([]Notification, error)
	MarkRead(id, userID int64) error
}
