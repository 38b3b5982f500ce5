package models

import (
	"database/sql"
	"strconv"

	"github.com/lib/pq"
)

type sqlEventRepo struct{ db *sql.DB }

func NewSQLEventRepository(db *sql.DB) EventRepository { return &sqlEventRepo{db} }

const eventColumns = `id, title, description, location, start_at, end_at, status,
	requester_id, approver_id, case_id, observation, rejection_reason,
	cancel_reason, external_event_id, responded_at, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (Event, error) {
	var (
		e           Event
		description sql.NullString
		location    sql.NullString
		observation sql.NullString
		rejection   sql.NullString
		cancel      sql.NullString
		external    sql.NullString
		approverID  sql.NullInt64
		caseID      sql.NullInt64
		respondedAt sql.NullTime
	)
	err := row.Scan(&e.ID, &e.Title, &description, &location, &e.StartAt, &e.EndAt,
		&e.Status, &e.RequesterID, &approverID, &caseID, &observation, &rejection,
		&cancel, &external, &respondedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Event{}, err
	}
	e.Description = description.String
	e.Location = location.String
	e.Observation = observation.String
	e.RejectionReason = rejection.String
	e.CancelReason = cancel.String
	e.ExternalEventID = external.String
	if approverID.Valid {
		e.ApproverID = &approverID.Int64
	}
	if caseID.Valid {
		e.CaseID = &caseID.Int64
	}
	if respondedAt.Valid {
		t := respondedAt.Time
		e.RespondedAt = &t
	}
	return e, nil
}

func (r *sqlEventRepo) Create(e *Event) error {
	e.Status = StatusRequested
	return r.db.QueryRow(
		`INSERT INTO events(title, description, location, start_at, end_at, status, requester_id, case_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.Description, e.Location, e.StartAt, e.EndAt, e.Status, e.RequesterID, e.CaseID,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *sqlEventRepo) GetByID(id int64) (Event, error) {
	return scanEvent(r.db.QueryRow(
		`SELECT `+eventColumns+` FROM events WHERE id=$1`, id))
}

func (r *sqlEventRepo) listQuery(query string, args ...any) ([]Event, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *sqlEventRepo) ListAll() ([]Event, error) {
	return r.listQuery(`SELECT ` + eventColumns + ` FROM events ORDER BY start_at`)
}

func (r *sqlEventRepo) ListByRequester(userID int64) ([]Event, error) {
	return r.listQuery(
		`SELECT `+eventColumns+` FROM events WHERE requester_id=$1 ORDER BY start_at`, userID)
}

func (r *sqlEventRepo) CountByStatus() (map[Status]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM events GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Status]int)
	for rows.Next() {
		var s Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

// transition runs a conditional status update; the WHERE status = ANY(from)
// guard is what makes concurrent decisions on the same row safe: only one
// UPDATE sees an eligible row, the other affects zero rows.
func (r *sqlEventRepo) transition(id int64, from []Status, set string, args ...any) (bool, error) {
	names := make([]string, len(from))
	for i, s := range from {
		names[i] = string(s)
	}
	args = append(args, id, pq.Array(names))
	n := len(args)
	res, err := r.db.Exec(
		`UPDATE events SET `+set+`, updated_at = now()
		 WHERE id = $`+strconv.Itoa(n-1)+` AND status = ANY($`+strconv.Itoa(n)+`)`, args...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *sqlEventRepo) Approve(id, approverID int64, observation string) (bool, error) {
	return r.transition(id, PendingStatuses,
		`status='approved', approver_id=$1, observation=$2, responded_at=now()`,
		approverID, observation)
}

func (r *sqlEventRepo) Reject(id, approverID int64, reason string) (bool, error) {
	return r.transition(id, PendingStatuses,
		`status='rejected', approver_id=$1, rejection_reason=$2, responded_at=now()`,
		approverID, reason)
}

func (r *sqlEventRepo) Cancel(id int64, reason string) (bool, error) {
	return r.transition(id, CancelableStatuses,
		`status='canceled', cancel_reason=$1`, reason)
}

func (r *sqlEventRepo) Complete(id int64) (bool, error) {
	return r.transition(id, []Status{StatusApproved}, `status='completed'`)
}

func (r *sqlEventRepo) SetExternalEventID(id int64, externalID string) error {
	_, err := r.db.Exec(
		`UPDATE events SET external_event_id=$1, updated_at=now() WHERE id=$2`,
		externalID, id)
	return err
}
