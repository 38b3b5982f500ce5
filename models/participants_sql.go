package models

import "database/sql"

type sqlParticipantRepo struct{ db *sql.DB }

func NewSQLParticipantRepository(db *sql.DB) ParticipantRepository {
	return &sqlParticipantRepo{db}
}

func (r *sqlParticipantRepo) Add(p *Participant) error {
	if p.Response == "" {
		p.Response = "pending"
	}
	// UNIQUE(event_id, email) keeps duplicate invites out.
	return r.db.QueryRow(
		`INSERT INTO participants(event_id, email, user_id, response) VALUES ($1,$2,$3,$4) RETURNING id`,
		p.EventID, p.Email, p.UserID, p.Response,
	).Scan(&p.ID)
}

func (r *sqlParticipantRepo) ListByEvent(eventID int64) ([]Participant, error) {
	rows, err := r.db.Query(
		`SELECT id, event_id, email, user_id, response FROM participants WHERE event_id=$1 ORDER BY id`,
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Participant
	for rows.Next() {
		var p Participant
		var userID sql.NullInt64
		if err := rows.Scan(&p.ID, &p.EventID, &p.Email, &userID, &p.Response); err != nil {
			return nil, err
		}
		if userID.Valid {
			p.UserID = &userID.Int64
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *sqlParticipantRepo) SetResponse(eventID int64, email, response string) (bool, error) {
	res, err := r.db.Exec(
		`UPDATE participants SET response=$1 WHERE event_id=$2 AND email=$3`,
		response, eventID, email)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *sqlParticipantRepo) CountResponses(eventID int64) (confirmed, declined int, err error) {
	err = r.db.QueryRow(
		`SELECT
			COUNT(*) FILTER (WHERE response = 'confirmed'),
			COUNT(*) FILTER (WHERE response = 'declined')
		 FROM participants WHERE event_id=$1`, eventID,
	).Scan(&confirmed, &declined)
	return confirmed, declined, err
}
