package models

import "database/sql"

type sqlNotificationRepo struct{ db *sql.DB }

func NewSQLNotificationRepository(db *sql.DB) NotificationRepository {
	return &sqlNotificationRepo{db}
}

func (r *sqlNotificationRepo) Create(n *Notification) error {
	return r.db.QueryRow(
		`INSERT INTO notifications(user_id, kind, message) VALUES ($1,$2,$3)
		 RETURNING id, created_at`,
		n.UserID, n.Kind, n.Message,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *sqlNotificationRepo) ListByUser(userID int64) ([]Notification, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, kind, message, read, created_at
		 FROM notifications WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *sqlNotificationRepo) MarkRead(id, userID int64) error {
	_, err := r.db.Exec(
		`UPDATE notifications SET read = true WHERE id=$1 AND user_id=$2`, id, userID)
	return err
}
