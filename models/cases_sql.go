package models

import "database/sql"

type sqlCaseRepo struct{ db *sql.DB }

func NewSQLCaseRepository(db *sql.DB) CaseRepository { return &sqlCaseRepo{db} }

func (r *sqlCaseRepo) GetAll() ([]Case, error) {
	rows, err := r.db.Query(
		`SELECT id, number, title, status, created_at, updated_at FROM cases ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Case
	for rows.Next() {
		var cs Case
		if err := rows.Scan(&cs.ID, &cs.Number, &cs.Title, &cs.Status, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func (r *sqlCaseRepo) GetByID(id int64) (Case, error) {
	var cs Case
	err := r.db.QueryRow(
		`SELECT id, number, title, status, created_at, updated_at FROM cases WHERE id=$1`, id,
	).Scan(&cs.ID, &cs.Number, &cs.Title, &cs.Status, &cs.CreatedAt, &cs.UpdatedAt)
	if err != nil {
		return Case{}, err
	}
	return cs, nil
}

func (r *sqlCaseRepo) Create(cs *Case) error {
	return r.db.QueryRow(
		`INSERT INTO cases(number, title, status) VALUES ($1,$2,$3)
		 RETURNING id, created_at, updated_at`,
		cs.Number, cs.Title, cs.Status,
	).Scan(&cs.ID, &cs.CreatedAt, &cs.UpdatedAt)
}

func (r *sqlCaseRepo) Update(cs *Case) error {
	_, err := r.db.Exec(
		`UPDATE cases SET number=$1, title=$2, status=$3, updated_at=now() WHERE id=$4`,
		cs.Number, cs.Title, cs.Status, cs.ID)
	return err
}

func (r *sqlCaseRepo) Exists(id int64) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM cases WHERE id=$1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
