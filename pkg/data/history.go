package data

import (
	"database/sql"
	"fmt"
	"time"
)

const (
	HistoryLimitDefault = 50

	insertEvaluationSQL = `INSERT INTO evaluation 
		(evaluated_at, source, score, percent, tier, length_bucket, expired) 
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	selectEvaluationsSQL = `SELECT id, evaluated_at, source, score, percent, tier, length_bucket, expired 
		FROM evaluation 
		ORDER BY evaluated_at DESC, id DESC 
		LIMIT ?
	`

	deleteEvaluationsSQL = `DELETE FROM evaluation`

	summarizeEvaluationsSQL = `SELECT tier, COUNT(*) FROM evaluation GROUP BY tier`
)

// Evaluation is a recorded strength check. It intentionally carries no
// password material.
type Evaluation struct {
	ID           int64     `json:"id" yaml:"id"`
	EvaluatedAt  time.Time `json:"evaluated_at" yaml:"evaluated_at"`
	Source       string    `json:"source" yaml:"source"`
	Score        int       `json:"score" yaml:"score"`
	Percent      int       `json:"percent" yaml:"percent"`
	Tier         string    `json:"tier" yaml:"tier"`
	LengthBucket string    `json:"length_bucket" yaml:"length_bucket"`
	Expired      bool      `json:"expired" yaml:"expired"`
}

// LengthBucket coarsens a password length so it cannot be used to narrow
// down the password.
func LengthBucket(n int) string {
	switch {
	case n < 8:
		return "<8"
	case n < 12:
		return "8-11"
	case n < 16:
		return "12-15"
	default:
		return "16+"
	}
}

// SaveEvaluation records a single evaluation.
func SaveEvaluation(db *sql.DB, e *Evaluation) error {
	if db == nil {
		return ErrDBNotInitialized
	}
	if e == nil {
		return nil
	}

	if e.EvaluatedAt.IsZero() {
		e.EvaluatedAt = time.Now().UTC()
	}

	stmt, err := db.Prepare(insertEvaluationSQL)
	if err != nil {
		return fmt.Errorf("preparing evaluation insert statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(e.EvaluatedAt.Unix(), e.Source, e.Score, e.Percent, e.Tier, e.LengthBucket, e.Expired)
	if err != nil {
		return fmt.Errorf("inserting evaluation: %w", err)
	}

	if e.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("getting evaluation id: %w", err)
	}
	return nil
}

// ListEvaluations returns the most recent evaluations first.
func ListEvaluations(db *sql.DB, limit int) ([]*Evaluation, error) {
	if db == nil {
		return nil, ErrDBNotInitialized
	}
	if limit <= 0 {
		limit = HistoryLimitDefault
	}

	stmt, err := db.Prepare(selectEvaluationsSQL)
	if err != nil {
		return nil, fmt.Errorf("preparing evaluation select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query(limit)
	if err != nil {
		return nil, fmt.Errorf("querying evaluations: %w", err)
	}
	defer rows.Close()

	list := make([]*Evaluation, 0)
	for rows.Next() {
		var (
			e  Evaluation
			ts int64
		)
		if err := rows.Scan(&e.ID, &ts, &e.Source, &e.Score, &e.Percent, &e.Tier, &e.LengthBucket, &e.Expired); err != nil {
			return nil, fmt.Errorf("scanning evaluation row: %w", err)
		}
		e.EvaluatedAt = time.Unix(ts, 0).UTC()
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating evaluation rows: %w", err)
	}

	return list, nil
}

// SummarizeEvaluations returns the number of recorded evaluations per tier.
func SummarizeEvaluations(db *sql.DB) (map[string]int64, error) {
	if db == nil {
		return nil, ErrDBNotInitialized
	}

	rows, err := db.Query(summarizeEvaluationsSQL)
	if err != nil {
		return nil, fmt.Errorf("summarizing evaluations: %w", err)
	}
	defer rows.Close()

	summary := make(map[string]int64)
	for rows.Next() {
		var (
			tier  string
			count int64
		)
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		summary[tier] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary rows: %w", err)
	}

	return summary, nil
}

// ClearEvaluations deletes all recorded evaluations.
func ClearEvaluations(db *sql.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNotInitialized
	}

	res, err := db.Exec(deleteEvaluationsSQL)
	if err != nil {
		return 0, fmt.Errorf("deleting evaluations: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return n, nil
}
