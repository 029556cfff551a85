package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AssessmentRecord is one stored assessment; Payload holds the encoded domain aggregate.
type AssessmentRecord struct {
	ID        string
	UserID    int64
	BrokerRef string
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

func (r *AssessmentRepository) Create(ctx context.Context, rec AssessmentRecord) error {
	const query = `
		INSERT INTO affordability_assessments (id, user_id, broker_ref, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.BrokerRef, string(rec.Payload), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assessment %s: %w", rec.ID, err)
	}
	return nil
}

func (r *AssessmentRepository) Update(ctx context.Context, rec AssessmentRecord) error {
	const query = `
		UPDATE affordability_assessments
		SET broker_ref = $1, payload = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`
	res, err := r.db.ExecContext(ctx, query,
		rec.BrokerRef, string(rec.Payload), rec.UpdatedAt, rec.ID, rec.UserID,
	)
	if err != nil {
		return fmt.Errorf("update assessment %s: %w", rec.ID, err)
	}
	return expectOne(res)
}

func (r *AssessmentRepository) Get(ctx context.Context, userID int64, id string) (*AssessmentRecord, error) {
	const query = `
		SELECT id, user_id, broker_ref, payload, created_at, updated_at
		FROM affordability_assessments
		WHERE id = $1 AND user_id = $2
	`
	var rec AssessmentRecord
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.BrokerRef,
		&rec.Payload,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select assessment %s: %w", id, err)
	}
	return &rec, nil
}

// List returns the user's assessments without payloads, most recently edited first.
func (r *AssessmentRepository) List(ctx context.Context, userID int64) ([]AssessmentRecord, error) {
	const query = `
		SELECT id, user_id, broker_ref, created_at, updated_at
		FROM affordability_assessments
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []AssessmentRecord
	for rows.Next() {
		var rec AssessmentRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.BrokerRef, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	return out, nil
}

func (r *AssessmentRepository) Delete(ctx context.Context, userID int64, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM affordability_assessments WHERE id = $1 AND user_id = $2`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete assessment %s: %w", id, err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
