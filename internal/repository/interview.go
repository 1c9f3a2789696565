package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BasavaMaasti/StudyHub/pkg/model"
)

// CreateInterview persists a new interview atomically, assigning its id.
// Callers validate fields first; the ≥1 question invariant is enforced here
// as a last line of defence.
func (r *Repository) CreateInterview(ctx context.Context, iv *model.Interview) error {
	if len(iv.Questions) == 0 {
		return fmt.Errorf("interview must contain at least one question")
	}

	iv.InterviewID = uuid.New()
	qb, err := json.Marshal(iv.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	return r.execTx(ctx, func(tx pgx.Tx) error {
		const q = `
INSERT INTO interviews (
	interview_id, user_id, role, tech_stack, experience_level,
	questions, overall_feedback, status, source, duration_minutes, created_at
) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, now())
RETURNING created_at
`
		row := tx.QueryRow(ctx, q,
			iv.InterviewID, iv.UserID, iv.Role, iv.TechStack, iv.ExperienceLevel,
			qb, iv.OverallFeedback, iv.Status, iv.Source, iv.DurationMinutes,
		)
		if err := row.Scan(&iv.CreatedAt); err != nil {
			return fmt.Errorf("insert interview: %w", err)
		}
		return nil
	})
}

func (r *Repository) GetInterviewByID(ctx context.Context, id uuid.UUID) (*model.Interview, error) {
	const q = `
SELECT interview_id, user_id, role, tech_stack, experience_level,
	questions, overall_feedback, status, source, duration_minutes, created_at, completed_at
FROM interviews
WHERE interview_id = $1
`
	row := r.db.QueryRow(ctx, q, id)
	iv, err := scanInterview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return iv, nil
}

// UpdateEvaluation writes evaluation results (questions, overall feedback,
// status, completion time) in one transaction.
func (r *Repository) UpdateEvaluation(ctx context.Context, iv *model.Interview) error {
	qb, err := json.Marshal(iv.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	return r.execTx(ctx, func(tx pgx.Tx) error {
		const q = `
UPDATE interviews
SET questions = $1::jsonb, overall_feedback = $2, status = $3, completed_at = $4
WHERE interview_id = $5
`
		tag, err := tx.Exec(ctx, q, qb, iv.OverallFeedback, iv.Status, iv.CompletedAt, iv.InterviewID)
		if err != nil {
			return fmt.Errorf("update interview: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListInterviewsByUser returns one page of the user's interviews, newest
// first, along with the total count.
func (r *Repository) ListInterviewsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Interview, int, error) {
	var total int
	const countQ = `SELECT COUNT(1) FROM interviews WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, countQ, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count interviews: %w", err)
	}

	const q = `
SELECT interview_id, user_id, role, tech_stack, experience_level,
	questions, overall_feedback, status, source, duration_minutes, created_at, completed_at
FROM interviews
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`
	rows, err := r.db.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query interviews: %w", err)
	}
	defer rows.Close()

	out := make([]model.Interview, 0, limit)
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *iv)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, total, nil
}

func scanInterview(row pgx.Row) (*model.Interview, error) {
	var iv model.Interview
	var questionBytes []byte
	err := row.Scan(
		&iv.InterviewID, &iv.UserID, &iv.Role, &iv.TechStack, &iv.ExperienceLevel,
		&questionBytes, &iv.OverallFeedback, &iv.Status, &iv.Source, &iv.DurationMinutes,
		&iv.CreatedAt, &iv.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(questionBytes) > 0 {
		if err := json.Unmarshal(questionBytes, &iv.Questions); err != nil {
			return nil, fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	return &iv, nil
}
