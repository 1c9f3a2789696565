package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BasavaMaasti/StudyHub/pkg/model"
)

// CreatePurchase inserts a pending purchase, assigning its id. The record is
// written before the provider is contacted so the intent is durable even if
// the session call fails.
func (r *Repository) CreatePurchase(ctx context.Context, p *model.Purchase) error {
	p.PurchaseID = uuid.New()
	const q = `
INSERT INTO purchases (purchase_id, course_id, user_id, amount, status, payment_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
`
	_, err := r.db.Exec(ctx, q, p.PurchaseID, p.CourseID, p.UserID, p.Amount, p.Status, p.PaymentID)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// UpdatePaymentID overwrites the placeholder payment id with the provider's
// session id.
func (r *Repository) UpdatePaymentID(ctx context.Context, purchaseID uuid.UUID, paymentID string) error {
	const q = `UPDATE purchases SET payment_id = $1, updated_at = now() WHERE purchase_id = $2`
	tag, err := r.db.Exec(ctx, q, paymentID, purchaseID)
	if err != nil {
		return fmt.Errorf("update payment id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CompletePurchase reconciles a provider-confirmed payment in a single
// transaction: the purchase is located by provider session id or by the
// correlated local id, marked completed with the provider amount, the
// course's lecture previews are unlocked, and the enrollment is recorded.
// The enrollment insert has set semantics, so a redelivered event converges
// to the same state. Returns ErrNotFound when no matching purchase exists
// yet; callers retry on that.
func (r *Repository) CompletePurchase(ctx context.Context, sessionID string, localRef uuid.UUID, amount float64) error {
	return r.execTx(ctx, func(tx pgx.Tx) error {
		const findQ = `
SELECT purchase_id, course_id, user_id
FROM purchases
WHERE payment_id = $1 OR purchase_id = $2
FOR UPDATE
`
		var purchaseID, courseID, userID uuid.UUID
		row := tx.QueryRow(ctx, findQ, sessionID, localRef)
		if err := row.Scan(&purchaseID, &courseID, &userID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("find purchase: %w", err)
		}

		const updateQ = `
UPDATE purchases
SET status = $1, amount = $2, payment_id = $3, updated_at = now()
WHERE purchase_id = $4
`
		if _, err := tx.Exec(ctx, updateQ, model.PurchaseStatusCompleted, amount, sessionID, purchaseID); err != nil {
			return fmt.Errorf("complete purchase: %w", err)
		}

		const unlockQ = `UPDATE lectures SET is_preview_free = true WHERE course_id = $1`
		if _, err := tx.Exec(ctx, unlockQ, courseID); err != nil {
			return fmt.Errorf("unlock lectures: %w", err)
		}

		const enrollQ = `
INSERT INTO enrollments (user_id, course_id, enrolled_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id, course_id) DO NOTHING
`
		if _, err := tx.Exec(ctx, enrollQ, userID, courseID); err != nil {
			return fmt.Errorf("enroll user: %w", err)
		}

		return nil
	})
}

// GetCompletedPurchase returns the user's completed purchase of a course, if
// any.
func (r *Repository) GetCompletedPurchase(ctx context.Context, userID, courseID uuid.UUID) (*model.Purchase, error) {
	const q = `
SELECT purchase_id, course_id, user_id, amount, status, payment_id, created_at, updated_at
FROM purchases
WHERE user_id = $1 AND course_id = $2 AND status = $3
ORDER BY created_at DESC
LIMIT 1
`
	var p model.Purchase
	row := r.db.QueryRow(ctx, q, userID, courseID, model.PurchaseStatusCompleted)
	if err := row.Scan(&p.PurchaseID, &p.CourseID, &p.UserID, &p.Amount, &p.Status, &p.PaymentID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan purchase: %w", err)
	}
	return &p, nil
}

// ListCompletedByUser returns the user's completed purchases with course
// titles joined in.
func (r *Repository) ListCompletedByUser(ctx context.Context, userID uuid.UUID) ([]model.PurchaseWithCourse, error) {
	const q = `
SELECT p.purchase_id, p.course_id, p.user_id, p.amount, p.status, p.payment_id,
	p.created_at, p.updated_at, c.title
FROM purchases p
JOIN courses c ON p.course_id = c.course_id
WHERE p.user_id = $1 AND p.status = $2
ORDER BY p.created_at DESC
`
	rows, err := r.db.Query(ctx, q, userID, model.PurchaseStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	out := make([]model.PurchaseWithCourse, 0, 8)
	for rows.Next() {
		var p model.PurchaseWithCourse
		if err := rows.Scan(&p.PurchaseID, &p.CourseID, &p.UserID, &p.Amount, &p.Status, &p.PaymentID, &p.CreatedAt, &p.UpdatedAt, &p.CourseTitle); err != nil {
			return nil, fmt.Errorf("scan purchase row: %w", err)
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, nil
}

// ListAllCompleted returns every completed purchase with course and buyer
// joined, for the admin summary.
func (r *Repository) ListAllCompleted(ctx context.Context) ([]model.PurchaseWithCourse, error) {
	const q = `
SELECT p.purchase_id, p.course_id, p.user_id, p.amount, p.status, p.payment_id,
	p.created_at, p.updated_at, c.title, u.name, u.email
FROM purchases p
JOIN courses c ON p.course_id = c.course_id
JOIN users u ON p.user_id = u.user_id
WHERE p.status = $1
ORDER BY p.created_at DESC
`
	rows, err := r.db.Query(ctx, q, model.PurchaseStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	out := make([]model.PurchaseWithCourse, 0, 16)
	for rows.Next() {
		var p model.PurchaseWithCourse
		if err := rows.Scan(&p.PurchaseID, &p.CourseID, &p.UserID, &p.Amount, &p.Status, &p.PaymentID, &p.CreatedAt, &p.UpdatedAt, &p.CourseTitle, &p.UserName, &p.UserEmail); err != nil {
			return nil, fmt.Errorf("scan purchase row: %w", err)
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, nil
}
