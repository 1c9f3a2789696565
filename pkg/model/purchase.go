package model

import (
	"time"

	"github.com/google/uuid"
)

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
)

// Purchase is a course purchase. PaymentID starts as a locally generated
// placeholder and is overwritten with the provider session id once the
// checkout session exists; reconciliation matches on either key.
type Purchase struct {
	PurchaseID uuid.UUID      `json:"purchase_id" db:"purchase_id"`
	CourseID   uuid.UUID      `json:"course_id" db:"course_id"`
	UserID     uuid.UUID      `json:"user_id" db:"user_id"`
	Amount     float64        `json:"amount" db:"amount"`
	Status     PurchaseStatus `json:"status" db:"status"`
	PaymentID  string         `json:"payment_id" db:"payment_id"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

type CreateCheckoutReq struct {
	CourseID string `json:"courseId" binding:"required"`
}

type CheckoutRes struct {
	URL string `json:"url"`
}

type PurchaseWithCourse struct {
	Purchase
	CourseTitle string  `json:"course_title"`
	UserName    *string `json:"user_name,omitempty"`
	UserEmail   *string `json:"user_email,omitempty"`
}

type AdminPurchasesRes struct {
	TotalSales   int                  `json:"total_sales"`
	TotalRevenue float64              `json:"total_revenue"`
	Purchases    []PurchaseWithCourse `json:"purchases"`
}
