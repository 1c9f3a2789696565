package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BasavaMaasti/StudyHub/internal/auth"
	"github.com/BasavaMaasti/StudyHub/internal/payment"
	"github.com/BasavaMaasti/StudyHub/internal/retry"
	"github.com/BasavaMaasti/StudyHub/pkg/model"
)

// Store interfaces are satisfied by *repository.Repository; tests substitute
// in-package fakes.

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListEnrolledCourseIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type CourseStore interface {
	GetCourseByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	ListLecturesByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Lecture, error)
}

type InterviewStore interface {
	CreateInterview(ctx context.Context, iv *model.Interview) error
	GetInterviewByID(ctx context.Context, id uuid.UUID) (*model.Interview, error)
	UpdateEvaluation(ctx context.Context, iv *model.Interview) error
	ListInterviewsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Interview, int, error)
}

type PurchaseStore interface {
	CreatePurchase(ctx context.Context, p *model.Purchase) error
	UpdatePaymentID(ctx context.Context, purchaseID uuid.UUID, paymentID string) error
	CompletePurchase(ctx context.Context, sessionID string, localRef uuid.UUID, amount float64) error
	GetCompletedPurchase(ctx context.Context, userID, courseID uuid.UUID) (*model.Purchase, error)
	ListCompletedByUser(ctx context.Context, userID uuid.UUID) ([]model.PurchaseWithCourse, error)
	ListAllCompleted(ctx context.Context) ([]model.PurchaseWithCourse, error)
}

type QuestionGenerator interface {
	Generate(ctx context.Context, role, techStack string, level model.ExperienceLevel) ([]model.InterviewQuestion, model.QuestionSource)
}

type AnswerEvaluator interface {
	Evaluate(ctx context.Context, iv *model.Interview, answers []string)
}

type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, p payment.CheckoutParams) (*payment.CheckoutSession, error)
}

type WebhookDedup interface {
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type Handler struct {
	Logger     *zap.Logger
	Users      UserStore
	Courses    CourseStore
	Interviews InterviewStore
	Purchases  PurchaseStore
	Questions  QuestionGenerator
	Evaluator  AnswerEvaluator
	Payments   CheckoutClient
	Dedup      WebhookDedup
	TokenMaker *auth.JWTMaker

	WebhookSecret   string
	FrontendURL     string
	Production      bool
	ReconcilePolicy retry.Policy
}

// DefaultReconcilePolicy bounds the webhook lookup retry: 5 attempts with a
// fixed 500ms delay.
func DefaultReconcilePolicy() retry.Policy {
	return retry.New(5, 500*time.Millisecond)
}

// GetClaimsFromContext retrieves the verified token claims set by the auth
// middleware.
func (h *Handler) GetClaimsFromContext(c *gin.Context) *auth.UserClaims {
	v, exists := c.Get("claims")
	if !exists {
		return nil
	}
	claims, ok := v.(*auth.UserClaims)
	if !ok {
		return nil
	}
	return claims
}
