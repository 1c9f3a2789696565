package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BasavaMaasti/StudyHub/internal/payment"
	"github.com/BasavaMaasti/StudyHub/internal/repository"
	"github.com/BasavaMaasti/StudyHub/pkg/model"
	"github.com/BasavaMaasti/StudyHub/pkg/response"
)

// CreateCheckoutSession starts a purchase: the pending record is persisted
// before the provider is contacted so the intent survives a failed session
// call, then the placeholder payment id is swapped for the session id.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	var req model.CreateCheckoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		response.NotFound(c, "Course not found!")
		return
	}

	ctx := c.Request.Context()
	course, err := h.Courses.GetCourseByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "Course not found!")
			return
		}
		h.Logger.Sugar().Errorw("course lookup failed", "course_id", courseID, "err", err)
		response.InternalError(c, "Internal server error during checkout", err, h.Production)
		return
	}
	if course.Price <= 0 {
		response.BadRequest(c, "Invalid course price")
		return
	}

	purchase := &model.Purchase{
		CourseID:  courseID,
		UserID:    claims.UserID,
		Amount:    course.Price,
		Status:    model.PurchaseStatusPending,
		PaymentID: fmt.Sprintf("temp_%d", time.Now().UnixMilli()),
	}
	if err := h.Purchases.CreatePurchase(ctx, purchase); err != nil {
		h.Logger.Sugar().Errorw("failed to create purchase", "err", err)
		response.InternalError(c, "Internal server error during checkout", err, h.Production)
		return
	}

	thumbnail := ""
	if course.Thumbnail != nil {
		thumbnail = *course.Thumbnail
	}
	session, err := h.Payments.CreateCheckoutSession(ctx, payment.CheckoutParams{
		Currency:    "inr",
		ProductName: course.Title,
		ImageURL:    thumbnail,
		UnitAmount:  int64(course.Price * 100),
		SuccessURL:  fmt.Sprintf("%s/course-progress/%s?payment=success", h.FrontendURL, courseID),
		CancelURL:   fmt.Sprintf("%s/course-detail/%s", h.FrontendURL, courseID),
		Metadata: map[string]string{
			"courseId":     courseID.String(),
			"userId":       claims.UserID.String(),
			"dbPurchaseId": purchase.PurchaseID.String(),
		},
	})
	if err != nil {
		h.Logger.Sugar().Errorw("checkout session failed", "purchase_id", purchase.PurchaseID, "err", err)
		response.InternalError(c, "Internal server error during checkout", err, h.Production)
		return
	}
	if session == nil || session.URL == "" {
		response.BadRequest(c, "Error while creating payment session")
		return
	}

	if err := h.Purchases.UpdatePaymentID(ctx, purchase.PurchaseID, session.ID); err != nil {
		// Reconciliation can still match on the metadata purchase id.
		h.Logger.Sugar().Errorw("failed to store session id", "purchase_id", purchase.PurchaseID, "err", err)
	}

	response.OK(c, model.CheckoutRes{URL: session.URL})
}

// Webhook handles provider callbacks. Signature verification failures and
// reconciliation failures return 400 so the provider retries; everything
// else is acknowledged with 200.
func (h *Handler) Webhook(c *gin.Context) {
	payloadBytes, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "could not read payload")
		return
	}

	event, err := payment.ConstructEvent(payloadBytes, c.GetHeader("Stripe-Signature"), h.WebhookSecret)
	if err != nil {
		h.Logger.Sugar().Warnw("webhook signature verification failed", "err", err)
		response.BadRequest(c, fmt.Sprintf("Webhook Error: %v", err))
		return
	}

	if event.Type == payment.EventCheckoutSessionCompleted {
		var session payment.CheckoutSession
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			response.BadRequest(c, "malformed session object")
			return
		}

		ctx := c.Request.Context()

		// A completed session is not proof of payment; the payment status
		// itself must say paid. Checked before the dedup mark so a session
		// that transitions to paid on a later delivery still reconciles.
		if session.PaymentStatus != "paid" {
			response.BadRequest(c, fmt.Sprintf("Payment status is %s", session.PaymentStatus))
			return
		}

		if h.Dedup != nil {
			seen, err := h.Dedup.MarkProcessed(ctx, event.ID)
			if err != nil {
				// Reconciliation is idempotent, so process anyway.
				h.Logger.Sugar().Warnw("webhook dedup unavailable", "err", err)
			} else if seen {
				h.Logger.Sugar().Infow("duplicate webhook event", "event_id", event.ID)
				c.Status(http.StatusOK)
				return
			}
		}

		// The session-id write in checkout may not have committed before the
		// provider calls back, so the lookup is retried for a short window.
		localRef, _ := uuid.Parse(session.Metadata["dbPurchaseId"])
		amount := float64(session.AmountTotal) / 100

		err := h.ReconcilePolicy.Do(ctx, func() (bool, error) {
			err := h.Purchases.CompletePurchase(ctx, session.ID, localRef, amount)
			return errors.Is(err, repository.ErrNotFound), err
		})
		if err != nil {
			// The 400 makes the provider redeliver; the dedup mark must not
			// swallow that redelivery.
			h.forgetEvent(ctx, event.ID)
			if errors.Is(err, repository.ErrNotFound) {
				h.Logger.Sugar().Errorw("purchase record not found", "session_id", session.ID)
				response.BadRequest(c, "Purchase record not found")
				return
			}
			h.Logger.Sugar().Errorw("reconciliation failed", "session_id", session.ID, "err", err)
			response.BadRequest(c, err.Error())
			return
		}

		h.Logger.Sugar().Infow("purchase processed", "session_id", session.ID)
	}

	c.Status(http.StatusOK)
}

func (h *Handler) forgetEvent(ctx context.Context, eventID string) {
	if h.Dedup == nil {
		return
	}
	if err := h.Dedup.Forget(ctx, eventID); err != nil {
		h.Logger.Sugar().Warnw("failed to clear webhook dedup mark", "event_id", eventID, "err", err)
	}
}

// MyPurchases lists the caller's completed purchases with course titles.
func (h *Handler) MyPurchases(c *gin.Context) {
	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	purchases, err := h.Purchases.ListCompletedByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.Logger.Sugar().Errorw("failed to list purchases", "err", err)
		response.InternalError(c, "Internal server error while fetching purchases", err, h.Production)
		return
	}

	response.OK(c, purchases)
}

// CourseDetailWithStatus returns a course, its lectures and whether the
// caller has a completed purchase of it.
func (h *Handler) CourseDetailWithStatus(c *gin.Context) {
	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.NotFound(c, "Course not found!")
		return
	}

	ctx := c.Request.Context()
	course, err := h.Courses.GetCourseByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "Course not found!")
			return
		}
		response.InternalError(c, "Internal server error while fetching course details", err, h.Production)
		return
	}

	lectures, err := h.Courses.ListLecturesByCourse(ctx, courseID)
	if err != nil {
		response.InternalError(c, "Internal server error while fetching course details", err, h.Production)
		return
	}

	var purchased *model.Purchased
	purchase, err := h.Purchases.GetCompletedPurchase(ctx, claims.UserID, courseID)
	if err == nil {
		purchased = &model.Purchased{Status: purchase.Status, PurchaseDate: purchase.CreatedAt}
	} else if !errors.Is(err, repository.ErrNotFound) {
		response.InternalError(c, "Internal server error while fetching course details", err, h.Production)
		return
	}

	response.OK(c, model.CourseDetailRes{Course: *course, Lectures: lectures, Purchased: purchased})
}

// AdminPurchases summarizes all completed purchases for the dashboard.
func (h *Handler) AdminPurchases(c *gin.Context) {
	purchases, err := h.Purchases.ListAllCompleted(c.Request.Context())
	if err != nil {
		h.Logger.Sugar().Errorw("failed to list all purchases", "err", err)
		response.InternalError(c, "Internal server error while fetching admin purchases", err, h.Production)
		return
	}

	var revenue float64
	for _, p := range purchases {
		revenue += p.Amount
	}

	response.OK(c, model.AdminPurchasesRes{
		TotalSales:   len(purchases),
		TotalRevenue: revenue,
		Purchases:    purchases,
	})
}
