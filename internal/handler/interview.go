package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BasavaMaasti/StudyHub/internal/repository"
	"github.com/BasavaMaasti/StudyHub/pkg/model"
	"github.com/BasavaMaasti/StudyHub/pkg/response"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

// CreateInterview generates a question set for the requested role and
// persists a new interview. Question generation never fails the request: the
// adapter falls back to the local bank on any generative-API error.
func (h *Handler) CreateInterview(c *gin.Context) {
	var req model.CreateInterviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.ValidationFailed(c, errs)
		return
	}

	claims := h.GetClaimsFromContext(c)
	if claims == nil || claims.UserID == uuid.Nil {
		response.Unauthorized(c, "Invalid user ID")
		return
	}

	ctx := c.Request.Context()
	questions, source := h.Questions.Generate(ctx, req.Role, req.TechStack, req.ExperienceLevel)

	iv := &model.Interview{
		UserID:          claims.UserID,
		Role:            strings.TrimSpace(req.Role),
		TechStack:       strings.TrimSpace(req.TechStack),
		ExperienceLevel: req.ExperienceLevel,
		Questions:       questions,
		Status:          model.InterviewStatusCreated,
		Source:          source,
		DurationMinutes: 30,
	}

	if err := h.Interviews.CreateInterview(ctx, iv); err != nil {
		h.Logger.Sugar().Errorw("failed to create interview", "err", err)
		response.InternalError(c, "Interview creation failed", err, h.Production)
		return
	}

	response.Created(c, iv)
}

// ListInterviews returns one page of the caller's interviews, newest first.
func (h *Handler) ListInterviews(c *gin.Context) {
	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	interviews, total, err := h.Interviews.ListInterviewsByUser(c.Request.Context(), claims.UserID, limit, (page-1)*limit)
	if err != nil {
		h.Logger.Sugar().Errorw("failed to list interviews", "err", err)
		response.InternalError(c, "Failed to fetch interviews", err, h.Production)
		return
	}

	pages := (total + limit - 1) / limit
	response.OK(c, model.ListInterviewsRes{
		Interviews: interviews,
		Total:      total,
		Page:       page,
		Pages:      pages,
		Limit:      limit,
	})
}

// EvaluateInterview scores the submitted answers and completes the
// interview. Per-answer evaluation failures degrade to sentinel feedback;
// the only hard failures are a bad request shape or an unknown interview.
func (h *Handler) EvaluateInterview(c *gin.Context) {
	var req model.EvaluateInterviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.InterviewID == "" || req.Answers == nil {
		response.BadRequest(c, "Interview ID and answers array are required")
		return
	}

	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	interviewID, err := uuid.Parse(req.InterviewID)
	if err != nil {
		response.NotFound(c, "Interview not found")
		return
	}

	ctx := c.Request.Context()
	iv, err := h.Interviews.GetInterviewByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "Interview not found")
			return
		}
		h.Logger.Sugar().Errorw("failed to load interview", "interview_id", interviewID, "err", err)
		response.InternalError(c, "Failed to evaluate interview", err, h.Production)
		return
	}
	if iv.UserID != claims.UserID {
		response.NotFound(c, "Interview not found")
		return
	}

	h.Evaluator.Evaluate(ctx, iv, req.Answers)

	if err := h.Interviews.UpdateEvaluation(ctx, iv); err != nil {
		h.Logger.Sugar().Errorw("failed to save evaluation", "interview_id", interviewID, "err", err)
		response.InternalError(c, "Failed to evaluate interview", err, h.Production)
		return
	}

	response.OK(c, iv)
}
