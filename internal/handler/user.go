package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BasavaMaasti/StudyHub/internal/repository"
	"github.com/BasavaMaasti/StudyHub/pkg"
	"github.com/BasavaMaasti/StudyHub/pkg/model"
	"github.com/BasavaMaasti/StudyHub/pkg/response"
)

// Register creates a new student or instructor account.
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Logger.Sugar().Warnw("register bad request", "err", err)
		response.BadRequest(c, "All fields are required.")
		return
	}

	if !model.ValidSignupRole(req.Role) {
		response.BadRequest(c, "Invalid role. Choose 'student' or 'instructor'.")
		return
	}

	pwHash, err := pkg.HashPassword(req.Password)
	if err != nil {
		h.Logger.Sugar().Errorw("failed to hash password", "err", err)
		response.InternalError(c, "Failed to register", err, h.Production)
		return
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         req.Role,
	}

	if err := h.Users.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			response.BadRequest(c, "User already exists with this email.")
			return
		}
		h.Logger.Sugar().Errorw("user create failed", "email", req.Email, "err", err)
		response.InternalError(c, "Failed to register", err, h.Production)
		return
	}

	response.Created(c, model.UserRes{
		UserID: user.UserID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	})
}

// Login verifies credentials and returns a session token, both in the body
// and as an httpOnly cookie for browser clients.
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Logger.Sugar().Warnw("login bad request", "err", err)
		response.BadRequest(c, "All fields are required.")
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		h.Logger.Sugar().Warnw("login user not found", "email", req.Email, "err", err)
		response.BadRequest(c, "Incorrect email or password")
		return
	}
	if err := pkg.ComparePassword(user.PasswordHash, req.Password); err != nil {
		h.Logger.Sugar().Warnw("login password mismatch", "email", req.Email, "err", err)
		response.BadRequest(c, "Incorrect email or password")
		return
	}

	token, claims, err := h.TokenMaker.GenerateToken(user.UserID, user.Email, user.Role)
	if err != nil {
		h.Logger.Sugar().Errorw("error creating token", "err", err)
		response.InternalError(c, "Failed to login", err, h.Production)
		return
	}

	h.setTokenCookie(c, token, int(h.TokenMaker.TokenTTL().Seconds()))

	c.JSON(http.StatusOK, response.Envelope{
		Success: true,
		Message: fmt.Sprintf("Welcome back %s", user.Name),
		Data: model.LoginRes{
			User: model.UserRes{
				UserID: user.UserID,
				Name:   user.Name,
				Email:  user.Email,
				Role:   user.Role,
			},
			Token:     token,
			ExpiresAt: claims.ExpiresAt.Time,
		},
	})
}

// Logout clears the token cookie. There is no server-side session to revoke.
func (h *Handler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	response.Message(c, "Logged out successfully.")
}

// Profile returns the current user together with their enrolled course ids.
func (h *Handler) Profile(c *gin.Context) {
	claims := h.GetClaimsFromContext(c)
	if claims == nil {
		response.Unauthorized(c, "")
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		response.NotFound(c, "Profile not found")
		return
	}

	enrolled, err := h.Users.ListEnrolledCourseIDs(ctx, user.UserID)
	if err != nil {
		h.Logger.Sugar().Errorw("failed to list enrollments", "user_id", user.UserID, "err", err)
		response.InternalError(c, "Failed to load user", err, h.Production)
		return
	}

	response.OK(c, model.ProfileRes{
		User: model.UserRes{
			UserID: user.UserID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   user.Role,
		},
		EnrolledCourses: enrolled,
	})
}

func (h *Handler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("token", token, maxAge, "/", "", h.Production, true)
}
