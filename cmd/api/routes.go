package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BasavaMaasti/StudyHub/pkg/model"
)

func (app *application) routes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	// simple logger middleware that uses zap
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		app.Logger.Sugar().Infow("http", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "duration", time.Since(start))
	})

	// CORS Middleware
	origins := app.Config.GetCORSOrigins()
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		for _, trusted := range origins {
			if origin == trusted {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.GET("/healthz", app.Handler.Healthz)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/user/register", app.Handler.Register)
		v1.POST("/user/login", app.Handler.Login)
		v1.GET("/user/logout", app.Handler.Logout)

		// The provider authenticates with a signature, not a token.
		v1.POST("/purchase/webhook", app.Handler.Webhook)
	}

	protected := v1.Group("/")
	protected.Use(app.AuthMiddleware())
	{
		protected.GET("/user/profile", app.Handler.Profile)

		protected.POST("/aiinterview", app.RequireRoles(model.UserRoleStudent), app.Handler.CreateInterview)
		protected.GET("/aiinterview", app.Handler.ListInterviews)
		protected.POST("/aiinterview/evaluate", app.RequireRoles(model.UserRoleStudent), app.Handler.EvaluateInterview)

		protected.POST("/purchase/checkout/create-checkout-session", app.Handler.CreateCheckoutSession)
		protected.GET("/purchase", app.Handler.MyPurchases)
		protected.GET("/purchase/course/:courseId/detail-with-status", app.Handler.CourseDetailWithStatus)
		protected.GET("/purchase/admin/all-purchased-courses",
			app.RequireRoles(model.UserRoleAdmin, model.UserRoleInstructor), app.Handler.AdminPurchases)
	}

	return r
}

// tokenFromRequest pulls the session token from the cookie or the
// Authorization header.
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	fields := strings.Fields(authHeader)
	if len(fields) != 2 || fields[0] != "Bearer" {
		return ""
	}
	return fields[1]
}
