package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BasavaMaasti/StudyHub/pkg/model"
)

// AuthMiddleware verifies the session token and attaches the claims and
// resolved user role to the request context.
func (app *application) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization token is required"})
			return
		}

		claims, err := app.Handler.TokenMaker.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
			return
		}

		// Check the user still exists; the role stored on the record wins
		// over the one baked into the token.
		user, err := app.Repository.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized access"})
			return
		}
		claims.Role = user.Role

		c.Set("claims", claims)
		c.Next()
	}
}

// RequireRoles gates a route to the given roles. Runs after AuthMiddleware.
func (app *application) RequireRoles(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := app.Handler.GetClaimsFromContext(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "You don't have permission to perform this action"})
	}
}
