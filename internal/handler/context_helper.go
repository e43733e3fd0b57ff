package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/content-review-api/internal/middleware"
	"github.com/noah-isme/content-review-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorID is the authenticated member's ID, or "" for anonymous requests.
func actorID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// actorFromClaims builds a member from token claims for checks that only need the role.
func actorFromClaims(c *gin.Context) *models.User {
	return claimsFromContext(c).Actor()
}
