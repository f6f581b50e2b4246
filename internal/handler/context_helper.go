package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enlistment-api/internal/middleware"
	"github.com/noah-isme/enlistment-api/internal/models"
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

// actorFromContext returns the display name stamped on audit rows. Requests
// without claims fall back to the generic admin actor.
func actorFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil || claims.FullName == "" {
		return "Admin"
	}
	return claims.FullName
}
