package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-seating-api/internal/middleware"
	"github.com/noah-isme/exam-seating-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

func actorFromContext(c *gin.Context) (string, models.UserRole) {
	claims := claimsFromContext(c)
	if claims == nil {
		return "", ""
	}
	return claims.FacultyID, claims.Role
}
