package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/logistik-admin-api/internal/middleware"
	"github.com/noah-isme/logistik-admin-api/internal/models"
	appErrors "github.com/noah-isme/logistik-admin-api/pkg/errors"
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

func intParam(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" tidak valid")
	}
	return id, nil
}

func actorFromContext(c *gin.Context) (models.UserInfo, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.UserInfo{}, false
	}
	return models.UserInfo{ID: claims.UserID, Username: claims.Username, Name: claims.Name, Role: claims.Role}, true
}
