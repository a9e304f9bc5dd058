package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/logger"
	"github.com/richxcame/seatshare/pkg/models"
	"go.uber.org/zap"
)

const principalKey = "principal"

// PrincipalResolver loads the current state of an account
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID uuid.UUID) (*models.Principal, error)
}

// ResolvePrincipal loads the caller's principal after AuthMiddleware has run.
// Role and ban state come from the database, not from the token, so bans and
// verifications take effect immediately.
func ResolvePrincipal(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserID(c)
		if err != nil {
			common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}

		principal, err := resolver.ResolvePrincipal(c.Request.Context(), userID)
		if err != nil {
			if appErr, ok := common.AsAppError(err); ok {
				common.AppErrorResponse(c, appErr)
			} else {
				logger.WithContext(c.Request.Context()).Error("failed to resolve principal", zap.Error(err))
				common.ErrorResponse(c, http.StatusInternalServerError, "failed to load account")
			}
			c.Abort()
			return
		}

		c.Set(principalKey, *principal)
		c.Set(userRoleKey, principal.Role)
		c.Next()
	}
}

// GetPrincipal returns the principal stored by ResolvePrincipal
func GetPrincipal(c *gin.Context) (models.Principal, error) {
	v, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, errors.New("principal not found in context")
	}
	p, ok := v.(models.Principal)
	if !ok {
		return models.Principal{}, errors.New("principal has unexpected type")
	}
	return p, nil
}

// SetPrincipal stores p on the context; handler tests use it to skip token parsing
func SetPrincipal(c *gin.Context, p models.Principal) {
	c.Set(userIDKey, p.UserID)
	c.Set(userRoleKey, p.Role)
	c.Set(principalKey, p)
}
