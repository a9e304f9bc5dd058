package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/jwtkeys"
	"github.com/richxcame/seatshare/pkg/models"
)

const (
	userIDKey   = "user_id"
	userRoleKey = "user_role"
)

// Claims is the JWT payload issued at login
type Claims struct {
	UserID uuid.UUID   `json:"user_id"`
	Phone  string      `json:"phone"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for user valid for ttl
func GenerateToken(provider jwtkeys.KeyProvider, user *models.User, ttl time.Duration) (string, error) {
	kid, secret, err := provider.SigningKey()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Phone:  user.Phone,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	return token.SignedString(secret)
}

// ParseToken validates tokenString and returns its claims
func ParseToken(provider jwtkeys.KeyProvider, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			if key := provider.LegacyKey(); len(key) > 0 {
				return key, nil
			}
		}
		return provider.ResolveKey(kid)
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.New("token has no user id")
	}
	return claims, nil
}

// AuthMiddleware validates bearer tokens signed with secret
func AuthMiddleware(secret string) gin.HandlerFunc {
	return AuthMiddlewareWithProvider(jwtkeys.NewStaticProvider(secret))
}

// AuthMiddlewareWithProvider validates bearer tokens and stores the caller's id and role
func AuthMiddlewareWithProvider(provider jwtkeys.KeyProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "authorization header required")
			c.Abort()
			return
		}

		claims, err := ParseToken(provider, tokenString)
		if err != nil {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole allows only callers whose token role is one of roles
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRole(c)
		if err != nil {
			common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		common.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
		c.Abort()
	}
}

// RequireAdmin allows only administrators
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// GetUserID returns the authenticated user's id
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, errors.New("user id not found in context")
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("user id has unexpected type %T", v)
	}
	return id, nil
}

// GetUserRole returns the authenticated user's token role
func GetUserRole(c *gin.Context) (models.Role, error) {
	v, exists := c.Get(userRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := v.(models.Role)
	if !ok {
		return "", fmt.Errorf("user role has unexpected type %T", v)
	}
	return role, nil
}
