package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/auth"
	apperrors "github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/httputil"
)

const ContextClaims = "claims"

type AuthMiddleware struct {
	jwt auth.JWTService
}

func NewAuthMiddleware(jwt auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// Authenticate verifies the bearer token and stores its claims in the context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, unauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.RespondWithError(c, unauthorized("invalid authorization format"))
			return
		}

		claims, err := m.jwt.Validate(parts[1])
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			return
		}

		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireOwner rejects every caller that is not a business owner.
func (m *AuthMiddleware) RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil || claims.Role != auth.RoleOwner {
			httputil.RespondWithError(c, apperrors.Forbidden("business owner role required"))
			return
		}
		c.Next()
	}
}

func ClaimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// BusinessID returns the owner's business. Only valid behind RequireOwner.
func BusinessID(c *gin.Context) uuid.UUID {
	if claims := ClaimsFrom(c); claims != nil && claims.BusinessID != nil {
		return *claims.BusinessID
	}
	return uuid.Nil
}

func unauthorized(msg string) *apperrors.AppError {
	err := apperrors.Unauthorized(nil)
	err.Message = msg
	return err
}
