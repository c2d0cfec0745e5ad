package middleware

import (
	"errors"
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sghss/sghss-api/internal/apperr"
	"github.com/sghss/sghss-api/internal/auth"
)

const (
	tokenKey    = "user"
	identityKey = "identity"
)

// JWTProtected verifies the bearer token and stores the caller's identity
// in the request context. Failures are reported as auth errors.
func JWTProtected(tokens *auth.TokenManager) fiber.Handler {
	return jwtware.New(jwtware.Config{
		KeyFunc:    tokens.KeyFunc,
		Claims:     &auth.Claims{},
		ContextKey: tokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(tokenKey).(*jwt.Token)
			if !ok {
				return Fail(c, "auth.verify", apperr.ErrTokenMalformed)
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return Fail(c, "auth.verify", apperr.ErrTokenMalformed)
			}
			if err := tokens.CheckClaims(claims); err != nil {
				return Fail(c, "auth.verify", err)
			}
			c.Locals(identityKey, claims.Identity())
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				if strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) == "" {
					return Fail(c, "auth.verify", apperr.ErrTokenMissing)
				}
				return Fail(c, "auth.verify", apperr.ErrTokenMalformed)
			}
			return Fail(c, "auth.verify", auth.Classify(err))
		},
	})
}

// RequireRoles rejects callers whose role is not in roles. It must run after
// JWTProtected.
func RequireRoles(guard *auth.Guard, roles auth.RoleSet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := guard.Permit(GetIdentity(c), roles); err != nil {
			return Fail(c, "auth.guard", err)
		}
		return c.Next()
	}
}

func GetIdentity(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(identityKey).(*auth.Identity)
	return id
}

func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id := GetIdentity(c)
	if id == nil {
		return uuid.Nil, apperr.ErrTokenMissing
	}
	return id.UserID, nil
}
