package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sghss/sghss-api/internal/apperr"
	"github.com/sghss/sghss-api/internal/models"
)

// Claims is the access token payload. The role is carried under the
// original API's "tipo_usuario" name.
type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"tipo_usuario"`
	jwt.RegisteredClaims
}

// Validate is invoked by the jwt parser after the registered claims pass.
func (c *Claims) Validate() error {
	if _, err := uuid.Parse(c.Subject); err != nil {
		return fmt.Errorf("invalid subject: %w", err)
	}
	if !c.Role.Valid() {
		return fmt.Errorf("invalid role %q", c.Role)
	}
	return nil
}

// Identity is the verified caller of a protected operation.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Role     models.Role
}

func (c *Claims) Identity() *Identity {
	id, _ := uuid.Parse(c.Subject)
	return &Identity{UserID: id, Username: c.Username, Role: c.Role}
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for the given identity. It fails only when the manager
// is misconfigured.
func (m *TokenManager) Issue(userID uuid.UUID, username string, role models.Role) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("token manager: signing secret is not configured")
	}
	now := m.now()
	claims := &Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes a raw bearer token. Failures are apperr auth errors:
// Missing, Expired or Malformed.
func (m *TokenManager) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.ErrTokenMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, m.KeyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, Classify(err)
	}
	if !token.Valid {
		return nil, apperr.ErrTokenMalformed
	}
	return claims, nil
}

// KeyFunc resolves the signing key. Only HS256 is accepted.
func (m *TokenManager) KeyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return m.secret, nil
}

// Secret exposes the signing key for the HTTP JWT middleware.
func (m *TokenManager) Secret() []byte { return m.secret }

// Classify maps a jwt parse error onto the auth taxonomy.
func Classify(err error) error {
	var ae *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return err
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperr.ErrTokenExpired
	default:
		return apperr.ErrTokenMalformed
	}
}

// TTL is the lifetime of issued access tokens.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// CheckClaims applies the issuer and expiry requirements of Verify to claims
// parsed elsewhere, such as by the HTTP JWT middleware.
func (m *TokenManager) CheckClaims(c *Claims) error {
	if c.ExpiresAt == nil {
		return apperr.ErrTokenMalformed
	}
	if c.Issuer != m.issuer {
		return apperr.ErrTokenMalformed
	}
	if !m.now().Before(c.ExpiresAt.Time) {
		return apperr.ErrTokenExpired
	}
	return nil
}
