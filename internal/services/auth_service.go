package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sghss/sghss-api/internal/apperr"
	"github.com/sghss/sghss-api/internal/auth"
	"github.com/sghss/sghss-api/internal/dto"
	"github.com/sghss/sghss-api/internal/models"
	"github.com/sghss/sghss-api/internal/repository"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

// AuthService is the credential store: staff accounts, password checks and
// the access/refresh token pair.
type AuthService struct {
	users      repository.UserRepository
	refresh    repository.RefreshTokenRepository
	tokens     *auth.TokenManager
	refreshTTL time.Duration
	hashCost   int
	now        func() time.Time
}

func NewAuthService(users repository.UserRepository, refresh repository.RefreshTokenRepository, tokens *auth.TokenManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		refresh:    refresh,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apperr.BadFormat("username and password are required")
	}
	if len([]rune(username)) < minUsernameLength {
		return nil, apperr.BadFormat(fmt.Sprintf("username must be at least %d characters", minUsernameLength))
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.BadFormat(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	email := optionalString(req.Email)
	if email != nil && !validEmail(*email) {
		return nil, apperr.BadFormat("invalid email")
	}

	role := models.RoleReceptionist
	if strings.TrimSpace(req.Role) != "" {
		r, err := models.ParseRole(req.Role)
		if err != nil {
			return nil, apperr.BadFormat(err.Error())
		}
		role = r
	}

	_, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, apperr.ErrDuplicateUsername
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperr.Store(fmt.Errorf("lookup username: %w", err))
	}

	if email != nil {
		taken, err := s.users.EmailTaken(ctx, *email)
		if err != nil {
			return nil, apperr.Store(fmt.Errorf("lookup email: %w", err))
		}
		if taken {
			return nil, apperr.ErrDuplicateEmail
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Password: string(hash),
		Email:    email,
		Role:     role,
		Active:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if c, ok := repository.DuplicateConstraint(err); ok {
			if c == repository.ConstraintUserEmail {
				return nil, apperr.ErrDuplicateEmail
			}
			return nil, apperr.ErrDuplicateUsername
		}
		return nil, apperr.Store(fmt.Errorf("failed to create user: %w", err))
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apperr.BadFormat("username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, apperr.Store(fmt.Errorf("lookup user: %w", err))
	}
	if !user.Active {
		return nil, apperr.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperr.ErrTokenMissing
	}
	tokenHash := hashToken(refreshToken)

	stored, err := s.refresh.GetActiveByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrTokenMalformed.WithMessage("invalid refresh token")
		}
		return nil, apperr.Store(fmt.Errorf("lookup refresh token: %w", err))
	}

	// A concurrent refresh that revoked it first wins; this one is rejected.
	if err := s.refresh.Revoke(ctx, tokenHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrTokenMalformed.WithMessage("invalid refresh token")
		}
		return nil, apperr.Store(fmt.Errorf("revoke refresh token: %w", err))
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, apperr.ErrTokenExpired.WithMessage("refresh token expired")
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, apperr.Store(fmt.Errorf("lookup user: %w", err))
	}
	if !user.Active {
		return nil, apperr.ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return apperr.BadFormat("refresh_token is required")
	}
	err := s.refresh.Revoke(ctx, hashToken(refreshToken))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperr.Store(fmt.Errorf("revoke refresh token: %w", err))
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, apperr.Store(fmt.Errorf("lookup user: %w", err))
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperr.BadFormat("current_password and new_password are required")
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return apperr.ErrInvalidCredentials.WithMessage("current password is incorrect")
	}
	if len(req.NewPassword) < minPasswordLength {
		return apperr.BadFormat(fmt.Sprintf("new password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.hashCost)
	if err != nil {
		return apperr.Store(fmt.Errorf("failed to hash password: %w", err))
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrUserNotFound
		}
		return apperr.Store(fmt.Errorf("update password: %w", err))
	}
	return nil
}

// ListProviders returns the active clinicians appointments can be booked with.
func (s *AuthService) ListProviders(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListByRole(ctx, models.RoleClinician)
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("list providers: %w", err))
	}
	return users, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, apperr.Store(err)
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		User:         dto.NewUserResponse(user),
	}, nil
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", apperr.Store(fmt.Errorf("failed to generate random bytes: %w", err))
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	record := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.refresh.Create(ctx, record); err != nil {
		return "", apperr.Store(fmt.Errorf("failed to store refresh token: %w", err))
	}
	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
