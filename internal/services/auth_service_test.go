package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sghss/sghss-api/internal/apperr"
	"github.com/sghss/sghss-api/internal/dto"
	"github.com/sghss/sghss-api/internal/models"
	"github.com/sghss/sghss-api/internal/repository"
	"github.com/sghss/sghss-api/internal/repository/repotest"
)

func TestRegister_DefaultsToReceptionist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, &dto.RegisterRequest{Username: "  maria ", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Username != "maria" {
		t.Errorf("expected trimmed username, got %q", user.Username)
	}
	if user.Role != models.RoleReceptionist {
		t.Errorf("expected role %q, got %q", models.RoleReceptionist, user.Role)
	}
	if !user.Active {
		t.Error("expected new user to be active")
	}
	if user.Password == "secret123" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegister_WithRoleAndEmail(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Register(context.Background(), &dto.RegisterRequest{
		Username: "dr.house",
		Password: "secret123",
		Email:    "house@example.com",
		Role:     "MEDICO",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != models.RoleClinician {
		t.Errorf("expected role medico, got %q", user.Role)
	}
	if user.Email == nil || *user.Email != "house@example.com" {
		t.Errorf("unexpected email %v", user.Email)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  dto.RegisterRequest
	}{
		{"missing username", dto.RegisterRequest{Password: "secret123"}},
		{"missing password", dto.RegisterRequest{Username: "maria"}},
		{"short username", dto.RegisterRequest{Username: "ab", Password: "secret123"}},
		{"short password", dto.RegisterRequest{Username: "maria", Password: "12345"}},
		{"invalid email", dto.RegisterRequest{Username: "maria", Password: "secret123", Email: "not-an-email"}},
		{"unknown role", dto.RegisterRequest{Username: "maria", Password: "secret123", Role: "nurse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.auth.Register(context.Background(), &tt.req)
			if !errors.Is(err, apperr.ErrBadFormat) {
				t.Errorf("expected BadFormat, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.auth.Register(ctx, &dto.RegisterRequest{Username: "maria", Password: "secret123"}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := env.auth.Register(ctx, &dto.RegisterRequest{Username: "MARIA", Password: "other123"})
	if !errors.Is(err, apperr.ErrDuplicateUsername) {
		t.Errorf("expected DuplicateUsername, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.auth.Register(ctx, &dto.RegisterRequest{Username: "maria", Password: "secret123", Email: "m@example.com"}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := env.auth.Register(ctx, &dto.RegisterRequest{Username: "joana", Password: "secret123", Email: "M@example.com"})
	if !errors.Is(err, apperr.ErrDuplicateEmail) {
		t.Errorf("expected DuplicateEmail, got %v", err)
	}
}

// lateEmailUsers passes the pre-insert checks and then loses the race on the
// email unique index.
type lateEmailUsers struct {
	*repotest.Users
}

func (lateEmailUsers) Create(context.Context, *models.User) error {
	return &repository.DuplicateError{Constraint: repository.ConstraintUserEmail}
}

func TestRegister_DuplicateFromConstraint(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(lateEmailUsers{env.store.Users()}, env.store.RefreshTokens(), env.tokens, time.Hour)
	svc.hashCost = bcrypt.MinCost

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Username: "maria", Password: "secret123", Email: "m@example.com"})
	if !errors.Is(err, apperr.ErrDuplicateEmail) {
		t.Errorf("expected DuplicateEmail, got %v", err)
	}
}

func TestRegister_UsernameLengthCountsCharacters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, &dto.RegisterRequest{Username: "Zé", Password: "secret123"})
	if !errors.Is(err, apperr.ErrBadFormat) {
		t.Errorf("expected BadFormat for a two-character username, got %v", err)
	}
	if _, err := env.auth.Register(ctx, &dto.RegisterRequest{Username: "Zoé", Password: "secret123"}); err != nil {
		t.Errorf("Register: %v", err)
	}
}

func TestRegister_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.Err = errBoom

	_, err := env.auth.Register(context.Background(), &dto.RegisterRequest{Username: "maria", Password: "secret123"})
	if !errors.Is(err, apperr.ErrStore) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if !errors.Is(err, errBoom) {
		t.Error("expected the cause to stay reachable")
	}
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "dr.ana", models.RoleClinician)

	resp, err := env.auth.Login(context.Background(), &dto.LoginRequest{Username: "dr.ana", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.RefreshToken == "" {
		t.Error("expected a refresh token")
	}
	if resp.TokenType != "Bearer" || resp.ExpiresIn != int64(time.Hour.Seconds()) {
		t.Errorf("unexpected token metadata: %s %d", resp.TokenType, resp.ExpiresIn)
	}

	claims, err := env.tokens.Verify(resp.AccessToken)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("expected subject %s, got %s", user.ID, claims.Subject)
	}
	if claims.Role != models.RoleClinician {
		t.Errorf("expected role medico, got %q", claims.Role)
	}
	if resp.User.ID != user.ID || resp.User.Username != "dr.ana" {
		t.Errorf("unexpected user in response: %+v", resp.User)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	inactive := env.seedUser(t, "former", models.RoleReceptionist)
	env.store.Users().SetActive(inactive.ID, false)
	env.seedUser(t, "maria", models.RoleReceptionist)

	tests := []struct {
		name string
		req  dto.LoginRequest
	}{
		{"wrong password", dto.LoginRequest{Username: "maria", Password: "wrong-pass"}},
		{"unknown user", dto.LoginRequest{Username: "ghost", Password: "secret123"}},
		{"inactive user", dto.LoginRequest{Username: "former", Password: "secret123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Login(context.Background(), &tt.req)
			if !errors.Is(err, apperr.ErrInvalidCredentials) {
				t.Fatalf("expected InvalidCredentials, got %v", err)
			}
			if apperr.As(err).Category != apperr.CategoryAuth {
				t.Errorf("expected an auth error, got %s", apperr.As(err).Code())
			}
		})
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "maria", models.RoleReceptionist)

	first, err := env.auth.Login(ctx, &dto.LoginRequest{Username: "maria", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	second, err := env.auth.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("expected a new refresh token")
	}

	_, err = env.auth.Refresh(ctx, first.RefreshToken)
	if !errors.Is(err, apperr.ErrTokenMalformed) {
		t.Errorf("expected reused token to be rejected, got %v", err)
	}
}

func TestRefresh_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "maria", models.RoleReceptionist)

	resp, err := env.auth.Login(ctx, &dto.LoginRequest{Username: "maria", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	env.auth.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = env.auth.Refresh(ctx, resp.RefreshToken)
	if !errors.Is(err, apperr.ErrTokenExpired) {
		t.Errorf("expected Expired, got %v", err)
	}
}

func TestRefresh_Missing(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.Refresh(context.Background(), "")
	if !errors.Is(err, apperr.ErrTokenMissing) {
		t.Errorf("expected Missing, got %v", err)
	}
}

// contendedTokens lets another refresh revoke the token between lookup and
// rotation.
type contendedTokens struct {
	*repotest.RefreshTokens
}

func (r contendedTokens) GetActiveByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	t, err := r.RefreshTokens.GetActiveByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if err := r.RefreshTokens.Revoke(ctx, hash); err != nil {
		return nil, err
	}
	return t, nil
}

func TestRefresh_ConcurrentRotationRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "maria", models.RoleReceptionist)

	resp, err := env.auth.Login(ctx, &dto.LoginRequest{Username: "maria", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	svc := NewAuthService(env.store.Users(), contendedTokens{env.store.RefreshTokens()}, env.tokens, time.Hour)
	_, err = svc.Refresh(ctx, resp.RefreshToken)
	if !errors.Is(err, apperr.ErrTokenMalformed) {
		t.Errorf("expected the losing refresh to be rejected, got %v", err)
	}
}

func TestLogout_Twice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "maria", models.RoleReceptionist)

	resp, err := env.auth.Login(ctx, &dto.LoginRequest{Username: "maria", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := env.auth.Logout(ctx, resp.RefreshToken); err != nil {
			t.Fatalf("Logout #%d: %v", i+1, err)
		}
	}
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "maria", models.RoleReceptionist)

	resp, err := env.auth.Login(ctx, &dto.LoginRequest{Username: "maria", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := env.auth.Logout(ctx, resp.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := env.auth.Refresh(ctx, resp.RefreshToken); err == nil {
		t.Error("expected refresh after logout to fail")
	}
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "maria", models.RoleReceptionist)

	got, err := env.auth.Profile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got.Username != "maria" {
		t.Errorf("unexpected username %q", got.Username)
	}

	_, err = env.auth.Profile(context.Background(), uuid.New())
	if !errors.Is(err, apperr.ErrUserNotFound) {
		t.Errorf("expected NotFound.User, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "maria", models.RoleReceptionist)

	err := env.auth.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newpass1"})
	if !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("expected InvalidCredentials for wrong current password, got %v", err)
	}

	err = env.auth.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "123"})
	if !errors.Is(err, apperr.ErrBadFormat) {
		t.Errorf("expected BadFormat for short password, got %v", err)
	}

	if err := env.auth.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newpass1"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := env.auth.Login(ctx, &dto.LoginRequest{Username: "maria", Password: "newpass1"}); err != nil {
		t.Errorf("expected login with new password to succeed: %v", err)
	}
	if _, err := env.auth.Login(ctx, &dto.LoginRequest{Username: "maria", Password: "secret123"}); err == nil {
		t.Error("expected login with old password to fail")
	}
}

func TestListProviders(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "dr.bruno", models.RoleClinician)
	env.seedUser(t, "dr.ana", models.RoleClinician)
	env.seedUser(t, "maria", models.RoleReceptionist)
	gone := env.seedUser(t, "dr.gone", models.RoleClinician)
	env.store.Users().SetActive(gone.ID, false)

	providers, err := env.auth.ListProviders(context.Background())
	if err != nil {
		t.Fatalf("ListProviders: %v", err)
	}
	if len(providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(providers))
	}
	if providers[0].Username != "dr.ana" || providers[1].Username != "dr.bruno" {
		t.Errorf("unexpected order: %s, %s", providers[0].Username, providers[1].Username)
	}
}
