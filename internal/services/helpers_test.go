package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sghss/sghss-api/internal/auth"
	"github.com/sghss/sghss-api/internal/models"
	"github.com/sghss/sghss-api/internal/repository/repotest"
)

const testSecret = "test-secret-key-for-unit-tests-only"

var errBoom = errors.New("connection reset by peer")

type testEnv struct {
	store        *repotest.Store
	tokens       *auth.TokenManager
	auth         *AuthService
	patients     *PatientService
	appointments *AppointmentService
	records      *MedicalRecordService
	now          time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repotest.NewStore()
	tokens := auth.NewTokenManager(testSecret, "sghss-test", time.Hour)

	authSvc := NewAuthService(store.Users(), store.RefreshTokens(), tokens, 24*time.Hour)
	authSvc.hashCost = bcrypt.MinCost

	env := &testEnv{
		store:        store,
		tokens:       tokens,
		auth:         authSvc,
		patients:     NewPatientService(store.Patients()),
		appointments: NewAppointmentService(store.Appointments(), store.Patients(), store.Users()),
		records:      NewMedicalRecordService(store.MedicalRecords(), store.Appointments()),
		now:          time.Date(2030, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	env.appointments.now = func() time.Time { return env.now }
	return env
}

func (e *testEnv) seedUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{ID: uuid.New(), Username: username, Password: string(hash), Role: role, Active: true}
	if err := e.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (e *testEnv) seedPatient(t *testing.T, name, cpf string) *models.Patient {
	t.Helper()
	p := &models.Patient{ID: uuid.New(), Name: name, CPF: cpf, Active: true}
	if err := e.store.Patients().Create(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p
}

func strPtr(s string) *string { return &s }
