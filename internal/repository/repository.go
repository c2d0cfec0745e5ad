// Package repository is the relational store behind the services. Services
// depend on the interfaces; the gorm-backed structs implement them.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/sghss/sghss-api/internal/models"
	"github.com/sghss/sghss-api/pkg/pagination"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("unique constraint violated")
)

const uniqueViolation = "23505"

// Unique constraints the services tell apart.
const (
	ConstraintUserEmail         = "idx_users_email"
	ConstraintUserUsername      = "idx_users_lower_username"
	ConstraintPatientActiveCPF  = "idx_patients_active_cpf"
	ConstraintRecordAppointment = "idx_medical_records_appointment_id"
	ConstraintRefreshTokenHash  = "idx_refresh_tokens_token_hash"
)

// DuplicateError is a unique violation on a named constraint. It matches
// ErrDuplicate under errors.Is.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return ErrDuplicate.Error() + ": " + e.Constraint
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// DuplicateConstraint reports the constraint behind a unique violation.
func DuplicateConstraint(err error) (string, bool) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup.Constraint, true
	}
	return "", false
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, t *models.RefreshToken) error
	GetActiveByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	// Revoke flips an unrevoked token to revoked. It returns ErrNotFound
	// when no unrevoked token has that hash.
	Revoke(ctx context.Context, hash string) error
}

type PatientFilter struct {
	Search string
	Page   pagination.Params
}

type PatientRepository interface {
	Create(ctx context.Context, p *models.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Patient, error)
	// ActiveCPFTaken reports whether an active patient other than exclude
	// holds cpf. Pass uuid.Nil to exclude nobody.
	ActiveCPFTaken(ctx context.Context, cpf string, exclude uuid.UUID) (bool, error)
	ActiveEmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	Update(ctx context.Context, p *models.Patient) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Search(ctx context.Context, f PatientFilter) ([]models.Patient, int64, error)
}

type AppointmentFilter struct {
	PatientID  *uuid.UUID
	ProviderID *uuid.UUID
	Status     string
	From       *time.Time // inclusive
	Until      *time.Time // exclusive
	Page       pagination.Params
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.AppointmentStatus) error
}

type MedicalRecordRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.MedicalRecord, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*models.MedicalRecord, error)
	// CreateForAppointment inserts the record and marks its appointment
	// completed in one transaction.
	CreateForAppointment(ctx context.Context, r *models.MedicalRecord) error
	Update(ctx context.Context, r *models.MedicalRecord) error
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &DuplicateError{Constraint: pgErr.ConstraintName}
	}
	return err
}

// affected turns a zero-row update into ErrNotFound.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
