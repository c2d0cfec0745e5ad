package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sghss/sghss-api/internal/apperr"
	"github.com/sghss/sghss-api/internal/dto"
	"github.com/sghss/sghss-api/internal/models"
	"github.com/sghss/sghss-api/internal/repository"
	"github.com/sghss/sghss-api/pkg/pagination"
)

// AppointmentService is the appointment ledger. It does not check providers
// for overlapping bookings.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	users        repository.UserRepository
	now          func() time.Time
}

func NewAppointmentService(appointments repository.AppointmentRepository, patients repository.PatientRepository, users repository.UserRepository) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		patients:     patients,
		users:        users,
		now:          time.Now,
	}
}

func (s *AppointmentService) Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*models.Appointment, error) {
	if req.PatientID == uuid.Nil || req.ProviderID == uuid.Nil || strings.TrimSpace(req.ScheduledAt) == "" {
		return nil, apperr.BadFormat("paciente_id, medico_id and data_consulta are required")
	}

	patient, err := s.patients.GetByID(ctx, req.PatientID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.ErrPatientNotFound
	case err != nil:
		return nil, apperr.Store(fmt.Errorf("lookup patient: %w", err))
	case !patient.Active:
		return nil, apperr.ErrPatientNotFound
	}

	provider, err := s.users.GetByID(ctx, req.ProviderID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.ErrProviderNotFound
	case err != nil:
		return nil, apperr.Store(fmt.Errorf("lookup provider: %w", err))
	case !provider.Active:
		return nil, apperr.ErrProviderNotFound
	}

	modality := models.ModalityInPerson
	if strings.TrimSpace(req.Modality) != "" {
		if modality, err = models.ParseModality(strings.TrimSpace(req.Modality)); err != nil {
			return nil, apperr.BadFormat(err.Error())
		}
	}

	scheduledAt, err := parseSchedule(req.ScheduledAt)
	if err != nil {
		return nil, err
	}
	if scheduledAt.Before(s.now()) {
		return nil, apperr.BadFormat("cannot schedule an appointment in the past")
	}

	a := &models.Appointment{
		ID:          uuid.New(),
		PatientID:   patient.ID,
		ProviderID:  provider.ID,
		ScheduledAt: scheduledAt,
		Modality:    modality,
		Status:      models.StatusScheduled,
		Notes:       optionalString(req.Notes),
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, apperr.Store(fmt.Errorf("create appointment: %w", err))
	}
	return a, nil
}

func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrAppointmentNotFound
		}
		return nil, apperr.Store(fmt.Errorf("get appointment: %w", err))
	}
	return a, nil
}

// List returns appointments matching q ordered by scheduled time. The date
// range is inclusive on both ends.
func (s *AppointmentService) List(ctx context.Context, q *dto.AppointmentQuery) ([]models.Appointment, pagination.Meta, error) {
	filter := repository.AppointmentFilter{
		Status: strings.TrimSpace(q.Status),
		Page:   pagination.New(q.Page, q.PerPage),
	}

	var err error
	if filter.PatientID, err = parseOptionalID("paciente_id", q.PatientID); err != nil {
		return nil, pagination.Meta{}, err
	}
	if filter.ProviderID, err = parseOptionalID("medico_id", q.ProviderID); err != nil {
		return nil, pagination.Meta{}, err
	}
	if v := strings.TrimSpace(q.From); v != "" {
		d, err := parseDate("data_inicio", v)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		from := time.Time(*d)
		filter.From = &from
	}
	if v := strings.TrimSpace(q.To); v != "" {
		d, err := parseDate("data_fim", v)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		until := time.Time(*d).AddDate(0, 0, 1)
		filter.Until = &until
	}

	appointments, total, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, apperr.Store(fmt.Errorf("list appointments: %w", err))
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return appointments, pagination.NewMeta(filter.Page, total), nil
}

func (s *AppointmentService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Appointment, error) {
	if strings.TrimSpace(status) == "" {
		return nil, apperr.BadFormat("status is required")
	}
	st, err := models.ParseStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, apperr.BadFormat(err.Error())
	}

	if err := s.appointments.UpdateStatus(ctx, id, st); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrAppointmentNotFound
		}
		return nil, apperr.Store(fmt.Errorf("update appointment status: %w", err))
	}
	return s.Get(ctx, id)
}

func parseOptionalID(field, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.BadFormat(field + " must be a valid id")
	}
	return &id, nil
}
