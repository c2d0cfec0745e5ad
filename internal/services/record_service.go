package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sghss/sghss-api/internal/apperr"
	"github.com/sghss/sghss-api/internal/dto"
	"github.com/sghss/sghss-api/internal/models"
	"github.com/sghss/sghss-api/internal/repository"
)

// MedicalRecordService keeps one clinical record per appointment. Writing
// the record completes the appointment.
type MedicalRecordService struct {
	records      repository.MedicalRecordRepository
	appointments repository.AppointmentRepository
}

func NewMedicalRecordService(records repository.MedicalRecordRepository, appointments repository.AppointmentRepository) *MedicalRecordService {
	return &MedicalRecordService{records: records, appointments: appointments}
}

func (s *MedicalRecordService) Create(ctx context.Context, appointmentID uuid.UUID, req *dto.MedicalRecordRequest) (*models.MedicalRecord, error) {
	if _, err := s.appointments.GetByID(ctx, appointmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrAppointmentNotFound
		}
		return nil, apperr.Store(fmt.Errorf("lookup appointment: %w", err))
	}

	_, err := s.records.GetByAppointment(ctx, appointmentID)
	switch {
	case err == nil:
		return nil, apperr.ErrConflict.WithMessage("appointment already has a medical record")
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperr.Store(fmt.Errorf("lookup medical record: %w", err))
	}

	rec := &models.MedicalRecord{
		ID:             uuid.New(),
		AppointmentID:  appointmentID,
		Diagnosis:      optional(req.Diagnosis),
		Prescription:   optional(req.Prescription),
		RequestedExams: optional(req.RequestedExams),
		ClinicalNotes:  optional(req.ClinicalNotes),
	}
	if err := s.records.CreateForAppointment(ctx, rec); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperr.ErrConflict.WithMessage("appointment already has a medical record")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.ErrAppointmentNotFound
		}
		return nil, apperr.Store(fmt.Errorf("create medical record: %w", err))
	}
	return rec, nil
}

func (s *MedicalRecordService) Get(ctx context.Context, id uuid.UUID) (*models.MedicalRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, recordLookupError(err)
	}
	return rec, nil
}

func (s *MedicalRecordService) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*models.MedicalRecord, error) {
	rec, err := s.records.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, recordLookupError(err)
	}
	return rec, nil
}

// Update replaces only the fields present in req. An empty string clears a
// field.
func (s *MedicalRecordService) Update(ctx context.Context, id uuid.UUID, req *dto.MedicalRecordRequest) (*models.MedicalRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Diagnosis != nil {
		rec.Diagnosis = optional(req.Diagnosis)
	}
	if req.Prescription != nil {
		rec.Prescription = optional(req.Prescription)
	}
	if req.RequestedExams != nil {
		rec.RequestedExams = optional(req.RequestedExams)
	}
	if req.ClinicalNotes != nil {
		rec.ClinicalNotes = optional(req.ClinicalNotes)
	}

	if err := s.records.Update(ctx, rec); err != nil {
		return nil, apperr.Store(fmt.Errorf("update medical record: %w", err))
	}
	return rec, nil
}

func recordLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ErrMedicalRecordNotFound
	}
	return apperr.Store(fmt.Errorf("get medical record: %w", err))
}
