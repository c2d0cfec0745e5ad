package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sghss/sghss-api/internal/apperr"
	"github.com/sghss/sghss-api/internal/dto"
	"github.com/sghss/sghss-api/internal/models"
	"github.com/sghss/sghss-api/internal/repository"
	"github.com/sghss/sghss-api/pkg/pagination"
)

const minPatientNameLength = 2

// PatientService is the patient registry. Patients are never hard-deleted;
// Deactivate clears the active flag.
type PatientService struct {
	patients repository.PatientRepository
}

func NewPatientService(patients repository.PatientRepository) *PatientService {
	return &PatientService{patients: patients}
}

func (s *PatientService) Create(ctx context.Context, req *dto.CreatePatientRequest) (*models.Patient, error) {
	name, err := validateName(req.Name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CPF) == "" {
		return nil, apperr.BadFormat("nome and cpf are required")
	}
	cpf, err := normalizeCPF(req.CPF)
	if err != nil {
		return nil, err
	}

	p := &models.Patient{
		ID:      uuid.New(),
		Name:    name,
		CPF:     cpf,
		Address: optionalString(req.Address),
		Active:  true,
	}
	if err := applyContact(p, optionalString(req.Phone), optionalString(req.Email)); err != nil {
		return nil, err
	}
	if v := optionalString(req.BirthDate); v != nil {
		if p.BirthDate, err = parseDate("data_nascimento", *v); err != nil {
			return nil, err
		}
	}

	if err := s.checkUnique(ctx, p, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, duplicateOrStore("create patient", err)
	}
	return p, nil
}

// Get returns the patient whether or not it is active.
func (s *PatientService) Get(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrPatientNotFound
		}
		return nil, apperr.Store(fmt.Errorf("get patient: %w", err))
	}
	return p, nil
}

// List pages through active patients, optionally filtered by a name or CPF
// fragment.
func (s *PatientService) List(ctx context.Context, page, perPage int, search string) ([]models.Patient, pagination.Meta, error) {
	params := pagination.New(page, perPage)
	patients, total, err := s.patients.Search(ctx, repository.PatientFilter{
		Search: strings.TrimSpace(search),
		Page:   params,
	})
	if err != nil {
		return nil, pagination.Meta{}, apperr.Store(fmt.Errorf("search patients: %w", err))
	}
	if patients == nil {
		patients = []models.Patient{}
	}
	return patients, pagination.NewMeta(params, total), nil
}

// Update applies the non-nil fields of req to an active patient.
func (s *PatientService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*models.Patient, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, apperr.ErrPatientNotFound
	}

	if req.Name != nil {
		if p.Name, err = validateName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.CPF != nil {
		if p.CPF, err = normalizeCPF(*req.CPF); err != nil {
			return nil, err
		}
	}
	if req.BirthDate != nil {
		p.BirthDate = nil
		if v := optional(req.BirthDate); v != nil {
			if p.BirthDate, err = parseDate("data_nascimento", *v); err != nil {
				return nil, err
			}
		}
	}
	if req.Address != nil {
		p.Address = optional(req.Address)
	}

	phone, email := p.Phone, p.Email
	if req.Phone != nil {
		phone = optional(req.Phone)
	}
	if req.Email != nil {
		email = optional(req.Email)
	}
	if err := applyContact(p, phone, email); err != nil {
		return nil, err
	}

	if err := s.checkUnique(ctx, p, p.ID); err != nil {
		return nil, err
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, duplicateOrStore("update patient", err)
	}
	return p, nil
}

// Deactivate soft-deletes a patient. Deactivating an inactive patient
// succeeds without change.
func (s *PatientService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.patients.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrPatientNotFound
		}
		return apperr.Store(fmt.Errorf("deactivate patient: %w", err))
	}
	return nil
}

// Reactivate restores a deactivated patient unless its CPF has since been
// taken by another active patient.
func (s *PatientService) Reactivate(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Active {
		return nil, apperr.ErrAlreadyActive
	}

	taken, err := s.patients.ActiveCPFTaken(ctx, p.CPF, p.ID)
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("check cpf: %w", err))
	}
	if taken {
		return nil, apperr.ErrDuplicateIdentifier
	}

	if err := s.patients.SetActive(ctx, id, true); err != nil {
		return nil, duplicateOrStore("reactivate patient", err)
	}
	p.Active = true
	return p, nil
}

func (s *PatientService) checkUnique(ctx context.Context, p *models.Patient, exclude uuid.UUID) error {
	taken, err := s.patients.ActiveCPFTaken(ctx, p.CPF, exclude)
	if err != nil {
		return apperr.Store(fmt.Errorf("check cpf: %w", err))
	}
	if taken {
		return apperr.ErrDuplicateIdentifier
	}

	if p.Email == nil {
		return nil
	}
	taken, err = s.patients.ActiveEmailTaken(ctx, *p.Email, exclude)
	if err != nil {
		return apperr.Store(fmt.Errorf("check email: %w", err))
	}
	if taken {
		return apperr.ErrDuplicateEmail
	}
	return nil
}

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apperr.BadFormat("nome and cpf are required")
	}
	if len([]rune(name)) < minPatientNameLength {
		return "", apperr.BadFormat(fmt.Sprintf("nome must be at least %d characters", minPatientNameLength))
	}
	return name, nil
}

func applyContact(p *models.Patient, phone, email *string) error {
	if phone != nil {
		normalized, err := normalizePhone(*phone)
		if err != nil {
			return err
		}
		phone = &normalized
	}
	if email != nil && !validEmail(*email) {
		return apperr.BadFormat("invalid email")
	}
	p.Phone, p.Email = phone, email
	return nil
}

// duplicateOrStore maps a unique violation that slipped past the
// application checks onto the matching validation error.
func duplicateOrStore(action string, err error) error {
	if c, ok := repository.DuplicateConstraint(err); ok {
		if c == repository.ConstraintPatientActiveCPF {
			return apperr.ErrDuplicateIdentifier
		}
		return apperr.Store(fmt.Errorf("%s: %w", action, err))
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ErrPatientNotFound
	}
	return apperr.Store(fmt.Errorf("%s: %w", action, err))
}
