package dto

import (
	"github.com/sghss/sghss-api/internal/models"
	"github.com/sghss/sghss-api/pkg/pagination"
)

type CreatePatientRequest struct {
	Name      string `json:"nome"`
	CPF       string `json:"cpf"`
	BirthDate string `json:"data_nascimento"`
	Address   string `json:"endereco"`
	Phone     string `json:"telefone"`
	Email     string `json:"email"`
}

// UpdatePatientRequest is a partial update: nil fields are left unchanged and
// empty strings clear optional fields.
type UpdatePatientRequest struct {
	Name      *string `json:"nome"`
	CPF       *string `json:"cpf"`
	BirthDate *string `json:"data_nascimento"`
	Address   *string `json:"endereco"`
	Phone     *string `json:"telefone"`
	Email     *string `json:"email"`
}

type PatientResponse struct {
	Message string          `json:"message,omitempty"`
	Patient *models.Patient `json:"paciente"`
}

type PatientListResponse struct {
	Patients   []models.Patient `json:"pacientes"`
	Pagination pagination.Meta  `json:"pagination"`
}
