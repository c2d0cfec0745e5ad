package dto

import (
	"github.com/google/uuid"

	"github.com/sghss/sghss-api/internal/models"
	"github.com/sghss/sghss-api/pkg/pagination"
)

type CreateAppointmentRequest struct {
	PatientID   uuid.UUID `json:"paciente_id"`
	ProviderID  uuid.UUID `json:"medico_id"`
	ScheduledAt string    `json:"data_consulta"`
	Modality    string    `json:"tipo_consulta"`
	Notes       string    `json:"observacoes"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status"`
}

// AppointmentQuery carries the raw list filters from the query string.
type AppointmentQuery struct {
	PatientID  string `query:"paciente_id"`
	ProviderID string `query:"medico_id"`
	Status     string `query:"status"`
	From       string `query:"data_inicio"`
	To         string `query:"data_fim"`
	Page       int    `query:"page"`
	PerPage    int    `query:"per_page"`
}

type AppointmentResponse struct {
	Message     string              `json:"message,omitempty"`
	Appointment *models.Appointment `json:"consulta"`
}

type AppointmentListResponse struct {
	Appointments []models.Appointment `json:"consultas"`
	Pagination   pagination.Meta      `json:"pagination"`
}

// MedicalRecordRequest is used for both creation and partial updates.
type MedicalRecordRequest struct {
	Diagnosis      *string `json:"diagnostico"`
	Prescription   *string `json:"prescricao"`
	RequestedExams *string `json:"exames_solicitados"`
	ClinicalNotes  *string `json:"observacoes_medicas"`
}

type MedicalRecordResponse struct {
	Message       string                `json:"message,omitempty"`
	MedicalRecord *models.MedicalRecord `json:"prontuario"`
}
