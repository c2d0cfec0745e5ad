package models

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord holds the clinical notes of one completed appointment.
type MedicalRecord struct {
	ID             uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AppointmentID  uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"consulta_id"`
	Diagnosis      *string     `gorm:"type:text" json:"diagnostico"`
	Prescription   *string     `gorm:"type:text" json:"prescricao"`
	RequestedExams *string     `gorm:"type:text" json:"exames_solicitados"`
	ClinicalNotes  *string     `gorm:"type:text" json:"observacoes_medicas"`
	CreatedAt      time.Time   `json:"data_cadastro"`
	UpdatedAt      time.Time   `json:"data_atualizacao"`
	Appointment    Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}
