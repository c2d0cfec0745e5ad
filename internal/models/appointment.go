package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Modality string

const (
	ModalityInPerson Modality = "presencial"
	ModalityRemote   Modality = "telemedicina"
)

func ParseModality(s string) (Modality, error) {
	switch m := Modality(s); m {
	case ModalityInPerson, ModalityRemote:
		return m, nil
	}
	return "", fmt.Errorf("tipo_consulta must be 'presencial' or 'telemedicina', got %q", s)
}

// AppointmentStatus is validated on write only; rows written by older
// clients may carry other values.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "agendada"
	StatusCompleted AppointmentStatus = "realizada"
	StatusCancelled AppointmentStatus = "cancelada"
)

func ParseStatus(s string) (AppointmentStatus, error) {
	switch st := AppointmentStatus(s); st {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("status must be 'agendada', 'realizada' or 'cancelada', got %q", s)
}

// Appointment has no overlap constraint per provider.
type Appointment struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PatientID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"paciente_id"`
	ProviderID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"medico_id"`
	ScheduledAt time.Time         `gorm:"not null;index" json:"data_consulta"`
	Modality    Modality          `gorm:"size:20;not null;default:'presencial'" json:"tipo_consulta"`
	Status      AppointmentStatus `gorm:"size:20;not null;default:'agendada';index" json:"status"`
	Notes       *string           `gorm:"type:text" json:"observacoes"`
	CreatedAt   time.Time         `json:"data_cadastro"`
	UpdatedAt   time.Time         `json:"data_atualizacao"`
	Patient     Patient           `gorm:"foreignKey:PatientID" json:"-"`
	Provider    User              `gorm:"foreignKey:ProviderID" json:"-"`
}
