package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sghss/sghss-api/internal/models"
)

type MedicalRecords struct {
	db *gorm.DB
}

func NewMedicalRecords(db *gorm.DB) *MedicalRecords {
	return &MedicalRecords{db: db}
}

func (r *MedicalRecords) GetByID(ctx context.Context, id uuid.UUID) (*models.MedicalRecord, error) {
	var rec models.MedicalRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *MedicalRecords) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*models.MedicalRecord, error) {
	var rec models.MedicalRecord
	if err := r.db.WithContext(ctx).First(&rec, "appointment_id = ?", appointmentID).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *MedicalRecords) CreateForAppointment(ctx context.Context, rec *models.MedicalRecord) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Appointment").Create(rec).Error; err != nil {
			return err
		}
		return affected(tx.Model(&models.Appointment{}).
			Where("id = ?", rec.AppointmentID).
			Update("status", models.StatusCompleted))
	}))
}

func (r *MedicalRecords) Update(ctx context.Context, rec *models.MedicalRecord) error {
	return translate(r.db.WithContext(ctx).Omit("Appointment").Save(rec).Error)
}
