package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sghss/sghss-api/internal/models"
)

type Appointments struct {
	db *gorm.DB
}

func NewAppointments(db *gorm.DB) *Appointments {
	return &Appointments{db: db}
}

func (r *Appointments) Create(ctx context.Context, a *models.Appointment) error {
	return translate(r.db.WithContext(ctx).Omit("Patient", "Provider").Create(a).Error)
}

func (r *Appointments) GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *Appointments) List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, int64, error) {
	var appts []models.Appointment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Appointment{}).Scopes(AppointmentFilters(f)).
		Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	err := query.Scopes(Paginate(f.Page)).
		Order("scheduled_at ASC").Order("id ASC").
		Find(&appts).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return appts, total, nil
}

func (r *Appointments) UpdateStatus(ctx context.Context, id uuid.UUID, status models.AppointmentStatus) error {
	return affected(r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("status", status))
}
