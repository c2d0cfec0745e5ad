package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sghss/sghss-api/internal/models"
)

type Patients struct {
	db *gorm.DB
}

func NewPatients(db *gorm.DB) *Patients {
	return &Patients{db: db}
}

func (r *Patients) Create(ctx context.Context, p *models.Patient) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *Patients) GetByID(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	var p models.Patient
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *Patients) ActiveCPFTaken(ctx context.Context, cpf string, exclude uuid.UUID) (bool, error) {
	return r.activeTaken(ctx, "lower(cpf) = lower(?)", cpf, exclude)
}

func (r *Patients) ActiveEmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	return r.activeTaken(ctx, "lower(email) = lower(?)", email, exclude)
}

func (r *Patients) activeTaken(ctx context.Context, cond string, value string, exclude uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Patient{}).Scopes(ActiveOnly).Where(cond, value)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, translate(err)
}

func (r *Patients) Update(ctx context.Context, p *models.Patient) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r *Patients) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return affected(r.db.WithContext(ctx).Model(&models.Patient{}).
		Where("id = ?", id).
		Update("active", active))
}

func (r *Patients) Search(ctx context.Context, f PatientFilter) ([]models.Patient, int64, error) {
	var patients []models.Patient
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Patient{}).
		Scopes(ActiveOnly, PatientSearch(f.Search)).
		Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	err := query.Scopes(Paginate(f.Page)).
		Order("name ASC").Order("id ASC").
		Find(&patients).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return patients, total, nil
}
