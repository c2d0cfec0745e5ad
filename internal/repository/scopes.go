package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/sghss/sghss-api/pkg/pagination"
)

// ActiveOnly filters soft-deleted rows out.
func ActiveOnly(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

func Paginate(p pagination.Params) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(p.PerPage).Offset(p.Offset())
	}
}

// PatientSearch matches term as a substring of the name or the CPF.
func PatientSearch(term string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" {
			return db
		}
		like := "%" + escapeLike(term) + "%"
		return db.Where("(name ILIKE ? OR cpf ILIKE ?)", like, like)
	}
}

func AppointmentFilters(f AppointmentFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.PatientID != nil {
			db = db.Where("patient_id = ?", *f.PatientID)
		}
		if f.ProviderID != nil {
			db = db.Where("provider_id = ?", *f.ProviderID)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.From != nil {
			db = db.Where("scheduled_at >= ?", *f.From)
		}
		if f.Until != nil {
			db = db.Where("scheduled_at < ?", *f.Until)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
