package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Patient is soft-deleted by clearing Active. Inactive patients stay readable
// by id but are hidden from listings and cannot receive appointments.
type Patient struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string          `gorm:"size:120;not null;index" json:"nome"`
	CPF       string          `gorm:"size:11;not null;index" json:"cpf"`
	BirthDate *datatypes.Date `gorm:"type:date" json:"data_nascimento"`
	Address   *string         `gorm:"size:200" json:"endereco"`
	Phone     *string         `gorm:"size:20" json:"telefone"`
	Email     *string         `gorm:"size:120;index" json:"email"`
	Active    bool            `gorm:"not null;default:true;index" json:"ativo"`
	CreatedAt time.Time       `json:"data_cadastro"`
	UpdatedAt time.Time       `json:"data_atualizacao"`
}
