package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a staff account. Users are never physically deleted.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username  string    `gorm:"size:80;not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Email     *string   `gorm:"size:120;uniqueIndex" json:"email"`
	Role      Role      `gorm:"size:20;not null;default:'recepcionista'" json:"tipo_usuario"`
	Active    bool      `gorm:"not null;default:true" json:"ativo"`
	CreatedAt time.Time `json:"data_cadastro"`
	UpdatedAt time.Time `json:"data_atualizacao"`
}
