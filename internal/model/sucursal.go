package model

import (
	"time"

	"github.com/google/uuid"
)

// Sucursal is a physical store location. Every aggregation in the closing
// engine is scoped to exactly one sucursal.
type Sucursal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Codigo    string    `gorm:"uniqueIndex;not null"`
	Direccion *string
	Activa    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralization (sucursals → sucursales).
func (Sucursal) TableName() string { return "sucursales" }
