package model

import (
	"time"

	"github.com/google/uuid"
)

// Repartidor is a delivery courier. Codigo drives display ordering in the
// payout summary.
type Repartidor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Codigo    string    `gorm:"uniqueIndex;not null"`
	Telefono  *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralization (repartidors → repartidores).
func (Repartidor) TableName() string { return "repartidores" }
