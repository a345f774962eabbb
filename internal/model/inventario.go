package model

import (
	"time"

	"github.com/google/uuid"
)

// Inventario tracks stock per (sucursal, producto). The closing engine only
// reads it to project stock-after-sale; adjustments happen elsewhere.
type Inventario struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventario_sucursal_producto"`
	ProductoID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventario_sucursal_producto"`
	Cantidad    int       `gorm:"not null;default:0"`
	StockMinimo int       `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization.
func (Inventario) TableName() string { return "inventarios" }
