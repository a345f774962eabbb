package model

import (
	"time"

	"github.com/google/uuid"
)

// Garantia references the original sale/line of the affected product.
// Tipo: "devolucion" | "cambio" | "reparacion"
// Estado: "pendiente" | "procesada" | "rechazada"
// Only procesada rows count toward the daily closing.
type Garantia struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// SucursalID may be nil on rows created before branches existed; the
	// closing engine then falls back to the linked sale's branch.
	SucursalID  *uuid.UUID `gorm:"type:uuid;index"`
	VentaID     *uuid.UUID `gorm:"type:uuid;index"`
	VentaItemID *uuid.UUID `gorm:"type:uuid"`
	ProductoID  uuid.UUID  `gorm:"type:uuid;not null"`
	Tipo        string     `gorm:"type:varchar(20);not null"`
	// ProductoReemplazoID is set only for tipo = cambio.
	ProductoReemplazoID *uuid.UUID `gorm:"type:uuid"`
	Cantidad            int        `gorm:"not null;default:1"`
	Estado              string     `gorm:"type:varchar(20);not null;default:'pendiente'"`
	Motivo              *string
	CreatedAt           time.Time `gorm:"index"`
	UpdatedAt           time.Time

	Venta     *Venta     `gorm:"foreignKey:VentaID"`
	VentaItem *VentaItem `gorm:"foreignKey:VentaItemID"`
}
