package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is the catalog entry. The closing engine only reads PrecioBase and
// AplicaIVA, as a fallback valuation source when a warranty has no linked
// sale item. Stock lives per-sucursal in Inventario.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Sku         string    `gorm:"uniqueIndex;not null"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	// PrecioBase is the list price before IVA, in whole pesos.
	PrecioBase decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	AplicaIVA  bool            `gorm:"not null;default:true;column:aplica_iva"`
	Activo     bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
