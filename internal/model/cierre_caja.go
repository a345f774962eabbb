package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CierreCaja is the engine's sole write target: one reconciliation snapshot
// per (sucursal, fecha). Saving again for the same pair overwrites the row
// wholesale (last-write-wins upsert), it is never patched incrementally.
type CierreCaja struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cierres_sucursal_fecha"`
	// Fecha is the calendar day (store-local) the closing summarizes.
	Fecha time.Time `gorm:"type:date;not null;uniqueIndex:idx_cierres_sucursal_fecha"`

	// Expected = computed from sales and warranties; Real = counted by the
	// operator. DiferenciaX = real − esperado.
	EfectivoEsperado        decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	TransferenciaEsperada   decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	EfectivoReal            decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	TransferenciaReal       decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	DiferenciaEfectivo      decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	DiferenciaTransferencia decimal.Decimal `gorm:"type:decimal(12,0);not null"`

	TotalVentas      int             `gorm:"not null;default:0"`
	VentasFisicas    int             `gorm:"not null;default:0"`
	VentasDomicilio  int             `gorm:"not null;default:0"`
	TotalUnidades    int             `gorm:"not null;default:0"`
	FacturasAnuladas int             `gorm:"not null;default:0"`
	TotalAnulado     decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0"`
	GarantiasCount   int             `gorm:"not null;default:0"`

	// Egreso = money actually handed back to customers on refunds, kept apart
	// from the signed bucket adjustments for audit clarity.
	EgresoGarantiasEfectivo      decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0"`
	EgresoGarantiasTransferencia decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0"`

	Notas *string
	// MotivoDiferencia is mandatory whenever either diferencia is nonzero.
	MotivoDiferencia *string
	UsuarioID        uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName overrides GORM's default pluralization.
func (CierreCaja) TableName() string { return "cierres_caja" }
