package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is immutable once completada, except for the domicilio-paid flag.
// Estado: "pendiente" | "completada" | "anulada" | "preparando" | "en_camino" | "entregada"
// MetodoPago: "efectivo" | "transferencia" | "mixto"
type Venta struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID uuid.UUID `gorm:"type:uuid;not null;index:idx_ventas_sucursal_fecha"`
	UsuarioID  uuid.UUID `gorm:"type:uuid;not null"`
	Estado     string    `gorm:"type:varchar(20);not null;default:'pendiente'"`
	MetodoPago string    `gorm:"type:varchar(20);not null;column:metodo_pago"`
	// Total in whole pesos. For metodo_pago = mixto the raw split entered at
	// checkout is kept in MontoEfectivo / MontoTransferencia; their sum may
	// drift from the net amount when a costo_domicilio is added later.
	Total              decimal.Decimal  `gorm:"type:decimal(12,0);not null"`
	MontoEfectivo      *decimal.Decimal `gorm:"type:decimal(12,0)"`
	MontoTransferencia *decimal.Decimal `gorm:"type:decimal(12,0)"`
	// Domicilio: the courier fee passes through the store, it is not revenue.
	EsDomicilio       bool             `gorm:"not null;default:false"`
	CostoDomicilio    *decimal.Decimal `gorm:"type:decimal(12,0)"`
	RepartidorID      *uuid.UUID       `gorm:"type:uuid;index"`
	DomicilioPagado   bool             `gorm:"not null;default:false"`
	DomicilioPagadoAt *time.Time
	Notas             *string
	CreatedAt         time.Time `gorm:"index:idx_ventas_sucursal_fecha"`
	UpdatedAt         time.Time

	Items      []VentaItem `gorm:"foreignKey:VentaID"`
	Repartidor *Repartidor `gorm:"foreignKey:RepartidorID"`
}

// VentaItem is one line of a sale. Immutable.
// Discounts compose percent-first, then flat: the line total is
// round(max(0, cantidad*precio*(1-pct/100) - descuento_monto)).
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,0);not null"`
	// DescuentoPorcentaje 0–100.
	DescuentoPorcentaje decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DescuentoMonto      decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0"`
	CreatedAt           time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
