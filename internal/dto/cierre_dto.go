package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type GuardarCierreRequest struct {
	Fecha string `json:"fecha" validate:"required,datetime=2006-01-02"`
	// EfectivoReal / TransferenciaReal default to the computed expected
	// amounts when the operator leaves them blank.
	EfectivoReal      *decimal.Decimal `json:"efectivo_real"      validate:"omitempty"`
	TransferenciaReal *decimal.Decimal `json:"transferencia_real" validate:"omitempty"`
	MotivoDiferencia  *string          `json:"motivo_diferencia"`
	Notas             *string          `json:"notas"`
	// RepartidoresPagados lists courier ids whose day was settled in the
	// draft; their domicilio fees are marked paid after the upsert succeeds.
	RepartidoresPagados []string `json:"repartidores_pagados" validate:"omitempty,dive,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ResumenVentasResponse is the §ventas block of the closing report.
type ResumenVentasResponse struct {
	Efectivo         decimal.Decimal `json:"efectivo"`
	Transferencia    decimal.Decimal `json:"transferencia"`
	TotalVentas      int             `json:"total_ventas"`
	VentasFisicas    int             `json:"ventas_fisicas"`
	VentasDomicilio  int             `json:"ventas_domicilio"`
	FacturasAnuladas int             `json:"facturas_anuladas"`
	TotalAnulado     decimal.Decimal `json:"total_anulado"`
}

// ImpactoGarantiasResponse carries the signed bucket adjustments plus the
// non-negative egreso figures (money handed back to customers).
type ImpactoGarantiasResponse struct {
	ImpactoEfectivo      decimal.Decimal `json:"impacto_efectivo"`
	ImpactoTransferencia decimal.Decimal `json:"impacto_transferencia"`
	EgresoEfectivo       decimal.Decimal `json:"egreso_efectivo"`
	EgresoTransferencia  decimal.Decimal `json:"egreso_transferencia"`
	Garantias            int             `json:"garantias"`
}

type RepartidorResumenResponse struct {
	RepartidorID string          `json:"repartidor_id"`
	Nombre       string          `json:"nombre"`
	Codigo       string          `json:"codigo"`
	Ventas       int             `json:"ventas"`
	Total        decimal.Decimal `json:"total"`
	Pendiente    decimal.Decimal `json:"pendiente"`
	// Pagado is derived, never stored: true iff pendiente is zero.
	Pagado bool `json:"pagado"`
}

type ProductoImpactoResponse struct {
	ProductoID string          `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Cantidad   int             `json:"cantidad"`
	TotalLinea decimal.Decimal `json:"total_linea"`
	// StockRestante is the projected stock after the day's sales, floored at 0.
	StockRestante int `json:"stock_restante"`
	// EstadoStock: "Agotado" | "Stock bajo" | "En stock"
	EstadoStock string `json:"estado_stock"`
}

type ImpactoInventarioResponse struct {
	Productos     []ProductoImpactoResponse `json:"productos"`
	TotalUnidades int                       `json:"total_unidades"`
}

// CierreCajaResponse is the full closing report, both as a pre-save draft
// (estado "borrador") and as the persisted snapshot (estado "guardado").
type CierreCajaResponse struct {
	SucursalID string `json:"sucursal_id"`
	Fecha      string `json:"fecha"` // YYYY-MM-DD
	Estado     string `json:"estado"`

	EfectivoEsperado      decimal.Decimal `json:"efectivo_esperado"`
	TransferenciaEsperada decimal.Decimal `json:"transferencia_esperada"`

	EfectivoReal            *decimal.Decimal `json:"efectivo_real,omitempty"`
	TransferenciaReal       *decimal.Decimal `json:"transferencia_real,omitempty"`
	DiferenciaEfectivo      *decimal.Decimal `json:"diferencia_efectivo,omitempty"`
	DiferenciaTransferencia *decimal.Decimal `json:"diferencia_transferencia,omitempty"`

	Ventas       ResumenVentasResponse       `json:"ventas"`
	Garantias    ImpactoGarantiasResponse    `json:"garantias"`
	Repartidores []RepartidorResumenResponse `json:"repartidores"`
	Inventario   ImpactoInventarioResponse   `json:"inventario"`

	Notas            *string `json:"notas,omitempty"`
	MotivoDiferencia *string `json:"motivo_diferencia,omitempty"`
	GuardadoAt       *string `json:"guardado_at,omitempty"`
}

// CierreListItem is the abbreviated row for the closings history listing.
type CierreListItem struct {
	SucursalID              string          `json:"sucursal_id"`
	Fecha                   string          `json:"fecha"`
	EfectivoEsperado        decimal.Decimal `json:"efectivo_esperado"`
	TransferenciaEsperada   decimal.Decimal `json:"transferencia_esperada"`
	DiferenciaEfectivo      decimal.Decimal `json:"diferencia_efectivo"`
	DiferenciaTransferencia decimal.Decimal `json:"diferencia_transferencia"`
	TotalVentas             int             `json:"total_ventas"`
	GuardadoAt              string          `json:"guardado_at"`
}

type CierreListResponse struct {
	Data  []CierreListItem `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// CierreListFilter is bound from query string of GET /v1/cierres.
type CierreListFilter struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=31" validate:"min=1,max=200"`
}
