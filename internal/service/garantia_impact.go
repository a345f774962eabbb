package service

import (
	"context"
	"time"

	"github.com/programamos-tech/oviler-sub000/internal/dto"
	"github.com/programamos-tech/oviler-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ivaFactor values a product at list price plus 19% IVA when the catalog
// flags it. The result is rounded to whole pesos before multiplying by the
// quantity.
var ivaFactor = decimal.NewFromFloat(1.19)

// calcularImpactoGarantias converts the day's processed warranties into signed
// adjustments to the efectivo/transferencia buckets.
//
// A warranty belongs to the branch when either its own sucursal_id matches or
// its linked sale's does — older rows carry no branch of their own.
func (s *cierreService) calcularImpactoGarantias(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) (dto.ImpactoGarantiasResponse, error) {
	impacto := dto.ImpactoGarantiasResponse{
		ImpactoEfectivo:      decimal.Zero,
		ImpactoTransferencia: decimal.Zero,
		EgresoEfectivo:       decimal.Zero,
		EgresoTransferencia:  decimal.Zero,
	}

	garantias, err := s.garantiaRepo.ProcesadasEnRango(ctx, desde, hasta)
	if err != nil {
		return impacto, err
	}

	delSucursal := garantias[:0:0]
	for _, g := range garantias {
		if perteneceASucursal(&g, sucursalID) {
			delSucursal = append(delSucursal, g)
		}
	}
	if len(delSucursal) == 0 {
		return impacto, nil
	}

	// One batched product fetch covers every fallback valuation and every
	// replacement product.
	productos, err := s.productosDeGarantias(ctx, delSucursal)
	if err != nil {
		return impacto, err
	}

	for i := range delSucursal {
		g := &delSucursal[i]
		impacto.Garantias++

		switch g.Tipo {
		case "devolucion":
			valor := valorGarantia(g, productos)
			ef, tr := repartirDevolucion(g, valor)
			impacto.ImpactoEfectivo = impacto.ImpactoEfectivo.Sub(ef)
			impacto.ImpactoTransferencia = impacto.ImpactoTransferencia.Sub(tr)
		case "cambio":
			// The swap's net cost or refund is treated as a cash-drawer
			// event; the original split is not reopened.
			original := valorGarantia(g, productos)
			var reemplazo decimal.Decimal
			if g.ProductoReemplazoID != nil {
				reemplazo = valorProducto(productos[*g.ProductoReemplazoID], g.Cantidad)
			}
			impacto.ImpactoEfectivo = impacto.ImpactoEfectivo.Add(reemplazo.Sub(original))
		case "reparacion":
			// No monetary effect.
		}
	}

	if impacto.ImpactoEfectivo.IsNegative() {
		impacto.EgresoEfectivo = impacto.ImpactoEfectivo.Neg()
	}
	if impacto.ImpactoTransferencia.IsNegative() {
		impacto.EgresoTransferencia = impacto.ImpactoTransferencia.Neg()
	}
	return impacto, nil
}

func perteneceASucursal(g *model.Garantia, sucursalID uuid.UUID) bool {
	if g.SucursalID != nil && *g.SucursalID == sucursalID {
		return true
	}
	return g.Venta != nil && g.Venta.SucursalID == sucursalID
}

// productosDeGarantias batch-fetches every product a warranty set can touch:
// the affected products (fallback valuation) and the replacements.
func (s *cierreService) productosDeGarantias(ctx context.Context, garantias []model.Garantia) (map[uuid.UUID]*model.Producto, error) {
	vistos := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if !vistos[id] {
			vistos[id] = true
			ids = append(ids, id)
		}
	}
	for i := range garantias {
		add(garantias[i].ProductoID)
		if garantias[i].ProductoReemplazoID != nil {
			add(*garantias[i].ProductoReemplazoID)
		}
	}

	rows, err := s.productoRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	productos := make(map[uuid.UUID]*model.Producto, len(rows))
	for i := range rows {
		productos[rows[i].ID] = &rows[i]
	}
	return productos, nil
}

// valorGarantia prefers the original sale item's recorded price and quantity;
// without a linked line it falls back to the catalog price (plus IVA when
// flagged) times the warranty's own quantity.
func valorGarantia(g *model.Garantia, productos map[uuid.UUID]*model.Producto) decimal.Decimal {
	if g.VentaItem != nil {
		cantidad := g.VentaItem.Cantidad
		if cantidad <= 0 {
			cantidad = g.Cantidad
		}
		return g.VentaItem.PrecioUnitario.Mul(decimal.NewFromInt(int64(cantidad)))
	}
	return valorProducto(productos[g.ProductoID], g.Cantidad)
}

func valorProducto(p *model.Producto, cantidad int) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	precio := p.PrecioBase
	if p.AplicaIVA {
		precio = precio.Mul(ivaFactor).Round(0)
	}
	return precio.Mul(decimal.NewFromInt(int64(cantidad)))
}

// repartirDevolucion decides which bucket(s) a refund comes out of, using the
// original sale's payment method. Mixed sales reuse the sale's recorded gross
// split ratio; a degenerate split refunds from efectivo.
func repartirDevolucion(g *model.Garantia, valor decimal.Decimal) (efectivo, transferencia decimal.Decimal) {
	if g.Venta == nil {
		return valor, decimal.Zero
	}
	switch g.Venta.MetodoPago {
	case "transferencia":
		return decimal.Zero, valor
	case "mixto":
		return repartirProporcional(valor, montoODefecto(g.Venta.MontoEfectivo), montoODefecto(g.Venta.MontoTransferencia))
	default:
		return valor, decimal.Zero
	}
}
