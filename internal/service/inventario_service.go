package service

import (
	"context"
	"sort"
	"time"

	"github.com/programamos-tech/oviler-sub000/internal/dto"
	"github.com/programamos-tech/oviler-sub000/internal/model"
	"github.com/programamos-tech/oviler-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock status labels, in classification priority order.
const (
	EstadoAgotado   = "Agotado"
	EstadoStockBajo = "Stock bajo"
	EstadoEnStock   = "En stock"
)

// InventarioService projects the day's sold line items onto current stock
// levels: per-product sold quantity, discounted revenue, stock-after-sale and
// alert status.
type InventarioService interface {
	// ProyectarImpacto is the standalone view: it re-queries the day's sales.
	ProyectarImpacto(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) (*dto.ImpactoInventarioResponse, error)
	// ProyectarDesdeItems reuses line items already fetched by the closing
	// pipeline, avoiding a second pass over the sales store.
	ProyectarDesdeItems(ctx context.Context, sucursalID uuid.UUID, items []model.VentaItem) (*dto.ImpactoInventarioResponse, error)
}

type inventarioService struct {
	ventaRepo repository.VentaRepository
	invRepo   repository.InventarioRepository
	loc       *time.Location
}

func NewInventarioService(ventaRepo repository.VentaRepository, invRepo repository.InventarioRepository, loc *time.Location) InventarioService {
	return &inventarioService{ventaRepo: ventaRepo, invRepo: invRepo, loc: loc}
}

func (s *inventarioService) ProyectarImpacto(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) (*dto.ImpactoInventarioResponse, error) {
	desde, hasta := rangoDelDia(fecha, s.loc)
	ventas, err := s.ventaRepo.ListByRango(ctx, sucursalID, desde, hasta)
	if err != nil {
		return nil, err
	}

	var completadaIDs []uuid.UUID
	for _, v := range ventas {
		if v.Estado == "completada" {
			completadaIDs = append(completadaIDs, v.ID)
		}
	}
	items, err := s.ventaRepo.ItemsPorVentas(ctx, completadaIDs)
	if err != nil {
		return nil, err
	}
	return s.ProyectarDesdeItems(ctx, sucursalID, items)
}

func (s *inventarioService) ProyectarDesdeItems(ctx context.Context, sucursalID uuid.UUID, items []model.VentaItem) (*dto.ImpactoInventarioResponse, error) {
	type acumulado struct {
		nombre   string
		cantidad int
		total    decimal.Decimal
	}
	porProducto := make(map[uuid.UUID]*acumulado)
	var productoIDs []uuid.UUID

	for i := range items {
		item := &items[i]
		acc, ok := porProducto[item.ProductoID]
		if !ok {
			acc = &acumulado{total: decimal.Zero}
			if item.Producto != nil {
				acc.nombre = item.Producto.Nombre
			}
			porProducto[item.ProductoID] = acc
			productoIDs = append(productoIDs, item.ProductoID)
		}
		acc.cantidad += item.Cantidad
		acc.total = acc.total.Add(totalLinea(item))
	}

	niveles, err := s.invRepo.PorSucursalYProductos(ctx, sucursalID, productoIDs)
	if err != nil {
		return nil, err
	}
	stock := make(map[uuid.UUID]model.Inventario, len(niveles))
	for _, n := range niveles {
		stock[n.ProductoID] = n
	}

	resp := &dto.ImpactoInventarioResponse{Productos: []dto.ProductoImpactoResponse{}}
	for _, id := range productoIDs {
		acc := porProducto[id]
		nivel := stock[id] // zero value when the branch carries no row

		restante := nivel.Cantidad - acc.cantidad
		if restante < 0 {
			restante = 0
		}
		estado := EstadoEnStock
		switch {
		case restante == 0:
			estado = EstadoAgotado
		case nivel.StockMinimo > 0 && restante <= nivel.StockMinimo:
			estado = EstadoStockBajo
		}

		resp.Productos = append(resp.Productos, dto.ProductoImpactoResponse{
			ProductoID:    id.String(),
			Nombre:        acc.nombre,
			Cantidad:      acc.cantidad,
			TotalLinea:    acc.total,
			StockRestante: restante,
			EstadoStock:   estado,
		})
		resp.TotalUnidades += acc.cantidad
	}

	sort.SliceStable(resp.Productos, func(i, j int) bool {
		return resp.Productos[i].TotalLinea.GreaterThan(resp.Productos[j].TotalLinea)
	})
	return resp, nil
}

// totalLinea applies the percent discount first, then the flat one, floors at
// zero and rounds to whole pesos. A line can never show negative revenue.
func totalLinea(item *model.VentaItem) decimal.Decimal {
	cien := decimal.NewFromInt(100)
	bruto := item.PrecioUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad)))
	conPorcentaje := bruto.Mul(cien.Sub(item.DescuentoPorcentaje)).Div(cien)
	neto := conPorcentaje.Sub(item.DescuentoMonto)
	if neto.IsNegative() {
		neto = decimal.Zero
	}
	return neto.Round(0)
}
