package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/programamos-tech/oviler-sub000/internal/dto"
	"github.com/programamos-tech/oviler-sub000/internal/model"
	"github.com/programamos-tech/oviler-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DomicilioService groups the day's courier fees and tracks paid/unpaid state.
// "Pagado" is derived, never stored: a courier's day is settled when no fee
// remains unpaid.
type DomicilioService interface {
	ResumenRepartidores(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) ([]dto.RepartidorResumenResponse, error)
	// ResumenDesdeVentas reuses a sale set already fetched by the closing
	// pipeline.
	ResumenDesdeVentas(ventas []model.Venta) []dto.RepartidorResumenResponse
	// PagarRepartidor settles every pending fee of one courier for one day.
	// Idempotent: an already-settled day updates zero rows and succeeds.
	PagarRepartidor(ctx context.Context, sucursalID, repartidorID uuid.UUID, fecha time.Time) (*dto.DomicilioPagadoResponse, error)
	// PagarVenta settles a single sale's fee (sale-detail view).
	PagarVenta(ctx context.Context, ventaID uuid.UUID) (*dto.DomicilioPagadoResponse, error)
}

type domicilioService struct {
	ventaRepo repository.VentaRepository
	loc       *time.Location
}

func NewDomicilioService(ventaRepo repository.VentaRepository, loc *time.Location) DomicilioService {
	return &domicilioService{ventaRepo: ventaRepo, loc: loc}
}

func (s *domicilioService) ResumenRepartidores(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) ([]dto.RepartidorResumenResponse, error) {
	desde, hasta := rangoDelDia(fecha, s.loc)
	ventas, err := s.ventaRepo.ListByRango(ctx, sucursalID, desde, hasta)
	if err != nil {
		return nil, err
	}
	return s.ResumenDesdeVentas(ventas), nil
}

func (s *domicilioService) ResumenDesdeVentas(ventas []model.Venta) []dto.RepartidorResumenResponse {
	type grupo struct {
		nombre, codigo   string
		ventas           int
		total, pendiente decimal.Decimal
	}
	grupos := make(map[uuid.UUID]*grupo)

	for i := range ventas {
		v := &ventas[i]
		if !esDomicilioCobrable(v) {
			continue
		}
		g, ok := grupos[*v.RepartidorID]
		if !ok {
			g = &grupo{total: decimal.Zero, pendiente: decimal.Zero}
			if v.Repartidor != nil {
				g.nombre = v.Repartidor.Nombre
				g.codigo = v.Repartidor.Codigo
			}
			grupos[*v.RepartidorID] = g
		}
		g.ventas++
		g.total = g.total.Add(*v.CostoDomicilio)
		if !v.DomicilioPagado {
			g.pendiente = g.pendiente.Add(*v.CostoDomicilio)
		}
	}

	resumen := make([]dto.RepartidorResumenResponse, 0, len(grupos))
	for id, g := range grupos {
		resumen = append(resumen, dto.RepartidorResumenResponse{
			RepartidorID: id.String(),
			Nombre:       g.nombre,
			Codigo:       g.codigo,
			Ventas:       g.ventas,
			Total:        g.total,
			Pendiente:    g.pendiente,
			Pagado:       g.pendiente.IsZero(),
		})
	}
	// Stable display order by courier code.
	sort.Slice(resumen, func(i, j int) bool { return resumen[i].Codigo < resumen[j].Codigo })
	return resumen
}

func (s *domicilioService) PagarRepartidor(ctx context.Context, sucursalID, repartidorID uuid.UUID, fecha time.Time) (*dto.DomicilioPagadoResponse, error) {
	desde, hasta := rangoDelDia(fecha, s.loc)
	ventas, err := s.ventaRepo.ListByRango(ctx, sucursalID, desde, hasta)
	if err != nil {
		return nil, err
	}

	var pendientes []uuid.UUID
	for i := range ventas {
		v := &ventas[i]
		if esDomicilioCobrable(v) && *v.RepartidorID == repartidorID && !v.DomicilioPagado {
			pendientes = append(pendientes, v.ID)
		}
	}

	pagadoAt := time.Now().In(s.loc)
	if err := s.ventaRepo.MarcarDomiciliosPagados(ctx, pendientes, pagadoAt); err != nil {
		return nil, err
	}
	return &dto.DomicilioPagadoResponse{
		VentasActualizadas: len(pendientes),
		PagadoAt:           pagadoAt.Format(time.RFC3339),
	}, nil
}

func (s *domicilioService) PagarVenta(ctx context.Context, ventaID uuid.UUID) (*dto.DomicilioPagadoResponse, error) {
	venta, err := s.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return nil, errors.New("venta no encontrada")
	}
	if !esDomicilioCobrable(venta) {
		return nil, errors.New("la venta no tiene domicilio por pagar")
	}

	pagadoAt := time.Now().In(s.loc)
	if venta.DomicilioPagado {
		// Already settled — repeating the toggle is a no-op.
		return &dto.DomicilioPagadoResponse{VentasActualizadas: 0, PagadoAt: pagadoAt.Format(time.RFC3339)}, nil
	}
	if err := s.ventaRepo.MarcarDomicilioPagado(ctx, ventaID, pagadoAt); err != nil {
		return nil, err
	}
	return &dto.DomicilioPagadoResponse{VentasActualizadas: 1, PagadoAt: pagadoAt.Format(time.RFC3339)}, nil
}

// esDomicilioCobrable: completed, courier assigned, positive fee.
func esDomicilioCobrable(v *model.Venta) bool {
	return v.Estado == "completada" &&
		v.RepartidorID != nil &&
		v.CostoDomicilio != nil &&
		v.CostoDomicilio.IsPositive()
}
