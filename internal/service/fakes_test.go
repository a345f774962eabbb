package service

import (
	"context"
	"errors"
	"time"

	"github.com/programamos-tech/oviler-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes shared by the service tests.

type fakeVentaRepo struct {
	ventas []model.Venta
	items  map[uuid.UUID][]model.VentaItem // keyed by venta id
	// listErr forces ListByRango to fail, simulating a store outage.
	listErr error
}

func newFakeVentaRepo() *fakeVentaRepo {
	return &fakeVentaRepo{items: make(map[uuid.UUID][]model.VentaItem)}
}

func (r *fakeVentaRepo) ListByRango(_ context.Context, sucursalID uuid.UUID, desde, hasta time.Time) ([]model.Venta, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []model.Venta
	for _, v := range r.ventas {
		if v.SucursalID == sucursalID && !v.CreatedAt.Before(desde) && !v.CreatedAt.After(hasta) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeVentaRepo) ItemsPorVentas(_ context.Context, ventaIDs []uuid.UUID) ([]model.VentaItem, error) {
	var out []model.VentaItem
	for _, id := range ventaIDs {
		out = append(out, r.items[id]...)
	}
	return out, nil
}

func (r *fakeVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	for i := range r.ventas {
		if r.ventas[i].ID == id {
			return &r.ventas[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeVentaRepo) MarcarDomiciliosPagados(_ context.Context, ventaIDs []uuid.UUID, pagadoAt time.Time) error {
	for _, id := range ventaIDs {
		for i := range r.ventas {
			if r.ventas[i].ID == id {
				r.ventas[i].DomicilioPagado = true
				at := pagadoAt
				r.ventas[i].DomicilioPagadoAt = &at
			}
		}
	}
	return nil
}

func (r *fakeVentaRepo) MarcarDomicilioPagado(ctx context.Context, ventaID uuid.UUID, pagadoAt time.Time) error {
	return r.MarcarDomiciliosPagados(ctx, []uuid.UUID{ventaID}, pagadoAt)
}

type fakeGarantiaRepo struct {
	garantias []model.Garantia
}

func (r *fakeGarantiaRepo) ProcesadasEnRango(_ context.Context, desde, hasta time.Time) ([]model.Garantia, error) {
	var out []model.Garantia
	for _, g := range r.garantias {
		if g.Estado == "procesada" && !g.CreatedAt.Before(desde) && !g.CreatedAt.After(hasta) {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeProductoRepo struct {
	productos map[uuid.UUID]model.Producto
}

func newFakeProductoRepo() *fakeProductoRepo {
	return &fakeProductoRepo{productos: make(map[uuid.UUID]model.Producto)}
}

func (r *fakeProductoRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Producto, error) {
	var out []model.Producto
	for _, id := range ids {
		if p, ok := r.productos[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeInventarioRepo struct {
	niveles []model.Inventario
}

func (r *fakeInventarioRepo) PorSucursalYProductos(_ context.Context, sucursalID uuid.UUID, productoIDs []uuid.UUID) ([]model.Inventario, error) {
	pedido := make(map[uuid.UUID]bool, len(productoIDs))
	for _, id := range productoIDs {
		pedido[id] = true
	}
	var out []model.Inventario
	for _, n := range r.niveles {
		if n.SucursalID == sucursalID && pedido[n.ProductoID] {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeCierreRepo struct {
	guardados map[string]*model.CierreCaja // keyed by sucursal|fecha
	upserts   int
	// findErr forces FindBySucursalYFecha to fail with a non-miss error.
	findErr error
}

func newFakeCierreRepo() *fakeCierreRepo {
	return &fakeCierreRepo{guardados: make(map[string]*model.CierreCaja)}
}

func cierreKey(sucursalID uuid.UUID, fecha time.Time) string {
	return sucursalID.String() + "|" + fecha.Format("2006-01-02")
}

func (r *fakeCierreRepo) Upsert(_ context.Context, c *model.CierreCaja) error {
	r.upserts++
	c.UpdatedAt = time.Now()
	copia := *c
	r.guardados[cierreKey(c.SucursalID, c.Fecha)] = &copia
	return nil
}

func (r *fakeCierreRepo) FindBySucursalYFecha(_ context.Context, sucursalID uuid.UUID, fecha time.Time) (*model.CierreCaja, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.guardados[cierreKey(sucursalID, fecha)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeCierreRepo) List(_ context.Context, sucursalID uuid.UUID, page, limit int) ([]model.CierreCaja, int64, error) {
	var out []model.CierreCaja
	for _, c := range r.guardados {
		if c.SucursalID == sucursalID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}
