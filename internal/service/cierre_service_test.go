package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/programamos-tech/oviler-sub000/internal/dto"
	"github.com/programamos-tech/oviler-sub000/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cierreFixture struct {
	ventaRepo  *fakeVentaRepo
	cierreRepo *fakeCierreRepo
	svc        CierreService
	sucursalID uuid.UUID
	usuarioID  uuid.UUID
	fecha      time.Time
}

func newCierreFixture(t *testing.T) *cierreFixture {
	t.Helper()
	ventaRepo := newFakeVentaRepo()
	cierreRepo := newFakeCierreRepo()
	loc := time.UTC

	invSvc := NewInventarioService(ventaRepo, &fakeInventarioRepo{}, loc)
	domSvc := NewDomicilioService(ventaRepo, loc)
	svc := NewCierreService(
		ventaRepo, &fakeGarantiaRepo{}, newFakeProductoRepo(), cierreRepo,
		invSvc, domSvc, nil, nil, "", loc,
	)

	return &cierreFixture{
		ventaRepo:  ventaRepo,
		cierreRepo: cierreRepo,
		svc:        svc,
		sucursalID: uuid.New(),
		usuarioID:  uuid.New(),
		fecha:      time.Date(2026, 8, 30, 0, 0, 0, 0, loc),
	}
}

func (f *cierreFixture) agregarVentaEfectivo(total int64) {
	f.ventaRepo.ventas = append(f.ventaRepo.ventas, model.Venta{
		ID: uuid.New(), SucursalID: f.sucursalID, Estado: "completada",
		MetodoPago: "efectivo", Total: decimal.NewFromInt(total),
		CreatedAt: f.fecha.Add(10 * time.Hour),
	})
}

func TestCalcularCierre_DiaSinActividad(t *testing.T) {
	f := newCierreFixture(t)

	resp, err := f.svc.CalcularCierre(context.Background(), f.sucursalID, f.fecha)
	require.NoError(t, err)

	assert.Equal(t, "borrador", resp.Estado)
	assert.Equal(t, "2026-08-30", resp.Fecha)
	assert.True(t, resp.EfectivoEsperado.IsZero())
	assert.True(t, resp.TransferenciaEsperada.IsZero())
	assert.Equal(t, 0, resp.Ventas.TotalVentas)
	assert.Equal(t, 0, resp.Garantias.Garantias)
	assert.Empty(t, resp.Repartidores)
	assert.Empty(t, resp.Inventario.Productos)
	assert.Nil(t, resp.GuardadoAt)
}

func TestCalcularCierre_DiaConVentas(t *testing.T) {
	f := newCierreFixture(t)

	// Cash sale over the counter.
	f.agregarVentaEfectivo(22500)

	// Mixed delivery sale: total 32.500 includes a 4.000 courier fee; the
	// split recorded at checkout already matches the 28.500 net.
	fee := d(4000)
	ac, at := d(20000), d(8500)
	rep := &model.Repartidor{ID: uuid.New(), Nombre: "Carlos", Codigo: "R-01"}
	f.ventaRepo.ventas = append(f.ventaRepo.ventas, model.Venta{
		ID: uuid.New(), SucursalID: f.sucursalID, Estado: "completada",
		MetodoPago: "mixto", Total: d(32500),
		MontoEfectivo: &ac, MontoTransferencia: &at,
		EsDomicilio: true, CostoDomicilio: &fee,
		RepartidorID: &rep.ID, Repartidor: rep,
		CreatedAt: f.fecha.Add(12 * time.Hour),
	})

	// A cancelled sale keeps its full total in the anulado bucket.
	f.ventaRepo.ventas = append(f.ventaRepo.ventas, model.Venta{
		ID: uuid.New(), SucursalID: f.sucursalID, Estado: "anulada",
		MetodoPago: "efectivo", Total: d(9000),
		CreatedAt: f.fecha.Add(14 * time.Hour),
	})

	resp, err := f.svc.CalcularCierre(context.Background(), f.sucursalID, f.fecha)
	require.NoError(t, err)

	assert.True(t, resp.EfectivoEsperado.Equal(d(42500)), "efectivo = %s", resp.EfectivoEsperado)
	assert.True(t, resp.TransferenciaEsperada.Equal(d(8500)))
	assert.Equal(t, 2, resp.Ventas.TotalVentas)
	assert.Equal(t, 1, resp.Ventas.VentasFisicas)
	assert.Equal(t, 1, resp.Ventas.VentasDomicilio)
	assert.Equal(t, 1, resp.Ventas.FacturasAnuladas)
	assert.True(t, resp.Ventas.TotalAnulado.Equal(d(9000)))

	require.Len(t, resp.Repartidores, 1)
	assert.True(t, resp.Repartidores[0].Pendiente.Equal(d(4000)))
}

func TestGuardarCierre_RealesPorDefecto(t *testing.T) {
	f := newCierreFixture(t)
	f.agregarVentaEfectivo(22500)

	resp, err := f.svc.GuardarCierre(context.Background(), f.sucursalID, f.usuarioID, dto.GuardarCierreRequest{
		Fecha: "2026-08-30",
	})
	require.NoError(t, err)

	assert.Equal(t, "guardado", resp.Estado)
	require.NotNil(t, resp.EfectivoReal)
	assert.True(t, resp.EfectivoReal.Equal(d(22500)))
	require.NotNil(t, resp.DiferenciaEfectivo)
	assert.True(t, resp.DiferenciaEfectivo.IsZero())
	assert.NotNil(t, resp.GuardadoAt)
	assert.Equal(t, 1, f.cierreRepo.upserts)
}

func TestGuardarCierre_DiferenciaSinMotivoRechazada(t *testing.T) {
	f := newCierreFixture(t)
	f.agregarVentaEfectivo(22500)

	contado := d(20000)
	_, err := f.svc.GuardarCierre(context.Background(), f.sucursalID, f.usuarioID, dto.GuardarCierreRequest{
		Fecha:        "2026-08-30",
		EfectivoReal: &contado,
	})
	assert.ErrorIs(t, err, ErrMotivoDiferenciaRequerido)
	assert.Equal(t, 0, f.cierreRepo.upserts)

	// A blank reason is as good as none.
	blanco := "   "
	_, err = f.svc.GuardarCierre(context.Background(), f.sucursalID, f.usuarioID, dto.GuardarCierreRequest{
		Fecha:            "2026-08-30",
		EfectivoReal:     &contado,
		MotivoDiferencia: &blanco,
	})
	assert.ErrorIs(t, err, ErrMotivoDiferenciaRequerido)

	motivo := "faltante en caja"
	resp, err := f.svc.GuardarCierre(context.Background(), f.sucursalID, f.usuarioID, dto.GuardarCierreRequest{
		Fecha:            "2026-08-30",
		EfectivoReal:     &contado,
		MotivoDiferencia: &motivo,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.DiferenciaEfectivo)
	assert.True(t, resp.DiferenciaEfectivo.Equal(d(-2500)))
}

func TestGuardarCierre_ReemplazaElMismoDia(t *testing.T) {
	f := newCierreFixture(t)
	f.agregarVentaEfectivo(10000)

	req := dto.GuardarCierreRequest{Fecha: "2026-08-30"}
	_, err := f.svc.GuardarCierre(context.Background(), f.sucursalID, f.usuarioID, req)
	require.NoError(t, err)

	// The day gets more activity, then is saved again: same row, new figures.
	f.agregarVentaEfectivo(5000)
	_, err = f.svc.GuardarCierre(context.Background(), f.sucursalID, f.usuarioID, req)
	require.NoError(t, err)

	assert.Equal(t, 2, f.cierreRepo.upserts)
	require.Len(t, f.cierreRepo.guardados, 1)

	guardado, err := f.svc.ObtenerCierre(context.Background(), f.sucursalID, f.fecha)
	require.NoError(t, err)
	assert.True(t, guardado.EfectivoEsperado.Equal(d(15000)))
}

func TestGuardarCierre_PagaRepartidoresMarcados(t *testing.T) {
	f := newCierreFixture(t)

	fee := d(4000)
	rep := &model.Repartidor{ID: uuid.New(), Nombre: "Carlos", Codigo: "R-01"}
	venta := model.Venta{
		ID: uuid.New(), SucursalID: f.sucursalID, Estado: "completada",
		MetodoPago: "efectivo", Total: d(24000),
		EsDomicilio: true, CostoDomicilio: &fee,
		RepartidorID: &rep.ID, Repartidor: rep,
		CreatedAt: f.fecha.Add(16 * time.Hour),
	}
	f.ventaRepo.ventas = append(f.ventaRepo.ventas, venta)

	_, err := f.svc.GuardarCierre(context.Background(), f.sucursalID, f.usuarioID, dto.GuardarCierreRequest{
		Fecha:               "2026-08-30",
		RepartidoresPagados: []string{rep.ID.String()},
	})
	require.NoError(t, err)

	actualizada, err := f.ventaRepo.FindByID(context.Background(), venta.ID)
	require.NoError(t, err)
	assert.True(t, actualizada.DomicilioPagado)
	assert.NotNil(t, actualizada.DomicilioPagadoAt)
}

func TestObtenerCierre_NoGuardado(t *testing.T) {
	f := newCierreFixture(t)
	_, err := f.svc.ObtenerCierre(context.Background(), f.sucursalID, f.fecha)
	assert.ErrorIs(t, err, ErrCierreNoEncontrado)
}

func TestObtenerCierre_FallaDeLecturaNoEsNoEncontrado(t *testing.T) {
	f := newCierreFixture(t)
	f.cierreRepo.findErr = errors.New("conexión perdida")

	_, err := f.svc.ObtenerCierre(context.Background(), f.sucursalID, f.fecha)
	require.Error(t, err)
	// A store failure must surface as such, never as a missing closing.
	assert.NotErrorIs(t, err, ErrCierreNoEncontrado)
}

func TestCalcularCierre_SirveBorradorCacheadoAnteFalla(t *testing.T) {
	f := newCierreFixture(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	invSvc := NewInventarioService(f.ventaRepo, &fakeInventarioRepo{}, time.UTC)
	domSvc := NewDomicilioService(f.ventaRepo, time.UTC)
	svc := NewCierreService(
		f.ventaRepo, &fakeGarantiaRepo{}, newFakeProductoRepo(), f.cierreRepo,
		invSvc, domSvc, rdb, nil, "", time.UTC,
	)

	f.agregarVentaEfectivo(22500)

	// First computation succeeds and leaves a cached draft behind.
	_, err := svc.CalcularCierre(context.Background(), f.sucursalID, f.fecha)
	require.NoError(t, err)

	// The sales store goes down: the preview still serves the cached draft.
	f.ventaRepo.listErr = errors.New("conexión perdida")
	resp, err := svc.CalcularCierre(context.Background(), f.sucursalID, f.fecha)
	require.NoError(t, err)
	assert.Equal(t, "borrador", resp.Estado)
	assert.True(t, resp.EfectivoEsperado.Equal(d(22500)))

	// Saving never settles for the cache: stale figures must not persist.
	_, err = svc.GuardarCierre(context.Background(), f.sucursalID, f.usuarioID, dto.GuardarCierreRequest{
		Fecha: "2026-08-30",
	})
	require.Error(t, err)
	assert.Equal(t, 0, f.cierreRepo.upserts)
}

func TestCalcularCierre_FallaSinBorradorCacheado(t *testing.T) {
	f := newCierreFixture(t)
	f.ventaRepo.listErr = errors.New("conexión perdida")

	// Without Redis (nil client) there is no fallback: the error surfaces.
	_, err := f.svc.CalcularCierre(context.Background(), f.sucursalID, f.fecha)
	require.Error(t, err)
}
