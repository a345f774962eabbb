package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/programamos-tech/oviler-sub000/internal/dto"
	"github.com/programamos-tech/oviler-sub000/internal/model"
	"github.com/programamos-tech/oviler-sub000/internal/repository"
	"github.com/programamos-tech/oviler-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrMotivoDiferenciaRequerido rejects a save whose counted amounts differ
// from the expected ones without an explanation. Recoverable: the operator
// fills in the reason and retries.
var ErrMotivoDiferenciaRequerido = errors.New("hay diferencia entre lo esperado y lo contado: indique el motivo")

// ErrGuardadoEnCurso rejects a save while another one for the same branch and
// date is still in flight.
var ErrGuardadoEnCurso = errors.New("ya hay un guardado en curso para esta fecha")

// ErrCierreNoEncontrado means no closing was ever saved for that branch-day.
var ErrCierreNoEncontrado = errors.New("no hay cierre guardado para esa fecha")

// CierreService reconciles one branch-day into a single auditable report:
// recorded sales plus warranty adjustments become the expected amounts, the
// operator's count becomes the actual ones, and the snapshot is upserted on
// (sucursal, fecha).
type CierreService interface {
	// CalcularCierre builds the pre-save draft. A day with no activity yields
	// an all-zero report, not an error.
	CalcularCierre(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) (*dto.CierreCajaResponse, error)
	// GuardarCierre recomputes the draft, applies the operator's counted
	// amounts and persists. Courier payouts marked in the draft are applied
	// only after the upsert succeeds.
	GuardarCierre(ctx context.Context, sucursalID, usuarioID uuid.UUID, req dto.GuardarCierreRequest) (*dto.CierreCajaResponse, error)
	ObtenerCierre(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) (*dto.CierreCajaResponse, error)
	ListarCierres(ctx context.Context, sucursalID uuid.UUID, filter dto.CierreListFilter) (*dto.CierreListResponse, error)
}

type cierreService struct {
	ventaRepo    repository.VentaRepository
	garantiaRepo repository.GarantiaRepository
	productoRepo repository.ProductoRepository
	cierreRepo   repository.CierreRepository
	inventario   InventarioService
	domicilios   DomicilioService
	// rdb guards concurrent saves and caches the day's draft, served back
	// when recomputation fails; nil disables both (unit tests).
	rdb *redis.Client
	// dispatcher mails the closing summary after a save; nil disables it.
	dispatcher   *worker.Dispatcher
	resumenEmail string
	loc          *time.Location
}

func NewCierreService(
	ventaRepo repository.VentaRepository,
	garantiaRepo repository.GarantiaRepository,
	productoRepo repository.ProductoRepository,
	cierreRepo repository.CierreRepository,
	inventario InventarioService,
	domicilios DomicilioService,
	rdb *redis.Client,
	dispatcher *worker.Dispatcher,
	resumenEmail string,
	loc *time.Location,
) CierreService {
	return &cierreService{
		ventaRepo:    ventaRepo,
		garantiaRepo: garantiaRepo,
		productoRepo: productoRepo,
		cierreRepo:   cierreRepo,
		inventario:   inventario,
		domicilios:   domicilios,
		rdb:          rdb,
		dispatcher:   dispatcher,
		resumenEmail: resumenEmail,
		loc:          loc,
	}
}

// rangoDelDia returns the store-local bounds of a calendar day:
// 00:00:00.000 through 23:59:59.999.
func rangoDelDia(fecha time.Time, loc *time.Location) (time.Time, time.Time) {
	desde := time.Date(fecha.Year(), fecha.Month(), fecha.Day(), 0, 0, 0, 0, loc)
	hasta := time.Date(fecha.Year(), fecha.Month(), fecha.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return desde, hasta
}

// ── CalcularCierre ────────────────────────────────────────────────────────────
// Sequential two-phase read plan: the sale fetch must land first, because the
// line-item query is scoped by the sale-id set it produced. Warranty, product
// and inventory reads are each batched by id set.

func (s *cierreService) CalcularCierre(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) (*dto.CierreCajaResponse, error) {
	resp, err := s.calcularCierre(ctx, sucursalID, fecha)
	if err != nil {
		// A store hiccup must not blank the closing screen: serve the last
		// cached draft of the same day when there is one.
		if cached := s.leerBorrador(ctx, sucursalID, fecha); cached != nil {
			log.Warn().Err(err).
				Str("sucursal_id", sucursalID.String()).
				Str("fecha", fecha.Format("2006-01-02")).
				Msg("cierre recalculado desde el borrador cacheado")
			return cached, nil
		}
		return nil, err
	}
	return resp, nil
}

func (s *cierreService) calcularCierre(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) (*dto.CierreCajaResponse, error) {
	desde, hasta := rangoDelDia(fecha, s.loc)

	ventas, err := s.ventaRepo.ListByRango(ctx, sucursalID, desde, hasta)
	if err != nil {
		return nil, fmt.Errorf("consultando ventas del día: %w", err)
	}

	resumen, completadaIDs := resumirVentas(ventas)

	items, err := s.ventaRepo.ItemsPorVentas(ctx, completadaIDs)
	if err != nil {
		return nil, fmt.Errorf("consultando items del día: %w", err)
	}

	garantias, err := s.calcularImpactoGarantias(ctx, sucursalID, desde, hasta)
	if err != nil {
		return nil, fmt.Errorf("consultando garantías del día: %w", err)
	}

	inventario, err := s.inventario.ProyectarDesdeItems(ctx, sucursalID, items)
	if err != nil {
		return nil, fmt.Errorf("proyectando inventario: %w", err)
	}

	resp := &dto.CierreCajaResponse{
		SucursalID:            sucursalID.String(),
		Fecha:                 fecha.Format("2006-01-02"),
		Estado:                "borrador",
		EfectivoEsperado:      resumen.Efectivo.Add(garantias.ImpactoEfectivo),
		TransferenciaEsperada: resumen.Transferencia.Add(garantias.ImpactoTransferencia),
		Ventas:                resumen,
		Garantias:             garantias,
		Repartidores:          s.domicilios.ResumenDesdeVentas(ventas),
		Inventario:            *inventario,
	}

	s.cacheBorrador(ctx, resp)
	return resp, nil
}

// resumirVentas partitions a day's sales into completadas and anuladas and
// accumulates the per-method buckets. Cancelled sales keep their full total:
// they never net-settled, so no domicilio fee is subtracted from them.
func resumirVentas(ventas []model.Venta) (dto.ResumenVentasResponse, []uuid.UUID) {
	res := dto.ResumenVentasResponse{
		Efectivo:      decimal.Zero,
		Transferencia: decimal.Zero,
		TotalAnulado:  decimal.Zero,
	}
	var completadaIDs []uuid.UUID

	for i := range ventas {
		v := &ventas[i]
		switch v.Estado {
		case "completada":
			neto := v.Total.Sub(montoODefecto(v.CostoDomicilio))
			ef, tr := RepartirPago(neto, v.MetodoPago, montoODefecto(v.MontoEfectivo), montoODefecto(v.MontoTransferencia))
			res.Efectivo = res.Efectivo.Add(ef)
			res.Transferencia = res.Transferencia.Add(tr)
			res.TotalVentas++
			if v.EsDomicilio {
				res.VentasDomicilio++
			} else {
				res.VentasFisicas++
			}
			completadaIDs = append(completadaIDs, v.ID)
		case "anulada":
			res.FacturasAnuladas++
			res.TotalAnulado = res.TotalAnulado.Add(v.Total)
		}
	}
	return res, completadaIDs
}

// ── GuardarCierre ─────────────────────────────────────────────────────────────

func (s *cierreService) GuardarCierre(ctx context.Context, sucursalID, usuarioID uuid.UUID, req dto.GuardarCierreRequest) (*dto.CierreCajaResponse, error) {
	fecha, err := time.ParseInLocation("2006-01-02", req.Fecha, s.loc)
	if err != nil {
		return nil, fmt.Errorf("fecha inválida: %w", err)
	}

	unlock, err := s.lockGuardado(ctx, sucursalID, req.Fecha)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Always a fresh snapshot, never the cached draft — stale figures must
	// not be persisted.
	draft, err := s.calcularCierre(ctx, sucursalID, fecha)
	if err != nil {
		return nil, err
	}

	efectivoReal := draft.EfectivoEsperado
	if req.EfectivoReal != nil {
		efectivoReal = req.EfectivoReal.Round(0)
	}
	transferenciaReal := draft.TransferenciaEsperada
	if req.TransferenciaReal != nil {
		transferenciaReal = req.TransferenciaReal.Round(0)
	}

	difEfectivo := efectivoReal.Sub(draft.EfectivoEsperado)
	difTransferencia := transferenciaReal.Sub(draft.TransferenciaEsperada)
	if !difEfectivo.IsZero() || !difTransferencia.IsZero() {
		if req.MotivoDiferencia == nil || strings.TrimSpace(*req.MotivoDiferencia) == "" {
			return nil, ErrMotivoDiferenciaRequerido
		}
	}

	cierre := &model.CierreCaja{
		SucursalID:                   sucursalID,
		Fecha:                        fecha,
		EfectivoEsperado:             draft.EfectivoEsperado,
		TransferenciaEsperada:        draft.TransferenciaEsperada,
		EfectivoReal:                 efectivoReal,
		TransferenciaReal:            transferenciaReal,
		DiferenciaEfectivo:           difEfectivo,
		DiferenciaTransferencia:      difTransferencia,
		TotalVentas:                  draft.Ventas.TotalVentas,
		VentasFisicas:                draft.Ventas.VentasFisicas,
		VentasDomicilio:              draft.Ventas.VentasDomicilio,
		TotalUnidades:                draft.Inventario.TotalUnidades,
		FacturasAnuladas:             draft.Ventas.FacturasAnuladas,
		TotalAnulado:                 draft.Ventas.TotalAnulado,
		GarantiasCount:               draft.Garantias.Garantias,
		EgresoGarantiasEfectivo:      draft.Garantias.EgresoEfectivo,
		EgresoGarantiasTransferencia: draft.Garantias.EgresoTransferencia,
		Notas:                        req.Notas,
		MotivoDiferencia:             req.MotivoDiferencia,
		UsuarioID:                    usuarioID,
	}
	if err := s.cierreRepo.Upsert(ctx, cierre); err != nil {
		// The draft stays cached in Redis so the operator can retry the save
		// without recomputation.
		return nil, fmt.Errorf("guardando cierre: %w", err)
	}

	// Courier payouts run after the snapshot is safe. Each toggle is
	// idempotent, so a retry after a partial failure settles only what is
	// still pending.
	for _, idStr := range req.RepartidoresPagados {
		repartidorID, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		if _, err := s.domicilios.PagarRepartidor(ctx, sucursalID, repartidorID, fecha); err != nil {
			log.Warn().Err(err).
				Str("sucursal_id", sucursalID.String()).
				Str("repartidor_id", idStr).
				Str("fecha", req.Fecha).
				Msg("pago de repartidor no aplicado")
		}
	}

	guardadoAt := time.Now().In(s.loc).Format(time.RFC3339)
	draft.Estado = "guardado"
	draft.EfectivoReal = &efectivoReal
	draft.TransferenciaReal = &transferenciaReal
	draft.DiferenciaEfectivo = &difEfectivo
	draft.DiferenciaTransferencia = &difTransferencia
	draft.Notas = req.Notas
	draft.MotivoDiferencia = req.MotivoDiferencia
	draft.GuardadoAt = &guardadoAt

	s.enviarResumen(ctx, draft)
	return draft, nil
}

// ── Lecturas sobre cierres guardados ─────────────────────────────────────────

func (s *cierreService) ObtenerCierre(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) (*dto.CierreCajaResponse, error) {
	c, err := s.cierreRepo.FindBySucursalYFecha(ctx, sucursalID, fecha)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCierreNoEncontrado
	}
	if err != nil {
		return nil, fmt.Errorf("consultando cierre guardado: %w", err)
	}
	return cierreToResponse(c), nil
}

func (s *cierreService) ListarCierres(ctx context.Context, sucursalID uuid.UUID, filter dto.CierreListFilter) (*dto.CierreListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 31
	}
	cierres, total, err := s.cierreRepo.List(ctx, sucursalID, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CierreListItem, 0, len(cierres))
	for i := range cierres {
		c := &cierres[i]
		items = append(items, dto.CierreListItem{
			SucursalID:              c.SucursalID.String(),
			Fecha:                   c.Fecha.Format("2006-01-02"),
			EfectivoEsperado:        c.EfectivoEsperado,
			TransferenciaEsperada:   c.TransferenciaEsperada,
			DiferenciaEfectivo:      c.DiferenciaEfectivo,
			DiferenciaTransferencia: c.DiferenciaTransferencia,
			TotalVentas:             c.TotalVentas,
			GuardadoAt:              c.UpdatedAt.Format(time.RFC3339),
		})
	}
	return &dto.CierreListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// cierreToResponse maps a persisted snapshot back into the report shape. The
// per-courier and per-product breakdowns are not persisted; only the summary
// figures survive a save.
func cierreToResponse(c *model.CierreCaja) *dto.CierreCajaResponse {
	guardadoAt := c.UpdatedAt.Format(time.RFC3339)
	return &dto.CierreCajaResponse{
		SucursalID:              c.SucursalID.String(),
		Fecha:                   c.Fecha.Format("2006-01-02"),
		Estado:                  "guardado",
		EfectivoEsperado:        c.EfectivoEsperado,
		TransferenciaEsperada:   c.TransferenciaEsperada,
		EfectivoReal:            &c.EfectivoReal,
		TransferenciaReal:       &c.TransferenciaReal,
		DiferenciaEfectivo:      &c.DiferenciaEfectivo,
		DiferenciaTransferencia: &c.DiferenciaTransferencia,
		Ventas: dto.ResumenVentasResponse{
			// The per-bucket sales totals before warranty adjustments are not
			// persisted; only the reconciled figures above survive a save.
			Efectivo:         decimal.Zero,
			Transferencia:    decimal.Zero,
			TotalVentas:      c.TotalVentas,
			VentasFisicas:    c.VentasFisicas,
			VentasDomicilio:  c.VentasDomicilio,
			FacturasAnuladas: c.FacturasAnuladas,
			TotalAnulado:     c.TotalAnulado,
		},
		Garantias: dto.ImpactoGarantiasResponse{
			ImpactoEfectivo:      decimal.Zero,
			ImpactoTransferencia: decimal.Zero,
			EgresoEfectivo:       c.EgresoGarantiasEfectivo,
			EgresoTransferencia:  c.EgresoGarantiasTransferencia,
			Garantias:            c.GarantiasCount,
		},
		Repartidores: []dto.RepartidorResumenResponse{},
		Inventario: dto.ImpactoInventarioResponse{
			Productos:     []dto.ProductoImpactoResponse{},
			TotalUnidades: c.TotalUnidades,
		},
		Notas:            c.Notas,
		MotivoDiferencia: c.MotivoDiferencia,
		GuardadoAt:       &guardadoAt,
	}
}

// ── Redis: lock de guardado y cache del borrador ─────────────────────────────

const (
	lockGuardadoTTL  = 30 * time.Second
	borradorCacheTTL = time.Hour
)

// lockGuardado takes a short-lived per-(sucursal, fecha) lock so two saves for
// the same day cannot interleave. Without Redis it degrades to a no-op.
func (s *cierreService) lockGuardado(ctx context.Context, sucursalID uuid.UUID, fecha string) (func(), error) {
	if s.rdb == nil {
		return func() {}, nil
	}
	key := fmt.Sprintf("cierre:guardando:%s:%s", sucursalID, fecha)
	ok, err := s.rdb.SetNX(ctx, key, "1", lockGuardadoTTL).Result()
	if err != nil {
		// Redis being down must not block closings.
		log.Warn().Err(err).Msg("lock de guardado no disponible")
		return func() {}, nil
	}
	if !ok {
		return nil, ErrGuardadoEnCurso
	}
	return func() { s.rdb.Del(context.Background(), key) }, nil
}

func claveBorrador(sucursalID, fecha string) string {
	return fmt.Sprintf("cierre:borrador:%s:%s", sucursalID, fecha)
}

// cacheBorrador keeps the latest draft around so the closing screen survives a
// later store outage. Best effort.
func (s *cierreService) cacheBorrador(ctx context.Context, resp *dto.CierreCajaResponse) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, claveBorrador(resp.SucursalID, resp.Fecha), data, borradorCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("no se pudo cachear el borrador del cierre")
	}
}

// leerBorrador returns the cached draft for a branch-day, nil on miss or any
// Redis trouble.
func (s *cierreService) leerBorrador(ctx context.Context, sucursalID uuid.UUID, fecha time.Time) *dto.CierreCajaResponse {
	if s.rdb == nil {
		return nil
	}
	data, err := s.rdb.Get(ctx, claveBorrador(sucursalID.String(), fecha.Format("2006-01-02"))).Bytes()
	if err != nil {
		return nil
	}
	var resp dto.CierreCajaResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil
	}
	return &resp
}

// enviarResumen queues the closing-summary email. Fire and forget: a queue
// failure never fails the save.
func (s *cierreService) enviarResumen(ctx context.Context, resp *dto.CierreCajaResponse) {
	if s.dispatcher == nil || s.resumenEmail == "" {
		return
	}
	payload := worker.ResumenCierrePayload{
		Destinatario:            s.resumenEmail,
		SucursalID:              resp.SucursalID,
		Fecha:                   resp.Fecha,
		EfectivoEsperado:        resp.EfectivoEsperado.String(),
		TransferenciaEsperada:   resp.TransferenciaEsperada.String(),
		DiferenciaEfectivo:      resp.DiferenciaEfectivo.String(),
		DiferenciaTransferencia: resp.DiferenciaTransferencia.String(),
		TotalVentas:             resp.Ventas.TotalVentas,
	}
	if err := s.dispatcher.EnqueueResumenCierre(ctx, payload); err != nil {
		log.Warn().Err(err).Msg("no se pudo encolar el resumen del cierre")
	}
}
