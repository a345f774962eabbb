//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/programamos-tech/oviler-sub000/internal/config"
	"github.com/programamos-tech/oviler-sub000/internal/infra"
	"github.com/programamos-tech/oviler-sub000/internal/model"
	"github.com/programamos-tech/oviler-sub000/internal/router"
	"github.com/programamos-tech/oviler-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server     *httptest.Server
	db         *gorm.DB
	token      string
	sucursalID uuid.UUID
	usuarioID  uuid.UUID
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("cierres_test"),
		tcPostgres.WithUsername("cierres"),
		tcPostgres.WithPassword("cierres"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		StoreTimezone:      "UTC",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed branch + supervisor user assigned to it.
	sucursal := model.Sucursal{Nombre: "Sucursal E2E", Codigo: "E2E-01"}
	require.NoError(t, db.Create(&sucursal).Error)

	hash, err := bcrypt.GenerateFromPassword([]byte("cierres2026"), 10)
	require.NoError(t, err)
	usuario := model.Usuario{
		Username:     "super@e2e.test",
		Nombre:       "Supervisor E2E",
		PasswordHash: string(hash),
		Rol:          "supervisor",
		SucursalID:   &sucursal.ID,
		Activo:       true,
	}
	require.NoError(t, db.Create(&usuario).Error)

	dispatcher := worker.NewDispatcher(rdb)
	r := router.New(cfg, db, rdb, dispatcher)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "super@e2e.test", "password": "cierres2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{
		server:     srv,
		db:         db,
		token:      loginBody.AccessToken,
		sucursalID: sucursal.ID,
		usuarioID:  usuario.ID,
	}
}

func (env *testEnv) seedVentaEfectivo(t *testing.T, total int64, creada time.Time) uuid.UUID {
	t.Helper()
	v := model.Venta{
		SucursalID: env.sucursalID,
		UsuarioID:  env.usuarioID,
		Estado:     "completada",
		MetodoPago: "efectivo",
		Total:      decimal.NewFromInt(total),
	}
	require.NoError(t, env.db.Create(&v).Error)
	// CreatedAt is set by GORM; pin it to the business day under test.
	require.NoError(t, env.db.Model(&model.Venta{}).Where("id = ?", v.ID).
		Update("created_at", creada).Error)
	return v.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_PreviewDiaVacio(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, "GET", "/v1/cierres/preview?fecha=2026-08-30", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var draft struct {
		Estado           string          `json:"estado"`
		EfectivoEsperado decimal.Decimal `json:"efectivo_esperado"`
		Ventas           struct {
			TotalVentas int `json:"total_ventas"`
		} `json:"ventas"`
	}
	decodeJSON(t, resp, &draft)
	assert.Equal(t, "borrador", draft.Estado)
	assert.True(t, draft.EfectivoEsperado.IsZero())
	assert.Equal(t, 0, draft.Ventas.TotalVentas)
}

func TestE2E_GuardarYReleer(t *testing.T) {
	env := setupTestEnv(t)
	dia := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	env.seedVentaEfectivo(t, 22500, dia)

	// Save with a counted shortfall and its reason.
	saveResp := do(t, env.server, "POST", "/v1/cierres",
		jsonBody(t, map[string]any{
			"fecha":             "2026-08-30",
			"efectivo_real":     20000,
			"motivo_diferencia": "faltante en caja",
		}),
		env.token,
	)
	require.Equal(t, http.StatusOK, saveResp.StatusCode)

	var saved struct {
		Estado             string          `json:"estado"`
		EfectivoEsperado   decimal.Decimal `json:"efectivo_esperado"`
		DiferenciaEfectivo decimal.Decimal `json:"diferencia_efectivo"`
	}
	decodeJSON(t, saveResp, &saved)
	assert.Equal(t, "guardado", saved.Estado)
	assert.True(t, saved.EfectivoEsperado.Equal(decimal.NewFromInt(22500)))
	assert.True(t, saved.DiferenciaEfectivo.Equal(decimal.NewFromInt(-2500)))

	// The persisted snapshot is readable afterwards.
	getResp := do(t, env.server, "GET", "/v1/cierres/2026-08-30", nil, env.token)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	var fetched struct {
		Estado           string          `json:"estado"`
		EfectivoEsperado decimal.Decimal `json:"efectivo_esperado"`
	}
	decodeJSON(t, getResp, &fetched)
	assert.Equal(t, "guardado", fetched.Estado)
	assert.True(t, fetched.EfectivoEsperado.Equal(decimal.NewFromInt(22500)))
}

func TestE2E_GuardarSinMotivoRechazado(t *testing.T) {
	env := setupTestEnv(t)
	dia := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	env.seedVentaEfectivo(t, 10000, dia)

	resp := do(t, env.server, "POST", "/v1/cierres",
		jsonBody(t, map[string]any{
			"fecha":         "2026-08-30",
			"efectivo_real": 9000,
		}),
		env.token,
	)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestE2E_PagarRepartidor(t *testing.T) {
	env := setupTestEnv(t)
	dia := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)

	rep := model.Repartidor{Nombre: "Carlos", Codigo: "R-01"}
	require.NoError(t, env.db.Create(&rep).Error)

	fee := decimal.NewFromInt(4000)
	v := model.Venta{
		SucursalID:     env.sucursalID,
		UsuarioID:      env.usuarioID,
		Estado:         "completada",
		MetodoPago:     "efectivo",
		Total:          decimal.NewFromInt(24000),
		EsDomicilio:    true,
		CostoDomicilio: &fee,
		RepartidorID:   &rep.ID,
	}
	require.NoError(t, env.db.Create(&v).Error)
	require.NoError(t, env.db.Model(&model.Venta{}).Where("id = ?", v.ID).
		Update("created_at", dia).Error)

	payResp := do(t, env.server, "POST", fmt.Sprintf("/v1/cierres/repartidores/%s/pagar", rep.ID),
		jsonBody(t, map[string]string{"fecha": "2026-08-30"}),
		env.token,
	)
	require.Equal(t, http.StatusOK, payResp.StatusCode)
	var paid struct {
		VentasActualizadas int `json:"ventas_actualizadas"`
	}
	decodeJSON(t, payResp, &paid)
	assert.Equal(t, 1, paid.VentasActualizadas)

	// Repeating the payout settles nothing further.
	payAgain := do(t, env.server, "POST", fmt.Sprintf("/v1/cierres/repartidores/%s/pagar", rep.ID),
		jsonBody(t, map[string]string{"fecha": "2026-08-30"}),
		env.token,
	)
	require.Equal(t, http.StatusOK, payAgain.StatusCode)
	decodeJSON(t, payAgain, &paid)
	assert.Equal(t, 0, paid.VentasActualizadas)
}
