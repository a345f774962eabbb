package router

import (
	"time"

	"github.com/programamos-tech/oviler-sub000/internal/config"
	"github.com/programamos-tech/oviler-sub000/internal/handler"
	"github.com/programamos-tech/oviler-sub000/internal/middleware"
	"github.com/programamos-tech/oviler-sub000/internal/repository"
	"github.com/programamos-tech/oviler-sub000/internal/service"
	"github.com/programamos-tech/oviler-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	loc := cfg.Location()

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	garantiaRepo := repository.NewGarantiaRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	inventarioRepo := repository.NewInventarioRepository(db)
	cierreRepo := repository.NewCierreRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	inventarioSvc := service.NewInventarioService(ventaRepo, inventarioRepo, loc)
	domicilioSvc := service.NewDomicilioService(ventaRepo, loc)
	cierreSvc := service.NewCierreService(
		ventaRepo, garantiaRepo, productoRepo, cierreRepo,
		inventarioSvc, domicilioSvc,
		rdb, dispatcher, cfg.ResumenCierreEmail, loc,
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	cierresH := handler.NewCierresHandler(cierreSvc, domicilioSvc, inventarioSvc, loc)
	ventasH := handler.NewVentasHandler(domicilioSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// The closing itself is a supervising role's job; the courier and
		// inventory panels are also visible to cashiers during the day.
		cierres := v1.Group("/cierres")
		{
			cierres.GET("/preview", middleware.RequireRole("supervisor", "administrador"), cierresH.Preview)
			cierres.POST("", middleware.RequireRole("supervisor", "administrador"), cierresH.Guardar)
			cierres.GET("", middleware.RequireRole("supervisor", "administrador"), cierresH.Listar)
			cierres.GET("/repartidores", middleware.RequireRole("cajero", "supervisor", "administrador"), cierresH.Repartidores)
			cierres.POST("/repartidores/:id/pagar", middleware.RequireRole("cajero", "supervisor", "administrador"), cierresH.PagarRepartidor)
			cierres.GET("/inventario", middleware.RequireRole("cajero", "supervisor", "administrador"), cierresH.Inventario)
			cierres.GET("/:fecha", middleware.RequireRole("supervisor", "administrador"), cierresH.Obtener)
		}

		v1.PATCH("/ventas/:id/domicilio-pagado", middleware.RequireRole("cajero", "supervisor", "administrador"), ventasH.DomicilioPagado)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
