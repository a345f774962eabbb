package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/programamos-tech/oviler-sub000/internal/apierror"
	"github.com/programamos-tech/oviler-sub000/internal/dto"
	"github.com/programamos-tech/oviler-sub000/internal/middleware"
	"github.com/programamos-tech/oviler-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CierresHandler exposes the daily cash-closing screens: the live preview,
// the save, the history, and the courier / inventory panels that feed the
// same report.
type CierresHandler struct {
	cierres    service.CierreService
	domicilios service.DomicilioService
	inventario service.InventarioService
	loc        *time.Location
}

func NewCierresHandler(cierres service.CierreService, domicilios service.DomicilioService, inventario service.InventarioService, loc *time.Location) *CierresHandler {
	return &CierresHandler{cierres: cierres, domicilios: domicilios, inventario: inventario, loc: loc}
}

// Preview godoc
// @Summary Vista previa del cierre de caja del dia
// @Tags cierres
// @Produce json
// @Param fecha query string true "Fecha YYYY-MM-DD"
// @Success 200 {object} dto.CierreCajaResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/cierres/preview [get]
func (h *CierresHandler) Preview(c *gin.Context) {
	sucursalID, ok := middleware.SucursalFromClaims(c)
	if !ok {
		return
	}
	fecha, ok := fechaParam(c, c.Query("fecha"), h.loc)
	if !ok {
		return
	}

	resp, err := h.cierres.CalcularCierre(c.Request.Context(), sucursalID, fecha)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Guardar godoc
// @Summary Guardar el cierre de caja del dia
// @Tags cierres
// @Accept json
// @Produce json
// @Param body body dto.GuardarCierreRequest true "Montos contados"
// @Success 200 {object} dto.CierreCajaResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/cierres [post]
func (h *CierresHandler) Guardar(c *gin.Context) {
	sucursalID, ok := middleware.SucursalFromClaims(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token invalido"))
		return
	}

	var req dto.GuardarCierreRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.cierres.GuardarCierre(c.Request.Context(), sucursalID, usuarioID, req)
	switch {
	case errors.Is(err, service.ErrMotivoDiferenciaRequerido):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrGuardadoEnCurso):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case err != nil:
		c.Error(err)
	default:
		c.JSON(http.StatusOK, resp)
	}
}

// Obtener returns the saved closing for one date, 404 when none exists.
func (h *CierresHandler) Obtener(c *gin.Context) {
	sucursalID, ok := middleware.SucursalFromClaims(c)
	if !ok {
		return
	}
	fecha, ok := fechaParam(c, c.Param("fecha"), h.loc)
	if !ok {
		return
	}

	resp, err := h.cierres.ObtenerCierre(c.Request.Context(), sucursalID, fecha)
	if errors.Is(err, service.ErrCierreNoEncontrado) {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar returns the closing history of the branch, newest first.
func (h *CierresHandler) Listar(c *gin.Context) {
	sucursalID, ok := middleware.SucursalFromClaims(c)
	if !ok {
		return
	}
	var filter dto.CierreListFilter
	if !bindAndValidateQuery(c, &filter) {
		return
	}

	resp, err := h.cierres.ListarCierres(c.Request.Context(), sucursalID, filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Repartidores lists the day's courier fee summary for the closing screen.
func (h *CierresHandler) Repartidores(c *gin.Context) {
	sucursalID, ok := middleware.SucursalFromClaims(c)
	if !ok {
		return
	}
	fecha, ok := fechaParam(c, c.Query("fecha"), h.loc)
	if !ok {
		return
	}

	resumen, err := h.domicilios.ResumenRepartidores(c.Request.Context(), sucursalID, fecha)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"repartidores": resumen})
}

// PagarRepartidor settles every pending delivery fee of one courier for one
// day. Already-settled days succeed with zero updated sales.
func (h *CierresHandler) PagarRepartidor(c *gin.Context) {
	sucursalID, ok := middleware.SucursalFromClaims(c)
	if !ok {
		return
	}
	repartidorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Id de repartidor invalido"))
		return
	}

	var req dto.PagarRepartidorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	fecha, ok := fechaParam(c, req.Fecha, h.loc)
	if !ok {
		return
	}

	resp, err := h.domicilios.PagarRepartidor(c.Request.Context(), sucursalID, repartidorID, fecha)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Inventario projects the day's stock impact without saving anything.
func (h *CierresHandler) Inventario(c *gin.Context) {
	sucursalID, ok := middleware.SucursalFromClaims(c)
	if !ok {
		return
	}
	fecha, ok := fechaParam(c, c.Query("fecha"), h.loc)
	if !ok {
		return
	}

	resp, err := h.inventario.ProyectarImpacto(c.Request.Context(), sucursalID, fecha)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
