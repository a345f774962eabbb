package handler

import (
	"net/http"

	"github.com/programamos-tech/oviler-sub000/internal/apierror"
	"github.com/programamos-tech/oviler-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VentasHandler covers the per-sale operations the closing flow needs.
type VentasHandler struct {
	domicilios service.DomicilioService
}

func NewVentasHandler(domicilios service.DomicilioService) *VentasHandler {
	return &VentasHandler{domicilios: domicilios}
}

// DomicilioPagado marks one sale's delivery fee as settled. Repeating the
// toggle on an already-settled sale is a no-op.
func (h *VentasHandler) DomicilioPagado(c *gin.Context) {
	ventaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Id de venta invalido"))
		return
	}

	resp, err := h.domicilios.PagarVenta(c.Request.Context(), ventaID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
