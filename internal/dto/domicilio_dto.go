package dto

// PagarRepartidorRequest marks every pending domicilio of a courier within one
// day as paid.
type PagarRepartidorRequest struct {
	Fecha string `json:"fecha" validate:"required,datetime=2006-01-02"`
}

// DomicilioPagadoResponse confirms a payout toggle (per-courier or per-sale).
type DomicilioPagadoResponse struct {
	VentasActualizadas int    `json:"ventas_actualizadas"`
	PagadoAt           string `json:"pagado_at"`
}
