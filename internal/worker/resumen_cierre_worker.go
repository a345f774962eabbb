package worker

// resumen_cierre_worker.go
// Processes closing-summary jobs from QueueResumenCierre: after a cash
// closing is saved, the supervisor gets a short email with the reconciled
// figures. Best effort — a failed send is logged, never retried into the
// save path.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/programamos-tech/oviler-sub000/internal/infra"

	"github.com/rs/zerolog/log"
)

// ResumenCierrePayload is the job envelope sent to QueueResumenCierre.
type ResumenCierrePayload struct {
	Destinatario            string `json:"destinatario"`
	SucursalID              string `json:"sucursal_id"`
	Fecha                   string `json:"fecha"`
	EfectivoEsperado        string `json:"efectivo_esperado"`
	TransferenciaEsperada   string `json:"transferencia_esperada"`
	DiferenciaEfectivo      string `json:"diferencia_efectivo"`
	DiferenciaTransferencia string `json:"diferencia_transferencia"`
	TotalVentas             int    `json:"total_ventas"`
}

type ResumenCierreWorker struct {
	mailer *infra.Mailer
}

func NewResumenCierreWorker(mailer *infra.Mailer) *ResumenCierreWorker {
	return &ResumenCierreWorker{mailer: mailer}
}

func (w *ResumenCierreWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload ResumenCierrePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("resumen_cierre_worker: invalid payload")
		return
	}
	if payload.Destinatario == "" {
		log.Warn().Msg("resumen_cierre_worker: empty destinatario — skipping")
		return
	}

	subject := fmt.Sprintf("Cierre de caja %s — sucursal %s", payload.Fecha, payload.SucursalID)
	body := fmt.Sprintf(
		"Cierre de caja del %s\n\n"+
			"Efectivo esperado:      %s\n"+
			"Transferencia esperada: %s\n"+
			"Diferencia efectivo:      %s\n"+
			"Diferencia transferencia: %s\n"+
			"Ventas del día: %d\n",
		payload.Fecha,
		payload.EfectivoEsperado, payload.TransferenciaEsperada,
		payload.DiferenciaEfectivo, payload.DiferenciaTransferencia,
		payload.TotalVentas,
	)

	if err := w.mailer.SendResumenCierre(payload.Destinatario, subject, body); err != nil {
		log.Error().Err(err).Str("to", payload.Destinatario).Msg("resumen_cierre_worker: failed to send email")
		return
	}
	log.Info().Str("to", payload.Destinatario).Str("fecha", payload.Fecha).Msg("resumen_cierre_worker: resumen sent")
}
