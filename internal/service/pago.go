package service

import "github.com/shopspring/decimal"

// toleranciaSplit is the slack allowed between a recorded mixed split and the
// sale's net amount before proration kicks in.
var toleranciaSplit = decimal.New(1, -2) // 0.01

// RepartirPago splits a sale's net amount (total minus costo_domicilio) into
// the efectivo and transferencia buckets.
//
// For metodo "mixto" the split recorded at checkout is honored when it already
// matches the net amount. When it no longer matches (e.g. a domicilio fee was
// deducted after the split was entered) the amounts are prorated — but only
// the efectivo side is rounded; transferencia is the remainder, so both parts
// always rebuild the net amount exactly. A zero or missing split falls back
// to efectivo. Total over its whole domain: no input produces an error.
func RepartirPago(neto decimal.Decimal, metodo string, montoEfectivo, montoTransferencia decimal.Decimal) (efectivo, transferencia decimal.Decimal) {
	switch metodo {
	case "transferencia":
		return decimal.Zero, neto
	case "mixto":
		suma := montoEfectivo.Add(montoTransferencia)
		if suma.IsPositive() {
			if suma.Sub(neto).Abs().LessThan(toleranciaSplit) {
				return montoEfectivo, montoTransferencia
			}
			efectivo = montoEfectivo.Mul(neto).Div(suma).Round(0)
			return efectivo, neto.Sub(efectivo)
		}
		return neto, decimal.Zero
	default: // efectivo
		return neto, decimal.Zero
	}
}

// repartirProporcional splits valor using an original sale's recorded
// efectivo/transferencia ratio. Same remainder rule as RepartirPago: round the
// efectivo share, derive transferencia, so nothing leaks to rounding.
func repartirProporcional(valor, montoEfectivo, montoTransferencia decimal.Decimal) (efectivo, transferencia decimal.Decimal) {
	suma := montoEfectivo.Add(montoTransferencia)
	if !suma.IsPositive() {
		return valor, decimal.Zero
	}
	efectivo = valor.Mul(montoEfectivo).Div(suma).Round(0)
	return efectivo, valor.Sub(efectivo)
}

// montoODefecto dereferences an optional money column, nil reads as zero.
func montoODefecto(m *decimal.Decimal) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return *m
}
