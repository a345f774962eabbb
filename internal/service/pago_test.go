package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestRepartirPago_Efectivo(t *testing.T) {
	ef, tr := RepartirPago(d(22500), "efectivo", decimal.Zero, decimal.Zero)
	assert.True(t, ef.Equal(d(22500)))
	assert.True(t, tr.IsZero())
}

func TestRepartirPago_Transferencia(t *testing.T) {
	ef, tr := RepartirPago(d(15000), "transferencia", decimal.Zero, decimal.Zero)
	assert.True(t, ef.IsZero())
	assert.True(t, tr.Equal(d(15000)))
}

func TestRepartirPago_MixtoSplitExacto(t *testing.T) {
	// The recorded split already matches the net amount: honored verbatim.
	ef, tr := RepartirPago(d(28500), "mixto", d(20000), d(8500))
	assert.True(t, ef.Equal(d(20000)))
	assert.True(t, tr.Equal(d(8500)))
}

func TestRepartirPago_MixtoProrrateado(t *testing.T) {
	// Split drifted from the net amount (fee deducted after checkout):
	// prorate, rounding only the efectivo side.
	ef, tr := RepartirPago(d(10000), "mixto", d(3000), d(2000))
	assert.True(t, ef.Equal(d(6000)), "efectivo = %s", ef)
	assert.True(t, tr.Equal(d(4000)), "transferencia = %s", tr)
}

func TestRepartirPago_MixtoSinSplit(t *testing.T) {
	// Zero or missing split falls back to efectivo.
	ef, tr := RepartirPago(d(9900), "mixto", decimal.Zero, decimal.Zero)
	assert.True(t, ef.Equal(d(9900)))
	assert.True(t, tr.IsZero())
}

func TestRepartirPago_SumaSiempreExacta(t *testing.T) {
	// The two parts must rebuild the net amount exactly, whatever the ratio.
	casos := []struct {
		neto, ac, at int64
	}{
		{10001, 1, 2},
		{33333, 7000, 11000},
		{99999, 12345, 67890},
		{1, 500, 500},
	}
	for _, c := range casos {
		ef, tr := RepartirPago(d(c.neto), "mixto", d(c.ac), d(c.at))
		assert.True(t, ef.Add(tr).Equal(d(c.neto)),
			"neto=%d ac=%d at=%d → %s + %s", c.neto, c.ac, c.at, ef, tr)
	}
}

func TestRepartirProporcional(t *testing.T) {
	ef, tr := repartirProporcional(d(30000), d(20000), d(10000))
	assert.True(t, ef.Equal(d(20000)))
	assert.True(t, tr.Equal(d(10000)))

	// Degenerate ratio: everything to efectivo.
	ef, tr = repartirProporcional(d(5000), decimal.Zero, decimal.Zero)
	assert.True(t, ef.Equal(d(5000)))
	assert.True(t, tr.IsZero())
}
