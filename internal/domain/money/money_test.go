package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/facturacion-dte/internal/domain/money"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestVAT_Redondeo(t *testing.T) {
	cases := []struct {
		subtotal string
		want     string
	}{
		{"100", "13.00"},
		{"0.50", "0.06"}, // 0.065 → par inferior
		{"1.50", "0.20"}, // 0.195 → par superior
		{"0", "0.00"},
		{"12.345", "1.60"},
	}
	for _, tc := range cases {
		got := money.VAT(d(tc.subtotal))
		assert.True(t, d(tc.want).Equal(got), "VAT(%s) = %s, se esperaba %s", tc.subtotal, got, tc.want)
	}
}

func TestLineSubtotal_NoNegativo(t *testing.T) {
	got := money.LineSubtotal(d("1"), d("10"), d("15"))
	assert.True(t, got.IsZero())

	got = money.LineSubtotal(d("3"), d("1.333"), d("0"))
	assert.Equal(t, "3.999", got.String(), "el subtotal de línea no se redondea")
}

func TestHasScale(t *testing.T) {
	cases := []struct {
		in     string
		places int32
		want   bool
	}{
		{"1", money.QuantityScale, true},
		{"1.125", money.QuantityScale, true},
		{"2.5000", money.QuantityScale, true},
		{"1.0005", money.QuantityScale, false},
		{"0.0004", money.QuantityScale, false},
		{"0.10", money.Scale, true},
		{"0.005", money.Scale, false},
		{"-3.14", money.Scale, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, money.HasScale(d(tc.in), tc.places), "HasScale(%s, %d)", tc.in, tc.places)
	}
}

func TestRetenciones(t *testing.T) {
	assert.Equal(t, "10.00", money.RentRetention(d("100")).StringFixed(2))
	assert.Equal(t, "0.13", money.VATRetention(d("13.00")).StringFixed(2))
	// 1% de 0.06 = 0.0006 → 0.00
	assert.True(t, money.VATRetention(d("0.06")).IsZero())
}

func TestTotal(t *testing.T) {
	got := money.Total(d("100"), d("13"), d("10"), d("0.13"))
	assert.Equal(t, "102.87", got.StringFixed(2))
}

func TestCalculate(t *testing.T) {
	lines := []money.Line{
		{Quantity: d("2"), UnitPrice: d("25.00"), Discount: decimal.Zero},
		{Quantity: d("1"), UnitPrice: d("55.00"), Discount: d("5.00")},
	}

	t.Run("sin retenciones", func(t *testing.T) {
		tot := money.Calculate(lines, money.Options{})
		assert.Equal(t, "100.00", tot.Subtotal.StringFixed(2))
		assert.Equal(t, "13.00", tot.VAT.StringFixed(2))
		assert.True(t, tot.RentRetention.IsZero())
		assert.True(t, tot.VATRetention.IsZero())
		assert.Equal(t, "113.00", tot.Total.StringFixed(2))
		assert.Len(t, tot.LineSubtotals, 2)
		assert.Equal(t, "50.00", tot.LineSubtotals[0].StringFixed(2))
	})

	t.Run("con retenciones", func(t *testing.T) {
		tot := money.Calculate(lines, money.Options{ApplyRentRetention: true, ApplyVATRetention: true})
		assert.Equal(t, "10.00", tot.RentRetention.StringFixed(2))
		assert.Equal(t, "0.13", tot.VATRetention.StringFixed(2))
		assert.Equal(t, "102.87", tot.Total.StringFixed(2))
	})

	t.Run("determinista", func(t *testing.T) {
		a := money.Calculate(lines, money.Options{ApplyVATRetention: true})
		b := money.Calculate(lines, money.Options{ApplyVATRetention: true})
		assert.True(t, a.Total.Equal(b.Total))
		assert.True(t, a.VAT.Equal(b.VAT))
	})

	t.Run("sin líneas", func(t *testing.T) {
		tot := money.Calculate(nil, money.Options{})
		assert.True(t, tot.Total.IsZero())
	})
}

func TestAmountInWords(t *testing.T) {
	cases := map[string]string{
		"102.87":     "CIENTO DOS DÓLARES CON OCHENTA Y SIETE CENTAVOS",
		"1.00":       "UN DÓLAR CON CERO CENTAVOS",
		"0.01":       "CERO DÓLARES CON UN CENTAVO",
		"100":        "CIEN DÓLARES CON CERO CENTAVOS",
		"21.21":      "VEINTIÚN DÓLARES CON VEINTIÚN CENTAVOS",
		"1500.50":    "MIL QUINIENTOS DÓLARES CON CINCUENTA CENTAVOS",
		"21000":      "VEINTIÚN MIL DÓLARES CON CERO CENTAVOS",
		"1000000":    "UN MILLÓN DE DÓLARES CON CERO CENTAVOS",
		"2345678.90": "DOS MILLONES TRESCIENTOS CUARENTA Y CINCO MIL SEISCIENTOS SETENTA Y OCHO DÓLARES CON NOVENTA CENTAVOS",
	}
	for in, want := range cases {
		assert.Equal(t, want, money.AmountInWords(d(in)), in)
	}
}
