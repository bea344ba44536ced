// Package money es el motor de cálculo tributario (El Salvador): IVA 13%, retención
// de renta 10% y retención de IVA 1%, con decimales exactos.
//
// Regla de redondeo: half-to-even a 2 decimales, aplicada solo cuando una cifra se
// cierra (impuesto, retención, total). Los subtotales de línea se acumulan sin redondear.
package money

import "github.com/shopspring/decimal"

const (
	// Scale decimales de las cifras monetarias cerradas (y de los descuentos).
	Scale = 2
	// QuantityScale decimales admitidos en cantidades de producto.
	QuantityScale = 3
)

var (
	vatRate           = decimal.RequireFromString("0.13")
	rentRetentionRate = decimal.RequireFromString("0.10")
	vatRetentionRate  = decimal.RequireFromString("0.01")
)

// Round aplica el redondeo canónico (half-to-even, 2 decimales).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Scale)
}

// HasScale indica si d se representa con a lo sumo places decimales.
// Los ceros a la derecha no cuentan: 2.5000 cumple con 3 decimales.
func HasScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// LineSubtotal = max(qty × unitPrice − discount, 0). No se redondea.
func LineSubtotal(qty, unitPrice, discount decimal.Decimal) decimal.Decimal {
	sub := qty.Mul(unitPrice).Sub(discount)
	if sub.IsNegative() {
		return decimal.Zero
	}
	return sub
}

// VAT IVA 13% sobre el subtotal.
func VAT(subtotal decimal.Decimal) decimal.Decimal {
	return Round(subtotal.Mul(vatRate))
}

// RentRetention retención de renta 10% sobre el subtotal.
func RentRetention(subtotal decimal.Decimal) decimal.Decimal {
	return Round(subtotal.Mul(rentRetentionRate))
}

// VATRetention retención 1% calculada sobre el IVA ya redondeado.
func VATRetention(vat decimal.Decimal) decimal.Decimal {
	return Round(vat.Mul(vatRetentionRate))
}

// Total = subtotal + IVA − retención renta − retención IVA, redondeado.
func Total(subtotal, vat, rentRetention, vatRetention decimal.Decimal) decimal.Decimal {
	return Round(subtotal.Add(vat).Sub(rentRetention).Sub(vatRetention))
}

// Line datos mínimos de una línea para el cálculo.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// Options retenciones que el emisor decide aplicar.
type Options struct {
	ApplyRentRetention bool
	ApplyVATRetention  bool
}

// Totals desglose completo. Los cuatro campos tributarios siempre están presentes (cero si no aplican).
type Totals struct {
	LineSubtotals []decimal.Decimal
	Subtotal      decimal.Decimal
	VAT           decimal.Decimal
	RentRetention decimal.Decimal
	VATRetention  decimal.Decimal
	Total         decimal.Decimal
}

// Calculate acumula las líneas y aplica impuestos y retenciones.
func Calculate(lines []Line, opts Options) Totals {
	t := Totals{
		LineSubtotals: make([]decimal.Decimal, len(lines)),
		Subtotal:      decimal.Zero,
		RentRetention: decimal.Zero,
		VATRetention:  decimal.Zero,
	}
	for i, l := range lines {
		sub := LineSubtotal(l.Quantity, l.UnitPrice, l.Discount)
		t.LineSubtotals[i] = sub
		t.Subtotal = t.Subtotal.Add(sub)
	}
	t.VAT = VAT(t.Subtotal)
	if opts.ApplyRentRetention {
		t.RentRetention = RentRetention(t.Subtotal)
	}
	if opts.ApplyVATRetention {
		t.VATRetention = VATRetention(t.VAT)
	}
	t.Total = Total(t.Subtotal, t.VAT, t.RentRetention, t.VATRetention)
	return t
}
