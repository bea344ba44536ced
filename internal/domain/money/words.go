package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	units = [...]string{
		"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE",
		"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE", "DIECISÉIS", "DIECISIETE", "DIECIOCHO", "DIECINUEVE",
		"VEINTE", "VEINTIUNO", "VEINTIDÓS", "VEINTITRÉS", "VEINTICUATRO", "VEINTICINCO", "VEINTISÉIS", "VEINTISIETE", "VEINTIOCHO", "VEINTINUEVE",
	}
	tens = [...]string{
		"", "", "", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA",
	}
	hundreds = [...]string{
		"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS",
		"SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
	}
)

// AmountInWords devuelve el monto en letras como se imprime en el documento:
// 102.87 → "CIENTO DOS DÓLARES CON OCHENTA Y SIETE CENTAVOS".
// Montos negativos se expresan por su valor absoluto.
// Cubre montos menores a mil millones.
func AmountInWords(amount decimal.Decimal) string {
	amount = Round(amount.Abs())
	whole := amount.Truncate(0)
	cents := amount.Sub(whole).Shift(Scale).IntPart()

	dollars := whole.IntPart()
	var b strings.Builder
	b.WriteString(apocope(integerInWords(dollars)))
	if dollars >= 1_000_000 && dollars%1_000_000 == 0 {
		b.WriteString(" DE")
	}
	if dollars == 1 {
		b.WriteString(" DÓLAR CON ")
	} else {
		b.WriteString(" DÓLARES CON ")
	}
	switch cents {
	case 0:
		b.WriteString("CERO CENTAVOS")
	case 1:
		b.WriteString("UN CENTAVO")
	default:
		b.WriteString(apocope(belowThousand(cents)))
		b.WriteString(" CENTAVOS")
	}
	return b.String()
}

func integerInWords(n int64) string {
	if n == 0 {
		return "CERO"
	}
	var parts []string
	if millions := n / 1_000_000; millions > 0 {
		if millions == 1 {
			parts = append(parts, "UN MILLÓN")
		} else {
			parts = append(parts, apocope(integerInWords(millions))+" MILLONES")
		}
	}
	if thousands := (n % 1_000_000) / 1000; thousands > 0 {
		if thousands == 1 {
			parts = append(parts, "MIL")
		} else {
			parts = append(parts, apocope(belowThousand(thousands))+" MIL")
		}
	}
	if rest := n % 1000; rest > 0 {
		parts = append(parts, belowThousand(rest))
	}
	return strings.Join(parts, " ")
}

func belowThousand(n int64) string {
	if n == 100 {
		return "CIEN"
	}
	var parts []string
	if h := n / 100; h > 0 {
		parts = append(parts, hundreds[h])
	}
	rest := n % 100
	switch {
	case rest == 0:
	case rest < 30:
		parts = append(parts, units[rest])
	default:
		word := tens[rest/10]
		if u := rest % 10; u > 0 {
			word += " Y " + units[u]
		}
		parts = append(parts, word)
	}
	return strings.Join(parts, " ")
}

// apocope: "VEINTIUNO MIL" → "VEINTIÚN MIL", "TREINTA Y UNO MIL" → "TREINTA Y UN MIL".
func apocope(s string) string {
	switch {
	case strings.HasSuffix(s, "VEINTIUNO"):
		return strings.TrimSuffix(s, "VEINTIUNO") + "VEINTIÚN"
	case strings.HasSuffix(s, "UNO"):
		return strings.TrimSuffix(s, "UNO") + "UN"
	}
	return s
}
