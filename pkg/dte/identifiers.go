// Package dte: identificadores del Documento Tributario Electrónico (El Salvador).
// Funciones puras; el correlativo lo asigna el llamador dentro de su transacción.
package dte

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultEnvironment ambiente "01" del código de control.
	DefaultEnvironment = "01"
	// DefaultPOS punto de venta fijo del código de control.
	DefaultPOS = "001"

	controlNumberWidth = 8
	controlCodeWidth   = 15
	maxControlCodeSeq  = 999_999_999_999_999
)

var (
	seriesPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)
	envPattern    = regexp.MustCompile(`^[0-9]{2}$`)
	posPattern    = regexp.MustCompile(`^[0-9]{3}$`)
	nonDigits     = regexp.MustCompile(`\D`)
	upper         = cases.Upper(language.Und)
)

// ControlNumber número de control interno: "{serie}-{correlativo con 8 dígitos}".
// Ej: ("FAC", 1) → "FAC-00000001".
func ControlNumber(series string, seq int64) string {
	return fmt.Sprintf("%s-%0*d", series, controlNumberWidth, seq)
}

// ControlCode código de control ante el ente regulador:
// "DTE-{ambiente}-S{sucursal 3 dígitos}P{punto de venta}-{correlativo con 15 dígitos}".
// La sucursal se toma de los dígitos del código (SUC001 → 001), últimos 3, rellenados con ceros.
// Nunca trunca: falla si el código de sucursal no tiene dígitos o el correlativo no cabe en 15 dígitos.
func ControlCode(env, pos, branchCode string, seq int64) (string, error) {
	if !envPattern.MatchString(env) {
		return "", fmt.Errorf("dte: ambiente %q debe tener exactamente 2 dígitos", env)
	}
	if !posPattern.MatchString(pos) {
		return "", fmt.Errorf("dte: punto de venta %q debe tener exactamente 3 dígitos", pos)
	}
	digits := nonDigits.ReplaceAllString(branchCode, "")
	if digits == "" {
		return "", fmt.Errorf("dte: código de sucursal %q sin dígitos", branchCode)
	}
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	branch3 := digits[len(digits)-3:]
	if seq < 1 || seq > maxControlCodeSeq {
		return "", fmt.Errorf("dte: correlativo %d fuera de rango (1..%d)", seq, int64(maxControlCodeSeq))
	}
	return fmt.Sprintf("DTE-%s-S%sP%s-%0*d", env, branch3, pos, controlCodeWidth, seq), nil
}

// GenerationCode código de generación: UUID v4 en mayúsculas.
func GenerationCode() string {
	return strings.ToUpper(uuid.NewString())
}

// ReceptionSeal sello de recepción: 16 bytes aleatorios en hexadecimal mayúsculas (32 caracteres).
func ReceptionSeal() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return strings.ToUpper(hex.EncodeToString(b))
}

// NormalizeSeries recorta y pasa a mayúsculas el código de serie. Solo acepta [A-Z0-9], máximo 10.
func NormalizeSeries(s string) (string, error) {
	n := upper.String(strings.TrimSpace(s))
	if !seriesPattern.MatchString(n) {
		return "", fmt.Errorf("dte: serie %q inválida", s)
	}
	return n, nil
}
