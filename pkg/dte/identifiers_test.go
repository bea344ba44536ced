package dte_test

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-dte/pkg/dte"
)

func TestControlNumber(t *testing.T) {
	assert.Equal(t, "FAC-00000001", dte.ControlNumber("FAC", 1))
	assert.Equal(t, "CCF-00001234", dte.ControlNumber("CCF", 1234))
	assert.Equal(t, "FAC-123456789", dte.ControlNumber("FAC", 123456789), "no trunca correlativos largos")
}

func TestControlCode_Formato(t *testing.T) {
	code, err := dte.ControlCode(dte.DefaultEnvironment, dte.DefaultPOS, "SUC001", 271089)
	require.NoError(t, err)
	assert.Equal(t, "DTE-01-S001P001-000000000271089", code)
	assert.Len(t, code, 31)

	code, err = dte.ControlCode("00", "001", "SUC2", 1)
	require.NoError(t, err)
	assert.Equal(t, "DTE-00-S002P001-000000000000001", code)

	code, err = dte.ControlCode("01", "001", "BR-12345", 7)
	require.NoError(t, err)
	assert.Equal(t, "DTE-01-S345P001-000000000000007", code, "toma los últimos 3 dígitos")
}

func TestControlCode_Errores(t *testing.T) {
	cases := []struct {
		name   string
		env    string
		pos    string
		branch string
		seq    int64
	}{
		{"sucursal sin dígitos", "01", "001", "CENTRO", 1},
		{"ambiente inválido", "1", "001", "SUC001", 1},
		{"punto de venta inválido", "01", "1", "SUC001", 1},
		{"correlativo cero", "01", "001", "SUC001", 0},
		{"desborde de 15 dígitos", "01", "001", "SUC001", 1_000_000_000_000_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dte.ControlCode(tc.env, tc.pos, tc.branch, tc.seq)
			assert.Error(t, err)
		})
	}
}

func TestGenerationCode(t *testing.T) {
	a := dte.GenerationCode()
	b := dte.GenerationCode()
	assert.NotEqual(t, a, b)

	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), id.Version())
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F-]{36}$`), a)
}

func TestReceptionSeal(t *testing.T) {
	seal := dte.ReceptionSeal()
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{32}$`), seal)
	assert.NotEqual(t, seal, dte.ReceptionSeal())
}

func TestNormalizeSeries(t *testing.T) {
	s, err := dte.NormalizeSeries("  fac ")
	require.NoError(t, err)
	assert.Equal(t, "FAC", s)

	for _, bad := range []string{"", "   ", "FA-C", "FACTURAS1234"} {
		_, err := dte.NormalizeSeries(bad)
		assert.Error(t, err, bad)
	}
}
