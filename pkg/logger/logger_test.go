package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_UsaLoggerAdjunto(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "debug")

	sub := l.With().Str("request_id", "req-1").Logger()
	ctx := sub.WithContext(context.Background())

	FromContext(ctx).Info().Msg("factura emitida")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"message":"factura emitida"`)
}

func TestFromContext_SinLoggerUsaElDeAplicacion(t *testing.T) {
	var buf bytes.Buffer
	newWithWriter(&buf, "info")

	FromContext(context.Background()).Info().Msg("hola")
	assert.Contains(t, buf.String(), `"message":"hola"`)
}

func TestParseLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "warn")
	l.Info().Msg("oculto")
	l.Warn().Msg("visible")
	assert.NotContains(t, buf.String(), "oculto")
	assert.Contains(t, buf.String(), "visible")
}
