package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/facturacion-dte/internal/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestClassifyTxError(t *testing.T) {
	stock := fmt.Errorf("producto X: %w", domain.ErrInsufficientStock)
	assert.Same(t, stock, classifyTxError(stock), "los errores de dominio pasan sin cambios")

	err := classifyTxError(&pgconn.PgError{Code: "55P03"})
	assert.ErrorIs(t, err, domain.ErrTransactionAborted)
	assert.Contains(t, err.Error(), "conflicto de bloqueo")

	err = classifyTxError(errors.New("conexión perdida"))
	assert.ErrorIs(t, err, domain.ErrTransactionAborted)
	assert.Contains(t, err.Error(), "conexión perdida")
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%FAC-0001%`, likePattern("FAC-0001"))
	assert.Equal(t, `%50\%\_x%`, likePattern("50%_x"))
}

func TestPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", pgx5URL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://u@h/db", pgx5URL("postgresql://u@h/db"))
	assert.Equal(t, "pgx5://x", pgx5URL("pgx5://x"))
}
