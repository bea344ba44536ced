package repository

import (
	"context"

	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
)

// SequenceRepository asigna correlativos por (sucursal, serie).
type SequenceRepository interface {
	// NextValue bloquea la fila (sucursal, serie), la incrementa y devuelve el valor previo.
	// Si la fila no existe la crea con next_value = 2 y devuelve 1.
	// Debe ejecutarse sobre la misma transacción que persiste la factura: un rollback
	// devuelve el correlativo.
	NextValue(ctx context.Context, branchID, series string) (int64, error)
	ListByBranch(ctx context.Context, branchID string) ([]*entity.Sequence, error)
}
