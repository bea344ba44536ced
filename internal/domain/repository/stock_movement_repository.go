package repository

import (
	"context"

	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockMovementRepository kardex de solo inserción: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct movimientos del producto, más reciente primero.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
	// SumByProduct suma con signo (Delta) de todos los movimientos del producto.
	SumByProduct(ctx context.Context, productID string) (decimal.Decimal, error)
}
