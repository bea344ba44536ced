package repository

import (
	"context"

	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para productos.
// GetByID y GetForUpdate devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs devuelve solo los productos encontrados, indexados por ID.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT ... FOR UPDATE) hasta el fin de la tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// UpdateStock escribe el contador desnormalizado. Debe ir en la misma tx que el movimiento.
	UpdateStock(ctx context.Context, id string, qty decimal.Decimal) error
	ListLowStock(ctx context.Context, threshold decimal.Decimal, limit int) ([]*entity.Product, error)
}
