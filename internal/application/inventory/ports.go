package inventory

import (
	"context"

	"github.com/jhoicas/facturacion-dte/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que contador de existencias y kardex se escriban juntos o no se escriban.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// Metrics contadores de inventario. Se registran solo después del commit.
type Metrics interface {
	StockMovementRecorded(direction string)
}

type noopMetrics struct{}

func (noopMetrics) StockMovementRecorded(string) {}
