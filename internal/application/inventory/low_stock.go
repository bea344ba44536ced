package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-dte/internal/application/dto"
	"github.com/jhoicas/facturacion-dte/internal/domain/repository"
)

const lowStockLimit = 200

// LowStockUseCase lista los bienes activos con existencia en o bajo el umbral de reposición.
type LowStockUseCase struct {
	productRepo      repository.ProductRepository
	defaultThreshold decimal.Decimal
}

// NewLowStockUseCase construye el caso de uso con el umbral por defecto (INVENTORY_LOW_STOCK_THRESHOLD).
func NewLowStockUseCase(productRepo repository.ProductRepository, defaultThreshold int) *LowStockUseCase {
	return &LowStockUseCase{
		productRepo:      productRepo,
		defaultThreshold: decimal.NewFromInt(int64(defaultThreshold)),
	}
}

// List devuelve los productos con stock <= threshold, menor existencia primero.
// threshold nil usa el umbral por defecto.
func (uc *LowStockUseCase) List(ctx context.Context, threshold *decimal.Decimal) ([]dto.LowStockProductResponse, error) {
	t := uc.defaultThreshold
	if threshold != nil {
		t = *threshold
	}
	products, err := uc.productRepo.ListLowStock(ctx, t, lowStockLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, dto.LowStockProductResponse{
			ID:       p.ID,
			SKU:      p.SKU,
			Name:     p.Name,
			StockQty: p.StockQty,
		})
	}
	return out, nil
}
