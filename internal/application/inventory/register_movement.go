package inventory

import (
	"context"

	"github.com/jhoicas/facturacion-dte/internal/application/dto"
)

// AdjustStockFromRequest adapta el request HTTP al caso de uso AdjustStock.
func (uc *StockLedgerUseCase) AdjustStockFromRequest(ctx context.Context, productID, userID string, in dto.AdjustStockRequest) (*dto.AdjustStockResponse, error) {
	return uc.AdjustStock(ctx, AdjustStockInput{
		ProductID: productID,
		UserID:    userID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Note:      in.Note,
	})
}
