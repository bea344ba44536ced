package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/products/:id/stock.
// Type IN suma, OUT resta, ADJUST fija la cantidad absoluta.
type AdjustStockRequest struct {
	Type     string          `json:"type" validate:"required,oneof=IN OUT ADJUST"`
	Quantity decimal.Decimal `json:"quantity"`
	Note     string          `json:"note,omitempty" validate:"max=255"`
}

// StockMovementResponse fila del kardex.
type StockMovementResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Delta     decimal.Decimal `json:"delta"`
	Reference string          `json:"reference,omitempty"`
	Note      string          `json:"note,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

// AdjustStockResponse movimiento registrado y existencia resultante.
type AdjustStockResponse struct {
	Movement StockMovementResponse `json:"movement"`
	StockQty decimal.Decimal       `json:"stock_qty"`
}

// StockMovementListResponse página del kardex.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// StockStatusResponse contador vs. suma del kardex. InSync=false indica desviación.
type StockStatusResponse struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	StockQty  decimal.Decimal `json:"stock_qty"`
	LedgerSum decimal.Decimal `json:"ledger_sum"`
	InSync    bool            `json:"in_sync"`
}

// LowStockProductResponse producto bajo el umbral.
type LowStockProductResponse struct {
	ID       string          `json:"id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	StockQty decimal.Decimal `json:"stock_qty"`
}
