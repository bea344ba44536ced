package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de producto. Solo los bienes (GOOD) llevan existencias.
const (
	ProductKindGood    = "GOOD"
	ProductKindService = "SERVICE"
)

// Product representa un artículo vendible.
// StockQty es un contador desnormalizado: la fuente de verdad es la suma de StockMovement.Delta.
type Product struct {
	ID        string
	SKU       string // único
	Name      string
	Kind      string
	Cost      decimal.Decimal
	UnitPrice decimal.Decimal
	StockQty  decimal.Decimal
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TracksStock indica si el producto mueve inventario físico.
func (p *Product) TracksStock() bool {
	return p.Kind == ProductKindGood
}
