package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de movimiento de inventario.
const (
	MovementIN     = "IN"     // entrada
	MovementOUT    = "OUT"    // salida
	MovementADJUST = "ADJUST" // ajuste a cantidad absoluta
)

// StockMovement es una fila inmutable del kardex.
// Quantity es siempre la magnitud (>= 0); Delta conserva el signo para poder
// distinguir ajustes al alza y a la baja al sumar el libro.
type StockMovement struct {
	ID        string
	ProductID string
	Direction string
	Quantity  decimal.Decimal
	Delta     decimal.Decimal
	Reference string // número de control de la factura que lo originó, si aplica
	Note      string
	CreatedBy string
	CreatedAt time.Time
}
