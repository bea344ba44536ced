package entity

import "github.com/shopspring/decimal"

// InvoiceItem es una línea de factura. Precio y costo se congelan al emitir.
type InvoiceItem struct {
	ID        string
	InvoiceID string
	Position  int
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Cost      decimal.Decimal
	Discount  decimal.Decimal
	Subtotal  decimal.Decimal

	// Solo lectura (join con products).
	ProductName string
	SKU         string
}
