package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	"github.com/jhoicas/facturacion-dte/internal/domain/repository"
)

// BillingTx repositorios atados a una misma transacción de facturación.
type BillingTx struct {
	Products  repository.ProductRepository
	Branches  repository.BranchRepository
	Clients   repository.ClientRepository
	Sequences repository.SequenceRepository
	Invoices  repository.InvoiceRepository
	Movements repository.StockMovementRepository
}

// BillingTxRunner ejecuta fn dentro de una transacción que incluye correlativos, facturas e inventario.
// Cualquier error devuelto por fn provoca rollback de todo lo escrito.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(tx BillingTx) error) error
}

// StockLedger integración facturación-inventario. Todas las operaciones usan los repositorios
// del llamador (misma transacción). Si retorna error (ej: ErrInsufficientStock) el llamador hace rollback.
type StockLedger interface {
	LockProducts(ctx context.Context, productRepo repository.ProductRepository, ids []string) (map[string]*entity.Product, error)
	EnsureAvailable(p *entity.Product, demand decimal.Decimal) error
	ApplyInTx(
		ctx context.Context,
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		p *entity.Product,
		mv *entity.StockMovement,
	) error
}

// IdempotencyStore reserva llaves de idempotencia para POST /api/invoices.
type IdempotencyStore interface {
	// Reserve devuelve "" si la llave quedó reservada para esta solicitud, el ID de la factura si
	// la llave ya se completó, o domain.ErrIdempotencyInFlight si otra solicitud la tiene reservada.
	Reserve(ctx context.Context, key string) (invoiceID string, err error)
	Complete(ctx context.Context, key, invoiceID string) error
	Release(ctx context.Context, key string) error
}

// Metrics contadores de facturación. Se registran después del commit o rollback.
type Metrics interface {
	InvoiceIssued(invoiceType string, total decimal.Decimal)
	InvoiceVoided(invoiceType string)
	InvoiceFailed(operation, reason string)
	ObserveTx(operation string, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) InvoiceIssued(string, decimal.Decimal) {}
func (noopMetrics) InvoiceVoided(string)                  {}
func (noopMetrics) InvoiceFailed(string, string)          {}
func (noopMetrics) ObserveTx(string, time.Duration)       {}

// IdentifierConfig parámetros del código de control DTE.
type IdentifierConfig struct {
	Environment string // "01"
	POSCode     string // "001"
}
