package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/facturacion-dte/internal/application/billing"
	"github.com/jhoicas/facturacion-dte/internal/application/inventory"
	"github.com/jhoicas/facturacion-dte/internal/domain"
	"github.com/jhoicas/facturacion-dte/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and billing.BillingTxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED).
// Los errores de dominio se devuelven tal cual; cualquier otro fallo (BD, contexto
// cancelado, lock_timeout) se envuelve en domain.ErrTransactionAborted.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout <= 0 deja el valor del servidor.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con repos de inventario atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewStockMovementRepository(tx), NewProductRepository(tx))
	})
}

// RunBilling inicia una transacción con repos de facturación, correlativos e inventario.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(tx billing.BillingTx) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(billing.BillingTx{
			Products:  NewProductRepository(tx),
			Branches:  NewBranchRepository(tx),
			Clients:   NewClientRepository(tx),
			Sequences: NewSequenceRepository(tx),
			Invoices:  NewInvoiceRepository(tx),
			Movements: NewStockMovementRepository(tx),
		})
	})
}

func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return classifyTxError(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if r.lockTimeout > 0 {
		// SET no acepta parámetros; el valor es un entero controlado por configuración.
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())); err != nil {
			return classifyTxError(fmt.Errorf("set lock_timeout: %w", err))
		}
	}

	if err := fn(tx); err != nil {
		return classifyTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyTxError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func classifyTxError(err error) error {
	if domain.IsDomainError(err) {
		return err
	}
	if isLockFailure(err) {
		return fmt.Errorf("%w: conflicto de bloqueo: %w", domain.ErrTransactionAborted, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrTransactionAborted, err)
}
