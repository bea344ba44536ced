package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturacion-dte/internal/application/dto"
	"github.com/jhoicas/facturacion-dte/internal/domain"
	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	"github.com/jhoicas/facturacion-dte/pkg/logger"
)

// VoidInvoice anula una factura EMITTED y devuelve al inventario cada bien facturado.
// Identificadores y montos no cambian. Una segunda anulación falla con ErrInvalidState sin efectos.
func (uc *InvoiceUseCase) VoidInvoice(ctx context.Context, invoiceID, userID string) (*dto.InvoiceResponse, error) {
	if invoiceID == "" || userID == "" {
		return nil, fmt.Errorf("factura y usuario son obligatorios para anular: %w", domain.ErrInvalidInput)
	}

	start := uc.now()
	var inv *entity.Invoice
	err := uc.txRunner.RunBilling(ctx, func(tx BillingTx) error {
		var err error
		inv, err = tx.Invoices.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return fmt.Errorf("factura %s: %w", invoiceID, domain.ErrNotFound)
		}

		now := uc.now()
		if err := inv.Void(now); err != nil {
			return err
		}
		if err := tx.Invoices.UpdateStatus(ctx, inv.ID, inv.Status, inv.UpdatedAt); err != nil {
			return err
		}

		ids, _ := stockDemand(inv.Items)
		locked, err := uc.ledger.LockProducts(ctx, tx.Products, ids)
		if err != nil {
			return err
		}
		for _, it := range inv.Items {
			p := locked[it.ProductID]
			if !p.TracksStock() {
				continue
			}
			mv := &entity.StockMovement{
				Direction: entity.MovementIN,
				Quantity:  it.Quantity,
				Delta:     it.Quantity,
				Reference: inv.ControlNumber,
				Note:      "Anulación factura " + inv.ControlNumber,
				CreatedBy: userID,
				CreatedAt: now,
			}
			if err := uc.ledger.ApplyInTx(ctx, tx.Movements, tx.Products, p, mv); err != nil {
				return err
			}
		}
		return nil
	})
	uc.metrics.ObserveTx("void", uc.now().Sub(start))
	if err != nil {
		uc.metrics.InvoiceFailed("void", failureReason(err))
		return nil, err
	}

	uc.metrics.InvoiceVoided(inv.Type)
	logger.FromContext(ctx).Info().
		Str("invoice_id", inv.ID).
		Str("control_number", inv.ControlNumber).
		Str("user_id", userID).
		Msg("factura anulada")
	return toInvoiceResponse(inv), nil
}
