package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-dte/internal/application/dto"
	"github.com/jhoicas/facturacion-dte/internal/domain"
	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	"github.com/jhoicas/facturacion-dte/pkg/dte"
	"github.com/jhoicas/facturacion-dte/pkg/logger"
)

// CreateInvoice emite la factura en una sola transacción: asigna correlativo, deriva los
// identificadores DTE, persiste cabecera y líneas, descuenta inventario de cada bien y registra
// su salida en el kardex. Cualquier error revierte todo, incluido el correlativo.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	start := uc.now()
	inv, err := uc.createInvoice(ctx, userID, in)
	uc.metrics.ObserveTx("create", uc.now().Sub(start))
	if err != nil {
		uc.metrics.InvoiceFailed("create", failureReason(err))
		logger.FromContext(ctx).Warn().Err(err).
			Str("branch_id", in.BranchID).
			Str("series", in.Series).
			Msg("emisión de factura rechazada")
		return nil, err
	}

	uc.metrics.InvoiceIssued(inv.Type, inv.Total)
	logger.FromContext(ctx).Info().
		Str("invoice_id", inv.ID).
		Str("control_number", inv.ControlNumber).
		Str("branch_id", inv.BranchID).
		Str("series", inv.Series).
		Int64("sequential", inv.Sequential).
		Str("total", inv.Total.StringFixed(2)).
		Msg("factura emitida")
	return toInvoiceResponse(inv), nil
}

func (uc *InvoiceUseCase) createInvoice(ctx context.Context, userID string, in dto.CreateInvoiceRequest) (*entity.Invoice, error) {
	if userID == "" {
		return nil, fmt.Errorf("usuario emisor obligatorio: %w", domain.ErrInvalidInput)
	}
	series, err := validateRequest(&in.PreviewInvoiceRequest)
	if err != nil {
		return nil, err
	}

	var inv *entity.Invoice
	err = uc.txRunner.RunBilling(ctx, func(tx BillingTx) error {
		q, err := uc.quote(ctx, tx.Branches, tx.Clients, tx.Products, &in.PreviewInvoiceRequest)
		if err != nil {
			return err
		}

		seq, err := tx.Sequences.NextValue(ctx, q.branch.ID, series)
		if err != nil {
			return err
		}
		controlCode, err := dte.ControlCode(uc.ids.Environment, uc.ids.POSCode, q.branch.Code, seq)
		if err != nil {
			return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
		}

		now := uc.now()
		issueDate := now
		if in.IssueDate != nil {
			issueDate = *in.IssueDate
		}
		inv = &entity.Invoice{
			ID:             uuid.New().String(),
			ControlNumber:  dte.ControlNumber(series, seq),
			DTEControlCode: controlCode,
			GenerationCode: dte.GenerationCode(),
			ReceptionSeal:  dte.ReceptionSeal(),
			Sequential:     seq,
			IssueDate:      issueDate,
			Series:         series,
			Type:           in.Type,
			BranchID:       q.branch.ID,
			ClientID:       q.client.ID,
			UserID:         userID,
			Subtotal:       q.totals.Subtotal,
			VAT:            q.totals.VAT,
			RentRetention:  q.totals.RentRetention,
			VATRetention:   q.totals.VATRetention,
			Total:          q.totals.Total,
			PaymentMethod:  in.PaymentMethod,
			Status:         entity.InvoiceStatusEmitted,
			Observations:   in.Observations,
			Items:          q.items,
			CreatedAt:      now,
			UpdatedAt:      now,
			ClientName:     q.client.Name,
		}
		for i := range inv.Items {
			inv.Items[i].ID = uuid.New().String()
			inv.Items[i].InvoiceID = inv.ID
		}
		if err := tx.Invoices.Create(ctx, inv); err != nil {
			return err
		}

		// Inventario: bloquear en orden estable, verificar la demanda agregada y luego descontar.
		ids, demand := stockDemand(inv.Items)
		locked, err := uc.ledger.LockProducts(ctx, tx.Products, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := uc.ledger.EnsureAvailable(locked[id], demand[id]); err != nil {
				return err
			}
		}
		for _, it := range inv.Items {
			p := locked[it.ProductID]
			if !p.TracksStock() {
				continue
			}
			mv := &entity.StockMovement{
				Direction: entity.MovementOUT,
				Quantity:  it.Quantity,
				Delta:     it.Quantity.Neg(),
				Reference: inv.ControlNumber,
				Note:      "Factura " + inv.ControlNumber,
				CreatedBy: userID,
				CreatedAt: now,
			}
			if err := uc.ledger.ApplyInTx(ctx, tx.Movements, tx.Products, p, mv); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// CreateInvoiceIdempotent emite la factura una sola vez por (usuario, llave).
// Un reintento con la llave ya completada devuelve la factura original y replayed=true.
// Sin llave o sin almacén de idempotencia se comporta como CreateInvoice.
func (uc *InvoiceUseCase) CreateInvoiceIdempotent(ctx context.Context, userID, key string, in dto.CreateInvoiceRequest) (resp *dto.InvoiceResponse, replayed bool, err error) {
	if key == "" || uc.idem == nil {
		resp, err = uc.CreateInvoice(ctx, userID, in)
		return resp, false, err
	}

	scoped := userID + ":" + key
	invoiceID, err := uc.idem.Reserve(ctx, scoped)
	if err != nil {
		uc.metrics.InvoiceFailed("create", failureReason(err))
		return nil, false, err
	}
	if invoiceID != "" {
		resp, err = uc.GetInvoice(ctx, invoiceID)
		return resp, err == nil, err
	}

	resp, err = uc.CreateInvoice(ctx, userID, in)
	if err != nil {
		if relErr := uc.idem.Release(ctx, scoped); relErr != nil {
			logger.FromContext(ctx).Warn().Err(relErr).Str("idempotency_key", key).Msg("no se pudo liberar la llave de idempotencia")
		}
		return nil, false, err
	}
	if cErr := uc.idem.Complete(ctx, scoped, resp.ID); cErr != nil {
		logger.FromContext(ctx).Warn().Err(cErr).Str("idempotency_key", key).Msg("no se pudo completar la llave de idempotencia")
	}
	return resp, false, nil
}
