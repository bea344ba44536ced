package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-dte/internal/application/dto"
	"github.com/jhoicas/facturacion-dte/internal/domain"
	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	"github.com/jhoicas/facturacion-dte/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// GetInvoice devuelve la factura con sus líneas.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("factura %s: %w", id, domain.ErrNotFound)
	}
	return toInvoiceResponse(inv), nil
}

// ListInvoices listado paginado con filtros. Fechas YYYY-MM-DD; date_to es inclusivo.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, q dto.InvoiceListQuery) (*dto.InvoiceListResponse, error) {
	if q.Type != "" && !entity.IsValidInvoiceType(q.Type) {
		return nil, fmt.Errorf("tipo %q: %w", q.Type, domain.ErrInvalidInput)
	}
	if q.PaymentMethod != "" && !entity.IsValidPaymentMethod(q.PaymentMethod) {
		return nil, fmt.Errorf("forma de pago %q: %w", q.PaymentMethod, domain.ErrInvalidInput)
	}
	switch q.Status {
	case "", entity.InvoiceStatusDraft, entity.InvoiceStatusEmitted, entity.InvoiceStatusVoided:
	default:
		return nil, fmt.Errorf("estado %q: %w", q.Status, domain.ErrInvalidInput)
	}
	from, to, err := parseDateRange(q.DateFrom, q.DateTo)
	if err != nil {
		return nil, err
	}

	page := q.PageRequest
	page.Normalize()
	list, total, err := uc.invoiceRepo.List(ctx, repository.InvoiceFilter{
		DateFrom:      from,
		DateTo:        to,
		Type:          q.Type,
		Status:        q.Status,
		ClientID:      q.ClientID,
		BranchID:      q.BranchID,
		PaymentMethod: q.PaymentMethod,
		Query:         q.Q,
		Page:          page.Page,
		Size:          page.Size,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *toInvoiceResponse(inv))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: page.Page, Size: page.Size, Total: total},
	}, nil
}

// TodayByUser facturas EMITTED del usuario emitidas en el día en curso (hora del servidor) con sus totales.
func (uc *InvoiceUseCase) TodayByUser(ctx context.Context, userID string) (*dto.TodaySummaryResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("usuario obligatorio: %w", domain.ErrInvalidInput)
	}
	now := uc.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 1)

	list, err := uc.invoiceRepo.ListEmittedByUser(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	out := &dto.TodaySummaryResponse{
		Invoices:   make([]dto.InvoiceResponse, 0, len(list)),
		TotalSales: decimal.Zero,
	}
	for _, inv := range list {
		out.Invoices = append(out.Invoices, *toInvoiceResponse(inv))
		out.TotalSales = out.TotalSales.Add(inv.Total)
		if out.LastInvoiceTime == nil || inv.IssueDate.After(*out.LastInvoiceTime) {
			t := inv.IssueDate
			out.LastInvoiceTime = &t
		}
	}
	out.InvoiceCount = len(list)
	return out, nil
}

// ListSequences correlativos de la sucursal.
func (uc *InvoiceUseCase) ListSequences(ctx context.Context, branchID string) ([]dto.SequenceResponse, error) {
	branch, err := uc.branchRepo.GetByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, fmt.Errorf("sucursal %s: %w", branchID, domain.ErrNotFound)
	}
	seqs, err := uc.seqRepo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SequenceResponse, 0, len(seqs))
	for _, s := range seqs {
		out = append(out, dto.SequenceResponse{
			BranchID:   s.BranchID,
			Series:     s.Series,
			NextValue:  s.NextValue,
			LastIssued: s.NextValue - 1,
			UpdatedAt:  s.UpdatedAt,
		})
	}
	return out, nil
}

// parseDateRange convierte fechas YYYY-MM-DD (UTC) en [from, to) con to exclusivo.
func parseDateRange(fromStr, toStr string) (from, to *time.Time, err error) {
	if fromStr != "" {
		t, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return nil, nil, fmt.Errorf("date_from %q: %w", fromStr, domain.ErrInvalidInput)
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return nil, nil, fmt.Errorf("date_to %q: %w", toStr, domain.ErrInvalidInput)
		}
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, fmt.Errorf("rango de fechas vacío: %w", domain.ErrInvalidInput)
	}
	return from, to, nil
}
