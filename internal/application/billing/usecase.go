package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-dte/internal/application/dto"
	"github.com/jhoicas/facturacion-dte/internal/domain"
	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	"github.com/jhoicas/facturacion-dte/internal/domain/money"
	"github.com/jhoicas/facturacion-dte/internal/domain/repository"
	"github.com/jhoicas/facturacion-dte/pkg/dte"
)

// InvoiceUseCase ciclo de vida de la factura: preview, emisión, anulación y consultas.
type InvoiceUseCase struct {
	txRunner    BillingTxRunner
	ledger      StockLedger
	branchRepo  repository.BranchRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	invoiceRepo repository.InvoiceRepository
	seqRepo     repository.SequenceRepository
	idem        IdempotencyStore
	metrics     Metrics
	ids         IdentifierConfig
	now         func() time.Time
}

// NewInvoiceUseCase construye el caso de uso. idem y metrics pueden ser nil.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	ledger StockLedger,
	branchRepo repository.BranchRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	seqRepo repository.SequenceRepository,
	idem IdempotencyStore,
	metrics Metrics,
	ids IdentifierConfig,
) *InvoiceUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if ids.Environment == "" {
		ids.Environment = dte.DefaultEnvironment
	}
	if ids.POSCode == "" {
		ids.POSCode = dte.DefaultPOS
	}
	return &InvoiceUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		branchRepo:  branchRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		invoiceRepo: invoiceRepo,
		seqRepo:     seqRepo,
		idem:        idem,
		metrics:     metrics,
		ids:         ids,
		now:         time.Now,
	}
}

// quote resultado de resolver y calcular un carrito.
type quote struct {
	branch   *entity.Branch
	client   *entity.Client
	products map[string]*entity.Product
	items    []entity.InvoiceItem
	totals   money.Totals
}

// validateRequest valida el carrito antes de tocar la BD y devuelve la serie normalizada.
func validateRequest(in *dto.PreviewInvoiceRequest) (string, error) {
	if in.BranchID == "" || in.ClientID == "" {
		return "", fmt.Errorf("sucursal y cliente son obligatorios: %w", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return "", fmt.Errorf("la factura debe tener al menos una línea: %w", domain.ErrInvalidInput)
	}
	if !entity.IsValidInvoiceType(in.Type) {
		return "", fmt.Errorf("tipo de documento %q: %w", in.Type, domain.ErrInvalidInput)
	}
	if !entity.IsValidPaymentMethod(in.PaymentMethod) {
		return "", fmt.Errorf("forma de pago %q: %w", in.PaymentMethod, domain.ErrInvalidInput)
	}
	series, err := dte.NormalizeSeries(in.Series)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	for i, item := range in.Items {
		if item.ProductID == "" {
			return "", fmt.Errorf("línea %d sin producto: %w", i+1, domain.ErrInvalidInput)
		}
		if !item.Quantity.IsPositive() {
			return "", fmt.Errorf("línea %d: cantidad debe ser mayor a cero: %w", i+1, domain.ErrInvalidInput)
		}
		if !money.HasScale(item.Quantity, money.QuantityScale) {
			return "", fmt.Errorf("línea %d: cantidad admite hasta %d decimales: %w", i+1, money.QuantityScale, domain.ErrInvalidInput)
		}
		if item.Discount.IsNegative() {
			return "", fmt.Errorf("línea %d: descuento negativo: %w", i+1, domain.ErrInvalidInput)
		}
		if !money.HasScale(item.Discount, money.Scale) {
			return "", fmt.Errorf("línea %d: descuento admite hasta %d decimales: %w", i+1, money.Scale, domain.ErrInvalidInput)
		}
	}
	return series, nil
}

// quote resuelve sucursal, cliente y productos con los repositorios dados (pool o tx) y calcula líneas y totales.
func (uc *InvoiceUseCase) quote(
	ctx context.Context,
	branches repository.BranchRepository,
	clients repository.ClientRepository,
	products repository.ProductRepository,
	in *dto.PreviewInvoiceRequest,
) (*quote, error) {
	branch, err := branches.GetByID(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, fmt.Errorf("sucursal %s: %w", in.BranchID, domain.ErrNotFound)
	}
	client, err := clients.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("cliente %s: %w", in.ClientID, domain.ErrNotFound)
	}

	ids := make([]string, 0, len(in.Items))
	for _, item := range in.Items {
		ids = append(ids, item.ProductID)
	}
	found, err := products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]money.Line, 0, len(in.Items))
	items := make([]entity.InvoiceItem, 0, len(in.Items))
	for i, item := range in.Items {
		p, ok := found[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("producto %s: %w", item.ProductID, domain.ErrNotFound)
		}
		if !p.IsActive {
			return nil, fmt.Errorf("producto %s inactivo: %w", p.SKU, domain.ErrInvalidInput)
		}
		lines = append(lines, money.Line{Quantity: item.Quantity, UnitPrice: p.UnitPrice, Discount: item.Discount})
		items = append(items, entity.InvoiceItem{
			Position:    i + 1,
			ProductID:   p.ID,
			Quantity:    item.Quantity,
			UnitPrice:   p.UnitPrice,
			Cost:        p.Cost,
			Discount:    item.Discount,
			ProductName: p.Name,
			SKU:         p.SKU,
		})
	}

	totals := money.Calculate(lines, money.Options{
		ApplyRentRetention: in.ApplyRentRetention,
		ApplyVATRetention:  in.ApplyVATRetention,
	})
	for i := range items {
		items[i].Subtotal = totals.LineSubtotals[i]
	}
	return &quote{branch: branch, client: client, products: found, items: items, totals: totals}, nil
}

// Preview calcula líneas y totales sin escribir nada ni consumir correlativo.
func (uc *InvoiceUseCase) Preview(ctx context.Context, in dto.PreviewInvoiceRequest) (*dto.InvoicePreviewResponse, error) {
	if _, err := validateRequest(&in); err != nil {
		return nil, err
	}
	q, err := uc.quote(ctx, uc.branchRepo, uc.clientRepo, uc.productRepo, &in)
	if err != nil {
		return nil, err
	}
	lines := make([]dto.InvoicePreviewLine, 0, len(q.items))
	for _, it := range q.items {
		lines = append(lines, dto.InvoicePreviewLine{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.SKU,
			Kind:        q.products[it.ProductID].Kind,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			Subtotal:    it.Subtotal,
		})
	}
	return &dto.InvoicePreviewResponse{
		Items:         lines,
		Subtotal:      q.totals.Subtotal,
		VAT:           q.totals.VAT,
		RentRetention: q.totals.RentRetention,
		VATRetention:  q.totals.VATRetention,
		Total:         q.totals.Total,
		AmountInWords: money.AmountInWords(q.totals.Total),
	}, nil
}

// stockDemand agrega la cantidad pedida por producto (un producto puede repetirse en varias líneas).
func stockDemand(items []entity.InvoiceItem) (ids []string, demand map[string]decimal.Decimal) {
	demand = make(map[string]decimal.Decimal, len(items))
	for _, it := range items {
		if _, ok := demand[it.ProductID]; !ok {
			ids = append(ids, it.ProductID)
			demand[it.ProductID] = decimal.Zero
		}
		demand[it.ProductID] = demand[it.ProductID].Add(it.Quantity)
	}
	return ids, demand
}

// failureReason etiqueta corta para métricas.
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrIdempotencyInFlight):
		return "idempotency_in_flight"
	case errors.Is(err, domain.ErrTransactionAborted):
		return "aborted"
	}
	return "other"
}
