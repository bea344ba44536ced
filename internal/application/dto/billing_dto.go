package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItemRequest línea del carrito. El precio se toma del producto al emitir.
type InvoiceItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"`
	Discount  decimal.Decimal `json:"discount"`
}

// PreviewInvoiceRequest body para POST /api/invoices/preview.
type PreviewInvoiceRequest struct {
	BranchID           string               `json:"branch_id" validate:"required,uuid"`
	ClientID           string               `json:"client_id" validate:"required,uuid"`
	Series             string               `json:"series" validate:"required,max=10"`
	Type               string               `json:"type" validate:"required,oneof=INVOICE TICKET FISCAL_CREDIT EXPORT CREDIT_NOTE DEBIT_NOTE"`
	PaymentMethod      string               `json:"payment_method" validate:"required,oneof=CASH CARD TRANSFER CREDIT"`
	ApplyRentRetention bool                 `json:"apply_rent_retention"`
	ApplyVATRetention  bool                 `json:"apply_vat_retention"`
	Observations       string               `json:"observations,omitempty" validate:"max=500"`
	Items              []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// IssueDate opcional; si va vacío se usa la hora del servidor.
type CreateInvoiceRequest struct {
	PreviewInvoiceRequest
	IssueDate *time.Time `json:"issue_date,omitempty"`
}

// InvoicePreviewLine línea calculada del preview.
type InvoicePreviewLine struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Kind        string          `json:"kind"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// InvoicePreviewResponse totales calculados sin persistir nada.
type InvoicePreviewResponse struct {
	Items         []InvoicePreviewLine `json:"items"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	VAT           decimal.Decimal      `json:"vat"`
	RentRetention decimal.Decimal      `json:"rent_retention"`
	VATRetention  decimal.Decimal      `json:"vat_retention"`
	Total         decimal.Decimal      `json:"total"`
	AmountInWords string               `json:"amount_in_words"`
}

// InvoiceItemResponse línea de la factura emitida.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Position    int             `json:"position"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// InvoiceResponse factura con detalle para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID             string                `json:"id"`
	ControlNumber  string                `json:"control_number"`
	DTEControlCode string                `json:"dte_control_code"`
	GenerationCode string                `json:"generation_code"`
	ReceptionSeal  string                `json:"reception_seal"`
	Sequential     int64                 `json:"sequential"`
	IssueDate      time.Time             `json:"issue_date"`
	Series         string                `json:"series"`
	Type           string                `json:"type"`
	BranchID       string                `json:"branch_id"`
	ClientID       string                `json:"client_id"`
	ClientName     string                `json:"client_name,omitempty"`
	UserID         string                `json:"user_id"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	VAT            decimal.Decimal       `json:"vat"`
	RentRetention  decimal.Decimal       `json:"rent_retention"`
	VATRetention   decimal.Decimal       `json:"vat_retention"`
	Total          decimal.Decimal       `json:"total"`
	AmountInWords  string                `json:"amount_in_words"`
	PaymentMethod  string                `json:"payment_method"`
	Status         string                `json:"status"`
	Observations   string                `json:"observations,omitempty"`
	Items          []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// InvoiceListQuery query string de GET /api/invoices.
// DateFrom/DateTo en formato YYYY-MM-DD (DateTo inclusivo).
type InvoiceListQuery struct {
	PageRequest
	DateFrom      string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo        string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
	Type          string `query:"type" validate:"omitempty,oneof=INVOICE TICKET FISCAL_CREDIT EXPORT CREDIT_NOTE DEBIT_NOTE"`
	Status        string `query:"status" validate:"omitempty,oneof=DRAFT EMITTED VOIDED"`
	ClientID      string `query:"client_id" validate:"omitempty,uuid"`
	BranchID      string `query:"branch_id" validate:"omitempty,uuid"`
	PaymentMethod string `query:"payment_method" validate:"omitempty,oneof=CASH CARD TRANSFER CREDIT"`
	Q             string `query:"q" validate:"max=100"`
}

// InvoiceListResponse página de facturas (sin líneas).
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// TodaySummaryResponse respuesta de GET /api/invoices/today.
type TodaySummaryResponse struct {
	Invoices        []InvoiceResponse `json:"invoices"`
	TotalSales      decimal.Decimal   `json:"total_sales"`
	InvoiceCount    int               `json:"invoice_count"`
	LastInvoiceTime *time.Time        `json:"last_invoice_time"`
}

// SequenceResponse correlativo de una serie en GET /api/branches/:id/sequences.
type SequenceResponse struct {
	BranchID   string    `json:"branch_id"`
	Series     string    `json:"series"`
	NextValue  int64     `json:"next_value"`
	LastIssued int64     `json:"last_issued"`
	UpdatedAt  time.Time `json:"updated_at"`
}
