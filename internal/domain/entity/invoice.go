package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/facturacion-dte/internal/domain"
	"github.com/shopspring/decimal"
)

// Tipos de documento tributario.
const (
	InvoiceTypeInvoice      = "INVOICE"       // Factura consumidor final
	InvoiceTypeTicket       = "TICKET"        // Tiquete
	InvoiceTypeFiscalCredit = "FISCAL_CREDIT" // Comprobante de crédito fiscal
	InvoiceTypeExport       = "EXPORT"        // Factura de exportación
	InvoiceTypeCreditNote   = "CREDIT_NOTE"
	InvoiceTypeDebitNote    = "DEBIT_NOTE"
)

// Formas de pago.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
	PaymentCredit   = "CREDIT"
)

// Estados del documento. DRAFT existe en el modelo pero el motor nunca lo usa.
const (
	InvoiceStatusDraft   = "DRAFT"
	InvoiceStatusEmitted = "EMITTED"
	InvoiceStatusVoided  = "VOIDED"
)

// IsValidInvoiceType indica si t es un tipo de documento soportado.
func IsValidInvoiceType(t string) bool {
	switch t {
	case InvoiceTypeInvoice, InvoiceTypeTicket, InvoiceTypeFiscalCredit,
		InvoiceTypeExport, InvoiceTypeCreditNote, InvoiceTypeDebitNote:
		return true
	}
	return false
}

// IsValidPaymentMethod indica si m es una forma de pago soportada.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCredit:
		return true
	}
	return false
}

// Invoice es la cabecera del documento emitido con sus líneas.
type Invoice struct {
	ID             string
	ControlNumber  string // {serie}-{correlativo 8 dígitos}
	DTEControlCode string // DTE-01-S001P001-000000000000001
	GenerationCode string // UUID en mayúsculas
	ReceptionSeal  string // sello de recepción (hex en mayúsculas)
	Sequential     int64
	IssueDate      time.Time
	Series         string
	Type           string
	BranchID       string
	ClientID       string
	UserID         string
	Subtotal       decimal.Decimal
	VAT            decimal.Decimal // IVA 13%
	RentRetention  decimal.Decimal // retención renta 10%
	VATRetention   decimal.Decimal // retención IVA 1%
	Total          decimal.Decimal
	PaymentMethod  string
	Status         string
	Observations   string
	Items          []InvoiceItem
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Solo lectura (join con clients).
	ClientName string
}

// Void marca la factura como anulada. Solo una factura EMITTED puede anularse y solo una vez.
func (inv *Invoice) Void(now time.Time) error {
	if inv.Status != InvoiceStatusEmitted {
		return fmt.Errorf("factura %s en estado %s: %w", inv.ControlNumber, inv.Status, domain.ErrInvalidState)
	}
	inv.Status = InvoiceStatusVoided
	inv.UpdatedAt = now
	return nil
}
