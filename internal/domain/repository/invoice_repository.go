package repository

import (
	"context"
	"time"

	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
)

// InvoiceFilter filtros del listado de facturas. Campos vacíos no filtran.
// El rango de fechas es [DateFrom, DateTo) sobre issue_date.
type InvoiceFilter struct {
	DateFrom      *time.Time
	DateTo        *time.Time
	Type          string
	Status        string
	ClientID      string
	BranchID      string
	PaymentMethod string
	Query         string // número de control, código de generación o nombre del cliente
	Page          int
	Size          int
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
// GetByID y GetForUpdate devuelven (nil, nil) si no existe.
type InvoiceRepository interface {
	// Create inserta cabecera y líneas.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetForUpdate carga la factura con sus líneas bloqueando la cabecera.
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error
	// List devuelve la página pedida y el total de filas que cumplen el filtro (sin líneas).
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, int, error)
	// ListEmittedByUser facturas EMITTED del usuario con issue_date en [from, to), más reciente primero, con líneas.
	ListEmittedByUser(ctx context.Context, userID string, from, to time.Time) ([]*entity.Invoice, error)
}
