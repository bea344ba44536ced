package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturacion-dte/internal/domain"
	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	"github.com/jhoicas/facturacion-dte/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `
	i.id, i.control_number, i.dte_control_code, i.generation_code, i.reception_seal, i.sequential,
	i.issue_date, i.series, i.type, i.branch_id, i.client_id, i.user_id,
	i.subtotal, i.vat, i.rent_retention, i.vat_retention, i.total,
	i.payment_method, i.status, i.observations, i.created_at, i.updated_at, c.name`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste cabecera y líneas. Las líneas van en un solo batch.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoices (
			id, control_number, dte_control_code, generation_code, reception_seal, sequential,
			issue_date, series, type, branch_id, client_id, user_id,
			subtotal, vat, rent_retention, vat_retention, total,
			payment_method, status, observations, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		inv.ID, inv.ControlNumber, inv.DTEControlCode, inv.GenerationCode, inv.ReceptionSeal, inv.Sequential,
		inv.IssueDate, inv.Series, inv.Type, inv.BranchID, inv.ClientID, inv.UserID,
		inv.Subtotal, inv.VAT, inv.RentRetention, inv.VATRetention, inv.Total,
		inv.PaymentMethod, inv.Status, inv.Observations, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("factura %s ya existe: %w", inv.ControlNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	batch := &pgx.Batch{}
	for _, it := range inv.Items {
		batch.Queue(`
			INSERT INTO invoice_items (id, invoice_id, position, product_id, quantity, unit_price, cost, discount, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, inv.ID, it.Position, it.ProductID, it.Quantity, it.UnitPrice, it.Cost, it.Discount, it.Subtotal,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	for range inv.Items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert invoice items: %w", err)
	}
	return nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.ControlNumber, &inv.DTEControlCode, &inv.GenerationCode, &inv.ReceptionSeal, &inv.Sequential,
		&inv.IssueDate, &inv.Series, &inv.Type, &inv.BranchID, &inv.ClientID, &inv.UserID,
		&inv.Subtotal, &inv.VAT, &inv.RentRetention, &inv.VATRetention, &inv.Total,
		&inv.PaymentMethod, &inv.Status, &inv.Observations, &inv.CreatedAt, &inv.UpdatedAt, &inv.ClientName,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByID factura con líneas. (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+`
		FROM invoices i JOIN clients c ON c.id = i.client_id
		WHERE i.id = $1`, id)
}

// GetForUpdate factura con líneas bloqueando la cabecera (FOR UPDATE OF i).
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+`
		FROM invoices i JOIN clients c ON c.id = i.client_id
		WHERE i.id = $1
		FOR UPDATE OF i`, id)
}

func (r *InvoiceRepo) getOne(ctx context.Context, query, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	items, err := r.loadItems(ctx, []string{inv.ID})
	if err != nil {
		return nil, err
	}
	inv.Items = items[inv.ID]
	return inv, nil
}

// loadItems líneas de varias facturas, indexadas por factura y ordenadas por posición.
func (r *InvoiceRepo) loadItems(ctx context.Context, invoiceIDs []string) (map[string][]entity.InvoiceItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT it.id, it.invoice_id, it.position, it.product_id, it.quantity, it.unit_price, it.cost,
		       it.discount, it.subtotal, p.name, p.sku
		FROM invoice_items it
		JOIN products p ON p.id = it.product_id
		WHERE it.invoice_id = ANY($1::uuid[])
		ORDER BY it.invoice_id, it.position`, invoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.InvoiceItem, len(invoiceIDs))
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Position, &it.ProductID, &it.Quantity, &it.UnitPrice,
			&it.Cost, &it.Discount, &it.Subtotal, &it.ProductName, &it.SKU); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		out[it.InvoiceID] = append(out[it.InvoiceID], it)
	}
	return out, rows.Err()
}

// UpdateStatus cambia el estado. Es la única columna mutable de la factura.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE invoices SET status = $2, updated_at = $3 WHERE id = $1`, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("factura %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List página de facturas (sin líneas) y total de filas que cumplen el filtro.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.DateFrom != nil {
		add("i.issue_date >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("i.issue_date < $%d", *f.DateTo)
	}
	if f.Type != "" {
		add("i.type = $%d", f.Type)
	}
	if f.Status != "" {
		add("i.status = $%d", f.Status)
	}
	if f.ClientID != "" {
		add("i.client_id = $%d", f.ClientID)
	}
	if f.BranchID != "" {
		add("i.branch_id = $%d", f.BranchID)
	}
	if f.PaymentMethod != "" {
		add("i.payment_method = $%d", f.PaymentMethod)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, likePattern(q))
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(i.control_number ILIKE $%d OR i.generation_code ILIKE $%d OR c.name ILIKE $%d)", n, n, n))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	from := `FROM invoices i JOIN clients c ON c.id = i.client_id ` + where

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) `+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	page, size := f.Page, f.Size
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 25
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`SELECT %s %s ORDER BY i.issue_date DESC, i.created_at DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, from, len(args)-1, len(args))

	list, err := r.queryInvoices(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListEmittedByUser facturas EMITTED del usuario con fecha de emisión en [from, to), con líneas.
func (r *InvoiceRepo) ListEmittedByUser(ctx context.Context, userID string, from, to time.Time) ([]*entity.Invoice, error) {
	list, err := r.queryInvoices(ctx, `SELECT `+invoiceColumns+`
		FROM invoices i JOIN clients c ON c.id = i.client_id
		WHERE i.user_id = $1 AND i.status = 'EMITTED' AND i.issue_date >= $2 AND i.issue_date < $3
		ORDER BY i.issue_date DESC, i.sequential DESC`, userID, from, to)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}
	ids := make([]string, 0, len(list))
	for _, inv := range list {
		ids = append(ids, inv.ID)
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, inv := range list {
		inv.Items = items[inv.ID]
	}
	return list, nil
}

func (r *InvoiceRepo) queryInvoices(ctx context.Context, query string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}
