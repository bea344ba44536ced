// Package memstore implementa los puertos de persistencia en memoria para pruebas de casos de uso.
// Las transacciones se serializan y trabajan sobre una copia del estado que solo se publica
// si la función termina sin error, igual que commit/rollback en PostgreSQL.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-dte/internal/application/billing"
	"github.com/jhoicas/facturacion-dte/internal/application/inventory"
	"github.com/jhoicas/facturacion-dte/internal/domain"
	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	"github.com/jhoicas/facturacion-dte/internal/domain/repository"
)

// Operaciones donde se puede inyectar un fallo con SetFault.
const (
	FaultProductUpdateStock = "product.update_stock"
	FaultSequenceNext       = "sequence.next"
	FaultInvoiceCreate      = "invoice.create"
	FaultInvoiceUpdate      = "invoice.update_status"
	FaultMovementCreate     = "movement.create"
	FaultDashboard          = "dashboard"
)

type seqKey struct{ branchID, series string }

type state struct {
	branches  map[string]entity.Branch
	clients   map[string]entity.Client
	products  map[string]entity.Product
	sequences map[seqKey]entity.Sequence
	invoices  map[string]entity.Invoice
	movements []entity.StockMovement
}

func newState() *state {
	return &state{
		branches:  map[string]entity.Branch{},
		clients:   map[string]entity.Client{},
		products:  map[string]entity.Product{},
		sequences: map[seqKey]entity.Sequence{},
		invoices:  map[string]entity.Invoice{},
	}
}

func (s *state) clone() *state {
	c := &state{
		branches:  make(map[string]entity.Branch, len(s.branches)),
		clients:   make(map[string]entity.Client, len(s.clients)),
		products:  make(map[string]entity.Product, len(s.products)),
		sequences: make(map[seqKey]entity.Sequence, len(s.sequences)),
		invoices:  make(map[string]entity.Invoice, len(s.invoices)),
		movements: slices.Clone(s.movements),
	}
	for k, v := range s.branches {
		c.branches[k] = v
	}
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	for k, v := range s.invoices {
		v.Items = slices.Clone(v.Items)
		c.invoices[k] = v
	}
	return c
}

// Store base de datos en memoria.
type Store struct {
	mu   sync.Mutex // protege st
	txMu sync.Mutex // una transacción a la vez
	st   *state

	faultMu sync.Mutex
	faults  map[string]error

	now func() time.Time
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState(), faults: map[string]error{}, now: time.Now}
}

// SetFault hace que la operación op falle con err hasta ClearFaults.
func (s *Store) SetFault(op string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[op] = err
}

// ClearFaults elimina los fallos inyectados.
func (s *Store) ClearFaults() {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults = map[string]error{}
}

func (s *Store) fault(op string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.faults[op]
}

// ---------- Semillas ----------

// AddBranch registra una sucursal.
func (s *Store) AddBranch(b entity.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.branches[b.ID] = b
}

// AddClient registra un cliente.
func (s *Store) AddClient(c entity.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.clients[c.ID] = c
}

// AddProduct registra un producto. Si es un bien con existencia inicial también escribe el
// movimiento IN de apertura para que contador y kardex coincidan.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
	if p.TracksStock() && !p.StockQty.IsZero() {
		s.st.movements = append(s.st.movements, entity.StockMovement{
			ID:        "open-" + p.ID,
			ProductID: p.ID,
			Direction: entity.MovementIN,
			Quantity:  p.StockQty.Abs(),
			Delta:     p.StockQty,
			Note:      "Inventario inicial",
			CreatedAt: s.now(),
		})
	}
}

// SetStockCounter sobrescribe el contador sin tocar el kardex (simula un desfase).
func (s *Store) SetStockCounter(productID string, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.st.products[productID]
	p.StockQty = qty
	s.st.products[productID] = p
}

// Product copia del producto confirmado.
func (s *Store) Product(id string) (entity.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	return p, ok
}

// Movements copia del kardex confirmado del producto, en orden de inserción.
func (s *Store) Movements(productID string) []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StockMovement
	for _, m := range s.st.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

// InvoiceCount número de facturas confirmadas.
func (s *Store) InvoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.invoices)
}

// SequenceNext próximo valor del correlativo (1 si no existe).
func (s *Store) SequenceNext(branchID, series string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq, ok := s.st.sequences[seqKey{branchID, series}]; ok {
		return seq.NextValue
	}
	return 1
}

// ---------- Repositorios ----------

// Repos repositorios fuera de transacción (lecturas y escrituras directas sobre el estado confirmado).
func (s *Store) Repos() billing.BillingTx {
	v := &view{s: s}
	return v.repos()
}

// view acceso al estado: st == nil significa estado confirmado bajo s.mu.
type view struct {
	s  *Store
	st *state
}

func (v *view) repos() billing.BillingTx {
	return billing.BillingTx{
		Products:  productRepo{v},
		Branches:  branchRepo{v},
		Clients:   clientRepo{v},
		Sequences: sequenceRepo{v},
		Invoices:  invoiceRepo{v},
		Movements: movementRepo{v},
	}
}

// with ejecuta fn con el estado de la vista.
func (v *view) with(fn func(st *state) error) error {
	if v.st != nil {
		return fn(v.st)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.st)
}

// ---------- Transacciones ----------

var (
	_ billing.BillingTxRunner = (*Store)(nil)
	_ inventory.TxRunner      = (*Store)(nil)
)

func (s *Store) inTx(ctx context.Context, fn func(v *view) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransactionAborted, err)
	}

	s.mu.Lock()
	work := s.st.clone()
	s.mu.Unlock()

	if err := fn(&view{s: s, st: work}); err != nil {
		if domain.IsDomainError(err) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrTransactionAborted, err)
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.inTx(ctx, func(v *view) error {
		return fn(movementRepo{v}, productRepo{v})
	})
}

// RunBilling implementa billing.BillingTxRunner.
func (s *Store) RunBilling(ctx context.Context, fn func(tx billing.BillingTx) error) error {
	return s.inTx(ctx, func(v *view) error {
		return fn(v.repos())
	})
}

// ---------- Productos, sucursales y clientes ----------

type productRepo struct{ v *view }

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.with(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r productRepo) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	err := r.v.with(func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out[id] = &p
			}
		}
		return nil
	})
	return out, err
}

func (r productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r productRepo) UpdateStock(_ context.Context, id string, qty decimal.Decimal) error {
	if err := r.v.s.fault(FaultProductUpdateStock); err != nil {
		return err
	}
	return r.v.with(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
		}
		p.StockQty = qty
		p.UpdatedAt = r.v.s.now()
		st.products[id] = p
		return nil
	})
}

func (r productRepo) ListLowStock(_ context.Context, threshold decimal.Decimal, limit int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.with(func(st *state) error {
		for _, p := range st.products {
			if p.TracksStock() && p.IsActive && p.StockQty.LessThanOrEqual(threshold) {
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StockQty.Equal(out[j].StockQty) {
			return out[i].StockQty.LessThan(out[j].StockQty)
		}
		return out[i].SKU < out[j].SKU
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

type branchRepo struct{ v *view }

func (r branchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	var out *entity.Branch
	err := r.v.with(func(st *state) error {
		if b, ok := st.branches[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

type clientRepo struct{ v *view }

func (r clientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	var out *entity.Client
	err := r.v.with(func(st *state) error {
		if c, ok := st.clients[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

// ---------- Correlativos ----------

type sequenceRepo struct{ v *view }

func (r sequenceRepo) NextValue(_ context.Context, branchID, series string) (int64, error) {
	if err := r.v.s.fault(FaultSequenceNext); err != nil {
		return 0, err
	}
	var val int64
	err := r.v.with(func(st *state) error {
		k := seqKey{branchID, series}
		seq, ok := st.sequences[k]
		if !ok {
			seq = entity.Sequence{BranchID: branchID, Series: series, NextValue: 1}
		}
		val = seq.NextValue
		seq.NextValue++
		seq.UpdatedAt = r.v.s.now()
		st.sequences[k] = seq
		return nil
	})
	return val, err
}

func (r sequenceRepo) ListByBranch(_ context.Context, branchID string) ([]*entity.Sequence, error) {
	var out []*entity.Sequence
	err := r.v.with(func(st *state) error {
		for _, seq := range st.sequences {
			if seq.BranchID == branchID {
				out = append(out, &seq)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Series < out[j].Series })
	return out, err
}

// ---------- Facturas ----------

type invoiceRepo struct{ v *view }

func (r invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	if err := r.v.s.fault(FaultInvoiceCreate); err != nil {
		return err
	}
	return r.v.with(func(st *state) error {
		for _, other := range st.invoices {
			if other.ID == inv.ID ||
				other.DTEControlCode == inv.DTEControlCode ||
				other.GenerationCode == inv.GenerationCode ||
				(other.BranchID == inv.BranchID && other.Series == inv.Series && other.Sequential == inv.Sequential) {
				return fmt.Errorf("factura %s: %w", inv.ControlNumber, domain.ErrDuplicate)
			}
		}
		c := *inv
		c.Items = slices.Clone(inv.Items)
		st.invoices[inv.ID] = c
		return nil
	})
}

func (r invoiceRepo) get(id string) (*entity.Invoice, error) {
	var out *entity.Invoice
	err := r.v.with(func(st *state) error {
		inv, ok := st.invoices[id]
		if !ok {
			return nil
		}
		inv.Items = slices.Clone(inv.Items)
		if c, ok := st.clients[inv.ClientID]; ok {
			inv.ClientName = c.Name
		}
		out = &inv
		return nil
	})
	return out, err
}

func (r invoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	return r.get(id)
}

func (r invoiceRepo) GetForUpdate(_ context.Context, id string) (*entity.Invoice, error) {
	return r.get(id)
}

func (r invoiceRepo) UpdateStatus(_ context.Context, id, status string, updatedAt time.Time) error {
	if err := r.v.s.fault(FaultInvoiceUpdate); err != nil {
		return err
	}
	return r.v.with(func(st *state) error {
		inv, ok := st.invoices[id]
		if !ok {
			return fmt.Errorf("factura %s: %w", id, domain.ErrNotFound)
		}
		inv.Status = status
		inv.UpdatedAt = updatedAt
		st.invoices[id] = inv
		return nil
	})
}

func matchInvoice(inv entity.Invoice, clientName string, f repository.InvoiceFilter) bool {
	switch {
	case f.DateFrom != nil && inv.IssueDate.Before(*f.DateFrom):
		return false
	case f.DateTo != nil && !inv.IssueDate.Before(*f.DateTo):
		return false
	case f.Type != "" && inv.Type != f.Type:
		return false
	case f.Status != "" && inv.Status != f.Status:
		return false
	case f.ClientID != "" && inv.ClientID != f.ClientID:
		return false
	case f.BranchID != "" && inv.BranchID != f.BranchID:
		return false
	case f.PaymentMethod != "" && inv.PaymentMethod != f.PaymentMethod:
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		return strings.Contains(strings.ToLower(inv.ControlNumber), q) ||
			strings.Contains(strings.ToLower(inv.GenerationCode), q) ||
			strings.Contains(strings.ToLower(clientName), q)
	}
	return true
}

func (r invoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	var all []*entity.Invoice
	err := r.v.with(func(st *state) error {
		for _, inv := range st.invoices {
			name := st.clients[inv.ClientID].Name
			if matchInvoice(inv, name, f) {
				inv.ClientName = name
				inv.Items = nil
				all = append(all, &inv)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].IssueDate.Equal(all[j].IssueDate) {
			return all[i].IssueDate.After(all[j].IssueDate)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := len(all)
	start := (f.Page - 1) * f.Size
	if f.Page < 1 || f.Size < 1 || start >= total {
		return []*entity.Invoice{}, total, nil
	}
	end := min(start+f.Size, total)
	return all[start:end], total, nil
}

func (r invoiceRepo) ListEmittedByUser(_ context.Context, userID string, from, to time.Time) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	err := r.v.with(func(st *state) error {
		for _, inv := range st.invoices {
			if inv.UserID != userID || inv.Status != entity.InvoiceStatusEmitted {
				continue
			}
			if inv.IssueDate.Before(from) || !inv.IssueDate.Before(to) {
				continue
			}
			inv.Items = slices.Clone(inv.Items)
			inv.ClientName = st.clients[inv.ClientID].Name
			out = append(out, &inv)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].IssueDate.After(out[j].IssueDate) })
	return out, err
}

// ---------- Kardex ----------

type movementRepo struct{ v *view }

func (r movementRepo) Create(_ context.Context, mv *entity.StockMovement) error {
	if err := r.v.s.fault(FaultMovementCreate); err != nil {
		return err
	}
	return r.v.with(func(st *state) error {
		st.movements = append(st.movements, *mv)
		return nil
	})
}

func (r movementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.v.with(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			if m := st.movements[i]; m.ProductID == productID {
				out = append(out, &m)
			}
		}
		return nil
	})
	if offset >= len(out) {
		return []*entity.StockMovement{}, err
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r movementRepo) CountByProduct(_ context.Context, productID string) (int, error) {
	n := 0
	err := r.v.with(func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r movementRepo) SumByProduct(_ context.Context, productID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.v.with(func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				sum = sum.Add(m.Delta)
			}
		}
		return nil
	})
	return sum, err
}

// ---------- Tablero ----------

var _ repository.DashboardRepository = (*Store)(nil)

func (s *Store) dashboardInvoices(f repository.DashboardFilter) ([]entity.Invoice, error) {
	if err := s.fault(FaultDashboard); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Invoice
	for _, inv := range s.st.invoices {
		switch {
		case inv.Status != entity.InvoiceStatusEmitted:
			continue
		case f.BranchID != nil && inv.BranchID != *f.BranchID:
			continue
		case f.DateFrom != nil && inv.IssueDate.Before(*f.DateFrom):
			continue
		case f.DateTo != nil && !inv.IssueDate.Before(*f.DateTo):
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

// GetTotals implementa repository.DashboardRepository.
func (s *Store) GetTotals(_ context.Context, f repository.DashboardFilter) (decimal.Decimal, int, error) {
	list, err := s.dashboardInvoices(f)
	if err != nil {
		return decimal.Zero, 0, err
	}
	total := decimal.Zero
	for _, inv := range list {
		total = total.Add(inv.Total)
	}
	return total, len(list), nil
}

// CountByType implementa repository.DashboardRepository.
func (s *Store) CountByType(_ context.Context, f repository.DashboardFilter) (map[string]int, error) {
	list, err := s.dashboardInvoices(f)
	if err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, inv := range list {
		out[inv.Type]++
	}
	return out, nil
}

// CountByStatus implementa repository.DashboardRepository.
func (s *Store) CountByStatus(_ context.Context, f repository.DashboardFilter) (map[string]int, error) {
	list, err := s.dashboardInvoices(f)
	if err != nil {
		return nil, err
	}
	out := map[string]int{}
	for _, inv := range list {
		out[inv.Status]++
	}
	return out, nil
}

// GetDailySales implementa repository.DashboardRepository.
func (s *Store) GetDailySales(_ context.Context, f repository.DashboardFilter) ([]repository.DailySales, error) {
	list, err := s.dashboardInvoices(f)
	if err != nil {
		return nil, err
	}
	byDay := map[string]decimal.Decimal{}
	for _, inv := range list {
		day := inv.IssueDate.UTC().Format("2006-01-02")
		byDay[day] = byDay[day].Add(inv.Total)
	}
	out := make([]repository.DailySales, 0, len(byDay))
	for day, total := range byDay {
		out = append(out, repository.DailySales{Date: day, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// ErrInjected fallo genérico para SetFault.
var ErrInjected = errors.New("fallo inyectado")
