package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-dte/internal/application/analytics"
	"github.com/jhoicas/facturacion-dte/internal/application/billing"
	"github.com/jhoicas/facturacion-dte/internal/application/dto"
	"github.com/jhoicas/facturacion-dte/internal/application/inventory"
	"github.com/jhoicas/facturacion-dte/internal/domain"
	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	"github.com/jhoicas/facturacion-dte/internal/testutil/memstore"
)

const (
	branchA   = "6f1c2a3e-0001-4a8e-9c55-1b2f0e6d0001"
	branchB   = "6f1c2a3e-0001-4a8e-9c55-1b2f0e6d0002"
	clientID  = "6f1c2a3e-00c1-4a8e-9c55-1b2f0e6d00c1"
	serviceID = "11111111-0000-4000-8000-000000000003"
	userID    = "22222222-0000-4000-8000-000000000001"
)

// seed emite facturas de servicio (precio 10.00 → total 11.30 por unidad) en fechas fijas.
func seed(t *testing.T) *memstore.Store {
	t.Helper()
	store := memstore.New()
	store.AddBranch(entity.Branch{ID: branchA, Code: "SUC001"})
	store.AddBranch(entity.Branch{ID: branchB, Code: "SUC002"})
	store.AddClient(entity.Client{ID: clientID, Name: "CONSUMIDOR FINAL"})
	store.AddProduct(entity.Product{ID: serviceID, SKU: "SRV", Kind: entity.ProductKindService,
		UnitPrice: decimal.RequireFromString("10.00"), IsActive: true})

	repos := store.Repos()
	ledger := inventory.NewStockLedgerUseCase(store, repos.Products, repos.Movements, inventory.Options{}, nil)
	uc := billing.NewInvoiceUseCase(store, ledger, repos.Branches, repos.Clients, repos.Products,
		repos.Invoices, repos.Sequences, nil, nil, billing.IdentifierConfig{})

	issue := func(branch, typ string, qty int64, at time.Time) *dto.InvoiceResponse {
		req := dto.CreateInvoiceRequest{
			PreviewInvoiceRequest: dto.PreviewInvoiceRequest{
				BranchID: branch, ClientID: clientID, Series: "FAC", Type: typ, PaymentMethod: entity.PaymentCash,
				Items: []dto.InvoiceItemRequest{{ProductID: serviceID, Quantity: decimal.NewFromInt(qty)}},
			},
			IssueDate: &at,
		}
		resp, err := uc.CreateInvoice(context.Background(), userID, req)
		require.NoError(t, err)
		return resp
	}

	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 23, 59, 0, 0, time.UTC)
	issue(branchA, entity.InvoiceTypeInvoice, 1, day1)                  // 11.30
	issue(branchA, entity.InvoiceTypeInvoice, 2, day1.Add(2*time.Hour)) // 22.60
	issue(branchB, entity.InvoiceTypeFiscalCredit, 3, day2)             // 33.90
	voided := issue(branchA, entity.InvoiceTypeTicket, 4, day2)         // 45.20 anulada
	_, err := uc.VoidInvoice(context.Background(), voided.ID, userID)
	require.NoError(t, err)
	return store
}

func TestGetDashboardMetrics(t *testing.T) {
	uc := analytics.NewDashboardUseCase(seed(t))

	resp, err := uc.GetDashboardMetrics(context.Background(), dto.DashboardQuery{})
	require.NoError(t, err)

	assert.Equal(t, "67.80", resp.TotalSales.StringFixed(2))
	assert.Equal(t, 3, resp.InvoiceCount)
	assert.Equal(t, "22.60", resp.AverageTicket.StringFixed(2))
	assert.Equal(t, map[string]int{entity.InvoiceTypeInvoice: 2, entity.InvoiceTypeFiscalCredit: 1}, resp.ByType)
	assert.Equal(t, map[string]int{entity.InvoiceStatusEmitted: 3}, resp.ByStatus)
	require.Len(t, resp.DailySales, 2)
	assert.Equal(t, "2024-03-01", resp.DailySales[0].Date)
	assert.Equal(t, "33.90", resp.DailySales[0].Total.StringFixed(2))
	assert.Equal(t, "2024-03-02", resp.DailySales[1].Date)
	assert.Equal(t, "33.90", resp.DailySales[1].Total.StringFixed(2))
}

func TestGetDashboardMetrics_Filters(t *testing.T) {
	uc := analytics.NewDashboardUseCase(seed(t))
	ctx := context.Background()

	byBranch, err := uc.GetDashboardMetrics(ctx, dto.DashboardQuery{BranchID: branchA})
	require.NoError(t, err)
	assert.Equal(t, 2, byBranch.InvoiceCount)
	assert.Equal(t, "33.90", byBranch.TotalSales.StringFixed(2))

	oneDay, err := uc.GetDashboardMetrics(ctx, dto.DashboardQuery{DateFrom: "2024-03-02", DateTo: "2024-03-02"})
	require.NoError(t, err)
	assert.Equal(t, 1, oneDay.InvoiceCount)
	assert.Equal(t, map[string]int{entity.InvoiceStatusEmitted: 1}, oneDay.ByStatus)
}

func TestGetDashboardMetrics_VoidedNeverCounted(t *testing.T) {
	uc := analytics.NewDashboardUseCase(seed(t))

	// En la sucursal A, el 2024-03-02 solo existe la factura anulada.
	resp, err := uc.GetDashboardMetrics(context.Background(), dto.DashboardQuery{
		BranchID: branchA,
		DateFrom: "2024-03-02",
		DateTo:   "2024-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.InvoiceCount)
	assert.True(t, resp.TotalSales.IsZero())
	assert.Empty(t, resp.ByType)
	assert.Empty(t, resp.ByStatus)
	assert.NotContains(t, resp.ByStatus, entity.InvoiceStatusVoided)
	assert.Empty(t, resp.DailySales)
}

func TestGetDashboardMetrics_Empty(t *testing.T) {
	uc := analytics.NewDashboardUseCase(memstore.New())

	resp, err := uc.GetDashboardMetrics(context.Background(), dto.DashboardQuery{})
	require.NoError(t, err)
	assert.True(t, resp.TotalSales.IsZero())
	assert.True(t, resp.AverageTicket.IsZero())
	assert.NotNil(t, resp.ByType)
	assert.NotNil(t, resp.ByStatus)
	assert.Empty(t, resp.DailySales)
}

func TestGetDashboardMetrics_Errors(t *testing.T) {
	store := memstore.New()
	uc := analytics.NewDashboardUseCase(store)
	ctx := context.Background()

	for name, q := range map[string]dto.DashboardQuery{
		"fecha inválida": {DateFrom: "2024-13-01"},
		"rango vacío":    {DateFrom: "2024-03-05", DateTo: "2024-03-01"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := uc.GetDashboardMetrics(ctx, q)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	boom := errors.New("conexión perdida")
	store.SetFault(memstore.FaultDashboard, boom)
	_, err := uc.GetDashboardMetrics(ctx, dto.DashboardQuery{})
	assert.ErrorIs(t, err, boom)
}
