package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-dte/internal/application/analytics"
	"github.com/jhoicas/facturacion-dte/internal/application/billing"
	"github.com/jhoicas/facturacion-dte/internal/application/dto"
	"github.com/jhoicas/facturacion-dte/internal/application/inventory"
	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	apphttp "github.com/jhoicas/facturacion-dte/internal/interfaces/http"
	"github.com/jhoicas/facturacion-dte/internal/testutil/memstore"
	pkgjwt "github.com/jhoicas/facturacion-dte/pkg/jwt"
)

const (
	branchID  = "6f1c2a3e-0001-4a8e-9c55-1b2f0e6d0001"
	clientID  = "6f1c2a3e-00c1-4a8e-9c55-1b2f0e6d00c1"
	productID = "11111111-0000-4000-8000-000000000001"
	missingID = "11111111-0000-4000-8000-0000000000ff"
)

type apiFixture struct {
	app   *fiber.App
	store *memstore.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memstore.New()
	store.AddBranch(entity.Branch{ID: branchID, Code: "SUC001", Name: "Central"})
	store.AddClient(entity.Client{ID: clientID, Name: "CONSUMIDOR FINAL"})
	store.AddProduct(entity.Product{ID: productID, SKU: "CAF-500", Name: "Café 500g", Kind: entity.ProductKindGood,
		UnitPrice: decimal.RequireFromString("10.00"), StockQty: decimal.NewFromInt(5), IsActive: true})

	repos := store.Repos()
	ledger := inventory.NewStockLedgerUseCase(store, repos.Products, repos.Movements, inventory.Options{}, nil)
	invoices := billing.NewInvoiceUseCase(store, ledger, repos.Branches, repos.Clients, repos.Products,
		repos.Invoices, repos.Sequences, memstore.NewIdempotencyStore(), nil, billing.IdentifierConfig{})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Invoices:  invoices,
		Sequences: invoices,
		Stock:     ledger,
		LowStock:  inventory.NewLowStockUseCase(repos.Products, 10),
		Dashboard: analytics.NewDashboardUseCase(store),
		JWTSecret: testJWTSecret,
	})
	return &apiFixture{app: app, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func auth(t *testing.T, roles ...string) map[string]string {
	return map[string]string{"Authorization": tokenFor(t, roles...)}
}

func invoiceBody(qty string) map[string]any {
	return map[string]any{
		"branch_id":      branchID,
		"client_id":      clientID,
		"series":         "FAC",
		"type":           entity.InvoiceTypeInvoice,
		"payment_method": entity.PaymentCash,
		"items":          []map[string]any{{"product_id": productID, "quantity": qty}},
	}
}

func errorCode(t *testing.T, data []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &e), string(data))
	return e
}

func TestRouter_CreateGetAndVoid(t *testing.T) {
	f := newAPI(t)

	resp, data := f.do(t, http.MethodPost, "/api/invoices", invoiceBody("2"), auth(t, pkgjwt.RoleCashier))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var inv dto.InvoiceResponse
	require.NoError(t, json.Unmarshal(data, &inv))
	assert.Equal(t, "FAC-00000001", inv.ControlNumber)
	assert.Equal(t, "22.6", inv.Total.String())
	assert.Equal(t, testUserID, inv.UserID)

	resp, data = f.do(t, http.MethodGet, "/api/invoices/"+inv.ID, nil, auth(t, pkgjwt.RoleCashier))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), inv.DTEControlCode)

	resp, data = f.do(t, http.MethodPost, "/api/invoices/"+inv.ID+"/void", nil, auth(t, pkgjwt.RoleCashier))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "un cajero no anula")

	resp, data = f.do(t, http.MethodPost, "/api/invoices/"+inv.ID+"/void", nil, auth(t, pkgjwt.RoleManager))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Contains(t, string(data), entity.InvoiceStatusVoided)

	resp, data = f.do(t, http.MethodPost, "/api/invoices/"+inv.ID+"/void", nil, auth(t, pkgjwt.RoleAdmin))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE", errorCode(t, data).Code)
}

func TestRouter_CreateErrors(t *testing.T) {
	f := newAPI(t)

	resp, data := f.do(t, http.MethodPost, "/api/invoices", invoiceBody("9"), auth(t, pkgjwt.RoleCashier))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, data).Code)

	body := invoiceBody("1")
	body["items"] = []map[string]any{{"product_id": missingID, "quantity": "1"}}
	resp, data = f.do(t, http.MethodPost, "/api/invoices", body, auth(t, pkgjwt.RoleCashier))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, data).Code)

	body = invoiceBody("1")
	body["type"] = "RECIBO"
	body["branch_id"] = "no-es-uuid"
	resp, data = f.do(t, http.MethodPost, "/api/invoices", body, auth(t, pkgjwt.RoleCashier))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := errorCode(t, data)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Equal(t, "oneof=INVOICE TICKET FISCAL_CREDIT EXPORT CREDIT_NOTE DEBIT_NOTE", e.Details["type"])
	assert.Equal(t, "uuid", e.Details["branch_id"])

	body = invoiceBody("0")
	resp, data = f.do(t, http.MethodPost, "/api/invoices", body, auth(t, pkgjwt.RoleCashier))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, data).Code)

	resp, _ = f.do(t, http.MethodPost, "/api/invoices", invoiceBody("1"), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	assert.Equal(t, 0, f.store.InvoiceCount())
}

func TestRouter_IdempotentCreate(t *testing.T) {
	f := newAPI(t)
	headers := auth(t, pkgjwt.RoleCashier)
	headers[apphttp.HeaderIdempotencyKey] = "caja-1-000123"

	resp, first := f.do(t, http.MethodPost, "/api/invoices", invoiceBody("1"), headers)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, second := f.do(t, http.MethodPost, "/api/invoices", invoiceBody("1"), headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(apphttp.HeaderIdempotencyReplayed))

	var a, b dto.InvoiceResponse
	require.NoError(t, json.Unmarshal(first, &a))
	require.NoError(t, json.Unmarshal(second, &b))
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 1, f.store.InvoiceCount())
}

func TestRouter_PreviewAndListing(t *testing.T) {
	f := newAPI(t)
	cashier := auth(t, pkgjwt.RoleCashier)

	resp, data := f.do(t, http.MethodPost, "/api/invoices/preview", invoiceBody("3"), cashier)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Contains(t, string(data), "TREINTA Y TRES DÓLARES CON NOVENTA CENTAVOS")
	assert.Equal(t, 0, f.store.InvoiceCount())

	for i := 0; i < 3; i++ {
		resp, _ = f.do(t, http.MethodPost, "/api/invoices", invoiceBody("1"), cashier)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, data = f.do(t, http.MethodGet, "/api/invoices?page=1&size=2&status=EMITTED", nil, cashier)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var list dto.InvoiceListResponse
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 3, list.Page.Total)

	resp, data = f.do(t, http.MethodGet, "/api/invoices?date_from=ayer", nil, cashier)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "datetime=2006-01-02", errorCode(t, data).Details["date_from"])

	resp, data = f.do(t, http.MethodGet, "/api/invoices/today", nil, cashier)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var today dto.TodaySummaryResponse
	require.NoError(t, json.Unmarshal(data, &today))
	assert.Equal(t, 3, today.InvoiceCount)

	resp, data = f.do(t, http.MethodGet, "/api/branches/"+branchID+"/sequences", nil, cashier)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"next_value":4`)

	resp, _ = f.do(t, http.MethodGet, "/api/invoices/no-es-uuid", nil, cashier)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = f.do(t, http.MethodGet, "/api/invoices/"+missingID, nil, cashier)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_Dashboard(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.do(t, http.MethodPost, "/api/invoices", invoiceBody("1"), auth(t, pkgjwt.RoleCashier))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/invoices/dashboard-metrics", nil, auth(t, pkgjwt.RoleCashier))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, data := f.do(t, http.MethodGet, "/api/invoices/dashboard-metrics", nil, auth(t, pkgjwt.RoleManager))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var m dto.DashboardMetricsResponse
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, 1, m.InvoiceCount)
	assert.Equal(t, "11.30", m.TotalSales.StringFixed(2))

	f.store.SetFault(memstore.FaultDashboard, errors.New("conexión perdida"))
	resp, data = f.do(t, http.MethodGet, "/api/invoices/dashboard-metrics", nil, auth(t, pkgjwt.RoleManager))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	e := errorCode(t, data)
	assert.Equal(t, "INTERNAL", e.Code)
	assert.NotContains(t, e.Message, "conexión perdida")
}

func TestRouter_Inventory(t *testing.T) {
	f := newAPI(t)
	manager := auth(t, pkgjwt.RoleManager)

	resp, _ := f.do(t, http.MethodPost, "/api/products/"+productID+"/stock",
		map[string]any{"type": "IN", "quantity": "4"}, auth(t, pkgjwt.RoleCashier))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, data := f.do(t, http.MethodPost, "/api/products/"+productID+"/stock",
		map[string]any{"type": "ADJUST", "quantity": "12", "note": "conteo físico"}, manager)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var adj dto.AdjustStockResponse
	require.NoError(t, json.Unmarshal(data, &adj))
	assert.Equal(t, "12", adj.StockQty.String())
	assert.Equal(t, "7", adj.Movement.Delta.String())

	resp, data = f.do(t, http.MethodPost, "/api/products/"+productID+"/stock",
		map[string]any{"type": "OUT", "quantity": "20"}, manager)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, data).Code)

	resp, data = f.do(t, http.MethodPost, "/api/products/"+productID+"/stock",
		map[string]any{"type": "MOVE", "quantity": "1"}, manager)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "oneof=IN OUT ADJUST", errorCode(t, data).Details["type"])

	resp, data = f.do(t, http.MethodGet, "/api/products/"+productID+"/stock", nil, manager)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status dto.StockStatusResponse
	require.NoError(t, json.Unmarshal(data, &status))
	assert.True(t, status.InSync)

	resp, data = f.do(t, http.MethodGet, "/api/products/"+productID+"/movements?size=1", nil, manager)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movs dto.StockMovementListResponse
	require.NoError(t, json.Unmarshal(data, &movs))
	assert.Len(t, movs.Items, 1)
	assert.Equal(t, 2, movs.Page.Total)

	resp, data = f.do(t, http.MethodGet, "/api/products/low-stock?threshold=20", nil, manager)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"total":1`)

	resp, _ = f.do(t, http.MethodGet, "/api/products/low-stock?threshold=-1", nil, manager)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/products/"+missingID+"/stock", nil, manager)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
