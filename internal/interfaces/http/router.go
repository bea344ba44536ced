package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-dte/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Invoices  InvoiceService
	Sequences SequenceService
	Stock     StockService
	LowStock  LowStockService
	Dashboard DashboardService
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), UserLogger)
	managers := RequireRole(jwt.RoleManager, jwt.RoleAdmin)

	// Facturas. Las rutas fijas van antes de /:id.
	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.Invoices)
	dashboardHandler := NewDashboardHandler(deps.Dashboard)
	invoices.Post("/preview", invoiceHandler.Preview)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/today", invoiceHandler.Today)
	invoices.Get("/dashboard-metrics", managers, dashboardHandler.GetMetrics)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/void", managers, invoiceHandler.Void)

	// Inventario (gerencia)
	products := api.Group("/products", managers)
	inventoryHandler := NewInventoryHandler(deps.Stock, deps.LowStock)
	products.Get("/low-stock", inventoryHandler.LowStock)
	products.Post("/:id/stock", inventoryHandler.AdjustStock)
	products.Get("/:id/stock", inventoryHandler.StockStatus)
	products.Get("/:id/movements", inventoryHandler.ListMovements)

	// Sucursales
	branches := api.Group("/branches")
	branchHandler := NewBranchHandler(deps.Sequences)
	branches.Get("/:id/sequences", branchHandler.ListSequences)
}
