package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-dte/internal/application/dto"
)

// DashboardService métricas agregadas del tablero.
type DashboardService interface {
	GetDashboardMetrics(ctx context.Context, q dto.DashboardQuery) (*dto.DashboardMetricsResponse, error)
}

// DashboardHandler maneja el endpoint de métricas de gerencia.
type DashboardHandler struct {
	uc DashboardService
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc DashboardService) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetMetrics devuelve ventas totales, ticket promedio, desglose por tipo y estado y ventas diarias.
// GET /api/invoices/dashboard-metrics?branch_id=&date_from=&date_to=
//
// Solo las facturas EMITTED suman ventas; date_to es inclusivo.
func (h *DashboardHandler) GetMetrics(c *fiber.Ctx) error {
	var q dto.DashboardQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	if done, err := validateBody(c, &q); done {
		return err
	}
	resp, err := h.uc.GetDashboardMetrics(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}
