package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-dte/internal/application/dto"
)

// StockService kardex y existencias de un producto.
type StockService interface {
	AdjustStockFromRequest(ctx context.Context, productID, userID string, in dto.AdjustStockRequest) (*dto.AdjustStockResponse, error)
	ListMovements(ctx context.Context, productID string, page dto.PageRequest) (*dto.StockMovementListResponse, error)
	StockStatus(ctx context.Context, productID string) (*dto.StockStatusResponse, error)
}

// LowStockService productos bajo el umbral de reposición.
type LowStockService interface {
	List(ctx context.Context, threshold *decimal.Decimal) ([]dto.LowStockProductResponse, error)
}

// InventoryHandler maneja las peticiones HTTP de movimientos e inventario (protegido).
type InventoryHandler struct {
	uc       StockService
	lowStock LowStockService
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc StockService, lowStock LowStockService) *InventoryHandler {
	return &InventoryHandler{uc: uc, lowStock: lowStock}
}

// AdjustStock godoc
// @Summary      Registrar entrada, salida o ajuste de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del producto"
// @Param        body  body  dto.AdjustStockRequest  true  "type (IN, OUT, ADJUST), quantity, note"
// @Success      201   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	productID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "VALIDATION", "id debe ser un UUID")
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if done, err := validateBody(c, &in); done {
		return err
	}
	resp, err := h.uc.AdjustStockFromRequest(c.UserContext(), productID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListMovements kardex del producto, más reciente primero.
// GET /api/products/:id/movements?page=&size=
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "VALIDATION", "id debe ser un UUID")
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	if done, err := validateBody(c, &page); done {
		return err
	}
	resp, err := h.uc.ListMovements(c.UserContext(), productID, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// StockStatus contador de existencias vs. suma del kardex.
// GET /api/products/:id/stock
func (h *InventoryHandler) StockStatus(c *fiber.Ctx) error {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "VALIDATION", "id debe ser un UUID")
	}
	resp, err := h.uc.StockStatus(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// LowStock bienes activos con existencia en o bajo el umbral.
// GET /api/products/low-stock?threshold=
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	var threshold *decimal.Decimal
	if raw := c.Query("threshold"); raw != "" {
		t, err := decimal.NewFromString(raw)
		if err != nil || t.IsNegative() {
			return badRequest(c, "VALIDATION", "threshold debe ser un número no negativo")
		}
		threshold = &t
	}
	list, err := h.lowStock.List(c.UserContext(), threshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":    len(list),
		"products": list,
	})
}
