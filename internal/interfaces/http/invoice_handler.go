package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-dte/internal/application/dto"
)

// InvoiceService operaciones de facturación que consume el handler.
type InvoiceService interface {
	Preview(ctx context.Context, in dto.PreviewInvoiceRequest) (*dto.InvoicePreviewResponse, error)
	CreateInvoiceIdempotent(ctx context.Context, userID, key string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, bool, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, q dto.InvoiceListQuery) (*dto.InvoiceListResponse, error)
	TodayByUser(ctx context.Context, userID string) (*dto.TodaySummaryResponse, error)
	VoidInvoice(ctx context.Context, invoiceID, userID string) (*dto.InvoiceResponse, error)
}

// HeaderIdempotencyKey llave opcional de POST /api/invoices.
const (
	HeaderIdempotencyKey      = "Idempotency-Key"
	HeaderIdempotencyReplayed = "Idempotent-Replayed"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc InvoiceService
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Preview godoc
// @Summary      Calcular factura sin emitir
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.PreviewInvoiceRequest  true  "carrito"
// @Success      200   {object}  dto.InvoicePreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/invoices/preview [post]
func (h *InvoiceHandler) Preview(c *fiber.Ctx) error {
	var in dto.PreviewInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if done, err := validateBody(c, &in); done {
		return err
	}
	resp, err := h.uc.Preview(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Create godoc
// @Summary      Emitir factura
// @Description  Asigna correlativo, genera identificadores DTE y descuenta inventario en una sola transacción.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                    false  "llave de idempotencia"
// @Param        body             body      dto.CreateInvoiceRequest  true   "factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Success      200   {object}  dto.InvoiceResponse  "reintento con llave ya usada"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if done, err := validateBody(c, &in); done {
		return err
	}
	key := c.Get(HeaderIdempotencyKey)
	if len(key) > 128 {
		return badRequest(c, "VALIDATION", "Idempotency-Key demasiado larga")
	}

	invoice, replayed, err := h.uc.CreateInvoiceIdempotent(c.UserContext(), userID, key, in)
	if err != nil {
		return writeError(c, err)
	}
	if replayed {
		c.Set(HeaderIdempotencyReplayed, "true")
		return c.Status(fiber.StatusOK).JSON(invoice)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// List listado paginado con filtros.
// GET /api/invoices?page=&size=&date_from=&date_to=&type=&status=&client_id=&branch_id=&payment_method=&q=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var q dto.InvoiceListQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	if done, err := validateBody(c, &q); done {
		return err
	}
	resp, err := h.uc.ListInvoices(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Today facturas emitidas hoy por el usuario autenticado.
// GET /api/invoices/today
func (h *InvoiceHandler) Today(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	resp, err := h.uc.TodayByUser(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// GetByID obtiene el detalle completo de una factura.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "VALIDATION", "id debe ser un UUID")
	}
	invoice, err := h.uc.GetInvoice(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// Void godoc
// @Summary      Anular factura
// @Description  Solo facturas EMITTED; devuelve al inventario cada bien facturado.
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/void [post]
func (h *InvoiceHandler) Void(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "VALIDATION", "id debe ser un UUID")
	}
	invoice, err := h.uc.VoidInvoice(c.UserContext(), id, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}
