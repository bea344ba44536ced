package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-dte/internal/application/dto"
)

// SequenceService consulta de correlativos.
type SequenceService interface {
	ListSequences(ctx context.Context, branchID string) ([]dto.SequenceResponse, error)
}

// BranchHandler endpoints de sucursal.
type BranchHandler struct {
	uc SequenceService
}

func NewBranchHandler(uc SequenceService) *BranchHandler {
	return &BranchHandler{uc: uc}
}

// ListSequences GET /api/branches/:id/sequences
func (h *BranchHandler) ListSequences(c *fiber.Ctx) error {
	branchID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "VALIDATION", "id debe ser un UUID")
	}
	seqs, err := h.uc.ListSequences(c.UserContext(), branchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"sequences": seqs})
}
