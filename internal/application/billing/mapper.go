package billing

import (
	"github.com/jhoicas/facturacion-dte/internal/application/dto"
	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	"github.com/jhoicas/facturacion-dte/internal/domain/money"
)

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:             inv.ID,
		ControlNumber:  inv.ControlNumber,
		DTEControlCode: inv.DTEControlCode,
		GenerationCode: inv.GenerationCode,
		ReceptionSeal:  inv.ReceptionSeal,
		Sequential:     inv.Sequential,
		IssueDate:      inv.IssueDate,
		Series:         inv.Series,
		Type:           inv.Type,
		BranchID:       inv.BranchID,
		ClientID:       inv.ClientID,
		ClientName:     inv.ClientName,
		UserID:         inv.UserID,
		Subtotal:       inv.Subtotal,
		VAT:            inv.VAT,
		RentRetention:  inv.RentRetention,
		VATRetention:   inv.VATRetention,
		Total:          inv.Total,
		AmountInWords:  money.AmountInWords(inv.Total),
		PaymentMethod:  inv.PaymentMethod,
		Status:         inv.Status,
		Observations:   inv.Observations,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
	for _, it := range inv.Items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          it.ID,
			Position:    it.Position,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.SKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			Subtotal:    it.Subtotal,
		})
	}
	return resp
}
