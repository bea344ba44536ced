package dto

import "github.com/shopspring/decimal"

// DashboardQuery query string de GET /api/invoices/dashboard-metrics (fechas YYYY-MM-DD).
type DashboardQuery struct {
	BranchID string `query:"branch_id" validate:"omitempty,uuid"`
	DateFrom string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
}

// DashboardMetricsResponse métricas agregadas sobre facturas EMITTED.
type DashboardMetricsResponse struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	InvoiceCount  int             `json:"invoice_count"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	ByType        map[string]int  `json:"by_type"`
	ByStatus      map[string]int  `json:"by_status"`
	DailySales    []DailySalesDTO `json:"daily_sales"`
}

// DailySalesDTO total de un día (UTC).
type DailySalesDTO struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}
