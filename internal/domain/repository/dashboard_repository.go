package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardFilter restringe las métricas. Nil = sin filtro. Rango [DateFrom, DateTo) sobre issue_date.
type DashboardFilter struct {
	BranchID *string
	DateFrom *time.Time
	DateTo   *time.Time
}

// DailySales total vendido en un día (YYYY-MM-DD, UTC).
type DailySales struct {
	Date  string
	Total decimal.Decimal
}

// DashboardRepository consultas de solo lectura para el tablero.
// Todas las consultas cuentan solo facturas EMITTED.
type DashboardRepository interface {
	GetTotals(ctx context.Context, f DashboardFilter) (total decimal.Decimal, count int, err error)
	CountByType(ctx context.Context, f DashboardFilter) (map[string]int, error)
	CountByStatus(ctx context.Context, f DashboardFilter) (map[string]int, error)
	GetDailySales(ctx context.Context, f DashboardFilter) ([]DailySales, error)
}
