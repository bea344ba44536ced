// Package analytics contiene los casos de uso de reportes sobre facturas emitidas.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/facturacion-dte/internal/application/dto"
	"github.com/jhoicas/facturacion-dte/internal/domain"
	"github.com/jhoicas/facturacion-dte/internal/domain/money"
	"github.com/jhoicas/facturacion-dte/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// DashboardUseCase genera las métricas del tablero de gerencia.
//
// Fuente de datos: DashboardRepository (consultas read-only).
// Solo facturas EMITTED cuentan, también en el desglose por estado.
type DashboardUseCase struct {
	repo repository.DashboardRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(repo repository.DashboardRepository) *DashboardUseCase {
	return &DashboardUseCase{repo: repo}
}

// GetDashboardMetrics construye el DashboardMetricsResponse.
//
// Cuatro consultas en paralelo:
//  1. GetTotals      → TotalSales + InvoiceCount
//  2. CountByType    → ByType
//  3. CountByStatus  → ByStatus
//  4. GetDailySales  → DailySales
func (uc *DashboardUseCase) GetDashboardMetrics(ctx context.Context, q dto.DashboardQuery) (*dto.DashboardMetricsResponse, error) {
	f, err := toFilter(q)
	if err != nil {
		return nil, err
	}

	var (
		total    decimal.Decimal
		count    int
		byType   map[string]int
		byStatus map[string]int
		daily    []repository.DailySales
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, count, err = uc.repo.GetTotals(gctx, f)
		if err != nil {
			return fmt.Errorf("dashboard: totales: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		byType, err = uc.repo.CountByType(gctx, f)
		if err != nil {
			return fmt.Errorf("dashboard: por tipo: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		byStatus, err = uc.repo.CountByStatus(gctx, f)
		if err != nil {
			return fmt.Errorf("dashboard: por estado: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		daily, err = uc.repo.GetDailySales(gctx, f)
		if err != nil {
			return fmt.Errorf("dashboard: ventas diarias: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if count > 0 {
		avg = money.Round(total.Div(decimal.NewFromInt(int64(count))))
	}
	if byType == nil {
		byType = map[string]int{}
	}
	if byStatus == nil {
		byStatus = map[string]int{}
	}
	days := make([]dto.DailySalesDTO, 0, len(daily))
	for _, d := range daily {
		days = append(days, dto.DailySalesDTO{Date: d.Date, Total: d.Total})
	}
	return &dto.DashboardMetricsResponse{
		TotalSales:    total,
		InvoiceCount:  count,
		AverageTicket: avg,
		ByType:        byType,
		ByStatus:      byStatus,
		DailySales:    days,
	}, nil
}

// toFilter convierte fechas YYYY-MM-DD (UTC) en [from, to) con date_to inclusivo.
func toFilter(q dto.DashboardQuery) (repository.DashboardFilter, error) {
	var f repository.DashboardFilter
	if q.BranchID != "" {
		b := q.BranchID
		f.BranchID = &b
	}
	if q.DateFrom != "" {
		t, err := time.Parse(dateLayout, q.DateFrom)
		if err != nil {
			return f, fmt.Errorf("date_from %q: %w", q.DateFrom, domain.ErrInvalidInput)
		}
		f.DateFrom = &t
	}
	if q.DateTo != "" {
		t, err := time.Parse(dateLayout, q.DateTo)
		if err != nil {
			return f, fmt.Errorf("date_to %q: %w", q.DateTo, domain.ErrInvalidInput)
		}
		t = t.AddDate(0, 0, 1)
		f.DateTo = &t
	}
	if f.DateFrom != nil && f.DateTo != nil && !f.DateFrom.Before(*f.DateTo) {
		return f, fmt.Errorf("rango de fechas vacío: %w", domain.ErrInvalidInput)
	}
	return f, nil
}
