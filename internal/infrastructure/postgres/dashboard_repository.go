package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-dte/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas agregadas de solo lectura sobre invoices.
// Cada método es independiente para que el caso de uso pueda ejecutarlos en paralelo.
type DashboardRepo struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository construye el adaptador sobre el pool (no participa en transacciones).
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepo {
	return &DashboardRepo{pool: pool}
}

// dashboardWhere arma el filtro común; el tablero solo considera facturas EMITTED.
func dashboardWhere(f repository.DashboardFilter) (string, []any) {
	var (
		conds = []string{"status = 'EMITTED'"}
		args  []any
	)
	if f.BranchID != nil {
		args = append(args, *f.BranchID)
		conds = append(conds, fmt.Sprintf("branch_id = $%d", len(args)))
	}
	if f.DateFrom != nil {
		args = append(args, *f.DateFrom)
		conds = append(conds, fmt.Sprintf("issue_date >= $%d", len(args)))
	}
	if f.DateTo != nil {
		args = append(args, *f.DateTo)
		conds = append(conds, fmt.Sprintf("issue_date < $%d", len(args)))
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// GetTotals suma de total y número de facturas EMITTED.
func (r *DashboardRepo) GetTotals(ctx context.Context, f repository.DashboardFilter) (decimal.Decimal, int, error) {
	where, args := dashboardWhere(f)
	var (
		total decimal.Decimal
		count int
	)
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total), 0), COUNT(*) FROM invoices `+where, args...).
		Scan(&total, &count)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("dashboard totals: %w", err)
	}
	return total, count, nil
}

// CountByType facturas EMITTED por tipo de documento.
func (r *DashboardRepo) CountByType(ctx context.Context, f repository.DashboardFilter) (map[string]int, error) {
	where, args := dashboardWhere(f)
	return r.countBy(ctx, "type", where, args)
}

// CountByStatus facturas EMITTED agrupadas por estado.
func (r *DashboardRepo) CountByStatus(ctx context.Context, f repository.DashboardFilter) (map[string]int, error) {
	where, args := dashboardWhere(f)
	return r.countBy(ctx, "status", where, args)
}

func (r *DashboardRepo) countBy(ctx context.Context, column, where string, args []any) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s, COUNT(*) FROM invoices %s GROUP BY %s`, column, where, column), args...)
	if err != nil {
		return nil, fmt.Errorf("dashboard count by %s: %w", column, err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan count by %s: %w", column, err)
		}
		out[key] = n
	}
	return out, rows.Err()
}

// GetDailySales total de facturas EMITTED por día calendario UTC, ascendente.
func (r *DashboardRepo) GetDailySales(ctx context.Context, f repository.DashboardFilter) ([]repository.DailySales, error) {
	where, args := dashboardWhere(f)
	rows, err := r.pool.Query(ctx, `
		SELECT to_char((issue_date AT TIME ZONE 'UTC')::date, 'YYYY-MM-DD') AS day, SUM(total)
		FROM invoices `+where+`
		GROUP BY day
		ORDER BY day`, args...)
	if err != nil {
		return nil, fmt.Errorf("dashboard daily sales: %w", err)
	}
	defer rows.Close()
	var out []repository.DailySales
	for rows.Next() {
		var d repository.DailySales
		if err := rows.Scan(&d.Date, &d.Total); err != nil {
			return nil, fmt.Errorf("scan daily sales: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
