package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	"github.com/jhoicas/facturacion-dte/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// intentos de bloquear/crear la fila; el segundo cubre la carrera de creación perezosa.
const sequenceAttempts = 3

// SequenceRepo correlativos por (sucursal, serie). NextValue debe usarse con una tx.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// NextValue bloquea la fila (SELECT ... FOR UPDATE), la incrementa y devuelve el valor previo.
// Si la fila no existe la inserta con next_value = 2 y devuelve 1. Si otra transacción la
// insertó primero, ON CONFLICT DO NOTHING espera a esa transacción y se vuelve a bloquear la fila.
func (r *SequenceRepo) NextValue(ctx context.Context, branchID, series string) (int64, error) {
	for attempt := 0; attempt < sequenceAttempts; attempt++ {
		var current int64
		err := r.q.QueryRow(ctx,
			`SELECT next_value FROM sequences WHERE branch_id = $1 AND series = $2 FOR UPDATE`,
			branchID, series,
		).Scan(&current)
		if err == nil {
			if _, err := r.q.Exec(ctx,
				`UPDATE sequences SET next_value = next_value + 1, updated_at = now() WHERE branch_id = $1 AND series = $2`,
				branchID, series,
			); err != nil {
				return 0, fmt.Errorf("increment sequence: %w", err)
			}
			return current, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("lock sequence: %w", err)
		}

		tag, err := r.q.Exec(ctx, `
			INSERT INTO sequences (branch_id, series, next_value, updated_at)
			VALUES ($1, $2, 2, now())
			ON CONFLICT (branch_id, series) DO NOTHING`,
			branchID, series,
		)
		if err != nil {
			return 0, fmt.Errorf("create sequence: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return 1, nil
		}
	}
	return 0, fmt.Errorf("sequence %s/%s: no se pudo asignar correlativo", branchID, series)
}

// ListByBranch correlativos de la sucursal ordenados por serie.
func (r *SequenceRepo) ListByBranch(ctx context.Context, branchID string) ([]*entity.Sequence, error) {
	rows, err := r.q.Query(ctx,
		`SELECT branch_id, series, next_value, updated_at FROM sequences WHERE branch_id = $1 ORDER BY series`,
		branchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sequences: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sequence
	for rows.Next() {
		var s entity.Sequence
		if err := rows.Scan(&s.BranchID, &s.Series, &s.NextValue, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
