package repository

import (
	"context"

	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
)

// BranchRepository lectura de sucursales. GetByID devuelve (nil, nil) si no existe.
type BranchRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
}

// ClientRepository lectura de clientes. GetByID devuelve (nil, nil) si no existe.
type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Client, error)
}
