package inventory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-dte/internal/application/dto"
	"github.com/jhoicas/facturacion-dte/internal/domain"
	"github.com/jhoicas/facturacion-dte/internal/domain/entity"
	"github.com/jhoicas/facturacion-dte/internal/domain/money"
	"github.com/jhoicas/facturacion-dte/internal/domain/repository"
	"github.com/jhoicas/facturacion-dte/pkg/logger"
)

// Options política del kardex.
type Options struct {
	// AllowNegativeStock permite que una salida deje la existencia bajo cero (venta contra pedido).
	AllowNegativeStock bool
}

// StockLedgerUseCase mantiene el kardex (solo inserción) y el contador desnormalizado de cada
// producto, siempre en la misma transacción y con la fila del producto bloqueada (SELECT FOR UPDATE).
type StockLedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	opts        Options
	metrics     Metrics
	now         func() time.Time
}

// NewStockLedgerUseCase construye el caso de uso. metrics puede ser nil.
func NewStockLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	opts Options,
	metrics Metrics,
) *StockLedgerUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &StockLedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		opts:        opts,
		metrics:     metrics,
		now:         time.Now,
	}
}

// AdjustStockInput entrada de un ajuste manual.
type AdjustStockInput struct {
	ProductID string
	UserID    string
	Type      string // IN, OUT, ADJUST
	Quantity  decimal.Decimal
	Note      string
}

// LockProducts bloquea las filas de los productos en orden ascendente de ID (libre de deadlocks
// entre transacciones concurrentes). IDs repetidos se bloquean una sola vez.
func (uc *StockLedgerUseCase) LockProducts(ctx context.Context, productRepo repository.ProductRepository, ids []string) (map[string]*entity.Product, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	locked := make(map[string]*entity.Product, len(sorted))
	for _, id := range sorted {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
		}
		locked[id] = p
	}
	return locked, nil
}

// EnsureAvailable verifica que la existencia cubra la demanda total del producto.
// Servicios y la política de stock negativo no requieren verificación.
func (uc *StockLedgerUseCase) EnsureAvailable(p *entity.Product, demand decimal.Decimal) error {
	if !p.TracksStock() || uc.opts.AllowNegativeStock {
		return nil
	}
	if p.StockQty.LessThan(demand) {
		return fmt.Errorf("producto %s: disponible %s, requerido %s: %w",
			p.SKU, p.StockQty.String(), demand.String(), domain.ErrInsufficientStock)
	}
	return nil
}

// ApplyInTx aplica mv.Delta al contador de p y agrega el movimiento al kardex usando los
// repositorios de la transacción del llamador. p debe venir bloqueado (LockProducts/GetForUpdate);
// su StockQty queda actualizado para las siguientes líneas de la misma transacción.
func (uc *StockLedgerUseCase) ApplyInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	p *entity.Product,
	mv *entity.StockMovement,
) error {
	if !p.TracksStock() {
		return fmt.Errorf("producto %s es un servicio y no lleva existencias: %w", p.SKU, domain.ErrInvalidInput)
	}
	newQty := p.StockQty.Add(mv.Delta)
	if newQty.IsNegative() && !uc.opts.AllowNegativeStock {
		return fmt.Errorf("producto %s: disponible %s, movimiento %s: %w",
			p.SKU, p.StockQty.String(), mv.Delta.String(), domain.ErrInsufficientStock)
	}
	if mv.ID == "" {
		mv.ID = uuid.New().String()
	}
	if mv.CreatedAt.IsZero() {
		mv.CreatedAt = uc.now()
	}
	mv.ProductID = p.ID

	if err := productRepo.UpdateStock(ctx, p.ID, newQty); err != nil {
		return err
	}
	if err := movRepo.Create(ctx, mv); err != nil {
		return err
	}
	p.StockQty = newQty
	return nil
}

// AdjustStock registra una entrada, salida o ajuste manual.
// IN suma Quantity, OUT la resta y ADJUST fija la existencia en Quantity (el movimiento guarda |delta|;
// un ajuste sin diferencia también queda registrado).
func (uc *StockLedgerUseCase) AdjustStock(ctx context.Context, in AdjustStockInput) (*dto.AdjustStockResponse, error) {
	if in.ProductID == "" || in.UserID == "" {
		return nil, fmt.Errorf("producto y usuario son obligatorios: %w", domain.ErrInvalidInput)
	}
	if in.Quantity.IsNegative() {
		return nil, fmt.Errorf("cantidad negativa: %w", domain.ErrInvalidInput)
	}
	if !money.HasScale(in.Quantity, money.QuantityScale) {
		return nil, fmt.Errorf("cantidad admite hasta %d decimales: %w", money.QuantityScale, domain.ErrInvalidInput)
	}
	switch in.Type {
	case entity.MovementIN, entity.MovementOUT:
		if in.Quantity.IsZero() {
			return nil, fmt.Errorf("cantidad debe ser mayor a cero: %w", domain.ErrInvalidInput)
		}
	case entity.MovementADJUST:
	default:
		return nil, fmt.Errorf("tipo de movimiento %q: %w", in.Type, domain.ErrInvalidInput)
	}

	var mv *entity.StockMovement
	var stockQty decimal.Decimal
	err := uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		locked, err := uc.LockProducts(ctx, productRepo, []string{in.ProductID})
		if err != nil {
			return err
		}
		p := locked[in.ProductID]

		var delta decimal.Decimal
		switch in.Type {
		case entity.MovementIN:
			delta = in.Quantity
		case entity.MovementOUT:
			delta = in.Quantity.Neg()
		case entity.MovementADJUST:
			delta = in.Quantity.Sub(p.StockQty)
		}
		mv = &entity.StockMovement{
			Direction: in.Type,
			Quantity:  delta.Abs(),
			Delta:     delta,
			Note:      in.Note,
			CreatedBy: in.UserID,
		}
		if err := uc.ApplyInTx(ctx, movRepo, productRepo, p, mv); err != nil {
			return err
		}
		stockQty = p.StockQty
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.StockMovementRecorded(in.Type)
	logger.FromContext(ctx).Info().
		Str("product_id", in.ProductID).
		Str("type", in.Type).
		Str("delta", mv.Delta.String()).
		Str("stock_qty", stockQty.String()).
		Msg("movimiento de inventario registrado")

	return &dto.AdjustStockResponse{
		Movement: toMovementResponse(mv),
		StockQty: stockQty,
	}, nil
}

// ListMovements kardex del producto, más reciente primero.
func (uc *StockLedgerUseCase) ListMovements(ctx context.Context, productID string, page dto.PageRequest) (*dto.StockMovementListResponse, error) {
	if _, err := uc.getProduct(ctx, productID); err != nil {
		return nil, err
	}
	page.Normalize()

	list, err := uc.movRepo.ListByProduct(ctx, productID, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	total, err := uc.movRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, mv := range list {
		items = append(items, toMovementResponse(mv))
	}
	return &dto.StockMovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: page.Page, Size: page.Size, Total: total},
	}, nil
}

// StockStatus compara el contador desnormalizado con la suma del kardex.
func (uc *StockLedgerUseCase) StockStatus(ctx context.Context, productID string) (*dto.StockStatusResponse, error) {
	p, err := uc.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	sum, err := uc.movRepo.SumByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &dto.StockStatusResponse{
		ProductID: p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		StockQty:  p.StockQty,
		LedgerSum: sum,
		InSync:    p.StockQty.Equal(sum),
	}, nil
}

func (uc *StockLedgerUseCase) getProduct(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	return p, nil
}

func toMovementResponse(mv *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:        mv.ID,
		ProductID: mv.ProductID,
		Type:      mv.Direction,
		Quantity:  mv.Quantity,
		Delta:     mv.Delta,
		Reference: mv.Reference,
		Note:      mv.Note,
		CreatedBy: mv.CreatedBy,
		CreatedAt: mv.CreatedAt,
	}
}
