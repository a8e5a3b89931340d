package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// BatchUseCase registra entradas de lotes al almacén y consulta el libro.
// Los lotes nunca se editan ni se eliminan: la asignación y la devolución en
// liquidación son las únicas operaciones que mutan QuantityCurrent.
type BatchUseCase struct {
	batchRepo   repository.BatchRepository
	productRepo repository.ProductRepository
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(batchRepo repository.BatchRepository, productRepo repository.ProductRepository) *BatchUseCase {
	return &BatchUseCase{batchRepo: batchRepo, productRepo: productRepo}
}

// Register da de alta un lote con su costo y vencimiento.
func (uc *BatchUseCase) Register(ctx context.Context, in dto.RegisterBatchRequest) (*dto.BatchResponse, error) {
	if in.ProductID == "" || in.Code == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return nil, domain.NewValidation("la cantidad del lote debe ser mayor a cero")
	}
	if in.Cost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	expiration, err := time.Parse("2006-01-02", in.ExpirationDate)
	if err != nil {
		return nil, domain.NewValidation("fecha de vencimiento inválida: %q (use YYYY-MM-DD)", in.ExpirationDate)
	}

	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	batch := &entity.Batch{
		ID:              uuid.New().String(),
		ProductID:       in.ProductID,
		Code:            in.Code,
		QuantityInitial: in.Quantity,
		QuantityCurrent: in.Quantity,
		Cost:            in.Cost,
		ExpirationDate:  expiration,
		CreatedAt:       time.Now(),
	}
	if err := uc.batchRepo.Create(ctx, batch); err != nil {
		return nil, err
	}
	return toBatchResponse(batch), nil
}

// ListByProduct lista los lotes de un producto, incluidos los agotados.
func (uc *BatchUseCase) ListByProduct(ctx context.Context, productID string) ([]*dto.BatchResponse, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	batches, err := uc.batchRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, toBatchResponse(b))
	}
	return out, nil
}

func toBatchResponse(b *entity.Batch) *dto.BatchResponse {
	return &dto.BatchResponse{
		ID:              b.ID,
		ProductID:       b.ProductID,
		Code:            b.Code,
		QuantityInitial: b.QuantityInitial,
		QuantityCurrent: b.QuantityCurrent,
		Cost:            b.Cost,
		ExpirationDate:  b.ExpirationDate.Format("2006-01-02"),
		CreatedAt:       b.CreatedAt,
	}
}
