package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// SaleRepository acceso a ventas (comprobantes numerados) y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, s *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Sale, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Sale, error)
	// Update persiste saldo, estados de pago/cobranza y estado SUNAT.
	Update(ctx context.Context, s *entity.Sale) error
	UpdateItemAllocationState(ctx context.Context, itemID, state string) error
}
