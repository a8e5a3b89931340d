package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// OrderRepository acceso a pedidos y sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdateByIDs devuelve los pedidos bloqueados (con líneas),
	// para el procesamiento por lote pedido->venta.
	GetForUpdateByIDs(ctx context.Context, ids []string) ([]*entity.Order, error)
	ListPending(ctx context.Context, limit, offset int) ([]*entity.Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// UpdateItemAllocationState marca el set de asignaciones de una línea
	// (guarda contra doble liberación).
	UpdateItemAllocationState(ctx context.Context, itemID, state string) error
}
