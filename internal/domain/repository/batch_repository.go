package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// BatchRepository acceso al libro de lotes.
//
// GetForUpdateByProduct y GetForUpdateByIDs bloquean las filas (SELECT FOR
// UPDATE) para que la asignación o devolución sea una unidad indivisible:
// el lock se sostiene durante toda la operación compuesta de la transacción.
type BatchRepository interface {
	Create(ctx context.Context, b *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Batch, error)
	// GetForUpdateByProduct devuelve los lotes con stock del producto,
	// bloqueados, ordenados por vencimiento ascendente (desempate: creación).
	GetForUpdateByProduct(ctx context.Context, productID string) ([]*entity.Batch, error)
	// GetForUpdateByIDs devuelve los lotes indicados bloqueados, por ID.
	GetForUpdateByIDs(ctx context.Context, ids []string) (map[string]*entity.Batch, error)
	// UpdateQuantity persiste el nuevo QuantityCurrent de un lote.
	UpdateQuantity(ctx context.Context, id string, quantityCurrent int64) error
}
