package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// DispatchLiquidationRepository acceso al cierre de hojas de reparto.
// Las liquidaciones son inmutables: solo Create y lecturas.
type DispatchLiquidationRepository interface {
	Create(ctx context.Context, l *entity.DispatchLiquidation) error
	GetByID(ctx context.Context, id string) (*entity.DispatchLiquidation, error)
	GetByDispatchSheetID(ctx context.Context, sheetID string) (*entity.DispatchLiquidation, error)
}
