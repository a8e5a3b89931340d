package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// DispatchSheetRepository acceso a hojas de reparto.
type DispatchSheetRepository interface {
	Create(ctx context.Context, d *entity.DispatchSheet) error
	GetByID(ctx context.Context, id string) (*entity.DispatchSheet, error)
	// GetForUpdate bloquea la hoja durante el finalize de la liquidación.
	GetForUpdate(ctx context.Context, id string) (*entity.DispatchSheet, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.DispatchSheet, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
