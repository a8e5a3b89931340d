package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// DocumentSeriesRepository acceso a las series de numeración por tipo de
// documento. GetActiveForUpdate bloquea la fila del correlativo: el lock se
// sostiene durante todo el lote de asignaciones para garantizar números
// estrictamente consecutivos sin huecos ni repetidos.
type DocumentSeriesRepository interface {
	Create(ctx context.Context, s *entity.DocumentSeries) error
	GetActiveForUpdate(ctx context.Context, docType string) (*entity.DocumentSeries, error)
	List(ctx context.Context) ([]*entity.DocumentSeries, error)
	// UpdateNumber persiste el nuevo correlativo (incremento estricto).
	UpdateNumber(ctx context.Context, id string, currentNumber int64) error
	SetActive(ctx context.Context, id string, active bool) error
}
