package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// LockSeries obtiene la serie activa del tipo de documento con la fila
// bloqueada. Si no hay ninguna configurada crea la serie por defecto
// (F001/B001/T001/FC01, correlativo en 0) y la devuelve.
//
// El caller incrementa CurrentNumber en memoria por cada documento que emite
// y persiste el valor final con UpdateNumber antes del commit; el lock
// garantiza que ningún otro lote pueda tomar números intermedios.
func LockSeries(ctx context.Context, seriesRepo repository.DocumentSeriesRepository, docType string) (*entity.DocumentSeries, error) {
	series, err := seriesRepo.GetActiveForUpdate(ctx, docType)
	if err != nil {
		return nil, err
	}
	if series != nil {
		return series, nil
	}

	now := time.Now()
	series = &entity.DocumentSeries{
		ID:            uuid.New().String(),
		Type:          docType,
		Series:        entity.DefaultSeries(docType),
		CurrentNumber: 0,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// El insert deja la fila bloqueada por esta transacción; si otro lote
	// creó la misma serie en paralelo el unique index lo convierte en
	// ErrConflict y el caller reintenta.
	if err := seriesRepo.Create(ctx, series); err != nil {
		return nil, err
	}
	return series, nil
}
