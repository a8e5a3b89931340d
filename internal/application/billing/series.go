package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// SeriesUseCase administración de las series de numeración. La numeración en
// sí ocurre dentro de las transacciones de emisión; aquí solo altas y listado.
type SeriesUseCase struct {
	seriesRepo repository.DocumentSeriesRepository
}

// NewSeriesUseCase construye el caso de uso.
func NewSeriesUseCase(seriesRepo repository.DocumentSeriesRepository) *SeriesUseCase {
	return &SeriesUseCase{seriesRepo: seriesRepo}
}

// Create registra una serie nueva. StartNumber es el último número usado; el
// primer documento emitido llevará StartNumber+1.
func (uc *SeriesUseCase) Create(ctx context.Context, in dto.CreateSeriesRequest) (*dto.SeriesResponse, error) {
	docType := strings.ToUpper(strings.TrimSpace(in.Type))
	switch docType {
	case entity.DocTypeFactura, entity.DocTypeBoleta, entity.DocTypeGuia, entity.DocTypeNotaCredito:
	default:
		return nil, domain.NewValidation("tipo de documento %q inválido", in.Type)
	}
	series := strings.ToUpper(strings.TrimSpace(in.Series))
	if series == "" {
		return nil, domain.NewValidation("la serie es requerida")
	}
	if in.StartNumber < 0 {
		return nil, domain.NewValidation("el número inicial no puede ser negativo")
	}

	now := time.Now()
	s := &entity.DocumentSeries{
		ID:            uuid.NewString(),
		Type:          docType,
		Series:        series,
		CurrentNumber: in.StartNumber,
		IsActive:      in.Active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.seriesRepo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSeriesResponse(s), nil
}

// List devuelve todas las series configuradas.
func (uc *SeriesUseCase) List(ctx context.Context) ([]*dto.SeriesResponse, error) {
	list, err := uc.seriesRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SeriesResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSeriesResponse(s))
	}
	return out, nil
}

// SetActive activa o desactiva una serie.
func (uc *SeriesUseCase) SetActive(ctx context.Context, id string, active bool) error {
	return uc.seriesRepo.SetActive(ctx, id, active)
}

func toSeriesResponse(s *entity.DocumentSeries) *dto.SeriesResponse {
	return &dto.SeriesResponse{
		ID:            s.ID,
		Type:          s.Type,
		Series:        s.Series,
		CurrentNumber: s.CurrentNumber,
		IsActive:      s.IsActive,
	}
}
