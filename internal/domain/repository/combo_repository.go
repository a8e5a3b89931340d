package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// ComboRepository acceso a combos/promociones.
type ComboRepository interface {
	Create(ctx context.Context, c *entity.Combo) error
	GetByID(ctx context.Context, id string) (*entity.Combo, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Combo, error)
}
