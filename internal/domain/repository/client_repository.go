package repository

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// ClientRepository acceso a clientes. Se usa solo para completar datos
// faltantes del snapshot del pedido, nunca para sobreescribirlo.
type ClientRepository interface {
	Create(ctx context.Context, c *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	GetByDocNumber(ctx context.Context, docNumber string) (*entity.Client, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Client, error)
}
