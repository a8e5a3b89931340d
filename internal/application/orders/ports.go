package orders

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los
// repos de lotes y pedidos. La asignación de lotes de todas las líneas de un
// pedido es una sola unidad atómica: o se asignan todas o ninguna.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		orderRepo repository.OrderRepository,
	) error) error
}
