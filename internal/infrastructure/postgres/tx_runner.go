package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Distribucion-api/internal/application/billing"
	"github.com/jhoicas/Distribucion-api/internal/application/dispatch"
	"github.com/jhoicas/Distribucion-api/internal/application/orders"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

var _ orders.TxRunner = (*TxRunner)(nil)
var _ billing.BillingTxRunner = (*TxRunner)(nil)
var _ dispatch.LiquidationTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Los locks
// SELECT FOR UPDATE que los repos toman dentro de fn viven hasta el Commit.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunOrder transacción de creación de pedido: lotes + pedidos.
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewBatchRepository(q), NewOrderRepository(q))
	})
}

// RunBilling transacción de procesamiento de pedidos: pedidos + ventas + series.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	saleRepo repository.SaleRepository,
	seriesRepo repository.DocumentSeriesRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewOrderRepository(q), NewSaleRepository(q), NewDocumentSeriesRepository(q))
	})
}

// RunSale transacción acotada a ventas (cobros).
func (r *TxRunner) RunSale(ctx context.Context, fn func(saleRepo repository.SaleRepository) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewSaleRepository(q))
	})
}

// RunLiquidation transacción del finalize de liquidación: hoja + ventas +
// lotes + series + liquidación.
func (r *TxRunner) RunLiquidation(ctx context.Context, fn func(
	sheetRepo repository.DispatchSheetRepository,
	saleRepo repository.SaleRepository,
	batchRepo repository.BatchRepository,
	seriesRepo repository.DocumentSeriesRepository,
	liqRepo repository.DispatchLiquidationRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(
			NewDispatchSheetRepository(q),
			NewSaleRepository(q),
			NewBatchRepository(q),
			NewDocumentSeriesRepository(q),
			NewDispatchLiquidationRepository(q),
		)
	})
}
