package dispatch

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// LiquidationTxRunner ejecuta el finalize de una liquidación en una sola
// transacción: disposiciones, numeración de notas de crédito, devoluciones a
// stock y cierre de la hoja se confirman juntos o no se confirma nada.
type LiquidationTxRunner interface {
	RunLiquidation(ctx context.Context, fn func(
		sheetRepo repository.DispatchSheetRepository,
		saleRepo repository.SaleRepository,
		batchRepo repository.BatchRepository,
		seriesRepo repository.DocumentSeriesRepository,
		liqRepo repository.DispatchLiquidationRepository,
	) error) error
}

// LiquidationPDFGenerator genera la representación imprimible de una
// liquidación (el documento que acompaña la rendición de caja).
type LiquidationPDFGenerator interface {
	GenerateLiquidationPDF(ctx context.Context, sheet *entity.DispatchSheet, liq *entity.DispatchLiquidation) ([]byte, error)
}
