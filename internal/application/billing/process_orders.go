package billing

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

// ProcessOrdersUseCase convierte pedidos pendientes en ventas numeradas, en
// una sola transacción por lote.
//
// El tipo de comprobante de cada venta viene del snapshot del pedido, no del
// registro actual del cliente. La numeración toma el lock del correlativo una
// vez por tipo de documento y lo sostiene hasta el commit, de modo que un
// lote de N boletas arranca en CurrentNumber+1 y termina en CurrentNumber+N
// sin huecos ni repetidos.
type ProcessOrdersUseCase struct {
	txRunner     BillingTxRunner
	saleRepo     repository.SaleRepository
	orchestrator *SunatOrchestrator
	log          *logger.Logger
}

// NewProcessOrdersUseCase construye el caso de uso. orchestrator puede ser
// nil: las ventas quedan en PENDING sin envío.
func NewProcessOrdersUseCase(
	txRunner BillingTxRunner,
	saleRepo repository.SaleRepository,
	orchestrator *SunatOrchestrator,
	log *logger.Logger,
) *ProcessOrdersUseCase {
	return &ProcessOrdersUseCase{
		txRunner:     txRunner,
		saleRepo:     saleRepo,
		orchestrator: orchestrator,
		log:          log,
	}
}

// Process numera y emite las ventas de los pedidos indicados. El lote es
// atómico: si cualquier pedido falla, ninguna venta queda emitida.
func (uc *ProcessOrdersUseCase) Process(ctx context.Context, in dto.ProcessOrdersRequest) (*dto.ProcessOrdersResponse, error) {
	if len(in.OrderIDs) == 0 {
		return nil, domain.ErrInvalidInput
	}

	var processed []dto.ProcessedSale
	var saleIDs []string

	err := uc.txRunner.RunBilling(ctx, func(
		orderRepo repository.OrderRepository,
		saleRepo repository.SaleRepository,
		seriesRepo repository.DocumentSeriesRepository,
	) error {
		orders, err := orderRepo.GetForUpdateByIDs(ctx, in.OrderIDs)
		if err != nil {
			return err
		}
		if len(orders) != len(in.OrderIDs) {
			return domain.ErrNotFound
		}
		for _, o := range orders {
			if o.Status != entity.OrderStatusPending {
				return domain.NewValidation("el pedido %s ya fue procesado", o.ID)
			}
		}

		// Más antiguos primero: el orden de numeración respeta el orden de
		// creación de los pedidos.
		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		})

		// Una serie bloqueada por tipo de documento presente en el lote.
		seriesCache := make(map[string]*entity.DocumentSeries)
		now := time.Now()

		for _, o := range orders {
			series, ok := seriesCache[o.DocType]
			if !ok {
				series, err = LockSeries(ctx, seriesRepo, o.DocType)
				if err != nil {
					return err
				}
				seriesCache[o.DocType] = series
			}
			series.CurrentNumber++

			sale := saleFromOrder(o, series.Series, series.CurrentNumber, now)
			if err := saleRepo.Create(ctx, sale); err != nil {
				return err
			}
			if err := orderRepo.UpdateStatus(ctx, o.ID, entity.OrderStatusProcessed); err != nil {
				return err
			}

			processed = append(processed, dto.ProcessedSale{
				SaleID:     sale.ID,
				OrderID:    o.ID,
				DocType:    sale.DocType,
				Series:     sale.Series,
				Number:     sale.Number,
				FullNumber: sale.FullNumber(),
			})
			saleIDs = append(saleIDs, sale.ID)
		}

		for _, series := range seriesCache {
			if err := seriesRepo.UpdateNumber(ctx, series.ID, series.CurrentNumber); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// El envío SUNAT corre fuera de la transacción: la emisión ya es firme y
	// un rechazo del servicio no la revierte.
	if uc.orchestrator != nil {
		for _, id := range saleIDs {
			uc.orchestrator.ProcessAsync(id)
		}
	}
	uc.log.Info().Int("ventas", len(processed)).Msg("lote de pedidos procesado")

	return &dto.ProcessOrdersResponse{Sales: processed}, nil
}

// saleFromOrder copia el pedido (snapshot incluido) a una venta numerada.
// Las asignaciones de lote pasan a ser propiedad de la venta: la liquidación
// las libera desde aquí, no desde el pedido.
func saleFromOrder(o *entity.Order, series string, number int64, now time.Time) *entity.Sale {
	sale := &entity.Sale{
		ID:               uuid.New().String(),
		OrderID:          o.ID,
		ClientID:         o.ClientID,
		ClientName:       o.ClientName,
		ClientDocNumber:  o.ClientDocNumber,
		ClientAddress:    o.ClientAddress,
		DocType:          o.DocType,
		Series:           series,
		Number:           number,
		PaymentMethod:    o.PaymentMethod,
		Total:            o.Total,
		Balance:          o.Total,
		PaymentStatus:    entity.PaymentStatusPendiente,
		CollectionStatus: entity.CollectionPendiente,
		SunatStatus:      entity.SunatStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for _, it := range o.Items {
		sale.Items = append(sale.Items, entity.SaleItem{
			ID:              uuid.New().String(),
			SaleID:          sale.ID,
			ProductID:       it.ProductID,
			ComboID:         it.ComboID,
			Description:     it.Description,
			Quantity:        it.Quantity,
			UnitType:        it.UnitType,
			QuantityBase:    it.RequiredBase - it.ShortfallBase,
			UnitPrice:       it.UnitPrice,
			TotalPrice:      it.TotalPrice,
			Components:      it.Components,
			Allocations:     it.Allocations,
			AllocationState: entity.AllocationApplied,
		})
	}
	return sale
}

// GetSale devuelve una venta con su detalle.
func (uc *ProcessOrdersUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return toSaleResponse(sale), nil
}

// ListSales lista ventas paginadas.
func (uc *ProcessOrdersUseCase) ListSales(ctx context.Context, page dto.PageRequest) ([]*dto.SaleResponse, error) {
	page.DefaultPage()
	sales, err := uc.saleRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, toSaleResponse(s))
	}
	return out, nil
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	return &dto.SaleResponse{
		ID:               s.ID,
		OrderID:          s.OrderID,
		ClientName:       s.ClientName,
		ClientDocNumber:  s.ClientDocNumber,
		DocType:          s.DocType,
		Series:           s.Series,
		Number:           s.Number,
		FullNumber:       s.FullNumber(),
		PaymentMethod:    s.PaymentMethod,
		Total:            s.Total,
		Balance:          s.Balance,
		PaymentStatus:    s.PaymentStatus,
		CollectionStatus: s.CollectionStatus,
		SunatStatus:      s.SunatStatus,
		SunatMessage:     s.SunatMessage,
		CreatedAt:        s.CreatedAt,
	}
}
