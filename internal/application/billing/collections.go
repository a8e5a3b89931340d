package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// CollectionsUseCase registra cobros contra ventas a crédito.
// Invariante: el saldo nunca baja de cero ni sube del total.
type CollectionsUseCase struct {
	txRunner BillingTxRunner
}

// NewCollectionsUseCase construye el caso de uso.
func NewCollectionsUseCase(txRunner BillingTxRunner) *CollectionsUseCase {
	return &CollectionsUseCase{txRunner: txRunner}
}

// RegisterPayment descuenta un cobro del saldo de la venta. La fila se
// bloquea para que cobros concurrentes no dejen el saldo negativo.
func (uc *CollectionsUseCase) RegisterPayment(ctx context.Context, saleID string, in dto.RegisterPaymentRequest) (*dto.SaleResponse, error) {
	if saleID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidation("el monto del cobro debe ser mayor a cero")
	}

	var sale *entity.Sale
	err := uc.txRunner.RunSale(ctx, func(saleRepo repository.SaleRepository) error {
		var err error
		sale, err = saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.PaymentStatus == entity.PaymentStatusAnulado {
			return domain.NewValidation("la venta %s está anulada", sale.FullNumber())
		}
		if in.Amount.GreaterThan(sale.Balance) {
			return domain.NewValidation(
				"el cobro de %s excede el saldo pendiente de %s",
				in.Amount.StringFixed(2), sale.Balance.StringFixed(2),
			)
		}

		sale.Balance = sale.Balance.Sub(in.Amount)
		if sale.Balance.IsZero() {
			sale.PaymentStatus = entity.PaymentStatusPagado
			sale.CollectionStatus = entity.CollectionCobrado
		} else {
			sale.CollectionStatus = entity.CollectionParcial
		}
		sale.UpdatedAt = time.Now()
		return saleRepo.Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale), nil
}
