package billing

import (
	"context"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
)

// BillingTxRunner ejecuta funciones dentro de una transacción que incluye los
// repos de pedidos, ventas y series. El procesamiento por lote toma el lock
// del correlativo una vez y lo sostiene hasta el commit: los números emitidos
// en un mismo lote son estrictamente consecutivos.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		saleRepo repository.SaleRepository,
		seriesRepo repository.DocumentSeriesRepository,
	) error) error

	// RunSale transacción acotada a ventas (cobros).
	RunSale(ctx context.Context, fn func(saleRepo repository.SaleRepository) error) error
}

// SunatDocumentBuilder construye el XML UBL del comprobante.
type SunatDocumentBuilder interface {
	BuildInvoice(s *entity.Sale) ([]byte, error)
}

// SunatGateway envía el comprobante al servicio SUNAT (o lo simula en dev).
// Devuelve el estado final (ACCEPTED, REJECTED o EXCEPTED) y el mensaje del
// servicio; err solo para fallas de transporte o configuración.
type SunatGateway interface {
	Submit(ctx context.Context, ublXML []byte, docName string) (status, message string, err error)
}
