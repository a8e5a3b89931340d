package billing

import (
	"context"
	"time"

	"github.com/jhoicas/Distribucion-api/internal/domain"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/repository"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

// SunatOrchestrator orquesta el ciclo de envío electrónico SUNAT:
//
//	XML UBL 2.1 → Envío → Update DB
//
// Se ejecuta siempre en goroutine independiente (ProcessAsync) con su propio
// context.Background() + timeout 30 s, desacoplado del ciclo HTTP. El core
// nunca bloquea una venta por el estado SUNAT: solo persiste lo que el
// gateway devuelve, y el reenvío de un rechazo es una acción manual.
type SunatOrchestrator struct {
	saleRepo repository.SaleRepository
	builder  SunatDocumentBuilder
	gateway  SunatGateway // nil => las ventas quedan EXCEPTED sin envío
	log      *logger.Logger
}

// NewSunatOrchestrator construye el orquestador.
func NewSunatOrchestrator(
	saleRepo repository.SaleRepository,
	builder SunatDocumentBuilder,
	gateway SunatGateway,
	log *logger.Logger,
) *SunatOrchestrator {
	return &SunatOrchestrator{
		saleRepo: saleRepo,
		builder:  builder,
		gateway:  gateway,
		log:      log,
	}
}

// ProcessAsync dispara el envío SUNAT en una goroutine independiente.
// saleID es el ID de la venta ya emitida en estado PENDING.
func (o *SunatOrchestrator) ProcessAsync(saleID string) {
	go o.process(saleID, false)
}

// Resend reenvía manualmente una venta rechazada o exceptuada.
func (o *SunatOrchestrator) Resend(ctx context.Context, saleID string) error {
	sale, err := o.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return err
	}
	if sale == nil {
		return domain.ErrNotFound
	}
	if sale.SunatStatus == entity.SunatStatusAccepted {
		return domain.NewValidation("la venta %s ya fue aceptada por SUNAT", sale.FullNumber())
	}
	o.process(saleID, true)
	return nil
}

// process es el núcleo síncrono del orquestador. Siempre termina persistiendo
// el estado SUNAT de la venta (ACCEPTED, REJECTED o EXCEPTED).
func (o *SunatOrchestrator) process(saleID string, resend bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sale, err := o.saleRepo.GetByID(ctx, saleID)
	if err != nil || sale == nil {
		o.log.Error().Err(err).Str("sale_id", saleID).Msg("venta no encontrada para envío SUNAT")
		return
	}
	if !resend && sale.SunatStatus != entity.SunatStatusPending {
		o.log.Warn().Str("sale_id", saleID).Str("estado", sale.SunatStatus).
			Msg("estado SUNAT inesperado, saltando envío")
		return
	}

	if o.gateway == nil {
		o.persist(ctx, sale, entity.SunatStatusExcepted, "envío SUNAT deshabilitado")
		return
	}

	xmlBytes, err := o.builder.BuildInvoice(sale)
	if err != nil {
		o.persist(ctx, sale, entity.SunatStatusRejected, "error generando XML: "+err.Error())
		return
	}

	status, message, err := o.gateway.Submit(ctx, xmlBytes, sale.FullNumber())
	if err != nil {
		// Falla de transporte: se registra como rechazo con el detalle y el
		// usuario decide reenviar.
		o.persist(ctx, sale, entity.SunatStatusRejected, err.Error())
		return
	}
	o.persist(ctx, sale, status, message)
}

func (o *SunatOrchestrator) persist(ctx context.Context, sale *entity.Sale, status, message string) {
	sale.SunatStatus = status
	sale.SunatMessage = message
	sale.UpdatedAt = time.Now()
	if err := o.saleRepo.Update(ctx, sale); err != nil {
		o.log.Error().Err(err).Str("sale_id", sale.ID).Str("estado", status).
			Msg("no se pudo persistir el estado SUNAT")
		return
	}
	o.log.Info().Str("sale_id", sale.ID).Str("comprobante", sale.FullNumber()).
		Str("estado", status).Msg("envío SUNAT procesado")
}
