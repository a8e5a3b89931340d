package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Distribucion-api/internal/application/billing"
	"github.com/jhoicas/Distribucion-api/internal/application/dto"
)

// SaleHandler maneja el procesamiento de pedidos, las ventas emitidas,
// los cobros y el reenvío a SUNAT.
type SaleHandler struct {
	processUC    *billing.ProcessOrdersUseCase
	collections  *billing.CollectionsUseCase
	orchestrator *billing.SunatOrchestrator
}

// NewSaleHandler construye el handler.
func NewSaleHandler(
	processUC *billing.ProcessOrdersUseCase,
	collections *billing.CollectionsUseCase,
	orchestrator *billing.SunatOrchestrator,
) *SaleHandler {
	return &SaleHandler{
		processUC:    processUC,
		collections:  collections,
		orchestrator: orchestrator,
	}
}

// Process convierte un lote de pedidos pendientes en ventas numeradas.
// POST /api/sales/process
func (h *SaleHandler) Process(c *fiber.Ctx) error {
	var in dto.ProcessOrdersRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	resp, err := h.processUC.Process(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID devuelve el detalle de una venta.
// GET /api/sales/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.processUC.GetSale(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

// List lista las ventas emitidas.
// GET /api/sales
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	list, err := h.processUC.ListSales(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// RegisterPayment registra un cobro contra el saldo de una venta.
// POST /api/sales/:id/payments
func (h *SaleHandler) RegisterPayment(c *fiber.Ctx) error {
	var in dto.RegisterPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	sale, err := h.collections.RegisterPayment(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

// ResendSunat reenvía el comprobante a SUNAT (acción manual).
// POST /api/sales/:id/sunat/resend
func (h *SaleHandler) ResendSunat(c *fiber.Ctx) error {
	if err := h.orchestrator.Resend(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	sale, err := h.processUC.GetSale(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}
