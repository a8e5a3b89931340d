package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Distribucion-api/internal/application/dispatch"
	"github.com/jhoicas/Distribucion-api/internal/application/dto"
)

// DispatchHandler maneja hojas de reparto y su liquidación.
type DispatchHandler struct {
	uc *dispatch.LiquidationUseCase
}

// NewDispatchHandler construye el handler.
func NewDispatchHandler(uc *dispatch.LiquidationUseCase) *DispatchHandler {
	return &DispatchHandler{uc: uc}
}

// CreateSheet crea una hoja de reparto.
// POST /api/dispatches
func (h *DispatchHandler) CreateSheet(c *fiber.Ctx) error {
	var in dto.CreateDispatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	sheet, err := h.uc.CreateSheet(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sheet)
}

// GetSheet devuelve una hoja de reparto.
// GET /api/dispatches/:id
func (h *DispatchHandler) GetSheet(c *fiber.Ctx) error {
	sheet, err := h.uc.GetSheet(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sheet)
}

// ListSheets lista hojas por estado (pendiente por defecto).
// GET /api/dispatches?status=pendiente
func (h *DispatchHandler) ListSheets(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	list, err := h.uc.ListSheets(c.Context(), c.Query("status"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// PreviewDisposition calcula los montos de una disposición sin persistir nada.
// POST /api/dispatches/preview
func (h *DispatchHandler) PreviewDisposition(c *fiber.Ctx) error {
	var in dto.DispositionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	doc, err := h.uc.PreviewDisposition(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(doc)
}

// Finalize cierra la hoja con todas las disposiciones en una sola transacción.
// POST /api/dispatches/:id/finalize
func (h *DispatchHandler) Finalize(c *fiber.Ctx) error {
	var in dto.FinalizeLiquidationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	liq, err := h.uc.Finalize(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(liq)
}

// GetLiquidation devuelve el cierre de una hoja.
// GET /api/dispatches/:id/liquidation
func (h *DispatchHandler) GetLiquidation(c *fiber.Ctx) error {
	liq, err := h.uc.GetLiquidation(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(liq)
}

// GetLiquidationPDF devuelve el PDF imprimible de la liquidación.
// GET /api/dispatches/:id/liquidation/pdf
func (h *DispatchHandler) GetLiquidationPDF(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.GetLiquidationPDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="liquidacion.pdf"`)
	return c.Send(pdfBytes)
}
