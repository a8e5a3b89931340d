package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/application/inventory"
)

// BatchHandler maneja el ingreso y consulta de lotes.
type BatchHandler struct {
	uc *inventory.BatchUseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(uc *inventory.BatchUseCase) *BatchHandler {
	return &BatchHandler{uc: uc}
}

// Register ingresa un lote nuevo al almacén.
// POST /api/batches
func (h *BatchHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	b, err := h.uc.Register(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(b)
}

// ListByProduct lista los lotes de un producto en orden de asignación.
// GET /api/products/:id/batches
func (h *BatchHandler) ListByProduct(c *fiber.Ctx) error {
	list, err := h.uc.ListByProduct(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
