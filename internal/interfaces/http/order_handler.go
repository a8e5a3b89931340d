package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Distribucion-api/internal/application/dto"
	"github.com/jhoicas/Distribucion-api/internal/application/orders"
)

// OrderHandler maneja los pedidos pendientes.
type OrderHandler struct {
	uc *orders.CreateOrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.CreateOrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create registra un pedido y asigna lotes.
// POST /api/orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// GetByID devuelve el detalle de un pedido.
// GET /api/orders/:id
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.uc.GetOrder(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// ListPending lista los pedidos pendientes de procesar.
// GET /api/orders/pending
func (h *OrderHandler) ListPending(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	list, err := h.uc.ListPending(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
