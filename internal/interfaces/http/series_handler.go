package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Distribucion-api/internal/application/billing"
	"github.com/jhoicas/Distribucion-api/internal/application/dto"
)

// SeriesHandler administración de series de numeración (solo admin).
type SeriesHandler struct {
	uc *billing.SeriesUseCase
}

// NewSeriesHandler construye el handler.
func NewSeriesHandler(uc *billing.SeriesUseCase) *SeriesHandler {
	return &SeriesHandler{uc: uc}
}

// Create registra una serie nueva.
// POST /api/series
func (h *SeriesHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSeriesRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s)
}

// List devuelve todas las series configuradas.
// GET /api/series
func (h *SeriesHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// SetActive activa o desactiva una serie.
// PUT /api/series/:id/active
func (h *SeriesHandler) SetActive(c *fiber.Ctx) error {
	var in struct {
		Active bool `json:"active"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.SetActive(c.Context(), c.Params("id"), in.Active); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
