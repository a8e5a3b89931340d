package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Distribucion-api/internal/application/catalog"
	"github.com/jhoicas/Distribucion-api/internal/application/dto"
)

// CatalogHandler maneja productos, combos y clientes.
type CatalogHandler struct {
	uc *catalog.UseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.UseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// CreateProduct registra un producto.
// POST /api/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	p, err := h.uc.CreateProduct(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// GetProduct devuelve un producto.
// GET /api/products/:id
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	p, err := h.uc.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

// ListProducts lista el catálogo.
// GET /api/products
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	list, err := h.uc.ListProducts(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// CreateCombo registra un combo.
// POST /api/combos
func (h *CatalogHandler) CreateCombo(c *fiber.Ctx) error {
	var in dto.CreateComboRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	combo, err := h.uc.CreateCombo(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(combo)
}

// ListCombos lista los combos.
// GET /api/combos
func (h *CatalogHandler) ListCombos(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	list, err := h.uc.ListCombos(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// CreateClient registra un cliente (RUC o DNI).
// POST /api/clients
func (h *CatalogHandler) CreateClient(c *fiber.Ctx) error {
	var in dto.CreateClientRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	client, err := h.uc.CreateClient(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

// ListClients lista los clientes.
// GET /api/clients
func (h *CatalogHandler) ListClients(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	list, err := h.uc.ListClients(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
