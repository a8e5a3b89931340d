package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Distribucion-api/internal/application/auth"
	"github.com/jhoicas/Distribucion-api/internal/application/billing"
	"github.com/jhoicas/Distribucion-api/internal/application/catalog"
	"github.com/jhoicas/Distribucion-api/internal/application/dispatch"
	"github.com/jhoicas/Distribucion-api/internal/application/inventory"
	"github.com/jhoicas/Distribucion-api/internal/application/orders"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	CatalogUC    *catalog.UseCase
	BatchUC      *inventory.BatchUseCase
	OrderUC      *orders.CreateOrderUseCase
	ProcessUC    *billing.ProcessOrdersUseCase
	Collections  *billing.CollectionsUseCase
	Orchestrator *billing.SunatOrchestrator
	SeriesUC     *billing.SeriesUseCase
	DispatchUC   *dispatch.LiquidationUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo: productos, combos, clientes
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	batchHandler := NewBatchHandler(deps.BatchUC)

	products := protected.Group("/products")
	products.Post("/", catalogHandler.CreateProduct)
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/:id", catalogHandler.GetProduct)
	products.Get("/:id/batches", batchHandler.ListByProduct)

	combos := protected.Group("/combos")
	combos.Post("/", catalogHandler.CreateCombo)
	combos.Get("/", catalogHandler.ListCombos)

	clients := protected.Group("/clients")
	clients.Post("/", catalogHandler.CreateClient)
	clients.Get("/", catalogHandler.ListClients)

	// Lotes de almacén
	batches := protected.Group("/batches")
	batches.Post("/", batchHandler.Register)

	// Pedidos
	orderHandler := NewOrderHandler(deps.OrderUC)
	ordersGroup := protected.Group("/orders")
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/pending", orderHandler.ListPending)
	ordersGroup.Get("/:id", orderHandler.GetByID)

	// Ventas: procesamiento, cobros, SUNAT
	saleHandler := NewSaleHandler(deps.ProcessUC, deps.Collections, deps.Orchestrator)
	sales := protected.Group("/sales")
	sales.Post("/process", saleHandler.Process)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Post("/:id/payments", saleHandler.RegisterPayment)
	sales.Post("/:id/sunat/resend", saleHandler.ResendSunat)

	// Series de numeración (solo admin)
	seriesHandler := NewSeriesHandler(deps.SeriesUC)
	series := protected.Group("/series", RequireRole(entity.RoleAdmin))
	series.Post("/", seriesHandler.Create)
	series.Get("/", seriesHandler.List)
	series.Put("/:id/active", seriesHandler.SetActive)

	// Hojas de reparto y liquidación
	dispatchHandler := NewDispatchHandler(deps.DispatchUC)
	dispatches := protected.Group("/dispatches")
	dispatches.Post("/", dispatchHandler.CreateSheet)
	dispatches.Get("/", dispatchHandler.ListSheets)
	dispatches.Post("/preview", dispatchHandler.PreviewDisposition)
	dispatches.Get("/:id", dispatchHandler.GetSheet)
	dispatches.Post("/:id/finalize", dispatchHandler.Finalize)
	dispatches.Get("/:id/liquidation", dispatchHandler.GetLiquidation)
	dispatches.Get("/:id/liquidation/pdf", dispatchHandler.GetLiquidationPDF)
}
