package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Distribucion-api/internal/application/auth"
	"github.com/jhoicas/Distribucion-api/internal/application/billing"
	"github.com/jhoicas/Distribucion-api/internal/application/catalog"
	"github.com/jhoicas/Distribucion-api/internal/application/dispatch"
	"github.com/jhoicas/Distribucion-api/internal/application/inventory"
	"github.com/jhoicas/Distribucion-api/internal/application/orders"
	infrapdf "github.com/jhoicas/Distribucion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Distribucion-api/internal/infrastructure/postgres"
	infrasunat "github.com/jhoicas/Distribucion-api/internal/infrastructure/sunat"
	httpRouter "github.com/jhoicas/Distribucion-api/internal/interfaces/http"
	"github.com/jhoicas/Distribucion-api/pkg/config"
	"github.com/jhoicas/Distribucion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos sobre el pool (lecturas); las escrituras transaccionales van por TxRunner.
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	comboRepo := postgres.NewComboRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	seriesRepo := postgres.NewDocumentSeriesRepository(pool)
	sheetRepo := postgres.NewDispatchSheetRepository(pool)
	liqRepo := postgres.NewDispatchLiquidationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// SUNAT: builder UBL + gateway según entorno. En "dev" se simula la
	// aceptación; con gateway nil las ventas quedarían EXCEPTED.
	xmlBuilder := infrasunat.NewXMLBuilder(infrasunat.EmitterInfo{
		RUC:          cfg.SUNAT.RUC,
		BusinessName: cfg.SUNAT.BusinessName,
		Address:      cfg.SUNAT.Address,
	})
	var gateway billing.SunatGateway
	switch cfg.SUNAT.AppEnv {
	case "test", "prod":
		gateway = infrasunat.NewSOAPGateway(cfg.SUNAT)
	case "dev":
		gateway = infrasunat.NewSimulatedGateway()
	}
	orchestrator := billing.NewSunatOrchestrator(saleRepo, xmlBuilder, gateway, log)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	catalogUC := catalog.NewUseCase(productRepo, comboRepo, clientRepo)
	batchUC := inventory.NewBatchUseCase(batchRepo, productRepo)
	orderUC := orders.NewCreateOrderUseCase(txRunner, productRepo, comboRepo, clientRepo, orderRepo, log)
	processUC := billing.NewProcessOrdersUseCase(txRunner, saleRepo, orchestrator, log)
	collectionsUC := billing.NewCollectionsUseCase(txRunner)
	seriesUC := billing.NewSeriesUseCase(seriesRepo)
	pdfGenerator := infrapdf.NewMarotoLiquidationGenerator()
	dispatchUC := dispatch.NewLiquidationUseCase(txRunner, sheetRepo, saleRepo, productRepo, liqRepo, pdfGenerator, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Distribución Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		CatalogUC:    catalogUC,
		BatchUC:      batchUC,
		OrderUC:      orderUC,
		ProcessUC:    processUC,
		Collections:  collectionsUC,
		Orchestrator: orchestrator,
		SeriesUC:     seriesUC,
		DispatchUC:   dispatchUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
