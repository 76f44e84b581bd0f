package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go-insumos-ws/internal/config"
	"go-insumos-ws/internal/handler"
	"go-insumos-ws/internal/infra"
	"go-insumos-ws/internal/middleware"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/internal/service"
	"go-insumos-ws/internal/ws"
	"go-insumos-ws/pkg/database"
	"go-insumos-ws/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogger(cfg)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("load timezone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	db, err := database.Connect(cfg.DSN(), !cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	// 3. Optional Redis for shared login rate limiting
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, login rate limiting stays in memory")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	supplyRepo := repository.NewSupplyRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	seedPrivilegesRolesAndAdmin(ctx, cfg, privilegeRepo, roleRepo, userRepo)

	tokens := jwt.NewManager(cfg.JWTSecret, cfg.TokenTTL())

	supplyService := service.NewSupplyService(supplyRepo, movementRepo, wsHub, loc)
	productService := service.NewProductService(productRepo, supplyRepo, wsHub, loc)
	orderService := service.NewOrderService(orderRepo, supplyRepo, productRepo, wsHub, loc)
	alertService := service.NewAlertService(supplyRepo, loc)
	supplierService := service.NewSupplierService(supplierRepo, loc)
	dashService := service.NewDashboardService(movementRepo)
	authService := service.NewAuthService(userRepo, tokens, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	handlers := &handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Role:      handler.NewRoleHandler(userService),
		Supply:    handler.NewSupplyHandler(supplyService),
		Product:   handler.NewProductHandler(productService),
		Order:     handler.NewOrderHandler(orderService),
		Alert:     handler.NewAlertHandler(alertService),
		Supplier:  handler.NewSupplierHandler(supplierService),
		Dashboard: handler.NewDashboardHandler(dashService),
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Insumos WS v1.0",
	})

	app.Use(requestid.New(requestid.Config{ContextKey: middleware.RequestIDKey}))
	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// 7. Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.Clients()})
	})
	handlers.Register(app.Group("/api/v1"), authService, middleware.LoginRateLimiter(rdb, cfg.LoginRateLimit))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(wsHub.Serve))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and the admin user if they don't exist
func seedPrivilegesRolesAndAdmin(ctx context.Context, cfg *config.Config, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, userRepo repository.UserRepository) {
	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to seed privileges")
	}
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to seed roles")
	}

	email := strings.ToLower(cfg.AdminEmail)
	if _, err := userRepo.FindByEmail(ctx, email); err == nil {
		return
	}

	masterRole, err := roleRepo.FindByCode(ctx, model.RoleMasterAdmin)
	if err != nil {
		log.Warn().Err(err).Msg("MASTER_ADMIN role missing, admin user not created")
		return
	}

	admin := &model.User{
		Email:      email,
		FullName:   "Master Administrator",
		RoleID:     &masterRole.ID,
		IsActive:   true,
		Privileges: masterRole.Privileges,
	}
	admin.CreatedBy = model.SystemActor.ID
	admin.UpdatedBy = model.SystemActor.ID

	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		log.Warn().Err(err).Msg("failed to hash admin password")
		return
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Warn().Err(err).Msg("failed to create admin user")
		return
	}
	log.Info().Str("email", email).Msg("admin user created (MASTER_ADMIN)")
}
