package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"branchstock/internal/cache"
	"branchstock/internal/config"
	"branchstock/internal/handler"
	"branchstock/internal/middleware"
	"branchstock/internal/model"
	"branchstock/internal/policy"
	"branchstock/internal/repository"
	"branchstock/internal/service"
	"branchstock/internal/ws"
	"branchstock/pkg/database"
	"branchstock/pkg/imagestore"
	"branchstock/pkg/jwt"
	"branchstock/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New()
	defer log.Sync()

	jwt.Configure(cfg.JWT.Secret)

	db := database.ConnectDB(cfg.Database)
	if err := db.AutoMigrate(
		&model.User{},
		&model.Employee{},
		&model.Location{},
		&model.Category{},
		&model.Item{},
		&model.InventoryRecord{},
		&model.StockMovement{},
		&model.StockTransfer{},
		&model.Notification{},
		&model.Attendance{},
	); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}
	seedAdmin(db, log)

	redisClient := database.ConnectRedis(cfg.Redis)
	if redisClient == nil {
		log.Warn("redis unavailable, report caching disabled")
	}
	reportCache := cache.NewReportCache(redisClient, log)

	images, err := imagestore.NewDiskStore(cfg.Upload.Dir)
	if err != nil {
		log.Fatal("upload directory unavailable", zap.Error(err))
	}

	hub := ws.NewHub(log)
	go hub.Run()

	// Repositories
	userRepo := repository.NewUserRepo(db)
	employeeRepo := repository.NewEmployeeRepo(db)
	locationRepo := repository.NewLocationRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	itemRepo := repository.NewItemRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)
	transferRepo := repository.NewTransferRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	reportRepo := repository.NewReportRepo(db)
	attendanceRepo := repository.NewAttendanceRepo(db)

	// Services
	engine := policy.NewEngine(employeeRepo, locationRepo)
	notifier := service.NewNotifier(notificationRepo, userRepo, hub, log)
	authService := service.NewAuthService(userRepo, cfg.JWT.ExpiryHours, log)
	employeeService := service.NewEmployeeService(employeeRepo, userRepo, locationRepo, log)
	catalogService := service.NewCatalogService(locationRepo, categoryRepo, itemRepo, employeeRepo, ledgerRepo, engine, images, reportCache, log)
	stockService := service.NewStockService(ledgerRepo, itemRepo, locationRepo, engine, notifier, reportCache, log)
	transferService := service.NewTransferService(transferRepo, itemRepo, locationRepo, engine, notifier, reportCache, log)
	alertService := service.NewAlertService(ledgerRepo, engine, reportCache, log)
	reportService := service.NewReportService(reportRepo, ledgerRepo, engine, reportCache, log)

	attendanceTZ, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		log.Warn("invalid attendance timezone, falling back to UTC",
			zap.String("timezone", cfg.Attendance.Timezone))
		attendanceTZ = time.UTC
	}
	attendanceService := service.NewAttendanceService(attendanceRepo, employeeRepo, attendanceTZ, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	employeeHandler := handler.NewEmployeeHandler(employeeService, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	stockHandler := handler.NewStockHandler(stockService, log)
	transferHandler := handler.NewTransferHandler(transferService, log)
	alertHandler := handler.NewAlertHandler(alertService, notifier, log)
	reportHandler := handler.NewReportHandler(reportService, log)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, log)

	app := fiber.New(fiber.Config{AppName: cfg.Server.AppName})
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())
	app.Static("/uploads", cfg.Upload.Dir)

	api := app.Group("/api/v1")

	// Public
	api.Post("/auth/login", authHandler.Login)

	// Authenticated
	auth := middleware.RequireAuth(userRepo)
	admin := middleware.RequireAdmin()
	read := middleware.RequireCapability(engine, policy.CapInventoryRead)
	write := middleware.RequireCapability(engine, policy.CapInventoryWrite)

	protected := api.Group("", auth)
	protected.Get("/auth/validate", authHandler.Validate)
	protected.Post("/auth/register", admin, authHandler.Register)
	protected.Post("/auth/change-password", authHandler.ChangePassword)
	protected.Get("/users", admin, authHandler.ListUsers)

	protected.Post("/employees", admin, employeeHandler.Create)
	protected.Get("/employees", admin, employeeHandler.List)
	protected.Get("/employees/me", employeeHandler.MyProfile)
	protected.Get("/employees/:id", admin, employeeHandler.Get)
	protected.Put("/employees/:id", admin, employeeHandler.Update)

	protected.Post("/attendance/check-in", attendanceHandler.CheckIn)
	protected.Post("/attendance/check-out", attendanceHandler.CheckOut)
	protected.Get("/attendance/today", attendanceHandler.Today)
	protected.Get("/attendance/history", attendanceHandler.History)

	protected.Post("/locations", admin, catalogHandler.CreateLocation)
	protected.Get("/locations", catalogHandler.ListLocations)
	protected.Get("/locations/:id", catalogHandler.GetLocation)
	protected.Put("/locations/:id", admin, catalogHandler.UpdateLocation)
	protected.Delete("/locations/:id", admin, catalogHandler.DeleteLocation)

	protected.Post("/categories", admin, catalogHandler.CreateCategory)
	protected.Get("/categories", catalogHandler.ListCategories)
	protected.Delete("/categories/:id", admin, catalogHandler.DeleteCategory)

	protected.Post("/items", admin, catalogHandler.CreateItem)
	protected.Get("/items", read, catalogHandler.ListItems)
	protected.Get("/items/:id", read, catalogHandler.GetItem)
	protected.Get("/items/:id/details", read, catalogHandler.GetItemDetails)
	protected.Put("/items/:id", write, catalogHandler.UpdateItem)
	protected.Post("/items/:id/image", write, catalogHandler.UploadItemImage)
	protected.Delete("/items/:id", admin, catalogHandler.DeleteItem)

	protected.Post("/stock/in", write, stockHandler.StockIn)
	protected.Post("/stock/out", write, stockHandler.StockOut)
	protected.Post("/stock/adjust", write, stockHandler.Adjust)

	protected.Post("/transfers", write, transferHandler.Initiate)
	protected.Get("/transfers", read, transferHandler.List)
	protected.Get("/transfers/:id", read, transferHandler.Get)
	protected.Post("/transfers/:id/confirm", write, transferHandler.Confirm)

	protected.Get("/alerts/low-stock", read, alertHandler.LowStock)
	protected.Get("/alerts/low-stock/count", read, alertHandler.BadgeCount)
	protected.Get("/notifications", alertHandler.MyNotifications)
	protected.Get("/notifications/unread-count", alertHandler.UnreadCount)
	protected.Post("/notifications/:id/read", alertHandler.MarkRead)

	protected.Get("/reports/inventory", read, reportHandler.Inventory)
	protected.Get("/reports/monthly-movement", read, reportHandler.MonthlyMovement)
	protected.Get("/reports/monthly-movement/:locationId", read, reportHandler.MonthlyMovementByLocation)
	protected.Get("/reports/overall-totals", read, reportHandler.OverallTotals)
	protected.Get("/reports/dashboard", read, reportHandler.Dashboard)

	registerWebsocket(app, userRepo, hub)

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

// registerWebsocket upgrades /ws connections authenticated via a token query
// parameter (browsers cannot set headers on websocket dials).
func registerWebsocket(app *fiber.App, userRepo repository.UserRepository, hub *ws.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		user, err := userFromToken(userRepo, conn.Query("token"))
		if err != nil {
			conn.Close()
			return
		}

		hub.Register <- ws.Client{Conn: conn, UserID: user.ID}
		defer func() { hub.Unregister <- conn }()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))
}

func userFromToken(userRepo repository.UserRepository, token string) (*model.User, error) {
	claims, err := jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	user, err := userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, jwt.ErrInvalidToken
	}
	return user, nil
}

// seedAdmin guarantees one usable admin account on a fresh database.
func seedAdmin(db *gorm.DB, log *zap.Logger) {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@branchstock.local"
	}

	var existing model.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("admin seed lookup failed", zap.Error(err))
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "ChangeMe123!"
	}
	adminUser := &model.User{
		Email:    email,
		Name:     "System Administrator",
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	if err := adminUser.SetPassword(password); err != nil {
		log.Error("admin seed failed", zap.Error(err))
		return
	}
	if err := db.Create(adminUser).Error; err != nil {
		log.Error("admin seed failed", zap.Error(err))
		return
	}
	log.Info("seeded default admin account", zap.String("email", email))
}
