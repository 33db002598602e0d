package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hospital-resource-booking/internal/config"
	"hospital-resource-booking/internal/database"
	"hospital-resource-booking/internal/handler"
	"hospital-resource-booking/internal/middleware"
	"hospital-resource-booking/internal/repository"
	"hospital-resource-booking/internal/service"
	"hospital-resource-booking/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()
	log.Println("Configuration loaded successfully")

	// 2. Initialize JWT utilities with config
	utils.InitJWT(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// 3. Initialize database connection
	db := database.Connect(cfg)

	// 4. Initialize repositories
	userRepo := repository.NewUserRepo(db)
	hospitalRepo := repository.NewHospitalRepo(db)
	userHospitalRepo := repository.NewUserHospitalRepo(db)
	poolRepo := repository.NewResourcePoolRepo(db)
	auditRepo := repository.NewResourceAuditRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	historyRepo := repository.NewBookingHistoryRepo(db)
	balanceRepo := repository.NewBalanceRepo(db)

	// 5. Initialize services
	authService := service.NewAuthService(userRepo, userHospitalRepo)
	resourceService := service.NewResourceService(db, poolRepo, auditRepo)
	balanceService := service.NewBalanceService(db, balanceRepo)
	bookingService := service.NewBookingService(
		db,
		bookingRepo,
		historyRepo,
		poolRepo,
		resourceService,
		balanceService,
		service.LogNotifier{},
		cfg.Booking.ApprovalExpiry,
	)
	pollingService := service.NewPollingService(poolRepo, bookingRepo)
	sweepService := service.NewSweepService(bookingService, cfg.Booking.SweepInterval, cfg.Booking.SweepBatchSize)

	// 6. Start expiry sweep in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweepService.Start(ctx)

	// 7. Setup Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// 8. Setup Gin router
	r := gin.Default()

	// Apply CORS middleware
	r.Use(middleware.CORS(cfg))

	// 9. Register handlers
	authHandler := handler.NewAuthHandler(authService)
	hospitalHandler := handler.NewHospitalHandler(hospitalRepo, userHospitalRepo, userRepo)
	resourceHandler := handler.NewResourceHandler(resourceService)
	bookingHandler := handler.NewBookingHandler(bookingService, userHospitalRepo)
	balanceHandler := handler.NewBalanceHandler(balanceService)
	pollingHandler := handler.NewPollingHandler(pollingService)
	maintenanceHandler := handler.NewMaintenanceHandler(resourceService, bookingService)

	accessControl := middleware.NewAccessControlMiddleware(userHospitalRepo)

	// 10. Define routes
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "hospital-resource-booking",
		})
	})

	// Auth routes (public)
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	// Hospital routes (authenticated)
	hospitals := r.Group("/hospitals")
	hospitals.Use(middleware.AuthMiddleware())
	{
		hospitals.GET("", hospitalHandler.List)
		hospitals.GET("/mine", middleware.RequireAuthority(), hospitalHandler.ListMine)
		hospitals.POST("", middleware.RequireAdmin(), hospitalHandler.Create)
		hospitals.POST("/:hospital_id/authorities", middleware.RequireAdmin(), hospitalHandler.AssignAuthority)
		hospitals.DELETE("/:hospital_id/authorities/:user_id", middleware.RequireAdmin(), hospitalHandler.RemoveAuthority)

		// Resource pools are scoped under their hospital
		hospitals.GET("/:hospital_id/resources", resourceHandler.ListPools)
		hospitals.GET("/:hospital_id/resources/availability", resourceHandler.CheckAvailability)
		hospitals.POST("/:hospital_id/resources",
			middleware.RequireAuthority(), accessControl.CheckHospitalAccess(), resourceHandler.RegisterPool)
		hospitals.PUT("/:hospital_id/resources/:resource_type",
			middleware.RequireAuthority(), accessControl.CheckHospitalAccess(), resourceHandler.ManualUpdate)
		hospitals.GET("/:hospital_id/resources/audit",
			middleware.RequireAuthority(), accessControl.CheckHospitalAccess(), resourceHandler.AuditLog)
		hospitals.GET("/:hospital_id/resources/audit/stats",
			middleware.RequireAuthority(), accessControl.CheckHospitalAccess(), resourceHandler.AuditStats)

		hospitals.GET("/:hospital_id/bookings",
			middleware.RequireAuthority(), accessControl.CheckHospitalAccess(), bookingHandler.ListByHospital)
		hospitals.GET("/:hospital_id/bookings/stats",
			middleware.RequireAuthority(), accessControl.CheckHospitalAccess(), bookingHandler.TransitionStats)
	}

	// Booking routes (authenticated)
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware())
	{
		bookings.POST("", bookingHandler.Create)
		bookings.GET("/mine", bookingHandler.ListMine)
		bookings.GET("/history/mine", bookingHandler.HistoryMine)
		bookings.GET("/:id", bookingHandler.Get)
		bookings.GET("/:id/history", bookingHandler.History)
		bookings.POST("/:id/pay", bookingHandler.Pay)
		bookings.POST("/:id/cancel", bookingHandler.Cancel)

		// Authority decisions; per-hospital assignment is checked in the handler
		bookings.POST("/:id/approve", middleware.RequireAuthority(), bookingHandler.Approve)
		bookings.POST("/:id/decline", middleware.RequireAuthority(), bookingHandler.Decline)
		bookings.POST("/:id/complete", middleware.RequireAuthority(), bookingHandler.Complete)
	}

	// Balance routes (authenticated)
	balance := r.Group("/balance")
	balance.Use(middleware.AuthMiddleware())
	{
		balance.GET("", balanceHandler.Get)
		balance.GET("/transactions", balanceHandler.Transactions)
		balance.POST("/deposit", balanceHandler.Deposit)
		balance.POST("/withdraw", balanceHandler.Withdraw)
	}

	// Admin maintenance routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireAdmin())
	{
		admin.POST("/retention", maintenanceHandler.Retention)
	}

	// Polling routes (authenticated)
	updates := r.Group("/updates")
	updates.Use(middleware.AuthMiddleware())
	{
		updates.GET("/resources", pollingHandler.ResourceUpdates)
		updates.GET("/bookings", pollingHandler.BookingUpdates)
		updates.GET("/check", pollingHandler.Check)
	}

	// 11. Setup graceful shutdown
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel background worker context
	cancel()
	log.Println("Server exited")
}
