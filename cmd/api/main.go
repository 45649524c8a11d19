package main

import (
	"fmt"
	"net/http"
	"os"

	"sprout/internal/config"
	"sprout/internal/database"
	"sprout/internal/handlers"
	"sprout/internal/logger"
	"sprout/internal/middleware"
	"sprout/internal/notify"
	"sprout/internal/scheduler"
	"sprout/internal/services"
	"sprout/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "sprout/internal/docs" // Import swagger docs
)

// @title           Sprout API
// @version         1.0
// @description     Sprout is a household budgeting application built around pay cycles: plan each payday's bills, savings pots, and debt repayments, and see exactly what to transfer where.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	householdService := services.NewHouseholdService(db)
	cycleService := services.NewPayCycleService(db)
	seedService := services.NewSeedService(db)
	potService := services.NewPotService(db)
	repaymentService := services.NewRepaymentService(db)
	incomeService := services.NewIncomeSourceService(db)
	telegramService := services.NewTelegramService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	householdHandler := handlers.NewHouseholdHandler(householdService, auditService)
	cycleHandler := handlers.NewPayCycleHandler(cycleService, auditService)
	seedHandler := handlers.NewSeedHandler(seedService, auditService)
	potHandler := handlers.NewPotHandler(potService, auditService)
	repaymentHandler := handlers.NewRepaymentHandler(repaymentService, auditService)
	incomeHandler := handlers.NewIncomeSourceHandler(incomeService, auditService)
	telegramHandler := handlers.NewTelegramHandler(telegramService, auditService)
	internalHandler := handlers.NewInternalHandler(cycleService)

	// Optional Telegram bot; nil when no token is configured
	notifier, err := notify.New(appConfig.TelegramBotToken, telegramService, db)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	if notifier != nil {
		notifier.Start()
		defer notifier.Stop()
	}

	// Daily maintenance: overdue rollover + payday notifications
	if appConfig.SchedulerEnabled {
		var paydayNotifier scheduler.PaydayNotifier
		if notifier != nil {
			paydayNotifier = notifier
		}
		sched := scheduler.New(cycleService, paydayNotifier)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Internal ops routes, guarded by the internal API key
	internal := v1.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(appConfig.InternalAPIKey))
	internal.POST("/cycles/mark-overdue", internalHandler.MarkOverdueCycles)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.POST("/auth/logout", authHandler.Logout)

	// Household routes
	households := protected.Group("/households")
	households.POST("", householdHandler.CreateHousehold)
	households.POST("/join", householdHandler.JoinHousehold)
	households.GET("/me", householdHandler.GetHousehold)
	households.PUT("/me", householdHandler.UpdateHousehold)

	// Pay cycle routes
	cycles := protected.Group("/cycles")
	cycles.GET("", cycleHandler.GetCycles)
	cycles.GET("/active", cycleHandler.GetActiveCycle)
	cycles.GET("/draft", cycleHandler.GetDraftCycle)
	cycles.POST("/first", cycleHandler.CreateFirstCycle)
	cycles.POST("/next", cycleHandler.CreateNextCycle)
	cycles.POST("/draft/resync", cycleHandler.ResyncDraft)
	cycles.POST("/start-next", cycleHandler.StartNextCycle)
	cycles.GET("/:id", cycleHandler.GetCycle)
	cycles.GET("/:id/summary", cycleHandler.GetCycleSummary)
	cycles.POST("/:id/close", cycleHandler.CloseCycle)
	cycles.POST("/:id/unlock", cycleHandler.UnlockCycle)
	cycles.POST("/:id/seeds", seedHandler.CreateSeed)
	cycles.GET("/:id/seeds", seedHandler.GetCycleSeeds)
	cycles.GET("/:id/income", incomeHandler.PreviewCycleIncome)

	// Seed routes
	seeds := protected.Group("/seeds")
	seeds.PUT("/:id", seedHandler.UpdateSeed)
	seeds.DELETE("/:id", seedHandler.DeleteSeed)
	seeds.POST("/:id/paid", seedHandler.MarkPaid)
	seeds.DELETE("/:id/paid", seedHandler.UnmarkPaid)

	// Pot routes
	pots := protected.Group("/pots")
	pots.POST("", potHandler.CreatePot)
	pots.GET("", potHandler.GetPots)
	pots.GET("/:id", potHandler.GetPot)
	pots.PUT("/:id", potHandler.UpdatePot)
	pots.DELETE("/:id", potHandler.DeletePot)
	pots.GET("/:id/forecast", potHandler.GetPotForecast)

	// Repayment routes
	repayments := protected.Group("/repayments")
	repayments.POST("", repaymentHandler.CreateRepayment)
	repayments.GET("", repaymentHandler.GetRepayments)
	repayments.GET("/:id", repaymentHandler.GetRepayment)
	repayments.PUT("/:id", repaymentHandler.UpdateRepayment)
	repayments.DELETE("/:id", repaymentHandler.DeleteRepayment)
	repayments.GET("/:id/forecast", repaymentHandler.GetRepaymentForecast)

	// Income source routes
	incomes := protected.Group("/income-sources")
	incomes.POST("", incomeHandler.CreateIncomeSource)
	incomes.GET("", incomeHandler.GetIncomeSources)
	incomes.GET("/:id", incomeHandler.GetIncomeSource)
	incomes.PUT("/:id", incomeHandler.UpdateIncomeSource)
	incomes.DELETE("/:id", incomeHandler.DeleteIncomeSource)

	// Telegram linking routes
	telegram := protected.Group("/telegram")
	telegram.POST("/link", telegramHandler.GenerateCode)
	telegram.GET("/link", telegramHandler.GetLink)
	telegram.DELETE("/link", telegramHandler.Unlink)

	log.Infof("Starting Sprout backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
