package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sprout/internal/handlers"
	"sprout/internal/logger"
	"sprout/internal/middleware"
	"sprout/internal/models"
	"sprout/internal/services"
	"sprout/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Household{},
		&models.PayCycle{},
		&models.Seed{},
		&models.Pot{},
		&models.Repayment{},
		&models.IncomeSource{},
		&models.TelegramLink{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	householdService := services.NewHouseholdService(db)
	cycleService := services.NewPayCycleService(db)
	seedService := services.NewSeedService(db)
	potService := services.NewPotService(db)
	repaymentService := services.NewRepaymentService(db)
	incomeService := services.NewIncomeSourceService(db)
	telegramService := services.NewTelegramService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	householdHandler := handlers.NewHouseholdHandler(householdService, auditService)
	cycleHandler := handlers.NewPayCycleHandler(cycleService, auditService)
	seedHandler := handlers.NewSeedHandler(seedService, auditService)
	potHandler := handlers.NewPotHandler(potService, auditService)
	repaymentHandler := handlers.NewRepaymentHandler(repaymentService, auditService)
	incomeHandler := handlers.NewIncomeSourceHandler(incomeService, auditService)
	telegramHandler := handlers.NewTelegramHandler(telegramService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.POST("/auth/logout", authHandler.Logout)

	households := protected.Group("/households")
	households.POST("", householdHandler.CreateHousehold)
	households.POST("/join", householdHandler.JoinHousehold)
	households.GET("/me", householdHandler.GetHousehold)
	households.PUT("/me", householdHandler.UpdateHousehold)

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

	seeds := protected.Group("/seeds")
	seeds.PUT("/:id", seedHandler.UpdateSeed)
	seeds.DELETE("/:id", seedHandler.DeleteSeed)
	seeds.POST("/:id/paid", seedHandler.MarkPaid)
	seeds.DELETE("/:id/paid", seedHandler.UnmarkPaid)

	pots := protected.Group("/pots")
	pots.POST("", potHandler.CreatePot)
	pots.GET("", potHandler.GetPots)
	pots.GET("/:id", potHandler.GetPot)
	pots.PUT("/:id", potHandler.UpdatePot)
	pots.DELETE("/:id", potHandler.DeletePot)
	pots.GET("/:id/forecast", potHandler.GetPotForecast)

	repayments := protected.Group("/repayments")
	repayments.POST("", repaymentHandler.CreateRepayment)
	repayments.GET("", repaymentHandler.GetRepayments)
	repayments.GET("/:id", repaymentHandler.GetRepayment)
	repayments.PUT("/:id", repaymentHandler.UpdateRepayment)
	repayments.DELETE("/:id", repaymentHandler.DeleteRepayment)
	repayments.GET("/:id/forecast", repaymentHandler.GetRepaymentForecast)

	incomes := protected.Group("/income-sources")
	incomes.POST("", incomeHandler.CreateIncomeSource)
	incomes.GET("", incomeHandler.GetIncomeSources)
	incomes.GET("/:id", incomeHandler.GetIncomeSource)
	incomes.PUT("/:id", incomeHandler.UpdateIncomeSource)
	incomes.DELETE("/:id", incomeHandler.DeleteIncomeSource)

	telegram := protected.Group("/telegram")
	telegram.POST("/link", telegramHandler.GenerateCode)
	telegram.GET("/link", telegramHandler.GetLink)
	telegram.DELETE("/link", telegramHandler.Unlink)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createHousehold creates a household for the user and returns its ID and invite code.
func (app *testApp) createHousehold(t *testing.T, token, name string) (householdID, inviteCode string) {
	t.Helper()
	rec := app.request("POST", "/api/v1/households", fmt.Sprintf(`{"name":%q}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create household failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	household := result["household"].(map[string]interface{})
	return household["id"].(string), result["invite_code"].(string)
}
