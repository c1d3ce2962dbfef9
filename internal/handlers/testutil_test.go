package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/insightdesk/backend/internal/database"
	"github.com/insightdesk/backend/internal/middleware"
	"github.com/insightdesk/backend/internal/models"
	"github.com/insightdesk/backend/internal/services"
	"github.com/insightdesk/backend/pkg/logger"
	"github.com/insightdesk/backend/pkg/utils"
	"gorm.io/gorm"
)

const testSuperAdminEmail = "super-admin@test.com"

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	mailer *recordingMailer
}

type sentMail struct {
	To      []string
	Subject string
	Body    string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	return setupTestEnvWith(t, false)
}

func setupTestEnvWith(t *testing.T, strictTransitions bool) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	mailer := &recordingMailer{}
	notifier := services.NewNotifier(mailer, 100)
	otpService := services.NewOTPService(db, notifier, 5*time.Minute)
	requestService := services.NewRequestService(db, notifier, strictTransitions)

	authHandler := NewAuthHandler(otpService)
	requestsHandler := NewRequestsHandler(requestService)
	adminsHandler := NewAdminsHandler(db)
	analystsHandler := NewAnalystsHandler(db)
	dashboardsHandler := NewDashboardsHandler(db)

	app := fiber.New(fiber.Config{})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/request-otp", authHandler.RequestOTP)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", middleware.RequireAuth, authHandler.Me)

	api.Get("/admins", adminsHandler.List)
	api.Get("/analysts", analystsHandler.List)

	requestRoutes := api.Group("/requests")
	requestRoutes.Post("/", requestsHandler.Create)
	requestRoutes.Get("/", middleware.RequireAuth, requestsHandler.List)
	requestRoutes.Get("/stats", middleware.RequireAuth, requestsHandler.Stats)
	requestRoutes.Get("/export", middleware.RequireAuth, requestsHandler.Export)
	requestRoutes.Post("/:id/assign", middleware.RequireAuth, requestsHandler.Assign)
	requestRoutes.Patch("/:id/edit", middleware.RequireAuth, requestsHandler.Edit)
	requestRoutes.Post("/:id/complete", middleware.RequireAuth, requestsHandler.Complete)
	requestRoutes.Delete("/:id", middleware.RequireAuth, requestsHandler.Delete)

	superAdmin := middleware.SuperAdminOnly(testSuperAdminEmail)
	api.Get("/dashboards", dashboardsHandler.Get)
	api.Post("/dashboards", middleware.RequireAuth, superAdmin, dashboardsHandler.Add)
	api.Delete("/dashboards", middleware.RequireAuth, superAdmin, dashboardsHandler.Remove)

	return &testEnv{app: app, db: db, mailer: mailer}
}

func createTestAdmin(t *testing.T, db *gorm.DB, email, name string) (*models.Admin, string) {
	t.Helper()

	admin := &models.Admin{
		Email:  email,
		Name:   name,
		Active: true,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("failed creating test admin: %v", err)
	}

	token, err := utils.GenerateToken(admin)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return admin, token
}

func createTestAnalyst(t *testing.T, db *gorm.DB, email, name string) *models.Analyst {
	t.Helper()

	analyst := &models.Analyst{
		Email:  email,
		Name:   name,
		Active: true,
	}
	if err := db.Create(analyst).Error; err != nil {
		t.Fatalf("failed creating test analyst: %v", err)
	}

	return analyst
}

func getChallenge(t *testing.T, db *gorm.DB, email string) *models.OTPChallenge {
	t.Helper()

	var challenge models.OTPChallenge
	if err := db.First(&challenge, "email = ?", email).Error; err != nil {
		t.Fatalf("expected an OTP challenge for %s: %v", email, err)
	}
	return &challenge
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
