package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"digitizing/internal/handlers"
	"digitizing/internal/logger"
	"digitizing/internal/middleware"
	"digitizing/internal/models"
	"digitizing/internal/repositories"
	"digitizing/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "test_jwt_secret"

// testDeps exposes the wired services and repositories so tests can
// seed data and mint tokens directly.
type testDeps struct {
	authService  *services.AuthService
	adminService *services.AdminService
	adminRepo    repositories.AdminRepository
}

// setupApp builds the full Fiber app against an in-memory SQLite
// database, with no message broker attached.
func setupApp() (*fiber.App, *testDeps, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.AdminUser{},
		&models.Order{},
		&models.UploadedFile{},
		&models.TimelineEntry{},
		&models.Quote{},
		&models.QuoteBreakdownItem{},
		&models.Payment{},
		&models.Deliverable{},
		&models.Message{},
		&models.ContactForm{},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	log := logger.New(io.Discard)

	userRepo := repositories.NewGORMUserRepository(db)
	adminRepo := repositories.NewGORMAdminRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	quoteRepo := repositories.NewGORMQuoteRepository(db)
	paymentRepo := repositories.NewGORMPaymentRepository(db)
	deliverableRepo := repositories.NewGORMDeliverableRepository(db)
	messageRepo := repositories.NewGORMMessageRepository(db)
	contactRepo := repositories.NewGORMContactRepository(db)

	authService := services.NewAuthService(userRepo, orderRepo, testJWTSecret)
	orderService := services.NewOrderService(orderRepo, quoteRepo, paymentRepo, deliverableRepo, messageRepo, nil, log)
	paymentService := services.NewPaymentService(paymentRepo, orderRepo, quoteRepo, nil, time.Second, log)
	contactService := services.NewContactService(contactRepo)
	adminService := services.NewAdminService(adminRepo, orderRepo, paymentRepo, contactRepo, testJWTSecret)

	authHandler := handlers.NewAuthHandler(authService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	contactHandler := handlers.NewContactHandler(contactService)
	adminHandler := handlers.NewAdminHandler(adminService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authHandler.RegisterRoutes(apiV1)
	contactHandler.RegisterRoutes(apiV1)
	adminHandler.RegisterRoutes(apiV1)
	paymentHandler.RegisterWebhookRoutes(apiV1)

	admin := apiV1.Group("/admin", middleware.AdminRequired(adminService))
	adminHandler.RegisterProtectedRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	paymentHandler.RegisterAdminRoutes(admin)
	contactHandler.RegisterAdminRoutes(admin)
	admin.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "not found",
		})
	})

	customer := apiV1.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterProtectedRoutes(customer)
	orderHandler.RegisterRoutes(customer)
	paymentHandler.RegisterRoutes(customer)

	deps := &testDeps{
		authService:  authService,
		adminService: adminService,
		adminRepo:    adminRepo,
	}
	return app, deps, nil
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

// doJSON performs a JSON request against the app and decodes the
// response envelope.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&envelope)
	assert.NoError(t, err)
	return resp.StatusCode, envelope
}

// registerCustomer registers a customer and returns their token.
func registerCustomer(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":      email,
		"password":   "password123",
		"first_name": "Test",
		"last_name":  "Customer",
	})
	assert.Equal(t, http.StatusCreated, status)
	data := envelope["data"].(map[string]interface{})
	return data["token"].(string)
}

// loginAdmin seeds an active admin account and logs it in.
func loginAdmin(t *testing.T, app *fiber.App, deps *testDeps, email string, role models.AdminRole) string {
	t.Helper()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	err := deps.adminRepo.Create(&models.AdminUser{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: "Back",
		LastName:  "Office",
		Role:      role,
		IsActive:  true,
	})
	assert.NoError(t, err)

	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/admin/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, status)
	data := envelope["data"].(map[string]interface{})
	return data["token"].(string)
}

func newOrderBody() map[string]interface{} {
	return map[string]interface{}{
		"service_type": "digitizing",
		"details": map[string]interface{}{
			"design_name":     "Phoenix Logo",
			"width":           4,
			"height":          3,
			"units":           "inches",
			"output_format":   "DST",
			"complexity":      "medium",
			"turnaround_time": "standard",
		},
		"files": []map[string]interface{}{
			{
				"filename": "phoenix.png",
				"filesize": 204800,
				"mimetype": "image/png",
				"url":      "https://files.example.com/phoenix.png",
			},
		},
	}
}

func TestRegisterAndLogin(t *testing.T) {
	app, deps, err := setupApp()
	assert.NoError(t, err)

	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":      "register@example.com",
		"password":   "password123",
		"first_name": "Jane",
		"last_name":  "Doe",
	})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, envelope["success"])
	data := envelope["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	// Duplicate registration is rejected.
	status, envelope = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":      "register@example.com",
		"password":   "password123",
		"first_name": "Jane",
		"last_name":  "Doe",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, envelope["success"])

	status, envelope = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "register@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, status)
	data = envelope["data"].(map[string]interface{})
	token := data["token"].(string)

	claims, err := deps.authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Contains(t, claims, "user_id")

	// Wrong password
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "register@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestOrdersRequireAuth(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	status, _ := doJSON(t, app, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders", "", newOrderBody())
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// A customer token does not open the admin surface.
	customerToken := registerCustomer(t, app, "not-an-admin@example.com")
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/admin/stats", customerToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestOrderLifecycleEndToEnd(t *testing.T) {
	app, deps, err := setupApp()
	assert.NoError(t, err)

	customerToken := registerCustomer(t, app, "lifecycle@example.com")
	adminToken := loginAdmin(t, app, deps, "lifecycle-admin@example.com", models.RoleAdmin)

	// Customer submits an order.
	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken, newOrderBody())
	assert.Equal(t, http.StatusCreated, status)
	order := envelope["data"].(map[string]interface{})
	orderID := order["id"].(string)
	assert.Equal(t, "pending", order["status"])

	// Paying before a quote exists is rejected.
	status, envelope = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/payment", customerToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, envelope["success"])

	// Admin quotes $350.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/admin/orders/"+orderID+"/quote", adminToken, map[string]interface{}{
		"amount": 350,
		"breakdown": []map[string]interface{}{
			{"description": "Digitizing setup", "amount": 150},
			{"description": "Stitch work", "amount": 200},
		},
	})
	assert.Equal(t, http.StatusCreated, status)

	// A quote whose breakdown does not sum to the amount is rejected.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/admin/orders/"+orderID+"/quote", adminToken, map[string]interface{}{
		"amount": 999,
		"breakdown": []map[string]interface{}{
			{"description": "Digitizing setup", "amount": 150},
		},
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Customer opens a payment session.
	status, envelope = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+orderID+"/payment", customerToken, nil)
	assert.Equal(t, http.StatusCreated, status)
	session := envelope["data"].(map[string]interface{})
	paymentID := session["id"].(string)
	assert.Equal(t, 350.0, session["amount"])

	// Provider webhook reports success; delivered twice with the same
	// idempotency key.
	webhook := map[string]interface{}{
		"payment_id":      paymentID,
		"idempotency_key": "evt-lifecycle-1",
		"succeeded":       true,
		"transaction_id":  "txn-001",
		"payment_method":  "card",
	}
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/webhooks/payment", "", webhook)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/webhooks/payment", "", webhook)
	assert.Equal(t, http.StatusOK, status)

	// The order is paid, with exactly one payment timeline entry.
	status, envelope = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+orderID, customerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	view := envelope["data"].(map[string]interface{})
	assert.Equal(t, "paid", view["status"])
	timeline := view["timeline"].([]interface{})
	paidEntries := 0
	for _, raw := range timeline {
		entry := raw.(map[string]interface{})
		if entry["status"] == "paid" {
			paidEntries++
		}
	}
	assert.Equal(t, 1, paidEntries)

	// No broker is attached, so the admin starts work explicitly.
	status, _ = doJSON(t, app, http.MethodPatch, "/api/v1/admin/orders/"+orderID+"/status", adminToken, map[string]string{
		"status": "in_progress",
		"note":   "Work has started on your order",
	})
	assert.Equal(t, http.StatusOK, status)

	// Re-quoting after a successful payment is rejected.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/admin/orders/"+orderID+"/quote", adminToken, map[string]interface{}{
		"amount":    500,
		"breakdown": []map[string]interface{}{{"description": "Revised", "amount": 500}},
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Admin uploads the finished file, completing the order.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/admin/orders/"+orderID+"/deliverables", adminToken, map[string]interface{}{
		"filename":     "phoenix.dst",
		"filesize":     51200,
		"mimetype":     "application/octet-stream",
		"download_url": "https://files.example.com/phoenix.dst",
	})
	assert.Equal(t, http.StatusCreated, status)

	status, envelope = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+orderID, customerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	view = envelope["data"].(map[string]interface{})
	assert.Equal(t, "complete", view["status"])
	assert.Len(t, view["deliverables"].([]interface{}), 1)

	// A completed order cannot be cancelled.
	status, _ = doJSON(t, app, http.MethodPatch, "/api/v1/admin/orders/"+orderID+"/status", adminToken, map[string]string{
		"status": "cancelled",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestOrderOwnershipIsolation(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	ownerToken := registerCustomer(t, app, "owner@example.com")
	strangerToken := registerCustomer(t, app, "stranger@example.com")

	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/orders", ownerToken, newOrderBody())
	assert.Equal(t, http.StatusCreated, status)
	orderID := envelope["data"].(map[string]interface{})["id"].(string)

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+orderID, strangerToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+orderID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestManagerDeniedAdminManagement(t *testing.T) {
	app, deps, err := setupApp()
	assert.NoError(t, err)

	managerToken := loginAdmin(t, app, deps, "manager@example.com", models.RoleManager)

	status, _ := doJSON(t, app, http.MethodGet, "/api/v1/admin/users", managerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/admin/users", managerToken, map[string]string{
		"email":      "sneaky@example.com",
		"password":   "password123",
		"first_name": "Sneaky",
		"last_name":  "Manager",
		"role":       "admin",
	})
	assert.Equal(t, http.StatusForbidden, status)

	// The dashboard is open to both roles.
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/admin/stats", managerToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestContactFlow(t *testing.T) {
	app, deps, err := setupApp()
	assert.NoError(t, err)

	// Public submission, no token.
	status, envelope := doJSON(t, app, http.MethodPost, "/api/v1/contacts", "", map[string]string{
		"name":    "Sam Visitor",
		"email":   "sam@example.com",
		"subject": "Bulk patch order",
		"message": "Can you do 500 embroidered patches?",
	})
	assert.Equal(t, http.StatusCreated, status)
	contactID := envelope["data"].(map[string]interface{})["id"].(string)

	adminToken := loginAdmin(t, app, deps, "contact-admin@example.com", models.RoleAdmin)

	// Opening the submission marks it read.
	status, envelope = doJSON(t, app, http.MethodGet, "/api/v1/admin/contacts/"+contactID, adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "read", envelope["data"].(map[string]interface{})["status"])

	status, envelope = doJSON(t, app, http.MethodPatch, "/api/v1/admin/contacts/"+contactID+"/status", adminToken, map[string]string{
		"status": "replied",
		"notes":  "Sent pricing sheet",
	})
	assert.Equal(t, http.StatusOK, status)
	contact := envelope["data"].(map[string]interface{})
	assert.Equal(t, "replied", contact["status"])
	assert.NotEmpty(t, contact["replied_by"])
}

func TestAdminUnknownPathIsNotFound(t *testing.T) {
	app, deps, err := setupApp()
	assert.NoError(t, err)

	adminToken := loginAdmin(t, app, deps, "fallback-admin@example.com", models.RoleAdmin)

	// A valid admin token on a path the back office never registered
	// reads as missing, not as an auth failure.
	status, envelope := doJSON(t, app, http.MethodGet, "/api/v1/admin/nonexistent", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, envelope["success"])

	// Without a token the admin middleware still answers first.
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/admin/nonexistent", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
