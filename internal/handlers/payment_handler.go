package handlers

import (
	"digitizing/internal/models"
	"digitizing/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles HTTP requests for payment sessions, listings
// and the provider webhook.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the customer-facing payment routes.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/orders/:id/payment", h.HandleCreateSession)
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Get("/", h.HandleListPayments)
	paymentRoutes.Get("/:id", h.HandleGetPayment)
}

// RegisterAdminRoutes registers the admin-side payment routes.
func (h *PaymentHandler) RegisterAdminRoutes(router fiber.Router) {
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Get("/", h.HandleListPayments)
	paymentRoutes.Get("/:id", h.HandleGetPayment)
}

// RegisterWebhookRoutes registers the provider-facing webhook. The
// route is outside the authenticated groups; the provider does not
// carry customer tokens.
func (h *PaymentHandler) RegisterWebhookRoutes(router fiber.Router) {
	router.Post("/webhooks/payment", h.HandleWebhook)
}

// HandleCreateSession opens a payment session for a quoted order.
func (h *PaymentHandler) HandleCreateSession(c *fiber.Ctx) error {
	session, err := h.service.CreateSession(subjectFromCtx(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return created(c, session)
}

// HandleWebhook receives a payment result from the provider. Redelivery
// with the same idempotency key is safe; the stored outcome is replayed.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	var event services.WebhookEvent
	if err := c.BodyParser(&event); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validate.Struct(event); err != nil {
		return validationFail(c, err)
	}

	payment, err := h.service.HandleWebhook(event)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, payment)
}

// HandleListPayments lists payments visible to the caller.
func (h *PaymentHandler) HandleListPayments(c *fiber.Ctx) error {
	filters := models.PaymentFilters{
		DateFrom: dateQuery(c, "date_from"),
		DateTo:   dateQuery(c, "date_to"),
	}
	for _, s := range csvQuery(c, "status") {
		filters.Status = append(filters.Status, models.PaymentStatus(s))
	}

	payments, err := h.service.ListPayments(subjectFromCtx(c), filters)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, payments)
}

// HandleGetPayment returns a single payment.
func (h *PaymentHandler) HandleGetPayment(c *fiber.Ctx) error {
	payment, err := h.service.GetPayment(subjectFromCtx(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, payment)
}
