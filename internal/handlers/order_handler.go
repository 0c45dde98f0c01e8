package handlers

import (
	"digitizing/internal/models"
	"digitizing/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders, quotes, deliverables
// and order messages.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the customer-facing order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Get("/:id/deliverables", h.HandleGetDeliverables)
}

// RegisterAdminRoutes registers the admin-side order routes.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Post("/:id/quote", h.HandleAddQuote)
	orderRoutes.Patch("/:id/status", h.HandleUpdateStatus)
	orderRoutes.Post("/:id/deliverables", h.HandleUploadDeliverable)
	orderRoutes.Get("/:id/deliverables", h.HandleGetDeliverables)
	orderRoutes.Post("/:id/messages", h.HandleSendMessage)
}

// HandleListOrders lists orders visible to the caller. Customers see
// their own orders; admins see everything, optionally filtered.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	filters := models.OrderFilters{
		SearchQuery: c.Query("search"),
		DateFrom:    dateQuery(c, "date_from"),
		DateTo:      dateQuery(c, "date_to"),
	}
	for _, s := range csvQuery(c, "status") {
		filters.Status = append(filters.Status, models.OrderStatus(s))
	}
	for _, s := range csvQuery(c, "service_type") {
		filters.ServiceType = append(filters.ServiceType, models.ServiceType(s))
	}

	orders, err := h.service.ListOrders(subjectFromCtx(c), filters)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, orders)
}

// HandleCreateOrder submits a new order for the authenticated customer.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var order models.Order
	if err := c.BodyParser(&order); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validate.Struct(order); err != nil {
		return validationFail(c, err)
	}

	createdOrder, err := h.service.CreateOrder(subjectFromCtx(c), &order)
	if err != nil {
		return fail(c, err)
	}
	return created(c, createdOrder)
}

// HandleGetOrder returns a full order view: the order itself plus its
// quote, payment, deliverables, messages and timeline.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	view, err := h.service.GetOrder(subjectFromCtx(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, view)
}

// HandleAddQuote attaches or replaces the quote on an order.
func (h *OrderHandler) HandleAddQuote(c *fiber.Ctx) error {
	var quote models.Quote
	if err := c.BodyParser(&quote); err != nil {
		return badRequest(c, "Invalid request body")
	}
	quote.OrderID = c.Params("id")

	if err := h.validate.Struct(quote); err != nil {
		return validationFail(c, err)
	}

	savedQuote, err := h.service.AddQuote(subjectFromCtx(c), &quote)
	if err != nil {
		return fail(c, err)
	}
	return created(c, savedQuote)
}

// UpdateStatusRequest represents the body of a status change.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

// HandleUpdateStatus moves an order along its lifecycle.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	order, err := h.service.UpdateStatus(subjectFromCtx(c), c.Params("id"), models.OrderStatus(req.Status), req.Note)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, order)
}

// HandleUploadDeliverable attaches a finished file to an order.
func (h *OrderHandler) HandleUploadDeliverable(c *fiber.Ctx) error {
	var deliverable models.Deliverable
	if err := c.BodyParser(&deliverable); err != nil {
		return badRequest(c, "Invalid request body")
	}
	deliverable.OrderID = c.Params("id")

	if err := h.validate.Struct(deliverable); err != nil {
		return validationFail(c, err)
	}

	savedDeliverable, err := h.service.UploadDeliverable(subjectFromCtx(c), &deliverable)
	if err != nil {
		return fail(c, err)
	}
	return created(c, savedDeliverable)
}

// HandleGetDeliverables lists the files uploaded for an order.
func (h *OrderHandler) HandleGetDeliverables(c *fiber.Ctx) error {
	deliverables, err := h.service.GetDeliverables(subjectFromCtx(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, deliverables)
}

// HandleSendMessage posts an admin note on an order thread.
func (h *OrderHandler) HandleSendMessage(c *fiber.Ctx) error {
	var message models.Message
	if err := c.BodyParser(&message); err != nil {
		return badRequest(c, "Invalid request body")
	}
	message.OrderID = c.Params("id")

	if err := h.validate.Struct(message); err != nil {
		return validationFail(c, err)
	}

	savedMessage, err := h.service.SendMessage(subjectFromCtx(c), &message)
	if err != nil {
		return fail(c, err)
	}
	return created(c, savedMessage)
}
