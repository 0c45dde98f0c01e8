package handlers

import (
	"digitizing/internal/models"
	"digitizing/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ContactHandler handles HTTP requests for contact form submissions and
// their admin-side management.
type ContactHandler struct {
	service  *services.ContactService
	validate *validator.Validate
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public contact submission route.
func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/contacts", h.HandleSubmit)
}

// RegisterAdminRoutes registers the admin-side contact routes.
func (h *ContactHandler) RegisterAdminRoutes(router fiber.Router) {
	contactRoutes := router.Group("/contacts")
	contactRoutes.Get("/", h.HandleListContacts)
	contactRoutes.Get("/:id", h.HandleGetContact)
	contactRoutes.Patch("/:id/status", h.HandleUpdateStatus)
}

// HandleSubmit accepts a public contact form submission.
func (h *ContactHandler) HandleSubmit(c *fiber.Ctx) error {
	var contact models.ContactForm
	if err := c.BodyParser(&contact); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validate.Struct(contact); err != nil {
		return validationFail(c, err)
	}

	savedContact, err := h.service.Submit(&contact)
	if err != nil {
		return fail(c, err)
	}
	return created(c, savedContact)
}

// HandleListContacts lists contact submissions for admins.
func (h *ContactHandler) HandleListContacts(c *fiber.Ctx) error {
	filters := models.ContactFilters{
		DateFrom: dateQuery(c, "date_from"),
		DateTo:   dateQuery(c, "date_to"),
	}
	for _, s := range csvQuery(c, "status") {
		filters.Status = append(filters.Status, models.ContactStatus(s))
	}

	contacts, err := h.service.ListContacts(subjectFromCtx(c), filters)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, contacts)
}

// HandleGetContact returns one submission. Opening a new submission
// marks it as read.
func (h *ContactHandler) HandleGetContact(c *fiber.Ctx) error {
	contact, err := h.service.GetContact(subjectFromCtx(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, contact)
}

// ContactStatusRequest represents the body of a contact status change.
type ContactStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

// HandleUpdateStatus changes a submission's handling status.
func (h *ContactHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req ContactStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	contact, err := h.service.UpdateStatus(subjectFromCtx(c), c.Params("id"), models.ContactStatus(req.Status), req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, contact)
}
