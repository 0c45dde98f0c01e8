package handlers

import (
	"digitizing/internal/models"
	"digitizing/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles HTTP requests for the back-office: admin login,
// admin account management and the dashboard.
type AdminHandler struct {
	service  *services.AdminService
	validate *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *services.AdminService) *AdminHandler {
	return &AdminHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public admin login route.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/admin/auth/login", h.HandleLogin)
}

// RegisterProtectedRoutes registers routes behind the admin token.
func (h *AdminHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Get("/stats", h.HandleDashboardStats)
	router.Post("/auth/password", h.HandleChangePassword)
	adminRoutes := router.Group("/users")
	adminRoutes.Get("/", h.HandleListAdmins)
	adminRoutes.Post("/", h.HandleCreateAdmin)
	adminRoutes.Patch("/:id/toggle", h.HandleToggleStatus)
}

// AdminLoginRequest represents the request body for admin login.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles back-office login and issues an admin JWT token.
func (h *AdminHandler) HandleLogin(c *fiber.Ctx) error {
	var req AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	admin, token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	admin.Password = ""
	return ok(c, fiber.Map{
		"admin": admin,
		"token": token,
	})
}

// HandleDashboardStats returns the aggregate dashboard numbers.
func (h *AdminHandler) HandleDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.DashboardStats(subjectFromCtx(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, stats)
}

// HandleListAdmins lists all admin accounts. Requires the admin role;
// managers are denied.
func (h *AdminHandler) HandleListAdmins(c *fiber.Ctx) error {
	admins, err := h.service.ListAdmins(subjectFromCtx(c))
	if err != nil {
		return fail(c, err)
	}
	for i := range admins {
		admins[i].Password = ""
	}
	return ok(c, admins)
}

// CreateAdminRequest represents the request body for creating an admin
// account. The password binds here because AdminUser never exposes it
// over JSON.
type CreateAdminRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
	Role      string `json:"role" validate:"required,oneof=admin manager"`
}

// HandleCreateAdmin creates a new admin account.
func (h *AdminHandler) HandleCreateAdmin(c *fiber.Ctx) error {
	var req CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	admin := models.AdminUser{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.AdminRole(req.Role),
	}
	createdAdmin, err := h.service.CreateAdmin(subjectFromCtx(c), &admin)
	if err != nil {
		return fail(c, err)
	}

	createdAdmin.Password = ""
	return created(c, createdAdmin)
}

// HandleToggleStatus flips an admin account between active and
// deactivated.
func (h *AdminHandler) HandleToggleStatus(c *fiber.Ctx) error {
	admin, err := h.service.ToggleAdminStatus(subjectFromCtx(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	admin.Password = ""
	return ok(c, admin)
}

// ChangePasswordRequest represents the body of a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// HandleChangePassword lets the authenticated admin rotate their own
// password.
func (h *AdminHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	adminID, _ := c.Locals("admin_id").(string)
	if err := h.service.ChangePassword(adminID, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{
		"message": "Password updated successfully",
	})
}
