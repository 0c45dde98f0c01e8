package handlers

import (
	"digitizing/internal/models"
	"digitizing/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for customer authentication and
// profile management.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
}

// RegisterProtectedRoutes registers the routes that require a customer
// token.
func (h *AuthHandler) RegisterProtectedRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/me", h.HandleGetProfile)
	userRoutes.Patch("/me", h.HandleUpdateProfile)
}

// RegisterRequest represents the request body for registration. The
// password binds here because the User model never exposes it over JSON.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Company   string `json:"company" validate:"omitempty,max=150"`
}

// HandleRegister handles new customer registration. A freshly
// registered customer is logged in immediately.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	user := models.User{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Company:   req.Company,
	}
	token, err := h.authService.RegisterUser(&user)
	if err != nil {
		return fail(c, err)
	}

	user.Password = ""
	return created(c, fiber.Map{
		"user":  user,
		"token": token,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles customer login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return validationFail(c, err)
	}

	user, token, err := h.authService.LoginUser(req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	user.Password = ""
	return ok(c, fiber.Map{
		"user":  user,
		"token": token,
	})
}

// HandleLogout acknowledges a logout. Tokens are stateless, so the
// client simply discards its copy.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	return ok(c, fiber.Map{
		"message": "Logged out successfully",
	})
}

// HandleGetProfile returns the authenticated customer's profile with
// order counts.
func (h *AuthHandler) HandleGetProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	profile, err := h.authService.GetProfile(userID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, profile)
}

// HandleUpdateProfile applies a partial update to the authenticated
// customer's profile. Only the fields present in the body change.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var update models.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.authService.UpdateProfile(userID, update)
	if err != nil {
		return fail(c, err)
	}

	user.Password = ""
	return ok(c, user)
}
