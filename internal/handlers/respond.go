package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"digitizing/internal/authz"
	"digitizing/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ok writes a success envelope with the given payload.
func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// created writes a 201 success envelope with the given payload.
func created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// fail maps service errors to HTTP status codes through the sentinel
// errors in the models package, so handlers never string-match.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, models.ErrNotAuthenticated),
		errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, models.ErrAccessDenied),
		errors.Is(err, models.ErrInactiveAccount):
		status = fiber.StatusForbidden
	case errors.Is(err, models.ErrDuplicateEmail):
		status = fiber.StatusConflict
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrIllegalTransition),
		errors.Is(err, models.ErrNoQuote),
		errors.Is(err, models.ErrQuoteLocked):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

// badRequest writes a 400 envelope with a plain message.
func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// validationFail flattens validator errors into a field->message map.
func validationFail(c *fiber.Ctx, err error) error {
	validationErrors, okCast := err.(validator.ValidationErrors)
	if !okCast {
		return badRequest(c, err.Error())
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "Validation failed",
		"fields":  errorMessages,
	})
}

// subjectFromCtx rebuilds the authorization subject from whatever the
// auth middleware stored in the request context.
func subjectFromCtx(c *fiber.Ctx) authz.Subject {
	var subject authz.Subject
	if userID, okCast := c.Locals("user_id").(string); okCast {
		subject.UserID = userID
	}
	if adminID, okCast := c.Locals("admin_id").(string); okCast {
		subject.AdminID = adminID
	}
	if role, okCast := c.Locals("admin_role").(string); okCast {
		subject.Role = models.AdminRole(role)
	}
	return subject
}

// csvQuery splits a comma separated query parameter into its values.
func csvQuery(c *fiber.Ctx, key string) []string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// dateQuery parses an RFC 3339 or YYYY-MM-DD query parameter.
func dateQuery(c *fiber.Ctx, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}
