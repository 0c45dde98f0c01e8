package repositories

import (
	"digitizing/internal/models"
)

// ContactRepository defines the interface for contact form data access.
type ContactRepository interface {
	Create(contact *models.ContactForm) error
	GetByID(id string) (*models.ContactForm, error)
	GetAll(filters models.ContactFilters) ([]models.ContactForm, error)
	Update(contact *models.ContactForm) error
}
