package repositories

import (
	"errors"
	"fmt"
	"time"

	"digitizing/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	db *gorm.DB
}

// NewGORMContactRepository creates a new instance of GORMContactRepository.
func NewGORMContactRepository(db *gorm.DB) *GORMContactRepository {
	return &GORMContactRepository{db: db}
}

// Create creates a new contact form submission.
func (r *GORMContactRepository) Create(contact *models.ContactForm) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}
	if err := r.db.Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create contact form: %w", err)
	}
	return nil
}

// GetByID retrieves a contact form by ID.
func (r *GORMContactRepository) GetByID(id string) (*models.ContactForm, error) {
	var contact models.ContactForm
	if err := r.db.First(&contact, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contact with ID %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contact by ID %s: %w", id, err)
	}
	return &contact, nil
}

// GetAll retrieves contact forms matching the filters, newest first.
func (r *GORMContactRepository) GetAll(filters models.ContactFilters) ([]models.ContactForm, error) {
	q := r.db.Session(&gorm.Session{})
	if len(filters.Status) > 0 {
		q = q.Where("status IN ?", filters.Status)
	}
	if filters.DateFrom != nil {
		q = q.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		q = q.Where("created_at <= ?", *filters.DateTo)
	}
	var contacts []models.ContactForm
	if err := q.Order("created_at DESC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all contacts: %w", err)
	}
	return contacts, nil
}

// Update saves all fields of an existing contact form.
func (r *GORMContactRepository) Update(contact *models.ContactForm) error {
	res := r.db.Save(contact)
	if res.Error != nil {
		return fmt.Errorf("failed to update contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact with ID %s: %w", contact.ID, models.ErrNotFound)
	}
	return nil
}
