package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"digitizing/internal/models"

	"github.com/google/uuid"
)

// MockContactRepository is an in-memory implementation of ContactRepository.
type MockContactRepository struct {
	contacts map[string]models.ContactForm
	mu       sync.RWMutex
}

// NewMockContactRepository creates a new instance of MockContactRepository.
func NewMockContactRepository() *MockContactRepository {
	return &MockContactRepository{contacts: make(map[string]models.ContactForm)}
}

// Create adds a new contact form submission.
func (r *MockContactRepository) Create(contact *models.ContactForm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}
	r.contacts[contact.ID] = *contact
	return nil
}

// GetByID returns a contact form by ID.
func (r *MockContactRepository) GetByID(id string) (*models.ContactForm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contact, ok := r.contacts[id]
	if !ok {
		return nil, fmt.Errorf("contact with ID %s: %w", id, models.ErrNotFound)
	}
	return &contact, nil
}

// GetAll returns contact forms matching the filters, newest first.
func (r *MockContactRepository) GetAll(filters models.ContactFilters) ([]models.ContactForm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var contacts []models.ContactForm
	for _, contact := range r.contacts {
		if matchContactFilters(contact, filters) {
			contacts = append(contacts, contact)
		}
	}
	sort.Slice(contacts, func(i, j int) bool {
		return contacts[i].CreatedAt.After(contacts[j].CreatedAt)
	})
	return contacts, nil
}

// Update replaces an existing contact form.
func (r *MockContactRepository) Update(contact *models.ContactForm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contacts[contact.ID]; !ok {
		return fmt.Errorf("contact with ID %s: %w", contact.ID, models.ErrNotFound)
	}
	r.contacts[contact.ID] = *contact
	return nil
}

func matchContactFilters(contact models.ContactForm, filters models.ContactFilters) bool {
	if len(filters.Status) > 0 {
		found := false
		for _, s := range filters.Status {
			if s == contact.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filters.DateFrom != nil && contact.CreatedAt.Before(*filters.DateFrom) {
		return false
	}
	if filters.DateTo != nil && contact.CreatedAt.After(*filters.DateTo) {
		return false
	}
	return true
}
