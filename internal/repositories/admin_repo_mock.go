package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"digitizing/internal/models"

	"github.com/google/uuid"
)

// MockAdminRepository is an in-memory implementation of AdminRepository.
type MockAdminRepository struct {
	admins map[string]models.AdminUser
	mu     sync.RWMutex
}

// NewMockAdminRepository creates a new instance of MockAdminRepository.
func NewMockAdminRepository() *MockAdminRepository {
	return &MockAdminRepository{admins: make(map[string]models.AdminUser)}
}

// Create adds a new admin user.
func (r *MockAdminRepository) Create(admin *models.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	for _, a := range r.admins {
		if a.Email == admin.Email {
			return fmt.Errorf("admin user with email %s: %w", admin.Email, models.ErrDuplicateEmail)
		}
	}
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt
	r.admins[admin.ID] = *admin
	return nil
}

// GetByID returns an admin user by ID.
func (r *MockAdminRepository) GetByID(id string) (*models.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	admin, ok := r.admins[id]
	if !ok {
		return nil, fmt.Errorf("admin user with ID %s: %w", id, models.ErrNotFound)
	}
	return &admin, nil
}

// GetByEmail returns an admin user by email.
func (r *MockAdminRepository) GetByEmail(email string) (*models.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, admin := range r.admins {
		if admin.Email == email {
			a := admin
			return &a, nil
		}
	}
	return nil, fmt.Errorf("admin user with email %s: %w", email, models.ErrNotFound)
}

// GetAll returns all admin users ordered by creation time.
func (r *MockAdminRepository) GetAll() ([]models.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	admins := make([]models.AdminUser, 0, len(r.admins))
	for _, admin := range r.admins {
		admins = append(admins, admin)
	}
	sort.Slice(admins, func(i, j int) bool {
		return admins[i].CreatedAt.Before(admins[j].CreatedAt)
	})
	return admins, nil
}

// Update replaces an existing admin user.
func (r *MockAdminRepository) Update(admin *models.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.admins[admin.ID]; !ok {
		return fmt.Errorf("admin user with ID %s: %w", admin.ID, models.ErrNotFound)
	}
	admin.UpdatedAt = time.Now()
	r.admins[admin.ID] = *admin
	return nil
}
