package repositories

import (
	"errors"
	"fmt"
	"time"

	"digitizing/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAdminRepository is a GORM implementation of AdminRepository.
type GORMAdminRepository struct {
	db *gorm.DB
}

// NewGORMAdminRepository creates a new instance of GORMAdminRepository.
func NewGORMAdminRepository(db *gorm.DB) *GORMAdminRepository {
	return &GORMAdminRepository{db: db}
}

// Create creates a new admin user in the database.
func (r *GORMAdminRepository) Create(admin *models.AdminUser) error {
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt
	if err := r.db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

// GetByID retrieves an admin user by ID.
func (r *GORMAdminRepository) GetByID(id string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin user with ID %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin user by ID %s: %w", id, err)
	}
	return &admin, nil
}

// GetByEmail retrieves an admin user by email.
func (r *GORMAdminRepository) GetByEmail(email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.First(&admin, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin user with email %s: %w", email, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin user by email %s: %w", email, err)
	}
	return &admin, nil
}

// GetAll retrieves all admin users.
func (r *GORMAdminRepository) GetAll() ([]models.AdminUser, error) {
	var admins []models.AdminUser
	if err := r.db.Order("created_at").Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("failed to get all admin users: %w", err)
	}
	return admins, nil
}

// Update saves all fields of an existing admin user.
func (r *GORMAdminRepository) Update(admin *models.AdminUser) error {
	admin.UpdatedAt = time.Now()
	res := r.db.Save(admin)
	if res.Error != nil {
		return fmt.Errorf("failed to update admin user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("admin user with ID %s: %w", admin.ID, models.ErrNotFound)
	}
	return nil
}
