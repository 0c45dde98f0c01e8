package repositories

import (
	"digitizing/internal/models"
)

// AdminRepository defines the interface for back-office account data access.
type AdminRepository interface {
	Create(admin *models.AdminUser) error
	GetByID(id string) (*models.AdminUser, error)
	GetByEmail(email string) (*models.AdminUser, error)
	GetAll() ([]models.AdminUser, error)
	Update(admin *models.AdminUser) error
}
