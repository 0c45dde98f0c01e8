package repositories

import (
	"digitizing/internal/models"
)

// PaymentRepository defines the interface for payment data access.
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByID(id string) (*models.Payment, error)
	GetByIdempotencyKey(key string) (*models.Payment, error)
	GetByOrderID(orderID string) ([]models.Payment, error)
	GetByUserID(userID string) ([]models.Payment, error)
	GetAll(filters models.PaymentFilters) ([]models.Payment, error)
	Update(payment *models.Payment) error
}
