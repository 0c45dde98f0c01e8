package repositories

import (
	"digitizing/internal/models"
)

// DeliverableRepository defines the interface for finished-file data
// access. The per-order list is append-only.
type DeliverableRepository interface {
	Create(deliverable *models.Deliverable) error
	GetByOrderID(orderID string) ([]models.Deliverable, error)
}

// MessageRepository defines the interface for order message threads.
type MessageRepository interface {
	Create(message *models.Message) error
	GetByOrderID(orderID string) ([]models.Message, error)
}
