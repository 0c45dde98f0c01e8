package repositories

import (
	"digitizing/internal/models"
)

// OrderRepository defines the interface for order data access. The
// timeline is the order's append-only audit trail and lives here
// because every status mutation must append to it.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetAll(filters models.OrderFilters) ([]models.Order, error)
	GetByUserID(userID string, filters models.OrderFilters) ([]models.Order, error)
	UpdateStatus(id string, status models.OrderStatus) error
	AppendTimeline(entry *models.TimelineEntry) error
	GetTimeline(orderID string) ([]models.TimelineEntry, error)
}
