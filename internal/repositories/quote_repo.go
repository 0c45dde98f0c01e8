package repositories

import (
	"digitizing/internal/models"
)

// QuoteRepository defines the interface for quote data access. An order
// has at most one quote; Save replaces any existing quote for the order.
type QuoteRepository interface {
	Save(quote *models.Quote) error
	GetByOrderID(orderID string) (*models.Quote, error)
}
