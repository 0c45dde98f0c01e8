package repositories

import (
	"fmt"
	"sync"
	"time"

	"digitizing/internal/models"

	"github.com/google/uuid"
)

// MockQuoteRepository is an in-memory implementation of QuoteRepository,
// keyed by order ID since an order has at most one quote.
type MockQuoteRepository struct {
	quotes map[string]models.Quote
	mu     sync.RWMutex
}

// NewMockQuoteRepository creates a new instance of MockQuoteRepository.
func NewMockQuoteRepository() *MockQuoteRepository {
	return &MockQuoteRepository{quotes: make(map[string]models.Quote)}
}

// Save inserts or replaces the quote for an order.
func (r *MockQuoteRepository) Save(quote *models.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if quote.ID == "" {
		quote.ID = uuid.New().String()
	}
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = time.Now()
	}
	for i := range quote.Breakdown {
		quote.Breakdown[i].QuoteID = quote.ID
		quote.Breakdown[i].Position = i
	}
	r.quotes[quote.OrderID] = *quote
	return nil
}

// GetByOrderID returns the quote attached to an order.
func (r *MockQuoteRepository) GetByOrderID(orderID string) (*models.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	quote, ok := r.quotes[orderID]
	if !ok {
		return nil, fmt.Errorf("quote for order %s: %w", orderID, models.ErrNotFound)
	}
	return &quote, nil
}
