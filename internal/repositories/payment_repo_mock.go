package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"digitizing/internal/models"

	"github.com/google/uuid"
)

// MockPaymentRepository is an in-memory implementation of PaymentRepository.
type MockPaymentRepository struct {
	payments map[string]models.Payment
	mu       sync.RWMutex
}

// NewMockPaymentRepository creates a new instance of MockPaymentRepository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[string]models.Payment)}
}

// Create adds a new payment.
func (r *MockPaymentRepository) Create(payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	r.payments[payment.ID] = *payment
	return nil
}

// GetByID returns a payment by ID.
func (r *MockPaymentRepository) GetByID(id string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment with ID %s: %w", id, models.ErrNotFound)
	}
	return &payment, nil
}

// GetByIdempotencyKey returns a payment by its webhook idempotency key.
func (r *MockPaymentRepository) GetByIdempotencyKey(key string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, payment := range r.payments {
		if payment.IdempotencyKey == key {
			p := payment
			return &p, nil
		}
	}
	return nil, fmt.Errorf("payment with idempotency key %s: %w", key, models.ErrNotFound)
}

// GetByOrderID returns all payments for an order, newest first.
func (r *MockPaymentRepository) GetByOrderID(orderID string) ([]models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var payments []models.Payment
	for _, payment := range r.payments {
		if payment.OrderID == orderID {
			payments = append(payments, payment)
		}
	}
	sortPaymentsNewestFirst(payments)
	return payments, nil
}

// GetByUserID returns all payments for a user, newest first.
func (r *MockPaymentRepository) GetByUserID(userID string) ([]models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var payments []models.Payment
	for _, payment := range r.payments {
		if payment.UserID == userID {
			payments = append(payments, payment)
		}
	}
	sortPaymentsNewestFirst(payments)
	return payments, nil
}

// GetAll returns all payments matching the filters, newest first.
func (r *MockPaymentRepository) GetAll(filters models.PaymentFilters) ([]models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var payments []models.Payment
	for _, payment := range r.payments {
		if matchPaymentFilters(payment, filters) {
			payments = append(payments, payment)
		}
	}
	sortPaymentsNewestFirst(payments)
	return payments, nil
}

// Update replaces an existing payment.
func (r *MockPaymentRepository) Update(payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[payment.ID]; !ok {
		return fmt.Errorf("payment with ID %s: %w", payment.ID, models.ErrNotFound)
	}
	payment.UpdatedAt = time.Now()
	r.payments[payment.ID] = *payment
	return nil
}

func matchPaymentFilters(payment models.Payment, filters models.PaymentFilters) bool {
	if len(filters.Status) > 0 {
		found := false
		for _, s := range filters.Status {
			if s == payment.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filters.DateFrom != nil && payment.CreatedAt.Before(*filters.DateFrom) {
		return false
	}
	if filters.DateTo != nil && payment.CreatedAt.After(*filters.DateTo) {
		return false
	}
	return true
}

func sortPaymentsNewestFirst(payments []models.Payment) {
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
}
