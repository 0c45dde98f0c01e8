package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"digitizing/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders    map[string]models.Order
	timelines map[string][]models.TimelineEntry
	mu        sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders:    make(map[string]models.Order),
		timelines: make(map[string][]models.TimelineEntry),
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Files {
		if order.Files[i].ID == "" {
			order.Files[i].ID = uuid.New().String()
		}
		order.Files[i].OrderID = order.ID
		if order.Files[i].UploadedAt.IsZero() {
			order.Files[i].UploadedAt = now
		}
	}
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, models.ErrNotFound)
	}
	return &order, nil
}

// GetAll returns all orders matching the filters, newest first.
func (r *MockOrderRepository) GetAll(filters models.OrderFilters) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if matchOrderFilters(order, filters) {
			orders = append(orders, order)
		}
	}
	sortOrdersNewestFirst(orders)
	return orders, nil
}

// GetByUserID returns a user's orders matching the filters, newest first.
func (r *MockOrderRepository) GetByUserID(userID string, filters models.OrderFilters) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []models.Order
	for _, order := range r.orders {
		if order.UserID == userID && matchOrderFilters(order, filters) {
			orders = append(orders, order)
		}
	}
	sortOrdersNewestFirst(orders)
	return orders, nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, models.ErrNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// AppendTimeline appends an audit entry for an order.
func (r *MockOrderRepository) AppendTimeline(entry *models.TimelineEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	r.timelines[entry.OrderID] = append(r.timelines[entry.OrderID], *entry)
	return nil
}

// GetTimeline returns an order's audit entries, oldest first.
func (r *MockOrderRepository) GetTimeline(orderID string) ([]models.TimelineEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]models.TimelineEntry, len(r.timelines[orderID]))
	copy(entries, r.timelines[orderID])
	return entries, nil
}

func matchOrderFilters(order models.Order, filters models.OrderFilters) bool {
	if len(filters.Status) > 0 && !containsStatus(filters.Status, order.Status) {
		return false
	}
	if len(filters.ServiceType) > 0 && !containsService(filters.ServiceType, order.ServiceType) {
		return false
	}
	if filters.SearchQuery != "" {
		q := strings.ToLower(filters.SearchQuery)
		if !strings.Contains(strings.ToLower(order.ID), q) &&
			!strings.Contains(strings.ToLower(order.Details.DesignName), q) {
			return false
		}
	}
	if filters.DateFrom != nil && order.CreatedAt.Before(*filters.DateFrom) {
		return false
	}
	if filters.DateTo != nil && order.CreatedAt.After(*filters.DateTo) {
		return false
	}
	return true
}

func containsStatus(list []models.OrderStatus, s models.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsService(list []models.ServiceType, s models.ServiceType) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortOrdersNewestFirst(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
