package repositories

import (
	"errors"
	"fmt"
	"time"

	"digitizing/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create creates a new order with its uploaded files.
func (r *GORMOrderRepository) Create(order *models.Order) error {
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
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order with its files.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Files").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetAll retrieves all orders matching the filters, newest first.
func (r *GORMOrderRepository) GetAll(filters models.OrderFilters) ([]models.Order, error) {
	var orders []models.Order
	q := r.applyFilters(r.db.Preload("Files"), filters)
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByUserID retrieves a user's orders matching the filters, newest first.
func (r *GORMOrderRepository) GetByUserID(userID string, filters models.OrderFilters) ([]models.Order, error) {
	var orders []models.Order
	q := r.applyFilters(r.db.Preload("Files").Where("user_id = ?", userID), filters)
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// AppendTimeline appends an audit entry for an order.
func (r *GORMOrderRepository) AppendTimeline(entry *models.TimelineEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append timeline entry: %w", err)
	}
	return nil
}

// GetTimeline returns an order's audit entries, oldest first.
func (r *GORMOrderRepository) GetTimeline(orderID string) ([]models.TimelineEntry, error) {
	var entries []models.TimelineEntry
	if err := r.db.Where("order_id = ?", orderID).Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get timeline for order %s: %w", orderID, err)
	}
	return entries, nil
}

func (r *GORMOrderRepository) applyFilters(q *gorm.DB, filters models.OrderFilters) *gorm.DB {
	if len(filters.Status) > 0 {
		q = q.Where("status IN ?", filters.Status)
	}
	if len(filters.ServiceType) > 0 {
		q = q.Where("service_type IN ?", filters.ServiceType)
	}
	if filters.SearchQuery != "" {
		like := "%" + filters.SearchQuery + "%"
		q = q.Where("id LIKE ? OR detail_design_name LIKE ?", like, like)
	}
	if filters.DateFrom != nil {
		q = q.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		q = q.Where("created_at <= ?", *filters.DateTo)
	}
	return q
}
