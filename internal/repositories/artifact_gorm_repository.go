package repositories

import (
	"fmt"
	"time"

	"digitizing/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMDeliverableRepository is a GORM implementation of DeliverableRepository.
type GORMDeliverableRepository struct {
	db *gorm.DB
}

// NewGORMDeliverableRepository creates a new instance of GORMDeliverableRepository.
func NewGORMDeliverableRepository(db *gorm.DB) *GORMDeliverableRepository {
	return &GORMDeliverableRepository{db: db}
}

// Create appends a deliverable to an order.
func (r *GORMDeliverableRepository) Create(deliverable *models.Deliverable) error {
	if deliverable.ID == "" {
		deliverable.ID = uuid.New().String()
	}
	if deliverable.UploadedAt.IsZero() {
		deliverable.UploadedAt = time.Now()
	}
	if err := r.db.Create(deliverable).Error; err != nil {
		return fmt.Errorf("failed to create deliverable: %w", err)
	}
	return nil
}

// GetByOrderID returns an order's deliverables, oldest first.
func (r *GORMDeliverableRepository) GetByOrderID(orderID string) ([]models.Deliverable, error) {
	var deliverables []models.Deliverable
	if err := r.db.Where("order_id = ?", orderID).Order("uploaded_at").Find(&deliverables).Error; err != nil {
		return nil, fmt.Errorf("failed to get deliverables for order %s: %w", orderID, err)
	}
	return deliverables, nil
}

// GORMMessageRepository is a GORM implementation of MessageRepository.
type GORMMessageRepository struct {
	db *gorm.DB
}

// NewGORMMessageRepository creates a new instance of GORMMessageRepository.
func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{db: db}
}

// Create appends a message to an order's thread.
func (r *GORMMessageRepository) Create(message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByOrderID returns an order's messages, oldest first.
func (r *GORMMessageRepository) GetByOrderID(orderID string) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.Where("order_id = ?", orderID).Order("created_at").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to get messages for order %s: %w", orderID, err)
	}
	return messages, nil
}
