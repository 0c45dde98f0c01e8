package repositories

import (
	"sync"
	"time"

	"digitizing/internal/models"

	"github.com/google/uuid"
)

// MockDeliverableRepository is an in-memory implementation of DeliverableRepository.
type MockDeliverableRepository struct {
	deliverables map[string][]models.Deliverable
	mu           sync.RWMutex
}

// NewMockDeliverableRepository creates a new instance of MockDeliverableRepository.
func NewMockDeliverableRepository() *MockDeliverableRepository {
	return &MockDeliverableRepository{deliverables: make(map[string][]models.Deliverable)}
}

// Create appends a deliverable to an order.
func (r *MockDeliverableRepository) Create(deliverable *models.Deliverable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if deliverable.ID == "" {
		deliverable.ID = uuid.New().String()
	}
	if deliverable.UploadedAt.IsZero() {
		deliverable.UploadedAt = time.Now()
	}
	r.deliverables[deliverable.OrderID] = append(r.deliverables[deliverable.OrderID], *deliverable)
	return nil
}

// GetByOrderID returns an order's deliverables, oldest first.
func (r *MockDeliverableRepository) GetByOrderID(orderID string) ([]models.Deliverable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deliverables := make([]models.Deliverable, len(r.deliverables[orderID]))
	copy(deliverables, r.deliverables[orderID])
	return deliverables, nil
}

// MockMessageRepository is an in-memory implementation of MessageRepository.
type MockMessageRepository struct {
	messages map[string][]models.Message
	mu       sync.RWMutex
}

// NewMockMessageRepository creates a new instance of MockMessageRepository.
func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{messages: make(map[string][]models.Message)}
}

// Create appends a message to an order's thread.
func (r *MockMessageRepository) Create(message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	r.messages[message.OrderID] = append(r.messages[message.OrderID], *message)
	return nil
}

// GetByOrderID returns an order's messages, oldest first.
func (r *MockMessageRepository) GetByOrderID(orderID string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := make([]models.Message, len(r.messages[orderID]))
	copy(messages, r.messages[orderID])
	return messages, nil
}
