package repositories

import (
	"errors"
	"fmt"
	"time"

	"digitizing/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPaymentRepository is a GORM implementation of PaymentRepository.
type GORMPaymentRepository struct {
	db *gorm.DB
}

// NewGORMPaymentRepository creates a new instance of GORMPaymentRepository.
func NewGORMPaymentRepository(db *gorm.DB) *GORMPaymentRepository {
	return &GORMPaymentRepository{db: db}
}

// Create creates a new payment record.
func (r *GORMPaymentRepository) Create(payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	if err := r.db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by ID.
func (r *GORMPaymentRepository) GetByID(id string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment with ID %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment by ID %s: %w", id, err)
	}
	return &payment, nil
}

// GetByIdempotencyKey retrieves a payment by its webhook idempotency key.
func (r *GORMPaymentRepository) GetByIdempotencyKey(key string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, "idempotency_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment with idempotency key %s: %w", key, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment by idempotency key: %w", err)
	}
	return &payment, nil
}

// GetByOrderID retrieves all payments for an order, newest first.
func (r *GORMPaymentRepository) GetByOrderID(orderID string) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.Where("order_id = ?", orderID).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to get payments for order %s: %w", orderID, err)
	}
	return payments, nil
}

// GetByUserID retrieves all payments for a user, newest first.
func (r *GORMPaymentRepository) GetByUserID(userID string) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to get payments for user %s: %w", userID, err)
	}
	return payments, nil
}

// GetAll retrieves all payments matching the filters, newest first.
func (r *GORMPaymentRepository) GetAll(filters models.PaymentFilters) ([]models.Payment, error) {
	q := r.db.Session(&gorm.Session{})
	if len(filters.Status) > 0 {
		q = q.Where("status IN ?", filters.Status)
	}
	if filters.DateFrom != nil {
		q = q.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		q = q.Where("created_at <= ?", *filters.DateTo)
	}
	var payments []models.Payment
	if err := q.Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to get all payments: %w", err)
	}
	return payments, nil
}

// Update saves all fields of an existing payment.
func (r *GORMPaymentRepository) Update(payment *models.Payment) error {
	payment.UpdatedAt = time.Now()
	res := r.db.Save(payment)
	if res.Error != nil {
		return fmt.Errorf("failed to update payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("payment with ID %s: %w", payment.ID, models.ErrNotFound)
	}
	return nil
}
