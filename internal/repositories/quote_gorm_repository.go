package repositories

import (
	"errors"
	"fmt"
	"time"

	"digitizing/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMQuoteRepository is a GORM implementation of QuoteRepository.
type GORMQuoteRepository struct {
	db *gorm.DB
}

// NewGORMQuoteRepository creates a new instance of GORMQuoteRepository.
func NewGORMQuoteRepository(db *gorm.DB) *GORMQuoteRepository {
	return &GORMQuoteRepository{db: db}
}

// Save inserts the quote, replacing any previous quote for the same
// order together with its breakdown rows.
func (r *GORMQuoteRepository) Save(quote *models.Quote) error {
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

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Quote
		findErr := tx.First(&existing, "order_id = ?", quote.OrderID).Error
		if findErr == nil {
			if delErr := tx.Where("quote_id = ?", existing.ID).Delete(&models.QuoteBreakdownItem{}).Error; delErr != nil {
				return delErr
			}
			if delErr := tx.Delete(&existing).Error; delErr != nil {
				return delErr
			}
		} else if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}
		return tx.Create(quote).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save quote for order %s: %w", quote.OrderID, err)
	}
	return nil
}

// GetByOrderID retrieves the quote attached to an order.
func (r *GORMQuoteRepository) GetByOrderID(orderID string) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.Preload("Breakdown", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).First(&quote, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quote for order %s: %w", orderID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get quote for order %s: %w", orderID, err)
	}
	return &quote, nil
}
