package models

import "time"

// QuoteBreakdownItem is one priced line of a quote. Position preserves
// the order the admin entered the lines in.
type QuoteBreakdownItem struct {
	ID          uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	QuoteID     string  `json:"-" gorm:"index;type:varchar(36)"`
	Position    int     `json:"-"`
	Description string  `json:"description" validate:"required,max=300"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
}

// Quote is the admin-authored price for an order. At most one quote per
// order; Amount must equal the sum of the breakdown amounts.
type Quote struct {
	ID        string               `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string               `json:"order_id" gorm:"uniqueIndex;type:varchar(36)"`
	Amount    float64              `json:"amount" validate:"required,gt=0"`
	Breakdown []QuoteBreakdownItem `json:"breakdown" gorm:"foreignKey:QuoteID" validate:"required,min=1,dive"`
	Notes     string               `json:"notes,omitempty" validate:"omitempty,max=2000"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	CreatedBy string               `json:"created_by" gorm:"type:varchar(36)"`
}

// BreakdownTotal sums the breakdown line amounts.
func (q *Quote) BreakdownTotal() float64 {
	var total float64
	for _, item := range q.Breakdown {
		total += item.Amount
	}
	return total
}
