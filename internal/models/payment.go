package models

import "time"

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentSucceeded  PaymentStatus = "succeeded"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// Final reports whether the payment can no longer change state through
// the webhook. Refunds are an explicit compensation, not a webhook move.
func (s PaymentStatus) Final() bool {
	return s == PaymentSucceeded || s == PaymentFailed || s == PaymentRefunded
}

// Payment records one payment attempt for an order. Amount is a
// snapshot of the quote taken when the session was created. The
// idempotency key dedupes provider webhook retries.
type Payment struct {
	ID             string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID        string        `json:"order_id" gorm:"index;type:varchar(36)"`
	UserID         string        `json:"user_id" gorm:"index;type:varchar(36)"`
	Amount         float64       `json:"amount"`
	Status         PaymentStatus `json:"status" gorm:"type:varchar(16)"`
	Provider       string        `json:"provider" gorm:"type:varchar(32)"`
	PaymentMethod  string        `json:"payment_method,omitempty"`
	TransactionID  string        `json:"transaction_id,omitempty"`
	ReceiptURL     string        `json:"receipt_url,omitempty"`
	ErrorLog       string        `json:"error_log,omitempty"`
	// Indexed but not unique: pending payments all carry an empty key
	// until the first webhook delivery assigns one.
	IdempotencyKey string        `json:"-" gorm:"index;type:varchar(64)"`
	PaidAt         *time.Time    `json:"paid_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// PaymentSession is what the customer is handed to complete a payment
// with the gateway.
type PaymentSession struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	Amount     float64   `json:"amount"`
	Provider   string    `json:"provider"`
	SessionURL string    `json:"session_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// PaymentFilters narrows payment listings.
type PaymentFilters struct {
	Status   []PaymentStatus
	DateFrom *time.Time
	DateTo   *time.Time
}
