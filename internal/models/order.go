package models

import "time"

// ServiceType identifies which service an order is for.
type ServiceType string

const (
	ServiceDigitizing ServiceType = "digitizing"
	ServicePatches    ServiceType = "patches"
	ServiceVector     ServiceType = "vector"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusQuoted     OrderStatus = "quoted"
	StatusPaid       OrderStatus = "paid"
	StatusInProgress OrderStatus = "in_progress"
	StatusComplete   OrderStatus = "complete"
	StatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions is the only place legal status moves are defined.
// complete and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusQuoted, StatusCancelled},
	StatusQuoted:     {StatusPaid, StatusCancelled},
	StatusPaid:       {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusComplete, StatusCancelled},
	StatusComplete:   {},
	StatusCancelled:  {},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether no further transitions are possible from s.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0 && s.Valid()
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderDetails is the customer-supplied specification of the work.
// Quantity and BackingType only apply to patch orders.
type OrderDetails struct {
	DesignName     string  `json:"design_name" validate:"required,min=1,max=200"`
	Width          float64 `json:"width" validate:"required,gt=0"`
	Height         float64 `json:"height" validate:"required,gt=0"`
	Units          string  `json:"units" validate:"required,oneof=inches centimeters"`
	OutputFormat   string  `json:"output_format" validate:"required,max=50"`
	Complexity     string  `json:"complexity" validate:"required,oneof=simple medium complex"`
	TurnaroundTime string  `json:"turnaround_time" validate:"required,oneof=standard rush"`
	Quantity       int     `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	BackingType    string  `json:"backing_type,omitempty" validate:"omitempty,max=100"`
	Notes          string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UploadedFile is a customer artwork file attached to an order. URL
// references an externally stored blob, never in-process storage.
type UploadedFile struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID    string    `json:"order_id" gorm:"index;type:varchar(36)"`
	Filename   string    `json:"filename" validate:"required,max=255"`
	Filesize   int64     `json:"filesize" validate:"gte=0"`
	Mimetype   string    `json:"mimetype" validate:"required,max=100"`
	URL        string    `json:"url" validate:"required"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Order is the root record of one customer request. Quote, payment,
// deliverables, messages and timeline live in their own tables keyed by
// order id; OrderView assembles the aggregate at read time.
type Order struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string         `json:"user_id" gorm:"index;type:varchar(36)"`
	ServiceType ServiceType    `json:"service_type" gorm:"type:varchar(16)" validate:"required,oneof=digitizing patches vector"`
	Status      OrderStatus    `json:"status" gorm:"type:varchar(16)"`
	Details     OrderDetails   `json:"details" gorm:"embedded;embeddedPrefix:detail_"`
	Files       []UploadedFile `json:"files" gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TimelineEntry is one row of an order's append-only audit trail.
type TimelineEntry struct {
	ID        uint        `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string      `json:"-" gorm:"index;type:varchar(36)"`
	Status    OrderStatus `json:"status" gorm:"type:varchar(16)"`
	Note      string      `json:"note,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// OrderView is the read-side aggregate: the order with its child
// records joined in.
type OrderView struct {
	Order
	Quote        *Quote          `json:"quote,omitempty"`
	Payment      *Payment        `json:"payment,omitempty"`
	Deliverables []Deliverable   `json:"deliverables,omitempty"`
	Messages     []Message       `json:"messages,omitempty"`
	Timeline     []TimelineEntry `json:"timeline"`
}

// OrderFilters narrows order listings. Zero values mean "no filter".
type OrderFilters struct {
	Status      []OrderStatus
	ServiceType []ServiceType
	SearchQuery string
	DateFrom    *time.Time
	DateTo      *time.Time
}
