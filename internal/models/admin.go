package models

import "time"

// AdminRole determines what back-office operations an admin may perform.
type AdminRole string

const (
	RoleAdmin   AdminRole = "admin"
	RoleManager AdminRole = "manager"
)

// AdminUser represents a back-office account.
type AdminUser struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email     string     `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string     `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	FirstName string     `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string     `json:"last_name" validate:"required,min=1,max=100"`
	Role      AdminRole  `json:"role" gorm:"type:varchar(16)" validate:"required,oneof=admin manager"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DashboardStats is the admin dashboard summary, computed at read time.
type DashboardStats struct {
	TotalOrders     int     `json:"total_orders"`
	PendingOrders   int     `json:"pending_orders"`
	ActiveOrders    int     `json:"active_orders"`
	CompletedOrders int     `json:"completed_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	PendingPayments int     `json:"pending_payments"`
	NewContacts     int     `json:"new_contacts"`
	TodayOrders     int     `json:"today_orders"`
}
