package models

import "time"

// User represents a customer account.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string    `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	FirstName string    `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string    `json:"last_name" validate:"required,min=1,max=100"`
	Phone     string    `json:"phone,omitempty" validate:"omitempty,max=30"`
	Company   string    `json:"company,omitempty" validate:"omitempty,max=150"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserProfile is the account view returned by GET /users/me: the user
// plus aggregate order counts computed at read time.
type UserProfile struct {
	User
	TotalOrders     int `json:"total_orders"`
	ActiveOrders    int `json:"active_orders"`
	CompletedOrders int `json:"completed_orders"`
}

// ProfileUpdate carries the mutable profile fields for PATCH /users/me.
// Nil pointers mean "leave unchanged".
type ProfileUpdate struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Company   *string `json:"company" validate:"omitempty,max=150"`
}
