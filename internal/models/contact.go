package models

import "time"

// ContactStatus tracks how far an inquiry has been handled.
type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

// Valid reports whether s is a known contact status.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactRead, ContactReplied, ContactArchived:
		return true
	}
	return false
}

// ContactForm is a public website inquiry handled by admins.
type ContactForm struct {
	ID        string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string        `json:"name" validate:"required,max=150"`
	Email     string        `json:"email" validate:"required,email"`
	Phone     string        `json:"phone,omitempty" validate:"omitempty,max=30"`
	Subject   string        `json:"subject" validate:"required,max=200"`
	Message   string        `json:"message" validate:"required,max=5000"`
	Status    ContactStatus `json:"status" gorm:"type:varchar(16)"`
	RepliedAt *time.Time    `json:"replied_at,omitempty"`
	RepliedBy string        `json:"replied_by,omitempty" gorm:"type:varchar(36)"`
	Notes     string        `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// ContactFilters narrows contact listings.
type ContactFilters struct {
	Status   []ContactStatus
	DateFrom *time.Time
	DateTo   *time.Time
}
