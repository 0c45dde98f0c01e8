package models

import "time"

// Deliverable is a finished output file uploaded by an admin. The list
// per order is append-only; DownloadURL references an external blob.
type Deliverable struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string    `json:"order_id" gorm:"index;type:varchar(36)"`
	Filename    string    `json:"filename" validate:"required,max=255"`
	Filesize    int64     `json:"filesize" validate:"gte=0"`
	Mimetype    string    `json:"mimetype" validate:"required,max=100"`
	DownloadURL string    `json:"download_url" validate:"required"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UploadedBy  string    `json:"uploaded_by" gorm:"type:varchar(36)"`
}

// Message is a note from an admin to the customer on an order thread.
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID    string    `json:"order_id" gorm:"index;type:varchar(36)"`
	FromAdmin  bool      `json:"from_admin"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content" validate:"required,max=5000"`
	EmailSent  bool      `json:"email_sent"`
	CreatedAt  time.Time `json:"created_at"`
}
