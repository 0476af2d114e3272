package model

import "github.com/google/uuid"

type NotificationType string

const (
	NotifyTransferShipped   NotificationType = "transfer_shipped"
	NotifyTransferCompleted NotificationType = "transfer_completed"
	NotifyDispute           NotificationType = "dispute"
	NotifyLowStock          NotificationType = "low_stock"
)

// Notification is a recipient-addressed alert created by server-side logic
// on transfer and low-stock events. Recipients only ever mutate it by
// marking themselves read.
type Notification struct {
	BaseModel
	Recipients []User           `gorm:"many2many:notification_recipients;" json:"recipients,omitempty"`
	SenderID   *uuid.UUID       `gorm:"type:uuid" json:"sender_id,omitempty"`
	Sender     *User            `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Title      string           `gorm:"type:varchar(255);not null" json:"title"`
	Message    string           `gorm:"type:text" json:"message"`
	Type       NotificationType `gorm:"type:varchar(30);not null;index" json:"type"`
	RelatedID  *uuid.UUID       `gorm:"type:uuid" json:"related_id,omitempty"`
	ReadBy     []User           `gorm:"many2many:notification_reads;" json:"-"`
}

// NotificationResponse adds the per-caller read flag to API payloads.
type NotificationResponse struct {
	Notification
	IsRead bool `json:"is_read"`
}
