// pkg/model/notification.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRecord 单个渠道的通知记录
type NotificationRecord struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string     `gorm:"type:varchar(64);not null;index" json:"user_id"`
	AlertID   string     `gorm:"type:uuid;not null;index" json:"alert_id"`
	Channel   string     `gorm:"type:varchar(20);not null" json:"channel"` // email, sms
	Content   string     `json:"content"`
	Status    string     `gorm:"type:varchar(20);default:'pending'" json:"status"` // pending, sent, failed
	SentAt    *time.Time `json:"sent_at"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (n *NotificationRecord) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

func (NotificationRecord) TableName() string {
	return "notification_records"
}
