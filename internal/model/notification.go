package model

import "gorm.io/datatypes"

type NotificationType string

const (
	NotifyAchievement    NotificationType = "achievement"
	NotifyTrackCompleted NotificationType = "track_completed"
	NotifyReply          NotificationType = "reply"
	NotifyReview         NotificationType = "review"
	NotifyAnnouncement   NotificationType = "announcement"
)

// Notification 站内通知，创建后仅IsRead可变
// swagger:model Notification
type Notification struct {
	BaseModel
	UserID   uint             `gorm:"index;not null" json:"userId"`
	Type     NotificationType `gorm:"size:30;not null" json:"type"`
	Title    string           `gorm:"size:255" json:"title"`
	Message  string           `gorm:"size:500" json:"message"`
	Metadata datatypes.JSON   `json:"metadata"`
	IsRead   bool             `gorm:"default:false;index" json:"isRead"`
}

func (Notification) TableName() string {
	return "notifications"
}
