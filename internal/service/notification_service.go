package service

import (
	"encoding/json"

	"learnx_backend/internal/model"
	"learnx_backend/internal/repository"
	"learnx_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Notifier 实时推送能力，由构造时注入（生产为WebSocket Hub，测试可为空）
type Notifier interface {
	Push(userID uint, payload interface{}) bool
}

type NotificationService struct {
	NotificationRepo *repository.NotificationRepository
	notifier         Notifier
}

func NewNotificationService(notificationRepo *repository.NotificationRepository, notifier Notifier) *NotificationService {
	return &NotificationService{
		NotificationRepo: notificationRepo,
		notifier:         notifier,
	}
}

// Notify 持久化通知并尝试实时推送。推送失败只记录日志，不影响调用方。
func (s *NotificationService) Notify(userID uint, notifyType model.NotificationType, title, message string, metadata map[string]interface{}) {
	notification := &model.Notification{
		UserID:  userID,
		Type:    notifyType,
		Title:   title,
		Message: message,
	}
	if metadata != nil {
		if data, err := json.Marshal(metadata); err == nil {
			notification.Metadata = datatypes.JSON(data)
		}
	}

	if err := s.NotificationRepo.Create(notification); err != nil {
		logger.Log.Error("create notification failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}

	if s.notifier != nil {
		s.notifier.Push(userID, notification)
	}
}

func (s *NotificationService) List(userID uint, page, limit int) ([]model.Notification, int64, error) {
	return s.NotificationRepo.ListByUser(userID, page, limit)
}

func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	return s.NotificationRepo.UnreadCount(userID)
}

func (s *NotificationService) MarkRead(id, userID uint) error {
	return s.NotificationRepo.MarkRead(id, userID)
}

func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.NotificationRepo.MarkAllRead(userID)
}
