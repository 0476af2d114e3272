package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"branchstock/internal/model"
)

type NotificationRepository interface {
	Create(n *model.Notification, recipientIDs []uuid.UUID) error
	ListForUser(userID uuid.UUID, limit int) ([]model.Notification, error)
	ReadIDsForUser(userID uuid.UUID, notificationIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	IsRecipient(notificationID, userID uuid.UUID) (bool, error)
	MarkRead(notificationID, userID uuid.UUID) error
	UnreadCount(userID uuid.UUID) (int64, error)
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db}
}

func (r *notificationRepo) Create(n *model.Notification, recipientIDs []uuid.UUID) error {
	recipients := make([]model.User, len(recipientIDs))
	for i, id := range recipientIDs {
		recipients[i] = model.User{BaseModel: model.BaseModel{ID: id}}
	}
	n.Recipients = recipients
	return r.db.Omit("Recipients.*").Create(n).Error
}

func (r *notificationRepo) ListForUser(userID uuid.UUID, limit int) ([]model.Notification, error) {
	if limit < 1 {
		limit = 50
	}
	var notifications []model.Notification
	err := r.db.
		Joins("JOIN notification_recipients nr ON nr.notification_id = notifications.id").
		Where("nr.user_id = ?", userID).
		Order("notifications.created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepo) ReadIDsForUser(userID uuid.UUID, notificationIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	read := make(map[uuid.UUID]bool)
	if len(notificationIDs) == 0 {
		return read, nil
	}
	var ids []uuid.UUID
	err := r.db.Table("notification_reads").
		Where("user_id = ? AND notification_id IN ?", userID, notificationIDs).
		Pluck("notification_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		read[id] = true
	}
	return read, nil
}

func (r *notificationRepo) IsRecipient(notificationID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Table("notification_recipients").
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *notificationRepo) MarkRead(notificationID, userID uuid.UUID) error {
	return r.db.Exec(
		"INSERT INTO notification_reads (notification_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		notificationID, userID,
	).Error
}

func (r *notificationRepo) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Table("notification_recipients nr").
		Joins("LEFT JOIN notification_reads nrd ON nrd.notification_id = nr.notification_id AND nrd.user_id = nr.user_id").
		Where("nr.user_id = ? AND nrd.notification_id IS NULL", userID).
		Count(&count).Error
	return count, err
}
