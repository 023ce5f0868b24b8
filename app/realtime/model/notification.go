package model

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// 通知类型
const (
	NotifyTypeGeneral          = "general"            // 普通通知
	NotifyTypeClubJoinRequest  = "club_join_request"  // 有新的入团申请
	NotifyTypeClubJoinApproved = "club_join_approved" // 入团申请已批准
	NotifyTypeClubJoinRejected = "club_join_rejected" // 入团申请已拒绝
	NotifyTypeEventCreated     = "event_created"      // 新活动发布
	NotifyTypeEventReminder    = "event_reminder"     // 活动开始提醒
	NotifyTypeSystemAlert      = "system_alert"       // 系统告警
)

// Notification 通知模型
// 对应数据库表：notifications
// 创建后只允许翻转已读状态，删除仅限通知归属用户
type Notification struct {
	ID             uint64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	NotificationID string  `gorm:"uniqueIndex:uk_notification_id;column:notification_id;type:varchar(64);not null" json:"notification_id"`
	UserID         uint64  `gorm:"index:idx_user_id_created;column:user_id;not null" json:"user_id"`
	Type           string  `gorm:"column:type;type:varchar(32);not null" json:"type"`
	Message        string  `gorm:"column:message;type:text;not null" json:"message"`
	RelatedClubID  *uint64 `gorm:"column:related_club_id" json:"related_club_id,omitempty"`
	RelatedEventID *uint64 `gorm:"column:related_event_id" json:"related_event_id,omitempty"`
	RelatedUserID  *uint64 `gorm:"column:related_user_id" json:"related_user_id,omitempty"`

	IsRead    bool       `gorm:"index:idx_is_read;column:is_read;not null;default:false" json:"is_read"`
	ReadAt    *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"index:idx_user_id_created;column:created_at;not null" json:"created_at"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}

// NotificationModel 通知模型接口
type NotificationModel interface {
	Insert(ctx context.Context, data *Notification) error
	FindOne(ctx context.Context, notificationID string) (*Notification, error)
	FindByUserID(ctx context.Context, userID uint64, page, pageSize int32) ([]*Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID uint64) (int64, error)
	MarkAsRead(ctx context.Context, userID uint64, notificationIDs []string) (int64, error)
	MarkAllAsRead(ctx context.Context, userID uint64) (int64, error)
	// Delete 删除通知，仅当通知属于该用户时生效
	Delete(ctx context.Context, userID uint64, notificationID string) error
}

// defaultNotificationModel 通知模型默认实现
type defaultNotificationModel struct {
	db *gorm.DB
}

// NewNotificationModel 创建通知模型实例
func NewNotificationModel(db *gorm.DB) NotificationModel {
	return &defaultNotificationModel{db: db}
}

// Insert 插入通知记录
func (m *defaultNotificationModel) Insert(ctx context.Context, data *Notification) error {
	return m.db.WithContext(ctx).Create(data).Error
}

// FindOne 根据通知ID查询通知
func (m *defaultNotificationModel) FindOne(ctx context.Context, notificationID string) (*Notification, error) {
	var notification Notification
	err := m.db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// FindByUserID 按时间倒序分页查询用户通知
func (m *defaultNotificationModel) FindByUserID(ctx context.Context, userID uint64, page, pageSize int32) ([]*Notification, int64, error) {
	var notifications []*Notification
	var total int64

	db := m.db.WithContext(ctx).Where("user_id = ?", userID)

	if err := db.Model(&Notification{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Order("created_at DESC").
		Offset(int(offset)).
		Limit(int(pageSize)).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// GetUnreadCount 查询未读通知数量
func (m *defaultNotificationModel) GetUnreadCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkAsRead 标记指定通知为已读
func (m *defaultNotificationModel) MarkAsRead(ctx context.Context, userID uint64, notificationIDs []string) (int64, error) {
	now := time.Now()
	res := m.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND notification_id IN ? AND is_read = ?", userID, notificationIDs, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	return res.RowsAffected, res.Error
}

// MarkAllAsRead 标记用户所有通知为已读
func (m *defaultNotificationModel) MarkAllAsRead(ctx context.Context, userID uint64) (int64, error) {
	now := time.Now()
	res := m.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	return res.RowsAffected, res.Error
}

// Delete 删除通知
func (m *defaultNotificationModel) Delete(ctx context.Context, userID uint64, notificationID string) error {
	res := m.db.WithContext(ctx).
		Where("user_id = ? AND notification_id = ?", userID, notificationID).
		Delete(&Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
