package model

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// 活动生命周期状态
const (
	EventStatusPending   = "pending"   // 待审批
	EventStatusApproved  = "approved"  // 已上线
	EventStatusCompleted = "completed" // 已结束，聊天室关闭
	EventStatusCancelled = "cancelled" // 已取消
)

// Event 活动模型
// 对应数据库表：events
type Event struct {
	EventID   uint64    `gorm:"primaryKey;autoIncrement;column:event_id" json:"event_id"`
	Title     string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Status    string    `gorm:"index:idx_status;column:status;type:varchar(32);not null;default:pending" json:"status"`
	ClubID    *uint64   `gorm:"index:idx_club_id;column:club_id" json:"club_id,omitempty"` // 社团活动时非空
	CreatedBy uint64    `gorm:"column:created_by;not null" json:"created_by"`
	IsPublic  bool      `gorm:"column:is_public;not null;default:false" json:"is_public"`
	StartTime time.Time `gorm:"column:start_time;not null" json:"start_time"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName 指定表名
func (Event) TableName() string {
	return "events"
}

// EventModel 活动模型接口
type EventModel interface {
	FindOne(ctx context.Context, eventID uint64) (*Event, error)
}

// defaultEventModel 活动模型默认实现
type defaultEventModel struct {
	db *gorm.DB
}

// NewEventModel 创建活动模型实例
func NewEventModel(db *gorm.DB) EventModel {
	return &defaultEventModel{db: db}
}

// FindOne 根据活动ID查询活动
func (m *defaultEventModel) FindOne(ctx context.Context, eventID uint64) (*Event, error) {
	var event Event
	err := m.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}
