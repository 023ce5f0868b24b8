package model

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// 活动内角色
const (
	RoleOrganizer = "organizer" // 组织者
	RoleVolunteer = "volunteer" // 志愿者
	RoleAttendee  = "attendee"  // 参与者
)

// EventParticipation 用户-活动关联模型，记录用户在活动中的角色
// 对应数据库表：event_participations
// 角色变更通过替换记录实现，不做原地修改
type EventParticipation struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID    uint64    `gorm:"uniqueIndex:uk_user_event;column:user_id;not null" json:"user_id"`
	EventID   uint64    `gorm:"uniqueIndex:uk_user_event;index:idx_event_id;column:event_id;not null" json:"event_id"`
	Role      string    `gorm:"column:role;type:varchar(32);not null" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName 指定表名
func (EventParticipation) TableName() string {
	return "event_participations"
}

// EventParticipationModel 用户-活动关联模型接口
type EventParticipationModel interface {
	Insert(ctx context.Context, data *EventParticipation) error
	FindOne(ctx context.Context, userID, eventID uint64) (*EventParticipation, error)
	FindUserIDsByEvent(ctx context.Context, eventID uint64) ([]uint64, error)
}

// defaultEventParticipationModel 默认实现
type defaultEventParticipationModel struct {
	db *gorm.DB
}

// NewEventParticipationModel 创建用户-活动关联模型实例
func NewEventParticipationModel(db *gorm.DB) EventParticipationModel {
	return &defaultEventParticipationModel{db: db}
}

// Insert 插入关联记录
func (m *defaultEventParticipationModel) Insert(ctx context.Context, data *EventParticipation) error {
	return m.db.WithContext(ctx).Create(data).Error
}

// FindOne 查询用户在指定活动中的角色
func (m *defaultEventParticipationModel) FindOne(ctx context.Context, userID, eventID uint64) (*EventParticipation, error) {
	var participation EventParticipation
	err := m.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&participation).Error
	if err != nil {
		return nil, err
	}
	return &participation, nil
}

// FindUserIDsByEvent 查询活动的所有参与用户ID
func (m *defaultEventParticipationModel) FindUserIDsByEvent(ctx context.Context, eventID uint64) ([]uint64, error) {
	var ids []uint64
	err := m.db.WithContext(ctx).
		Model(&EventParticipation{}).
		Where("event_id = ?", eventID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
