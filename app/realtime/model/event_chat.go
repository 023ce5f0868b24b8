package model

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// 活动聊天频道类型
const (
	ChatTypeOrganizerAdmin     = "organizer_admin"     // 组织者专属频道
	ChatTypeOrganizerVolunteer = "organizer_volunteer" // 组织者+志愿者频道
	ChatTypeAttendeeOnly       = "attendee_only"       // 全员频道
)

// ValidChatType 校验聊天频道类型
func ValidChatType(chatType string) bool {
	switch chatType {
	case ChatTypeOrganizerAdmin, ChatTypeOrganizerVolunteer, ChatTypeAttendeeOnly:
		return true
	}
	return false
}

// EventChatMessage 活动聊天消息模型
// 对应数据库表：event_chat_messages，消息创建后不可修改
type EventChatMessage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	EventID   uint64    `gorm:"index:idx_event_chat,priority:1;column:event_id;not null" json:"event_id"`
	ChatType  string    `gorm:"index:idx_event_chat,priority:2;column:chat_type;type:varchar(32);not null" json:"chat_type"`
	SenderID  uint64    `gorm:"index:idx_sender_id;column:sender_id;not null" json:"sender_id"`
	Message   string    `gorm:"column:message;type:text;not null" json:"message"`
	Timestamp time.Time `gorm:"index:idx_event_chat,priority:3;column:timestamp;not null" json:"timestamp"`

	// ReplyToID 被回复消息的ID，必须指向同一活动、同一频道的消息
	ReplyToID *uint64 `gorm:"column:reply_to_id" json:"reply_to_id,omitempty"`
}

// TableName 指定表名
func (EventChatMessage) TableName() string {
	return "event_chat_messages"
}

// EventChatMessageModel 活动聊天消息模型接口
type EventChatMessageModel interface {
	Insert(ctx context.Context, data *EventChatMessage) error
	FindOne(ctx context.Context, id uint64) (*EventChatMessage, error)
	// FindByEventChat 按时间倒序分页查询频道历史消息
	FindByEventChat(ctx context.Context, eventID uint64, chatType string, page, pageSize int32) ([]*EventChatMessage, int64, error)
}

// defaultEventChatMessageModel 默认实现
type defaultEventChatMessageModel struct {
	db *gorm.DB
}

// NewEventChatMessageModel 创建活动聊天消息模型实例
func NewEventChatMessageModel(db *gorm.DB) EventChatMessageModel {
	return &defaultEventChatMessageModel{db: db}
}

// Insert 插入消息记录
func (m *defaultEventChatMessageModel) Insert(ctx context.Context, data *EventChatMessage) error {
	return m.db.WithContext(ctx).Create(data).Error
}

// FindOne 根据消息ID查询消息
func (m *defaultEventChatMessageModel) FindOne(ctx context.Context, id uint64) (*EventChatMessage, error) {
	var message EventChatMessage
	err := m.db.WithContext(ctx).
		Where("id = ?", id).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// FindByEventChat 按时间倒序分页查询频道历史消息
func (m *defaultEventChatMessageModel) FindByEventChat(ctx context.Context, eventID uint64, chatType string, page, pageSize int32) ([]*EventChatMessage, int64, error) {
	var messages []*EventChatMessage
	var total int64

	db := m.db.WithContext(ctx).
		Where("event_id = ? AND chat_type = ?", eventID, chatType)

	if err := db.Model(&EventChatMessage{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Order("timestamp DESC").
		Offset(int(offset)).
		Limit(int(pageSize)).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}
