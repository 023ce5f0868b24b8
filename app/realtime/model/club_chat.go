package model

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ClubChatMessage 社团聊天消息模型
// 对应数据库表：club_chat_messages，消息创建后不可修改
type ClubChatMessage struct {
	ID       uint64    `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	ClubID   uint64    `gorm:"index:idx_club_sent,priority:1;column:club_id;not null" json:"club_id"`
	SenderID uint64    `gorm:"index:idx_club_sender_id;column:sender_id;not null" json:"sender_id"`
	Message  string    `gorm:"column:message;type:text;not null" json:"message"`
	SentAt   time.Time `gorm:"index:idx_club_sent,priority:2;column:sent_at;not null" json:"sent_at"`
}

// TableName 指定表名
func (ClubChatMessage) TableName() string {
	return "club_chat_messages"
}

// ClubChatMessageModel 社团聊天消息模型接口
type ClubChatMessageModel interface {
	Insert(ctx context.Context, data *ClubChatMessage) error
	// FindByClubID 按时间升序查询社团历史消息（初始加载用）
	FindByClubID(ctx context.Context, clubID uint64, limit int32) ([]*ClubChatMessage, error)
}

// defaultClubChatMessageModel 默认实现
type defaultClubChatMessageModel struct {
	db *gorm.DB
}

// NewClubChatMessageModel 创建社团聊天消息模型实例
func NewClubChatMessageModel(db *gorm.DB) ClubChatMessageModel {
	return &defaultClubChatMessageModel{db: db}
}

// Insert 插入消息记录
func (m *defaultClubChatMessageModel) Insert(ctx context.Context, data *ClubChatMessage) error {
	return m.db.WithContext(ctx).Create(data).Error
}

// FindByClubID 按时间升序查询社团历史消息
func (m *defaultClubChatMessageModel) FindByClubID(ctx context.Context, clubID uint64, limit int32) ([]*ClubChatMessage, error) {
	var messages []*ClubChatMessage
	err := m.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("sent_at ASC").
		Limit(int(limit)).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
