package model

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Club 社团模型
// 对应数据库表：clubs
type Club struct {
	ClubID      uint64    `gorm:"primaryKey;autoIncrement;column:club_id" json:"club_id"`
	Name        string    `gorm:"uniqueIndex:uk_club_name;column:name;type:varchar(255);not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Category    string    `gorm:"column:category;type:varchar(64)" json:"category"`
	LeaderID    uint64    `gorm:"index:idx_leader_id;column:leader_id;not null" json:"leader_id"`
	CreatedBy   uint64    `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName 指定表名
func (Club) TableName() string {
	return "clubs"
}

// ClubModel 社团模型接口
type ClubModel interface {
	FindOne(ctx context.Context, clubID uint64) (*Club, error)
}

// defaultClubModel 社团模型默认实现
type defaultClubModel struct {
	db *gorm.DB
}

// NewClubModel 创建社团模型实例
func NewClubModel(db *gorm.DB) ClubModel {
	return &defaultClubModel{db: db}
}

// FindOne 根据社团ID查询社团
func (m *defaultClubModel) FindOne(ctx context.Context, clubID uint64) (*Club, error) {
	var club Club
	err := m.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		First(&club).Error
	if err != nil {
		return nil, err
	}
	return &club, nil
}
