package model

import (
	"context"

	"gorm.io/gorm"
)

// UnknownDisplayName 查询不到任何档案时的兜底显示名
const UnknownDisplayName = "Unknown"

// User 用户模型
// 对应数据库表：users
type User struct {
	UserID    uint64 `gorm:"primaryKey;autoIncrement;column:user_id" json:"user_id"`
	Email     string `gorm:"uniqueIndex:uk_email;column:email;type:varchar(255);not null" json:"email"`
	IsActive  bool   `gorm:"index:idx_is_active;column:is_active;not null;default:true" json:"is_active"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// Student 学生档案，按 user_id 关联用户
type Student struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID   uint64 `gorm:"uniqueIndex:uk_student_user;column:user_id;not null" json:"user_id"`
	FullName string `gorm:"column:full_name;type:varchar(255);not null" json:"full_name"`
}

func (Student) TableName() string {
	return "students"
}

// Faculty 教职工档案
type Faculty struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID   uint64 `gorm:"uniqueIndex:uk_faculty_user;column:user_id;not null" json:"user_id"`
	FullName string `gorm:"column:full_name;type:varchar(255);not null" json:"full_name"`
}

func (Faculty) TableName() string {
	return "faculties"
}

// Admin 管理员档案，存在该记录即视为全局管理员
type Admin struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID   uint64 `gorm:"uniqueIndex:uk_admin_user;column:user_id;not null" json:"user_id"`
	FullName string `gorm:"column:full_name;type:varchar(255);not null" json:"full_name"`
}

func (Admin) TableName() string {
	return "admins"
}

// UserModel 用户模型接口
type UserModel interface {
	FindOne(ctx context.Context, userID uint64) (*User, error)
	IsAdmin(ctx context.Context, userID uint64) (bool, error)
	// ResolveDisplayName 按 学生 > 教职工 > 管理员 的顺序解析显示名，
	// 三类档案都不存在时返回 UnknownDisplayName
	ResolveDisplayName(ctx context.Context, userID uint64) string
	FindActiveIDs(ctx context.Context) ([]uint64, error)
	FindAdminIDs(ctx context.Context) ([]uint64, error)
}

// defaultUserModel 用户模型默认实现
type defaultUserModel struct {
	db *gorm.DB
}

// NewUserModel 创建用户模型实例
func NewUserModel(db *gorm.DB) UserModel {
	return &defaultUserModel{db: db}
}

// FindOne 根据用户ID查询用户
func (m *defaultUserModel) FindOne(ctx context.Context, userID uint64) (*User, error) {
	var user User
	err := m.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IsAdmin 判断用户是否为全局管理员
func (m *defaultUserModel) IsAdmin(ctx context.Context, userID uint64) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&Admin{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ResolveDisplayName 解析用户显示名
func (m *defaultUserModel) ResolveDisplayName(ctx context.Context, userID uint64) string {
	var student Student
	if err := m.db.WithContext(ctx).Where("user_id = ?", userID).First(&student).Error; err == nil {
		return student.FullName
	}

	var faculty Faculty
	if err := m.db.WithContext(ctx).Where("user_id = ?", userID).First(&faculty).Error; err == nil {
		return faculty.FullName
	}

	var admin Admin
	if err := m.db.WithContext(ctx).Where("user_id = ?", userID).First(&admin).Error; err == nil {
		return admin.FullName
	}

	return UnknownDisplayName
}

// FindActiveIDs 查询所有活跃用户ID
func (m *defaultUserModel) FindActiveIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := m.db.WithContext(ctx).
		Model(&User{}).
		Where("is_active = ?", true).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FindAdminIDs 查询所有管理员用户ID
func (m *defaultUserModel) FindAdminIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := m.db.WithContext(ctx).
		Model(&Admin{}).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
