package model

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// 社团成员关系状态
const (
	MembershipPending  = "PENDING"  // 待社长处理
	MembershipApproved = "APPROVED" // 正式成员
	MembershipRejected = "REJECTED" // 已被拒绝，可重新申请
)

var (
	// ErrAlreadyInClub 用户已持有（任意社团的）APPROVED 成员关系
	ErrAlreadyInClub = errors.New("已是其他社团的正式成员")
	// ErrDuplicatePending 已存在待处理申请
	ErrDuplicatePending = errors.New("已存在待处理的入团申请")
	// ErrNoPendingRequest 不存在可处理的待审申请
	ErrNoPendingRequest = errors.New("不存在待处理的入团申请")
	// ErrNotMember 不是正式成员
	ErrNotMember = errors.New("不是该社团的正式成员")
)

// ClubMembership 社团成员关系模型
// 对应数据库表：club_memberships，(user_id, club_id) 联合唯一
// 全局约束：一个用户最多持有一条 APPROVED 记录，由 Approve 的条件写入保证
type ClubMembership struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID      uint64     `gorm:"uniqueIndex:uk_user_club;index:idx_user_status;column:user_id;not null" json:"user_id"`
	ClubID      uint64     `gorm:"uniqueIndex:uk_user_club;index:idx_membership_club_id;column:club_id;not null" json:"club_id"`
	Status      string     `gorm:"index:idx_user_status;column:status;type:varchar(16);not null;default:PENDING" json:"status"`
	RequestedAt time.Time  `gorm:"column:requested_at;not null" json:"requested_at"`
	ProcessedAt *time.Time `gorm:"column:processed_at" json:"processed_at,omitempty"`
	ProcessedBy *uint64    `gorm:"column:processed_by" json:"processed_by,omitempty"`
}

// TableName 指定表名
func (ClubMembership) TableName() string {
	return "club_memberships"
}

// ClubMembershipModel 社团成员关系模型接口
type ClubMembershipModel interface {
	FindOne(ctx context.Context, userID, clubID uint64) (*ClubMembership, error)
	// FindApprovedClub 查询用户当前的正式成员关系（全局最多一条）
	FindApprovedClub(ctx context.Context, userID uint64) (*ClubMembership, error)
	FindApprovedMemberIDs(ctx context.Context, clubID uint64) ([]uint64, error)
	FindPendingByClub(ctx context.Context, clubID uint64) ([]*ClubMembership, error)
	// RequestJoin 发起入团申请：REJECTED 记录翻回 PENDING，否则插入新的 PENDING 记录
	RequestJoin(ctx context.Context, userID, clubID uint64) error
	// Approve 以单条条件写入完成 PENDING→APPROVED，
	// 仅当该用户不存在其他 APPROVED 记录时生效
	Approve(ctx context.Context, userID, clubID, processedBy uint64) error
	Reject(ctx context.Context, userID, clubID, processedBy uint64) error
	// DeleteApproved 退出社团：删除 APPROVED 记录
	DeleteApproved(ctx context.Context, userID, clubID uint64) error
}

// defaultClubMembershipModel 默认实现
type defaultClubMembershipModel struct {
	db *gorm.DB
}

// NewClubMembershipModel 创建社团成员关系模型实例
func NewClubMembershipModel(db *gorm.DB) ClubMembershipModel {
	return &defaultClubMembershipModel{db: db}
}

// FindOne 查询用户与指定社团的成员关系
func (m *defaultClubMembershipModel) FindOne(ctx context.Context, userID, clubID uint64) (*ClubMembership, error) {
	var membership ClubMembership
	err := m.db.WithContext(ctx).
		Where("user_id = ? AND club_id = ?", userID, clubID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// FindApprovedClub 查询用户当前的正式成员关系
func (m *defaultClubMembershipModel) FindApprovedClub(ctx context.Context, userID uint64) (*ClubMembership, error) {
	var membership ClubMembership
	err := m.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, MembershipApproved).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// FindApprovedMemberIDs 查询社团所有正式成员的用户ID
func (m *defaultClubMembershipModel) FindApprovedMemberIDs(ctx context.Context, clubID uint64) ([]uint64, error) {
	var ids []uint64
	err := m.db.WithContext(ctx).
		Model(&ClubMembership{}).
		Where("club_id = ? AND status = ?", clubID, MembershipApproved).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FindPendingByClub 查询社团的待处理申请
func (m *defaultClubMembershipModel) FindPendingByClub(ctx context.Context, clubID uint64) ([]*ClubMembership, error) {
	var memberships []*ClubMembership
	err := m.db.WithContext(ctx).
		Where("club_id = ? AND status = ?", clubID, MembershipPending).
		Order("requested_at ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// RequestJoin 发起入团申请
// (user_id, club_id) 上的联合唯一索引保证并发下不会产生重复行
func (m *defaultClubMembershipModel) RequestJoin(ctx context.Context, userID, clubID uint64) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var approvedCount int64
		if err := tx.Model(&ClubMembership{}).
			Where("user_id = ? AND status = ?", userID, MembershipApproved).
			Count(&approvedCount).Error; err != nil {
			return err
		}
		if approvedCount > 0 {
			return ErrAlreadyInClub
		}

		var existing ClubMembership
		err := tx.Where("user_id = ? AND club_id = ?", userID, clubID).
			First(&existing).Error
		if err == nil {
			switch existing.Status {
			case MembershipPending:
				return ErrDuplicatePending
			case MembershipApproved:
				return ErrAlreadyInClub
			default:
				// REJECTED 记录翻回 PENDING，而不是插入重复行
				return tx.Model(&ClubMembership{}).
					Where("id = ? AND status = ?", existing.ID, MembershipRejected).
					Updates(map[string]interface{}{
						"status":       MembershipPending,
						"requested_at": time.Now(),
						"processed_at": nil,
						"processed_by": nil,
					}).Error
			}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&ClubMembership{
			UserID:      userID,
			ClubID:      clubID,
			Status:      MembershipPending,
			RequestedAt: time.Now(),
		}).Error
	})
}

// Approve 批准入团申请
// 单条条件 UPDATE：仅当目标记录为 PENDING 且该用户没有其他 APPROVED 记录时生效，
// 从而在持久层关闭“先查后改”的并发窗口
func (m *defaultClubMembershipModel) Approve(ctx context.Context, userID, clubID, processedBy uint64) error {
	now := time.Now()
	res := m.db.WithContext(ctx).Exec(
		`UPDATE club_memberships
		 SET status = ?, processed_at = ?, processed_by = ?
		 WHERE user_id = ? AND club_id = ? AND status = ?
		   AND NOT EXISTS (
		     SELECT 1 FROM (
		       SELECT 1 FROM club_memberships WHERE user_id = ? AND status = ?
		     ) AS other_approved
		   )`,
		MembershipApproved, now, processedBy,
		userID, clubID, MembershipPending,
		userID, MembershipApproved,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// 写入未生效，区分失败原因
	if _, err := m.FindApprovedClub(ctx, userID); err == nil {
		return ErrAlreadyInClub
	}
	return ErrNoPendingRequest
}

// Reject 拒绝入团申请
func (m *defaultClubMembershipModel) Reject(ctx context.Context, userID, clubID, processedBy uint64) error {
	now := time.Now()
	res := m.db.WithContext(ctx).
		Model(&ClubMembership{}).
		Where("user_id = ? AND club_id = ? AND status = ?", userID, clubID, MembershipPending).
		Updates(map[string]interface{}{
			"status":       MembershipRejected,
			"processed_at": now,
			"processed_by": processedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoPendingRequest
	}
	return nil
}

// DeleteApproved 退出社团
func (m *defaultClubMembershipModel) DeleteApproved(ctx context.Context, userID, clubID uint64) error {
	res := m.db.WithContext(ctx).
		Where("user_id = ? AND club_id = ? AND status = ?", userID, clubID, MembershipApproved).
		Delete(&ClubMembership{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotMember
	}
	return nil
}
