package access

import (
	"context"
	"errors"

	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/gorm"

	"campus-events/app/realtime/model"
)

// Evaluator 聊天访问权限评估器
// 所有判定都是即时读库，权限在成员关系变化后立即生效；
// 任何查询失败一律按无权限处理
type Evaluator struct {
	userModel          model.UserModel
	participationModel model.EventParticipationModel
	membershipModel    model.ClubMembershipModel
}

// NewEvaluator 创建权限评估器
func NewEvaluator(userModel model.UserModel, participationModel model.EventParticipationModel,
	membershipModel model.ClubMembershipModel) *Evaluator {
	return &Evaluator{
		userModel:          userModel,
		participationModel: participationModel,
		membershipModel:    membershipModel,
	}
}

// CanJoinEventChat 判断用户是否可访问活动聊天频道
// 规则：管理员可访问任意频道；组织者可访问全部三个频道；
// 志愿者可访问 organizer_volunteer 和 attendee_only；
// 参与者仅可访问 attendee_only
func (e *Evaluator) CanJoinEventChat(ctx context.Context, userID, eventID uint64, chatType string) bool {
	if !model.ValidChatType(chatType) {
		return false
	}

	// 管理员不要求报名记录
	isAdmin, err := e.userModel.IsAdmin(ctx, userID)
	if err != nil {
		logx.WithContext(ctx).Errorf("查询管理员身份失败: user=%d err=%v", userID, err)
		return false
	}
	if isAdmin {
		return true
	}

	participation, err := e.participationModel.FindOne(ctx, userID, eventID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logx.WithContext(ctx).Errorf("查询活动报名记录失败: user=%d event=%d err=%v", userID, eventID, err)
		}
		return false
	}

	switch participation.Role {
	case model.RoleOrganizer:
		return true
	case model.RoleVolunteer:
		return chatType == model.ChatTypeOrganizerVolunteer || chatType == model.ChatTypeAttendeeOnly
	case model.RoleAttendee:
		return chatType == model.ChatTypeAttendeeOnly
	}
	return false
}

// CanPostClubChat 判断用户是否可在社团房间发言
// 仅 APPROVED 成员可发言，PENDING/REJECTED 均不行
func (e *Evaluator) CanPostClubChat(ctx context.Context, userID, clubID uint64) bool {
	membership, err := e.membershipModel.FindOne(ctx, userID, clubID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logx.WithContext(ctx).Errorf("查询社团成员关系失败: user=%d club=%d err=%v", userID, clubID, err)
		}
		return false
	}
	return membership.Status == model.MembershipApproved
}
