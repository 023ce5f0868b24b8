package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/gorm"

	"campus-events/app/realtime/internal/svc"
	"campus-events/app/realtime/model"
	"campus-events/common/errorx"
)

// 社团成员关系领域事件主题
const (
	TopicClubJoinRequested = "club.join.requested"
	TopicClubJoinApproved  = "club.join.approved"
	TopicClubJoinRejected  = "club.join.rejected"
	TopicClubMemberLeft    = "club.member.left"
)

// membershipEvent 成员关系变更事件载荷
type membershipEvent struct {
	ClubID      uint64 `json:"club_id"`
	UserID      uint64 `json:"user_id"`
	ProcessedBy uint64 `json:"processed_by,omitempty"`
}

// MembershipLogic 社团成员关系逻辑
// 状态机：无记录 -> PENDING -> APPROVED / REJECTED，REJECTED 可翻回 PENDING；
// 全局约束（一人最多一个社团）由模型层的条件写入保证
type MembershipLogic struct {
	svcCtx *svc.ServiceContext
	notify *NotifyLogic
}

// NewMembershipLogic 创建社团成员关系逻辑
func NewMembershipLogic(svcCtx *svc.ServiceContext, notify *NotifyLogic) *MembershipLogic {
	return &MembershipLogic{
		svcCtx: svcCtx,
		notify: notify,
	}
}

// RequestJoin 申请加入社团
// 成功后通知社长并发布领域事件
func (l *MembershipLogic) RequestJoin(ctx context.Context, userID, clubID uint64) error {
	club, err := l.findClub(ctx, clubID)
	if err != nil {
		return err
	}

	if err := l.svcCtx.MembershipModel.RequestJoin(ctx, userID, clubID); err != nil {
		return l.mapMembershipErr(err)
	}

	requesterName := l.svcCtx.NameCache.GetDisplayName(ctx, userID)
	l.notify.Notify(ctx, NotifyInput{
		UserID:        club.LeaderID,
		Type:          model.NotifyTypeClubJoinRequest,
		Message:       fmt.Sprintf("%s 申请加入社团「%s」", requesterName, club.Name),
		RelatedClubID: &clubID,
		RelatedUserID: &userID,
	})

	l.publish(ctx, TopicClubJoinRequested, membershipEvent{ClubID: clubID, UserID: userID})

	logx.WithContext(ctx).Infof("入团申请已提交: user=%d club=%d", userID, clubID)
	return nil
}

// Approve 批准入团申请，仅社长可操作
func (l *MembershipLogic) Approve(ctx context.Context, actorID, userID, clubID uint64) error {
	club, err := l.findClub(ctx, clubID)
	if err != nil {
		return err
	}
	if club.LeaderID != actorID {
		return errorx.New(errorx.CodeOnlyLeader)
	}

	if err := l.svcCtx.MembershipModel.Approve(ctx, userID, clubID, actorID); err != nil {
		return l.mapMembershipErr(err)
	}

	l.notify.Notify(ctx, NotifyInput{
		UserID:        userID,
		Type:          model.NotifyTypeClubJoinApproved,
		Message:       fmt.Sprintf("你加入社团「%s」的申请已通过", club.Name),
		RelatedClubID: &clubID,
	})

	l.publish(ctx, TopicClubJoinApproved, membershipEvent{ClubID: clubID, UserID: userID, ProcessedBy: actorID})

	logx.WithContext(ctx).Infof("入团申请已批准: user=%d club=%d by=%d", userID, clubID, actorID)
	return nil
}

// Reject 拒绝入团申请，仅社长可操作
// 被拒绝的用户之后可以重新申请
func (l *MembershipLogic) Reject(ctx context.Context, actorID, userID, clubID uint64) error {
	club, err := l.findClub(ctx, clubID)
	if err != nil {
		return err
	}
	if club.LeaderID != actorID {
		return errorx.New(errorx.CodeOnlyLeader)
	}

	if err := l.svcCtx.MembershipModel.Reject(ctx, userID, clubID, actorID); err != nil {
		return l.mapMembershipErr(err)
	}

	l.notify.Notify(ctx, NotifyInput{
		UserID:        userID,
		Type:          model.NotifyTypeClubJoinRejected,
		Message:       fmt.Sprintf("你加入社团「%s」的申请被拒绝", club.Name),
		RelatedClubID: &clubID,
	})

	l.publish(ctx, TopicClubJoinRejected, membershipEvent{ClubID: clubID, UserID: userID, ProcessedBy: actorID})

	logx.WithContext(ctx).Infof("入团申请已拒绝: user=%d club=%d by=%d", userID, clubID, actorID)
	return nil
}

// Leave 退出社团
// 社长不能退出自己的社团，需先转让或解散
func (l *MembershipLogic) Leave(ctx context.Context, userID, clubID uint64) error {
	club, err := l.findClub(ctx, clubID)
	if err != nil {
		return err
	}
	if club.LeaderID == userID {
		return errorx.New(errorx.CodeLeaderCannotLeave)
	}

	if err := l.svcCtx.MembershipModel.DeleteApproved(ctx, userID, clubID); err != nil {
		return l.mapMembershipErr(err)
	}

	memberName := l.svcCtx.NameCache.GetDisplayName(ctx, userID)
	l.notify.Notify(ctx, NotifyInput{
		UserID:        club.LeaderID,
		Type:          model.NotifyTypeGeneral,
		Message:       fmt.Sprintf("%s 已退出社团「%s」", memberName, club.Name),
		RelatedClubID: &clubID,
		RelatedUserID: &userID,
	})

	l.publish(ctx, TopicClubMemberLeft, membershipEvent{ClubID: clubID, UserID: userID})

	logx.WithContext(ctx).Infof("成员已退出社团: user=%d club=%d", userID, clubID)
	return nil
}

// PendingRequests 查询社团的待处理申请，仅社长可查看
func (l *MembershipLogic) PendingRequests(ctx context.Context, actorID, clubID uint64) ([]*model.ClubMembership, error) {
	club, err := l.findClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if club.LeaderID != actorID {
		return nil, errorx.New(errorx.CodeOnlyLeader)
	}
	return l.svcCtx.MembershipModel.FindPendingByClub(ctx, clubID)
}

// findClub 查询社团，不存在时返回业务错误
func (l *MembershipLogic) findClub(ctx context.Context, clubID uint64) (*model.Club, error) {
	club, err := l.svcCtx.ClubModel.FindOne(ctx, clubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.CodeClubNotFound)
		}
		return nil, errorx.Wrap(errorx.CodeDBError, err)
	}
	return club, nil
}

// mapMembershipErr 把模型层哨兵错误转换为业务错误码
func (l *MembershipLogic) mapMembershipErr(err error) error {
	switch {
	case errors.Is(err, model.ErrAlreadyInClub):
		return errorx.New(errorx.CodeAlreadyInAnotherClub)
	case errors.Is(err, model.ErrDuplicatePending):
		return errorx.New(errorx.CodeDuplicateJoinRequest)
	case errors.Is(err, model.ErrNoPendingRequest):
		return errorx.New(errorx.CodeNoPendingRequest)
	case errors.Is(err, model.ErrNotMember):
		return errorx.New(errorx.CodeNotClubMember)
	default:
		return errorx.Wrap(errorx.CodeDBError, err)
	}
}

// publish 发布领域事件，失败只记日志
func (l *MembershipLogic) publish(ctx context.Context, topic string, event membershipEvent) {
	payload, _ := json.Marshal(event)
	if err := l.svcCtx.MessagingClient.Publish(ctx, topic, payload); err != nil {
		logx.WithContext(ctx).Errorf("发布领域事件失败: topic=%s err=%v", topic, err)
	}
}
