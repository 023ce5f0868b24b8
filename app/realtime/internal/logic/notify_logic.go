package logic

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"campus-events/app/realtime/hub"
	"campus-events/app/realtime/internal/svc"
	"campus-events/app/realtime/internal/types"
	"campus-events/app/realtime/model"
	"campus-events/common/errorx"
)

// NotifyInput 创建通知的输入
type NotifyInput struct {
	UserID         uint64  // 接收者
	Type           string  // 通知类型
	Message        string  // 通知内容
	RelatedClubID  *uint64 // 关联社团ID
	RelatedEventID *uint64 // 关联活动ID
	RelatedUserID  *uint64 // 关联用户ID
}

// NotifyLogic 通知扇出逻辑
// 通知先落库再推送：落库失败整个操作失败，
// 推送失败只记日志，接收者下次查询未读数时自然补齐
type NotifyLogic struct {
	svcCtx *svc.ServiceContext
	hub    *hub.Hub
}

// NewNotifyLogic 创建通知扇出逻辑
func NewNotifyLogic(svcCtx *svc.ServiceContext, h *hub.Hub) *NotifyLogic {
	return &NotifyLogic{
		svcCtx: svcCtx,
		hub:    h,
	}
}

// Notify 创建并推送单条通知
func (l *NotifyLogic) Notify(ctx context.Context, in NotifyInput) (*model.Notification, error) {
	notification := &model.Notification{
		NotificationID: uuid.New().String(),
		UserID:         in.UserID,
		Type:           in.Type,
		Message:        in.Message,
		RelatedClubID:  in.RelatedClubID,
		RelatedEventID: in.RelatedEventID,
		RelatedUserID:  in.RelatedUserID,
		CreatedAt:      time.Now(),
	}

	// 1. 持久化
	if err := l.svcCtx.NotificationModel.Insert(ctx, notification); err != nil {
		logx.WithContext(ctx).Errorf("保存通知失败: user=%d type=%s err=%v", in.UserID, in.Type, err)
		return nil, errorx.Wrap(errorx.CodeNotifyPersistFailed, err)
	}

	// 2. 推送（尽力而为）
	l.push(ctx, notification)

	return notification, nil
}

// NotifyClubMembers 通知社团全部正式成员（可排除一人，通常是触发者）
// 单个接收者失败不中断整批，失败只记日志
func (l *NotifyLogic) NotifyClubMembers(ctx context.Context, clubID, excludeUserID uint64, in NotifyInput) {
	memberIDs, err := l.svcCtx.MembershipModel.FindApprovedMemberIDs(ctx, clubID)
	if err != nil {
		logx.WithContext(ctx).Errorf("查询社团成员失败: club=%d err=%v", clubID, err)
		return
	}
	l.notifyBatch(ctx, memberIDs, excludeUserID, in)
}

// NotifyAllActiveUsers 通知所有活跃用户（可排除一人）
func (l *NotifyLogic) NotifyAllActiveUsers(ctx context.Context, excludeUserID uint64, in NotifyInput) {
	userIDs, err := l.svcCtx.UserModel.FindActiveIDs(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("查询活跃用户失败: %v", err)
		return
	}
	l.notifyBatch(ctx, userIDs, excludeUserID, in)
}

// NotifyAdmins 通知所有管理员
func (l *NotifyLogic) NotifyAdmins(ctx context.Context, in NotifyInput) {
	adminIDs, err := l.svcCtx.UserModel.FindAdminIDs(ctx)
	if err != nil {
		logx.WithContext(ctx).Errorf("查询管理员失败: %v", err)
		return
	}
	l.notifyBatch(ctx, adminIDs, 0, in)
}

// PushUnreadCount 向用户推送最新未读数
func (l *NotifyLogic) PushUnreadCount(ctx context.Context, userID uint64) error {
	count, err := l.svcCtx.NotificationModel.GetUnreadCount(ctx, userID)
	if err != nil {
		return errorx.Wrap(errorx.CodeDBError, err)
	}

	data, _ := json.Marshal(types.UnreadCountData{Count: count})
	err = l.hub.SendToUser(userID, &types.WSMessage{
		Type:      types.TypeUnreadCountUpdate,
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
	if err != nil && err != hub.ErrUserNotOnline {
		return err
	}
	return nil
}

// notifyBatch 批量通知，逐个接收者落库并推送
func (l *NotifyLogic) notifyBatch(ctx context.Context, userIDs []uint64, excludeUserID uint64, in NotifyInput) {
	sent := 0
	for _, userID := range userIDs {
		if userID == excludeUserID {
			continue
		}
		in.UserID = userID
		if _, err := l.Notify(ctx, in); err != nil {
			logx.WithContext(ctx).Errorf("通知用户失败: user=%d type=%s err=%v", userID, in.Type, err)
			continue
		}
		sent++
	}
	logx.WithContext(ctx).Infof("批量通知完成: type=%s sent=%d total=%d", in.Type, sent, len(userIDs))
}

// push 推送通知及最新未读数到接收者的所有在线连接
func (l *NotifyLogic) push(ctx context.Context, notification *model.Notification) {
	data, _ := json.Marshal(types.NotificationData{
		NotificationID: notification.NotificationID,
		Type:           notification.Type,
		Message:        notification.Message,
		RelatedClubID:  notification.RelatedClubID,
		RelatedEventID: notification.RelatedEventID,
		RelatedUserID:  notification.RelatedUserID,
		IsRead:         notification.IsRead,
		CreatedAt:      notification.CreatedAt.Format(time.RFC3339),
	})

	err := l.hub.SendToUser(notification.UserID, &types.WSMessage{
		Type:      types.TypeNewNotification,
		MessageID: notification.NotificationID,
		Timestamp: notification.CreatedAt.Unix(),
		Data:      data,
	})
	if err != nil {
		// 用户不在线不算错误
		if err != hub.ErrUserNotOnline {
			logx.WithContext(ctx).Errorf("推送通知失败: user=%d err=%v", notification.UserID, err)
		}
		return
	}

	// 未读数每次重新查库，不做增量维护
	if err := l.PushUnreadCount(ctx, notification.UserID); err != nil {
		logx.WithContext(ctx).Errorf("推送未读数失败: user=%d err=%v", notification.UserID, err)
	}
}
