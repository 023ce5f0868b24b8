package logic

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/gorm"

	"campus-events/app/realtime/hub"
	"campus-events/app/realtime/internal/svc"
	"campus-events/app/realtime/internal/types"
	"campus-events/app/realtime/model"
	"campus-events/common/errorx"
)

// ChatLogic 聊天消息扇出逻辑
// 活动消息和社团消息共用一条管线：校验 -> 落库 -> 补全发送者 -> 房间广播，
// 落库失败则不广播，广播的消息一定已经持久化
type ChatLogic struct {
	svcCtx *svc.ServiceContext
	hub    *hub.Hub
}

// NewChatLogic 创建聊天消息扇出逻辑
func NewChatLogic(svcCtx *svc.ServiceContext, h *hub.Hub) *ChatLogic {
	return &ChatLogic{
		svcCtx: svcCtx,
		hub:    h,
	}
}

// PostEventMessage 在活动聊天频道发送消息
func (l *ChatLogic) PostEventMessage(ctx context.Context, senderID uint64, in *types.SendEventMessageData) (*types.EventMessageData, error) {
	// 1. 内容校验
	content := strings.TrimSpace(in.Message)
	if content == "" {
		return nil, errorx.New(errorx.CodeEmptyMessage)
	}
	if !model.ValidChatType(in.ChatType) {
		return nil, errorx.New(errorx.CodeInvalidChatType)
	}

	// 2. 活动必须存在
	event, err := l.svcCtx.EventModel.FindOne(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.CodeEventNotFound)
		}
		return nil, errorx.Wrap(errorx.CodeDBError, err)
	}

	// 3. 已结束或已取消的活动关闭聊天室
	if event.Status == model.EventStatusCompleted || event.Status == model.EventStatusCancelled {
		return nil, errorx.New(errorx.CodeChatClosed)
	}

	// 4. 频道访问权限
	if !l.svcCtx.Access.CanJoinEventChat(ctx, senderID, in.EventID, in.ChatType) {
		return nil, errorx.New(errorx.CodeChatAccessDenied)
	}

	// 5. 回复目标必须存在且在同一活动的同一频道
	var replyPreview *types.ReplyPreview
	if in.ReplyTo != nil {
		replied, err := l.svcCtx.EventChatModel.FindOne(ctx, *in.ReplyTo)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.CodeReplyNotFound)
			}
			return nil, errorx.Wrap(errorx.CodeDBError, err)
		}
		if replied.EventID != in.EventID || replied.ChatType != in.ChatType {
			return nil, errorx.New(errorx.CodeReplyNotFound)
		}
		replyPreview = &types.ReplyPreview{
			ID:         replied.ID,
			SenderName: l.svcCtx.NameCache.GetDisplayName(ctx, replied.SenderID),
			Message:    replied.Message,
		}
	}

	// 6. 持久化
	record := &model.EventChatMessage{
		EventID:   in.EventID,
		ChatType:  in.ChatType,
		SenderID:  senderID,
		Message:   content,
		Timestamp: time.Now(),
		ReplyToID: in.ReplyTo,
	}
	if err := l.svcCtx.EventChatModel.Insert(ctx, record); err != nil {
		logx.WithContext(ctx).Errorf("保存活动消息失败: event=%d err=%v", in.EventID, err)
		return nil, errorx.Wrap(errorx.CodePersistFailed, err)
	}

	// 7. 补全发送者显示名并广播
	out := &types.EventMessageData{
		ID:             record.ID,
		EventID:        record.EventID,
		SenderID:       senderID,
		SenderName:     l.svcCtx.NameCache.GetDisplayName(ctx, senderID),
		Message:        record.Message,
		ChatType:       record.ChatType,
		Timestamp:      record.Timestamp.Format(time.RFC3339),
		ReplyToID:      record.ReplyToID,
		ReplyToMessage: replyPreview,
	}
	data, _ := json.Marshal(out)

	room := hub.EventChatRoom(in.EventID, in.ChatType)
	l.hub.BroadcastToRoom(room, &types.WSMessage{
		Type:      types.TypeNewEventMessage,
		Timestamp: record.Timestamp.Unix(),
		Data:      data,
	})

	// 8. 消息发出即视为停止输入，立刻刷新房间的输入状态
	l.svcCtx.Typing.Clear(room, senderID)
	l.BroadcastTyping(room, types.TypeUserTypingEvent)

	return out, nil
}

// PostClubMessage 在社团聊天室发送消息
// 仅 APPROVED 成员可发言
func (l *ChatLogic) PostClubMessage(ctx context.Context, senderID uint64, in *types.SendClubMessageData) (*types.ClubMessageData, error) {
	content := strings.TrimSpace(in.Message)
	if content == "" {
		return nil, errorx.New(errorx.CodeEmptyMessage)
	}

	club, err := l.svcCtx.ClubModel.FindOne(ctx, in.ClubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.CodeClubNotFound)
		}
		return nil, errorx.Wrap(errorx.CodeDBError, err)
	}

	if !l.svcCtx.Access.CanPostClubChat(ctx, senderID, in.ClubID) {
		return nil, errorx.New(errorx.CodeClubChatDenied)
	}

	record := &model.ClubChatMessage{
		ClubID:   in.ClubID,
		SenderID: senderID,
		Message:  content,
		SentAt:   time.Now(),
	}
	if err := l.svcCtx.ClubChatModel.Insert(ctx, record); err != nil {
		logx.WithContext(ctx).Errorf("保存社团消息失败: club=%d err=%v", in.ClubID, err)
		return nil, errorx.Wrap(errorx.CodePersistFailed, err)
	}

	out := &types.ClubMessageData{
		ID:         record.ID,
		ClubID:     record.ClubID,
		SenderID:   senderID,
		SenderName: l.svcCtx.NameCache.GetDisplayName(ctx, senderID),
		IsLeader:   club.LeaderID == senderID,
		Message:    record.Message,
		SentAt:     record.SentAt.Format(time.RFC3339),
	}
	data, _ := json.Marshal(out)

	room := hub.ClubRoom(in.ClubID)
	l.hub.BroadcastToRoom(room, &types.WSMessage{
		Type:      types.TypeNewMessage,
		Timestamp: record.SentAt.Unix(),
		Data:      data,
	})

	l.svcCtx.Typing.Clear(room, senderID)
	l.BroadcastTyping(room, types.TypeUserTyping)

	return out, nil
}

// BroadcastTyping 广播房间当前的输入状态
// 没有人输入时同样广播 is_typing=false，客户端据此清除指示器
func (l *ChatLogic) BroadcastTyping(room hub.RoomKey, msgType types.MessageType) {
	users, isTyping := l.svcCtx.Typing.Snapshot(room)
	data, _ := json.Marshal(types.UserTypingData{
		Users:    users,
		IsTyping: isTyping,
	})

	l.hub.BroadcastToRoom(room, &types.WSMessage{
		Type:      msgType,
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
}
