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

// WsLogic WebSocket 消息路由逻辑
// 实现 hub.MessageHandler，把连接上的指令分发到各领域逻辑；
// 返回的错误由 Hub 转换为 error 消息回送客户端，不会断开连接
type WsLogic struct {
	svcCtx *svc.ServiceContext
	hub    *hub.Hub
	chat   *ChatLogic
	notify *NotifyLogic
}

// NewWsLogic 创建 WebSocket 消息路由逻辑
func NewWsLogic(svcCtx *svc.ServiceContext, h *hub.Hub, chat *ChatLogic, notify *NotifyLogic) *WsLogic {
	return &WsLogic{
		svcCtx: svcCtx,
		hub:    h,
		chat:   chat,
		notify: notify,
	}
}

// HandleAuthenticate 处理认证
// Token 校验失败发送 auth_error 并保持连接，客户端可重试
func (l *WsLogic) HandleAuthenticate(client *hub.Client, msg *types.WSMessage) error {
	ctx := context.Background()

	var authData types.AuthData
	if err := json.Unmarshal(msg.Data, &authData); err != nil {
		return errorx.New(errorx.CodeInvalidParams)
	}

	userID, err := l.svcCtx.TokenAuth.ParseToken(authData.Token)
	if err != nil {
		code := errorx.CodeTokenInvalid
		if errors.Is(err, svc.ErrExpiredToken) {
			code = errorx.CodeTokenExpired
		}
		l.sendAuthError(client, code)
		return nil
	}

	// 用户必须存在且处于活跃状态
	user, err := l.svcCtx.UserModel.FindOne(ctx, userID)
	if err != nil || !user.IsActive {
		l.sendAuthError(client, errorx.CodeTokenInvalid)
		return nil
	}

	// 绑定身份，重复认证直接拒绝且不改变已绑定的身份
	if err := l.hub.Bind(client, userID); err != nil {
		return err
	}

	successData, _ := json.Marshal(types.AuthSuccessData{UserID: userID})
	client.SendMessage(&types.WSMessage{
		Type:      types.TypeAuthenticated,
		MessageID: msg.MessageID,
		Timestamp: time.Now().Unix(),
		Data:      successData,
	})

	// 认证后立即同步一次未读数
	if err := l.notify.PushUnreadCount(ctx, userID); err != nil {
		logx.Errorf("推送未读数失败: user=%d err=%v", userID, err)
	}

	logx.Infof("用户 %d 认证成功 (session=%s)", userID, client.SessionID())
	return nil
}

// HandleJoinClubRoom 处理加入社团房间
// 订阅即可收听，发言权限在发送消息时校验
func (l *WsLogic) HandleJoinClubRoom(client *hub.Client, msg *types.WSMessage) error {
	var data types.JoinClubRoomData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return errorx.New(errorx.CodeInvalidParams)
	}

	if _, err := l.svcCtx.ClubModel.FindOne(context.Background(), data.ClubID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.CodeClubNotFound)
		}
		return errorx.Wrap(errorx.CodeDBError, err)
	}

	room := hub.ClubRoom(data.ClubID)
	l.hub.JoinRoom(client, room)

	joinedData, _ := json.Marshal(types.JoinedClubRoomData{
		ClubID: data.ClubID,
		Room:   string(room),
	})
	client.SendMessage(&types.WSMessage{
		Type:      types.TypeJoinedClubRoom,
		MessageID: msg.MessageID,
		Timestamp: time.Now().Unix(),
		Data:      joinedData,
	})

	logx.Infof("用户 %d 加入房间 %s", client.GetUserID(), room)
	return nil
}

// HandleLeaveClubRoom 处理离开社团房间
func (l *WsLogic) HandleLeaveClubRoom(client *hub.Client, msg *types.WSMessage) error {
	var data types.JoinClubRoomData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return errorx.New(errorx.CodeInvalidParams)
	}

	room := hub.ClubRoom(data.ClubID)
	l.hub.LeaveRoom(client, room)

	// 离开即停止输入
	l.svcCtx.Typing.Clear(room, client.GetUserID())
	l.chat.BroadcastTyping(room, types.TypeUserTyping)

	leftData, _ := json.Marshal(types.JoinedClubRoomData{
		ClubID: data.ClubID,
		Room:   string(room),
	})
	client.SendMessage(&types.WSMessage{
		Type:      types.TypeLeftClubRoom,
		MessageID: msg.MessageID,
		Timestamp: time.Now().Unix(),
		Data:      leftData,
	})

	logx.Infof("用户 %d 离开房间 %s", client.GetUserID(), room)
	return nil
}

// HandleJoinEventChat 处理加入活动聊天频道
// 订阅前按角色矩阵做权限判定，判定失败的订阅请求直接拒绝
func (l *WsLogic) HandleJoinEventChat(client *hub.Client, msg *types.WSMessage) error {
	ctx := context.Background()

	var data types.JoinEventChatData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return errorx.New(errorx.CodeInvalidParams)
	}
	if !model.ValidChatType(data.ChatType) {
		return errorx.New(errorx.CodeInvalidChatType)
	}

	if _, err := l.svcCtx.EventModel.FindOne(ctx, data.EventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.CodeEventNotFound)
		}
		return errorx.Wrap(errorx.CodeDBError, err)
	}

	if !l.svcCtx.Access.CanJoinEventChat(ctx, client.GetUserID(), data.EventID, data.ChatType) {
		return errorx.New(errorx.CodeChatAccessDenied)
	}

	room := hub.EventChatRoom(data.EventID, data.ChatType)
	l.hub.JoinRoom(client, room)

	joinedData, _ := json.Marshal(types.JoinedChatData{
		Room:     string(room),
		EventID:  data.EventID,
		ChatType: data.ChatType,
	})
	client.SendMessage(&types.WSMessage{
		Type:      types.TypeJoinedChat,
		MessageID: msg.MessageID,
		Timestamp: time.Now().Unix(),
		Data:      joinedData,
	})

	logx.Infof("用户 %d 加入房间 %s", client.GetUserID(), room)
	return nil
}

// HandleSendClubMessage 处理发送社团消息
func (l *WsLogic) HandleSendClubMessage(client *hub.Client, msg *types.WSMessage) error {
	var data types.SendClubMessageData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return errorx.New(errorx.CodeInvalidParams)
	}

	out, err := l.chat.PostClubMessage(context.Background(), client.GetUserID(), &data)
	if err != nil {
		return err
	}

	l.sendAck(client, msg.MessageID, out.ID)
	return nil
}

// HandleSendEventMessage 处理发送活动消息
func (l *WsLogic) HandleSendEventMessage(client *hub.Client, msg *types.WSMessage) error {
	var data types.SendEventMessageData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return errorx.New(errorx.CodeInvalidParams)
	}

	out, err := l.chat.PostEventMessage(context.Background(), client.GetUserID(), &data)
	if err != nil {
		return err
	}

	l.sendAck(client, msg.MessageID, out.ID)
	return nil
}

// HandleTyping 处理社团房间的输入状态
func (l *WsLogic) HandleTyping(client *hub.Client, msg *types.WSMessage) error {
	var data types.TypingData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return errorx.New(errorx.CodeInvalidParams)
	}

	room := hub.ClubRoom(data.ClubID)
	if !client.IsInRoom(room) {
		return errorx.New(errorx.CodeForbidden)
	}

	l.svcCtx.Typing.SetTyping(room, client.GetUserID(), data.IsTyping)
	l.chat.BroadcastTyping(room, types.TypeUserTyping)
	return nil
}

// HandleTypingEvent 处理活动频道的输入状态
func (l *WsLogic) HandleTypingEvent(client *hub.Client, msg *types.WSMessage) error {
	var data types.TypingEventData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return errorx.New(errorx.CodeInvalidParams)
	}
	if !model.ValidChatType(data.ChatType) {
		return errorx.New(errorx.CodeInvalidChatType)
	}

	room := hub.EventChatRoom(data.EventID, data.ChatType)
	if !client.IsInRoom(room) {
		return errorx.New(errorx.CodeForbidden)
	}

	l.svcCtx.Typing.SetTyping(room, client.GetUserID(), data.IsTyping)
	l.chat.BroadcastTyping(room, types.TypeUserTypingEvent)
	return nil
}

// HandleRequestUnreadCount 处理未读数查询
// 只回给发起请求的这条连接
func (l *WsLogic) HandleRequestUnreadCount(client *hub.Client, msg *types.WSMessage) error {
	count, err := l.svcCtx.NotificationModel.GetUnreadCount(context.Background(), client.GetUserID())
	if err != nil {
		return errorx.Wrap(errorx.CodeDBError, err)
	}

	data, _ := json.Marshal(types.UnreadCountData{Count: count})
	client.SendMessage(&types.WSMessage{
		Type:      types.TypeUnreadCountUpdate,
		MessageID: msg.MessageID,
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
	return nil
}

// HandleDisconnect 连接断开后的清理
// 清除该用户残留的输入状态，并刷新受影响房间的输入状态广播
func (l *WsLogic) HandleDisconnect(client *hub.Client) {
	userID := client.GetUserID()
	if userID == 0 {
		return
	}

	for _, room := range l.svcCtx.Typing.ClearAll(userID) {
		msgType := types.TypeUserTypingEvent
		if strings.HasPrefix(string(room), "club:") {
			msgType = types.TypeUserTyping
		}
		l.chat.BroadcastTyping(room, msgType)
	}
}

// sendAck 发送请求确认
func (l *WsLogic) sendAck(client *hub.Client, messageID string, recordID uint64) {
	ackData, _ := json.Marshal(types.AckData{
		MessageID: messageID,
		ID:        recordID,
		Success:   true,
	})
	client.SendMessage(&types.WSMessage{
		Type:      types.TypeAck,
		MessageID: messageID,
		Timestamp: time.Now().Unix(),
		Data:      ackData,
	})
}

// sendAuthError 发送认证失败消息
func (l *WsLogic) sendAuthError(client *hub.Client, code int) {
	errData, _ := json.Marshal(types.ErrorData{
		Code:    code,
		Message: errorx.GetMessage(code),
	})
	client.SendMessage(&types.WSMessage{
		Type:      types.TypeAuthError,
		Timestamp: time.Now().Unix(),
		Data:      errData,
	})
}
