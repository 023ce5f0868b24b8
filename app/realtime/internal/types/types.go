package types

import "encoding/json"

// MessageType 消息类型
type MessageType string

const (
	// 客户端 -> 服务端
	TypePing               MessageType = "ping"                 // 心跳
	TypeAuthenticate       MessageType = "authenticate"         // 认证
	TypeJoinClubRoom       MessageType = "join_club_room"       // 加入社团房间
	TypeLeaveClubRoom      MessageType = "leave_club_room"      // 离开社团房间
	TypeJoinEventChat      MessageType = "join_event_chat"      // 加入活动聊天频道
	TypeSendClubMessage    MessageType = "send_club_message"    // 发送社团消息
	TypeSendEventMessage   MessageType = "send_event_message"   // 发送活动消息
	TypeTyping             MessageType = "typing"               // 社团房间输入状态
	TypeTypingEvent        MessageType = "typing_event"         // 活动频道输入状态
	TypeRequestUnreadCount MessageType = "request_unread_count" // 请求未读数

	// 服务端 -> 客户端
	TypePong              MessageType = "pong"                // 心跳响应
	TypeConnected         MessageType = "connected"           // 连接建立
	TypeAuthenticated     MessageType = "authenticated"       // 认证成功
	TypeAuthError         MessageType = "auth_error"          // 认证失败
	TypeJoinedChat        MessageType = "joined_chat"         // 已加入活动频道
	TypeJoinedClubRoom    MessageType = "joined_club_room"    // 已加入社团房间
	TypeLeftClubRoom      MessageType = "left_club_room"      // 已离开社团房间
	TypeNewMessage        MessageType = "new_message"         // 新社团消息
	TypeNewEventMessage   MessageType = "new_event_message"   // 新活动消息
	TypeUserTyping        MessageType = "user_typing"         // 社团房间输入状态广播
	TypeUserTypingEvent   MessageType = "user_typing_event"   // 活动频道输入状态广播
	TypeNewNotification   MessageType = "new_notification"    // 新通知
	TypeUnreadCountUpdate MessageType = "unread_count_update" // 未读数更新
	TypeError             MessageType = "error"               // 错误消息
	TypeAck               MessageType = "ack"                 // 请求确认
)

// WSMessage WebSocket 消息结构
type WSMessage struct {
	Type      MessageType     `json:"type"`           // 消息类型
	MessageID string          `json:"message_id"`     // 消息ID（用于去重和确认）
	Timestamp int64           `json:"timestamp"`      // 时间戳
	Data      json.RawMessage `json:"data,omitempty"` // 消息数据
}

// ConnectedData 连接建立数据
type ConnectedData struct {
	SessionID string `json:"session_id"` // 连接会话ID
}

// AuthData 认证数据
type AuthData struct {
	Token string `json:"token"` // Bearer Token
}

// AuthSuccessData 认证成功数据
type AuthSuccessData struct {
	UserID uint64 `json:"user_id"` // 用户ID
}

// ErrorData 错误数据
type ErrorData struct {
	Code    int    `json:"code"`    // 错误码
	Message string `json:"message"` // 错误信息
}

// JoinClubRoomData 加入/离开社团房间数据
type JoinClubRoomData struct {
	ClubID uint64 `json:"club_id"` // 社团ID
}

// JoinedClubRoomData 已加入/离开社团房间数据
type JoinedClubRoomData struct {
	ClubID uint64 `json:"club_id"` // 社团ID
	Room   string `json:"room"`    // 房间键
}

// JoinEventChatData 加入活动聊天频道数据
type JoinEventChatData struct {
	EventID  uint64 `json:"event_id"`  // 活动ID
	ChatType string `json:"chat_type"` // 频道类型
}

// JoinedChatData 已加入活动频道数据
type JoinedChatData struct {
	Room     string `json:"room"`      // 房间键
	EventID  uint64 `json:"event_id"`  // 活动ID
	ChatType string `json:"chat_type"` // 频道类型
}

// SendClubMessageData 发送社团消息数据
type SendClubMessageData struct {
	ClubID  uint64 `json:"club_id"` // 社团ID
	Message string `json:"message"` // 消息内容
}

// SendEventMessageData 发送活动消息数据
type SendEventMessageData struct {
	EventID  uint64  `json:"event_id"`           // 活动ID
	ChatType string  `json:"chat_type"`          // 频道类型
	Message  string  `json:"message"`            // 消息内容
	ReplyTo  *uint64 `json:"reply_to,omitempty"` // 被回复消息ID
}

// ClubMessageData 社团消息广播数据
type ClubMessageData struct {
	ID         uint64 `json:"id"`          // 消息ID
	ClubID     uint64 `json:"club_id"`     // 社团ID
	SenderID   uint64 `json:"sender_id"`   // 发送者ID
	SenderName string `json:"sender_name"` // 发送者显示名
	IsLeader   bool   `json:"is_leader"`   // 发送者是否为社长
	Message    string `json:"message"`     // 消息内容
	SentAt     string `json:"sent_at"`     // 发送时间（RFC3339）
}

// ReplyPreview 被回复消息的摘要
type ReplyPreview struct {
	ID         uint64 `json:"id"`          // 消息ID
	SenderName string `json:"sender_name"` // 发送者显示名
	Message    string `json:"message"`     // 消息内容
}

// EventMessageData 活动消息广播数据
type EventMessageData struct {
	ID             uint64        `json:"id"`                         // 消息ID
	EventID        uint64        `json:"event_id"`                   // 活动ID
	SenderID       uint64        `json:"sender_id"`                  // 发送者ID
	SenderName     string        `json:"sender_name"`                // 发送者显示名
	Message        string        `json:"message"`                    // 消息内容
	ChatType       string        `json:"chat_type"`                  // 频道类型
	Timestamp      string        `json:"timestamp"`                  // 发送时间（RFC3339）
	ReplyToID      *uint64       `json:"reply_to_id,omitempty"`      // 被回复消息ID
	ReplyToMessage *ReplyPreview `json:"reply_to_message,omitempty"` // 被回复消息摘要
}

// TypingData 社团房间输入状态数据
type TypingData struct {
	ClubID   uint64 `json:"club_id"`   // 社团ID
	IsTyping bool   `json:"is_typing"` // 是否正在输入
}

// TypingEventData 活动频道输入状态数据
type TypingEventData struct {
	EventID  uint64 `json:"event_id"`  // 活动ID
	ChatType string `json:"chat_type"` // 频道类型
	IsTyping bool   `json:"is_typing"` // 是否正在输入
}

// UserTypingData 输入状态广播数据
// 没有人输入时也会广播 is_typing=false，让客户端可靠地清除指示器
type UserTypingData struct {
	Users    []uint64 `json:"users,omitempty"` // 正在输入的用户ID
	IsTyping bool     `json:"is_typing"`       // 是否有人正在输入
}

// NotificationData 通知广播数据
type NotificationData struct {
	NotificationID string  `json:"notification_id"`            // 通知ID
	Type           string  `json:"type"`                       // 通知类型
	Message        string  `json:"message"`                    // 通知内容
	RelatedClubID  *uint64 `json:"related_club_id,omitempty"`  // 关联社团ID
	RelatedEventID *uint64 `json:"related_event_id,omitempty"` // 关联活动ID
	RelatedUserID  *uint64 `json:"related_user_id,omitempty"`  // 关联用户ID
	IsRead         bool    `json:"is_read"`                    // 是否已读
	CreatedAt      string  `json:"created_at"`                 // 创建时间（RFC3339）
}

// AckData 请求确认数据
type AckData struct {
	MessageID string `json:"message_id"` // 对应请求的 message_id
	ID        uint64 `json:"id"`         // 落库后的消息ID
	Success   bool   `json:"success"`    // 是否成功
}

// UnreadCountData 未读数更新数据
type UnreadCountData struct {
	Count int64 `json:"count"` // 未读通知数量
}
