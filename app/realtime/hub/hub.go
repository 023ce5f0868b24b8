package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"

	"campus-events/app/realtime/internal/types"
	"campus-events/common/cache"
	"campus-events/common/errorx"
)

var (
	ErrSendBufferFull = errors.New("发送缓冲区已满")
	ErrUserNotOnline  = errors.New("用户不在线")
	ErrClientClosed   = errors.New("连接已关闭")
)

// Hub 连接管理中心
// 连接按会话ID注册，同一用户的多条连接互相独立；
// 房间成员关系在 Hub 和 Client 两侧各记一份，以 Hub 侧为准
type Hub struct {
	// 已注册的客户端 (sessionID -> Client)
	clients map[string]*Client

	// 房间订阅 (room -> clients)
	rooms map[RoomKey]map[*Client]bool

	// 注册请求
	register chan *Client

	// 注销请求
	unregister chan *Client

	// 消息处理器
	messageHandler MessageHandler

	// Redis 客户端（用于存储用户状态）
	redisClient *redis.Client

	mu sync.RWMutex
}

// MessageHandler 消息处理器接口
type MessageHandler interface {
	HandleAuthenticate(client *Client, msg *types.WSMessage) error
	HandleJoinClubRoom(client *Client, msg *types.WSMessage) error
	HandleLeaveClubRoom(client *Client, msg *types.WSMessage) error
	HandleJoinEventChat(client *Client, msg *types.WSMessage) error
	HandleSendClubMessage(client *Client, msg *types.WSMessage) error
	HandleSendEventMessage(client *Client, msg *types.WSMessage) error
	HandleTyping(client *Client, msg *types.WSMessage) error
	HandleTypingEvent(client *Client, msg *types.WSMessage) error
	HandleRequestUnreadCount(client *Client, msg *types.WSMessage) error
}

// NewHub 创建新的 Hub
func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		rooms:       make(map[RoomKey]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		redisClient: redisClient,
	}
}

// SetHandler 设置消息处理器
// 处理器依赖 Hub 做广播，因此在构造之后注入
func (h *Hub) SetHandler(handler MessageHandler) {
	h.messageHandler = handler
}

// Run 运行 Hub
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			logx.Info("Hub 正在关闭")
			return
		}
	}
}

// Register 获取注册通道
func (h *Hub) Register() chan<- *Client {
	return h.register
}

// Unregister 获取注销通道
func (h *Hub) Unregister() chan<- *Client {
	return h.unregister
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.sessionID] = client
	logx.Infof("会话 %s 已连接", client.sessionID)
}

// unregisterClient 注销客户端
// 连接断开即清理其全部房间成员关系（Hub 侧和客户端侧都清），
// 不保留跨连接状态；send 通道不关闭，正在投递的广播方不受影响
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	if _, exists := h.clients[client.sessionID]; !exists {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.sessionID)

	// 从所有房间中移除
	for _, room := range client.Rooms() {
		if clients, ok := h.rooms[room]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	client.shutdown()

	userID := client.GetUserID()
	stillOnline := false
	if userID != 0 {
		for _, other := range h.clients {
			if other.GetUserID() == userID {
				stillOnline = true
				break
			}
		}
	}
	h.mu.Unlock()

	// 同一用户还有其他连接时不标记离线
	if userID != 0 && !stillOnline {
		h.updateUserStatus(userID, false)
	}

	logx.Infof("会话 %s 已断开连接 (user=%d)", client.sessionID, userID)
}

// Bind 将连接绑定到认证通过的用户
// 重复认证直接拒绝，不改变已绑定的身份；
// 绑定成功后自动加入用户私有房间，通知推送经由该房间送达
func (h *Hub) Bind(client *Client, userID uint64) error {
	if client.IsAuthed() {
		return errorx.New(errorx.CodeAlreadyAuthenticated)
	}

	client.setIdentity(userID)
	h.JoinRoom(client, UserRoom(userID))
	h.updateUserStatus(userID, true)

	logx.Infof("会话 %s 认证为用户 %d", client.sessionID, userID)
	return nil
}

// JoinRoom 将客户端加入房间，重复加入为幂等操作
func (h *Hub) JoinRoom(client *Client, room RoomKey) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.joinRoom(room)
}

// LeaveRoom 将客户端从房间移除，未加入时为空操作
func (h *Hub) LeaveRoom(client *Client, room RoomKey) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	client.leaveRoom(room)
}

// MembersOf 获取房间当前成员的快照
func (h *Hub) MembersOf(room RoomKey) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[room]
	if !ok {
		return nil
	}
	members := make([]*Client, 0, len(clients))
	for client := range clients {
		members = append(members, client)
	}
	return members
}

// handleClientMessage 处理客户端消息
func (h *Hub) handleClientMessage(client *Client, msg *types.WSMessage) {
	var err error

	switch msg.Type {
	case types.TypePing:
		// 心跳响应
		client.SendMessage(&types.WSMessage{
			Type:      types.TypePong,
			MessageID: msg.MessageID,
			Timestamp: time.Now().Unix(),
		})
		return

	case types.TypeAuthenticate:
		err = h.messageHandler.HandleAuthenticate(client, msg)

	case types.TypeJoinClubRoom:
		err = h.messageHandler.HandleJoinClubRoom(client, msg)

	case types.TypeLeaveClubRoom:
		err = h.messageHandler.HandleLeaveClubRoom(client, msg)

	case types.TypeJoinEventChat:
		err = h.messageHandler.HandleJoinEventChat(client, msg)

	case types.TypeSendClubMessage:
		err = h.messageHandler.HandleSendClubMessage(client, msg)

	case types.TypeSendEventMessage:
		err = h.messageHandler.HandleSendEventMessage(client, msg)

	case types.TypeTyping:
		err = h.messageHandler.HandleTyping(client, msg)

	case types.TypeTypingEvent:
		err = h.messageHandler.HandleTypingEvent(client, msg)

	case types.TypeRequestUnreadCount:
		err = h.messageHandler.HandleRequestUnreadCount(client, msg)

	default:
		client.SendError(errorx.CodeInvalidParams, "未知的消息类型")
		return
	}

	if err != nil {
		bizErr := errorx.FromError(err)
		if bizErr.Code == errorx.CodeInternalError {
			logx.Errorf("处理消息错误: type=%s err=%v", msg.Type, err)
		}
		client.SendError(bizErr.Code, bizErr.Message)
	}
}

// BroadcastToRoom 向房间广播消息
// 先在读锁内做成员快照，再在锁外逐个投递，避免持锁做 I/O
func (h *Hub) BroadcastToRoom(room RoomKey, msg *types.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logx.Errorf("序列化广播消息失败: %v", err)
		return
	}

	for _, client := range h.MembersOf(room) {
		if client.IsInRoom(room) {
			client.SendRaw(data)
		}
	}
}

// SendToUser 发送消息给指定用户的所有在线连接
func (h *Hub) SendToUser(userID uint64, msg *types.WSMessage) error {
	room := UserRoom(userID)

	h.mu.RLock()
	_, online := h.rooms[room]
	h.mu.RUnlock()

	if !online {
		return ErrUserNotOnline
	}

	h.BroadcastToRoom(room, msg)
	return nil
}

// GetOnlineUserCount 获取在线用户数（去重后的已认证用户）
func (h *Hub) GetOnlineUserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make(map[uint64]bool)
	for _, client := range h.clients {
		if id := client.GetUserID(); id != 0 {
			users[id] = true
		}
	}
	return len(users)
}

// GetConnectionCount 获取当前连接数
func (h *Hub) GetConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// updateUserStatus 更新用户在线状态到 Redis
func (h *Hub) updateUserStatus(userID uint64, isOnline bool) {
	ctx := context.Background()
	key := cache.UserStatusKey(userID)
	now := time.Now().Unix()

	data := map[string]interface{}{
		"is_online": isOnline,
		"last_seen": now,
	}

	if isOnline {
		data["last_online_at"] = now
	} else {
		data["last_offline_at"] = now
	}

	// 存储到 Redis，设置 30 天过期
	if err := h.redisClient.HMSet(ctx, key, data).Err(); err != nil {
		logx.Errorf("更新用户状态失败: %v", err)
		return
	}
	h.redisClient.Expire(ctx, key, cache.UserStatusTTL)
}

// GetUserStatus 获取用户状态
func (h *Hub) GetUserStatus(userID uint64) (map[string]interface{}, error) {
	ctx := context.Background()
	key := cache.UserStatusKey(userID)

	result, err := h.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, errors.New("用户状态不存在")
	}

	return map[string]interface{}{
		"is_online":       result["is_online"] == "1" || result["is_online"] == "true",
		"last_seen":       result["last_seen"],
		"last_online_at":  result["last_online_at"],
		"last_offline_at": result["last_offline_at"],
	}, nil
}
