package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"

	"campus-events/app/realtime/internal/types"
	"campus-events/common/errorx"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second
	// 心跳超时时间
	pongWait = 60 * time.Second
	// Ping 间隔 (必须小于 pongWait)
	pingPeriod = (pongWait * 9) / 10
	// 最大消息大小
	maxMessageSize = 512 * 1024 // 512KB
)

// Client WebSocket 客户端
// 一个 Client 对应一条连接；同一用户可以持有多条连接，
// 互不影响，每条连接独立加入房间、独立收到推送
//
// send 通道从不关闭：广播方在锁外投递，关闭通道会让
// 仍持有成员快照的投递方 panic；写协程通过 done 通道退出
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	sessionID string
	userID    uint64
	rooms     map[RoomKey]bool
	mu        sync.RWMutex
	isAuthed  bool
}

// NewClient 创建新客户端
func NewClient(hub *Hub, conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		done:      make(chan struct{}),
		sessionID: sessionID,
		rooms:     make(map[RoomKey]bool),
	}
}

// ReadPump 读取消息
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logx.Errorf("WebSocket 错误: %v", err)
			}
			break
		}

		// 处理消息
		c.handleMessage(message)
	}
}

// WritePump 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// 批量写入队列中的消息
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端
func (c *Client) SendMessage(msg *types.WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.SendRaw(data)
}

// SendRaw 发送已序列化的消息给客户端
// 连接注销后投递只返回错误，不会 panic
func (c *Client) SendRaw(data []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		logx.Errorf("会话 %s 的发送缓冲区已满", c.sessionID)
		return ErrSendBufferFull
	}
}

// handleMessage 处理接收到的消息
func (c *Client) handleMessage(message []byte) {
	var msg types.WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.SendError(errorx.CodeInvalidParams, "消息格式错误")
		return
	}

	// 未认证只能发送认证消息和心跳
	if !c.IsAuthed() && msg.Type != types.TypeAuthenticate && msg.Type != types.TypePing {
		c.SendError(errorx.CodeLoginRequired, errorx.GetMessage(errorx.CodeLoginRequired))
		return
	}

	// 路由到对应的处理器
	c.hub.handleClientMessage(c, &msg)
}

// SendError 发送错误消息
func (c *Client) SendError(code int, message string) {
	errData := types.ErrorData{
		Code:    code,
		Message: message,
	}
	data, _ := json.Marshal(errData)

	msg := &types.WSMessage{
		Type:      types.TypeError,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
	c.SendMessage(msg)
}

// SessionID 获取会话ID
func (c *Client) SessionID() string {
	return c.sessionID
}

// GetUserID 获取用户ID，未认证时为 0
func (c *Client) GetUserID() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// IsAuthed 是否已认证
func (c *Client) IsAuthed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isAuthed
}

// setIdentity 绑定用户身份，仅由 Hub.Bind 调用
func (c *Client) setIdentity(userID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.isAuthed = true
}

// joinRoom 记录客户端侧的房间成员关系
func (c *Client) joinRoom(room RoomKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[room] = true
}

// leaveRoom 移除客户端侧的房间成员关系
func (c *Client) leaveRoom(room RoomKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, room)
}

// IsInRoom 是否在房间中
func (c *Client) IsInRoom(room RoomKey) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rooms[room]
}

// shutdown 标记连接已注销，仅由 Hub.unregisterClient 调用
// 清空客户端侧的房间成员关系，并通过 done 通道让写协程退出
func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rooms = make(map[RoomKey]bool)
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// Rooms 获取客户端当前加入的所有房间
func (c *Client) Rooms() []RoomKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rooms := make([]RoomKey, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// GetHub 获取 Hub
func (c *Client) GetHub() *Hub {
	return c.hub
}
