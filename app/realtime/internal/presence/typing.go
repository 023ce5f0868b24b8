package presence

import (
	"sort"
	"sync"
	"time"

	"campus-events/app/realtime/hub"
)

// DefaultTTL 输入状态的默认存活时间
const DefaultTTL = 5 * time.Second

// Tracker 输入状态追踪器
// 纯内存结构，不落库；过期条目在读取时惰性清除，
// 因此客户端停止发送 is_typing=false 也不会留下僵尸状态
type Tracker struct {
	mu    sync.Mutex
	rooms map[hub.RoomKey]map[uint64]time.Time
	ttl   time.Duration
	now   func() time.Time
}

// NewTracker 创建输入状态追踪器
func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{
		rooms: make(map[hub.RoomKey]map[uint64]time.Time),
		ttl:   ttl,
		now:   time.Now,
	}
}

// SetTyping 更新用户在房间内的输入状态
// isTyping=true 刷新过期时间，false 立即移除
func (t *Tracker) SetTyping(room hub.RoomKey, userID uint64, isTyping bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !isTyping {
		if users, ok := t.rooms[room]; ok {
			delete(users, userID)
			if len(users) == 0 {
				delete(t.rooms, room)
			}
		}
		return
	}

	users, ok := t.rooms[room]
	if !ok {
		users = make(map[uint64]time.Time)
		t.rooms[room] = users
	}
	users[userID] = t.now().Add(t.ttl)
}

// Snapshot 获取房间当前正在输入的用户
// 读取时清除过期条目；列表为空时 isTyping 为 false，
// 调用方仍需广播，让客户端清除输入指示器
func (t *Tracker) Snapshot(room hub.RoomKey) (users []uint64, isTyping bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, ok := t.rooms[room]
	if !ok {
		return nil, false
	}

	now := t.now()
	for userID, deadline := range entries {
		if deadline.Before(now) || deadline.Equal(now) {
			delete(entries, userID)
			continue
		}
		users = append(users, userID)
	}
	if len(entries) == 0 {
		delete(t.rooms, room)
	}

	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users, len(users) > 0
}

// Clear 移除用户在房间内的输入状态
// 发送消息成功后调用，正在输入的状态随消息发出而结束
func (t *Tracker) Clear(room hub.RoomKey, userID uint64) {
	t.SetTyping(room, userID, false)
}

// ClearAll 移除用户在所有房间内的输入状态（连接断开时调用）
func (t *Tracker) ClearAll(userID uint64) []hub.RoomKey {
	t.mu.Lock()
	defer t.mu.Unlock()

	var affected []hub.RoomKey
	for room, users := range t.rooms {
		if _, ok := users[userID]; ok {
			delete(users, userID)
			affected = append(affected, room)
			if len(users) == 0 {
				delete(t.rooms, room)
			}
		}
	}
	return affected
}
