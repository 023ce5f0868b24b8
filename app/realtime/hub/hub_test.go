package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-events/app/realtime/internal/types"
	"campus-events/common/errorx"
)

// newTestHub 创建测试用 Hub
// Redis 指向不可达地址，在线状态写入失败只会记日志，不影响房间语义
func newTestHub() *Hub {
	return NewHub(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 10 * time.Millisecond,
	}))
}

func recvMessage(t *testing.T, c *Client) *types.WSMessage {
	t.Helper()
	select {
	case data := <-c.send:
		var msg types.WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	default:
		t.Fatal("期望收到消息但发送缓冲区为空")
		return nil
	}
}

func drain(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func TestRoomKeys(t *testing.T) {
	assert.Equal(t, RoomKey("user:7"), UserRoom(7))
	assert.Equal(t, RoomKey("club:3"), ClubRoom(3))
	assert.Equal(t, RoomKey("event:5:attendee_only"), EventChatRoom(5, "attendee_only"))
}

func TestJoinRoomIdempotent(t *testing.T) {
	h := newTestHub()
	c := NewClient(h, nil, "s1")
	room := ClubRoom(1)

	h.JoinRoom(c, room)
	h.JoinRoom(c, room)
	assert.Len(t, h.MembersOf(room), 1)
	assert.True(t, c.IsInRoom(room))

	h.LeaveRoom(c, room)
	assert.Empty(t, h.MembersOf(room))
	assert.False(t, c.IsInRoom(room))

	// 重复离开为空操作
	h.LeaveRoom(c, room)

	// 空房间的索引被回收
	h.mu.RLock()
	_, exists := h.rooms[room]
	h.mu.RUnlock()
	assert.False(t, exists)
}

func TestBindRejectsReauthentication(t *testing.T) {
	h := newTestHub()
	c := NewClient(h, nil, "s1")

	require.NoError(t, h.Bind(c, 1))
	assert.True(t, c.IsAuthed())
	assert.Equal(t, uint64(1), c.GetUserID())
	assert.True(t, c.IsInRoom(UserRoom(1)))

	// 重复认证被拒绝，且不改变已绑定的身份
	err := h.Bind(c, 2)
	assert.True(t, errorx.Is(err, errorx.CodeAlreadyAuthenticated))
	assert.Equal(t, uint64(1), c.GetUserID())
	assert.False(t, c.IsInRoom(UserRoom(2)))
}

func TestBroadcastToRoomOnlyReachesMembers(t *testing.T) {
	h := newTestHub()
	inRoomA := NewClient(h, nil, "s1")
	inRoomB := NewClient(h, nil, "s2")
	outside := NewClient(h, nil, "s3")

	room := EventChatRoom(1, "attendee_only")
	h.JoinRoom(inRoomA, room)
	h.JoinRoom(inRoomB, room)

	h.BroadcastToRoom(room, &types.WSMessage{
		Type:      types.TypeNewEventMessage,
		Timestamp: time.Now().Unix(),
	})

	assert.Equal(t, types.TypeNewEventMessage, recvMessage(t, inRoomA).Type)
	assert.Equal(t, types.TypeNewEventMessage, recvMessage(t, inRoomB).Type)
	assert.Empty(t, outside.send)
}

func TestSendToUserReachesAllConnections(t *testing.T) {
	h := newTestHub()

	// 同一用户的两条连接
	first := NewClient(h, nil, "s1")
	second := NewClient(h, nil, "s2")
	require.NoError(t, h.Bind(first, 1))
	require.NoError(t, h.Bind(second, 1))
	drain(first)
	drain(second)

	require.NoError(t, h.SendToUser(1, &types.WSMessage{
		Type:      types.TypeNewNotification,
		Timestamp: time.Now().Unix(),
	}))

	// 两条连接各收到一次
	assert.Equal(t, types.TypeNewNotification, recvMessage(t, first).Type)
	assert.Equal(t, types.TypeNewNotification, recvMessage(t, second).Type)
	assert.Empty(t, first.send)
	assert.Empty(t, second.send)

	// 不在线的用户
	assert.ErrorIs(t, h.SendToUser(404, &types.WSMessage{Type: types.TypeNewNotification}), ErrUserNotOnline)
}

func TestUnregisterCleansUpRooms(t *testing.T) {
	h := newTestHub()
	c := NewClient(h, nil, "s1")

	h.registerClient(c)
	require.NoError(t, h.Bind(c, 1))
	h.JoinRoom(c, ClubRoom(2))
	h.JoinRoom(c, EventChatRoom(3, "attendee_only"))

	h.unregisterClient(c)

	assert.Empty(t, h.MembersOf(UserRoom(1)))
	assert.Empty(t, h.MembersOf(ClubRoom(2)))
	assert.Empty(t, h.MembersOf(EventChatRoom(3, "attendee_only")))
	assert.Equal(t, 0, h.GetConnectionCount())

	// 客户端侧的房间状态同步清空
	assert.Empty(t, c.Rooms())
	assert.False(t, c.IsInRoom(ClubRoom(2)))

	// 写协程经 done 通道退出，之后的投递只返回错误
	select {
	case <-c.done:
	default:
		t.Fatal("期望 done 通道已关闭")
	}
	assert.ErrorIs(t, c.SendRaw([]byte(`{}`)), ErrClientClosed)

	// 重复注销为空操作
	h.unregisterClient(c)
}

func TestSendToDepartedClientDoesNotPanic(t *testing.T) {
	h := newTestHub()
	c := NewClient(h, nil, "s1")
	room := ClubRoom(1)

	h.registerClient(c)
	h.JoinRoom(c, room)

	// 广播方先在锁内拿到成员快照
	members := h.MembersOf(room)
	require.Len(t, members, 1)

	// 在快照与投递之间连接完成注销
	h.unregisterClient(c)

	// 对快照里的已注销连接投递不会 panic，只返回错误
	for _, member := range members {
		assert.ErrorIs(t, member.SendRaw([]byte(`{}`)), ErrClientClosed)
	}

	// 房间级广播同样安全
	h.BroadcastToRoom(room, &types.WSMessage{
		Type:      types.TypeNewMessage,
		Timestamp: time.Now().Unix(),
	})
}

func TestGetOnlineUserCountDeduplicates(t *testing.T) {
	h := newTestHub()

	first := NewClient(h, nil, "s1")
	second := NewClient(h, nil, "s2")
	third := NewClient(h, nil, "s3")
	unauth := NewClient(h, nil, "s4")

	for _, c := range []*Client{first, second, third, unauth} {
		h.registerClient(c)
	}
	require.NoError(t, h.Bind(first, 1))
	require.NoError(t, h.Bind(second, 1))
	require.NoError(t, h.Bind(third, 2))

	// 未认证连接不计入在线用户
	assert.Equal(t, 2, h.GetOnlineUserCount())
	assert.Equal(t, 4, h.GetConnectionCount())
}
