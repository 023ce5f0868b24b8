package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"campus-events/app/realtime/hub"
)

func TestSnapshotReturnsTypingUsers(t *testing.T) {
	tracker := NewTracker(5 * time.Second)
	room := hub.EventChatRoom(1, "attendee_only")

	tracker.SetTyping(room, 3, true)
	tracker.SetTyping(room, 1, true)
	tracker.SetTyping(room, 2, true)

	users, isTyping := tracker.Snapshot(room)
	assert.True(t, isTyping)
	assert.Equal(t, []uint64{1, 2, 3}, users)
}

func TestSnapshotEmptyRoomStillReportsFalse(t *testing.T) {
	tracker := NewTracker(5 * time.Second)
	room := hub.ClubRoom(1)

	// 从未有人输入的房间也能拿到快照，供广播 is_typing=false
	users, isTyping := tracker.Snapshot(room)
	assert.False(t, isTyping)
	assert.Empty(t, users)
}

func TestTypingExpiresAfterTTL(t *testing.T) {
	tracker := NewTracker(5 * time.Second)
	room := hub.ClubRoom(1)

	now := time.Now()
	tracker.now = func() time.Time { return now }

	tracker.SetTyping(room, 1, true)
	tracker.SetTyping(room, 2, true)

	// TTL 内可见
	now = now.Add(4 * time.Second)
	users, isTyping := tracker.Snapshot(room)
	assert.True(t, isTyping)
	assert.Len(t, users, 2)

	// 用户 2 续期
	tracker.SetTyping(room, 2, true)

	// 超过用户 1 的 TTL 后只剩用户 2
	now = now.Add(2 * time.Second)
	users, isTyping = tracker.Snapshot(room)
	assert.True(t, isTyping)
	assert.Equal(t, []uint64{2}, users)

	// 全部过期后快照为空但仍可广播 false
	now = now.Add(10 * time.Second)
	users, isTyping = tracker.Snapshot(room)
	assert.False(t, isTyping)
	assert.Empty(t, users)
}

func TestSetTypingFalseRemovesImmediately(t *testing.T) {
	tracker := NewTracker(5 * time.Second)
	room := hub.ClubRoom(1)

	tracker.SetTyping(room, 1, true)
	tracker.SetTyping(room, 1, false)

	users, isTyping := tracker.Snapshot(room)
	assert.False(t, isTyping)
	assert.Empty(t, users)
}

func TestClearAllAcrossRooms(t *testing.T) {
	tracker := NewTracker(5 * time.Second)
	clubRoom := hub.ClubRoom(1)
	eventRoom := hub.EventChatRoom(2, "attendee_only")

	tracker.SetTyping(clubRoom, 1, true)
	tracker.SetTyping(eventRoom, 1, true)
	tracker.SetTyping(eventRoom, 2, true)

	affected := tracker.ClearAll(1)
	assert.ElementsMatch(t, []hub.RoomKey{clubRoom, eventRoom}, affected)

	// 其他用户的状态保留
	users, isTyping := tracker.Snapshot(eventRoom)
	assert.True(t, isTyping)
	assert.Equal(t, []uint64{2}, users)

	_, isTyping = tracker.Snapshot(clubRoom)
	assert.False(t, isTyping)
}

func TestRoomsAreIsolated(t *testing.T) {
	tracker := NewTracker(5 * time.Second)

	tracker.SetTyping(hub.EventChatRoom(1, "attendee_only"), 1, true)

	// 同一活动的不同频道互不可见
	_, isTyping := tracker.Snapshot(hub.EventChatRoom(1, "organizer_admin"))
	assert.False(t, isTyping)
}
