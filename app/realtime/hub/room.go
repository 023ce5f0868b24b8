package hub

import "fmt"

// RoomKey 房间键
// 三类房间共用一个命名空间：user:{id} / club:{id} / event:{id}:{chat_type}
type RoomKey string

// UserRoom 用户私有房间，认证成功后自动加入，用于通知推送
func UserRoom(userID uint64) RoomKey {
	return RoomKey(fmt.Sprintf("user:%d", userID))
}

// ClubRoom 社团聊天房间
func ClubRoom(clubID uint64) RoomKey {
	return RoomKey(fmt.Sprintf("club:%d", clubID))
}

// EventChatRoom 活动聊天频道房间
func EventChatRoom(eventID uint64, chatType string) RoomKey {
	return RoomKey(fmt.Sprintf("event:%d:%s", eventID, chatType))
}
