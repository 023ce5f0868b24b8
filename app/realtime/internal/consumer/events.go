package consumer

import "time"

// EventCreatedEvent 活动创建事件
type EventCreatedEvent struct {
	EventID   uint64    `json:"event_id"`
	Title     string    `json:"title"`
	CreatedBy uint64    `json:"created_by"`
	ClubID    *uint64   `json:"club_id,omitempty"` // 为空表示全校公开活动
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

// EventReminderEvent 活动开始提醒事件
type EventReminderEvent struct {
	EventID   uint64    `json:"event_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
}
