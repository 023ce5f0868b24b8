package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/zeromicro/go-zero/core/logx"

	"campus-events/app/realtime/internal/logic"
	"campus-events/app/realtime/internal/svc"
	"campus-events/app/realtime/model"
	"campus-events/common/messaging"
)

// EventCreatedConsumer 活动创建事件消费者
// 社团活动通知社团成员，公开活动通知全体活跃用户，创建者本人除外
type EventCreatedConsumer struct {
	svcCtx *svc.ServiceContext
	notify *logic.NotifyLogic
	logger logx.Logger
}

func NewEventCreatedConsumer(svcCtx *svc.ServiceContext, notify *logic.NotifyLogic) *EventCreatedConsumer {
	return &EventCreatedConsumer{
		svcCtx: svcCtx,
		notify: notify,
		logger: logx.WithContext(context.Background()),
	}
}

func (c *EventCreatedConsumer) Subscribe(msgClient *messaging.Client) {
	msgClient.Subscribe("event.created", "realtime-event-created", c.handleEventCreated)
	c.logger.Info("已订阅 event.created 事件")
}

func (c *EventCreatedConsumer) handleEventCreated(msg *message.Message) error {
	ctx := msg.Context()

	var event EventCreatedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Errorf("解析活动创建事件失败: %v, payload: %s", err, string(msg.Payload))
		return messaging.NewNonRetryableError(fmt.Errorf("解析事件失败: %w", err))
	}

	c.logger.Infof("收到活动创建事件: event_id=%d, created_by=%d, title=%s",
		event.EventID, event.CreatedBy, event.Title)

	in := logic.NotifyInput{
		Type:           model.NotifyTypeEventCreated,
		Message:        fmt.Sprintf("新活动「%s」已发布", event.Title),
		RelatedEventID: &event.EventID,
	}

	if event.ClubID != nil {
		in.RelatedClubID = event.ClubID
		c.notify.NotifyClubMembers(ctx, *event.ClubID, event.CreatedBy, in)
	} else if event.IsPublic {
		c.notify.NotifyAllActiveUsers(ctx, event.CreatedBy, in)
	}

	return nil
}
