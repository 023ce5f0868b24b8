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

// EventReminderConsumer 活动开始提醒事件消费者
// 提醒所有已报名用户（组织者、志愿者、参与者）
type EventReminderConsumer struct {
	svcCtx *svc.ServiceContext
	notify *logic.NotifyLogic
	logger logx.Logger
}

func NewEventReminderConsumer(svcCtx *svc.ServiceContext, notify *logic.NotifyLogic) *EventReminderConsumer {
	return &EventReminderConsumer{
		svcCtx: svcCtx,
		notify: notify,
		logger: logx.WithContext(context.Background()),
	}
}

func (c *EventReminderConsumer) Subscribe(msgClient *messaging.Client) {
	msgClient.Subscribe("event.reminder", "realtime-event-reminder", c.handleEventReminder)
	c.logger.Info("已订阅 event.reminder 事件")
}

func (c *EventReminderConsumer) handleEventReminder(msg *message.Message) error {
	ctx := msg.Context()

	var event EventReminderEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Errorf("解析活动提醒事件失败: %v, payload: %s", err, string(msg.Payload))
		return messaging.NewNonRetryableError(fmt.Errorf("解析事件失败: %w", err))
	}

	userIDs, err := c.svcCtx.ParticipationModel.FindUserIDsByEvent(ctx, event.EventID)
	if err != nil {
		c.logger.Errorf("查询活动参与者失败: event=%d err=%v", event.EventID, err)
		return messaging.NewRetryableError(fmt.Errorf("查询参与者失败: %w", err))
	}

	content := fmt.Sprintf("活动「%s」将于 %s 开始",
		event.Title, event.StartTime.Format("2006-01-02 15:04"))

	for _, userID := range userIDs {
		_, err := c.notify.Notify(ctx, logic.NotifyInput{
			UserID:         userID,
			Type:           model.NotifyTypeEventReminder,
			Message:        content,
			RelatedEventID: &event.EventID,
		})
		if err != nil {
			c.logger.Errorf("发送活动提醒失败: user=%d event=%d err=%v", userID, event.EventID, err)
		}
	}

	c.logger.Infof("活动提醒已发送: event_id=%d, recipients=%d", event.EventID, len(userIDs))
	return nil
}
