package logic

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campus-events/app/realtime/hub"
	"campus-events/app/realtime/internal/access"
	"campus-events/app/realtime/internal/cache"
	"campus-events/app/realtime/internal/config"
	"campus-events/app/realtime/internal/presence"
	"campus-events/app/realtime/internal/svc"
	"campus-events/app/realtime/internal/types"
	"campus-events/app/realtime/model"
	"campus-events/common/errorx"
)

// newTestContext 组装测试用服务上下文
// 数据库用内存 SQLite；Redis 指向不可达地址，
// 显示名缓存会在读写失败时直接回源查库
func newTestContext(t *testing.T) (*svc.ServiceContext, *hub.Hub) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Student{}, &model.Faculty{}, &model.Admin{},
		&model.Club{}, &model.Event{}, &model.EventParticipation{},
		&model.ClubMembership{}, &model.EventChatMessage{}, &model.ClubChatMessage{},
		&model.Notification{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	redisClient := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 10 * time.Millisecond,
	})

	userModel := model.NewUserModel(db)
	participationModel := model.NewEventParticipationModel(db)
	membershipModel := model.NewClubMembershipModel(db)

	svcCtx := &svc.ServiceContext{
		Config: config.Config{
			WebSocket: config.WebSocketConf{TypingTTL: 5, HistoryPageSize: 50},
		},
		DB:          db,
		RedisClient: redisClient,

		UserModel:          userModel,
		ClubModel:          model.NewClubModel(db),
		EventModel:         model.NewEventModel(db),
		ParticipationModel: participationModel,
		MembershipModel:    membershipModel,
		EventChatModel:     model.NewEventChatMessageModel(db),
		ClubChatModel:      model.NewClubChatMessageModel(db),
		NotificationModel:  model.NewNotificationModel(db),

		Access:    access.NewEvaluator(userModel, participationModel, membershipModel),
		Typing:    presence.NewTracker(5 * time.Second),
		NameCache: cache.NewUserNameCache(redisClient, userModel),
	}
	return svcCtx, hub.NewHub(redisClient)
}

func seedEvent(t *testing.T, db *gorm.DB, status string) uint64 {
	t.Helper()
	event := &model.Event{
		Title:     "迎新晚会",
		Status:    status,
		CreatedBy: 1,
		StartTime: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(event).Error)
	return event.EventID
}

func TestPostEventMessagePersistsAndHydratesSender(t *testing.T) {
	svcCtx, h := newTestContext(t)
	chat := NewChatLogic(svcCtx, h)
	ctx := context.Background()

	eventID := seedEvent(t, svcCtx.DB, model.EventStatusApproved)
	require.NoError(t, svcCtx.DB.Create(&model.Student{UserID: 1, FullName: "学生张三"}).Error)
	require.NoError(t, svcCtx.DB.Create(&model.EventParticipation{
		UserID: 1, EventID: eventID, Role: model.RoleOrganizer, CreatedAt: time.Now(),
	}).Error)

	out, err := chat.PostEventMessage(ctx, 1, &types.SendEventMessageData{
		EventID:  eventID,
		ChatType: model.ChatTypeOrganizerAdmin,
		Message:  "  大家好  ",
	})
	require.NoError(t, err)

	assert.NotZero(t, out.ID)
	assert.Equal(t, "学生张三", out.SenderName)
	// 首尾空白被去除后落库
	assert.Equal(t, "大家好", out.Message)

	stored, err := svcCtx.EventChatModel.FindOne(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "大家好", stored.Message)
	assert.Equal(t, model.ChatTypeOrganizerAdmin, stored.ChatType)
}

func TestPostEventMessageValidation(t *testing.T) {
	svcCtx, h := newTestContext(t)
	chat := NewChatLogic(svcCtx, h)
	ctx := context.Background()

	eventID := seedEvent(t, svcCtx.DB, model.EventStatusApproved)
	require.NoError(t, svcCtx.DB.Create(&model.EventParticipation{
		UserID: 3, EventID: eventID, Role: model.RoleAttendee, CreatedAt: time.Now(),
	}).Error)

	// 空消息
	_, err := chat.PostEventMessage(ctx, 3, &types.SendEventMessageData{
		EventID: eventID, ChatType: model.ChatTypeAttendeeOnly, Message: "   ",
	})
	assert.True(t, errorx.Is(err, errorx.CodeEmptyMessage))

	// 未知频道类型
	_, err = chat.PostEventMessage(ctx, 3, &types.SendEventMessageData{
		EventID: eventID, ChatType: "secret", Message: "hello",
	})
	assert.True(t, errorx.Is(err, errorx.CodeInvalidChatType))

	// 活动不存在
	_, err = chat.PostEventMessage(ctx, 3, &types.SendEventMessageData{
		EventID: 9999, ChatType: model.ChatTypeAttendeeOnly, Message: "hello",
	})
	assert.True(t, errorx.Is(err, errorx.CodeEventNotFound))

	// 参与者无权进入组织者频道
	_, err = chat.PostEventMessage(ctx, 3, &types.SendEventMessageData{
		EventID: eventID, ChatType: model.ChatTypeOrganizerAdmin, Message: "hello",
	})
	assert.True(t, errorx.Is(err, errorx.CodeChatAccessDenied))
}

func TestPostEventMessageClosedChat(t *testing.T) {
	svcCtx, h := newTestContext(t)
	chat := NewChatLogic(svcCtx, h)
	ctx := context.Background()

	// 已结束和已取消的活动都关闭聊天室
	for _, status := range []string{model.EventStatusCompleted, model.EventStatusCancelled} {
		eventID := seedEvent(t, svcCtx.DB, status)
		require.NoError(t, svcCtx.DB.Create(&model.EventParticipation{
			UserID: 1, EventID: eventID, Role: model.RoleOrganizer, CreatedAt: time.Now(),
		}).Error)

		_, err := chat.PostEventMessage(ctx, 1, &types.SendEventMessageData{
			EventID: eventID, ChatType: model.ChatTypeAttendeeOnly, Message: "hello",
		})
		assert.True(t, errorx.Is(err, errorx.CodeChatClosed), status)
	}
}

func TestPostEventMessageReplyValidation(t *testing.T) {
	svcCtx, h := newTestContext(t)
	chat := NewChatLogic(svcCtx, h)
	ctx := context.Background()

	eventID := seedEvent(t, svcCtx.DB, model.EventStatusApproved)
	otherEventID := seedEvent(t, svcCtx.DB, model.EventStatusApproved)
	for _, id := range []uint64{eventID, otherEventID} {
		require.NoError(t, svcCtx.DB.Create(&model.EventParticipation{
			UserID: 1, EventID: id, Role: model.RoleOrganizer, CreatedAt: time.Now(),
		}).Error)
	}

	original, err := chat.PostEventMessage(ctx, 1, &types.SendEventMessageData{
		EventID: eventID, ChatType: model.ChatTypeAttendeeOnly, Message: "原始消息",
	})
	require.NoError(t, err)

	// 同活动同频道的回复成功，并带上被回复消息摘要
	reply, err := chat.PostEventMessage(ctx, 1, &types.SendEventMessageData{
		EventID: eventID, ChatType: model.ChatTypeAttendeeOnly,
		Message: "回复", ReplyTo: &original.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, reply.ReplyToMessage)
	assert.Equal(t, original.ID, reply.ReplyToMessage.ID)
	assert.Equal(t, "原始消息", reply.ReplyToMessage.Message)

	// 跨频道回复被拒绝
	_, err = chat.PostEventMessage(ctx, 1, &types.SendEventMessageData{
		EventID: eventID, ChatType: model.ChatTypeOrganizerVolunteer,
		Message: "跨频道", ReplyTo: &original.ID,
	})
	assert.True(t, errorx.Is(err, errorx.CodeReplyNotFound))

	// 跨活动回复被拒绝
	_, err = chat.PostEventMessage(ctx, 1, &types.SendEventMessageData{
		EventID: otherEventID, ChatType: model.ChatTypeAttendeeOnly,
		Message: "跨活动", ReplyTo: &original.ID,
	})
	assert.True(t, errorx.Is(err, errorx.CodeReplyNotFound))

	// 回复不存在的消息
	missing := uint64(9999)
	_, err = chat.PostEventMessage(ctx, 1, &types.SendEventMessageData{
		EventID: eventID, ChatType: model.ChatTypeAttendeeOnly,
		Message: "无目标", ReplyTo: &missing,
	})
	assert.True(t, errorx.Is(err, errorx.CodeReplyNotFound))
}

func TestPostClubMessageRequiresMembership(t *testing.T) {
	svcCtx, h := newTestContext(t)
	chat := NewChatLogic(svcCtx, h)
	ctx := context.Background()

	club := &model.Club{Name: "摄影社", LeaderID: 1, CreatedBy: 1, CreatedAt: time.Now()}
	require.NoError(t, svcCtx.DB.Create(club).Error)

	// 社团不存在
	_, err := chat.PostClubMessage(ctx, 2, &types.SendClubMessageData{ClubID: 9999, Message: "hello"})
	assert.True(t, errorx.Is(err, errorx.CodeClubNotFound))

	// 非成员不能发言
	_, err = chat.PostClubMessage(ctx, 2, &types.SendClubMessageData{ClubID: club.ClubID, Message: "hello"})
	assert.True(t, errorx.Is(err, errorx.CodeClubChatDenied))

	// 正式成员可以发言
	require.NoError(t, svcCtx.MembershipModel.RequestJoin(ctx, 2, club.ClubID))
	require.NoError(t, svcCtx.MembershipModel.Approve(ctx, 2, club.ClubID, 1))

	out, err := chat.PostClubMessage(ctx, 2, &types.SendClubMessageData{ClubID: club.ClubID, Message: "hello"})
	require.NoError(t, err)
	assert.False(t, out.IsLeader)
	assert.Equal(t, model.UnknownDisplayName, out.SenderName)

	// 社长发言带社长标记
	require.NoError(t, svcCtx.MembershipModel.RequestJoin(ctx, 1, club.ClubID))
	require.NoError(t, svcCtx.MembershipModel.Approve(ctx, 1, club.ClubID, 1))
	leaderMsg, err := chat.PostClubMessage(ctx, 1, &types.SendClubMessageData{ClubID: club.ClubID, Message: "大家好"})
	require.NoError(t, err)
	assert.True(t, leaderMsg.IsLeader)
}
