package svc

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"campus-events/app/realtime/internal/access"
	"campus-events/app/realtime/internal/cache"
	"campus-events/app/realtime/internal/config"
	"campus-events/app/realtime/internal/presence"
	"campus-events/app/realtime/model"
	"campus-events/common/messaging"
)

// ServiceContext 服务上下文
type ServiceContext struct {
	Config          config.Config
	DB              *gorm.DB
	RedisClient     *redis.Client
	MessagingClient *messaging.Client
	TokenAuth       *TokenAuth

	// 数据模型
	UserModel          model.UserModel
	ClubModel          model.ClubModel
	EventModel         model.EventModel
	ParticipationModel model.EventParticipationModel
	MembershipModel    model.ClubMembershipModel
	EventChatModel     model.EventChatMessageModel
	ClubChatModel      model.ClubChatMessageModel
	NotificationModel  model.NotificationModel

	// 领域组件
	Access    *access.Evaluator
	Typing    *presence.Tracker
	NameCache *cache.UserNameCache
}

// NewServiceContext 创建服务上下文
func NewServiceContext(c config.Config) *ServiceContext {
	// 创建数据库连接
	db, err := gorm.Open(mysql.Open(c.MySQL.DSN), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	// 创建 Redis 客户端
	redisClient := redis.NewClient(&redis.Options{
		Addr:     c.Redis.Host,
		Password: c.Redis.Pass,
		DB:       c.Redis.DB,
	})

	// 创建消息中间件客户端
	messagingConfig := messaging.Config{
		Redis: messaging.RedisConfig{
			Addr:     c.Redis.Host,
			Password: c.Redis.Pass,
			DB:       c.Redis.DB,
		},
		ServiceName:   "realtime-service",
		EnableMetrics: true,
		RetryConfig: messaging.RetryConfig{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     10 * time.Second,
			Multiplier:      2.0,
		},
		// Redis 版本 < 6.2.0 时 ClaimInterval 设为 0 以避免 XPENDING 语法错误
		SubscriberConfig: messaging.SubscriberConfig{
			ClaimInterval:      0,
			NackResendInterval: time.Second * 10,
			MaxIdleTime:        time.Minute * 5,
		},
	}

	messagingClient, err := messaging.NewClient(messagingConfig)
	if err != nil {
		panic(err)
	}

	userModel := model.NewUserModel(db)
	participationModel := model.NewEventParticipationModel(db)
	membershipModel := model.NewClubMembershipModel(db)

	return &ServiceContext{
		Config:          c,
		DB:              db,
		RedisClient:     redisClient,
		MessagingClient: messagingClient,
		TokenAuth:       NewTokenAuth(c.Auth.AccessSecret),

		UserModel:          userModel,
		ClubModel:          model.NewClubModel(db),
		EventModel:         model.NewEventModel(db),
		ParticipationModel: participationModel,
		MembershipModel:    membershipModel,
		EventChatModel:     model.NewEventChatMessageModel(db),
		ClubChatModel:      model.NewClubChatMessageModel(db),
		NotificationModel:  model.NewNotificationModel(db),

		Access:    access.NewEvaluator(userModel, participationModel, membershipModel),
		Typing:    presence.NewTracker(time.Duration(c.WebSocket.TypingTTL) * time.Second),
		NameCache: cache.NewUserNameCache(redisClient, userModel),
	}
}
