package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/singleflight"

	"campus-events/app/realtime/model"
	commoncache "campus-events/common/cache"
)

// UserNameCache 用户显示名缓存
// 消息广播的每一条都要带发送者显示名，用 Redis + singleflight
// 挡住对档案表的重复查询；缓存失效时回源走 模型层的解析逻辑
type UserNameCache struct {
	redisClient *redis.Client
	userModel   model.UserModel
	group       singleflight.Group
}

// NewUserNameCache 创建用户显示名缓存
func NewUserNameCache(redisClient *redis.Client, userModel model.UserModel) *UserNameCache {
	return &UserNameCache{
		redisClient: redisClient,
		userModel:   userModel,
	}
}

// GetDisplayName 获取用户显示名
// 缓存未命中时并发请求合并为一次回源
func (c *UserNameCache) GetDisplayName(ctx context.Context, userID uint64) string {
	key := commoncache.UserNameKey(userID)

	if name, err := c.redisClient.Get(ctx, key).Result(); err == nil && name != "" {
		return name
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		name := c.userModel.ResolveDisplayName(ctx, userID)
		// 带抖动的 TTL 防止缓存雪崩
		if err := c.redisClient.Set(ctx, key, name, commoncache.RandomTTL(commoncache.DefaultTTL)).Err(); err != nil {
			logx.WithContext(ctx).Errorf("写入显示名缓存失败: user=%d err=%v", userID, err)
		}
		return name, nil
	})
	return v.(string)
}

// Invalidate 失效指定用户的显示名缓存（档案变更时调用）
func (c *UserNameCache) Invalidate(ctx context.Context, userID uint64) {
	key := commoncache.UserNameKey(userID)
	if err := c.redisClient.Del(ctx, key).Err(); err != nil {
		logx.WithContext(ctx).Errorf("失效显示名缓存失败: user=%d err=%v", userID, err)
	}
}
