// Package cache 提供缓存 Key 规范和 TTL 工具
//
// 设计原则：
//   - Key 命名规范：{业务}:{模块}:{标识}，如 realtime:user:name:123
//   - 随机 TTL 防止缓存雪崩
package cache

import (
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/mathx"
)

const (
	// DefaultTTL 默认缓存过期时间（5 分钟）
	DefaultTTL = 5 * time.Minute

	// UserStatusTTL 用户在线状态过期时间（30 天）
	UserStatusTTL = 30 * 24 * time.Hour

	// DefaultJitter 默认 TTL 抖动系数（±10%）
	DefaultJitter = 0.1
)

// unstable 随机数生成器，用于 TTL 抖动
var unstable = mathx.NewUnstable(DefaultJitter)

// RandomTTL 生成带抖动的 TTL，防止缓存雪崩
//
// 示例：
//
//	RandomTTL(5 * time.Minute) => 4.5min ~ 5.5min
func RandomTTL(base time.Duration) time.Duration {
	return time.Duration(unstable.AroundDuration(base))
}

// UserNameKey 用户显示名缓存 Key
//
// 格式：realtime:user:name:{id}
// TTL：5min ± 10%
func UserNameKey(userID uint64) string {
	return fmt.Sprintf("realtime:user:name:%d", userID)
}

// UserStatusKey 用户在线状态 Key
//
// 格式：user:status:{id}
// TTL：30 天
func UserStatusKey(userID uint64) string {
	return fmt.Sprintf("user:status:%d", userID)
}
