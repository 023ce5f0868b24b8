package config

import (
	"github.com/zeromicro/go-zero/rest"
)

// Config 实时协作服务配置
type Config struct {
	rest.RestConf

	// MySQL 配置
	MySQL MySQLConf

	// Redis 配置
	Redis RedisConf

	// JWT 认证配置
	Auth AuthConf

	// WebSocket 配置
	WebSocket WebSocketConf
}

// MySQLConf MySQL 配置
type MySQLConf struct {
	DSN string
}

// RedisConf Redis 配置
type RedisConf struct {
	Host string
	Pass string `json:",optional"`
	DB   int    `json:",default=0"`
}

// AuthConf 认证配置
type AuthConf struct {
	AccessSecret string
	AccessExpire int64
}

// WebSocketConf WebSocket 配置
type WebSocketConf struct {
	// 最大连接数
	MaxConnections int `json:",default=10000"`
	// 输入状态存活时间（秒）
	TypingTTL int `json:",default=5"`
	// 历史消息单页上限
	HistoryPageSize int `json:",default=50"`
}
