package ctxdata

import (
	"context"
)

// 定义上下文 key 类型，避免冲突
type contextKey string

const (
	// CtxKeyUserID 用户ID在上下文中的key
	CtxKeyUserID contextKey = "userId"
	// CtxKeyTraceID 追踪ID
	CtxKeyTraceID contextKey = "traceId"
)

// GetUserIDFromCtx 从上下文中获取用户ID
func GetUserIDFromCtx(ctx context.Context) uint64 {
	if val := ctx.Value(CtxKeyUserID); val != nil {
		if id, ok := val.(uint64); ok {
			return id
		}
	}
	return 0
}

// GetTraceIDFromCtx 从上下文中获取追踪ID
func GetTraceIDFromCtx(ctx context.Context) string {
	if val := ctx.Value(CtxKeyTraceID); val != nil {
		if traceID, ok := val.(string); ok {
			return traceID
		}
	}
	return ""
}

// WithUserID 将用户ID注入上下文
func WithUserID(ctx context.Context, userID uint64) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}

// WithTraceID 将追踪ID注入上下文
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, CtxKeyTraceID, traceID)
}
