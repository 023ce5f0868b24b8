package middleware

import (
	"net/http"

	"campus-events/common/ctxdata"

	"github.com/google/uuid"
)

// TraceIDHandler 追踪 ID 中间件
// 自动为每个 HTTP 请求注入 trace_id，用于全链路追踪
//
// 工作流程：
// 1. 从请求头 X-Trace-ID 中获取 trace_id（如果客户端传递）
// 2. 如果没有，自动生成新的 trace_id
// 3. 将 trace_id 注入到 context 中
// 4. 将 trace_id 写入响应头（方便客户端追踪）
func TraceIDHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = r.Header.Get("X-Request-ID")
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}

		ctx := ctxdata.WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
