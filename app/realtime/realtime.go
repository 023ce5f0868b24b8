package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"

	"campus-events/app/realtime/hub"
	"campus-events/app/realtime/internal/config"
	"campus-events/app/realtime/internal/consumer"
	"campus-events/app/realtime/internal/handler"
	"campus-events/app/realtime/internal/logic"
	"campus-events/app/realtime/internal/svc"
	"campus-events/common/middleware"
)

var configFile = flag.String("f", "etc/realtime.yaml", "the config file")

func main() {
	flag.Parse()

	// 加载配置
	var c config.Config
	conf.MustLoad(*configFile, &c)

	// 创建服务上下文
	svcCtx := svc.NewServiceContext(c)

	// 创建 Hub 和各领域逻辑
	h := hub.NewHub(svcCtx.RedisClient)
	chatLogic := logic.NewChatLogic(svcCtx, h)
	notifyLogic := logic.NewNotifyLogic(svcCtx, h)
	membershipLogic := logic.NewMembershipLogic(svcCtx, notifyLogic)
	wsLogic := logic.NewWsLogic(svcCtx, h, chatLogic, notifyLogic)
	h.SetHandler(wsLogic)

	// 启动 Hub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)

	// 注册事件消费者并启动消息订阅
	consumer.NewEventCreatedConsumer(svcCtx, notifyLogic).Subscribe(svcCtx.MessagingClient)
	consumer.NewEventReminderConsumer(svcCtx, notifyLogic).Subscribe(svcCtx.MessagingClient)
	go func() {
		if err := svcCtx.MessagingClient.Run(ctx); err != nil {
			logx.Errorf("消息中间件客户端停止: %v", err)
		}
	}()

	// 创建 HTTP 服务器
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.WebSocketHandler(svcCtx, h, wsLogic))

	// 健康检查
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 在线用户数查询
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"online_users":%d,"connections":%d}`,
			h.GetOnlineUserCount(), h.GetConnectionCount())
	})

	// 历史和通知查询
	mux.HandleFunc("/api/events/chat/history", handler.EventChatHistoryHandler(svcCtx))
	mux.HandleFunc("/api/clubs/chat/history", handler.ClubChatHistoryHandler(svcCtx))
	mux.HandleFunc("/api/notifications", handler.ListNotificationsHandler(svcCtx))
	mux.HandleFunc("/api/notifications/unread_count", handler.UnreadCountHandler(svcCtx))
	mux.HandleFunc("/api/notifications/mark_read", handler.MarkReadHandler(svcCtx, notifyLogic))
	mux.HandleFunc("/api/notifications/delete", handler.DeleteNotificationHandler(svcCtx, notifyLogic))

	// 社团成员关系
	mux.HandleFunc("/api/clubs/join", handler.JoinClubHandler(svcCtx, membershipLogic))
	mux.HandleFunc("/api/clubs/approve", handler.ApproveJoinHandler(svcCtx, membershipLogic))
	mux.HandleFunc("/api/clubs/reject", handler.RejectJoinHandler(svcCtx, membershipLogic))
	mux.HandleFunc("/api/clubs/leave", handler.LeaveClubHandler(svcCtx, membershipLogic))
	mux.HandleFunc("/api/clubs/pending", handler.PendingRequestsHandler(svcCtx, membershipLogic))

	// 获取用户状态
	mux.HandleFunc("/api/users/status", handler.GetUserStatusHandler(h))

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", c.Host, c.Port),
		Handler: middleware.TraceIDHandler(middleware.CORSHandler(mux)),
	}

	// 启动服务器
	go func() {
		logx.Infof("实时协作服务启动在 %s:%d", c.Host, c.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Errorf("服务器错误: %v", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logx.Info("正在关闭服务器...")
	cancel()

	// 停止接收新连接
	if err := server.Shutdown(context.Background()); err != nil {
		logx.Errorf("服务器关闭错误: %v", err)
	}

	// 关闭消息中间件客户端
	if err := svcCtx.MessagingClient.Close(); err != nil {
		logx.Errorf("关闭消息中间件客户端失败: %v", err)
	}

	logx.Info("服务器已停止")
}
