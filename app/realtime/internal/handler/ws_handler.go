package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"

	"campus-events/app/realtime/hub"
	"campus-events/app/realtime/internal/logic"
	"campus-events/app/realtime/internal/svc"
	"campus-events/app/realtime/internal/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 允许跨域
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler WebSocket 连接处理器
// 每条连接分配独立的会话ID，同一用户多条连接互不影响
func WebSocketHandler(svcCtx *svc.ServiceContext, h *hub.Hub, wsLogic *logic.WsLogic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 升级 HTTP 连接为 WebSocket
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Errorf("升级连接失败: %v", err)
			return
		}

		// 创建客户端并注册
		sessionID := uuid.New().String()
		client := hub.NewClient(h, conn, sessionID)
		h.Register() <- client

		// 启动读写协程，读协程退出后做输入状态清理
		go client.WritePump()
		go func() {
			client.ReadPump()
			wsLogic.HandleDisconnect(client)
		}()

		// 告知客户端连接已建立，等待认证
		connectedData, _ := json.Marshal(types.ConnectedData{SessionID: sessionID})
		client.SendMessage(&types.WSMessage{
			Type:      types.TypeConnected,
			Timestamp: time.Now().Unix(),
			Data:      connectedData,
		})

		logx.Infof("新的 WebSocket 连接已建立: session=%s", sessionID)
	}
}
