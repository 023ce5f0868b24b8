package handler

import (
	"net/http"
	"strconv"

	"campus-events/app/realtime/hub"
	"campus-events/common/errorx"
	"campus-events/common/response"
)

// GetUserStatusHandler 获取用户在线状态处理器
func GetUserStatusHandler(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 只允许 GET 请求
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, err := strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 64)
		if err != nil || userID == 0 {
			response.FailWithCode(w, errorx.CodeInvalidParams)
			return
		}

		status, err := h.GetUserStatus(userID)
		if err != nil {
			// 没有状态记录视为从未上线
			response.Success(w, map[string]interface{}{
				"is_online":       false,
				"last_seen":       0,
				"last_online_at":  0,
				"last_offline_at": 0,
			})
			return
		}

		lastSeen, _ := strconv.ParseInt(asString(status["last_seen"]), 10, 64)
		lastOnlineAt, _ := strconv.ParseInt(asString(status["last_online_at"]), 10, 64)
		lastOfflineAt, _ := strconv.ParseInt(asString(status["last_offline_at"]), 10, 64)

		response.Success(w, map[string]interface{}{
			"is_online":       status["is_online"],
			"last_seen":       lastSeen,
			"last_online_at":  lastOnlineAt,
			"last_offline_at": lastOfflineAt,
		})
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
