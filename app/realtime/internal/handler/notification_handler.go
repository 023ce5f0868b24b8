package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"campus-events/app/realtime/internal/logic"
	"campus-events/app/realtime/internal/svc"
	"campus-events/app/realtime/internal/types"
	"campus-events/common/errorx"
	"campus-events/common/response"
)

// ListNotificationsHandler 通知列表处理器
func ListNotificationsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, err := authUserID(r, svcCtx)
		if err != nil {
			response.Fail(w, err)
			return
		}

		page, pageSize := parsePage(r, 20)
		notifications, total, err := svcCtx.NotificationModel.FindByUserID(r.Context(), userID, page, pageSize)
		if err != nil {
			response.FailWithCode(w, errorx.CodeDBError)
			return
		}

		list := make([]*types.NotificationData, 0, len(notifications))
		for _, n := range notifications {
			list = append(list, &types.NotificationData{
				NotificationID: n.NotificationID,
				Type:           n.Type,
				Message:        n.Message,
				RelatedClubID:  n.RelatedClubID,
				RelatedEventID: n.RelatedEventID,
				RelatedUserID:  n.RelatedUserID,
				IsRead:         n.IsRead,
				CreatedAt:      n.CreatedAt.Format(time.RFC3339),
			})
		}

		response.SuccessWithPage(w, list, total, int(page), int(pageSize))
	}
}

// UnreadCountHandler 未读数查询处理器
func UnreadCountHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, err := authUserID(r, svcCtx)
		if err != nil {
			response.Fail(w, err)
			return
		}

		count, err := svcCtx.NotificationModel.GetUnreadCount(r.Context(), userID)
		if err != nil {
			response.FailWithCode(w, errorx.CodeDBError)
			return
		}

		response.Success(w, types.UnreadCountData{Count: count})
	}
}

// markReadReq 标记已读请求
type markReadReq struct {
	NotificationIDs []string `json:"notification_ids"` // 为空时标记全部
}

// MarkReadHandler 标记已读处理器
// 已读后向用户的在线连接推送最新未读数
func MarkReadHandler(svcCtx *svc.ServiceContext, notify *logic.NotifyLogic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, err := authUserID(r, svcCtx)
		if err != nil {
			response.Fail(w, err)
			return
		}

		var req markReadReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.FailWithCode(w, errorx.CodeInvalidParams)
			return
		}

		var updated int64
		if len(req.NotificationIDs) == 0 {
			updated, err = svcCtx.NotificationModel.MarkAllAsRead(r.Context(), userID)
		} else {
			updated, err = svcCtx.NotificationModel.MarkAsRead(r.Context(), userID, req.NotificationIDs)
		}
		if err != nil {
			response.FailWithCode(w, errorx.CodeDBError)
			return
		}

		notify.PushUnreadCount(r.Context(), userID)

		response.Success(w, map[string]interface{}{"updated": updated})
	}
}

// DeleteNotificationHandler 删除通知处理器
// 仅允许删除属于自己的通知
func DeleteNotificationHandler(svcCtx *svc.ServiceContext, notify *logic.NotifyLogic) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, err := authUserID(r, svcCtx)
		if err != nil {
			response.Fail(w, err)
			return
		}

		notificationID := r.URL.Query().Get("notification_id")
		if notificationID == "" {
			response.FailWithCode(w, errorx.CodeInvalidParams)
			return
		}

		if err := svcCtx.NotificationModel.Delete(r.Context(), userID, notificationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.FailWithCode(w, errorx.CodeNotificationNotFound)
			} else {
				response.FailWithCode(w, errorx.CodeDBError)
			}
			return
		}

		notify.PushUnreadCount(r.Context(), userID)

		response.Success(w, nil)
	}
}
