package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"campus-events/app/realtime/internal/svc"
	"campus-events/app/realtime/internal/types"
	"campus-events/app/realtime/model"
	"campus-events/common/errorx"
	"campus-events/common/response"
)

// EventChatHistoryHandler 活动聊天历史处理器
// 访问规则与实时频道一致：按角色矩阵判定，无权限的频道连历史也不可见
func EventChatHistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
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

		eventID, err := strconv.ParseUint(r.URL.Query().Get("event_id"), 10, 64)
		if err != nil || eventID == 0 {
			response.FailWithCode(w, errorx.CodeInvalidParams)
			return
		}
		chatType := r.URL.Query().Get("chat_type")
		if !model.ValidChatType(chatType) {
			response.FailWithCode(w, errorx.CodeInvalidChatType)
			return
		}

		if _, err := svcCtx.EventModel.FindOne(r.Context(), eventID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.FailWithCode(w, errorx.CodeEventNotFound)
			} else {
				response.FailWithCode(w, errorx.CodeDBError)
			}
			return
		}

		if !svcCtx.Access.CanJoinEventChat(r.Context(), userID, eventID, chatType) {
			response.FailWithCode(w, errorx.CodeChatAccessDenied)
			return
		}

		page, pageSize := parsePage(r, svcCtx.Config.WebSocket.HistoryPageSize)
		messages, total, err := svcCtx.EventChatModel.FindByEventChat(r.Context(), eventID, chatType, page, pageSize)
		if err != nil {
			response.FailWithCode(w, errorx.CodeDBError)
			return
		}

		list := make([]*types.EventMessageData, 0, len(messages))
		for _, m := range messages {
			item := &types.EventMessageData{
				ID:         m.ID,
				EventID:    m.EventID,
				SenderID:   m.SenderID,
				SenderName: svcCtx.NameCache.GetDisplayName(r.Context(), m.SenderID),
				Message:    m.Message,
				ChatType:   m.ChatType,
				Timestamp:  m.Timestamp.Format(time.RFC3339),
				ReplyToID:  m.ReplyToID,
			}
			// 补全被回复消息的摘要
			if m.ReplyToID != nil {
				if replied, err := svcCtx.EventChatModel.FindOne(r.Context(), *m.ReplyToID); err == nil {
					item.ReplyToMessage = &types.ReplyPreview{
						ID:         replied.ID,
						SenderName: svcCtx.NameCache.GetDisplayName(r.Context(), replied.SenderID),
						Message:    replied.Message,
					}
				}
			}
			list = append(list, item)
		}

		response.SuccessWithPage(w, list, total, int(page), int(pageSize))
	}
}

// ClubChatHistoryHandler 社团聊天历史处理器
// 仅正式成员可见
func ClubChatHistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
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

		clubID, err := strconv.ParseUint(r.URL.Query().Get("club_id"), 10, 64)
		if err != nil || clubID == 0 {
			response.FailWithCode(w, errorx.CodeInvalidParams)
			return
		}

		club, err := svcCtx.ClubModel.FindOne(r.Context(), clubID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.FailWithCode(w, errorx.CodeClubNotFound)
			} else {
				response.FailWithCode(w, errorx.CodeDBError)
			}
			return
		}

		if !svcCtx.Access.CanPostClubChat(r.Context(), userID, clubID) {
			response.FailWithCode(w, errorx.CodeNotClubMember)
			return
		}

		limit := int32(svcCtx.Config.WebSocket.HistoryPageSize)
		if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32); err == nil && v > 0 && v <= 200 {
			limit = int32(v)
		}

		messages, err := svcCtx.ClubChatModel.FindByClubID(r.Context(), clubID, limit)
		if err != nil {
			response.FailWithCode(w, errorx.CodeDBError)
			return
		}

		list := make([]*types.ClubMessageData, 0, len(messages))
		for _, m := range messages {
			list = append(list, &types.ClubMessageData{
				ID:         m.ID,
				ClubID:     m.ClubID,
				SenderID:   m.SenderID,
				SenderName: svcCtx.NameCache.GetDisplayName(r.Context(), m.SenderID),
				IsLeader:   club.LeaderID == m.SenderID,
				Message:    m.Message,
				SentAt:     m.SentAt.Format(time.RFC3339),
			})
		}

		response.Success(w, list)
	}
}

// parsePage 解析分页参数
func parsePage(r *http.Request, defaultSize int) (int32, int32) {
	page := int32(1)
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}
	pageSize := int32(defaultSize)
	if pageSize <= 0 {
		pageSize = 50
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32); err == nil && v > 0 && v <= 200 {
		pageSize = int32(v)
	}
	return page, pageSize
}
