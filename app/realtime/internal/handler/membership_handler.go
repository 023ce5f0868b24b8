package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"campus-events/app/realtime/internal/logic"
	"campus-events/app/realtime/internal/svc"
	"campus-events/common/errorx"
	"campus-events/common/response"
)

// joinClubReq 入团/退团请求
type joinClubReq struct {
	ClubID uint64 `json:"club_id"`
}

// processRequestReq 处理入团申请请求
type processRequestReq struct {
	ClubID uint64 `json:"club_id"`
	UserID uint64 `json:"user_id"` // 申请人
}

// JoinClubHandler 申请入团处理器
func JoinClubHandler(svcCtx *svc.ServiceContext, membership *logic.MembershipLogic) http.HandlerFunc {
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

		var req joinClubReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClubID == 0 {
			response.FailWithCode(w, errorx.CodeInvalidParams)
			return
		}

		if err := membership.RequestJoin(r.Context(), userID, req.ClubID); err != nil {
			response.Fail(w, err)
			return
		}
		response.Success(w, nil)
	}
}

// ApproveJoinHandler 批准入团处理器，仅社长可操作
func ApproveJoinHandler(svcCtx *svc.ServiceContext, membership *logic.MembershipLogic) http.HandlerFunc {
	return processJoinHandler(svcCtx, membership.Approve)
}

// RejectJoinHandler 拒绝入团处理器，仅社长可操作
func RejectJoinHandler(svcCtx *svc.ServiceContext, membership *logic.MembershipLogic) http.HandlerFunc {
	return processJoinHandler(svcCtx, membership.Reject)
}

// LeaveClubHandler 退出社团处理器
func LeaveClubHandler(svcCtx *svc.ServiceContext, membership *logic.MembershipLogic) http.HandlerFunc {
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

		var req joinClubReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClubID == 0 {
			response.FailWithCode(w, errorx.CodeInvalidParams)
			return
		}

		if err := membership.Leave(r.Context(), userID, req.ClubID); err != nil {
			response.Fail(w, err)
			return
		}
		response.Success(w, nil)
	}
}

// PendingRequestsHandler 待处理申请列表处理器，仅社长可查看
func PendingRequestsHandler(svcCtx *svc.ServiceContext, membership *logic.MembershipLogic) http.HandlerFunc {
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

		requests, err := membership.PendingRequests(r.Context(), userID, clubID)
		if err != nil {
			response.Fail(w, err)
			return
		}

		list := make([]map[string]interface{}, 0, len(requests))
		for _, req := range requests {
			list = append(list, map[string]interface{}{
				"user_id":      req.UserID,
				"user_name":    svcCtx.NameCache.GetDisplayName(r.Context(), req.UserID),
				"requested_at": req.RequestedAt.Format(time.RFC3339),
			})
		}
		response.Success(w, list)
	}
}

// processJoinHandler 批准/拒绝共用的处理流程
func processJoinHandler(svcCtx *svc.ServiceContext,
	process func(ctx context.Context, actorID, userID, clubID uint64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		actorID, err := authUserID(r, svcCtx)
		if err != nil {
			response.Fail(w, err)
			return
		}

		var req processRequestReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClubID == 0 || req.UserID == 0 {
			response.FailWithCode(w, errorx.CodeInvalidParams)
			return
		}

		if err := process(r.Context(), actorID, req.UserID, req.ClubID); err != nil {
			response.Fail(w, err)
			return
		}
		response.Success(w, nil)
	}
}
