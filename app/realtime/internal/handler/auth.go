package handler

import (
	"errors"
	"net/http"
	"strings"

	"campus-events/app/realtime/internal/svc"
	"campus-events/common/errorx"
)

// authUserID 从 Authorization 头解析用户ID
// 格式：Authorization: Bearer <token>
func authUserID(r *http.Request, svcCtx *svc.ServiceContext) (uint64, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return 0, errorx.New(errorx.CodeLoginRequired)
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return 0, errorx.New(errorx.CodeTokenInvalid)
	}

	userID, err := svcCtx.TokenAuth.ParseToken(token)
	if err != nil {
		if errors.Is(err, svc.ErrExpiredToken) {
			return 0, errorx.New(errorx.CodeTokenExpired)
		}
		return 0, errorx.New(errorx.CodeTokenInvalid)
	}
	return userID, nil
}
