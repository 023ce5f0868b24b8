package errorx

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewUsesDefaultMessage(t *testing.T) {
	err := New(CodeClubNotFound)
	assert.Equal(t, CodeClubNotFound, err.GetCode())
	assert.Equal(t, GetMessage(CodeClubNotFound), err.GetMessage())
}

func TestIsMatchesWrappedBizError(t *testing.T) {
	err := New(CodeChatAccessDenied)
	wrapped := errors.Wrap(err, "处理消息失败")

	assert.True(t, Is(wrapped, CodeChatAccessDenied))
	assert.False(t, Is(wrapped, CodeChatClosed))
	assert.False(t, Is(nil, CodeChatClosed))
	assert.False(t, Is(errors.New("普通错误"), CodeChatClosed))
}

func TestFromErrorMapsUnknownToInternal(t *testing.T) {
	assert.Nil(t, FromError(nil))

	biz := FromError(New(CodeEmptyMessage))
	assert.Equal(t, CodeEmptyMessage, biz.Code)

	unknown := FromError(errors.New("数据库连不上"))
	assert.Equal(t, CodeInternalError, unknown.Code)
	// 内部错误细节不外泄
	assert.Equal(t, GetMessage(CodeInternalError), unknown.Message)
}

func TestWrapKeepsCodeAndContext(t *testing.T) {
	err := Wrap(CodeDBError, errors.New("connection refused"))
	assert.Equal(t, CodeDBError, err.Code)
	assert.Contains(t, err.Message, "connection refused")

	assert.Equal(t, CodeDBError, Wrap(CodeDBError, nil).Code)
}
