/**
 * @projectName: campus-events
 * @package: errorx
 * @className: codes
 * @description: 统一错误码定义
 * @version: 1.0
 */

package errorx

// 错误码规范：
// 0       - 成功
// 1xxx    - 通用错误
// 2xxx    - 认证/会话错误
// 3xxx    - 社团/成员错误
// 4xxx    - 活动聊天错误
// 5xxx    - 通知错误

const (
	CodeSuccess       = 0    // 成功
	CodeInternalError = 1000 // 内部服务器错误
	CodeInvalidParams = 1001 // 参数校验失败
	CodeNotFound      = 1004 // 资源不存在
	CodeDBError       = 1008 // 数据库错误

	// 认证/会话 2001-2099
	CodeLoginRequired        = 2001 // 需要登录
	CodeTokenInvalid         = 2002 // Token无效
	CodeTokenExpired         = 2003 // Token已过期
	CodeAlreadyAuthenticated = 2004 // 连接已绑定用户，不允许重复认证
	CodeForbidden            = 2005 // 禁止访问

	// 社团/成员 3001-3099
	CodeClubNotFound         = 3001 // 社团不存在
	CodeAlreadyInAnotherClub = 3002 // 已是其他社团的正式成员
	CodeDuplicateJoinRequest = 3003 // 已存在待处理的入团申请
	CodeNoPendingRequest     = 3004 // 不存在待处理的入团申请
	CodeOnlyLeader           = 3005 // 仅社长可执行该操作
	CodeLeaderCannotLeave    = 3006 // 社长不能退出自己的社团
	CodeNotClubMember        = 3007 // 不是该社团的正式成员
	CodeClubChatDenied       = 3008 // 无权在该社团聊天室发言

	// 活动聊天 4001-4099
	CodeEventNotFound    = 4001 // 活动不存在
	CodeChatClosed       = 4002 // 活动已结束，聊天室已关闭
	CodeChatAccessDenied = 4003 // 无权访问该聊天频道
	CodeEmptyMessage     = 4004 // 消息内容不能为空
	CodeInvalidChatType  = 4005 // 未知的聊天频道类型
	CodeReplyNotFound    = 4006 // 被回复的消息不存在或不在当前频道
	CodePersistFailed    = 4007 // 消息保存失败

	// 通知 5001-5099
	CodeNotificationNotFound = 5001 // 通知不存在
	CodeNotifyPersistFailed  = 5002 // 通知保存失败
)

// codeMessages 错误码对应的默认消息
var codeMessages = map[int]string{
	CodeSuccess:       "成功",
	CodeInternalError: "内部服务器错误",
	CodeInvalidParams: "参数校验失败",
	CodeNotFound:      "资源不存在",
	CodeDBError:       "数据库错误",

	CodeLoginRequired:        "请先认证",
	CodeTokenInvalid:         "Token 无效",
	CodeTokenExpired:         "Token 已过期",
	CodeAlreadyAuthenticated: "连接已认证，不允许重复认证",
	CodeForbidden:            "禁止访问",

	CodeClubNotFound:         "社团不存在",
	CodeAlreadyInAnotherClub: "已是其他社团的正式成员",
	CodeDuplicateJoinRequest: "已存在待处理的入团申请",
	CodeNoPendingRequest:     "不存在待处理的入团申请",
	CodeOnlyLeader:           "仅社长可执行该操作",
	CodeLeaderCannotLeave:    "社长不能退出自己的社团",
	CodeNotClubMember:        "不是该社团的正式成员",
	CodeClubChatDenied:       "无权在该社团聊天室发言",

	CodeEventNotFound:    "活动不存在",
	CodeChatClosed:       "活动已结束，聊天室已关闭",
	CodeChatAccessDenied: "无权访问该聊天频道",
	CodeEmptyMessage:     "消息内容不能为空",
	CodeInvalidChatType:  "未知的聊天频道类型",
	CodeReplyNotFound:    "被回复的消息不存在或不在当前频道",
	CodePersistFailed:    "消息保存失败",

	CodeNotificationNotFound: "通知不存在",
	CodeNotifyPersistFailed:  "通知保存失败",
}

// GetMessage 获取错误码对应的默认消息
func GetMessage(code int) string {
	if msg, ok := codeMessages[code]; ok {
		return msg
	}
	return "未知错误"
}
