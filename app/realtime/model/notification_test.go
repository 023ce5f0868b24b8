package model

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func insertNotification(t *testing.T, m NotificationModel, userID uint64) *Notification {
	t.Helper()
	n := &Notification{
		NotificationID: uuid.New().String(),
		UserID:         userID,
		Type:           NotifyTypeGeneral,
		Message:        "测试通知",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, m.Insert(context.Background(), n))
	return n
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	db := newTestDB(t)
	m := NewNotificationModel(db)
	ctx := context.Background()

	first := insertNotification(t, m, 1)
	insertNotification(t, m, 1)
	insertNotification(t, m, 2) // 其他用户的通知不计入

	count, err := m.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// 标记单条已读
	updated, err := m.MarkAsRead(ctx, 1, []string{first.NotificationID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	count, err = m.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 重复标记不再产生变更
	updated, err = m.MarkAsRead(ctx, 1, []string{first.NotificationID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	read, err := m.FindOne(ctx, first.NotificationID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.NotNil(t, read.ReadAt)
}

func TestMarkAllAsRead(t *testing.T) {
	db := newTestDB(t)
	m := NewNotificationModel(db)
	ctx := context.Background()

	insertNotification(t, m, 1)
	insertNotification(t, m, 1)
	insertNotification(t, m, 2)

	updated, err := m.MarkAllAsRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err := m.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// 其他用户不受影响
	count, err = m.GetUnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDeleteNotificationOwnership(t *testing.T) {
	db := newTestDB(t)
	m := NewNotificationModel(db)
	ctx := context.Background()

	n := insertNotification(t, m, 1)

	// 其他用户不能删除
	err := m.Delete(ctx, 2, n.NotificationID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, m.Delete(ctx, 1, n.NotificationID))
	_, err = m.FindOne(ctx, n.NotificationID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMarkReadOnlyOwnNotifications(t *testing.T) {
	db := newTestDB(t)
	m := NewNotificationModel(db)
	ctx := context.Background()

	other := insertNotification(t, m, 2)

	// 用用户 1 的身份标记用户 2 的通知不生效
	updated, err := m.MarkAsRead(ctx, 1, []string{other.NotificationID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}
