package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDisplayNamePrecedence(t *testing.T) {
	db := newTestDB(t)
	m := NewUserModel(db)
	ctx := context.Background()

	// 同一用户同时持有三类档案时，学生档案优先
	require.NoError(t, db.Create(&Student{UserID: 1, FullName: "学生张三"}).Error)
	require.NoError(t, db.Create(&Faculty{UserID: 1, FullName: "教师张三"}).Error)
	require.NoError(t, db.Create(&Admin{UserID: 1, FullName: "管理员张三"}).Error)
	assert.Equal(t, "学生张三", m.ResolveDisplayName(ctx, 1))

	// 无学生档案时教职工优先于管理员
	require.NoError(t, db.Create(&Faculty{UserID: 2, FullName: "教师李四"}).Error)
	require.NoError(t, db.Create(&Admin{UserID: 2, FullName: "管理员李四"}).Error)
	assert.Equal(t, "教师李四", m.ResolveDisplayName(ctx, 2))

	require.NoError(t, db.Create(&Admin{UserID: 3, FullName: "管理员王五"}).Error)
	assert.Equal(t, "管理员王五", m.ResolveDisplayName(ctx, 3))

	// 三类档案都没有时兜底
	assert.Equal(t, UnknownDisplayName, m.ResolveDisplayName(ctx, 404))
}

func TestIsAdmin(t *testing.T) {
	db := newTestDB(t)
	m := NewUserModel(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&Admin{UserID: 1, FullName: "管理员"}).Error)

	isAdmin, err := m.IsAdmin(ctx, 1)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = m.IsAdmin(ctx, 2)
	require.NoError(t, err)
	assert.False(t, isAdmin)
}
