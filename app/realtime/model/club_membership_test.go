package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestJoinLifecycle(t *testing.T) {
	db := newTestDB(t)
	m := NewClubMembershipModel(db)
	ctx := context.Background()

	// 首次申请产生 PENDING 记录
	require.NoError(t, m.RequestJoin(ctx, 1, 10))
	membership, err := m.FindOne(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, MembershipPending, membership.Status)
	assert.Nil(t, membership.ProcessedAt)
	assert.Nil(t, membership.ProcessedBy)

	// 重复申请被拒绝
	assert.ErrorIs(t, m.RequestJoin(ctx, 1, 10), ErrDuplicatePending)

	// 被拒绝后可以重新申请，记录翻回 PENDING 并清空处理信息
	require.NoError(t, m.Reject(ctx, 1, 10, 99))
	rejected, err := m.FindOne(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, MembershipRejected, rejected.Status)
	require.NotNil(t, rejected.ProcessedBy)
	assert.Equal(t, uint64(99), *rejected.ProcessedBy)

	require.NoError(t, m.RequestJoin(ctx, 1, 10))
	again, err := m.FindOne(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, MembershipPending, again.Status)
	assert.Nil(t, again.ProcessedAt)
	assert.Nil(t, again.ProcessedBy)
	// 翻转复用同一行，不产生重复记录
	assert.Equal(t, rejected.ID, again.ID)
}

func TestApproveEnforcesSingleClub(t *testing.T) {
	db := newTestDB(t)
	m := NewClubMembershipModel(db)
	ctx := context.Background()

	// 同一用户在两个社团各有一条待处理申请
	require.NoError(t, m.RequestJoin(ctx, 1, 10))
	require.NoError(t, m.RequestJoin(ctx, 1, 20))

	// 第一个批准成功
	require.NoError(t, m.Approve(ctx, 1, 10, 99))
	approved, err := m.FindApprovedClub(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), approved.ClubID)

	// 第二个批准必须失败，否则打破“一人一社团”约束
	assert.ErrorIs(t, m.Approve(ctx, 1, 20, 88), ErrAlreadyInClub)
	second, err := m.FindOne(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, MembershipPending, second.Status)
}

func TestApproveWithoutPending(t *testing.T) {
	db := newTestDB(t)
	m := NewClubMembershipModel(db)
	ctx := context.Background()

	assert.ErrorIs(t, m.Approve(ctx, 1, 10, 99), ErrNoPendingRequest)
	assert.ErrorIs(t, m.Reject(ctx, 1, 10, 99), ErrNoPendingRequest)
}

func TestRequestJoinBlockedByExistingMembership(t *testing.T) {
	db := newTestDB(t)
	m := NewClubMembershipModel(db)
	ctx := context.Background()

	require.NoError(t, m.RequestJoin(ctx, 1, 10))
	require.NoError(t, m.Approve(ctx, 1, 10, 99))

	// 已是正式成员后不能再申请任何社团
	assert.ErrorIs(t, m.RequestJoin(ctx, 1, 10), ErrAlreadyInClub)
	assert.ErrorIs(t, m.RequestJoin(ctx, 1, 20), ErrAlreadyInClub)
}

func TestLeaveClub(t *testing.T) {
	db := newTestDB(t)
	m := NewClubMembershipModel(db)
	ctx := context.Background()

	require.NoError(t, m.RequestJoin(ctx, 1, 10))
	require.NoError(t, m.Approve(ctx, 1, 10, 99))

	require.NoError(t, m.DeleteApproved(ctx, 1, 10))
	assert.ErrorIs(t, m.DeleteApproved(ctx, 1, 10), ErrNotMember)

	// 退出后可以重新申请
	require.NoError(t, m.RequestJoin(ctx, 1, 10))
}

func TestFindApprovedMemberIDs(t *testing.T) {
	db := newTestDB(t)
	m := NewClubMembershipModel(db)
	ctx := context.Background()

	for _, userID := range []uint64{1, 2, 3} {
		require.NoError(t, m.RequestJoin(ctx, userID, 10))
	}
	require.NoError(t, m.Approve(ctx, 1, 10, 99))
	require.NoError(t, m.Approve(ctx, 2, 10, 99))
	// 用户 3 保持 PENDING

	ids, err := m.FindApprovedMemberIDs(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{1, 2}, ids)
}
