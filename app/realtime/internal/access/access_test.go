package access

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campus-events/app/realtime/model"
)

func newTestEvaluator(t *testing.T) (*Evaluator, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Student{}, &model.Faculty{}, &model.Admin{},
		&model.EventParticipation{}, &model.ClubMembership{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	evaluator := NewEvaluator(
		model.NewUserModel(db),
		model.NewEventParticipationModel(db),
		model.NewClubMembershipModel(db),
	)
	return evaluator, db
}

func addParticipant(t *testing.T, db *gorm.DB, userID, eventID uint64, role string) {
	t.Helper()
	require.NoError(t, db.Create(&model.EventParticipation{
		UserID:    userID,
		EventID:   eventID,
		Role:      role,
		CreatedAt: time.Now(),
	}).Error)
}

func TestEventChatRoleMatrix(t *testing.T) {
	evaluator, db := newTestEvaluator(t)
	ctx := context.Background()

	const eventID = 100
	addParticipant(t, db, 1, eventID, model.RoleOrganizer)
	addParticipant(t, db, 2, eventID, model.RoleVolunteer)
	addParticipant(t, db, 3, eventID, model.RoleAttendee)

	cases := []struct {
		name     string
		userID   uint64
		chatType string
		want     bool
	}{
		{"组织者进组织者频道", 1, model.ChatTypeOrganizerAdmin, true},
		{"组织者进志愿者频道", 1, model.ChatTypeOrganizerVolunteer, true},
		{"组织者进全员频道", 1, model.ChatTypeAttendeeOnly, true},
		{"志愿者进组织者频道", 2, model.ChatTypeOrganizerAdmin, false},
		{"志愿者进志愿者频道", 2, model.ChatTypeOrganizerVolunteer, true},
		{"志愿者进全员频道", 2, model.ChatTypeAttendeeOnly, true},
		{"参与者进组织者频道", 3, model.ChatTypeOrganizerAdmin, false},
		{"参与者进志愿者频道", 3, model.ChatTypeOrganizerVolunteer, false},
		{"参与者进全员频道", 3, model.ChatTypeAttendeeOnly, true},
		{"未报名用户进全员频道", 4, model.ChatTypeAttendeeOnly, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, evaluator.CanJoinEventChat(ctx, tc.userID, eventID, tc.chatType))
		})
	}
}

func TestAdminBypassesRoleMatrix(t *testing.T) {
	evaluator, db := newTestEvaluator(t)
	ctx := context.Background()

	// 管理员没有报名记录也可以访问全部频道
	require.NoError(t, db.Create(&model.Admin{UserID: 9, FullName: "管理员"}).Error)

	for _, chatType := range []string{
		model.ChatTypeOrganizerAdmin,
		model.ChatTypeOrganizerVolunteer,
		model.ChatTypeAttendeeOnly,
	} {
		assert.True(t, evaluator.CanJoinEventChat(ctx, 9, 100, chatType), chatType)
	}
}

func TestInvalidChatTypeDenied(t *testing.T) {
	evaluator, db := newTestEvaluator(t)
	ctx := context.Background()

	addParticipant(t, db, 1, 100, model.RoleOrganizer)

	assert.False(t, evaluator.CanJoinEventChat(ctx, 1, 100, "secret_channel"))
	assert.False(t, evaluator.CanJoinEventChat(ctx, 1, 100, ""))
}

func TestClubChatRequiresApprovedMembership(t *testing.T) {
	evaluator, db := newTestEvaluator(t)
	ctx := context.Background()

	membershipModel := model.NewClubMembershipModel(db)
	require.NoError(t, membershipModel.RequestJoin(ctx, 1, 10))

	// PENDING 不可发言
	assert.False(t, evaluator.CanPostClubChat(ctx, 1, 10))

	// APPROVED 立即可发言
	require.NoError(t, membershipModel.Approve(ctx, 1, 10, 99))
	assert.True(t, evaluator.CanPostClubChat(ctx, 1, 10))

	// 退出后立即失效
	require.NoError(t, membershipModel.DeleteApproved(ctx, 1, 10))
	assert.False(t, evaluator.CanPostClubChat(ctx, 1, 10))

	// 无任何记录
	assert.False(t, evaluator.CanPostClubChat(ctx, 2, 10))
}
