package service

import (
	"testing"
	"time"

	"learnx_backend/internal/model"
	"learnx_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminService(e *testEnv) *AdminService {
	return NewAdminService(e.users, e.tracks, e.enrollments, e.invitations, e.notifications)
}

func TestSetUserStatus(t *testing.T) {
	e := newTestEnv(t)
	svc := newAdminService(e)

	learner := e.createUser(t, "learner", model.RoleLearner)
	admin := e.createUser(t, "admin", model.RoleAdmin)

	assert.ErrorIs(t, svc.SetUserStatus(9999, model.StatusBanned), util.ErrUserNotFound)

	// 管理员账号不能被封禁
	assert.ErrorIs(t, svc.SetUserStatus(admin.ID, model.StatusBanned), util.ErrPermissionDenied)

	require.NoError(t, svc.SetUserStatus(learner.ID, model.StatusBanned))
	banned, err := e.users.FindByID(learner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBanned, banned.Status)

	require.NoError(t, svc.SetUserStatus(learner.ID, model.StatusActive))
	restored, err := e.users.FindByID(learner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, restored.Status)
}

func TestListUsersByStatus(t *testing.T) {
	e := newTestEnv(t)
	svc := newAdminService(e)

	e.createUser(t, "active1", model.RoleLearner)
	e.createUser(t, "active2", model.RoleCreator)
	troublemaker := e.createUser(t, "troublemaker", model.RoleLearner)
	require.NoError(t, svc.SetUserStatus(troublemaker.ID, model.StatusBanned))

	users, total, err := svc.ListUsers(1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 3)

	users, total, err = svc.ListUsers(1, 20, string(model.StatusBanned))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, troublemaker.ID, users[0].ID)
}

func TestMintInvitation(t *testing.T) {
	e := newTestEnv(t)
	svc := newAdminService(e)

	code, err := svc.MintInvitation()
	require.NoError(t, err)
	assert.NotEmpty(t, code.Code)
	assert.False(t, code.IsUsed)
	require.NotNil(t, code.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(invitationTTL), *code.ExpiresAt, time.Minute)

	listed, err := svc.ListInvitations()
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, code.Code, listed[0].Code)
}

func TestPlatformStats(t *testing.T) {
	e := newTestEnv(t)
	svc := newAdminService(e)

	creator := e.createUser(t, "creator", model.RoleCreator)
	track := e.createTrack(t, creator.ID, true)
	e.createTrack(t, creator.ID, false)
	learner := e.createUser(t, "learner", model.RoleLearner)
	e.enroll(t, learner.ID, track.ID)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalTracks)
	assert.Equal(t, int64(1), stats.TotalEnrollments)
}

func TestAnnounce(t *testing.T) {
	e := newTestEnv(t)
	svc := newAdminService(e)

	alice := e.createUser(t, "alice", model.RoleLearner)
	bob := e.createUser(t, "bob", model.RoleLearner)

	svc.Announce([]uint{alice.ID, bob.ID}, "维护通知", "周六凌晨停机两小时")

	for _, userID := range []uint{alice.ID, bob.ID} {
		notifications, total, err := e.notifications.List(userID, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, notifications, 1)
		assert.Equal(t, model.NotifyAnnouncement, notifications[0].Type)
		assert.Equal(t, "维护通知", notifications[0].Title)
	}
}
