package service

import (
	"testing"

	"learnx_backend/internal/model"
	"learnx_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(e *testEnv) *UserService {
	return NewUserService(e.users, e.enrollments, e.achievements, e.tracks, nil)
}

func TestGetProfile(t *testing.T) {
	e := newTestEnv(t)
	svc := newUserService(e)

	badge := e.addAchievement(t, "Rising Star", "badge_rising_star",
		model.AchievementCriteria{Type: model.CriteriaXP, Threshold: 100}, 0)

	user := e.createUser(t, "profiled", model.RoleLearner)
	require.NoError(t, e.users.UpdateXP(user.ID, 2500))
	_, err := e.achievements.Grant(user.ID, badge.ID)
	require.NoError(t, err)

	profile, err := svc.GetProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.User.ID)
	assert.Equal(t, 3, profile.Level.Level)
	assert.Equal(t, 500, profile.Level.LevelProgress)
	require.Len(t, profile.Achievements, 1)
	assert.Equal(t, badge.ID, profile.Achievements[0].AchievementID)

	_, err = svc.GetProfile(9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	e := newTestEnv(t)
	svc := newUserService(e)

	user := e.createUser(t, "renameme", model.RoleLearner)

	updated, err := svc.UpdateProfile(user.ID, ProfileInput{Bio: "爱好是写Go"})
	require.NoError(t, err)
	assert.Equal(t, "renameme", updated.Name)
	assert.Equal(t, "爱好是写Go", updated.Bio)

	updated, err = svc.UpdateProfile(user.ID, ProfileInput{Name: "新名字"})
	require.NoError(t, err)
	assert.Equal(t, "新名字", updated.Name)
	assert.Equal(t, "爱好是写Go", updated.Bio)
}

func TestChangePassword(t *testing.T) {
	e := newTestEnv(t)
	svc := newUserService(e)

	user := e.createUser(t, "secure", model.RoleLearner)
	hashed, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user.Password = string(hashed)
	require.NoError(t, e.users.Update(user))

	assert.ErrorIs(t, svc.ChangePassword(user.ID, "wrong-password", "new-password"), util.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(user.ID, "old-password", "new-password"))
	changed, err := e.users.FindByID(user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(changed.Password), []byte("new-password")))
}

func TestMyEnrollments(t *testing.T) {
	e := newTestEnv(t)
	svc := newUserService(e)

	creator := e.createUser(t, "creator", model.RoleCreator)
	first := e.createTrack(t, creator.ID, true)
	second := e.createTrack(t, creator.ID, true)

	learner := e.createUser(t, "learner", model.RoleLearner)
	e.enroll(t, learner.ID, first.ID)
	enrollment := e.enroll(t, learner.ID, second.ID)
	enrollment.Progress = 40
	require.NoError(t, e.enrollments.Update(enrollment))

	summaries, err := svc.MyEnrollments(learner.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byTrack := make(map[uint]EnrollmentSummary, len(summaries))
	for _, summary := range summaries {
		require.NotNil(t, summary.Track)
		byTrack[summary.Track.ID] = summary
	}
	assert.Equal(t, 0, byTrack[first.ID].Enrollment.Progress)
	assert.Equal(t, 40, byTrack[second.ID].Enrollment.Progress)
}
