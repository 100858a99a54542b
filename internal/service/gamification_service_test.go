package service

import (
	"context"
	"testing"
	"time"

	"learnx_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateLevel(t *testing.T) {
	cases := []struct {
		xp       int
		level    int
		progress int
		next     int
	}{
		{0, 1, 0, 1000},
		{999, 1, 999, 1000},
		{1000, 2, 0, 2000},
		{2500, 3, 500, 3000},
		{-10, 1, 0, 1000},
	}
	for _, c := range cases {
		info := CalculateLevel(c.xp)
		assert.Equal(t, c.level, info.Level, "xp=%d", c.xp)
		assert.Equal(t, c.progress, info.LevelProgress, "xp=%d", c.xp)
		assert.Equal(t, c.next, info.NextLevelXP, "xp=%d", c.xp)
	}
}

func TestUpdateStreak(t *testing.T) {
	e := newTestEnv(t)
	user := e.createUser(t, "streaker", model.RoleLearner)

	streak, err := e.gamification.UpdateStreak(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	// 同一天内重复调用幂等
	streak, err = e.gamification.UpdateStreak(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	setLastActive := func(daysAgo, streakDays int) {
		u, err := e.users.FindByID(user.ID)
		require.NoError(t, err)
		when := time.Now().AddDate(0, 0, -daysAgo)
		u.LastActiveDate = &when
		u.StreakDays = streakDays
		require.NoError(t, e.users.Update(u))
	}

	setLastActive(1, 3)
	streak, err = e.gamification.UpdateStreak(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, streak)

	// 中断后重置为1
	setLastActive(3, 5)
	streak, err = e.gamification.UpdateStreak(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}

func TestStreakAndBadgeWritesAreColumnScoped(t *testing.T) {
	e := newTestEnv(t)
	user := e.createUser(t, "grinder", model.RoleLearner)

	// 模拟竞争：另一个请求在旧快照落库前完成了XP累加
	snapshot, err := e.users.FindByID(user.ID)
	require.NoError(t, err)
	require.NoError(t, e.users.UpdateXP(user.ID, 300))

	require.NoError(t, e.users.UpdateStreak(snapshot.ID, snapshot.StreakDays+1, time.Now()))
	require.NoError(t, snapshot.SetBadgeList([]string{"badge_first_steps"}))
	require.NoError(t, e.users.UpdateBadges(snapshot.ID, snapshot.Badges))

	fresh, err := e.users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, fresh.XP) // XP只增不减，不被旧快照写回
	assert.Equal(t, 1, fresh.StreakDays)
	assert.Equal(t, []string{"badge_first_steps"}, fresh.BadgeList())
}

func TestCheckAchievements(t *testing.T) {
	e := newTestEnv(t)
	first := e.addAchievement(t, "Rising Star", "badge_rising_star",
		model.AchievementCriteria{Type: model.CriteriaXP, Threshold: 100}, 50)
	second := e.addAchievement(t, "Climber", "badge_climber",
		model.AchievementCriteria{Type: model.CriteriaXP, Threshold: 130}, 0)

	user := e.createUser(t, "climber", model.RoleLearner)
	require.NoError(t, e.users.UpdateXP(user.ID, 100))

	// 第一个成就的XP奖励把用户推过第二个成就的门槛
	granted, err := e.gamification.CheckAchievements(user.ID)
	require.NoError(t, err)
	require.Len(t, granted, 2)
	assert.Equal(t, first.ID, granted[0].ID)
	assert.Equal(t, second.ID, granted[1].ID)
	assert.Equal(t, 150, e.userXP(t, user.ID))

	updated, err := e.users.FindByID(user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"badge_rising_star", "badge_climber"}, updated.BadgeList())

	unread, err := e.notifications.UnreadCount(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	// 重复评估不会重复授予
	granted, err = e.gamification.CheckAchievements(user.ID)
	require.NoError(t, err)
	assert.Empty(t, granted)
	assert.Equal(t, 150, e.userXP(t, user.ID))
}

func TestCheckAchievementsEnrollmentCriteria(t *testing.T) {
	e := newTestEnv(t)
	e.addAchievement(t, "First Steps", "badge_first_steps",
		model.AchievementCriteria{Type: model.CriteriaEnrollments, Threshold: 1}, 10)

	creator := e.createUser(t, "creator", model.RoleCreator)
	track := e.createTrack(t, creator.ID, true)
	learner := e.createUser(t, "learner", model.RoleLearner)

	granted, err := e.gamification.CheckAchievements(learner.ID)
	require.NoError(t, err)
	assert.Empty(t, granted)

	e.enroll(t, learner.ID, track.ID)

	granted, err = e.gamification.CheckAchievements(learner.ID)
	require.NoError(t, err)
	require.Len(t, granted, 1)
	assert.Equal(t, "First Steps", granted[0].Name)
	assert.Equal(t, 10, e.userXP(t, learner.ID))
}

func TestGlobalLeaderboard(t *testing.T) {
	e := newTestEnv(t)
	alice := e.createUser(t, "alice", model.RoleLearner)
	bob := e.createUser(t, "bob", model.RoleLearner)
	carol := e.createUser(t, "carol", model.RoleLearner)
	require.NoError(t, e.users.UpdateXP(alice.ID, 500))
	require.NoError(t, e.users.UpdateXP(bob.ID, 1500))
	require.NoError(t, e.users.UpdateXP(carol.ID, 200))

	entries, err := e.gamification.GlobalLeaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, bob.ID, entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[0].Level)
	assert.Equal(t, alice.ID, entries[1].UserID)
	assert.Equal(t, carol.ID, entries[2].UserID)
}

func TestTrackLeaderboard(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", model.RoleCreator)
	track := e.createTrack(t, creator.ID, true)

	progresses := map[string]int{"dana": 30, "erin": 80, "frank": 50}
	for name, progress := range progresses {
		user := e.createUser(t, name, model.RoleLearner)
		enrollment := e.enroll(t, user.ID, track.ID)
		enrollment.Progress = progress
		require.NoError(t, e.enrollments.Update(enrollment))
	}

	entries, err := e.gamification.TrackLeaderboard(track.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "erin", entries[0].Name)
	assert.Equal(t, 80, entries[0].Progress)
	assert.Equal(t, "frank", entries[1].Name)
	assert.Equal(t, "dana", entries[2].Name)
	assert.Equal(t, 3, entries[2].Rank)
}
