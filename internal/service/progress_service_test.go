package service

import (
	"strconv"
	"testing"

	"learnx_backend/internal/model"
	"learnx_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func float64Ptr(v float64) *float64 { return &v }

func TestRecordModuleProgress(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", model.RoleCreator)
	track := e.createTrack(t, creator.ID, true)
	modules := e.createModules(t, track.ID, 4)

	learner := e.createUser(t, "learner", model.RoleLearner)
	e.enroll(t, learner.ID, track.ID)

	// 逐个完成前三个模块，进度按比例上升，不发奖励
	wantProgress := []int{25, 50, 75}
	for i := 0; i < 3; i++ {
		update, err := e.progress.RecordModuleProgress(learner.ID, modules[i].ID, float64Ptr(120), true)
		require.NoError(t, err)
		assert.Equal(t, wantProgress[i], update.Progress)
		assert.False(t, update.Completed)
		assert.Equal(t, 0, update.XPAwarded)
	}
	assert.Equal(t, 0, e.userXP(t, learner.ID))

	// 最后一个模块把Track推到完成态，奖励一次50XP
	update, err := e.progress.RecordModuleProgress(learner.ID, modules[3].ID, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 100, update.Progress)
	assert.True(t, update.Completed)
	assert.Equal(t, 50, update.XPAwarded)
	assert.Equal(t, 50, e.userXP(t, learner.ID))

	unread, err := e.notifications.UnreadCount(learner.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, unread, int64(1))

	// 完成后重复上报不再发奖励
	update, err = e.progress.RecordModuleProgress(learner.ID, modules[3].ID, nil, true)
	require.NoError(t, err)
	assert.True(t, update.Completed)
	assert.Equal(t, 0, update.XPAwarded)
	assert.Equal(t, 50, e.userXP(t, learner.ID))

	enrollment, err := e.progress.GetEnrollmentProgress(learner.ID, track.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, enrollment.Progress)
	assert.Len(t, enrollment.CompletedList(), 4)
}

func TestEnrollmentFindOrCreateSurvivesConcurrentInsert(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", model.RoleCreator)
	track := e.createTrack(t, creator.ID, true)
	learner := e.createUser(t, "racer", model.RoleLearner)

	// 在本次插入执行前抢先写入同一行，复现两个同时上报进度的
	// 请求撞(user_id, track_id)唯一索引的时序
	injected := false
	err := e.db.Callback().Create().Before("gorm:begin_transaction").Register("rival_enroll", func(tx *gorm.DB) {
		if injected || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "enrollments" {
			return
		}
		injected = true
		rival := &model.Enrollment{UserID: learner.ID, TrackID: track.ID}
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Create(rival).Error)
	})
	require.NoError(t, err)
	defer e.db.Callback().Create().Remove("rival_enroll")

	enrollment, err := e.enrollments.FindOrCreate(learner.ID, track.ID)
	require.NoError(t, err)
	require.True(t, injected)
	assert.NotZero(t, enrollment.ID)

	// 回读到的是抢先写入的那一行，没有第二行产生
	var count int64
	require.NoError(t, e.db.Model(&model.Enrollment{}).
		Where("user_id = ? AND track_id = ?", learner.ID, track.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestModuleCompletionIsMonotonic(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", model.RoleCreator)
	track := e.createTrack(t, creator.ID, true)
	modules := e.createModules(t, track.ID, 2)

	learner := e.createUser(t, "learner", model.RoleLearner)
	e.enroll(t, learner.ID, track.ID)

	_, err := e.progress.RecordModuleProgress(learner.ID, modules[0].ID, float64Ptr(300), true)
	require.NoError(t, err)

	// 之后上报completed=false只更新播放位置，完成状态不回退
	update, err := e.progress.RecordModuleProgress(learner.ID, modules[0].ID, float64Ptr(12.5), false)
	require.NoError(t, err)
	assert.Equal(t, 50, update.Progress)

	enrollment, err := e.enrollments.FindByUserAndTrack(learner.ID, track.ID)
	require.NoError(t, err)
	entry := enrollment.ProgressMap()[strconv.FormatUint(uint64(modules[0].ID), 10)]
	assert.True(t, entry.Completed)
	require.NotNil(t, entry.LastPosition)
	assert.Equal(t, 12.5, *entry.LastPosition)
	assert.Equal(t, []uint{modules[0].ID}, enrollment.CompletedList())
}

func TestCompletionBackfillsMissingEntries(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", model.RoleCreator)
	track := e.createTrack(t, creator.ID, true)
	modules := e.createModules(t, track.ID, 2)

	learner := e.createUser(t, "learner", model.RoleLearner)
	enrollment := e.enroll(t, learner.ID, track.ID)

	// 历史数据：completedModules已含模块A，但progressData缺少对应条目
	require.NoError(t, enrollment.SetCompletedList([]uint{modules[0].ID}))
	require.NoError(t, e.enrollments.Update(enrollment))

	update, err := e.progress.RecordModuleProgress(learner.ID, modules[1].ID, float64Ptr(42), true)
	require.NoError(t, err)
	assert.Equal(t, 100, update.Progress)
	assert.True(t, update.Completed)

	enrollment, err = e.enrollments.FindByUserAndTrack(learner.ID, track.ID)
	require.NoError(t, err)
	progressMap := enrollment.ProgressMap()

	backfilled, ok := progressMap[strconv.FormatUint(uint64(modules[0].ID), 10)]
	require.True(t, ok)
	assert.True(t, backfilled.Completed)
	assert.Nil(t, backfilled.LastPosition)

	reported := progressMap[strconv.FormatUint(uint64(modules[1].ID), 10)]
	assert.True(t, reported.Completed)
	require.NotNil(t, reported.LastPosition)
	assert.Equal(t, []uint{modules[0].ID, modules[1].ID}, enrollment.CompletedList())
}

func TestDeletedModulesPrunedFromCompletion(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", model.RoleCreator)
	track := e.createTrack(t, creator.ID, true)
	modules := e.createModules(t, track.ID, 3)

	learner := e.createUser(t, "learner", model.RoleLearner)
	e.enroll(t, learner.ID, track.ID)

	update, err := e.progress.RecordModuleProgress(learner.ID, modules[0].ID, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 33, update.Progress)

	// 第三章下架后，进度以剩余两个模块为分母
	require.NoError(t, e.modules.Delete(modules[2].ID))

	update, err = e.progress.RecordModuleProgress(learner.ID, modules[1].ID, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 100, update.Progress)
	assert.True(t, update.Completed)

	// 完成集合只包含仍然存在的模块
	enrollment, err := e.enrollments.FindByUserAndTrack(learner.ID, track.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{modules[0].ID, modules[1].ID}, enrollment.CompletedList())
}

func TestCompleteModuleAddsBonusXP(t *testing.T) {
	e := newTestEnv(t)
	creator := e.createUser(t, "creator", model.RoleCreator)
	track := e.createTrack(t, creator.ID, true)
	modules := e.createModules(t, track.ID, 2)

	learner := e.createUser(t, "learner", model.RoleLearner)
	e.enroll(t, learner.ID, track.ID)

	update, err := e.progress.CompleteModule(learner.ID, modules[0].ID, 100)
	require.NoError(t, err)
	assert.Equal(t, 50, update.Progress)
	assert.Equal(t, 100, update.XPAwarded)
	assert.Equal(t, 100, e.userXP(t, learner.ID))
}

func TestProgressErrors(t *testing.T) {
	e := newTestEnv(t)
	learner := e.createUser(t, "learner", model.RoleLearner)

	_, err := e.progress.RecordModuleProgress(learner.ID, 424242, nil, true)
	assert.ErrorIs(t, err, util.ErrModuleNotFound)

	_, err = e.progress.GetEnrollmentProgress(learner.ID, 424242)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)
}
