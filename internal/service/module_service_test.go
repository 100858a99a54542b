package service

import (
	"testing"

	"learnx_backend/internal/model"
	"learnx_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newModuleService(e *testEnv) *ModuleService {
	return NewModuleService(e.tracks, e.modules, e.quizzes, nil, zap.NewNop())
}

func TestModuleAuthoring(t *testing.T) {
	e := newTestEnv(t)
	svc := newModuleService(e)

	creator := e.createUser(t, "creator", model.RoleCreator)
	stranger := e.createUser(t, "stranger", model.RoleCreator)
	track := e.createTrack(t, creator.ID, false)

	first, err := svc.Create(creator.ID, model.RoleCreator, track.ID, ModuleInput{Title: "入门", Order: 1, Notes: "概览"})
	require.NoError(t, err)

	t.Run("order must be unique within the track", func(t *testing.T) {
		_, err := svc.Create(creator.ID, model.RoleCreator, track.ID, ModuleInput{Title: "撞位", Order: 1})
		assert.ErrorIs(t, err, util.ErrModuleOrderConflict)
	})

	t.Run("only the track owner may author", func(t *testing.T) {
		_, err := svc.Create(stranger.ID, model.RoleCreator, track.ID, ModuleInput{Title: "插队", Order: 2})
		assert.ErrorIs(t, err, util.ErrPermissionDenied)

		_, err = svc.Update(stranger.ID, model.RoleCreator, first.ID, ModuleInput{Title: "篡改"})
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})

	t.Run("update keeps unset fields", func(t *testing.T) {
		updated, err := svc.Update(creator.ID, model.RoleCreator, first.ID, ModuleInput{Notes: "更详细的概览"})
		require.NoError(t, err)
		assert.Equal(t, "入门", updated.Title)
		assert.Equal(t, 1, updated.Order)
		assert.Equal(t, "更详细的概览", updated.Notes)
	})

	t.Run("modules list in order", func(t *testing.T) {
		_, err := svc.Create(creator.ID, model.RoleCreator, track.ID, ModuleInput{Title: "进阶", Order: 3})
		require.NoError(t, err)
		_, err = svc.Create(creator.ID, model.RoleCreator, track.ID, ModuleInput{Title: "实战", Order: 2})
		require.NoError(t, err)

		modules, err := svc.ListByTrack(track.ID)
		require.NoError(t, err)
		require.Len(t, modules, 3)
		assert.Equal(t, []string{"入门", "实战", "进阶"},
			[]string{modules[0].Title, modules[1].Title, modules[2].Title})
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(stranger.ID, model.RoleCreator, first.ID), util.ErrPermissionDenied)
		require.NoError(t, svc.Delete(creator.ID, model.RoleCreator, first.ID))
		_, err := svc.Get(first.ID)
		assert.ErrorIs(t, err, util.ErrModuleNotFound)
	})
}

func TestSaveQuiz(t *testing.T) {
	e := newTestEnv(t)
	svc := newModuleService(e)

	creator := e.createUser(t, "creator", model.RoleCreator)
	track := e.createTrack(t, creator.ID, false)
	module := e.createModules(t, track.ID, 1)[0]

	questions := sampleQuestions(3)

	quiz, err := svc.SaveQuiz(creator.ID, model.RoleCreator, module.ID, QuizInput{
		Title:     "摸底测验",
		Questions: questions,
	})
	require.NoError(t, err)
	assert.Equal(t, 70, quiz.PassingScore) // 未指定时用默认及格线
	assert.Len(t, quiz.QuestionList(), 3)

	// 再次保存覆盖同一份测验，不会新建
	replacement, err := svc.SaveQuiz(creator.ID, model.RoleCreator, module.ID, QuizInput{
		Title:        "正式测验",
		Questions:    sampleQuestions(5),
		PassingScore: 80,
	})
	require.NoError(t, err)
	assert.Equal(t, quiz.ID, replacement.ID)
	assert.Equal(t, "正式测验", replacement.Title)
	assert.Equal(t, 80, replacement.PassingScore)
	assert.Len(t, replacement.QuestionList(), 5)

	stored, err := e.quizzes.FindByModule(module.ID)
	require.NoError(t, err)
	assert.Equal(t, quiz.ID, stored.ID)

	t.Run("delete quiz", func(t *testing.T) {
		require.NoError(t, svc.DeleteQuiz(creator.ID, model.RoleCreator, module.ID))
		assert.ErrorIs(t, svc.DeleteQuiz(creator.ID, model.RoleCreator, module.ID), util.ErrQuizNotFound)
	})
}
