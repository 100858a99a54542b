package service

import (
	"context"
	"errors"
	"testing"

	"learnx_backend/internal/model"
	"learnx_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCompletion struct {
	answer  string
	err     error
	calls   int
	lastCtx QAContext
}

func (s *stubCompletion) Ask(_ context.Context, _ string, qaCtx QAContext) (string, error) {
	s.calls++
	s.lastCtx = qaCtx
	return s.answer, s.err
}

type stubTranscripts struct {
	text     string
	err      error
	calls    int
	lastPath string
}

func (s *stubTranscripts) Extract(_ context.Context, videoPath string) (string, error) {
	s.calls++
	s.lastPath = videoPath
	return s.text, s.err
}

// stubLocator 模拟本地磁盘存储的对象寻址
type stubLocator struct {
	root string
}

func (s *stubLocator) LocalPath(key string) string {
	if s.root == "" {
		return ""
	}
	return s.root + "/" + key
}

type qaFixture struct {
	*testEnv
	completion  *stubCompletion
	transcripts *stubTranscripts
	qa          *QAService
	learner     *model.User
	module      *model.Module
}

func newQAFixture(t *testing.T, videoReady bool, notes string) *qaFixture {
	t.Helper()

	e := newTestEnv(t)
	creator := e.createUser(t, "creator", model.RoleCreator)
	track := e.createTrack(t, creator.ID, true)

	module := &model.Module{
		TrackID: track.ID,
		Title:   "接口与组合",
		Order:   1,
		Notes:   notes,
	}
	if videoReady {
		module.VideoURL = "/uploads/videos/2024/01/02/lesson.mp4"
		module.VideoKey = "videos/2024/01/02/lesson.mp4"
		module.VideoStatus = model.VideoReady
	}
	require.NoError(t, e.modules.Create(module))

	learner := e.createUser(t, "learner", model.RoleLearner)
	e.enroll(t, learner.ID, track.ID)

	completion := &stubCompletion{answer: "接口隐式实现，不需要声明"}
	transcripts := &stubTranscripts{text: "本节课讲接口的隐式实现"}
	qa := NewQAService(e.modules, e.enrollments, e.questions, completion, transcripts,
		&stubLocator{root: "/var/learnx/uploads"}, zap.NewNop())

	return &qaFixture{
		testEnv:     e,
		completion:  completion,
		transcripts: transcripts,
		qa:          qa,
		learner:     learner,
		module:      module,
	}
}

func TestAskQuestionValidation(t *testing.T) {
	f := newQAFixture(t, true, "接口笔记")
	ctx := context.Background()

	t.Run("question too short", func(t *testing.T) {
		_, err := f.qa.AskQuestion(ctx, f.learner.ID, f.module.ID, "为什么？")
		assert.ErrorIs(t, err, util.ErrQuestionTooShort)
	})

	t.Run("surrounding whitespace does not count", func(t *testing.T) {
		_, err := f.qa.AskQuestion(ctx, f.learner.ID, f.module.ID, "   为啥？   ")
		assert.ErrorIs(t, err, util.ErrQuestionTooShort)
	})

	t.Run("unknown module", func(t *testing.T) {
		_, err := f.qa.AskQuestion(ctx, f.learner.ID, 9999, "接口要怎么组合使用？")
		assert.ErrorIs(t, err, util.ErrModuleNotFound)
	})

	t.Run("not enrolled", func(t *testing.T) {
		outsider := f.createUser(t, "outsider", model.RoleLearner)
		_, err := f.qa.AskQuestion(ctx, outsider.ID, f.module.ID, "接口要怎么组合使用？")
		assert.ErrorIs(t, err, util.ErrNotEnrolled)
	})
}

func TestAskQuestionUsesTranscriptAndNotes(t *testing.T) {
	f := newQAFixture(t, true, "接口笔记")

	record, err := f.qa.AskQuestion(context.Background(), f.learner.ID, f.module.ID, "接口的隐式实现是什么意思？")
	require.NoError(t, err)
	assert.Equal(t, f.completion.answer, record.Answer)
	assert.Equal(t, model.SourceBoth, record.SourceType)

	citations := record.CitationList()
	require.Len(t, citations, 2)
	assert.Equal(t, "transcript", citations[0].Source)
	assert.Equal(t, 0.9, citations[0].Relevance)
	assert.Equal(t, "notes", citations[1].Source)
	assert.Equal(t, 0.7, citations[1].Relevance)

	assert.Equal(t, 1, f.transcripts.calls)
	// 转写拿到的是磁盘路径而不是对外URL
	assert.Equal(t, "/var/learnx/uploads/"+f.module.VideoKey, f.transcripts.lastPath)
	assert.Equal(t, f.transcripts.text, f.completion.lastCtx.Transcript)
	assert.Equal(t, f.module.Notes, f.completion.lastCtx.Notes)
	assert.Equal(t, f.module.Title, f.completion.lastCtx.Title)
}

func TestAskQuestionSkipsTranscriptForRemoteStorage(t *testing.T) {
	f := newQAFixture(t, true, "接口笔记")
	// 对象存储后端无本地路径可用
	f.qa.Videos = &stubLocator{}

	record, err := f.qa.AskQuestion(context.Background(), f.learner.ID, f.module.ID, "接口的隐式实现是什么意思？")
	require.NoError(t, err)
	assert.Equal(t, model.SourceNotes, record.SourceType)
	assert.Equal(t, 0, f.transcripts.calls)
}

func TestAskQuestionDegradesWhenTranscriptFails(t *testing.T) {
	f := newQAFixture(t, true, "接口笔记")
	f.transcripts.err = errors.New("whisper unreachable")

	record, err := f.qa.AskQuestion(context.Background(), f.learner.ID, f.module.ID, "接口的隐式实现是什么意思？")
	require.NoError(t, err)
	assert.Equal(t, model.SourceNotes, record.SourceType)

	citations := record.CitationList()
	require.Len(t, citations, 1)
	assert.Equal(t, "notes", citations[0].Source)
	assert.Empty(t, f.completion.lastCtx.Transcript)
}

func TestAskQuestionSkipsTranscriptWithoutVideo(t *testing.T) {
	f := newQAFixture(t, false, "接口笔记")

	record, err := f.qa.AskQuestion(context.Background(), f.learner.ID, f.module.ID, "接口的隐式实现是什么意思？")
	require.NoError(t, err)
	assert.Equal(t, model.SourceNotes, record.SourceType)
	assert.Equal(t, 0, f.transcripts.calls)
}

func TestAskQuestionTranscriptOnly(t *testing.T) {
	f := newQAFixture(t, true, "")

	record, err := f.qa.AskQuestion(context.Background(), f.learner.ID, f.module.ID, "接口的隐式实现是什么意思？")
	require.NoError(t, err)
	assert.Equal(t, model.SourceTranscript, record.SourceType)

	citations := record.CitationList()
	require.Len(t, citations, 1)
	assert.Equal(t, "transcript", citations[0].Source)
}

func TestAskQuestionCompletionFailure(t *testing.T) {
	f := newQAFixture(t, true, "接口笔记")
	f.completion.err = errors.New("upstream 500")

	_, err := f.qa.AskQuestion(context.Background(), f.learner.ID, f.module.ID, "接口的隐式实现是什么意思？")
	assert.ErrorIs(t, err, util.ErrAIUnavailable)

	// 失败的问答不落库
	history, err := f.qa.History(f.learner.ID, f.module.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestQAHistory(t *testing.T) {
	f := newQAFixture(t, true, "接口笔记")
	ctx := context.Background()

	_, err := f.qa.AskQuestion(ctx, f.learner.ID, f.module.ID, "第一个问题是什么？")
	require.NoError(t, err)
	_, err = f.qa.AskQuestion(ctx, f.learner.ID, f.module.ID, "第二个问题是什么？")
	require.NoError(t, err)

	history, err := f.qa.History(f.learner.ID, f.module.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// 新的在前
	assert.Equal(t, "第二个问题是什么？", history[0].Question)
	assert.Equal(t, "第一个问题是什么？", history[1].Question)

	history, err = f.qa.History(f.learner.ID, f.module.ID, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "第二个问题是什么？", history[0].Question)
}
