package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"learnx_backend/internal/model"
	"learnx_backend/internal/repository"
	"learnx_backend/internal/util"

	"go.uber.org/zap"
)

const minQuestionLength = 5

// CompletionClient 外部大模型补全接口
type CompletionClient interface {
	Ask(ctx context.Context, question string, qaCtx QAContext) (string, error)
}

// TranscriptExtractor 外部视频转写接口，允许失败
type TranscriptExtractor interface {
	Extract(ctx context.Context, videoPath string) (string, error)
}

// VideoLocator 将存储对象名解析为本地文件路径，
// 对象存储后端返回空串表示无法在本机访问
type VideoLocator interface {
	LocalPath(key string) string
}

type QAService struct {
	ModuleRepo     *repository.ModuleRepository
	EnrollmentRepo *repository.EnrollmentRepository
	QuestionRepo   *repository.AIQuestionRepository
	Completion     CompletionClient
	Transcripts    TranscriptExtractor
	Videos         VideoLocator
	logger         *zap.Logger
}

func NewQAService(
	moduleRepo *repository.ModuleRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	questionRepo *repository.AIQuestionRepository,
	completion CompletionClient,
	transcripts TranscriptExtractor,
	videos VideoLocator,
	logger *zap.Logger,
) *QAService {
	return &QAService{
		ModuleRepo:     moduleRepo,
		EnrollmentRepo: enrollmentRepo,
		QuestionRepo:   questionRepo,
		Completion:     completion,
		Transcripts:    transcripts,
		Videos:         videos,
		logger:         logger,
	}
}

// AskQuestion 基于模块内容回答学生提问并持久化问答记录
// 转写失败仅降级为无字幕，不中断问答
func (s *QAService) AskQuestion(ctx context.Context, userID, moduleID uint, question string) (*model.AIQuestion, error) {
	question = strings.TrimSpace(question)
	if utf8.RuneCountInString(question) < minQuestionLength {
		return nil, util.ErrQuestionTooShort
	}

	module, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		return nil, util.ErrModuleNotFound
	}
	if _, err := s.EnrollmentRepo.FindByUserAndTrack(userID, module.TrackID); err != nil {
		return nil, util.ErrNotEnrolled
	}

	transcript := ""
	if s.Transcripts != nil && module.VideoKey != "" && module.VideoStatus == model.VideoReady {
		videoPath := ""
		if s.Videos != nil {
			videoPath = s.Videos.LocalPath(module.VideoKey)
		}
		if videoPath == "" {
			s.logger.Debug("视频不在本地磁盘，跳过字幕提取", zap.Uint("moduleId", moduleID))
		} else if text, err := s.Transcripts.Extract(ctx, videoPath); err != nil {
			s.logger.Warn("字幕提取失败，降级为仅用笔记回答",
				zap.Uint("moduleId", moduleID), zap.Error(err))
		} else {
			transcript = text
		}
	}

	answer, err := s.Completion.Ask(ctx, question, QAContext{
		Title:      module.Title,
		Notes:      module.Notes,
		Transcript: transcript,
	})
	if err != nil {
		s.logger.Error("AI问答调用失败", zap.Uint("moduleId", moduleID), zap.Error(err))
		return nil, util.ErrAIUnavailable
	}

	record := &model.AIQuestion{
		UserID:     userID,
		ModuleID:   moduleID,
		Question:   question,
		Answer:     answer,
		SourceType: deriveSourceType(transcript, module.Notes),
	}
	if err := record.SetCitationList(buildCitations(transcript, module.Notes)); err != nil {
		return nil, err
	}
	if err := s.QuestionRepo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

// History 返回用户在某模块下的历史提问
func (s *QAService) History(userID, moduleID uint, limit int) ([]model.AIQuestion, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.QuestionRepo.ListByUserAndModule(userID, moduleID, limit)
}

func deriveSourceType(transcript, notes string) model.QASourceType {
	hasTranscript := strings.TrimSpace(transcript) != ""
	hasNotes := strings.TrimSpace(notes) != ""
	switch {
	case hasTranscript && hasNotes:
		return model.SourceBoth
	case hasTranscript:
		return model.SourceTranscript
	default:
		return model.SourceNotes
	}
}

func buildCitations(transcript, notes string) []model.Citation {
	citations := make([]model.Citation, 0, 2)
	if strings.TrimSpace(transcript) != "" {
		citations = append(citations, model.Citation{Source: "transcript", Relevance: 0.9})
	}
	if strings.TrimSpace(notes) != "" {
		citations = append(citations, model.Citation{Source: "notes", Relevance: 0.7})
	}
	return citations
}
