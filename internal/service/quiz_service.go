package service

import (
	"encoding/json"
	"errors"

	"gorm.io/datatypes"

	"learnx_backend/internal/model"
	"learnx_backend/internal/repository"
	"learnx_backend/internal/util"
	"learnx_backend/pkg/monitoring"

	"gorm.io/gorm"
)

const defaultPassingScore = 70

type QuizService struct {
	QuizRepo       *repository.QuizRepository
	ModuleRepo     *repository.ModuleRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Progress       *ProgressService
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	moduleRepo *repository.ModuleRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progress *ProgressService,
) *QuizService {
	return &QuizService{
		QuizRepo:       quizRepo,
		ModuleRepo:     moduleRepo,
		EnrollmentRepo: enrollmentRepo,
		Progress:       progress,
	}
}

// GradeResult 判题结果
type GradeResult struct {
	Score          int   `json:"score"` // 0-100
	Passed         bool  `json:"passed"`
	CorrectAnswers []int `json:"correctAnswers"` // 每题的正确选项下标
}

// Grade 纯函数判题，无I/O。
// 题目为空时返回零分默认值；答案缺失或越界按答错处理，不报错。
func Grade(questions []model.QuizQuestion, answers []int, passingScore int) GradeResult {
	if len(questions) == 0 {
		return GradeResult{Score: 0, Passed: false, CorrectAnswers: []int{}}
	}
	if passingScore <= 0 {
		passingScore = defaultPassingScore
	}

	correctCount := 0
	correctAnswers := make([]int, len(questions))
	for i, question := range questions {
		correctAnswers[i] = question.CorrectAnswer
		if i < len(answers) && answers[i] == question.CorrectAnswer {
			correctCount++
		}
	}

	score := int(float64(correctCount)/float64(len(questions))*100 + 0.5)
	return GradeResult{
		Score:          score,
		Passed:         score >= passingScore,
		CorrectAnswers: correctAnswers,
	}
}

// SubmitResult 提交测验的完整结果，含进度与奖励
type SubmitResult struct {
	GradeResult
	Progress *ProgressUpdate `json:"progress,omitempty"`
}

// Submit 提交测验答案：判题、落库QuizAttempt，通过则走共享完成路径
// （标记模块完成 → 奖励XP → 评估成就），全程进程内调用。
func (s *QuizService) Submit(userID, quizID uint, answers []int) (*SubmitResult, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	module, err := s.ModuleRepo.FindByID(quiz.ModuleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	// 未加入课程的用户不能交卷
	if _, err := s.EnrollmentRepo.FindByUserAndTrack(userID, module.TrackID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}

	result := Grade(quiz.QuestionList(), answers, quiz.PassingScore)

	attempt := &model.QuizAttempt{
		UserID: userID,
		QuizID: quizID,
		Score:  result.Score,
		Passed: result.Passed,
	}
	if err := setAttemptAnswers(attempt, answers); err != nil {
		return nil, err
	}
	if err := s.QuizRepo.SaveAttempt(attempt); err != nil {
		return nil, err
	}

	if result.Passed {
		monitoring.QuizSubmissionCounter.WithLabelValues("passed").Inc()
	} else {
		monitoring.QuizSubmissionCounter.WithLabelValues("failed").Inc()
	}

	submit := &SubmitResult{GradeResult: result}

	if result.Passed {
		progress, err := s.Progress.CompleteModule(userID, quiz.ModuleID, quizPassXP)
		if err != nil {
			return nil, err
		}
		submit.Progress = progress
	}

	return submit, nil
}

func (s *QuizService) ListAttempts(userID, quizID uint) ([]model.QuizAttempt, error) {
	return s.QuizRepo.ListAttempts(userID, quizID)
}

func setAttemptAnswers(attempt *model.QuizAttempt, answers []int) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	attempt.Answers = datatypes.JSON(data)
	return nil
}
