package service

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"learnx_backend/internal/model"
	"learnx_backend/internal/repository"
	"learnx_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

var testDBSeq atomic.Int64

// newTestDB 每个用例独立的内存SQLite库。不写入种子数据，
// 成就定义等由各用例按需构造。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Track{},
		&model.Module{},
		&model.Quiz{},
		&model.QuizAttempt{},
		&model.Enrollment{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.Discussion{},
		&model.Review{},
		&model.Notification{},
		&model.AIQuestion{},
		&model.AdminInvitationCode{},
	))
	return db
}

type testEnv struct {
	db *gorm.DB

	users        *repository.UserRepository
	tracks       *repository.TrackRepository
	modules      *repository.ModuleRepository
	quizzes      *repository.QuizRepository
	enrollments  *repository.EnrollmentRepository
	achievements *repository.AchievementRepository
	reviews      *repository.ReviewRepository
	discussions  *repository.DiscussionRepository
	notifRepo    *repository.NotificationRepository
	questions    *repository.AIQuestionRepository
	invitations  *repository.InvitationRepository

	notifications *NotificationService
	gamification  *GamificationService
	progress      *ProgressService
	quiz          *QuizService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	e := &testEnv{
		db:           db,
		users:        repository.NewUserRepository(db),
		tracks:       repository.NewTrackRepository(db),
		modules:      repository.NewModuleRepository(db),
		quizzes:      repository.NewQuizRepository(db),
		enrollments:  repository.NewEnrollmentRepository(db),
		achievements: repository.NewAchievementRepository(db),
		reviews:      repository.NewReviewRepository(db),
		discussions:  repository.NewDiscussionRepository(db),
		notifRepo:    repository.NewNotificationRepository(db),
		questions:    repository.NewAIQuestionRepository(db),
		invitations:  repository.NewInvitationRepository(db),
	}

	// 无WebSocket连接、无Redis缓存的最小可用装配
	e.notifications = NewNotificationService(e.notifRepo, nil)
	e.gamification = NewGamificationService(e.achievements, e.users, e.enrollments, e.quizzes, e.notifications, nil)
	e.progress = NewProgressService(e.modules, e.enrollments, e.users, e.tracks, e.gamification, e.notifications, nil)
	e.quiz = NewQuizService(e.quizzes, e.modules, e.enrollments, e.progress)
	return e
}

func (e *testEnv) createUser(t *testing.T, name string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    name + "@test.local",
		Password: "placeholder",
		Role:     role,
		Status:   model.StatusActive,
	}
	require.NoError(t, e.users.Create(user))
	return user
}

func (e *testEnv) createTrack(t *testing.T, creatorID uint, published bool) *model.Track {
	t.Helper()
	track := &model.Track{
		CreatorID:   creatorID,
		Title:       "Go并发编程",
		Description: "从goroutine到channel",
		Category:    "backend",
		IsPublished: published,
	}
	require.NoError(t, e.tracks.Create(track))
	return track
}

func (e *testEnv) createModules(t *testing.T, trackID uint, count int) []model.Module {
	t.Helper()
	modules := make([]model.Module, count)
	for i := range modules {
		modules[i] = model.Module{
			TrackID: trackID,
			Title:   fmt.Sprintf("第%d章", i+1),
			Order:   i + 1,
			Notes:   "本章要点",
		}
		require.NoError(t, e.modules.Create(&modules[i]))
	}
	return modules
}

func (e *testEnv) enroll(t *testing.T, userID, trackID uint) *model.Enrollment {
	t.Helper()
	enrollment := &model.Enrollment{UserID: userID, TrackID: trackID}
	require.NoError(t, e.enrollments.Create(enrollment))
	return enrollment
}

func (e *testEnv) createQuiz(t *testing.T, moduleID uint, questions []model.QuizQuestion, passingScore int) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		ModuleID:     moduleID,
		Title:        "章节测验",
		PassingScore: passingScore,
	}
	require.NoError(t, quiz.SetQuestionList(questions))
	require.NoError(t, e.quizzes.Create(quiz))
	return quiz
}

func (e *testEnv) addAchievement(t *testing.T, name, icon string, criteria model.AchievementCriteria, xpReward int) *model.Achievement {
	t.Helper()
	achievement := &model.Achievement{
		Name:      name,
		BadgeIcon: icon,
		XPReward:  xpReward,
	}
	require.NoError(t, achievement.SetCriteriaSpec(criteria))
	require.NoError(t, e.db.Create(achievement).Error)
	return achievement
}

func (e *testEnv) userXP(t *testing.T, userID uint) int {
	t.Helper()
	user, err := e.users.FindByID(userID)
	require.NoError(t, err)
	return user.XP
}
