package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"learnx_backend/internal/model"
	"learnx_backend/internal/repository"
	"learnx_backend/pkg/logger"
	"learnx_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	// XP奖励解锁新成就时最多重复评估的轮数，防止自我触发导致死循环
	maxAchievementPasses = 5

	globalLeaderboardSize  = 100
	trackLeaderboardSize   = 20
	leaderboardCacheKey    = "leaderboard:global"
	leaderboardCacheExpiry = time.Minute
	xpPerLevel             = 1000
)

type GamificationService struct {
	AchievementRepo *repository.AchievementRepository
	UserRepo        *repository.UserRepository
	EnrollmentRepo  *repository.EnrollmentRepository
	QuizRepo        *repository.QuizRepository
	Notifications   *NotificationService
	Redis           *redis.Client

	userLocks sync.Map // userID -> *sync.Mutex，成就评估按用户串行
}

func NewGamificationService(
	achievementRepo *repository.AchievementRepository,
	userRepo *repository.UserRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	quizRepo *repository.QuizRepository,
	notifications *NotificationService,
	rdb *redis.Client,
) *GamificationService {
	return &GamificationService{
		AchievementRepo: achievementRepo,
		UserRepo:        userRepo,
		EnrollmentRepo:  enrollmentRepo,
		QuizRepo:        quizRepo,
		Notifications:   notifications,
		Redis:           rdb,
	}
}

type LevelInfo struct {
	Level         int `json:"level"`
	LevelProgress int `json:"levelProgress"`
	NextLevelXP   int `json:"nextLevelXp"`
}

// CalculateLevel 等级为纯函数：每1000XP升一级
func CalculateLevel(xp int) LevelInfo {
	if xp < 0 {
		xp = 0
	}
	level := xp/xpPerLevel + 1
	return LevelInfo{
		Level:         level,
		LevelProgress: xp % xpPerLevel,
		NextLevelXP:   level * xpPerLevel,
	}
}

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID uint   `json:"userId"`
	Name   string `json:"name"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
	Avatar string `json:"avatar,omitempty"`
}

type TrackLeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   uint   `json:"userId"`
	Name     string `json:"name"`
	Progress int    `json:"progress"`
}

// userStats 成就条件评估所需的聚合状态
type userStats struct {
	XP               int
	TracksCompleted  int64
	ModulesCompleted int64
	QuizAttempts     int64
	QuizzesPassed    int64
	StreakDays       int
	Enrollments      int64
}

func (s *GamificationService) lockUser(userID uint) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *GamificationService) loadStats(userID uint) (*model.User, *userStats, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, nil, err
	}

	tracksCompleted, err := s.EnrollmentRepo.CountCompletedByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	modulesCompleted, err := s.EnrollmentRepo.CountModulesCompletedByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	quizAttempts, err := s.QuizRepo.CountAttemptsByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	quizzesPassed, err := s.QuizRepo.CountPassedByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	enrollments, err := s.EnrollmentRepo.CountByUser(userID)
	if err != nil {
		return nil, nil, err
	}

	return user, &userStats{
		XP:               user.XP,
		TracksCompleted:  tracksCompleted,
		ModulesCompleted: modulesCompleted,
		QuizAttempts:     quizAttempts,
		QuizzesPassed:    quizzesPassed,
		StreakDays:       user.StreakDays,
		Enrollments:      enrollments,
	}, nil
}

func criteriaSatisfied(criteria model.AchievementCriteria, stats *userStats) bool {
	threshold := int64(criteria.Threshold)
	switch criteria.Type {
	case model.CriteriaXP:
		return int64(stats.XP) >= threshold
	case model.CriteriaTracksCompleted:
		return stats.TracksCompleted >= threshold
	case model.CriteriaModulesCompleted:
		return stats.ModulesCompleted >= threshold
	case model.CriteriaQuizAttempts:
		return stats.QuizAttempts >= threshold
	case model.CriteriaQuizzesPassed:
		return stats.QuizzesPassed >= threshold
	case model.CriteriaStreakDays:
		return int64(stats.StreakDays) >= threshold
	case model.CriteriaEnrollments:
		return stats.Enrollments >= threshold
	default:
		return false
	}
}

// CheckAchievements 评估用户所有未获得的成就，满足条件的依次授予。
// XP奖励可能解锁更多XP门槛成就，因此循环评估至不再有新授予，
// 轮数上限 maxAchievementPasses。返回本次新授予的成就（按评估顺序）。
func (s *GamificationService) CheckAchievements(userID uint) ([]model.Achievement, error) {
	mu := s.lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	definitions, err := s.AchievementRepo.ListAll()
	if err != nil {
		return nil, err
	}

	var granted []model.Achievement

	for pass := 0; pass < maxAchievementPasses; pass++ {
		_, stats, err := s.loadStats(userID)
		if err != nil {
			return granted, err
		}

		earned, err := s.AchievementRepo.ListEarnedByUser(userID)
		if err != nil {
			return granted, err
		}
		earnedSet := make(map[uint]bool, len(earned))
		for _, e := range earned {
			earnedSet[e.AchievementID] = true
		}

		grantedThisPass := 0
		for i := range definitions {
			def := definitions[i]
			if earnedSet[def.ID] {
				continue
			}
			if !criteriaSatisfied(def.CriteriaSpec(), stats) {
				continue
			}

			created, err := s.AchievementRepo.Grant(userID, def.ID)
			if err != nil {
				return granted, err
			}
			if !created {
				// 并发触发下另一请求已授予
				continue
			}

			if def.XPReward > 0 {
				if err := s.UserRepo.UpdateXP(userID, def.XPReward); err != nil {
					return granted, err
				}
				stats.XP += def.XPReward
			}
			if err := s.appendBadge(userID, def.BadgeIcon); err != nil {
				logger.Log.Error("append badge failed", zap.Error(err), zap.Uint("userId", userID))
			}

			monitoring.AchievementCounter.Inc()
			granted = append(granted, def)
			grantedThisPass++

			if s.Notifications != nil {
				s.Notifications.Notify(userID, model.NotifyAchievement,
					"成就解锁",
					def.Name+": "+def.Description,
					map[string]interface{}{"achievementId": def.ID, "badgeIcon": def.BadgeIcon, "xpReward": def.XPReward})
			}
		}

		if grantedThisPass == 0 {
			break
		}
	}

	if len(granted) > 0 {
		s.invalidateLeaderboard()
	}

	return granted, nil
}

// appendBadge 唯一追加徽章标识
func (s *GamificationService) appendBadge(userID uint, badge string) error {
	if badge == "" {
		return nil
	}
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return err
	}
	badges := user.BadgeList()
	for _, b := range badges {
		if b == badge {
			return nil
		}
	}
	badges = append(badges, badge)
	if err := user.SetBadgeList(badges); err != nil {
		return err
	}
	return s.UserRepo.UpdateBadges(userID, user.Badges)
}

// UpdateStreak 按日更新连续学习天数。同一天内重复调用为幂等。
func (s *GamificationService) UpdateStreak(userID uint) (int, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return 0, err
	}

	today := truncateToDay(time.Now())

	streak := 1
	if user.LastActiveDate != nil {
		last := truncateToDay(*user.LastActiveDate)
		days := int(today.Sub(last).Hours() / 24)
		switch {
		case days == 0:
			return user.StreakDays, nil
		case days == 1:
			streak = user.StreakDays + 1
		}
	}

	if err := s.UserRepo.UpdateStreak(userID, streak, today); err != nil {
		return 0, err
	}
	return streak, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// GlobalLeaderboard 全站前100名，按XP降序。结果短时间缓存在Redis。
func (s *GamificationService) GlobalLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, leaderboardCacheKey).Bytes()
		if err == nil {
			var entries []LeaderboardEntry
			if json.Unmarshal(cached, &entries) == nil {
				return entries, nil
			}
		}
	}

	users, err := s.UserRepo.FindTopByXP(globalLeaderboardSize)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, user := range users {
		entries[i] = LeaderboardEntry{
			Rank:   i + 1,
			UserID: user.ID,
			Name:   user.Name,
			XP:     user.XP,
			Level:  CalculateLevel(user.XP).Level,
			Avatar: user.Avatar,
		}
	}

	if s.Redis != nil {
		if data, err := json.Marshal(entries); err == nil {
			s.Redis.Set(ctx, leaderboardCacheKey, data, leaderboardCacheExpiry)
		}
	}

	return entries, nil
}

// TrackLeaderboard 课程内排行：已加入的用户按进度降序，限前20名
func (s *GamificationService) TrackLeaderboard(trackID uint) ([]TrackLeaderboardEntry, error) {
	enrollments, err := s.EnrollmentRepo.ListByTrackTopProgress(trackID, trackLeaderboardSize)
	if err != nil {
		return nil, err
	}

	entries := make([]TrackLeaderboardEntry, 0, len(enrollments))
	for i, enrollment := range enrollments {
		user, err := s.UserRepo.FindByID(enrollment.UserID)
		if err != nil {
			continue
		}
		entries = append(entries, TrackLeaderboardEntry{
			Rank:     i + 1,
			UserID:   user.ID,
			Name:     user.Name,
			Progress: enrollment.Progress,
		})
	}
	return entries, nil
}

func (s *GamificationService) invalidateLeaderboard() {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), leaderboardCacheKey).Err(); err != nil {
		logger.Log.Warn("leaderboard cache invalidation failed", zap.Error(err))
	}
}
