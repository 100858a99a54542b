package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// 成就判定条件类型
const (
	CriteriaXP               = "xp"
	CriteriaTracksCompleted  = "tracks_completed"
	CriteriaModulesCompleted = "modules_completed"
	CriteriaQuizAttempts     = "quiz_attempts"
	CriteriaQuizzesPassed    = "quizzes_passed"
	CriteriaStreakDays       = "streak_days"
	CriteriaEnrollments      = "enrollments"
)

type AchievementCriteria struct {
	Type      string `json:"type"`
	Threshold int    `json:"threshold"`
}

// Achievement 可解锁成就，满足条件后奖励XP并授予徽章
// swagger:model Achievement
type Achievement struct {
	BaseModel
	Name        string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string         `gorm:"size:255" json:"description"`
	BadgeIcon   string         `gorm:"size:255" json:"badgeIcon"`
	Criteria    datatypes.JSON `json:"criteria"`
	XPReward    int            `gorm:"default:0" json:"xpReward"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (a *Achievement) CriteriaSpec() AchievementCriteria {
	var criteria AchievementCriteria
	if len(a.Criteria) > 0 {
		_ = json.Unmarshal(a.Criteria, &criteria)
	}
	return criteria
}

func (a *Achievement) SetCriteriaSpec(criteria AchievementCriteria) error {
	data, err := json.Marshal(criteria)
	if err != nil {
		return err
	}
	a.Criteria = datatypes.JSON(data)
	return nil
}

// UserAchievement 用户已获成就，(UserID, AchievementID)唯一防止重复授予
type UserAchievement struct {
	BaseModel
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"userId"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievementId"`
	EarnedAt      time.Time `json:"earnedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
