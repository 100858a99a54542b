package database

import (
	"fmt"
	"log"
	"time"

	"learnx_backend/internal/config"
	"learnx_backend/internal/model"
	"learnx_backend/internal/util"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate 执行表结构迁移并初始化种子数据
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
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
	)
	if err != nil {
		return err
	}

	seedAchievements(db)
	seedInvitationCode(db)
	return nil
}

// 默认成就定义：按插入顺序评估，决定同时解锁时展示哪一个
func seedAchievements(db *gorm.DB) {
	var count int64
	db.Model(&model.Achievement{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []struct {
		name        string
		description string
		icon        string
		criteria    model.AchievementCriteria
		xpReward    int
	}{
		{"First Steps", "加入第一门课程", "badge_first_steps", model.AchievementCriteria{Type: model.CriteriaEnrollments, Threshold: 1}, 10},
		{"Getting Started", "完成第一个模块", "badge_getting_started", model.AchievementCriteria{Type: model.CriteriaModulesCompleted, Threshold: 1}, 25},
		{"Quiz Rookie", "完成第一次测验", "badge_quiz_rookie", model.AchievementCriteria{Type: model.CriteriaQuizAttempts, Threshold: 1}, 25},
		{"Quiz Master", "通过10次测验", "badge_quiz_master", model.AchievementCriteria{Type: model.CriteriaQuizzesPassed, Threshold: 10}, 100},
		{"Course Finisher", "完成第一门课程", "badge_course_finisher", model.AchievementCriteria{Type: model.CriteriaTracksCompleted, Threshold: 1}, 100},
		{"Dedicated Learner", "完成5门课程", "badge_dedicated_learner", model.AchievementCriteria{Type: model.CriteriaTracksCompleted, Threshold: 5}, 250},
		{"Week Warrior", "连续学习7天", "badge_week_warrior", model.AchievementCriteria{Type: model.CriteriaStreakDays, Threshold: 7}, 75},
		{"Marathon", "连续学习30天", "badge_marathon", model.AchievementCriteria{Type: model.CriteriaStreakDays, Threshold: 30}, 300},
		{"Rising Star", "累计1000经验值", "badge_rising_star", model.AchievementCriteria{Type: model.CriteriaXP, Threshold: 1000}, 50},
		{"Legend", "累计10000经验值", "badge_legend", model.AchievementCriteria{Type: model.CriteriaXP, Threshold: 10000}, 500},
	}

	for _, d := range defaults {
		achievement := &model.Achievement{
			Name:        d.name,
			Description: d.description,
			BadgeIcon:   d.icon,
			XPReward:    d.xpReward,
		}
		if err := achievement.SetCriteriaSpec(d.criteria); err != nil {
			continue
		}
		db.Create(achievement)
	}
}

// 首次启动生成一个管理员邀请码，打印到日志供部署者使用
func seedInvitationCode(db *gorm.DB) {
	var count int64
	db.Model(&model.AdminInvitationCode{}).Count(&count)
	if count > 0 {
		return
	}

	expires := time.Now().Add(7 * 24 * time.Hour)
	code := &model.AdminInvitationCode{
		Code:      model.GenerateUUID(),
		ExpiresAt: &expires,
	}
	if err := db.Create(code).Error; err == nil {
		log.Printf("Initial admin invitation code: %s (expires %s)", code.Code, expires.Format(util.DateFormat))
	}
}
