package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleCreator UserRole = "creator"
	RoleLearner UserRole = "learner"
)

type UserStatus string

const (
	StatusActive  UserStatus = "active"
	StatusBanned  UserStatus = "banned"
	StatusPending UserStatus = "pending"
)

// swagger:model User
type User struct {
	BaseModel
	Name           string         `gorm:"size:100;not null" json:"name"`
	Email          string         `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password       string         `gorm:"size:100;not null" json:"-"`
	Role           UserRole       `gorm:"size:20;default:'learner'" json:"role"`
	Status         UserStatus     `gorm:"size:20;default:'active'" json:"status"`
	XP             int            `gorm:"default:0" json:"xp"` // 总经验值，只增不减
	StreakDays     int            `gorm:"default:0" json:"streakDays"`
	LastActiveDate *time.Time     `json:"lastActiveDate"`
	Badges         datatypes.JSON `json:"badges"` // 已获得徽章标识列表
	Avatar         string         `gorm:"size:255" json:"avatar"`
	Bio            string         `gorm:"size:500" json:"bio"`
	EmailVerified  bool           `gorm:"default:false" json:"emailVerified"`
	VerifyToken    string         `gorm:"size:64;index" json:"-"`
	ResetToken     string         `gorm:"size:64;index" json:"-"`
	ResetExpires   *time.Time     `json:"-"`
	LastLogin      *time.Time     `json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}

// BadgeList 解析徽章JSON列表，解析失败返回空列表
func (u *User) BadgeList() []string {
	var badges []string
	if len(u.Badges) > 0 {
		_ = json.Unmarshal(u.Badges, &badges)
	}
	return badges
}

func (u *User) SetBadgeList(badges []string) error {
	data, err := json.Marshal(badges)
	if err != nil {
		return err
	}
	u.Badges = datatypes.JSON(data)
	return nil
}
