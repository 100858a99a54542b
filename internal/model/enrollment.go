package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ModuleProgress 单个模块的进度条目
type ModuleProgress struct {
	Completed    bool       `json:"completed"`
	LastPosition *float64   `json:"lastPosition"` // 视频播放位置（秒），补齐条目为null
	UpdatedAt    *time.Time `json:"updatedAt"`
}

// Enrollment 学习者对某个Track的进度记录，(UserID, TrackID)唯一
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID           uint           `gorm:"not null;uniqueIndex:idx_user_track" json:"userId"`
	TrackID          uint           `gorm:"not null;uniqueIndex:idx_user_track" json:"trackId"`
	CompletedModules datatypes.JSON `json:"completedModules"` // 已完成模块ID列表
	ProgressData     datatypes.JSON `json:"progressData"`     // moduleId -> ModuleProgress
	Progress         int            `gorm:"default:0" json:"progress"` // 0-100
	Completed        bool           `gorm:"default:false" json:"completed"`
	LastModuleID     *uint          `json:"lastModuleId"`
	LastAccessed     time.Time      `json:"lastAccessed"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) CompletedList() []uint {
	var ids []uint
	if len(e.CompletedModules) > 0 {
		_ = json.Unmarshal(e.CompletedModules, &ids)
	}
	return ids
}

func (e *Enrollment) SetCompletedList(ids []uint) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	e.CompletedModules = datatypes.JSON(data)
	return nil
}

func (e *Enrollment) ProgressMap() map[string]ModuleProgress {
	progress := make(map[string]ModuleProgress)
	if len(e.ProgressData) > 0 {
		_ = json.Unmarshal(e.ProgressData, &progress)
	}
	return progress
}

func (e *Enrollment) SetProgressMap(progress map[string]ModuleProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	e.ProgressData = datatypes.JSON(data)
	return nil
}
