package model

// Review 课程评价，每个用户对同一Track只能评价一次
// swagger:model Review
type Review struct {
	BaseModel
	TrackID uint   `gorm:"not null;uniqueIndex:idx_track_user" json:"trackId"`
	UserID  uint   `gorm:"not null;uniqueIndex:idx_track_user" json:"userId"`
	Rating  int    `gorm:"not null" json:"rating"` // 1-5
	Comment string `gorm:"type:text" json:"comment"`
}

func (Review) TableName() string {
	return "reviews"
}
