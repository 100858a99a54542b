package model

// Track 课程，由创作者拥有，发布后才对学习者可见
// swagger:model Track
type Track struct {
	BaseModel
	CreatorID   uint     `gorm:"index;not null" json:"creatorId"`
	Title       string   `gorm:"size:255;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Category    string   `gorm:"size:100;index" json:"category"`
	CoverURL    string   `gorm:"size:255" json:"coverUrl"`
	Rating      float64  `gorm:"default:0" json:"rating"` // 由评价聚合得出
	ReviewCount int      `gorm:"default:0" json:"reviewCount"`
	IsPublished bool     `gorm:"default:false;index" json:"isPublished"`
	Modules     []Module `gorm:"foreignKey:TrackID" json:"modules,omitempty"`
}

func (Track) TableName() string {
	return "tracks"
}
