package model

// Discussion 课程讨论，扁平存储，回复通过ParentID引用父条目
// swagger:model Discussion
type Discussion struct {
	BaseModel
	TrackID       uint   `gorm:"index;not null" json:"trackId"`
	ModuleID      *uint  `gorm:"index" json:"moduleId"`
	UserID        uint   `gorm:"index;not null" json:"userId"`
	ParentID      *uint  `gorm:"index" json:"parentId"`
	Content       string `gorm:"type:text;not null" json:"content"`
	AttachmentURL string `gorm:"size:255" json:"attachmentUrl"`
}

func (Discussion) TableName() string {
	return "discussions"
}
