package model

type VideoStatus string

const (
	VideoProcessing VideoStatus = "processing"
	VideoReady      VideoStatus = "ready"
	VideoFailed     VideoStatus = "failed"
)

// Module 课程内的内容单元，按Order排序，视频和笔记均可选
// swagger:model Module
type Module struct {
	BaseModel
	TrackID       uint        `gorm:"not null;uniqueIndex:idx_track_order" json:"trackId"`
	Title         string      `gorm:"size:255;not null" json:"title"`
	Order         int         `gorm:"not null;uniqueIndex:idx_track_order" json:"order"`
	VideoURL      string      `gorm:"size:255" json:"videoUrl"`
	VideoKey      string      `gorm:"size:255" json:"-"` // 存储对象名，区别于对外URL
	VideoStatus   VideoStatus `gorm:"size:20" json:"videoStatus"`
	VideoDuration float64     `gorm:"default:0" json:"videoDuration"` // 秒
	Notes         string      `gorm:"type:text" json:"notes"`
}

func (Module) TableName() string {
	return "modules"
}
