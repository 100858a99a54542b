package model

import "gorm.io/datatypes"

// QuizAttempt 一次判题记录，创建后不再修改
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	UserID  uint           `gorm:"index:idx_user_quiz;not null" json:"userId"`
	QuizID  uint           `gorm:"index:idx_user_quiz;not null" json:"quizId"`
	Answers datatypes.JSON `json:"answers"`
	Score   int            `gorm:"not null" json:"score"` // 0-100
	Passed  bool           `gorm:"not null" json:"passed"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
