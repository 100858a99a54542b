package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// QuizQuestion 单选题，CorrectAnswer为正确选项下标
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Quiz 每个Module最多一个测验
// swagger:model Quiz
type Quiz struct {
	BaseModel
	ModuleID     uint           `gorm:"uniqueIndex;not null" json:"moduleId"`
	Title        string         `gorm:"size:255" json:"title"`
	Questions    datatypes.JSON `json:"questions"`
	PassingScore int            `gorm:"default:70" json:"passingScore"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (q *Quiz) QuestionList() []QuizQuestion {
	var questions []QuizQuestion
	if len(q.Questions) > 0 {
		_ = json.Unmarshal(q.Questions, &questions)
	}
	return questions
}

func (q *Quiz) SetQuestionList(questions []QuizQuestion) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	q.Questions = datatypes.JSON(data)
	return nil
}
