package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type QASourceType string

const (
	SourceTranscript QASourceType = "transcript"
	SourceNotes      QASourceType = "notes"
	SourceBoth       QASourceType = "both"
)

// Citation AI回答的引用来源
type Citation struct {
	Source    string  `json:"source"` // transcript 或 notes
	Relevance float64 `json:"relevance"`
}

// AIQuestion AI问答记录，只追加不修改
// swagger:model AIQuestion
type AIQuestion struct {
	BaseModel
	UserID     uint           `gorm:"index;not null" json:"userId"`
	ModuleID   uint           `gorm:"index;not null" json:"moduleId"`
	Question   string         `gorm:"type:text;not null" json:"question"`
	Answer     string         `gorm:"type:text" json:"answer"`
	Citations  datatypes.JSON `json:"citations"`
	SourceType QASourceType   `gorm:"size:20" json:"sourceType"`
}

func (AIQuestion) TableName() string {
	return "ai_questions"
}

func (q *AIQuestion) CitationList() []Citation {
	var citations []Citation
	if len(q.Citations) > 0 {
		_ = json.Unmarshal(q.Citations, &citations)
	}
	return citations
}

func (q *AIQuestion) SetCitationList(citations []Citation) error {
	data, err := json.Marshal(citations)
	if err != nil {
		return err
	}
	q.Citations = datatypes.JSON(data)
	return nil
}
