package model

import (
	"encoding/json"
)

type QuestionDifficulty string

const (
	QuestionEasy   QuestionDifficulty = "easy"
	QuestionMedium QuestionDifficulty = "medium"
	QuestionHard   QuestionDifficulty = "hard"
)

// Option 单个选项，Options 列内按数组存储
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// swagger:model Question
type Question struct {
	BaseModel
	AssessmentID  uint               `gorm:"index;type:bigint unsigned;not null" json:"assessmentId"`
	Text          string             `gorm:"type:text;not null" json:"text"`
	Options       json.RawMessage    `gorm:"type:json" json:"options"` // JSON: []Option
	SkillCategory string             `gorm:"size:100" json:"skillCategory"`
	Difficulty    QuestionDifficulty `gorm:"type:varchar(20);default:'medium'" json:"difficulty"`
	Points        int                `gorm:"default:1" json:"points"`
	Explanation   string             `gorm:"type:text" json:"explanation"`
	Order         int                `gorm:"default:0" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}

// ParsedOptions 解码 Options 列，解码失败时返回空切片
func (q *Question) ParsedOptions() []Option {
	var opts []Option
	if len(q.Options) == 0 {
		return opts
	}
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}
