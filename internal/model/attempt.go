package model

import (
	"encoding/json"
	"time"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

// SkillScore 单次答题中某项技能的得分率，按题目首次出现顺序存储
type SkillScore struct {
	Skill string  `json:"skill"`
	Score float64 `json:"score"`
}

// SkillGap 技能差距（100 - 平均得分率）
type SkillGap struct {
	Skill         string  `json:"skill"`
	GapPercentage float64 `json:"gapPercentage"`
}

// swagger:model Attempt
type Attempt struct {
	BaseModel
	UserID       uint            `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	User         *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AssessmentID uint            `gorm:"index;type:bigint unsigned;not null" json:"assessmentId"`
	Assessment   *Assessment     `gorm:"foreignKey:AssessmentID" json:"assessment,omitempty"`
	Status       AttemptStatus   `gorm:"type:varchar(20);default:'in_progress';index" json:"status"`
	Score        float64         `gorm:"default:0" json:"score"`
	Passed       bool            `gorm:"default:false" json:"passed"`
	TimeTaken    int             `gorm:"default:0" json:"timeTaken"` // 秒
	Answers      json.RawMessage `gorm:"type:json" json:"answers"`   // JSON: map[questionID]optionIndex
	SkillScores  json.RawMessage `gorm:"type:json" json:"skillScores"` // JSON: []SkillScore，提交时落库，之后不再重算
	StartedAt    time.Time       `json:"startedAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// ParsedSkillScores 解码技能得分快照
func (a *Attempt) ParsedSkillScores() []SkillScore {
	var scores []SkillScore
	if len(a.SkillScores) == 0 {
		return scores
	}
	if err := json.Unmarshal(a.SkillScores, &scores); err != nil {
		return nil
	}
	return scores
}
