package model

import (
	"encoding/json"
)

type AssessmentStatus string

const (
	AssessmentDraft     AssessmentStatus = "draft"
	AssessmentPublished AssessmentStatus = "published"
	AssessmentArchived  AssessmentStatus = "archived"
)

// swagger:model Assessment
type Assessment struct {
	BaseModel
	Title           string           `gorm:"size:255;not null" json:"title"`
	Description     string           `gorm:"type:text" json:"description"`
	Field           string           `gorm:"size:100" json:"field"`
	SkillsAssessed  json.RawMessage  `gorm:"type:json" json:"skillsAssessed"` // JSON: []string
	Difficulty      CourseDifficulty `gorm:"type:varchar(20);default:'beginner'" json:"difficulty"`
	DurationMinutes int              `gorm:"default:30" json:"durationMinutes"`
	PassingScore    int              `gorm:"default:70" json:"passingScore"`
	Status          AssessmentStatus `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	CreatedByID     uint             `gorm:"index;type:bigint unsigned" json:"createdById"`
	CreatedBy       *User            `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	Questions       []Question       `gorm:"foreignKey:AssessmentID" json:"questions,omitempty"`

	// 统计快照，由统计刷新步骤整体覆写
	TotalAttempts int             `gorm:"default:0" json:"totalAttempts"`
	AverageScore  float64         `gorm:"default:0" json:"averageScore"`
	TopSkillGaps  json.RawMessage `gorm:"type:json" json:"topSkillGaps"` // JSON: []SkillGap
}

func (Assessment) TableName() string {
	return "assessments"
}
