package model

import (
	"time"
)

type RoadmapStatus string

const (
	RoadmapActive    RoadmapStatus = "active"
	RoadmapCompleted RoadmapStatus = "completed"
	RoadmapArchived  RoadmapStatus = "archived"
)

type StepStatus string

const (
	StepNotStarted StepStatus = "not_started"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
)

// swagger:model Roadmap
type Roadmap struct {
	BaseModel
	UserID      uint          `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Goal        string        `gorm:"size:255" json:"goal"`
	TargetDate  *time.Time    `json:"targetDate,omitempty"`
	Status      RoadmapStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	Steps       []RoadmapStep `gorm:"foreignKey:RoadmapID" json:"steps,omitempty"`
}

func (Roadmap) TableName() string {
	return "roadmaps"
}

// swagger:model RoadmapStep
type RoadmapStep struct {
	BaseModel
	RoadmapID      uint       `gorm:"index;type:bigint unsigned;not null" json:"roadmapId"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	Order          int        `gorm:"default:0" json:"order"`
	Status         StepStatus `gorm:"type:varchar(20);default:'not_started'" json:"status"`
	ResourceURL    string     `gorm:"size:500" json:"resourceUrl"`
	EstimatedHours int        `gorm:"default:0" json:"estimatedHours"`
}

func (RoadmapStep) TableName() string {
	return "roadmap_steps"
}
