package model

import (
	"time"
)

// UserGamification 每个用户一行的成长档案
// swagger:model UserGamification
type UserGamification struct {
	BaseModel
	UserID           uint       `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`
	TotalXP          int        `gorm:"default:0" json:"totalXp"`
	Level            int        `gorm:"default:1" json:"level"`
	Rank             string     `gorm:"size:50;default:'Novice'" json:"rank"`
	CurrentStreak    int        `gorm:"default:0" json:"currentStreak"`
	LongestStreak    int        `gorm:"default:0" json:"longestStreak"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
}

func (UserGamification) TableName() string {
	return "user_gamifications"
}

// XPEvent 经验值流水
type XPEvent struct {
	BaseModel
	UserID      uint   `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Amount      int    `gorm:"not null" json:"amount"`
	Source      string `gorm:"size:50;not null" json:"source"` // streak / assessment / course / achievement
	Description string `gorm:"size:255" json:"description"`
}

func (XPEvent) TableName() string {
	return "xp_events"
}
