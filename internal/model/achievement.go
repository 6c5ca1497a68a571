package model

import (
	"time"
)

type AchievementCategory string

const (
	AchievementCourse  AchievementCategory = "course"
	AchievementStreak  AchievementCategory = "streak"
	AchievementTime    AchievementCategory = "time"
	AchievementQuiz    AchievementCategory = "quiz"
	AchievementSpecial AchievementCategory = "special"
)

// 成就达成条件的计量方式
const (
	RequirementCoursesCompleted = "courses_completed"
	RequirementStreakDays       = "streak_days"
	RequirementLearningHours    = "learning_hours"
	RequirementQuizzesTaken     = "quizzes_taken"
	RequirementPerfectScores    = "perfect_scores"
)

// swagger:model Achievement
type Achievement struct {
	BaseModel
	Name             string              `gorm:"size:100;unique;not null" json:"name"`
	Description      string              `gorm:"size:255" json:"description"`
	Icon             string              `gorm:"size:100" json:"icon"`
	Category         AchievementCategory `gorm:"type:varchar(20);default:'special'" json:"category"`
	RequirementType  string              `gorm:"size:50;not null" json:"requirementType"`
	RequirementValue int                 `gorm:"default:1" json:"requirementValue"`
	XPReward         int                 `gorm:"default:0" json:"xpReward"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement 用户成就进度，解锁后写入 UnlockedAt
type UserAchievement struct {
	BaseModel
	UserID        uint         `gorm:"index:idx_user_achievement,unique;type:bigint unsigned;not null" json:"userId"`
	AchievementID uint         `gorm:"index:idx_user_achievement,unique;type:bigint unsigned;not null" json:"achievementId"`
	Achievement   *Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
	Progress      int          `gorm:"default:0" json:"progress"`
	UnlockedAt    *time.Time   `json:"unlockedAt,omitempty"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
