package model

import (
	"encoding/json"
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID           uint             `gorm:"index:idx_enrollment_user_course,unique;type:bigint unsigned;not null" json:"userId"`
	CourseID         uint             `gorm:"index:idx_enrollment_user_course,unique;type:bigint unsigned;not null" json:"courseId"`
	Course           *Course          `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Progress         float64          `gorm:"default:0" json:"progress"` // 已完成模块百分比 0-100
	CompletedModules json.RawMessage  `gorm:"type:json" json:"completedModules"`
	Status           EnrollmentStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	CompletedAt      *time.Time       `json:"completedAt,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// swagger:model CourseRating
type CourseRating struct {
	BaseModel
	UserID   uint   `gorm:"index:idx_rating_user_course,unique;type:bigint unsigned;not null" json:"userId"`
	CourseID uint   `gorm:"index:idx_rating_user_course,unique;type:bigint unsigned;not null" json:"courseId"`
	Rating   int    `gorm:"not null" json:"rating"` // 1-5
	Review   string `gorm:"type:text" json:"review"`
}

func (CourseRating) TableName() string {
	return "course_ratings"
}
