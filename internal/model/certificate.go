package model

import (
	"time"
)

// Certificate 结课证书，UserName/CourseTitle 为颁发时快照
// swagger:model Certificate
type Certificate struct {
	UUIDBase
	UserID      uint      `gorm:"index:idx_certificate_user_course,unique;type:bigint unsigned;not null" json:"userId"`
	CourseID    uint      `gorm:"index:idx_certificate_user_course,unique;type:bigint unsigned;not null" json:"courseId"`
	Serial      string    `gorm:"size:50;uniqueIndex;not null" json:"serial"`
	UserName    string    `gorm:"size:100;not null" json:"userName"`
	CourseTitle string    `gorm:"size:255;not null" json:"courseTitle"`
	IssuedAt    time.Time `json:"issuedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}
