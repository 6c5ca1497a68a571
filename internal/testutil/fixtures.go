package testutil

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"

	"eduai_backend/internal/model"

	"gorm.io/gorm"
)

var seq atomic.Int64

func nextSeq() int64 {
	return seq.Add(1)
}

func MustJSON(tb testing.TB, v interface{}) json.RawMessage {
	tb.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		tb.Fatalf("marshal fixture: %v", err)
	}
	return raw
}

func SeedUser(tb testing.TB, db *gorm.DB, email string, role model.UserRole) *model.User {
	tb.Helper()
	u := &model.User{
		Name:     "Test User",
		Email:    email,
		Password: "$2a$10$fixturehashfixturehashfixturehashfixtureha",
		Role:     role,
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCategory(tb testing.TB, db *gorm.DB, name string) *model.Category {
	tb.Helper()
	c := &model.Category{
		Name: name,
		Slug: fmt.Sprintf("category-%d", nextSeq()),
	}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedCourse(tb testing.TB, db *gorm.DB, instructorID, categoryID uint, status model.CourseStatus) *model.Course {
	tb.Helper()
	n := nextSeq()
	c := &model.Course{
		Title:        fmt.Sprintf("课程 %d", n),
		Slug:         fmt.Sprintf("course-%d", n),
		Description:  "测试课程",
		CategoryID:   categoryID,
		InstructorID: instructorID,
		Difficulty:   model.DifficultyBeginner,
		Status:       status,
	}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedModule(tb testing.TB, db *gorm.DB, courseID uint, order int) *model.CourseModule {
	tb.Helper()
	m := &model.CourseModule{
		CourseID:    courseID,
		Title:       fmt.Sprintf("章节 %d", order),
		Order:       order,
		ContentType: model.ModuleArticle,
	}
	if err := db.Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedAssessment(tb testing.TB, db *gorm.DB, createdByID uint, status model.AssessmentStatus, passingScore int) *model.Assessment {
	tb.Helper()
	a := &model.Assessment{
		Title:           fmt.Sprintf("测评 %d", nextSeq()),
		Field:           "backend",
		SkillsAssessed:  MustJSON(tb, []string{"math", "logic"}),
		Difficulty:      model.DifficultyBeginner,
		DurationMinutes: 30,
		PassingScore:    passingScore,
		Status:          status,
		CreatedByID:     createdByID,
	}
	if err := db.Create(a).Error; err != nil {
		tb.Fatalf("seed assessment: %v", err)
	}
	return a
}

// SeedQuestion 造一道三选项单选题，correctIdx 指定正确选项下标
func SeedQuestion(tb testing.TB, db *gorm.DB, assessmentID uint, skill string, points, correctIdx, order int) *model.Question {
	tb.Helper()
	opts := make([]model.Option, 3)
	for i := range opts {
		opts[i] = model.Option{Text: fmt.Sprintf("选项 %d", i+1), IsCorrect: i == correctIdx}
	}
	q := &model.Question{
		AssessmentID:  assessmentID,
		Text:          fmt.Sprintf("题目 %d", order),
		Options:       MustJSON(tb, opts),
		SkillCategory: skill,
		Points:        points,
		Order:         order,
	}
	if err := db.Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}
