package service

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"eduai_backend/internal/config"
	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
	"eduai_backend/internal/testutil"
	"eduai_backend/internal/util"

	"gorm.io/gorm"
)

func newAssessmentService(t *testing.T) (*gorm.DB, *AssessmentService, *GamificationService) {
	t.Helper()
	db := testutil.DB(t)
	gamRepo := repository.NewGamificationRepository(db)
	gam := NewGamificationService(gamRepo, nil, &config.Config{})
	ach := NewAchievementService(
		repository.NewAchievementRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewEnrollmentRepository(db),
		gamRepo,
		gam,
	)
	svc := NewAssessmentService(
		repository.NewAssessmentRepository(db),
		repository.NewAttemptRepository(db),
		gam,
		ach,
	)
	return db, svc, gam
}

func answerKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestCreateAssessment_Defaults(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)

	a, err := svc.CreateAssessment(creator.ID, AssessmentRequest{Title: "Go 基础"})
	if err != nil {
		t.Fatalf("create assessment: %v", err)
	}
	if a.Status != model.AssessmentDraft {
		t.Errorf("status = %q, want draft", a.Status)
	}
	if a.Difficulty != model.DifficultyBeginner {
		t.Errorf("difficulty = %q, want beginner", a.Difficulty)
	}
	if a.DurationMinutes != 30 {
		t.Errorf("duration = %d, want 30", a.DurationMinutes)
	}
	if a.PassingScore != 70 {
		t.Errorf("passing score = %d, want 70", a.PassingScore)
	}

	score := 85
	b, err := svc.CreateAssessment(creator.ID, AssessmentRequest{Title: "Go 进阶", PassingScore: &score})
	if err != nil {
		t.Fatalf("create assessment: %v", err)
	}
	if b.PassingScore != 85 {
		t.Errorf("passing score = %d, want 85", b.PassingScore)
	}
}

func TestPublishAssessment_RequiresQuestions(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentDraft, 70)

	if _, err := svc.PublishAssessment(creator.ID, model.Instructor, a.ID); !errors.Is(err, util.ErrAssessmentNoQuestions) {
		t.Fatalf("publish without questions: err = %v, want ErrAssessmentNoQuestions", err)
	}

	testutil.SeedQuestion(t, db, a.ID, "math", 1, 0, 1)
	published, err := svc.PublishAssessment(creator.ID, model.Instructor, a.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Status != model.AssessmentPublished {
		t.Errorf("status = %q, want published", published.Status)
	}
}

func TestPublishAssessment_OwnershipEnforced(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	other := testutil.SeedUser(t, db, "other@test.dev", model.Instructor)
	admin := testutil.SeedUser(t, db, "admin@test.dev", model.Admin)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentDraft, 70)
	testutil.SeedQuestion(t, db, a.ID, "math", 1, 0, 1)

	if _, err := svc.PublishAssessment(other.ID, model.Instructor, a.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("publish by non-creator: err = %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.PublishAssessment(admin.ID, model.Admin, a.ID); err != nil {
		t.Fatalf("publish by admin: %v", err)
	}
}

func TestGetAssessment_DraftHiddenFromStudents(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentDraft, 70)

	if _, err := svc.GetAssessment(student.ID, model.Student, a.ID); !errors.Is(err, util.ErrAssessmentNotFound) {
		t.Fatalf("student reading draft: err = %v, want ErrAssessmentNotFound", err)
	}
	if _, err := svc.GetAssessment(creator.ID, model.Instructor, a.ID); err != nil {
		t.Fatalf("creator reading own draft: %v", err)
	}
}

func TestAddQuestion_DefaultsAndOrder(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	other := testutil.SeedUser(t, db, "other@test.dev", model.Instructor)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentDraft, 70)

	req := QuestionRequest{
		Text: "1+1=?",
		Options: []model.Option{
			{Text: "2", IsCorrect: true},
			{Text: "3"},
		},
	}
	q1, err := svc.AddQuestion(creator.ID, model.Instructor, a.ID, req)
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	if q1.Points != 1 {
		t.Errorf("points = %d, want 1", q1.Points)
	}
	if q1.Difficulty != model.QuestionMedium {
		t.Errorf("difficulty = %q, want medium", q1.Difficulty)
	}
	if q1.Order != 1 {
		t.Errorf("order = %d, want 1", q1.Order)
	}

	q2, err := svc.AddQuestion(creator.ID, model.Instructor, a.ID, req)
	if err != nil {
		t.Fatalf("add second question: %v", err)
	}
	if q2.Order != 2 {
		t.Errorf("second question order = %d, want 2", q2.Order)
	}

	if _, err := svc.AddQuestion(other.ID, model.Instructor, a.ID, req); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("add question by non-creator: err = %v, want ErrPermissionDenied", err)
	}
}

func TestStartAttempt_DraftNotVisible(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentDraft, 70)
	testutil.SeedQuestion(t, db, a.ID, "math", 1, 0, 1)

	if _, err := svc.StartAttempt(student.ID, a.ID); !errors.Is(err, util.ErrAssessmentNotFound) {
		t.Fatalf("start on draft: err = %v, want ErrAssessmentNotFound", err)
	}
}

func TestStartAttempt_PublishedWithoutQuestions(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentPublished, 70)

	if _, err := svc.StartAttempt(student.ID, a.ID); !errors.Is(err, util.ErrAssessmentNoQuestions) {
		t.Fatalf("start without questions: err = %v, want ErrAssessmentNoQuestions", err)
	}
}

func TestStartAttempt_SessionHidesAnswers(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentPublished, 70)
	// 乱序建题，会话应按 order 升序返回
	testutil.SeedQuestion(t, db, a.ID, "logic", 2, 0, 2)
	testutil.SeedQuestion(t, db, a.ID, "math", 1, 1, 1)

	session, err := svc.StartAttempt(student.ID, a.ID)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	if session.AttemptID == 0 {
		t.Fatal("attempt id not assigned")
	}
	if session.PassingScore != 70 {
		t.Errorf("passing score = %d, want 70", session.PassingScore)
	}
	if session.StartedAt.IsZero() {
		t.Error("started at is zero")
	}
	if len(session.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(session.Questions))
	}
	if session.Questions[0].SkillCategory != "math" || session.Questions[1].SkillCategory != "logic" {
		t.Errorf("question order = [%s, %s], want [math, logic]",
			session.Questions[0].SkillCategory, session.Questions[1].SkillCategory)
	}
	// 学生视角只拿到选项文本
	for i, q := range session.Questions {
		if len(q.Options) != 3 {
			t.Errorf("question[%d] options = %d, want 3", i, len(q.Options))
			continue
		}
		if q.Options[0] != "选项 1" {
			t.Errorf("question[%d] option[0] = %q, want 选项 1", i, q.Options[0])
		}
	}
}

func TestStartAttempt_ReusesInProgress(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentPublished, 70)
	testutil.SeedQuestion(t, db, a.ID, "math", 1, 0, 1)

	first, err := svc.StartAttempt(student.ID, a.ID)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	second, err := svc.StartAttempt(student.ID, a.ID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if first.AttemptID != second.AttemptID {
		t.Errorf("attempt ids differ: %d vs %d", first.AttemptID, second.AttemptID)
	}

	var count int64
	if err := db.Model(&model.Attempt{}).Where("user_id = ?", student.ID).Count(&count).Error; err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 1 {
		t.Errorf("attempts in db = %d, want 1", count)
	}
}

func TestSubmitAttempt_WithoutStart(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentPublished, 70)
	testutil.SeedQuestion(t, db, a.ID, "math", 1, 0, 1)

	_, err := svc.SubmitAttempt(student.ID, a.ID, SubmitRequest{Answers: map[string]interface{}{}})
	if !errors.Is(err, util.ErrNoAttemptInProgress) {
		t.Fatalf("submit without start: err = %v, want ErrNoAttemptInProgress", err)
	}
}

func TestSubmitAttempt_Lifecycle(t *testing.T) {
	db, svc, gam := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentPublished, 70)
	q1 := testutil.SeedQuestion(t, db, a.ID, "math", 1, 0, 1)
	q2 := testutil.SeedQuestion(t, db, a.ID, "math", 1, 1, 2)
	q3 := testutil.SeedQuestion(t, db, a.ID, "logic", 2, 0, 3)

	session, err := svc.StartAttempt(student.ID, a.ID)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}

	// 全选第一个选项：q1 对、q2 错、q3 对，得 3/4 分
	result, err := svc.SubmitAttempt(student.ID, a.ID, SubmitRequest{
		Answers: map[string]interface{}{
			answerKey(q1.ID): 0,
			answerKey(q2.ID): 0,
			answerKey(q3.ID): 0,
		},
		TimeTaken: 540,
	})
	if err != nil {
		t.Fatalf("submit attempt: %v", err)
	}

	if result.AttemptID != session.AttemptID {
		t.Errorf("attempt id = %d, want %d", result.AttemptID, session.AttemptID)
	}
	if result.Score != 75.00 {
		t.Errorf("score = %v, want 75.00", result.Score)
	}
	if !result.Passed {
		t.Error("expected passed at threshold 70")
	}
	if result.EarnedPoints != 3 || result.TotalPoints != 4 {
		t.Errorf("points = %d/%d, want 3/4", result.EarnedPoints, result.TotalPoints)
	}
	if result.XPEarned != XPQuizBase+XPQuizPassBonus {
		t.Errorf("xp earned = %d, want %d", result.XPEarned, XPQuizBase+XPQuizPassBonus)
	}
	if result.TimeTaken != 540 {
		t.Errorf("time taken = %d, want 540", result.TimeTaken)
	}
	wantSkills := []model.SkillScore{{Skill: "math", Score: 50.00}, {Skill: "logic", Score: 100.00}}
	if len(result.SkillScores) != len(wantSkills) {
		t.Fatalf("skill scores = %+v, want %+v", result.SkillScores, wantSkills)
	}
	for i := range wantSkills {
		if result.SkillScores[i] != wantSkills[i] {
			t.Errorf("skill score[%d] = %+v, want %+v", i, result.SkillScores[i], wantSkills[i])
		}
	}

	// 作答快照已落库
	var attempt model.Attempt
	if err := db.First(&attempt, result.AttemptID).Error; err != nil {
		t.Fatalf("load attempt: %v", err)
	}
	if attempt.Status != model.AttemptCompleted {
		t.Errorf("attempt status = %q, want completed", attempt.Status)
	}
	if attempt.CompletedAt == nil {
		t.Error("completed at not set")
	}
	if got := attempt.ParsedSkillScores(); len(got) != 2 || got[0] != wantSkills[0] || got[1] != wantSkills[1] {
		t.Errorf("persisted skill scores = %+v, want %+v", got, wantSkills)
	}

	// 经验值与流水
	profile, err := gam.GetProfile(student.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.TotalXP != 50 {
		t.Errorf("total xp = %d, want 50", profile.TotalXP)
	}
	if profile.Level != 1 {
		t.Errorf("level = %d, want 1", profile.Level)
	}
	events, total, err := gam.ListXPEvents(student.ID, 1, 10)
	if err != nil {
		t.Fatalf("list xp events: %v", err)
	}
	if total != 1 || len(events) != 1 {
		t.Fatalf("xp events = %d (total %d), want 1", len(events), total)
	}
	if events[0].Source != XPSourceAssessment || events[0].Amount != 50 {
		t.Errorf("xp event = %s/%d, want assessment/50", events[0].Source, events[0].Amount)
	}
	if !strings.HasPrefix(events[0].Description, "完成测评：") {
		t.Errorf("xp event description = %q", events[0].Description)
	}

	// 统计快照随提交刷新
	stats, err := svc.GetStatistics(creator.ID, model.Instructor, a.ID)
	if err != nil {
		t.Fatalf("get statistics: %v", err)
	}
	if stats.TotalAttempts != 1 {
		t.Errorf("total attempts = %d, want 1", stats.TotalAttempts)
	}
	if stats.AverageScore != 75.00 {
		t.Errorf("average score = %v, want 75.00", stats.AverageScore)
	}

	// 重复提交需要先重新开始
	_, err = svc.SubmitAttempt(student.ID, a.ID, SubmitRequest{Answers: map[string]interface{}{}})
	if !errors.Is(err, util.ErrNoAttemptInProgress) {
		t.Fatalf("second submit: err = %v, want ErrNoAttemptInProgress", err)
	}
}

func TestSubmitAttempt_FailingScore(t *testing.T) {
	db, svc, gam := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentPublished, 70)
	q := testutil.SeedQuestion(t, db, a.ID, "math", 1, 0, 1)

	if _, err := svc.StartAttempt(student.ID, a.ID); err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	result, err := svc.SubmitAttempt(student.ID, a.ID, SubmitRequest{
		Answers: map[string]interface{}{answerKey(q.ID): 2},
	})
	if err != nil {
		t.Fatalf("submit attempt: %v", err)
	}
	if result.Score != 0 || result.Passed {
		t.Errorf("score = %v passed = %v, want 0 and not passed", result.Score, result.Passed)
	}
	if result.XPEarned != XPQuizBase {
		t.Errorf("xp earned = %d, want %d", result.XPEarned, XPQuizBase)
	}

	profile, err := gam.GetProfile(student.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.TotalXP != XPQuizBase {
		t.Errorf("total xp = %d, want %d", profile.TotalXP, XPQuizBase)
	}
}

func TestSubmitAttempt_SnapshotSurvivesQuestionEdits(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentPublished, 70)
	q1 := testutil.SeedQuestion(t, db, a.ID, "math", 1, 0, 1)
	q2 := testutil.SeedQuestion(t, db, a.ID, "math", 1, 1, 2)
	q3 := testutil.SeedQuestion(t, db, a.ID, "logic", 2, 0, 3)

	if _, err := svc.StartAttempt(student.ID, a.ID); err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	result, err := svc.SubmitAttempt(student.ID, a.ID, SubmitRequest{
		Answers: map[string]interface{}{
			answerKey(q1.ID): 0,
			answerKey(q2.ID): 0,
			answerKey(q3.ID): 0,
		},
	})
	if err != nil {
		t.Fatalf("submit attempt: %v", err)
	}
	if result.Score != 75.00 {
		t.Fatalf("score = %v, want 75.00", result.Score)
	}

	// 改正确答案、删题目，都不应影响已完成的作答快照
	if _, err := svc.UpdateQuestion(creator.ID, model.Instructor, q2.ID, QuestionRequest{
		Text: q2.Text,
		Options: []model.Option{
			{Text: "A", IsCorrect: true},
			{Text: "B"},
			{Text: "C"},
		},
		SkillCategory: "math",
	}); err != nil {
		t.Fatalf("update question: %v", err)
	}
	if err := svc.DeleteQuestion(creator.ID, model.Instructor, q3.ID); err != nil {
		t.Fatalf("delete question: %v", err)
	}

	var attempt model.Attempt
	if err := db.First(&attempt, result.AttemptID).Error; err != nil {
		t.Fatalf("load attempt: %v", err)
	}
	if attempt.Score != 75.00 {
		t.Errorf("attempt score after edits = %v, want 75.00", attempt.Score)
	}
	wantSkills := []model.SkillScore{{Skill: "math", Score: 50.00}, {Skill: "logic", Score: 100.00}}
	if got := attempt.ParsedSkillScores(); len(got) != 2 || got[0] != wantSkills[0] || got[1] != wantSkills[1] {
		t.Errorf("skill scores after edits = %+v, want %+v", got, wantSkills)
	}

	// 统计重算基于作答快照，同样不受题目改动影响
	if err := svc.RefreshStatistics(a.ID); err != nil {
		t.Fatalf("refresh statistics: %v", err)
	}
	stats, err := svc.GetStatistics(creator.ID, model.Instructor, a.ID)
	if err != nil {
		t.Fatalf("get statistics: %v", err)
	}
	if stats.AverageScore != 75.00 {
		t.Errorf("average score after edits = %v, want 75.00", stats.AverageScore)
	}
}

func TestRefreshStatistics_AggregatesAttempts(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	alice := testutil.SeedUser(t, db, "alice@test.dev", model.Student)
	bob := testutil.SeedUser(t, db, "bob@test.dev", model.Student)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentPublished, 70)
	q1 := testutil.SeedQuestion(t, db, a.ID, "math", 1, 0, 1)
	q2 := testutil.SeedQuestion(t, db, a.ID, "logic", 1, 0, 2)

	submit := func(userID uint, answers map[string]interface{}) {
		t.Helper()
		if _, err := svc.StartAttempt(userID, a.ID); err != nil {
			t.Fatalf("start attempt: %v", err)
		}
		if _, err := svc.SubmitAttempt(userID, a.ID, SubmitRequest{Answers: answers}); err != nil {
			t.Fatalf("submit attempt: %v", err)
		}
	}

	submit(alice.ID, map[string]interface{}{answerKey(q1.ID): 0, answerKey(q2.ID): 0}) // 100 分
	submit(bob.ID, map[string]interface{}{answerKey(q1.ID): 1, answerKey(q2.ID): 1})   // 0 分

	stats, err := svc.GetStatistics(creator.ID, model.Instructor, a.ID)
	if err != nil {
		t.Fatalf("get statistics: %v", err)
	}
	if stats.TotalAttempts != 2 {
		t.Errorf("total attempts = %d, want 2", stats.TotalAttempts)
	}
	if stats.AverageScore != 50.00 {
		t.Errorf("average score = %v, want 50.00", stats.AverageScore)
	}
	// 两项技能平均差距相同，保持首次出现顺序
	wantGaps := []model.SkillGap{
		{Skill: "math", GapPercentage: 50.00},
		{Skill: "logic", GapPercentage: 50.00},
	}
	if len(stats.TopSkillGaps) != len(wantGaps) {
		t.Fatalf("skill gaps = %+v, want %+v", stats.TopSkillGaps, wantGaps)
	}
	for i := range wantGaps {
		if stats.TopSkillGaps[i] != wantGaps[i] {
			t.Errorf("skill gap[%d] = %+v, want %+v", i, stats.TopSkillGaps[i], wantGaps[i])
		}
	}
}

func TestGetStatistics_OwnershipEnforced(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentPublished, 70)

	if _, err := svc.GetStatistics(student.ID, model.Student, a.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("statistics by student: err = %v, want ErrPermissionDenied", err)
	}
}

func TestGetAttempt_OwnershipAndDetail(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	other := testutil.SeedUser(t, db, "other@test.dev", model.Student)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentPublished, 70)
	q := testutil.SeedQuestion(t, db, a.ID, "math", 1, 0, 1)

	session, err := svc.StartAttempt(student.ID, a.ID)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}

	// 进行中不返回题目解析
	detail, err := svc.GetAttempt(student.ID, session.AttemptID)
	if err != nil {
		t.Fatalf("get attempt in progress: %v", err)
	}
	if len(detail.Questions) != 0 {
		t.Errorf("in-progress attempt exposes %d questions, want 0", len(detail.Questions))
	}

	if _, err := svc.SubmitAttempt(student.ID, a.ID, SubmitRequest{
		Answers: map[string]interface{}{answerKey(q.ID): 0},
	}); err != nil {
		t.Fatalf("submit attempt: %v", err)
	}

	detail, err = svc.GetAttempt(student.ID, session.AttemptID)
	if err != nil {
		t.Fatalf("get completed attempt: %v", err)
	}
	if len(detail.Questions) != 1 {
		t.Errorf("completed attempt questions = %d, want 1", len(detail.Questions))
	}

	if _, err := svc.GetAttempt(other.ID, session.AttemptID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("get attempt by other user: err = %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.GetAttempt(student.ID, 99999); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("get missing attempt: err = %v, want ErrAttemptNotFound", err)
	}
}

func TestMyAssessmentAttempts_ScopedToAssessment(t *testing.T) {
	db, svc, _ := newAssessmentService(t)
	creator := testutil.SeedUser(t, db, "owner@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	other := testutil.SeedUser(t, db, "other@test.dev", model.Student)
	a := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentPublished, 70)
	b := testutil.SeedAssessment(t, db, creator.ID, model.AssessmentPublished, 70)
	qa := testutil.SeedQuestion(t, db, a.ID, "math", 1, 0, 1)
	testutil.SeedQuestion(t, db, b.ID, "logic", 1, 0, 1)

	if _, err := svc.StartAttempt(student.ID, a.ID); err != nil {
		t.Fatalf("start on a: %v", err)
	}
	if _, err := svc.SubmitAttempt(student.ID, a.ID, SubmitRequest{
		Answers: map[string]interface{}{answerKey(qa.ID): 0},
	}); err != nil {
		t.Fatalf("submit on a: %v", err)
	}
	if _, err := svc.StartAttempt(student.ID, b.ID); err != nil {
		t.Fatalf("start on b: %v", err)
	}

	attempts, err := svc.MyAssessmentAttempts(student.ID, a.ID)
	if err != nil {
		t.Fatalf("list attempts for a: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("attempts for a = %d, want 1", len(attempts))
	}
	if attempts[0].AssessmentID != a.ID || attempts[0].Status != model.AttemptCompleted {
		t.Errorf("attempt = {assessment %d, status %q}, want {assessment %d, completed}",
			attempts[0].AssessmentID, attempts[0].Status, a.ID)
	}

	attempts, err = svc.MyAssessmentAttempts(other.ID, a.ID)
	if err != nil {
		t.Fatalf("list attempts for other user: %v", err)
	}
	if len(attempts) != 0 {
		t.Errorf("other user sees %d attempts, want 0", len(attempts))
	}
}
