package service

import (
	"encoding/json"
	"testing"

	"eduai_backend/internal/model"
)

func mkQuestion(t *testing.T, id uint, skill string, points, correctIdx, optionCount int) model.Question {
	t.Helper()
	opts := make([]model.Option, optionCount)
	for i := range opts {
		opts[i] = model.Option{Text: "opt", IsCorrect: i == correctIdx}
	}
	raw, err := json.Marshal(opts)
	if err != nil {
		t.Fatalf("marshal options: %v", err)
	}
	q := model.Question{
		Options:       raw,
		SkillCategory: skill,
		Points:        points,
	}
	q.ID = id
	return q
}

func TestScoreAttempt_MixedSkills(t *testing.T) {
	questions := []model.Question{
		mkQuestion(t, 1, "math", 1, 0, 3),
		mkQuestion(t, 2, "math", 1, 1, 3),
		mkQuestion(t, 3, "logic", 2, 0, 3),
	}
	answers := map[string]interface{}{"1": 0, "2": 0, "3": 0}

	res := ScoreAttempt(questions, answers, 70)

	if res.EarnedPoints != 3 || res.TotalPoints != 4 {
		t.Fatalf("points = %d/%d, want 3/4", res.EarnedPoints, res.TotalPoints)
	}
	if res.Score != 75.00 {
		t.Fatalf("score = %v, want 75.00", res.Score)
	}
	if !res.Passed {
		t.Fatal("expected passed at threshold 70")
	}
	want := []model.SkillScore{{Skill: "math", Score: 50.00}, {Skill: "logic", Score: 100.00}}
	if len(res.SkillScores) != len(want) {
		t.Fatalf("skill scores = %+v, want %+v", res.SkillScores, want)
	}
	for i := range want {
		if res.SkillScores[i] != want[i] {
			t.Errorf("skill score[%d] = %+v, want %+v", i, res.SkillScores[i], want[i])
		}
	}
}

func TestScoreAttempt_AllCorrect(t *testing.T) {
	questions := []model.Question{
		mkQuestion(t, 1, "math", 2, 1, 3),
		mkQuestion(t, 2, "logic", 3, 2, 4),
	}
	answers := map[string]interface{}{"1": 1, "2": 2}

	for _, threshold := range []int{0, 50, 100} {
		res := ScoreAttempt(questions, answers, threshold)
		if res.Score != 100.00 {
			t.Fatalf("threshold %d: score = %v, want 100.00", threshold, res.Score)
		}
		if !res.Passed {
			t.Errorf("threshold %d: expected passed", threshold)
		}
	}
}

func TestScoreAttempt_NoQuestions(t *testing.T) {
	res := ScoreAttempt(nil, map[string]interface{}{"1": 0}, 70)

	if res.Score != 0 {
		t.Fatalf("score = %v, want 0", res.Score)
	}
	if res.Passed {
		t.Fatal("expected not passed at threshold 70")
	}
	if len(res.SkillScores) != 0 {
		t.Fatalf("skill scores = %+v, want empty", res.SkillScores)
	}
}

func TestScoreAttempt_UnansweredEqualsInvalidIndex(t *testing.T) {
	questions := []model.Question{
		mkQuestion(t, 1, "math", 1, 0, 3),
		mkQuestion(t, 2, "math", 1, 1, 3),
	}

	missing := ScoreAttempt(questions, map[string]interface{}{"1": 0}, 70)
	outOfRange := ScoreAttempt(questions, map[string]interface{}{"1": 0, "2": 99}, 70)
	negative := ScoreAttempt(questions, map[string]interface{}{"1": 0, "2": -1}, 70)

	for name, res := range map[string]AttemptResult{"outOfRange": outOfRange, "negative": negative} {
		if res.Score != missing.Score || res.EarnedPoints != missing.EarnedPoints {
			t.Errorf("%s: result %+v differs from unanswered %+v", name, res, missing)
		}
	}
	if missing.Score != 50.00 {
		t.Fatalf("score = %v, want 50.00", missing.Score)
	}
}

func TestScoreAttempt_AnswerCoercion(t *testing.T) {
	questions := []model.Question{mkQuestion(t, 7, "math", 1, 1, 3)}

	tests := []struct {
		name   string
		answer interface{}
		earned int
	}{
		{"int correct", 1, 1},
		{"int64 correct", int64(1), 1},
		{"float64 truncates", 1.9, 1},
		{"json number", json.Number("1"), 1},
		{"string", "1", 1},
		{"string with spaces", " 1 ", 1},
		{"bool true means index 1", true, 1},
		{"bool false means index 0", false, 0},
		{"unparseable string", "abc", 0},
		{"nil answer", nil, 0},
		{"wrong index", 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScoreAttempt(questions, map[string]interface{}{"7": tt.answer}, 70)
			if res.EarnedPoints != tt.earned {
				t.Errorf("earned = %d, want %d", res.EarnedPoints, tt.earned)
			}
		})
	}
}

func TestScoreAttempt_DefaultSkillCategory(t *testing.T) {
	questions := []model.Question{
		mkQuestion(t, 1, "", 1, 0, 2),
		mkQuestion(t, 2, "logic", 1, 0, 2),
		mkQuestion(t, 3, "", 1, 0, 2),
	}
	res := ScoreAttempt(questions, map[string]interface{}{"1": 0, "2": 0, "3": 0}, 70)

	if len(res.SkillScores) != 2 {
		t.Fatalf("skill scores = %+v, want 2 entries", res.SkillScores)
	}
	if res.SkillScores[0].Skill != DefaultSkillCategory {
		t.Errorf("first skill = %q, want %q", res.SkillScores[0].Skill, DefaultSkillCategory)
	}
	if res.SkillScores[1].Skill != "logic" {
		t.Errorf("second skill = %q, want logic", res.SkillScores[1].Skill)
	}
}

func TestScoreAttempt_EarnedNeverExceedsTotal(t *testing.T) {
	questions := []model.Question{
		mkQuestion(t, 1, "a", 3, 0, 3),
		mkQuestion(t, 2, "b", 2, 2, 3),
		mkQuestion(t, 3, "c", 5, 1, 3),
	}
	for i := -1; i <= 3; i++ {
		for j := -1; j <= 3; j++ {
			answers := map[string]interface{}{"1": i, "2": j, "3": (i + j) % 3}
			res := ScoreAttempt(questions, answers, 70)
			if res.EarnedPoints > res.TotalPoints {
				t.Fatalf("answers %v: earned %d > total %d", answers, res.EarnedPoints, res.TotalPoints)
			}
		}
	}
}

func TestScoreAttempt_RoundsToTwoDecimals(t *testing.T) {
	questions := []model.Question{
		mkQuestion(t, 1, "math", 1, 0, 2),
		mkQuestion(t, 2, "math", 1, 0, 2),
		mkQuestion(t, 3, "math", 1, 0, 2),
	}
	res := ScoreAttempt(questions, map[string]interface{}{"1": 0}, 70)

	if res.Score != 33.33 {
		t.Fatalf("score = %v, want 33.33", res.Score)
	}
}

func TestAggregateSkillGaps_OrdersByMeanGap(t *testing.T) {
	attempts := [][]model.SkillScore{
		{{Skill: "A", Score: 90}, {Skill: "B", Score: 40}},
		{{Skill: "A", Score: 70}, {Skill: "B", Score: 20}},
	}

	gaps := AggregateSkillGaps(attempts)

	if len(gaps) != 2 {
		t.Fatalf("gaps = %+v, want 2 entries", gaps)
	}
	if gaps[0].Skill != "B" || gaps[0].GapPercentage != 70.00 {
		t.Errorf("first gap = %+v, want B 70.00", gaps[0])
	}
	if gaps[1].Skill != "A" || gaps[1].GapPercentage != 20.00 {
		t.Errorf("second gap = %+v, want A 20.00", gaps[1])
	}
}

func TestAggregateSkillGaps_StableTies(t *testing.T) {
	attempts := [][]model.SkillScore{
		{{Skill: "first", Score: 50}, {Skill: "second", Score: 50}},
	}

	gaps := AggregateSkillGaps(attempts)

	if len(gaps) != 2 || gaps[0].Skill != "first" || gaps[1].Skill != "second" {
		t.Fatalf("gaps = %+v, want first then second", gaps)
	}
}

func TestAggregateSkillGaps_CapsAtFive(t *testing.T) {
	scores := make([]model.SkillScore, 8)
	for i := range scores {
		scores[i] = model.SkillScore{Skill: string(rune('a' + i)), Score: float64(i * 10)}
	}

	gaps := AggregateSkillGaps([][]model.SkillScore{scores})

	if len(gaps) != 5 {
		t.Fatalf("gaps = %d entries, want 5", len(gaps))
	}
	// 得分最低的技能差距最大，排在最前
	if gaps[0].Skill != "a" || gaps[0].GapPercentage != 100.00 {
		t.Errorf("first gap = %+v, want a 100.00", gaps[0])
	}
}

func TestAggregateSkillGaps_Empty(t *testing.T) {
	if gaps := AggregateSkillGaps(nil); len(gaps) != 0 {
		t.Fatalf("gaps = %+v, want empty", gaps)
	}
}
