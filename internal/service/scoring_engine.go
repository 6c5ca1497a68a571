package service

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"eduai_backend/internal/model"
)

// DefaultSkillCategory 未标注技能分类的题目计入该默认分类
const DefaultSkillCategory = "General"

// 技能差距榜单最多保留的条目数
const maxSkillGaps = 5

// AttemptResult 一次作答的评分结果，提交时计算一次并落库为快照
type AttemptResult struct {
	Score        float64            `json:"score"`
	Passed       bool               `json:"passed"`
	EarnedPoints int                `json:"earnedPoints"`
	TotalPoints  int                `json:"totalPoints"`
	SkillScores  []model.SkillScore `json:"skillScores"`
}

// ScoreAttempt 对一次作答评分。
// answers 以题目 ID 的十进制字符串为键，值为所选选项下标。
// 缺答、无法解析或下标越界的答案一律按答错处理，不视为错误。
func ScoreAttempt(questions []model.Question, answers map[string]interface{}, passingScore int) AttemptResult {
	type bucket struct {
		earned int
		total  int
	}

	skillOrder := make([]string, 0, len(questions))
	buckets := make(map[string]*bucket)

	totalPoints := 0
	earnedPoints := 0

	for _, q := range questions {
		skill := q.SkillCategory
		if skill == "" {
			skill = DefaultSkillCategory
		}
		b, ok := buckets[skill]
		if !ok {
			b = &bucket{}
			buckets[skill] = b
			skillOrder = append(skillOrder, skill)
		}
		totalPoints += q.Points
		b.total += q.Points

		idx, ok := coerceOptionIndex(answers[strconv.FormatUint(uint64(q.ID), 10)])
		if !ok {
			continue
		}
		options := q.ParsedOptions()
		if idx < 0 || idx >= len(options) {
			continue
		}
		if options[idx].IsCorrect {
			earnedPoints += q.Points
			b.earned += q.Points
		}
	}

	result := AttemptResult{
		EarnedPoints: earnedPoints,
		TotalPoints:  totalPoints,
	}
	if totalPoints > 0 {
		result.Score = roundScore(float64(earnedPoints) / float64(totalPoints) * 100)
	}
	result.Passed = result.Score >= float64(passingScore)

	result.SkillScores = make([]model.SkillScore, 0, len(skillOrder))
	for _, skill := range skillOrder {
		b := buckets[skill]
		if b.total <= 0 {
			continue
		}
		result.SkillScores = append(result.SkillScores, model.SkillScore{
			Skill: skill,
			Score: roundScore(float64(b.earned) / float64(b.total) * 100),
		})
	}
	return result
}

// AggregateSkillGaps 汇总多次作答的技能得分，得到平均差距最大的技能榜单。
// 每次调用全量重算，按差距降序排列，并列时保持技能首次出现的顺序。
func AggregateSkillGaps(attemptSkillScores [][]model.SkillScore) []model.SkillGap {
	skillOrder := make([]string, 0)
	gapSums := make(map[string]float64)
	gapCounts := make(map[string]int)

	for _, scores := range attemptSkillScores {
		for _, ss := range scores {
			if _, seen := gapCounts[ss.Skill]; !seen {
				skillOrder = append(skillOrder, ss.Skill)
			}
			gapSums[ss.Skill] += 100 - ss.Score
			gapCounts[ss.Skill]++
		}
	}

	gaps := make([]model.SkillGap, 0, len(skillOrder))
	for _, skill := range skillOrder {
		gaps = append(gaps, model.SkillGap{
			Skill:         skill,
			GapPercentage: roundScore(gapSums[skill] / float64(gapCounts[skill])),
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].GapPercentage > gaps[j].GapPercentage
	})
	if len(gaps) > maxSkillGaps {
		gaps = gaps[:maxSkillGaps]
	}
	return gaps
}

// coerceOptionIndex 将提交的任意 JSON 值转换为选项下标
func coerceOptionIndex(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(math.Trunc(v)), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return int(math.Trunc(f)), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// roundScore 百分制得分保留两位小数，四舍五入
func roundScore(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
