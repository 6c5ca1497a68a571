package service

import (
	"sort"

	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
)

// 技能得分率高于等于该值视为优势，低于视为短板
const skillStrengthThreshold = 70.0

// 学习趋势
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// AnalyticsService 基于作答历史做个人技能分析
type AnalyticsService struct {
	AttemptRepo *repository.AttemptRepository
}

func NewAnalyticsService(attemptRepo *repository.AttemptRepository) *AnalyticsService {
	return &AnalyticsService{AttemptRepo: attemptRepo}
}

// SkillAverage 某项技能在多次作答中的平均得分率
type SkillAverage struct {
	Skill    string  `json:"skill"`
	Score    float64 `json:"score"`
	Attempts int     `json:"attempts"`
}

type SkillAnalysis struct {
	TotalAttempts int            `json:"totalAttempts"`
	AverageScore  float64        `json:"averageScore"`
	Strengths     []SkillAverage `json:"strengths"`
	Weaknesses    []SkillAverage `json:"weaknesses"`
	Trend         string         `json:"trend"`
	SkillScores   []SkillAverage `json:"skillScores"`
}

// GetSkillAnalysis 汇总用户全部已完成作答，给出优势、短板与近期趋势
func (s *AnalyticsService) GetSkillAnalysis(userID uint) (*SkillAnalysis, error) {
	attempts, err := s.AttemptRepo.ListCompletedByUser(userID)
	if err != nil {
		return nil, err
	}

	analysis := &SkillAnalysis{
		TotalAttempts: len(attempts),
		Trend:         TrendStable,
		Strengths:     []SkillAverage{},
		Weaknesses:    []SkillAverage{},
		SkillScores:   []SkillAverage{},
	}
	if len(attempts) == 0 {
		return analysis, nil
	}

	total := 0.0
	for _, attempt := range attempts {
		total += attempt.Score
	}
	analysis.AverageScore = roundScore(total / float64(len(attempts)))
	analysis.Trend = performanceTrend(attempts)
	analysis.SkillScores = skillAverages(attempts)

	strengths := make([]SkillAverage, 0)
	weaknesses := make([]SkillAverage, 0)
	for _, sa := range analysis.SkillScores {
		if sa.Score >= skillStrengthThreshold {
			strengths = append(strengths, sa)
		} else {
			weaknesses = append(weaknesses, sa)
		}
	}
	sort.SliceStable(strengths, func(i, j int) bool { return strengths[i].Score > strengths[j].Score })
	sort.SliceStable(weaknesses, func(i, j int) bool { return weaknesses[i].Score < weaknesses[j].Score })
	if len(strengths) > 3 {
		strengths = strengths[:3]
	}
	if len(weaknesses) > 3 {
		weaknesses = weaknesses[:3]
	}
	analysis.Strengths = strengths
	analysis.Weaknesses = weaknesses

	return analysis, nil
}

// skillAverages 按技能聚合多次作答的平均得分率，保持技能首次出现顺序
func skillAverages(attempts []model.Attempt) []SkillAverage {
	order := make([]string, 0)
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, attempt := range attempts {
		for _, ss := range attempt.ParsedSkillScores() {
			if _, seen := counts[ss.Skill]; !seen {
				order = append(order, ss.Skill)
			}
			sums[ss.Skill] += ss.Score
			counts[ss.Skill]++
		}
	}

	averages := make([]SkillAverage, 0, len(order))
	for _, skill := range order {
		averages = append(averages, SkillAverage{
			Skill:    skill,
			Score:    roundScore(sums[skill] / float64(counts[skill])),
			Attempts: counts[skill],
		})
	}
	return averages
}

// performanceTrend 比较近半数作答与之前作答的平均分走势
func performanceTrend(attempts []model.Attempt) string {
	if len(attempts) < 4 {
		return TrendStable
	}

	half := len(attempts) / 2
	earlier := attempts[:half]
	recent := attempts[len(attempts)-half:]

	earlierAvg := 0.0
	for _, a := range earlier {
		earlierAvg += a.Score
	}
	earlierAvg /= float64(len(earlier))

	recentAvg := 0.0
	for _, a := range recent {
		recentAvg += a.Score
	}
	recentAvg /= float64(len(recent))

	switch {
	case recentAvg-earlierAvg > 5:
		return TrendImproving
	case earlierAvg-recentAvg > 5:
		return TrendDeclining
	default:
		return TrendStable
	}
}
