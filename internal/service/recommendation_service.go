package service

import (
	"fmt"
	"sort"

	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
)

// 推荐来源的固定权重
const (
	weightSkillGapMatch   = 0.9
	weightLevelMatch      = 0.85
	weightWeakSkillRemedy = 0.8
	weightPopularCategory = 0.7
	weightTrending        = 0.5
)

// 推荐结果上限
const maxRecommendations = 10

// 单个推荐来源最多贡献的课程数
const perSourceLimit = 5

// 参与技能匹配的薄弱技能数
const maxMatchedSkills = 3

// 平均得分率低于该值的技能视为长期薄弱
const chronicWeaknessThreshold = 60.0

// RecommendationService 按固定权重的启发式规则生成课程推荐
type RecommendationService struct {
	CourseRepo       *repository.CourseRepository
	EnrollmentRepo   *repository.EnrollmentRepository
	AttemptRepo      *repository.AttemptRepository
	GamificationRepo *repository.GamificationRepository
}

func NewRecommendationService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	attemptRepo *repository.AttemptRepository,
	gamificationRepo *repository.GamificationRepository,
) *RecommendationService {
	return &RecommendationService{
		CourseRepo:       courseRepo,
		EnrollmentRepo:   enrollmentRepo,
		AttemptRepo:      attemptRepo,
		GamificationRepo: gamificationRepo,
	}
}

type Recommendation struct {
	Course model.Course `json:"course"`
	Score  float64      `json:"score"`
	Reason string       `json:"reason"`
}

// GetRecommendations 生成课程推荐。
// 已报名课程不会出现，同一课程被多条规则命中时保留权重最高的理由。
func (s *RecommendationService) GetRecommendations(userID uint) ([]Recommendation, error) {
	enrolledIDs, err := s.EnrollmentRepo.EnrolledCourseIDs(userID)
	if err != nil {
		return nil, err
	}
	excluded := make(map[uint]bool, len(enrolledIDs))
	for _, id := range enrolledIDs {
		excluded[id] = true
	}

	var recommendations []Recommendation
	add := func(courses []model.Course, score float64, reason string) {
		for _, course := range courses {
			if excluded[course.ID] {
				continue
			}
			excluded[course.ID] = true
			recommendations = append(recommendations, Recommendation{
				Course: course,
				Score:  score,
				Reason: reason,
			})
		}
	}

	attempts, err := s.AttemptRepo.ListCompletedByUser(userID)
	if err != nil {
		return nil, err
	}

	// 最近一次测评暴露的技能缺口优先补强
	for _, skill := range recentSkillGaps(attempts, maxMatchedSkills) {
		courses, _, err := s.CourseRepo.ListPublished(1, perSourceLimit, 0, "", skill)
		if err != nil {
			return nil, err
		}
		add(courses, weightSkillGapMatch, fmt.Sprintf("针对你最近测评的薄弱技能：%s", skill))
	}

	// 等级进阶课程
	g, err := s.GamificationRepo.FindOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}
	levelCourses, err := s.CourseRepo.ListPublishedByDifficulty(difficultyForLevel(g.Level), perSourceLimit)
	if err != nil {
		return nil, err
	}
	add(levelCourses, weightLevelMatch, "适合你当前等级的课程")

	// 长期薄弱技能修复
	for _, skill := range chronicWeakSkills(attempts, maxMatchedSkills) {
		courses, _, err := s.CourseRepo.ListPublished(1, perSourceLimit, 0, "", skill)
		if err != nil {
			return nil, err
		}
		add(courses, weightWeakSkillRemedy, fmt.Sprintf("巩固长期薄弱的技能：%s", skill))
	}

	// 关注领域的热门课程
	categoryIDs, err := s.EnrollmentRepo.EnrolledCategoryIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(categoryIDs) > 0 {
		popular, err := s.CourseRepo.ListPopularInCategories(categoryIDs, perSourceLimit)
		if err != nil {
			return nil, err
		}
		add(popular, weightPopularCategory, "你关注领域的热门课程")
	}

	// 平台近期热门兜底
	trending, err := s.CourseRepo.ListTrending(perSourceLimit)
	if err != nil {
		return nil, err
	}
	add(trending, weightTrending, "平台热门课程")

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Score > recommendations[j].Score
	})
	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations, nil
}

// recentSkillGaps 最近一次作答中未达标的技能，得分低的在前
func recentSkillGaps(attempts []model.Attempt, limit int) []string {
	if len(attempts) == 0 {
		return nil
	}

	latest := attempts[len(attempts)-1]
	scores := latest.ParsedSkillScores()
	gaps := make([]model.SkillScore, 0, len(scores))
	for _, ss := range scores {
		if ss.Score < skillStrengthThreshold {
			gaps = append(gaps, ss)
		}
	}
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Score < gaps[j].Score })

	skills := make([]string, 0, limit)
	for _, ss := range gaps {
		if len(skills) == limit {
			break
		}
		skills = append(skills, ss.Skill)
	}
	return skills
}

// chronicWeakSkills 多次作答平均得分率低于阈值的技能，最弱的在前
func chronicWeakSkills(attempts []model.Attempt, limit int) []string {
	averages := skillAverages(attempts)
	weak := make([]SkillAverage, 0, len(averages))
	for _, sa := range averages {
		if sa.Score < chronicWeaknessThreshold {
			weak = append(weak, sa)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].Score < weak[j].Score })

	skills := make([]string, 0, limit)
	for _, sa := range weak {
		if len(skills) == limit {
			break
		}
		skills = append(skills, sa.Skill)
	}
	return skills
}

// difficultyForLevel 用户等级对应的课程难度
func difficultyForLevel(level int) model.CourseDifficulty {
	switch {
	case level >= 6:
		return model.DifficultyAdvanced
	case level >= 3:
		return model.DifficultyIntermediate
	default:
		return model.DifficultyBeginner
	}
}
