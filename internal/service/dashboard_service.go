package service

import (
	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
)

// DashboardService 聚合学习概览页所需的数据
type DashboardService struct {
	EnrollmentRepo   *repository.EnrollmentRepository
	AttemptRepo      *repository.AttemptRepository
	AchievementRepo  *repository.AchievementRepository
	CertificateRepo  *repository.CertificateRepository
	Gamification     *GamificationService
	Recommendations  *RecommendationService
}

func NewDashboardService(
	enrollmentRepo *repository.EnrollmentRepository,
	attemptRepo *repository.AttemptRepository,
	achievementRepo *repository.AchievementRepository,
	certificateRepo *repository.CertificateRepository,
	gamification *GamificationService,
	recommendations *RecommendationService,
) *DashboardService {
	return &DashboardService{
		EnrollmentRepo:   enrollmentRepo,
		AttemptRepo:      attemptRepo,
		AchievementRepo:  achievementRepo,
		CertificateRepo:  certificateRepo,
		Gamification:     gamification,
		Recommendations:  recommendations,
	}
}

type Dashboard struct {
	Profile          *GamificationProfile    `json:"profile"`
	ActiveCourses    []model.Enrollment      `json:"activeCourses"`
	CompletedCourses int                     `json:"completedCourses"`
	Certificates     int                     `json:"certificates"`
	AverageScore     float64                 `json:"averageScore"`
	RecentAttempts   []model.Attempt         `json:"recentAttempts"`
	RecentUnlocks    []model.UserAchievement `json:"recentAchievements"`
	Recommendations  []Recommendation        `json:"recommendations"`
}

// GetDashboard 组装学习概览
func (s *DashboardService) GetDashboard(userID uint) (*Dashboard, error) {
	profile, err := s.Gamification.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	active, err := s.EnrollmentRepo.ListByUser(userID, string(model.EnrollmentActive))
	if err != nil {
		return nil, err
	}

	completed, err := s.EnrollmentRepo.CountByUser(userID, string(model.EnrollmentCompleted))
	if err != nil {
		return nil, err
	}

	certificates, err := s.CertificateRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	averageScore, err := s.AttemptRepo.AverageScoreByUser(userID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.AttemptRepo.ListByUser(userID, string(model.AttemptCompleted))
	if err != nil {
		return nil, err
	}
	if len(attempts) > 5 {
		attempts = attempts[:5]
	}

	unlocks, err := s.AchievementRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(unlocks) > 5 {
		unlocks = unlocks[:5]
	}

	recommendations, err := s.Recommendations.GetRecommendations(userID)
	if err != nil {
		return nil, err
	}
	if len(recommendations) > 3 {
		recommendations = recommendations[:3]
	}

	return &Dashboard{
		Profile:          profile,
		ActiveCourses:    active,
		CompletedCourses: int(completed),
		Certificates:     len(certificates),
		AverageScore:     roundScore(averageScore),
		RecentAttempts:   attempts,
		RecentUnlocks:    unlocks,
		Recommendations:  recommendations,
	}, nil
}
