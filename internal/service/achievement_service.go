package service

import (
	"errors"
	"time"

	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"

	"gorm.io/gorm"
)

// AchievementService 负责成就进度计算、解锁与徽章
type AchievementService struct {
	AchievementRepo  *repository.AchievementRepository
	AttemptRepo      *repository.AttemptRepository
	EnrollmentRepo   *repository.EnrollmentRepository
	GamificationRepo *repository.GamificationRepository
	Gamification     *GamificationService
}

func NewAchievementService(
	achievementRepo *repository.AchievementRepository,
	attemptRepo *repository.AttemptRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	gamificationRepo *repository.GamificationRepository,
	gamification *GamificationService,
) *AchievementService {
	return &AchievementService{
		AchievementRepo:  achievementRepo,
		AttemptRepo:      attemptRepo,
		EnrollmentRepo:   enrollmentRepo,
		GamificationRepo: gamificationRepo,
		Gamification:     gamification,
	}
}

type AchievementProgress struct {
	model.Achievement
	Progress   int        `json:"progress"`
	Percent    float64    `json:"percent"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

type AchievementOverview struct {
	Unlocked   []AchievementProgress `json:"unlocked"`
	InProgress []AchievementProgress `json:"inProgress"`
	Locked     []AchievementProgress `json:"locked"`
}

// GetOverview 按解锁状态分组返回全部成就及实时进度
func (s *AchievementService) GetOverview(userID uint) (*AchievementOverview, error) {
	all, err := s.AchievementRepo.ListAll()
	if err != nil {
		return nil, err
	}

	userAchievements, err := s.AchievementRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	unlockedAt := make(map[uint]*time.Time, len(userAchievements))
	for _, ua := range userAchievements {
		if ua.UnlockedAt != nil {
			unlockedAt[ua.AchievementID] = ua.UnlockedAt
		}
	}

	// 同一计量方式的进度只查一次
	progressByType := make(map[string]int)

	overview := &AchievementOverview{
		Unlocked:   []AchievementProgress{},
		InProgress: []AchievementProgress{},
		Locked:     []AchievementProgress{},
	}
	for _, a := range all {
		progress, ok := progressByType[a.RequirementType]
		if !ok {
			progress, err = s.currentProgress(userID, a.RequirementType)
			if err != nil {
				return nil, err
			}
			progressByType[a.RequirementType] = progress
		}

		item := AchievementProgress{
			Achievement: a,
			Progress:    progress,
			Percent:     progressPercent(progress, a.RequirementValue),
		}
		if at, found := unlockedAt[a.ID]; found {
			item.Unlocked = true
			item.UnlockedAt = at
			item.Percent = 100
			overview.Unlocked = append(overview.Unlocked, item)
		} else if progress > 0 {
			overview.InProgress = append(overview.InProgress, item)
		} else {
			overview.Locked = append(overview.Locked, item)
		}
	}
	return overview, nil
}

// Evaluate 检查指定计量方式下的成就是否达成，返回本次新解锁的成就
func (s *AchievementService) Evaluate(userID uint, requirementTypes ...string) ([]model.Achievement, error) {
	var newlyUnlocked []model.Achievement

	for _, requirementType := range requirementTypes {
		progress, err := s.currentProgress(userID, requirementType)
		if err != nil {
			return nil, err
		}

		achievements, err := s.AchievementRepo.ListByRequirementType(requirementType)
		if err != nil {
			return nil, err
		}

		for _, a := range achievements {
			if progress < a.RequirementValue {
				break
			}

			_, err := s.AchievementRepo.FindUserAchievement(userID, a.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}

			now := time.Now()
			ua := &model.UserAchievement{
				UserID:        userID,
				AchievementID: a.ID,
				Progress:      progress,
				UnlockedAt:    &now,
			}
			if err := s.AchievementRepo.SaveUserAchievement(ua); err != nil {
				return nil, err
			}

			if a.XPReward > 0 {
				if _, err := s.Gamification.AwardXP(userID, a.XPReward, XPSourceAchievement, "解锁成就："+a.Name); err != nil {
					return nil, err
				}
			}
			newlyUnlocked = append(newlyUnlocked, a)
		}
	}
	return newlyUnlocked, nil
}

type BadgeStatus struct {
	model.Badge
	Earned bool `json:"earned"`
}

// ListBadges 全部徽章及当前用户是否已达到所需等级
func (s *AchievementService) ListBadges(userID uint) ([]BadgeStatus, error) {
	badges, err := s.AchievementRepo.ListBadges()
	if err != nil {
		return nil, err
	}
	g, err := s.GamificationRepo.FindOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}

	statuses := make([]BadgeStatus, len(badges))
	for i, b := range badges {
		statuses[i] = BadgeStatus{Badge: b, Earned: g.Level >= b.RequiredLevel}
	}
	return statuses, nil
}

// currentProgress 实时统计某一计量方式下的完成量，解锁前不落库
func (s *AchievementService) currentProgress(userID uint, requirementType string) (int, error) {
	switch requirementType {
	case model.RequirementCoursesCompleted:
		n, err := s.EnrollmentRepo.CountByUser(userID, string(model.EnrollmentCompleted))
		return int(n), err
	case model.RequirementStreakDays:
		g, err := s.GamificationRepo.FindOrCreateByUser(userID)
		if err != nil {
			return 0, err
		}
		return g.LongestStreak, nil
	case model.RequirementLearningHours:
		n, err := s.EnrollmentRepo.SumCompletedHours(userID)
		return int(n), err
	case model.RequirementQuizzesTaken:
		n, err := s.AttemptRepo.CountCompletedByUser(userID)
		return int(n), err
	case model.RequirementPerfectScores:
		n, err := s.AttemptRepo.CountPerfectByUser(userID)
		return int(n), err
	default:
		return 0, nil
	}
}

func progressPercent(progress, required int) float64 {
	if required <= 0 {
		return 100
	}
	percent := float64(progress) / float64(required) * 100
	if percent > 100 {
		percent = 100
	}
	return roundScore(percent)
}
