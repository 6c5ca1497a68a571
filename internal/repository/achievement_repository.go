package repository

import (
	"eduai_backend/internal/model"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) ListAll() ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Order("category asc, requirement_value asc").Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepository) FindByName(name string) (*model.Achievement, error) {
	var achievement model.Achievement
	err := r.DB.Where("name = ?", name).First(&achievement).Error
	return &achievement, err
}

func (r *AchievementRepository) ListByRequirementType(requirementType string) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Where("requirement_type = ?", requirementType).
		Order("requirement_value asc").
		Find(&achievements).Error
	return achievements, err
}

// UserAchievement related methods

func (r *AchievementRepository) ListByUser(userID uint) ([]model.UserAchievement, error) {
	var uas []model.UserAchievement
	err := r.DB.Preload("Achievement").Where("user_id = ?", userID).Find(&uas).Error
	return uas, err
}

func (r *AchievementRepository) FindUserAchievement(userID, achievementID uint) (*model.UserAchievement, error) {
	var ua model.UserAchievement
	err := r.DB.Where("user_id = ? AND achievement_id = ?", userID, achievementID).First(&ua).Error
	return &ua, err
}

func (r *AchievementRepository) SaveUserAchievement(ua *model.UserAchievement) error {
	return r.DB.Save(ua).Error
}

// Badge related methods

func (r *AchievementRepository) ListBadges() ([]model.Badge, error) {
	var badges []model.Badge
	err := r.DB.Order("required_level asc").Find(&badges).Error
	return badges, err
}
