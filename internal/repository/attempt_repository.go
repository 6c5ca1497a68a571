package repository

import (
	"eduai_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.DB.Preload("Assessment").First(&attempt, id).Error
	return &attempt, err
}

// FindInProgress 用户在某评测下进行中的答题
func (r *AttemptRepository) FindInProgress(userID, assessmentID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.DB.Where("user_id = ? AND assessment_id = ? AND status = ?",
		userID, assessmentID, model.AttemptInProgress).
		First(&attempt).Error
	return &attempt, err
}

func (r *AttemptRepository) ListByUserAndAssessment(userID, assessmentID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		Order("created_at desc").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByUser(userID uint, status string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	query := r.DB.Preload("Assessment").Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at desc").Find(&attempts).Error
	return attempts, err
}

// ListCompletedByAssessment 按完成先后排列的全部已完成答题，统计刷新用
func (r *AttemptRepository) ListCompletedByAssessment(assessmentID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("assessment_id = ? AND status = ?", assessmentID, model.AttemptCompleted).
		Order("completed_at asc, id asc").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByAssessment(assessmentID uint, page, limit int) ([]model.Attempt, int64, error) {
	var attempts []model.Attempt
	var total int64

	query := r.DB.Model(&model.Attempt{}).Where("assessment_id = ?", assessmentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Preload("User").Order("created_at desc").Offset(offset).Limit(limit).Find(&attempts).Error
	return attempts, total, err
}

func (r *AttemptRepository) Update(attempt *model.Attempt) error {
	return r.DB.Save(attempt).Error
}

func (r *AttemptRepository) CountCompletedByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).
		Where("user_id = ? AND status = ?", userID, model.AttemptCompleted).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) CountPerfectByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).
		Where("user_id = ? AND status = ? AND score = 100", userID, model.AttemptCompleted).
		Count(&count).Error
	return count, err
}

// AverageScoreByUser 用户已完成答题的平均分
func (r *AttemptRepository) AverageScoreByUser(userID uint) (float64, error) {
	var avg float64
	err := r.DB.Model(&model.Attempt{}).
		Select("COALESCE(AVG(score), 0)").
		Where("user_id = ? AND status = ?", userID, model.AttemptCompleted).
		Scan(&avg).Error
	return avg, err
}

// ListCompletedByUser 用户已完成答题，按完成时间排序（技能分析用）
func (r *AttemptRepository) ListCompletedByUser(userID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("user_id = ? AND status = ?", userID, model.AttemptCompleted).
		Order("completed_at asc, id asc").
		Find(&attempts).Error
	return attempts, err
}
