package repository

import (
	"eduai_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) Create(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.First(&a, id).Error
	return &a, err
}

func (r *AssessmentRepository) FindByIDWithQuestions(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("`order` asc, created_at asc")
	}).First(&a, id).Error
	return &a, err
}

func (r *AssessmentRepository) List(page, limit int, status, field string) ([]model.Assessment, int64, error) {
	var as []model.Assessment
	var total int64

	query := r.DB.Model(&model.Assessment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if field != "" {
		query = query.Where("field = ?", field)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

func (r *AssessmentRepository) ListByCreator(creatorID uint, page, limit int) ([]model.Assessment, int64, error) {
	var as []model.Assessment
	var total int64

	query := r.DB.Model(&model.Assessment{}).Where("created_by_id = ?", creatorID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

func (r *AssessmentRepository) Update(a *model.Assessment) error {
	return r.DB.Save(a).Error
}

func (r *AssessmentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Assessment{}, id).Error
}

// UpdateStatistics 整体覆写评测的统计快照
func (r *AssessmentRepository) UpdateStatistics(id uint, totalAttempts int, averageScore float64, topSkillGaps []byte) error {
	return r.DB.Model(&model.Assessment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_attempts": totalAttempts,
			"average_score":  averageScore,
			"top_skill_gaps": topSkillGaps,
		}).Error
}

// Question related methods

func (r *AssessmentRepository) CreateQuestion(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *AssessmentRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *AssessmentRepository) ListQuestions(assessmentID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("assessment_id = ?", assessmentID).
		Order("`order` asc, created_at asc").
		Find(&qs).Error
	return qs, err
}

func (r *AssessmentRepository) CountQuestions(assessmentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("assessment_id = ?", assessmentID).Count(&count).Error
	return count, err
}

func (r *AssessmentRepository) UpdateQuestion(question *model.Question) error {
	return r.DB.Save(question).Error
}

func (r *AssessmentRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}
