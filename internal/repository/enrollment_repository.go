package repository

import (
	"eduai_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) FindByID(id uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Preload("Course").First(&enrollment, id).Error
	return &enrollment, err
}

func (r *EnrollmentRepository) FindByUserAndCourse(userID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	return &enrollment, err
}

func (r *EnrollmentRepository) ListByUser(userID uint, status string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	query := r.DB.Preload("Course").Preload("Course.Category").Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at desc").Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) Update(enrollment *model.Enrollment) error {
	return r.DB.Save(enrollment).Error
}

func (r *EnrollmentRepository) CountByUser(userID uint, status string) (int64, error) {
	var count int64
	query := r.DB.Model(&model.Enrollment{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

// SumCompletedHours 用户已完成课程的总学时
func (r *EnrollmentRepository) SumCompletedHours(userID uint) (int64, error) {
	var hours int64
	err := r.DB.Model(&model.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id AND courses.deleted_at IS NULL").
		Where("enrollments.user_id = ? AND enrollments.status = ?", userID, model.EnrollmentCompleted).
		Select("COALESCE(SUM(courses.duration_hours), 0)").
		Scan(&hours).Error
	return hours, err
}

// EnrolledCourseIDs 用户已报名的课程ID集合，推荐去重用
func (r *EnrollmentRepository) EnrolledCourseIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ?", userID).
		Pluck("course_id", &ids).Error
	return ids, err
}

// EnrolledCategoryIDs 用户报名课程所属的分类ID集合
func (r *EnrollmentRepository) EnrolledCategoryIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id AND courses.deleted_at IS NULL").
		Where("enrollments.user_id = ?", userID).
		Distinct().
		Pluck("courses.category_id", &ids).Error
	return ids, err
}

// Rating related methods

func (r *EnrollmentRepository) FindRating(userID, courseID uint) (*model.CourseRating, error) {
	var rating model.CourseRating
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&rating).Error
	return &rating, err
}

func (r *EnrollmentRepository) SaveRating(rating *model.CourseRating) error {
	return r.DB.Save(rating).Error
}

func (r *EnrollmentRepository) ListRatings(courseID uint, page, limit int) ([]model.CourseRating, int64, error) {
	var ratings []model.CourseRating
	var total int64

	query := r.DB.Model(&model.CourseRating{}).Where("course_id = ?", courseID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&ratings).Error
	return ratings, total, err
}

// RatingStats 课程评分均值与数量
func (r *EnrollmentRepository) RatingStats(courseID uint) (float64, int64, error) {
	var result struct {
		Average float64
		Total   int64
	}
	err := r.DB.Model(&model.CourseRating{}).
		Select("COALESCE(AVG(rating), 0) as average, COUNT(*) as total").
		Where("course_id = ?", courseID).
		Scan(&result).Error
	return result.Average, result.Total, err
}
