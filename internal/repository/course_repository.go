package repository

import (
	"eduai_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Category").Preload("Instructor").First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindByIDWithModules(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Category").Preload("Instructor").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc, created_at asc")
		}).
		First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindBySlug(slug string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("slug = ?", slug).First(&course).Error
	return &course, err
}

// ListPublished 已发布课程目录，支持分类/难度/关键字过滤
func (r *CourseRepository) ListPublished(page, limit int, categoryID uint, difficulty, search string) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := r.DB.Model(&model.Course{}).Where("status = ?", model.CoursePublished)
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}
	if search != "" {
		query = query.Where("title LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Preload("Category").
		Order("enrolled_count desc, created_at desc").
		Offset(offset).Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) ListByInstructor(instructorID uint, page, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := r.DB.Model(&model.Course{}).Where("instructor_id = ?", instructorID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Preload("Category").Order("created_at desc").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, total, err
}

// ListPopularInCategories 按报名量排序的分类热门课程，推荐用
func (r *CourseRepository) ListPopularInCategories(categoryIDs []uint, limit int) ([]model.Course, error) {
	var courses []model.Course
	query := r.DB.Where("status = ?", model.CoursePublished)
	if len(categoryIDs) > 0 {
		query = query.Where("category_id IN ?", categoryIDs)
	}
	err := query.Order("enrolled_count desc").Limit(limit).Find(&courses).Error
	return courses, err
}

// ListTrending 最近创建且有报名的课程
func (r *CourseRepository) ListTrending(limit int) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("status = ?", model.CoursePublished).
		Order("created_at desc, enrolled_count desc").
		Limit(limit).
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListPublishedByDifficulty(difficulty model.CourseDifficulty, limit int) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("status = ? AND difficulty = ?", model.CoursePublished, difficulty).
		Order("enrolled_count desc").
		Limit(limit).
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) CountByCategory(categoryID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}

func (r *CourseRepository) IncrementEnrolledCount(courseID uint) error {
	return r.DB.Model(&model.Course{}).
		Where("id = ?", courseID).
		Update("enrolled_count", gorm.Expr("enrolled_count + 1")).
		Error
}

func (r *CourseRepository) UpdateRatingStats(courseID uint, average float64, total int) error {
	return r.DB.Model(&model.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"average_rating": average,
			"total_ratings":  total,
		}).Error
}

// Module related methods

func (r *CourseRepository) CreateModule(module *model.CourseModule) error {
	return r.DB.Create(module).Error
}

func (r *CourseRepository) FindModuleByID(id uint) (*model.CourseModule, error) {
	var module model.CourseModule
	err := r.DB.First(&module, id).Error
	return &module, err
}

func (r *CourseRepository) ListModules(courseID uint) ([]model.CourseModule, error) {
	var modules []model.CourseModule
	err := r.DB.Where("course_id = ?", courseID).
		Order("`order` asc, created_at asc").
		Find(&modules).Error
	return modules, err
}

func (r *CourseRepository) CountModules(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CourseModule{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *CourseRepository) UpdateModule(module *model.CourseModule) error {
	return r.DB.Save(module).Error
}

// ReorderModules 按给定ID顺序重排模块
func (r *CourseRepository) ReorderModules(courseID uint, moduleIDs []uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i, moduleID := range moduleIDs {
			if err := tx.Model(&model.CourseModule{}).
				Where("id = ? AND course_id = ?", moduleID, courseID).
				Update("order", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CourseRepository) DeleteModule(id uint) error {
	return r.DB.Delete(&model.CourseModule{}, id).Error
}
