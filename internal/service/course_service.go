package service

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
	"eduai_backend/internal/util"
	"eduai_backend/pkg/monitoring"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseService 负责课程、章节、报名、学习进度与评分
type CourseService struct {
	CourseRepo     *repository.CourseRepository
	CategoryRepo   *repository.CategoryRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Gamification   *GamificationService
	Achievements   *AchievementService
	Certificates   *CertificateService
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	categoryRepo *repository.CategoryRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	gamification *GamificationService,
	achievements *AchievementService,
	certificates *CertificateService,
) *CourseService {
	return &CourseService{
		CourseRepo:     courseRepo,
		CategoryRepo:   categoryRepo,
		EnrollmentRepo: enrollmentRepo,
		Gamification:   gamification,
		Achievements:   achievements,
		Certificates:   certificates,
	}
}

type CourseRequest struct {
	Title         string                 `json:"title" binding:"required"`
	Description   string                 `json:"description"`
	CategoryID    uint                   `json:"categoryId" binding:"required"`
	Difficulty    model.CourseDifficulty `json:"difficulty"`
	DurationHours int                    `json:"durationHours"`
	Thumbnail     string                 `json:"thumbnail"`
}

func (s *CourseService) CreateCourse(instructorID uint, req CourseRequest) (*model.Course, error) {
	if _, err := s.CategoryRepo.FindByID(req.CategoryID); err != nil {
		return nil, errors.New("课程分类不存在")
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyBeginner
	}

	course := &model.Course{
		Title:         req.Title,
		Slug:          s.uniqueSlug(req.Title),
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		InstructorID:  instructorID,
		Difficulty:    difficulty,
		DurationHours: req.DurationHours,
		Thumbnail:     req.Thumbnail,
		Status:        model.CourseDraft,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(userID uint, role model.UserRole, courseID uint, req CourseRequest) (*model.Course, error) {
	course, err := s.findManagedCourse(userID, role, courseID)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != 0 && req.CategoryID != course.CategoryID {
		if _, err := s.CategoryRepo.FindByID(req.CategoryID); err != nil {
			return nil, errors.New("课程分类不存在")
		}
		course.CategoryID = req.CategoryID
	}

	course.Title = req.Title
	course.Description = req.Description
	if req.Difficulty != "" {
		course.Difficulty = req.Difficulty
	}
	course.DurationHours = req.DurationHours
	if req.Thumbnail != "" {
		course.Thumbnail = req.Thumbnail
	}

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

// PublishCourse 上架课程，至少需要一个章节
func (s *CourseService) PublishCourse(userID uint, role model.UserRole, courseID uint) (*model.Course, error) {
	course, err := s.findManagedCourse(userID, role, courseID)
	if err != nil {
		return nil, err
	}

	count, err := s.CourseRepo.CountModules(courseID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, util.ErrCourseHasNoModules
	}

	course.Status = model.CoursePublished
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(userID uint, role model.UserRole, courseID uint) error {
	if _, err := s.findManagedCourse(userID, role, courseID); err != nil {
		return err
	}
	return s.CourseRepo.Delete(courseID)
}

func (s *CourseService) ListPublished(page, limit int, categoryID uint, difficulty, search string) ([]model.Course, int64, error) {
	return s.CourseRepo.ListPublished(page, limit, categoryID, difficulty, search)
}

func (s *CourseService) ListByInstructor(instructorID uint, page, limit int) ([]model.Course, int64, error) {
	return s.CourseRepo.ListByInstructor(instructorID, page, limit)
}

type CourseDetail struct {
	*model.Course
	Enrolled   bool              `json:"enrolled"`
	Enrollment *model.Enrollment `json:"enrollment,omitempty"`
}

// GetCourseDetail 课程详情。未上架课程仅对讲师本人和管理员可见，
// viewerID 为 0 表示未登录访客。
func (s *CourseService) GetCourseDetail(viewerID uint, role model.UserRole, courseID uint) (*CourseDetail, error) {
	course, err := s.CourseRepo.FindByIDWithModules(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if course.Status != model.CoursePublished && !canManageCourse(viewerID, role, course) {
		return nil, util.ErrCourseNotFound
	}

	detail := &CourseDetail{Course: course}
	if viewerID != 0 {
		if enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(viewerID, courseID); err == nil {
			detail.Enrolled = true
			detail.Enrollment = enrollment
		}
	}
	return detail, nil
}

type ModuleRequest struct {
	Title           string                  `json:"title" binding:"required"`
	Description     string                  `json:"description"`
	Order           int                     `json:"order"`
	ContentType     model.ModuleContentType `json:"contentType"`
	ContentURL      string                  `json:"contentUrl"`
	DurationMinutes int                     `json:"durationMinutes"`
	IsFreePreview   bool                    `json:"isFreePreview"`
}

func (s *CourseService) AddModule(userID uint, role model.UserRole, courseID uint, req ModuleRequest) (*model.CourseModule, error) {
	if _, err := s.findManagedCourse(userID, role, courseID); err != nil {
		return nil, err
	}

	order := req.Order
	if order == 0 {
		count, err := s.CourseRepo.CountModules(courseID)
		if err != nil {
			return nil, err
		}
		order = int(count) + 1
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = model.ModuleArticle
	}

	module := &model.CourseModule{
		CourseID:        courseID,
		Title:           req.Title,
		Description:     req.Description,
		Order:           order,
		ContentType:     contentType,
		ContentURL:      req.ContentURL,
		DurationMinutes: req.DurationMinutes,
		IsFreePreview:   req.IsFreePreview,
	}
	if err := s.CourseRepo.CreateModule(module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *CourseService) UpdateModule(userID uint, role model.UserRole, moduleID uint, req ModuleRequest) (*model.CourseModule, error) {
	module, err := s.CourseRepo.FindModuleByID(moduleID)
	if err != nil {
		return nil, util.ErrModuleNotFound
	}
	if _, err := s.findManagedCourse(userID, role, module.CourseID); err != nil {
		return nil, err
	}

	module.Title = req.Title
	module.Description = req.Description
	if req.Order != 0 {
		module.Order = req.Order
	}
	if req.ContentType != "" {
		module.ContentType = req.ContentType
	}
	module.ContentURL = req.ContentURL
	module.DurationMinutes = req.DurationMinutes
	module.IsFreePreview = req.IsFreePreview

	if err := s.CourseRepo.UpdateModule(module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *CourseService) DeleteModule(userID uint, role model.UserRole, moduleID uint) error {
	module, err := s.CourseRepo.FindModuleByID(moduleID)
	if err != nil {
		return util.ErrModuleNotFound
	}
	if _, err := s.findManagedCourse(userID, role, module.CourseID); err != nil {
		return err
	}
	return s.CourseRepo.DeleteModule(moduleID)
}

// ReorderModules 按给定ID顺序重排课程模块，列表必须覆盖全部模块
func (s *CourseService) ReorderModules(userID uint, role model.UserRole, courseID uint, moduleIDs []uint) ([]model.CourseModule, error) {
	if _, err := s.findManagedCourse(userID, role, courseID); err != nil {
		return nil, err
	}

	modules, err := s.CourseRepo.ListModules(courseID)
	if err != nil {
		return nil, err
	}
	if len(moduleIDs) != len(modules) {
		return nil, errors.New("模块列表不完整")
	}
	known := make(map[uint]bool, len(modules))
	for _, module := range modules {
		known[module.ID] = true
	}
	for _, id := range moduleIDs {
		if !known[id] {
			return nil, util.ErrModuleNotFound
		}
	}

	if err := s.CourseRepo.ReorderModules(courseID, moduleIDs); err != nil {
		return nil, err
	}
	return s.CourseRepo.ListModules(courseID)
}

// Enroll 报名已上架课程
func (s *CourseService) Enroll(userID, courseID uint) (*model.Enrollment, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if course.Status != model.CoursePublished {
		return nil, util.ErrCourseNotPublished
	}

	if _, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := &model.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   model.EnrollmentActive,
	}
	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		return nil, err
	}
	_ = s.CourseRepo.IncrementEnrolledCount(courseID)
	monitoring.CourseEnrollments.Inc()
	return enrollment, nil
}

type ModuleCompletionResult struct {
	Enrollment      *model.Enrollment  `json:"enrollment"`
	CourseCompleted bool               `json:"courseCompleted"`
	XPEarned        int                `json:"xpEarned"`
	Certificate     *model.Certificate `json:"certificate,omitempty"`
}

// CompleteModule 标记章节完成并刷新进度。
// 全部章节完成时结课，发放经验值与证书。
func (s *CourseService) CompleteModule(userID, courseID, moduleID uint) (*ModuleCompletionResult, error) {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}

	module, err := s.CourseRepo.FindModuleByID(moduleID)
	if err != nil || module.CourseID != courseID {
		return nil, util.ErrModuleNotFound
	}

	completed := parseCompletedModules(enrollment.CompletedModules)
	for _, id := range completed {
		if id == moduleID {
			return &ModuleCompletionResult{Enrollment: enrollment}, nil
		}
	}
	completed = append(completed, moduleID)

	total, err := s.CourseRepo.CountModules(courseID)
	if err != nil {
		return nil, err
	}

	enrollment.CompletedModules, _ = json.Marshal(completed)
	if total > 0 {
		enrollment.Progress = roundScore(float64(len(completed)) / float64(total) * 100)
	}

	result := &ModuleCompletionResult{Enrollment: enrollment}
	courseCompleted := total > 0 && int64(len(completed)) >= total && enrollment.Status != model.EnrollmentCompleted
	if courseCompleted {
		now := time.Now()
		enrollment.Status = model.EnrollmentCompleted
		enrollment.CompletedAt = &now
	}

	if err := s.EnrollmentRepo.Update(enrollment); err != nil {
		return nil, err
	}

	if courseCompleted {
		result.CourseCompleted = true

		course, err := s.CourseRepo.FindByID(courseID)
		if err == nil {
			if _, err := s.Gamification.AwardXP(userID, XPCourseCompletion, XPSourceCourse, "完成课程："+course.Title); err == nil {
				result.XPEarned = XPCourseCompletion
			}
			if cert, err := s.Certificates.Issue(userID, courseID); err == nil {
				result.Certificate = cert
			}
		}

		if _, err := s.Achievements.Evaluate(userID, model.RequirementCoursesCompleted, model.RequirementLearningHours); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *CourseService) MyEnrollments(userID uint, status string) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByUser(userID, status)
}

type RatingRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Review string `json:"review"`
}

// RateCourse 报名后才能评分，重复评分覆盖旧评分并刷新课程均分
func (s *CourseService) RateCourse(userID, courseID uint, req RatingRequest) (*model.CourseRating, error) {
	if _, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID); err != nil {
		return nil, util.ErrNotEnrolled
	}

	rating, err := s.EnrollmentRepo.FindRating(userID, courseID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		rating = &model.CourseRating{UserID: userID, CourseID: courseID}
	}
	rating.Rating = req.Rating
	rating.Review = req.Review
	if err := s.EnrollmentRepo.SaveRating(rating); err != nil {
		return nil, err
	}

	average, total, err := s.EnrollmentRepo.RatingStats(courseID)
	if err == nil {
		_ = s.CourseRepo.UpdateRatingStats(courseID, roundScore(average), int(total))
	}
	return rating, nil
}

func (s *CourseService) ListRatings(courseID uint, page, limit int) ([]model.CourseRating, int64, error) {
	return s.EnrollmentRepo.ListRatings(courseID, page, limit)
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (s *CourseService) ListCategories() ([]model.Category, error) {
	return s.CategoryRepo.ListAll()
}

func (s *CourseService) CreateCategory(req CategoryRequest) (*model.Category, error) {
	category := &model.Category{
		Name:        req.Name,
		Slug:        slugify(req.Name),
		Description: req.Description,
		Icon:        req.Icon,
	}
	if _, err := s.CategoryRepo.FindBySlug(category.Slug); err == nil {
		return nil, errors.New("分类已存在")
	}
	if err := s.CategoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CourseService) UpdateCategory(id uint, req CategoryRequest) (*model.Category, error) {
	category, err := s.CategoryRepo.FindByID(id)
	if err != nil {
		return nil, errors.New("课程分类不存在")
	}

	category.Name = req.Name
	category.Description = req.Description
	category.Icon = req.Icon
	if err := s.CategoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory 分类下还有课程时拒绝删除
func (s *CourseService) DeleteCategory(id uint) error {
	if _, err := s.CategoryRepo.FindByID(id); err != nil {
		return errors.New("课程分类不存在")
	}
	count, err := s.CourseRepo.CountByCategory(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("分类下存在课程，无法删除")
	}
	return s.CategoryRepo.Delete(id)
}

func (s *CourseService) findManagedCourse(userID uint, role model.UserRole, courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if !canManageCourse(userID, role, course) {
		return nil, util.ErrPermissionDenied
	}
	return course, nil
}

func canManageCourse(userID uint, role model.UserRole, course *model.Course) bool {
	return role == model.Admin || (userID != 0 && course.InstructorID == userID)
}

// uniqueSlug 由标题生成短横线风格的唯一标识，冲突时追加随机后缀
func (s *CourseService) uniqueSlug(title string) string {
	slug := slugify(title)
	if _, err := s.CourseRepo.FindBySlug(slug); err == nil {
		slug = slug + "-" + strings.Split(uuid.New().String(), "-")[0]
	}
	return slug
}

func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "course-" + strings.Split(uuid.New().String(), "-")[0]
	}
	return slug
}

func parseCompletedModules(raw json.RawMessage) []uint {
	if len(raw) == 0 {
		return []uint{}
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return []uint{}
	}
	return ids
}
