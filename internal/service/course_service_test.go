package service

import (
	"errors"
	"strings"
	"testing"

	"eduai_backend/internal/config"
	"eduai_backend/internal/model"
	"eduai_backend/internal/repository"
	"eduai_backend/internal/testutil"
	"eduai_backend/internal/util"

	"gorm.io/gorm"
)

func newCourseService(t *testing.T) (*gorm.DB, *CourseService, *GamificationService) {
	t.Helper()
	db := testutil.DB(t)
	gamRepo := repository.NewGamificationRepository(db)
	gam := NewGamificationService(gamRepo, nil, &config.Config{})
	ach := NewAchievementService(
		repository.NewAchievementRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewEnrollmentRepository(db),
		gamRepo,
		gam,
	)
	certs := NewCertificateService(
		repository.NewCertificateRepository(db),
		repository.NewUserRepository(db),
		repository.NewCourseRepository(db),
	)
	svc := NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewEnrollmentRepository(db),
		gam,
		ach,
		certs,
	)
	return db, svc, gam
}

func TestCreateCourse_SlugAndDefaults(t *testing.T) {
	db, svc, _ := newCourseService(t)
	instructor := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)
	category := testutil.SeedCategory(t, db, "后端开发")

	course, err := svc.CreateCourse(instructor.ID, CourseRequest{
		Title:      "Advanced Go Patterns",
		CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if course.Slug != "advanced-go-patterns" {
		t.Errorf("slug = %q, want advanced-go-patterns", course.Slug)
	}
	if course.Status != model.CourseDraft {
		t.Errorf("status = %q, want draft", course.Status)
	}
	if course.Difficulty != model.DifficultyBeginner {
		t.Errorf("difficulty = %q, want beginner", course.Difficulty)
	}

	// 同名课程的 slug 追加随机后缀
	dup, err := svc.CreateCourse(instructor.ID, CourseRequest{
		Title:      "Advanced Go Patterns",
		CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("create duplicate title: %v", err)
	}
	if dup.Slug == course.Slug {
		t.Errorf("duplicate title produced same slug %q", dup.Slug)
	}
	if !strings.HasPrefix(dup.Slug, "advanced-go-patterns-") {
		t.Errorf("slug = %q, want advanced-go-patterns-<suffix>", dup.Slug)
	}

	if _, err := svc.CreateCourse(instructor.ID, CourseRequest{Title: "孤儿课程", CategoryID: 99999}); err == nil {
		t.Fatal("expected error for missing category")
	}
}

func TestPublishCourse_RequiresModules(t *testing.T) {
	db, svc, _ := newCourseService(t)
	instructor := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)
	category := testutil.SeedCategory(t, db, "后端开发")
	course := testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CourseDraft)

	if _, err := svc.PublishCourse(instructor.ID, model.Instructor, course.ID); !errors.Is(err, util.ErrCourseHasNoModules) {
		t.Fatalf("publish without modules: err = %v, want ErrCourseHasNoModules", err)
	}

	testutil.SeedModule(t, db, course.ID, 1)
	published, err := svc.PublishCourse(instructor.ID, model.Instructor, course.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Status != model.CoursePublished {
		t.Errorf("status = %q, want published", published.Status)
	}
}

func TestReorderModules(t *testing.T) {
	db, svc, _ := newCourseService(t)
	instructor := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)
	outsider := testutil.SeedUser(t, db, "other@test.dev", model.Instructor)
	category := testutil.SeedCategory(t, db, "后端开发")
	course := testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CourseDraft)
	m1 := testutil.SeedModule(t, db, course.ID, 1)
	m2 := testutil.SeedModule(t, db, course.ID, 2)
	m3 := testutil.SeedModule(t, db, course.ID, 3)

	modules, err := svc.ReorderModules(instructor.ID, model.Instructor, course.ID, []uint{m3.ID, m1.ID, m2.ID})
	if err != nil {
		t.Fatalf("reorder modules: %v", err)
	}
	wantIDs := []uint{m3.ID, m1.ID, m2.ID}
	if len(modules) != 3 {
		t.Fatalf("modules = %d, want 3", len(modules))
	}
	for i, module := range modules {
		if module.ID != wantIDs[i] {
			t.Errorf("modules[%d] = %d, want %d", i, module.ID, wantIDs[i])
		}
		if module.Order != i+1 {
			t.Errorf("modules[%d] order = %d, want %d", i, module.Order, i+1)
		}
	}

	if _, err := svc.ReorderModules(instructor.ID, model.Instructor, course.ID, []uint{m1.ID, m2.ID}); err == nil {
		t.Fatal("expected error for incomplete module list")
	}
	if _, err := svc.ReorderModules(instructor.ID, model.Instructor, course.ID, []uint{m1.ID, m2.ID, 99999}); !errors.Is(err, util.ErrModuleNotFound) {
		t.Fatalf("reorder with foreign id: err = %v, want ErrModuleNotFound", err)
	}
	if _, err := svc.ReorderModules(outsider.ID, model.Instructor, course.ID, []uint{m3.ID, m1.ID, m2.ID}); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("reorder by outsider: err = %v, want ErrPermissionDenied", err)
	}
}

func TestEnroll_Guards(t *testing.T) {
	db, svc, _ := newCourseService(t)
	instructor := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	category := testutil.SeedCategory(t, db, "后端开发")
	published := testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CoursePublished)
	draft := testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CourseDraft)

	enrollment, err := svc.Enroll(student.ID, published.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if enrollment.Status != model.EnrollmentActive {
		t.Errorf("enrollment status = %q, want active", enrollment.Status)
	}

	var course model.Course
	if err := db.First(&course, published.ID).Error; err != nil {
		t.Fatalf("load course: %v", err)
	}
	if course.EnrolledCount != 1 {
		t.Errorf("enrolled count = %d, want 1", course.EnrolledCount)
	}

	if _, err := svc.Enroll(student.ID, published.ID); !errors.Is(err, util.ErrAlreadyEnrolled) {
		t.Fatalf("duplicate enroll: err = %v, want ErrAlreadyEnrolled", err)
	}
	if _, err := svc.Enroll(student.ID, draft.ID); !errors.Is(err, util.ErrCourseNotPublished) {
		t.Fatalf("enroll in draft: err = %v, want ErrCourseNotPublished", err)
	}
	if _, err := svc.Enroll(student.ID, 99999); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("enroll in missing course: err = %v, want ErrCourseNotFound", err)
	}
}

func TestCompleteModule_ProgressAndCompletion(t *testing.T) {
	db, svc, gam := newCourseService(t)
	instructor := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	category := testutil.SeedCategory(t, db, "后端开发")
	course := testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CoursePublished)
	m1 := testutil.SeedModule(t, db, course.ID, 1)
	m2 := testutil.SeedModule(t, db, course.ID, 2)
	m3 := testutil.SeedModule(t, db, course.ID, 3)

	if _, err := svc.Enroll(student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	res, err := svc.CompleteModule(student.ID, course.ID, m1.ID)
	if err != nil {
		t.Fatalf("complete module 1: %v", err)
	}
	if res.Enrollment.Progress != 33.33 {
		t.Errorf("progress = %v, want 33.33", res.Enrollment.Progress)
	}
	if res.CourseCompleted {
		t.Error("course marked completed after one of three modules")
	}

	// 重复完成同一章节不改变进度
	res, err = svc.CompleteModule(student.ID, course.ID, m1.ID)
	if err != nil {
		t.Fatalf("repeat module 1: %v", err)
	}
	if res.Enrollment.Progress != 33.33 || res.CourseCompleted {
		t.Errorf("repeat completion changed state: progress %v completed %v", res.Enrollment.Progress, res.CourseCompleted)
	}

	if res, err = svc.CompleteModule(student.ID, course.ID, m2.ID); err != nil {
		t.Fatalf("complete module 2: %v", err)
	}
	if res.Enrollment.Progress != 66.67 {
		t.Errorf("progress = %v, want 66.67", res.Enrollment.Progress)
	}

	res, err = svc.CompleteModule(student.ID, course.ID, m3.ID)
	if err != nil {
		t.Fatalf("complete module 3: %v", err)
	}
	if !res.CourseCompleted {
		t.Fatal("course not marked completed after all modules")
	}
	if res.Enrollment.Progress != 100 {
		t.Errorf("progress = %v, want 100", res.Enrollment.Progress)
	}
	if res.Enrollment.Status != model.EnrollmentCompleted {
		t.Errorf("enrollment status = %q, want completed", res.Enrollment.Status)
	}
	if res.Enrollment.CompletedAt == nil {
		t.Error("completed at not set")
	}
	if res.XPEarned != XPCourseCompletion {
		t.Errorf("xp earned = %d, want %d", res.XPEarned, XPCourseCompletion)
	}
	if res.Certificate == nil {
		t.Fatal("certificate not issued")
	}
	if !strings.HasPrefix(res.Certificate.Serial, "EDU-") {
		t.Errorf("certificate serial = %q, want EDU- prefix", res.Certificate.Serial)
	}

	profile, err := gam.GetProfile(student.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.TotalXP != XPCourseCompletion {
		t.Errorf("total xp = %d, want %d", profile.TotalXP, XPCourseCompletion)
	}

	// 结课后再次完成章节不再重复发证、发经验
	res, err = svc.CompleteModule(student.ID, course.ID, m3.ID)
	if err != nil {
		t.Fatalf("complete after completion: %v", err)
	}
	if res.CourseCompleted || res.XPEarned != 0 || res.Certificate != nil {
		t.Errorf("completion side effects repeated: %+v", res)
	}
}

func TestCompleteModule_Guards(t *testing.T) {
	db, svc, _ := newCourseService(t)
	instructor := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	category := testutil.SeedCategory(t, db, "后端开发")
	course := testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CoursePublished)
	module := testutil.SeedModule(t, db, course.ID, 1)
	other := testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CoursePublished)
	otherModule := testutil.SeedModule(t, db, other.ID, 1)

	if _, err := svc.CompleteModule(student.ID, course.ID, module.ID); !errors.Is(err, util.ErrNotEnrolled) {
		t.Fatalf("complete without enrollment: err = %v, want ErrNotEnrolled", err)
	}

	if _, err := svc.Enroll(student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := svc.CompleteModule(student.ID, course.ID, otherModule.ID); !errors.Is(err, util.ErrModuleNotFound) {
		t.Fatalf("complete module of another course: err = %v, want ErrModuleNotFound", err)
	}
}

func TestRateCourse_UpsertAndStats(t *testing.T) {
	db, svc, _ := newCourseService(t)
	instructor := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)
	alice := testutil.SeedUser(t, db, "alice@test.dev", model.Student)
	bob := testutil.SeedUser(t, db, "bob@test.dev", model.Student)
	outsider := testutil.SeedUser(t, db, "outsider@test.dev", model.Student)
	category := testutil.SeedCategory(t, db, "后端开发")
	course := testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CoursePublished)

	for _, id := range []uint{alice.ID, bob.ID} {
		if _, err := svc.Enroll(id, course.ID); err != nil {
			t.Fatalf("enroll %d: %v", id, err)
		}
	}

	if _, err := svc.RateCourse(outsider.ID, course.ID, RatingRequest{Rating: 5}); !errors.Is(err, util.ErrNotEnrolled) {
		t.Fatalf("rating without enrollment: err = %v, want ErrNotEnrolled", err)
	}

	if _, err := svc.RateCourse(alice.ID, course.ID, RatingRequest{Rating: 5, Review: "很实用"}); err != nil {
		t.Fatalf("rate by alice: %v", err)
	}
	if _, err := svc.RateCourse(bob.ID, course.ID, RatingRequest{Rating: 3}); err != nil {
		t.Fatalf("rate by bob: %v", err)
	}

	var got model.Course
	if err := db.First(&got, course.ID).Error; err != nil {
		t.Fatalf("load course: %v", err)
	}
	if got.AverageRating != 4.00 || got.TotalRatings != 2 {
		t.Errorf("rating stats = %v/%d, want 4.00/2", got.AverageRating, got.TotalRatings)
	}

	// 重复评分覆盖旧评分
	if _, err := svc.RateCourse(alice.ID, course.ID, RatingRequest{Rating: 1}); err != nil {
		t.Fatalf("re-rate by alice: %v", err)
	}
	if err := db.First(&got, course.ID).Error; err != nil {
		t.Fatalf("reload course: %v", err)
	}
	if got.AverageRating != 2.00 || got.TotalRatings != 2 {
		t.Errorf("rating stats after re-rate = %v/%d, want 2.00/2", got.AverageRating, got.TotalRatings)
	}

	var count int64
	if err := db.Model(&model.CourseRating{}).Where("user_id = ?", alice.ID).Count(&count).Error; err != nil {
		t.Fatalf("count ratings: %v", err)
	}
	if count != 1 {
		t.Errorf("alice rating rows = %d, want 1", count)
	}
}

func TestGetCourseDetail_Visibility(t *testing.T) {
	db, svc, _ := newCourseService(t)
	instructor := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)
	student := testutil.SeedUser(t, db, "student@test.dev", model.Student)
	category := testutil.SeedCategory(t, db, "后端开发")
	draft := testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CourseDraft)
	published := testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CoursePublished)

	if _, err := svc.GetCourseDetail(0, model.Student, draft.ID); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("guest reading draft: err = %v, want ErrCourseNotFound", err)
	}
	if _, err := svc.GetCourseDetail(student.ID, model.Student, draft.ID); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("student reading draft: err = %v, want ErrCourseNotFound", err)
	}
	if _, err := svc.GetCourseDetail(instructor.ID, model.Instructor, draft.ID); err != nil {
		t.Fatalf("instructor reading own draft: %v", err)
	}

	detail, err := svc.GetCourseDetail(student.ID, model.Student, published.ID)
	if err != nil {
		t.Fatalf("student reading published: %v", err)
	}
	if detail.Enrolled {
		t.Error("not yet enrolled but detail says enrolled")
	}

	if _, err := svc.Enroll(student.ID, published.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	detail, err = svc.GetCourseDetail(student.ID, model.Student, published.ID)
	if err != nil {
		t.Fatalf("reload detail: %v", err)
	}
	if !detail.Enrolled || detail.Enrollment == nil {
		t.Error("enrollment not attached to detail")
	}
}

func TestCategoryLifecycle(t *testing.T) {
	db, svc, _ := newCourseService(t)
	instructor := testutil.SeedUser(t, db, "instructor@test.dev", model.Instructor)

	category, err := svc.CreateCategory(CategoryRequest{Name: "Machine Learning"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if category.Slug != "machine-learning" {
		t.Errorf("slug = %q, want machine-learning", category.Slug)
	}

	if _, err := svc.CreateCategory(CategoryRequest{Name: "Machine Learning"}); err == nil {
		t.Fatal("expected error for duplicate category")
	}

	testutil.SeedCourse(t, db, instructor.ID, category.ID, model.CourseDraft)
	if err := svc.DeleteCategory(category.ID); err == nil {
		t.Fatal("expected error deleting category with courses")
	}

	empty, err := svc.CreateCategory(CategoryRequest{Name: "Quantum Computing"})
	if err != nil {
		t.Fatalf("create empty category: %v", err)
	}
	if err := svc.DeleteCategory(empty.ID); err != nil {
		t.Fatalf("delete empty category: %v", err)
	}
}
