package util

import "errors"

var (
	ErrUserNotFound          = errors.New("用户不存在")
	ErrEmailRegistered       = errors.New("该邮箱已被注册")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrCourseNotFound        = errors.New("course not found")
	ErrCourseNotPublished    = errors.New("course not published")
	ErrCourseHasNoModules    = errors.New("course has no modules")
	ErrModuleNotFound        = errors.New("course module not found")
	ErrAlreadyEnrolled       = errors.New("already enrolled in this course")
	ErrNotEnrolled           = errors.New("not enrolled in this course")
	ErrAssessmentNotFound    = errors.New("assessment not found")
	ErrAssessmentNoQuestions = errors.New("assessment has no questions")
	ErrAttemptNotFound       = errors.New("attempt not found")
	ErrNoAttemptInProgress   = errors.New("no attempt in progress")
	ErrCertificateNotFound   = errors.New("certificate not found")
	ErrRoadmapNotFound       = errors.New("roadmap not found")
	ErrStepNotFound          = errors.New("roadmap step not found")
)
