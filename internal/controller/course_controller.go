package controller

import (
	"errors"
	"strconv"

	"eduai_backend/internal/model"
	"eduai_backend/internal/service"
	"eduai_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CourseController 处理课程目录、报名学习与讲师管理的HTTP请求
type CourseController struct {
	CourseService *service.CourseService
	MediaService  *service.MediaService
}

func NewCourseController(courseService *service.CourseService, mediaService *service.MediaService) *CourseController {
	return &CourseController{
		CourseService: courseService,
		MediaService:  mediaService,
	}
}

// ListCourses godoc
// @Summary 获取课程目录
// @Description 获取已发布课程列表，支持分类、难度筛选和关键词搜索
// @Tags 课程
// @Produce  json
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Param   categoryId query int false "分类ID"
// @Param   difficulty query string false "难度 beginner/intermediate/advanced"
// @Param   search query string false "搜索关键词"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	categoryID := uint(0)
	if idStr := ctx.Query("categoryId"); idStr != "" {
		if id, err := strconv.Atoi(idStr); err == nil {
			categoryID = uint(id)
		}
	}
	difficulty := ctx.Query("difficulty")
	search := ctx.Query("search")

	courses, total, err := c.CourseService.ListPublished(page, limit, categoryID, difficulty, search)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, gin.H{"items": courses, "total": total, "page": page})
}

// GetCourse godoc
// @Summary 获取课程详情
// @Description 获取课程详情及章节列表，已登录用户附带报名状态
// @Tags 课程
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseDetail} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	// 游客可看已发布课程，登录用户附带报名信息
	viewerID := uint(0)
	var role model.UserRole
	if user := util.GetUserFromContext(ctx); user != nil {
		viewerID = user.UserID
		role = user.Role
	}

	detail, err := c.CourseService.GetCourseDetail(viewerID, role, uint(id))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, detail)
}

// Enroll godoc
// @Summary 报名课程
// @Description 报名已发布的课程
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程ID"
// @Success 201 {object} util.Response{data=model.Enrollment} "报名成功"
// @Failure 400 {object} util.Response "课程未发布"
// @Failure 409 {object} util.Response "已报名该课程"
// @Router /api/courses/{id}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	enrollment, err := c.CourseService.Enroll(user.UserID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrCourseNotPublished):
			util.BadRequest(ctx, "课程尚未发布")
		case errors.Is(err, util.ErrAlreadyEnrolled):
			util.Conflict(ctx, "已报名该课程")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, enrollment)
}

// MyEnrollments godoc
// @Summary 获取我的报名列表
// @Description 获取当前用户的课程报名记录
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   status query string false "状态 active/completed/dropped"
// @Success 200 {object} util.Response{data=[]model.Enrollment} "成功"
// @Router /api/enrollments [get]
func (c *CourseController) MyEnrollments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollments, err := c.CourseService.MyEnrollments(user.UserID, ctx.Query("status"))
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, enrollments)
}

// CompleteModule godoc
// @Summary 完成课程章节
// @Description 标记章节完成并刷新学习进度，全部完成后颁发证书并奖励经验
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程ID"
// @Param   moduleId path int true "章节ID"
// @Success 200 {object} util.Response{data=service.ModuleCompletionResult} "成功"
// @Failure 400 {object} util.Response "未报名该课程"
// @Failure 404 {object} util.Response "章节不存在"
// @Router /api/courses/{id}/modules/{moduleId}/complete [post]
func (c *CourseController) CompleteModule(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}
	moduleID, err := strconv.Atoi(ctx.Param("moduleId"))
	if err != nil {
		util.BadRequest(ctx, "无效的章节ID")
		return
	}

	result, err := c.CourseService.CompleteModule(user.UserID, uint(courseID), uint(moduleID))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotEnrolled):
			util.BadRequest(ctx, "请先报名该课程")
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// RateCourse godoc
// @Summary 评价课程
// @Description 报名后对课程打分（1-5），重复评价覆盖旧评价
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程ID"
// @Param   body body service.RatingRequest true "评分信息"
// @Success 200 {object} util.Response{data=model.CourseRating} "成功"
// @Failure 403 {object} util.Response "未报名该课程"
// @Router /api/courses/{id}/ratings [post]
func (c *CourseController) RateCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	var req service.RatingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rating, err := c.CourseService.RateCourse(user.UserID, uint(id), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotEnrolled):
			util.Error(ctx, 403, "报名后才能评价课程")
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, rating)
}

// ListRatings godoc
// @Summary 获取课程评价列表
// @Tags 课程
// @Produce  json
// @Param   id path int true "课程ID"
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/courses/{id}/ratings [get]
func (c *CourseController) ListRatings(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	ratings, total, err := c.CourseService.ListRatings(uint(id), page, limit)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, gin.H{"items": ratings, "total": total, "page": page})
}

// CreateCourse godoc
// @Summary 创建课程
// @Description 讲师创建课程，初始状态为草稿
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/instructor/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.CreateCourse(user.UserID, req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, course)
}

// MyCourses godoc
// @Summary 获取我创建的课程
// @Description 讲师查看自己创建的全部课程（含草稿）
// @Tags 课程管理
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/instructor/courses [get]
func (c *CourseController) MyCourses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	courses, total, err := c.CourseService.ListByInstructor(user.UserID, page, limit)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, gin.H{"items": courses, "total": total, "page": page})
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程ID"
// @Param   body body service.CourseRequest true "课程信息"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Failure 403 {object} util.Response "无权操作该课程"
// @Router /api/instructor/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.UpdateCourse(user.UserID, user.Role, uint(id), req)
	if err != nil {
		c.renderCourseError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// PublishCourse godoc
// @Summary 发布课程
// @Description 至少包含一个章节的课程才能发布
// @Tags 课程管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Failure 400 {object} util.Response "课程没有章节"
// @Router /api/instructor/courses/{id}/publish [post]
func (c *CourseController) PublishCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	course, err := c.CourseService.PublishCourse(user.UserID, user.Role, uint(id))
	if err != nil {
		if errors.Is(err, util.ErrCourseHasNoModules) {
			util.BadRequest(ctx, "请先为课程添加章节")
			return
		}
		c.renderCourseError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Tags 课程管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/instructor/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	if err := c.CourseService.DeleteCourse(user.UserID, user.Role, uint(id)); err != nil {
		c.renderCourseError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

// AddModule godoc
// @Summary 添加课程章节
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程ID"
// @Param   body body service.ModuleRequest true "章节信息"
// @Success 201 {object} util.Response{data=model.CourseModule} "创建成功"
// @Router /api/instructor/courses/{id}/modules [post]
func (c *CourseController) AddModule(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.CourseService.AddModule(user.UserID, user.Role, uint(id), req)
	if err != nil {
		c.renderCourseError(ctx, err)
		return
	}

	util.Created(ctx, module)
}

// UpdateModule godoc
// @Summary 更新课程章节
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   moduleId path int true "章节ID"
// @Param   body body service.ModuleRequest true "章节信息"
// @Success 200 {object} util.Response{data=model.CourseModule} "成功"
// @Router /api/instructor/modules/{moduleId} [put]
func (c *CourseController) UpdateModule(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	moduleID, err := strconv.Atoi(ctx.Param("moduleId"))
	if err != nil {
		util.BadRequest(ctx, "无效的章节ID")
		return
	}

	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.CourseService.UpdateModule(user.UserID, user.Role, uint(moduleID), req)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
			return
		}
		c.renderCourseError(ctx, err)
		return
	}

	util.Success(ctx, module)
}

// DeleteModule godoc
// @Summary 删除课程章节
// @Tags 课程管理
// @Produce  json
// @Security BearerAuth
// @Param   moduleId path int true "章节ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/instructor/modules/{moduleId} [delete]
func (c *CourseController) DeleteModule(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	moduleID, err := strconv.Atoi(ctx.Param("moduleId"))
	if err != nil {
		util.BadRequest(ctx, "无效的章节ID")
		return
	}

	if err := c.CourseService.DeleteModule(user.UserID, user.Role, uint(moduleID)); err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
			return
		}
		c.renderCourseError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": moduleID})
}

type ReorderModulesRequest struct {
	ModuleIDs []uint `json:"moduleIds" binding:"required,min=1"`
}

// ReorderModules godoc
// @Summary 重排课程章节
// @Description 按给定ID顺序重排全部章节，列表必须覆盖课程的所有章节
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程ID"
// @Param   body body ReorderModulesRequest true "章节ID列表"
// @Success 200 {object} util.Response{data=[]model.CourseModule} "成功"
// @Router /api/instructor/courses/{id}/modules/reorder [put]
func (c *CourseController) ReorderModules(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的课程ID")
		return
	}

	var req ReorderModulesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	modules, err := c.CourseService.ReorderModules(user.UserID, user.Role, uint(id), req.ModuleIDs)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrCourseNotFound), errors.Is(err, util.ErrPermissionDenied):
			c.renderCourseError(ctx, err)
		default:
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, modules)
}

// UploadModuleVideo godoc
// @Summary 上传章节视频
// @Description 上传视频文件，返回播放地址、封面图和探测出的时长
// @Tags 课程管理
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "视频文件"
// @Success 200 {object} util.Response{data=service.VideoUpload} "成功"
// @Failure 400 {object} util.Response "文件格式错误"
// @Router /api/instructor/modules/video [post]
func (c *CourseController) UploadModuleVideo(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "请选择要上传的文件")
		return
	}

	upload, err := c.MediaService.UploadLessonVideo(ctx.Request.Context(), file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, upload)
}

// UploadThumbnail godoc
// @Summary 上传课程封面
// @Tags 课程管理
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "封面图片"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "文件格式错误"
// @Router /api/instructor/courses/thumbnail [post]
func (c *CourseController) UploadThumbnail(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "请选择要上传的文件")
		return
	}

	url, err := c.MediaService.UploadImage(ctx.Request.Context(), file, "thumbnails")
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, gin.H{"url": url})
}

func (c *CourseController) renderCourseError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
