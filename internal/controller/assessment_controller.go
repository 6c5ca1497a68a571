package controller

import (
	"errors"
	"strconv"

	"eduai_backend/internal/service"
	"eduai_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AssessmentController 处理技能测评与答题的HTTP请求
type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

// ListAssessments godoc
// @Summary 获取测评列表
// @Description 学生查看已发布的测评，支持按技能方向筛选
// @Tags 技能测评
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Param   field query string false "技能方向"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/assessments [get]
func (c *AssessmentController) ListAssessments(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	field := ctx.Query("field")

	assessments, total, err := c.Service.ListPublished(page, limit, field)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, gin.H{"items": assessments, "total": total, "page": page})
}

// GetAssessment godoc
// @Summary 获取测评详情
// @Description 学生仅可查看已发布的测评，创建者可查看草稿
// @Tags 技能测评
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Success 200 {object} util.Response{data=model.Assessment} "成功"
// @Failure 404 {object} util.Response "测评不存在"
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) GetAssessment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的测评ID")
		return
	}

	assessment, err := c.Service.GetAssessment(user.UserID, user.Role, uint(id))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, assessment)
}

// StartAttempt godoc
// @Summary 开始测评
// @Description 返回去除正确答案标记的题目列表，已有进行中的答题时直接返回该答题
// @Tags 技能测评
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Success 200 {object} util.Response{data=service.AttemptSession} "成功"
// @Failure 400 {object} util.Response "测评不可用"
// @Router /api/assessments/{id}/start [post]
func (c *AssessmentController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的测评ID")
		return
	}

	session, err := c.Service.StartAttempt(user.UserID, uint(id))
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, session)
}

// SubmitAttempt godoc
// @Summary 提交测评答案
// @Description 评分并返回成绩单，奖励经验值，刷新测评统计
// @Tags 技能测评
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Param   body body service.SubmitRequest true "答案，键为题目ID，值为选项下标"
// @Success 200 {object} util.Response{data=service.SubmitResult} "成功"
// @Failure 400 {object} util.Response "没有进行中的答题"
// @Router /api/assessments/{id}/submit [post]
func (c *AssessmentController) SubmitAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的测评ID")
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.SubmitAttempt(user.UserID, uint(id), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAssessmentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNoAttemptInProgress):
			util.BadRequest(ctx, "没有进行中的答题，请先开始测评")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// MyAttempts godoc
// @Summary 获取我的答题记录
// @Tags 技能测评
// @Produce  json
// @Security BearerAuth
// @Param   status query string false "状态 in_progress/completed"
// @Success 200 {object} util.Response{data=[]model.Attempt} "成功"
// @Router /api/assessments/attempts [get]
func (c *AssessmentController) MyAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.Service.MyAttempts(user.UserID, ctx.Query("status"))
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, attempts)
}

// MyAssessmentAttempts godoc
// @Summary 获取我在某测评下的作答记录
// @Tags 技能测评
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Success 200 {object} util.Response{data=[]model.Attempt} "成功"
// @Router /api/assessments/{id}/attempts [get]
func (c *AssessmentController) MyAssessmentAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的测评ID")
		return
	}

	attempts, err := c.Service.MyAssessmentAttempts(user.UserID, uint(id))
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, attempts)
}

// GetAttempt godoc
// @Summary 获取答题详情
// @Description 已完成的答题附带题目和解析，用于成绩回顾
// @Tags 技能测评
// @Produce  json
// @Security BearerAuth
// @Param   attemptId path int true "答题ID"
// @Success 200 {object} util.Response{data=service.AttemptDetail} "成功"
// @Failure 404 {object} util.Response "答题记录不存在"
// @Router /api/assessments/attempts/{attemptId} [get]
func (c *AssessmentController) GetAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID, err := strconv.Atoi(ctx.Param("attemptId"))
	if err != nil {
		util.BadRequest(ctx, "无效的答题ID")
		return
	}

	detail, err := c.Service.GetAttempt(user.UserID, uint(attemptID))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, detail)
}

// CreateAssessment godoc
// @Summary 创建测评
// @Description 讲师创建测评，初始状态为草稿
// @Tags 测评管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.AssessmentRequest true "测评信息"
// @Success 201 {object} util.Response{data=model.Assessment} "创建成功"
// @Router /api/instructor/assessments [post]
func (c *AssessmentController) CreateAssessment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assessment, err := c.Service.CreateAssessment(user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, assessment)
}

// MyAssessments godoc
// @Summary 获取我创建的测评
// @Tags 测评管理
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/instructor/assessments [get]
func (c *AssessmentController) MyAssessments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	assessments, total, err := c.Service.ListByCreator(user.UserID, page, limit)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, gin.H{"items": assessments, "total": total, "page": page})
}

// UpdateAssessment godoc
// @Summary 更新测评
// @Tags 测评管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Param   body body service.AssessmentRequest true "测评信息"
// @Success 200 {object} util.Response{data=model.Assessment} "成功"
// @Failure 403 {object} util.Response "无权操作该测评"
// @Router /api/instructor/assessments/{id} [put]
func (c *AssessmentController) UpdateAssessment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的测评ID")
		return
	}

	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assessment, err := c.Service.UpdateAssessment(user.UserID, user.Role, uint(id), req)
	if err != nil {
		c.renderAssessmentError(ctx, err)
		return
	}

	util.Success(ctx, assessment)
}

// PublishAssessment godoc
// @Summary 发布测评
// @Description 至少包含一道题目的测评才能发布
// @Tags 测评管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Success 200 {object} util.Response{data=model.Assessment} "成功"
// @Failure 400 {object} util.Response "测评没有题目"
// @Router /api/instructor/assessments/{id}/publish [post]
func (c *AssessmentController) PublishAssessment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的测评ID")
		return
	}

	assessment, err := c.Service.PublishAssessment(user.UserID, user.Role, uint(id))
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNoQuestions) {
			util.BadRequest(ctx, "请先为测评添加题目")
			return
		}
		c.renderAssessmentError(ctx, err)
		return
	}

	util.Success(ctx, assessment)
}

// DeleteAssessment godoc
// @Summary 删除测评
// @Tags 测评管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/instructor/assessments/{id} [delete]
func (c *AssessmentController) DeleteAssessment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的测评ID")
		return
	}

	if err := c.Service.DeleteAssessment(user.UserID, user.Role, uint(id)); err != nil {
		c.renderAssessmentError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

// AddQuestion godoc
// @Summary 添加题目
// @Description 为测评添加单选题，至少包含两个选项且有一个正确答案
// @Tags 测评管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Param   body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response{data=model.Question} "创建成功"
// @Router /api/instructor/assessments/{id}/questions [post]
func (c *AssessmentController) AddQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的测评ID")
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.Service.AddQuestion(user.UserID, user.Role, uint(id), req)
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) || errors.Is(err, util.ErrPermissionDenied) {
			c.renderAssessmentError(ctx, err)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Created(ctx, question)
}

// ListQuestions godoc
// @Summary 获取题目列表
// @Description 讲师视角，附带正确答案标记
// @Tags 测评管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Success 200 {object} util.Response{data=[]model.Question} "成功"
// @Router /api/instructor/assessments/{id}/questions [get]
func (c *AssessmentController) ListQuestions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的测评ID")
		return
	}

	questions, err := c.Service.ListQuestions(user.UserID, user.Role, uint(id))
	if err != nil {
		c.renderAssessmentError(ctx, err)
		return
	}

	util.Success(ctx, questions)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Tags 测评管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   questionId path int true "题目ID"
// @Param   body body service.QuestionRequest true "题目信息"
// @Success 200 {object} util.Response{data=model.Question} "成功"
// @Router /api/instructor/questions/{questionId} [put]
func (c *AssessmentController) UpdateQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	questionID, err := strconv.Atoi(ctx.Param("questionId"))
	if err != nil {
		util.BadRequest(ctx, "无效的题目ID")
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.Service.UpdateQuestion(user.UserID, user.Role, uint(questionID), req)
	if err != nil {
		if errors.Is(err, util.ErrPermissionDenied) {
			util.Forbidden(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 测评管理
// @Produce  json
// @Security BearerAuth
// @Param   questionId path int true "题目ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/instructor/questions/{questionId} [delete]
func (c *AssessmentController) DeleteQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	questionID, err := strconv.Atoi(ctx.Param("questionId"))
	if err != nil {
		util.BadRequest(ctx, "无效的题目ID")
		return
	}

	if err := c.Service.DeleteQuestion(user.UserID, user.Role, uint(questionID)); err != nil {
		if errors.Is(err, util.ErrPermissionDenied) {
			util.Forbidden(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, gin.H{"deleted": questionID})
}

// ListAttempts godoc
// @Summary 获取测评的答题记录
// @Description 讲师查看指定测评的全部学生答题
// @Tags 测评管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/instructor/assessments/{id}/attempts [get]
func (c *AssessmentController) ListAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的测评ID")
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	attempts, total, err := c.Service.ListAttempts(user.UserID, user.Role, uint(id), page, limit)
	if err != nil {
		c.renderAssessmentError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": attempts, "total": total, "page": page})
}

// GetStatistics godoc
// @Summary 获取测评统计
// @Description 读取统计快照，包括答题次数、平均分和高频技能短板
// @Tags 测评管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Success 200 {object} util.Response{data=service.AssessmentStatistics} "成功"
// @Router /api/instructor/assessments/{id}/statistics [get]
func (c *AssessmentController) GetStatistics(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的测评ID")
		return
	}

	stats, err := c.Service.GetStatistics(user.UserID, user.Role, uint(id))
	if err != nil {
		c.renderAssessmentError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// RefreshStatistics godoc
// @Summary 手动刷新测评统计
// @Description 重新聚合全部已完成答题并覆写统计快照
// @Tags 测评管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测评ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/instructor/assessments/{id}/refresh-stats [post]
func (c *AssessmentController) RefreshStatistics(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的测评ID")
		return
	}

	if _, err := c.Service.GetStatistics(user.UserID, user.Role, uint(id)); err != nil {
		c.renderAssessmentError(ctx, err)
		return
	}

	if err := c.Service.RefreshStatistics(uint(id)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, "统计已刷新")
}

func (c *AssessmentController) renderAssessmentError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAssessmentNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
