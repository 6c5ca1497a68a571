package controller

import (
	"errors"
	"strconv"

	"eduai_backend/internal/service"
	"eduai_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// RoadmapController 处理个人学习路线的HTTP请求
type RoadmapController struct {
	RoadmapService *service.RoadmapService
}

func NewRoadmapController(roadmapService *service.RoadmapService) *RoadmapController {
	return &RoadmapController{RoadmapService: roadmapService}
}

// @Summary 获取我的学习路线列表
// @Tags 学习路线
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.RoadmapView}
// @Router /api/roadmaps [get]
func (c *RoadmapController) ListRoadmaps(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	roadmaps, err := c.RoadmapService.ListMine(user.UserID)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, roadmaps)
}

// @Summary 创建学习路线
// @Description 创建学习路线，可同时附带初始步骤
// @Tags 学习路线
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.RoadmapRequest true "路线信息"
// @Success 201 {object} util.Response{data=model.Roadmap}
// @Router /api/roadmaps [post]
func (c *RoadmapController) CreateRoadmap(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.RoadmapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	roadmap, err := c.RoadmapService.CreateRoadmap(user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, roadmap)
}

// @Summary 获取学习路线详情
// @Tags 学习路线
// @Produce json
// @Security BearerAuth
// @Param id path int true "路线ID"
// @Success 200 {object} util.Response{data=service.RoadmapView}
// @Failure 404 {object} util.Response "路线不存在"
// @Router /api/roadmaps/{id} [get]
func (c *RoadmapController) GetRoadmap(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的路线ID")
		return
	}

	roadmap, err := c.RoadmapService.GetRoadmap(user.UserID, uint(id))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, roadmap)
}

// @Summary 更新学习路线
// @Tags 学习路线
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "路线ID"
// @Param body body service.RoadmapRequest true "路线信息"
// @Success 200 {object} util.Response{data=model.Roadmap}
// @Router /api/roadmaps/{id} [put]
func (c *RoadmapController) UpdateRoadmap(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的路线ID")
		return
	}

	var req service.RoadmapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	roadmap, err := c.RoadmapService.UpdateRoadmap(user.UserID, uint(id), req)
	if err != nil {
		c.renderRoadmapError(ctx, err)
		return
	}

	util.Success(ctx, roadmap)
}

// @Summary 删除学习路线
// @Tags 学习路线
// @Produce json
// @Security BearerAuth
// @Param id path int true "路线ID"
// @Success 200 {object} util.Response
// @Router /api/roadmaps/{id} [delete]
func (c *RoadmapController) DeleteRoadmap(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的路线ID")
		return
	}

	if err := c.RoadmapService.DeleteRoadmap(user.UserID, uint(id)); err != nil {
		c.renderRoadmapError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

// @Summary 添加路线步骤
// @Description 已完成的路线添加新步骤后回到进行中
// @Tags 学习路线
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "路线ID"
// @Param body body service.RoadmapStepRequest true "步骤信息"
// @Success 201 {object} util.Response{data=model.RoadmapStep}
// @Router /api/roadmaps/{id}/steps [post]
func (c *RoadmapController) AddStep(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的路线ID")
		return
	}

	var req service.RoadmapStepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	step, err := c.RoadmapService.AddStep(user.UserID, uint(id), req)
	if err != nil {
		c.renderRoadmapError(ctx, err)
		return
	}

	util.Created(ctx, step)
}

// @Summary 更新路线步骤
// @Description 步骤状态变化后自动结算路线完成状态
// @Tags 学习路线
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "路线ID"
// @Param stepId path int true "步骤ID"
// @Param body body service.StepUpdateRequest true "步骤信息"
// @Success 200 {object} util.Response{data=model.RoadmapStep}
// @Router /api/roadmaps/{id}/steps/{stepId} [put]
func (c *RoadmapController) UpdateStep(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stepID, err := strconv.Atoi(ctx.Param("stepId"))
	if err != nil {
		util.BadRequest(ctx, "无效的步骤ID")
		return
	}

	var req service.StepUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	step, err := c.RoadmapService.UpdateStep(user.UserID, uint(stepID), req)
	if err != nil {
		c.renderRoadmapError(ctx, err)
		return
	}

	util.Success(ctx, step)
}

// @Summary 删除路线步骤
// @Tags 学习路线
// @Produce json
// @Security BearerAuth
// @Param id path int true "路线ID"
// @Param stepId path int true "步骤ID"
// @Success 200 {object} util.Response
// @Router /api/roadmaps/{id}/steps/{stepId} [delete]
func (c *RoadmapController) DeleteStep(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stepID, err := strconv.Atoi(ctx.Param("stepId"))
	if err != nil {
		util.BadRequest(ctx, "无效的步骤ID")
		return
	}

	if err := c.RoadmapService.DeleteStep(user.UserID, uint(stepID)); err != nil {
		c.renderRoadmapError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": stepID})
}

type ReorderStepsRequest struct {
	StepIDs []uint `json:"stepIds" binding:"required,min=1"`
}

// @Summary 重排路线步骤
// @Description 按给定ID顺序重排全部步骤，列表必须覆盖路线的所有步骤
// @Tags 学习路线
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "路线ID"
// @Param body body ReorderStepsRequest true "步骤ID列表"
// @Success 200 {object} util.Response{data=[]model.RoadmapStep}
// @Router /api/roadmaps/{id}/steps/reorder [put]
func (c *RoadmapController) ReorderSteps(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的路线ID")
		return
	}

	var req ReorderStepsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	steps, err := c.RoadmapService.ReorderSteps(user.UserID, uint(id), req.StepIDs)
	if err != nil {
		if errors.Is(err, util.ErrRoadmapNotFound) || errors.Is(err, util.ErrStepNotFound) {
			c.renderRoadmapError(ctx, err)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, steps)
}

func (c *RoadmapController) renderRoadmapError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrRoadmapNotFound), errors.Is(err, util.ErrStepNotFound):
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
