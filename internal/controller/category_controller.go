package controller

import (
	"strconv"

	"eduai_backend/internal/service"
	"eduai_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	CourseService *service.CourseService
}

func NewCategoryController(courseService *service.CourseService) *CategoryController {
	return &CategoryController{CourseService: courseService}
}

// ListCategories godoc
// @Summary 获取课程分类列表
// @Tags 课程
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Category} "成功"
// @Router /api/categories [get]
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	categories, err := c.CourseService.ListCategories()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, categories)
}

// CreateCategory godoc
// @Summary 创建课程分类
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CategoryRequest true "分类信息"
// @Success 201 {object} util.Response{data=model.Category} "创建成功"
// @Failure 400 {object} util.Response "分类已存在"
// @Router /api/admin/categories [post]
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var req service.CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	category, err := c.CourseService.CreateCategory(req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, category)
}

// UpdateCategory godoc
// @Summary 更新课程分类
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "分类ID"
// @Param   body body service.CategoryRequest true "分类信息"
// @Success 200 {object} util.Response{data=model.Category} "成功"
// @Failure 404 {object} util.Response "分类不存在"
// @Router /api/admin/categories/{id} [put]
func (c *CategoryController) UpdateCategory(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的分类ID")
		return
	}

	var req service.CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	category, err := c.CourseService.UpdateCategory(uint(id), req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, category)
}

// DeleteCategory godoc
// @Summary 删除课程分类
// @Description 分类下还有课程时拒绝删除
// @Tags 课程管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "分类ID"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "分类下存在课程"
// @Router /api/admin/categories/{id} [delete]
func (c *CategoryController) DeleteCategory(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的分类ID")
		return
	}

	if err := c.CourseService.DeleteCategory(uint(id)); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}
