package controller

import (
	"eduai_backend/internal/service"
	"eduai_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// @Summary 获取用户成就总览
// @Description 成就分为已解锁、进行中和未开始三组，附带进度百分比
// @Tags 成就系统
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.AchievementOverview}
// @Router /api/gamification/achievements [get]
func (c *AchievementController) GetOverview(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	overview, err := c.AchievementService.GetOverview(user.UserID)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, overview)
}

// @Summary 获取徽章墙
// @Description 全部徽章及当前用户的点亮状态，按要求等级点亮
// @Tags 成就系统
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.BadgeStatus}
// @Router /api/gamification/badges [get]
func (c *AchievementController) ListBadges(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	badges, err := c.AchievementService.ListBadges(user.UserID)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, badges)
}
