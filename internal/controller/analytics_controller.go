package controller

import (
	"eduai_backend/internal/service"
	"eduai_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// @Summary 获取技能分析
// @Description 基于历史测评计算各技能平均分、强弱项和成绩趋势
// @Tags 分析
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.SkillAnalysis}
// @Router /api/skill-analysis [get]
func (c *AnalyticsController) GetSkillAnalysis(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	analysis, err := c.AnalyticsService.GetSkillAnalysis(user.UserID)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, analysis)
}
