package controller

import (
	"strconv"

	"eduai_backend/internal/model"
	"eduai_backend/internal/service"
	"eduai_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// GamificationController 处理经验值、连续学习与排行榜的HTTP请求
type GamificationController struct {
	Gamification *service.GamificationService
	Achievements *service.AchievementService
}

func NewGamificationController(gamification *service.GamificationService, achievements *service.AchievementService) *GamificationController {
	return &GamificationController{
		Gamification: gamification,
		Achievements: achievements,
	}
}

// GetProfile godoc
// @Summary 获取成长档案
// @Description 获取当前用户的经验值、等级、段位和连续学习天数
// @Tags 游戏化
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.GamificationProfile} "成功"
// @Router /api/gamification [get]
func (c *GamificationController) GetProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.Gamification.GetProfile(user.UserID)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, profile)
}

// RecordStreak godoc
// @Summary 每日学习打卡
// @Description 推进连续学习天数并奖励经验值，同日重复打卡不重复计数
// @Tags 游戏化
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/gamification/streak [post]
func (c *GamificationController) RecordStreak(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.Gamification.RecordDailyActivity(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	// 连续学习类成就在打卡后统一结算
	var unlocked []model.Achievement
	if status.Recorded {
		unlocked, _ = c.Achievements.Evaluate(user.UserID, model.RequirementStreakDays)
	}

	util.Success(ctx, gin.H{
		"currentStreak": status.CurrentStreak,
		"longestStreak": status.LongestStreak,
		"xpEarned":      status.XPEarned,
		"recorded":      status.Recorded,
		"unlocked":      unlocked,
	})
}

// GetStreak godoc
// @Summary 获取连续学习状态
// @Tags 游戏化
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.StreakStatus} "成功"
// @Router /api/gamification/streak [get]
func (c *GamificationController) GetStreak(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.Gamification.GetStreak(user.UserID)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, status)
}

// GetLeaderboard godoc
// @Summary 获取经验值排行榜
// @Description 公开访问，携带有效 token 时附带当前用户的名次
// @Tags 游戏化
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/leaderboard [get]
func (c *GamificationController) GetLeaderboard(ctx *gin.Context) {
	rows, err := c.Gamification.GetLeaderboard()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	payload := gin.H{"items": rows}
	if user := util.GetUserFromContext(ctx); user != nil {
		if me, err := c.Gamification.GetMyPosition(user.UserID); err == nil {
			payload["me"] = me
		}
	}

	util.Success(ctx, payload)
}

// ListXPEvents godoc
// @Summary 获取经验值流水
// @Description 分页获取当前用户的经验值获取记录
// @Tags 游戏化
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/gamification/xp [get]
func (c *GamificationController) ListXPEvents(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	events, total, err := c.Gamification.ListXPEvents(user.UserID, page, limit)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, gin.H{"items": events, "total": total, "page": page})
}
