package controller

import (
	"learnx_backend/internal/repository"
	"learnx_backend/internal/service"
	"learnx_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GamificationController struct {
	GamificationService *service.GamificationService
	AchievementRepo     *repository.AchievementRepository
}

func NewGamificationController(gamificationService *service.GamificationService, achievementRepo *repository.AchievementRepository) *GamificationController {
	return &GamificationController{
		GamificationService: gamificationService,
		AchievementRepo:     achievementRepo,
	}
}

// ListAchievements godoc
// @Summary 全部成就定义
// @Tags 游戏化
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Achievement}
// @Router /api/achievements [get]
func (c *GamificationController) ListAchievements(ctx *gin.Context) {
	achievements, err := c.AchievementRepo.ListAll()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, achievements)
}

// MyAchievements godoc
// @Summary 我已获得的成就
// @Tags 游戏化
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.UserAchievement}
// @Router /api/achievements/mine [get]
func (c *GamificationController) MyAchievements(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	earned, err := c.AchievementRepo.ListEarnedByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, earned)
}

// GlobalLeaderboard godoc
// @Summary 全站XP排行榜
// @Description 按XP降序返回前100名，结果缓存1分钟
// @Tags 游戏化
// @Produce  json
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Router /api/leaderboard [get]
func (c *GamificationController) GlobalLeaderboard(ctx *gin.Context) {
	entries, err := c.GamificationService.GlobalLeaderboard(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// TrackLeaderboard godoc
// @Summary 课程进度排行榜
// @Description 按进度降序返回课程内前20名学习者
// @Tags 游戏化
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]service.TrackLeaderboardEntry}
// @Router /api/tracks/{id}/leaderboard [get]
func (c *GamificationController) TrackLeaderboard(ctx *gin.Context) {
	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	entries, err := c.GamificationService.TrackLeaderboard(trackID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
