package controller

import (
	"learnx_backend/internal/service"
	"learnx_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

type ProgressRequest struct {
	Position  *float64 `json:"position"` // 视频播放位置（秒）
	Completed bool     `json:"completed"`
}

// Record godoc
// @Summary 上报模块学习进度
// @Description 记录播放位置或模块完成。模块完成只增不减，
// @Description 全部模块完成时课程标记为完成并奖励XP
// @Tags 进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Param   body body ProgressRequest true "进度信息"
// @Success 200 {object} util.Response{data=service.ProgressUpdate}
// @Failure 403 {object} util.Response "未报名课程"
// @Router /api/modules/{id}/progress [post]
func (c *ProgressController) Record(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	moduleID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	var req ProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	update, err := c.ProgressService.RecordModuleProgress(claims.UserID, moduleID, req.Position, req.Completed)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, update)
}

// GetTrackProgress godoc
// @Summary 课程进度
// @Description 返回当前用户在某课程下的报名记录和逐模块进度
// @Tags 进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 403 {object} util.Response "未报名课程"
// @Router /api/tracks/{id}/progress [get]
func (c *ProgressController) GetTrackProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	enrollment, err := c.ProgressService.GetEnrollmentProgress(claims.UserID, trackID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}
