package controller

import (
	"strconv"

	"learnx_backend/internal/service"
	"learnx_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QAController struct {
	QAService *service.QAService
}

func NewQAController(qaService *service.QAService) *QAController {
	return &QAController{QAService: qaService}
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// Ask godoc
// @Summary 模块内容问答
// @Description 基于模块笔记和视频字幕回答提问，字幕提取失败时仅用笔记作答
// @Tags AI问答
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Param   body body AskRequest true "问题内容"
// @Success 200 {object} util.Response{data=model.AIQuestion}
// @Failure 502 {object} util.Response "AI服务不可用"
// @Router /api/modules/{id}/questions [post]
func (c *QAController) Ask(ctx *gin.Context) {
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

	var req AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.QAService.AskQuestion(ctx.Request.Context(), claims.UserID, moduleID, req.Question)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

// History godoc
// @Summary 历史提问
// @Description 返回当前用户在模块下的历史问答记录
// @Tags AI问答
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Param   limit query int false "数量上限"
// @Success 200 {object} util.Response{data=[]model.AIQuestion}
// @Router /api/modules/{id}/questions [get]
func (c *QAController) History(ctx *gin.Context) {
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

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	questions, err := c.QAService.History(claims.UserID, moduleID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}
