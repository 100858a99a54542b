package controller

import (
	"strconv"

	"learnx_backend/internal/service"
	"learnx_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
	Hub                 *service.NotificationHub
}

func NewNotificationController(notificationService *service.NotificationService, hub *service.NotificationHub) *NotificationController {
	return &NotificationController{
		NotificationService: notificationService,
		Hub:                 hub,
	}
}

// List godoc
// @Summary 我的通知
// @Tags 通知
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	notifications, total, err := c.NotificationService.List(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: notifications, Total: total, Page: page, Limit: limit})
}

// UnreadCount godoc
// @Summary 未读通知数
// @Tags 通知
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	count, err := c.NotificationService.UnreadCount(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"count": count})
}

// MarkRead godoc
// @Summary 标记通知已读
// @Tags 通知
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "通知ID"
// @Success 200 {object} util.Response
// @Router /api/notifications/read/{id} [patch]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	notificationID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid notification id")
		return
	}

	if err := c.NotificationService.MarkRead(notificationID, claims.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"read": true})
}

// MarkAllRead godoc
// @Summary 全部标记已读
// @Tags 通知
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/notifications/read-all [patch]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.NotificationService.MarkAllRead(claims.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"read": true})
}

// Connect godoc
// @Summary 通知WebSocket连接
// @Description 升级为WebSocket，in-app通知实时推送到此连接
// @Tags 通知
// @Security ApiKeyAuth
// @Router /api/notifications/ws [get]
func (c *NotificationController) Connect(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Hub.HandleConnection(ctx.Writer, ctx.Request, claims.UserID); err != nil {
		util.LogInternalError(ctx, err)
	}
}
