package controller

import (
	"strconv"

	"learnx_backend/internal/model"
	"learnx_backend/internal/service"
	"learnx_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	AdminService *service.AdminService
}

func NewAdminController(adminService *service.AdminService) *AdminController {
	return &AdminController{AdminService: adminService}
}

// ListUsers godoc
// @Summary 用户列表
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Param   status query string false "状态过滤 active/banned/pending"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	users, total, err := c.AdminService.ListUsers(page, limit, ctx.Query("status"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: users, Total: total, Page: page, Limit: limit})
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active banned"`
}

// SetUserStatus godoc
// @Summary 封禁/解封用户
// @Description 不允许操作管理员账号
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   body body SetStatusRequest true "目标状态"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "不能操作管理员"
// @Router /api/admin/users/{id}/status [patch]
func (c *AdminController) SetUserStatus(ctx *gin.Context) {
	userID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	var req SetStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AdminService.SetUserStatus(userID, model.UserStatus(req.Status)); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"updated": true})
}

// MintInvitation godoc
// @Summary 生成admin注册邀请码
// @Description 邀请码一次性使用，7天内有效
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 201 {object} util.Response{data=model.AdminInvitationCode}
// @Router /api/admin/invitations [post]
func (c *AdminController) MintInvitation(ctx *gin.Context) {
	code, err := c.AdminService.MintInvitation()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, code)
}

// ListInvitations godoc
// @Summary 邀请码列表
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.AdminInvitationCode}
// @Router /api/admin/invitations [get]
func (c *AdminController) ListInvitations(ctx *gin.Context) {
	codes, err := c.AdminService.ListInvitations()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, codes)
}

// Stats godoc
// @Summary 平台统计
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.PlatformStats}
// @Router /api/admin/stats [get]
func (c *AdminController) Stats(ctx *gin.Context) {
	stats, err := c.AdminService.Stats()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

type AnnounceRequest struct {
	UserIDs []uint `json:"userIds" binding:"required,min=1"`
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// Announce godoc
// @Summary 发送公告通知
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body AnnounceRequest true "公告内容与目标用户"
// @Success 200 {object} util.Response
// @Router /api/admin/announcements [post]
func (c *AdminController) Announce(ctx *gin.Context) {
	var req AnnounceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	c.AdminService.Announce(req.UserIDs, req.Title, req.Message)
	util.Success(ctx, gin.H{"sent": len(req.UserIDs)})
}
