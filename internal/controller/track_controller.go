package controller

import (
	"strconv"

	"learnx_backend/internal/model"
	"learnx_backend/internal/service"
	"learnx_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TrackController struct {
	TrackService *service.TrackService
}

func NewTrackController(trackService *service.TrackService) *TrackController {
	return &TrackController{TrackService: trackService}
}

// List godoc
// @Summary 课程列表
// @Description 分页返回已发布课程，支持分类过滤和标题搜索
// @Tags 课程
// @Produce  json
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Param   category query string false "分类"
// @Param   search query string false "标题关键字"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/tracks [get]
func (c *TrackController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	tracks, total, err := c.TrackService.List(page, limit, ctx.Query("category"), ctx.Query("search"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: tracks, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary 课程详情
// @Description 返回课程及排序后的模块列表
// @Tags 课程
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Track}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/tracks/{id} [get]
func (c *TrackController) Get(ctx *gin.Context) {
	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	var userID uint
	var role model.UserRole
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = claims.UserID
		role = claims.Role
	}

	track, err := c.TrackService.Get(trackID, userID, role)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, track)
}

type TrackRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Create godoc
// @Summary 创建课程
// @Description 创作者创建课程，初始为未发布状态
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body TrackRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Track}
// @Router /api/tracks [post]
func (c *TrackController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req TrackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	track, err := c.TrackService.Create(claims.UserID, service.TrackInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, track)
}

// Update godoc
// @Summary 更新课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body TrackRequest true "课程信息"
// @Success 200 {object} util.Response{data=model.Track}
// @Failure 403 {object} util.Response "无权限"
// @Router /api/tracks/{id} [put]
func (c *TrackController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	var req TrackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	track, err := c.TrackService.Update(claims.UserID, claims.Role, trackID, service.TrackInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, track)
}

type PublishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

// SetPublished godoc
// @Summary 发布或下架课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body PublishRequest true "发布状态"
// @Success 200 {object} util.Response{data=model.Track}
// @Router /api/tracks/{id}/publish [patch]
func (c *TrackController) SetPublished(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	var req PublishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	track, err := c.TrackService.SetPublished(claims.UserID, claims.Role, trackID, *req.Published)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, track)
}

// Delete godoc
// @Summary 删除课程
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/tracks/{id} [delete]
func (c *TrackController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	if err := c.TrackService.Delete(claims.UserID, claims.Role, trackID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// ListMine godoc
// @Summary 我创建的课程
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Track}
// @Router /api/creator/tracks [get]
func (c *TrackController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	tracks, err := c.TrackService.ListByCreator(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, tracks)
}

// Enroll godoc
// @Summary 报名课程
// @Description 报名已发布课程，重复报名返回409
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 409 {object} util.Response "已报名"
// @Router /api/tracks/{id}/enroll [post]
func (c *TrackController) Enroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	enrollment, err := c.TrackService.Enroll(claims.UserID, trackID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// UploadCover godoc
// @Summary 上传课程封面
// @Tags 课程
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   file formData file true "封面图片"
// @Success 200 {object} util.Response{data=object} "封面URL"
// @Router /api/tracks/{id}/cover [post]
func (c *TrackController) UploadCover(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	file, fileHeader, ok := openUpload(ctx, []string{util.MimeImage})
	if !ok {
		return
	}
	defer file.Close()

	url, err := c.TrackService.UploadCover(ctx.Request.Context(), claims.UserID, claims.Role,
		trackID, fileHeader.Filename, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}
