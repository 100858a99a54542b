package controller

import (
	"strconv"

	"learnx_backend/internal/service"
	"learnx_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DiscussionController struct {
	DiscussionService *service.DiscussionService
}

func NewDiscussionController(discussionService *service.DiscussionService) *DiscussionController {
	return &DiscussionController{DiscussionService: discussionService}
}

type DiscussionRequest struct {
	Content  string `json:"content" binding:"required"`
	ModuleID *uint  `json:"moduleId"`
	ParentID *uint  `json:"parentId"`
}

// Create godoc
// @Summary 发表讨论或回复
// @Description 报名学员和课程创建者可发言，回复会通知父条目作者
// @Tags 讨论
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body DiscussionRequest true "讨论内容"
// @Success 201 {object} util.Response{data=model.Discussion}
// @Failure 403 {object} util.Response "未报名课程"
// @Router /api/tracks/{id}/discussions [post]
func (c *DiscussionController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	var req DiscussionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	discussion, err := c.DiscussionService.Create(claims.UserID, trackID, service.DiscussionInput{
		Content:  req.Content,
		ModuleID: req.ModuleID,
		ParentID: req.ParentID,
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, discussion)
}

// ListByTrack godoc
// @Summary 课程讨论列表
// @Description 分页返回顶层讨论，每条附带全部回复
// @Tags 讨论
// @Produce  json
// @Param   id path int true "课程ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/tracks/{id}/discussions [get]
func (c *DiscussionController) ListByTrack(ctx *gin.Context) {
	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	threads, total, err := c.DiscussionService.ListByTrack(trackID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: threads, Total: total, Page: page, Limit: limit})
}

// UploadAttachment godoc
// @Summary 上传讨论附件
// @Tags 讨论
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "附件"
// @Success 200 {object} util.Response{data=object} "附件URL"
// @Router /api/discussions/attachments [post]
func (c *DiscussionController) UploadAttachment(ctx *gin.Context) {
	file, fileHeader, ok := openUpload(ctx, util.AllowedAttachmentTypes)
	if !ok {
		return
	}
	defer file.Close()

	url, err := c.DiscussionService.UploadAttachment(ctx.Request.Context(),
		fileHeader.Filename, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

type DiscussionUpdateRequest struct {
	Content string `json:"content" binding:"required"`
}

// Update godoc
// @Summary 编辑讨论
// @Description 仅作者本人可编辑内容
// @Tags 讨论
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "讨论ID"
// @Param   body body DiscussionUpdateRequest true "新内容"
// @Success 200 {object} util.Response{data=model.Discussion}
// @Failure 403 {object} util.Response "无权限"
// @Router /api/discussions/{id} [put]
func (c *DiscussionController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	discussionID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid discussion id")
		return
	}

	var req DiscussionUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	discussion, err := c.DiscussionService.Update(claims.UserID, discussionID, req.Content)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, discussion)
}

// Delete godoc
// @Summary 删除讨论
// @Description 作者本人或管理员可删除
// @Tags 讨论
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "讨论ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "无权限"
// @Router /api/discussions/{id} [delete]
func (c *DiscussionController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	discussionID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid discussion id")
		return
	}

	if err := c.DiscussionService.Delete(claims.UserID, claims.Role, discussionID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
