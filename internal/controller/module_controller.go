package controller

import (
	"path/filepath"
	"strings"

	"learnx_backend/internal/model"
	"learnx_backend/internal/service"
	"learnx_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	ModuleService *service.ModuleService
}

func NewModuleController(moduleService *service.ModuleService) *ModuleController {
	return &ModuleController{ModuleService: moduleService}
}

// ListByTrack godoc
// @Summary 课程下的模块列表
// @Description 按Order升序返回课程内的模块
// @Tags 模块
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Module}
// @Router /api/tracks/{id}/modules [get]
func (c *ModuleController) ListByTrack(ctx *gin.Context) {
	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	modules, err := c.ModuleService.ListByTrack(trackID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}

// Get godoc
// @Summary 模块详情
// @Tags 模块
// @Produce  json
// @Param   id path int true "模块ID"
// @Success 200 {object} util.Response{data=model.Module}
// @Failure 404 {object} util.Response "模块不存在"
// @Router /api/modules/{id} [get]
func (c *ModuleController) Get(ctx *gin.Context) {
	moduleID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	module, err := c.ModuleService.Get(moduleID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

type ModuleRequest struct {
	Title string `json:"title" binding:"required"`
	Order int    `json:"order" binding:"required,min=1"`
	Notes string `json:"notes"`
}

// Create godoc
// @Summary 新建模块
// @Description 在课程下创建模块，Order在课程内必须唯一
// @Tags 模块
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body ModuleRequest true "模块信息"
// @Success 201 {object} util.Response{data=model.Module}
// @Failure 409 {object} util.Response "顺序冲突"
// @Router /api/tracks/{id}/modules [post]
func (c *ModuleController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	var req ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.ModuleService.Create(claims.UserID, claims.Role, trackID, service.ModuleInput{
		Title: req.Title,
		Order: req.Order,
		Notes: req.Notes,
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

type ModuleUpdateRequest struct {
	Title string `json:"title"`
	Order int    `json:"order"`
	Notes string `json:"notes"`
}

// Update godoc
// @Summary 更新模块
// @Tags 模块
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Param   body body ModuleUpdateRequest true "模块信息"
// @Success 200 {object} util.Response{data=model.Module}
// @Router /api/modules/{id} [put]
func (c *ModuleController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	moduleID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	var req ModuleUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.ModuleService.Update(claims.UserID, claims.Role, moduleID, service.ModuleInput{
		Title: req.Title,
		Order: req.Order,
		Notes: req.Notes,
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// Delete godoc
// @Summary 删除模块
// @Tags 模块
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/modules/{id} [delete]
func (c *ModuleController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	moduleID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	if err := c.ModuleService.Delete(claims.UserID, claims.Role, moduleID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// UploadVideo godoc
// @Summary 上传模块视频
// @Description 上传后视频进入processing状态，后台探测完成后变为ready
// @Tags 模块
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Param   file formData file true "视频文件"
// @Success 200 {object} util.Response{data=model.Module}
// @Router /api/modules/{id}/video [post]
func (c *ModuleController) UploadVideo(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	moduleID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	file, fileHeader, ok := openUpload(ctx, []string{util.MimeVideo})
	if !ok {
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	validExt := false
	for _, allowed := range util.AllowedVideoExtensions {
		if ext == allowed {
			validExt = true
			break
		}
	}
	if !validExt {
		util.BadRequest(ctx, "unsupported video format: "+ext)
		return
	}

	module, err := c.ModuleService.UploadVideo(ctx.Request.Context(), claims.UserID, claims.Role,
		moduleID, fileHeader.Filename, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

type QuizRequest struct {
	Title        string               `json:"title"`
	Questions    []model.QuizQuestion `json:"questions" binding:"required,min=1"`
	PassingScore int                  `json:"passingScore"`
}

// SaveQuiz godoc
// @Summary 创建或覆盖模块测验
// @Description 每个模块最多一个测验，重复保存会整体覆盖
// @Tags 模块
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Param   body body QuizRequest true "测验内容"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/modules/{id}/quiz [put]
func (c *ModuleController) SaveQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	moduleID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	var req QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.ModuleService.SaveQuiz(claims.UserID, claims.Role, moduleID, service.QuizInput{
		Title:        req.Title,
		Questions:    req.Questions,
		PassingScore: req.PassingScore,
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary 删除模块测验
// @Tags 模块
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/modules/{id}/quiz [delete]
func (c *ModuleController) DeleteQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	moduleID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	if err := c.ModuleService.DeleteQuiz(claims.UserID, claims.Role, moduleID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
