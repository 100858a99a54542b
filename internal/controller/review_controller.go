package controller

import (
	"strconv"

	"learnx_backend/internal/service"
	"learnx_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	ReviewService *service.ReviewService
}

func NewReviewController(reviewService *service.ReviewService) *ReviewController {
	return &ReviewController{ReviewService: reviewService}
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// Create godoc
// @Summary 评价课程
// @Description 报名学员对课程评价一次，评分1-5，重复评价返回409
// @Tags 评价
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body ReviewRequest true "评分与评语"
// @Success 201 {object} util.Response{data=model.Review}
// @Failure 409 {object} util.Response "已评价"
// @Router /api/tracks/{id}/reviews [post]
func (c *ReviewController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	var req ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	review, err := c.ReviewService.Create(claims.UserID, trackID, req.Rating, req.Comment)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, review)
}

// ListByTrack godoc
// @Summary 课程评价列表
// @Tags 评价
// @Produce  json
// @Param   id path int true "课程ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/tracks/{id}/reviews [get]
func (c *ReviewController) ListByTrack(ctx *gin.Context) {
	trackID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid track id")
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	reviews, total, err := c.ReviewService.ListByTrack(trackID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: reviews, Total: total, Page: page, Limit: limit})
}

// Delete godoc
// @Summary 删除评价
// @Description 作者本人或管理员可删除，删除后课程评分重新聚合
// @Tags 评价
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "评价ID"
// @Success 200 {object} util.Response
// @Router /api/reviews/{id} [delete]
func (c *ReviewController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	reviewID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid review id")
		return
	}

	if err := c.ReviewService.Delete(claims.UserID, claims.Role, reviewID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
