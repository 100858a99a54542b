package controller

import (
	"learnx_backend/internal/service"
	"learnx_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// quizView 学习者视角的测验，不暴露正确答案
type quizView struct {
	ID           uint           `json:"id"`
	ModuleID     uint           `json:"moduleId"`
	Title        string         `json:"title"`
	PassingScore int            `json:"passingScore"`
	Questions    []questionView `json:"questions"`
}

type questionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// GetByModule godoc
// @Summary 模块测验（学习者视角）
// @Description 返回题目和选项，不含正确答案
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "模块ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/modules/{id}/quiz [get]
func (c *QuizController) GetByModule(ctx *gin.Context) {
	moduleID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	quiz, err := c.QuizService.QuizRepo.FindByModule(moduleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.HandleServiceError(ctx, util.ErrQuizNotFound)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	view := quizView{
		ID:           quiz.ID,
		ModuleID:     quiz.ModuleID,
		Title:        quiz.Title,
		PassingScore: quiz.PassingScore,
	}
	for _, q := range quiz.QuestionList() {
		view.Questions = append(view.Questions, questionView{Question: q.Question, Options: q.Options})
	}
	util.Success(ctx, view)
}

type SubmitQuizRequest struct {
	Answers []int `json:"answers" binding:"required"`
}

// Submit godoc
// @Summary 提交测验答案
// @Description 判题并记录答题记录，通过后自动标记模块完成并奖励XP
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Param   body body SubmitQuizRequest true "按题序的答案下标"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 403 {object} util.Response "未报名课程"
// @Router /api/quizzes/{id}/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.Submit(claims.UserID, quizID, req.Answers)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ListAttempts godoc
// @Summary 我的答题记录
// @Tags 测验
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=[]model.QuizAttempt}
// @Router /api/quizzes/{id}/attempts [get]
func (c *QuizController) ListAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID, err := parseUintParam(ctx, "id")
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}

	attempts, err := c.QuizService.ListAttempts(claims.UserID, quizID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
