package util

import (
	"errors"
	"net/http"

	"learnx_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// HandleServiceError 将业务哨兵错误映射到HTTP状态码
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrTrackNotFound),
		errors.Is(err, ErrModuleNotFound),
		errors.Is(err, ErrQuizNotFound),
		errors.Is(err, ErrDiscussionNotFound),
		errors.Is(err, ErrReviewNotFound),
		errors.Is(err, ErrInvitationNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrNotEnrolled),
		errors.Is(err, ErrAccountBanned),
		errors.Is(err, ErrTrackNotPublished):
		Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrAlreadyEnrolled),
		errors.Is(err, ErrAlreadyReviewed),
		errors.Is(err, ErrInvitationUsed),
		errors.Is(err, ErrEmailRegistered),
		errors.Is(err, ErrModuleOrderConflict):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrQuestionTooShort),
		errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrInvitationExpired):
		Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrAIUnavailable):
		Error(c, http.StatusBadGateway, err.Error())
	default:
		LogInternalError(c, err)
	}
}
