package controller

import (
	"io"
	"mime/multipart"
	"strconv"

	"learnx_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func parseUintParam(ctx *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

// openUpload 打开表单文件并深度校验 MIME 类型，校验失败时已写入响应。
// 调用方负责 Close。
func openUpload(ctx *gin.Context, allowedTypes []string) (multipart.File, *multipart.FileHeader, bool) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return nil, nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return nil, nil, false
	}

	if _, err := util.ValidateMimeType(file, allowedTypes); err != nil {
		file.Close()
		util.BadRequest(ctx, err.Error())
		return nil, nil, false
	}
	// 重置读取指针
	if seeker, ok := file.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}
	return file, fileHeader, true
}
