package util

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// mimeSniffLen http.DetectContentType最多参考的字节数
const mimeSniffLen = 512

// ValidateMimeType 按文件内容而不是扩展名判定MIME类型。
// allowed中的条目可以是前缀（如 "image/"）或完整类型（如 "application/pdf"）
func ValidateMimeType(reader io.Reader, allowed []string) (string, error) {
	head := make([]byte, mimeSniffLen)
	n, err := io.ReadFull(reader, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}

	mimeType := http.DetectContentType(head[:n])
	for _, want := range allowed {
		if mimeType == want || strings.HasPrefix(mimeType, want) {
			return mimeType, nil
		}
	}
	return mimeType, errors.New("invalid file type: " + mimeType)
}

// IsImage 判断是否图片类型
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeImage)
}

// IsVideo 判断是否视频类型，HLS清单按视频处理
func IsVideo(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeVideo) || mimeType == "application/x-mpegURL"
}
