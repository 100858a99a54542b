package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"learnx_backend/internal/config"
	"learnx_backend/internal/util"

	"go.uber.org/zap"
)

// TranscriptService 负责从模块视频中提取字幕文本
type TranscriptService struct {
	config config.AIConfig
	client *http.Client
	logger *zap.Logger
}

func NewTranscriptService(cfg config.AIConfig, logger *zap.Logger) *TranscriptService {
	return &TranscriptService{
		config: cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}
}

type transcribeResponse struct {
	Text string `json:"text"`
}

// Extract 抽取视频音轨并调用转写服务，失败时返回错误由调用方降级处理
func (s *TranscriptService) Extract(ctx context.Context, videoPath string) (string, error) {
	if s.config.TranscribeURL == "" {
		return "", fmt.Errorf("transcription service not configured")
	}
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("video file unavailable: %w", err)
	}

	audioPath := filepath.Join(os.TempDir(), fmt.Sprintf("transcribe_%s.wav", filepath.Base(videoPath)))
	defer os.Remove(audioPath)

	if err := util.ExtractAudio(videoPath, audioPath); err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}

	text, err := s.transcribe(ctx, audioPath)
	if err != nil {
		s.logger.Warn("视频转写失败", zap.String("video", videoPath), zap.Error(err))
		return "", err
	}
	return text, nil
}

func (s *TranscriptService) transcribe(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	_ = writer.WriteField("model", "whisper-1")
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.TranscribeURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcription API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Text, nil
}
