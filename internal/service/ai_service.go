package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"learnx_backend/internal/config"
)

type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// QAContext 组装给模型的背景材料
type QAContext struct {
	Title      string
	Notes      string
	Transcript string
}

// Ask 调用OpenAI兼容的chat/completions接口回答问题
func (s *AIService) Ask(ctx context.Context, question string, qaCtx QAContext) (string, error) {
	systemContent := "你是一个课程学习助教，请根据提供的课程材料回答学生的问题。" +
		"只依据材料内容作答，材料中没有的信息请直接说明。"

	var contextText string
	if qaCtx.Title != "" {
		contextText += fmt.Sprintf("【模块标题】\n%s\n\n", qaCtx.Title)
	}
	if qaCtx.Notes != "" {
		contextText += fmt.Sprintf("【课程笔记】\n%s\n\n", qaCtx.Notes)
	}
	if qaCtx.Transcript != "" {
		contextText += fmt.Sprintf("【视频字幕】\n%s\n\n", qaCtx.Transcript)
	}
	if contextText != "" {
		systemContent += "\n\n以下是课程材料：\n\n" + contextText
	}

	reqBody := map[string]interface{}{
		"model": s.config.Model,
		"messages": []AIChatMessage{
			{Role: "system", Content: systemContent},
			{Role: "user", Content: question},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", err
	}
	if completion.Error != nil {
		return "", fmt.Errorf("AI API error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("AI API returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}
