package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/sashabaranov/go-openai"

	"next_read/config"
	"next_read/logger"
	"next_read/models"
	"next_read/utils"
	"next_read/widget"
)

// ErrAPIKeyMissing 未配置模型密钥
var ErrAPIKeyMissing = errors.New("API_KEY or GEMINI_API_KEY environment variable not set.")

// GeminiGenerator writes suggestions with Gemini through its OpenAI-compatible endpoint.
// It satisfies widget.SuggestionClient, so the embedded endpoint can call it in-process.
type GeminiGenerator struct {
	client *openai.Client
	model  string
	topics TopicDescriber // 可为 nil
}

// NewGeminiGenerator 创建生成器；未配置密钥时返回的生成器每次调用都报 ErrAPIKeyMissing
// topics resolves history ids to the sentences quoted in the prompt; nil sends ids as-is.
func NewGeminiGenerator(cfg *config.Config, topics TopicDescriber) *GeminiGenerator {
	if cfg.Gemini.APIKey == "" {
		logger.Warn("Gemini API key is not configured, /api/generate will fail")
		return &GeminiGenerator{model: cfg.Gemini.Model, topics: topics}
	}
	oc := openai.DefaultConfig(cfg.Gemini.APIKey)
	if cfg.Gemini.BaseURL != "" {
		oc.BaseURL = cfg.Gemini.BaseURL
	}
	timeout := time.Duration(cfg.Gemini.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}
	return &GeminiGenerator{client: openai.NewClientWithConfig(oc), model: cfg.Gemini.Model, topics: topics}
}

// Suggest picks the next article for the reader and writes its hook.
// Model output that does not carry a title and a reason is reported as widget.ErrMalformedResponse.
func (g *GeminiGenerator) Suggest(ctx context.Context, req models.SuggestionRequest) (models.Suggestion, error) {
	if g.client == nil {
		return models.Suggestion{}, ErrAPIKeyMissing
	}
	if err := ValidateSuggestionRequest(req); err != nil {
		return models.Suggestion{}, err
	}

	described := req
	described.History = describeHistory(req.History, g.topics)
	prompt := buildSuggestionPrompt(described)
	logger.Debug("LLM请求提示词预览", "prompt_preview", utils.Preview(prompt, 100))

	schema := suggestionSchema()
	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "suggestion",
				Schema: &schema,
				Strict: true,
			},
		},
	})
	duration := time.Since(start)
	if err != nil {
		logger.Error("LLM请求失败", "model", g.model, "duration_ms", duration.Milliseconds(), "error", err)
		return models.Suggestion{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		logger.Error("LLM响应中没有内容", "model", g.model)
		return models.Suggestion{}, fmt.Errorf("%w: model returned no choices", widget.ErrMalformedResponse)
	}

	content := resp.Choices[0].Message.Content
	logger.Info("成功获取LLM响应",
		"model", g.model,
		"duration_ms", duration.Milliseconds(),
		"tokens_total", resp.Usage.TotalTokens,
		"finish_reason", resp.Choices[0].FinishReason)

	var payload models.SuggestionResponse
	if err := json.Unmarshal([]byte(utils.ExtractJSON(content)), &payload); err != nil {
		logger.Error("解析LLM返回的JSON内容失败", "error", err, "content_preview", utils.Preview(content, 200))
		return models.Suggestion{}, fmt.Errorf("%w: %v", widget.ErrMalformedResponse, err)
	}
	if !payload.Valid() {
		logger.Error("LLM返回的推荐缺少字段", "content_preview", utils.Preview(content, 200))
		return models.Suggestion{}, fmt.Errorf("%w: suggestion needs a title and a reason", widget.ErrMalformedResponse)
	}

	s := payload.ToSuggestion()
	if !slices.Contains(req.AvailableArticleTitles, s.Title) {
		logger.Warn("LLM suggested a title outside the candidate list", "title", s.Title)
	}
	return s, nil
}
