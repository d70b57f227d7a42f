package services

import (
	"context"

	"next_read/models"
)

// SuggestionService 推荐生成服务接口
type SuggestionService interface {
	// 根据历史、画像和候选标题生成一条推荐
	Suggest(ctx context.Context, req models.SuggestionRequest) (models.Suggestion, error)
}

// LeadService 线索转发服务接口
type LeadService interface {
	// 是否已配置转发目标
	Configured() bool

	// 转发线索
	Forward(ctx context.Context, lead models.LeadRequest) error
}

// TopicDescriber 将历史中的文章 id 解析为主题描述
type TopicDescriber interface {
	Describe(id string) (string, bool)
}

var (
	_ SuggestionService = (*GeminiGenerator)(nil)
	_ SuggestionService = (*APIClient)(nil)
	_ LeadService       = (*WebhookForwarder)(nil)
)
