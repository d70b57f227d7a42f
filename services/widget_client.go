package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"next_read/models"
	"next_read/widget"
)

// Fallback error texts when a failed response body is not JSON.
const (
	fallbackSuggestError = "An unknown error occurred."
	fallbackLeadError    = "Failed to submit form."
)

// APIClient calls the proxy endpoints over HTTP on behalf of the widget.
// It implements widget.SuggestionClient and widget.LeadClient.
type APIClient struct {
	baseURL string
	http    *http.Client
}

// NewAPIClient 创建代理接口客户端，host 末尾的 / 会被去掉；host 为空时使用相对路径
func NewAPIClient(host string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &APIClient{
		baseURL: strings.TrimSuffix(strings.TrimSpace(host), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Suggest calls POST /api/generate.
func (c *APIClient) Suggest(ctx context.Context, req models.SuggestionRequest) (models.Suggestion, error) {
	body, err := c.post(ctx, "/api/generate", req, fallbackSuggestError)
	if err != nil {
		return models.Suggestion{}, err
	}
	var payload models.SuggestionResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.Suggestion{}, fmt.Errorf("%w: %v", widget.ErrMalformedResponse, err)
	}
	if !payload.Valid() {
		return models.Suggestion{}, widget.ErrMalformedResponse
	}
	return payload.ToSuggestion(), nil
}

// SubmitLead calls POST /api/subscribe.
func (c *APIClient) SubmitLead(ctx context.Context, req models.LeadRequest) (models.LeadResponse, error) {
	body, err := c.post(ctx, "/api/subscribe", req, fallbackLeadError)
	if err != nil {
		return models.LeadResponse{}, err
	}
	var out models.LeadResponse
	// 成功即可，响应体无法解析时不视为失败
	_ = json.Unmarshal(body, &out)
	return out, nil
}

// post sends v as JSON and returns the body of a 2xx answer.
// Any other status becomes a *widget.ServiceError carrying the server's error field.
func (c *APIClient) post(ctx context.Context, path string, v interface{}, fallback string) ([]byte, error) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &widget.ServiceError{StatusCode: resp.StatusCode}
		var e models.ErrorResponse
		if err := json.Unmarshal(body, &e); err != nil {
			se.Message = fallback
		} else {
			se.Message, se.Details = e.Error, e.Details
		}
		return nil, se
	}
	return body, nil
}
