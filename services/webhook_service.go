package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"next_read/config"
	"next_read/logger"
	"next_read/models"
)

// ErrWebhookNotConfigured 未配置 N8N_WEBHOOK_URL
var ErrWebhookNotConfigured = errors.New("webhook url is not configured")

// WebhookStatusError is a non-2xx answer from the lead webhook.
type WebhookStatusError struct {
	StatusCode int
}

func (e *WebhookStatusError) Error() string {
	return fmt.Sprintf("Webhook call failed with status: %d", e.StatusCode)
}

// LeadLog records lead deliveries. repository.LeadStore implements it.
type LeadLog interface {
	SaveLead(ctx context.Context, rec models.LeadRecord) error
}

// WebhookForwarder posts accepted leads to the automation webhook.
type WebhookForwarder struct {
	url    string
	client *http.Client
	log    LeadLog
	now    func() time.Time
}

// NewWebhookForwarder 创建线索转发器，log 可为 nil
func NewWebhookForwarder(cfg *config.Config, log LeadLog) *WebhookForwarder {
	timeout := time.Duration(cfg.Webhook.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookForwarder{
		url:    strings.TrimSpace(cfg.Webhook.URL),
		client: &http.Client{Timeout: timeout},
		log:    log,
		now:    time.Now,
	}
}

// Configured reports whether a webhook URL is set.
func (f *WebhookForwarder) Configured() bool {
	return f.url != ""
}

// Forward sends the lead unchanged as JSON and records the outcome in the lead log.
func (f *WebhookForwarder) Forward(ctx context.Context, lead models.LeadRequest) error {
	if !f.Configured() {
		return ErrWebhookNotConfigured
	}

	err := f.post(ctx, lead)

	rec := models.LeadRecord{
		ID:               uuid.NewString(),
		Email:            lead.Email,
		SuggestedArticle: lead.SuggestedArticle,
		Subscribed:       lead.SubscribedToNewsletter,
		Status:           models.LeadStatusDelivered,
		CreatedAt:        f.now().UTC(),
	}
	if err != nil {
		rec.Status = models.LeadStatusFailed
		rec.Detail = err.Error()
	}
	if f.log != nil {
		if logErr := f.log.SaveLead(ctx, rec); logErr != nil {
			logger.Error("记录线索投递失败", "lead_id", rec.ID, "error", logErr)
		}
	}

	if err != nil {
		logger.Error("线索推送失败", "lead_id", rec.ID, "error", err)
		return err
	}
	logger.Info("成功推送线索", "lead_id", rec.ID, "subscribed", lead.SubscribedToNewsletter)
	return nil
}

func (f *WebhookForwarder) post(ctx context.Context, lead models.LeadRequest) error {
	jsonData, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("序列化线索数据失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送线索推送请求失败: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &WebhookStatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
