package widget

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"next_read/logger"
	"next_read/models"
)

// DefaultLeadMessageTTL is how long a submission result stays visible.
const DefaultLeadMessageTTL = 5 * time.Second

// LeadState 线索表单状态
type LeadState struct {
	Email      string
	Subscribed bool
	Submitting bool
	Message    string
}

// LeadFlow sends the current suggestion to an email address.
type LeadFlow struct {
	client LeadClient
	ttl    time.Duration

	mu         sync.Mutex
	email      string
	subscribed bool
	submitting bool
	message    string
	msgGen     uint64
	epoch      uint64 // 每次新推荐周期递增
	timer      *time.Timer
}

// NewLeadFlow creates a lead flow. A positive ttl clears the result message after that long; zero keeps it.
func NewLeadFlow(client LeadClient, ttl time.Duration) *LeadFlow {
	return &LeadFlow{client: client, ttl: ttl, subscribed: true}
}

func (l *LeadFlow) SetEmail(email string) {
	l.mu.Lock()
	l.email = strings.TrimSpace(email)
	l.mu.Unlock()
}

func (l *LeadFlow) SetSubscribed(v bool) {
	l.mu.Lock()
	l.subscribed = v
	l.mu.Unlock()
}

// State returns a snapshot of the form.
func (l *LeadFlow) State() LeadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LeadState{Email: l.email, Subscribed: l.subscribed, Submitting: l.submitting, Message: l.message}
}

// ClearMessage hides the last submission result.
func (l *LeadFlow) ClearMessage() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.epoch++
	l.setMessageLocked("")
}

// Submit sends suggestion to the lead service and blocks until it answers.
// It refuses to run without an email or a suggestion, and while another submission is in flight.
func (l *LeadFlow) Submit(ctx context.Context, suggestion *models.Suggestion) error {
	l.mu.Lock()
	if l.submitting {
		l.mu.Unlock()
		return ErrSubmissionPending
	}
	if l.email == "" {
		l.mu.Unlock()
		return ErrEmailRequired
	}
	if suggestion == nil {
		l.mu.Unlock()
		return ErrNoSuggestion
	}
	email := l.email
	req := models.LeadRequest{
		Email:                  email,
		SuggestedArticle:       suggestion.Title,
		Hook:                   suggestion.Reason,
		SubscribedToNewsletter: l.subscribed,
	}
	epoch := l.epoch
	l.submitting = true
	l.setMessageLocked("")
	l.mu.Unlock()

	_, err := l.client.SubmitLead(ctx, req)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitting = false
	// a newer suggestion cycle has cleared the form since this submit started
	current := l.epoch == epoch
	if err != nil {
		logger.Warn("lead submission failed", "error", err)
		if current {
			l.setMessageLocked(fmt.Sprintf(msgLeadFailed, err.Error()))
		}
		return err
	}
	if current {
		l.setMessageLocked(fmt.Sprintf(msgLeadSent, email))
	}
	// 仅当输入框未被改动时才清空
	if l.email == email {
		l.email = ""
	}
	return nil
}

// setMessageLocked replaces the message and, for a non-empty one, schedules its auto-clear.
func (l *LeadFlow) setMessageLocked(msg string) {
	l.msgGen++
	l.message = msg
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if msg == "" || l.ttl <= 0 {
		return
	}
	gen := l.msgGen
	l.timer = time.AfterFunc(l.ttl, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.msgGen == gen {
			l.message = ""
			l.timer = nil
		}
	})
}
