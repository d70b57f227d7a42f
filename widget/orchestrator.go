package widget

import (
	"context"
	"sync"
	"time"

	"next_read/logger"
	"next_read/models"
)

// Phase of the suggestion cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseFulfilled
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseFulfilled:
		return "fulfilled"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// SuggestionState is what the widget displays.
type SuggestionState struct {
	Phase      Phase
	Suggestion *models.Suggestion
	Err        error
	Message    string
	Seq        uint64 // 最近一次请求的序号
}

// Orchestrator keeps at most one suggestion displayed.
// Every Generate call takes a new sequence number and only the latest call's outcome is applied.
type Orchestrator struct {
	client  SuggestionClient
	timeout time.Duration

	mu      sync.Mutex
	seq     uint64
	state   SuggestionState
	onStart func()
}

// NewOrchestrator 创建推荐编排器，timeout 为 0 时不额外限制单次请求
func NewOrchestrator(client SuggestionClient, timeout time.Duration) *Orchestrator {
	return &Orchestrator{client: client, timeout: timeout}
}

// OnStart registers a hook run every time a new cycle starts, before the service is called.
func (o *Orchestrator) OnStart(fn func()) {
	o.mu.Lock()
	o.onStart = fn
	o.mu.Unlock()
}

// State returns a copy of the display state.
func (o *Orchestrator) State() SuggestionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.state
	if s.Suggestion != nil {
		cp := *s.Suggestion
		s.Suggestion = &cp
	}
	return s
}

// Suggestion returns the current suggestion, nil unless fulfilled.
func (o *Orchestrator) Suggestion() *models.Suggestion {
	return o.State().Suggestion
}

// Generate starts a cycle for the given snapshot. The returned channel is closed once the
// outcome has been applied, or discarded because a later cycle superseded it.
// With no titles left the orchestrator goes idle without calling the service.
func (o *Orchestrator) Generate(ctx context.Context, history []string, persona string, titles []string) <-chan struct{} {
	done := make(chan struct{})

	o.mu.Lock()
	o.seq++
	seq := o.seq
	hook := o.onStart
	if len(titles) == 0 {
		o.state = SuggestionState{Phase: PhaseIdle, Seq: seq}
		o.mu.Unlock()
		if hook != nil {
			hook()
		}
		close(done)
		return done
	}
	o.state = SuggestionState{Phase: PhasePending, Seq: seq}
	o.mu.Unlock()
	if hook != nil {
		hook()
	}

	req := models.SuggestionRequest{
		History:                append([]string(nil), history...),
		DominantPersona:        persona,
		AvailableArticleTitles: append([]string(nil), titles...),
	}

	go func() {
		defer close(done)
		callCtx := ctx
		if o.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, o.timeout)
			defer cancel()
		}
		s, err := o.client.Suggest(callCtx, req)
		o.apply(seq, s, err)
	}()
	return done
}

func (o *Orchestrator) apply(seq uint64, s models.Suggestion, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.seq {
		logger.Debug("discarding superseded suggestion", "seq", seq, "latest", o.seq)
		return
	}
	if err == nil && (s.Title == "" || s.Reason == "") {
		err = ErrMalformedResponse
	}
	if err != nil {
		logger.Warn("suggestion failed", "seq", seq, "error", err)
		o.state = SuggestionState{Phase: PhaseFailed, Err: err, Message: suggestionFailureMessage(err), Seq: seq}
		return
	}
	o.state = SuggestionState{Phase: PhaseFulfilled, Suggestion: &s, Seq: seq}
}
