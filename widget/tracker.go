package widget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"next_read/logger"
	"next_read/models"
	"next_read/persona"
)

// DefaultMinHistory is the history length at which suggestions start.
const DefaultMinHistory = 2

// TrackResult reports what a single Track call did.
type TrackResult struct {
	Skipped      bool // 重复的 id，未做任何处理
	Persona      string
	History      []string
	Scores       persona.ScoreMap
	Eligible     []string
	Orchestrated bool
	// Done is closed when the suggestion cycle started by this call has resolved.
	// It is already closed when no cycle was started.
	Done <-chan struct{}
}

// Wait blocks until the started cycle resolves or ctx ends.
func (r TrackResult) Wait(ctx context.Context) error {
	if r.Done == nil {
		return nil
	}
	select {
	case <-r.Done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tracker records engagement events and keeps history and scores in lock-step.
type Tracker struct {
	store      SessionStore
	classifier *persona.Classifier
	pool       CandidatePool
	orch       *Orchestrator
	minHistory int
	now        func() time.Time

	mu    sync.Mutex
	state models.SessionState
}

// NewTracker wires a tracker. minHistory below 1 falls back to DefaultMinHistory.
func NewTracker(store SessionStore, classifier *persona.Classifier, pool CandidatePool, orch *Orchestrator, minHistory int) *Tracker {
	if minHistory < 1 {
		minHistory = DefaultMinHistory
	}
	return &Tracker{
		store:      store,
		classifier: classifier,
		pool:       pool,
		orch:       orch,
		minHistory: minHistory,
		now:        time.Now,
		state:      models.NewSessionState(),
	}
}

// Load replaces the in-memory state with the persisted one.
// A failed load is logged and leaves the tracker with empty state; the error is returned for callers that care.
func (t *Tracker) Load(ctx context.Context) error {
	state, err := t.store.Load(ctx)
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		logger.Warn("failed to load session state, starting empty", "error", err)
		t.state = models.NewSessionState()
		return err
	}
	t.state = state.Sanitize()
	return nil
}

// Track records one engagement event.
// A repeated id is skipped without re-scoring, saving or orchestration.
func (t *Tracker) Track(ctx context.Context, id string, clues persona.Clues) (TrackResult, error) {
	if err := clues.Validate(); err != nil {
		return TrackResult{}, fmt.Errorf("%w: %v", ErrInvalidClues, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if id == "" || t.state.Contains(id) {
		return TrackResult{
			Skipped: true,
			Persona: t.classifier.Classify(t.state.Scores),
			History: cloneStrings(t.state.History),
			Scores:  t.state.Scores.Clone(),
			Done:    closedChan(),
		}, nil
	}

	next := t.state.Clone()
	next.History = append(next.History, id)
	next.Scores = persona.ApplyClue(next.Scores, clues)
	next.UpdatedAt = t.now()
	t.state = next

	label := t.classifier.Classify(next.Scores)
	history := cloneStrings(next.History)
	eligible := t.pool.EligibleTitles(history)

	if err := t.store.Save(ctx, next.Clone()); err != nil {
		logger.Warn("failed to save session state", "id", id, "error", err)
	}

	res := TrackResult{
		Persona:  label,
		History:  history,
		Scores:   next.Scores.Clone(),
		Eligible: eligible,
		Done:     closedChan(),
	}
	// 持锁启动，保证请求序号与追踪顺序一致
	if len(history) >= t.minHistory && t.orch != nil {
		res.Done = t.orch.Generate(ctx, history, label, eligible)
		res.Orchestrated = true
	}
	return res, nil
}

// Refresh starts a new suggestion cycle for the current session without tracking anything.
// Below the history threshold nothing starts and Orchestrated is false.
func (t *Tracker) Refresh(ctx context.Context) TrackResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	history := cloneStrings(t.state.History)
	res := TrackResult{
		Persona: t.classifier.Classify(t.state.Scores),
		History: history,
		Scores:  t.state.Scores.Clone(),
		Done:    closedChan(),
	}
	if len(history) < t.minHistory || t.orch == nil {
		return res
	}
	res.Eligible = t.pool.EligibleTitles(history)
	res.Done = t.orch.Generate(ctx, history, res.Persona, res.Eligible)
	res.Orchestrated = true
	return res
}

// Reset clears history and scores and persists the empty session.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = models.NewSessionState()
	t.state.UpdatedAt = t.now()
	if err := t.store.Save(ctx, t.state.Clone()); err != nil {
		logger.Warn("failed to save reset session", "error", err)
		return err
	}
	return nil
}

// State returns a copy of the session state.
func (t *Tracker) State() models.SessionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// Persona classifies the current scores.
func (t *Tracker) Persona() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.classifier.Classify(t.state.Scores)
}

// History returns a copy of the tracked ids.
func (t *Tracker) History() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneStrings(t.state.History)
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func closedChan() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
