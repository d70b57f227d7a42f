// Package widget is the recommendation widget core: it tracks engagement,
// classifies the reader and keeps one suggestion (plus its lead form) current.
package widget

import (
	"context"
	"fmt"
	"strings"
	"time"

	"next_read/config"
	"next_read/logger"
	"next_read/models"
	"next_read/persona"
)

// EmbedConfig is resolved once when the widget is mounted.
type EmbedConfig struct {
	APIHost      string
	Mode         string // config.ModeSimulator 或 config.ModeEmbedded
	PageContext  string
	PersonaClues persona.Clues
}

// Normalize trims the trailing slash off APIHost and defaults Mode to simulator.
func (c EmbedConfig) Normalize() EmbedConfig {
	c.APIHost = strings.TrimSuffix(strings.TrimSpace(c.APIHost), "/")
	if c.Mode == "" {
		c.Mode = config.ModeSimulator
	}
	return c
}

// Embedded reports whether the widget runs inside a host page.
func (c EmbedConfig) Embedded() bool {
	return c.Mode == config.ModeEmbedded
}

// Options holds everything the widget needs besides its collaborators.
type Options struct {
	Embed             EmbedConfig
	MinHistory        int
	Classifier        persona.ClassifierConfig
	SuggestionTimeout time.Duration
	LeadMessageTTL    time.Duration
}

// OptionsFromConfig maps the loaded configuration onto widget options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Embed: EmbedConfig{
			APIHost:      cfg.Widget.APIHost,
			Mode:         cfg.Widget.Mode,
			PageContext:  cfg.Widget.PageContext,
			PersonaClues: cfg.Widget.PersonaClues,
		},
		MinHistory:        cfg.Persona.MinHistory,
		Classifier:        cfg.Persona.Classifier,
		SuggestionTimeout: time.Duration(cfg.Gemini.TimeoutSec) * time.Second,
		LeadMessageTTL:    time.Duration(cfg.Widget.LeadMessageTTLSec) * time.Second,
	}
}

// Widget composes the tracker, the suggestion orchestrator and the lead flow.
type Widget struct {
	Tracker     *Tracker
	Suggestions *Orchestrator
	Lead        *LeadFlow
	embed       EmbedConfig
}

// View is a point-in-time snapshot for rendering.
type View struct {
	Persona    string
	History    []string
	Suggestion SuggestionState
	Lead       LeadState
}

// New wires a widget. leads may be nil when the lead form is not used.
func New(opts Options, store SessionStore, pool CandidatePool, suggest SuggestionClient, leads LeadClient) (*Widget, error) {
	classifier, err := persona.NewClassifier(opts.Classifier)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	embed := opts.Embed.Normalize()
	if embed.Mode != config.ModeSimulator && embed.Mode != config.ModeEmbedded {
		return nil, fmt.Errorf("unknown widget mode %q", embed.Mode)
	}
	if err := embed.PersonaClues.Validate(); err != nil {
		return nil, fmt.Errorf("embed persona clues: %w", err)
	}

	orch := NewOrchestrator(suggest, opts.SuggestionTimeout)
	lead := NewLeadFlow(leads, opts.LeadMessageTTL)
	orch.OnStart(lead.ClearMessage)

	return &Widget{
		Tracker:     NewTracker(store, classifier, pool, orch, opts.MinHistory),
		Suggestions: orch,
		Lead:        lead,
		embed:       embed,
	}, nil
}

// Embed returns the resolved embed configuration.
func (w *Widget) Embed() EmbedConfig {
	return w.embed
}

// Init loads the persisted session and, in embedded mode, tracks the host page once.
// A load failure is logged and the widget starts empty.
func (w *Widget) Init(ctx context.Context) (TrackResult, error) {
	_ = w.Tracker.Load(ctx)

	if !w.embed.Embedded() || w.embed.PageContext == "" {
		return TrackResult{Skipped: true, Persona: w.Tracker.Persona(), History: w.Tracker.History(), Done: closedChan()}, nil
	}
	logger.Debug("tracking host page", "page", w.embed.PageContext)
	return w.Tracker.Track(ctx, w.embed.PageContext, w.embed.PersonaClues)
}

// Track records an engagement event.
func (w *Widget) Track(ctx context.Context, id string, clues persona.Clues) (TrackResult, error) {
	return w.Tracker.Track(ctx, id, clues)
}

// Refresh asks for a suggestion for the restored session.
func (w *Widget) Refresh(ctx context.Context) TrackResult {
	return w.Tracker.Refresh(ctx)
}

// SubmitLead sends the current suggestion with the email entered in the lead form.
func (w *Widget) SubmitLead(ctx context.Context) error {
	if w.Lead.client == nil {
		return fmt.Errorf("lead service is not configured")
	}
	return w.Lead.Submit(ctx, w.Suggestions.Suggestion())
}

// Reset starts a fresh session.
func (w *Widget) Reset(ctx context.Context) error {
	return w.Tracker.Reset(ctx)
}

// View snapshots the whole widget.
func (w *Widget) View() View {
	return View{
		Persona:    w.Tracker.Persona(),
		History:    w.Tracker.History(),
		Suggestion: w.Suggestions.State(),
		Lead:       w.Lead.State(),
	}
}

// Suggestion returns the displayed suggestion, if any.
func (w *Widget) Suggestion() *models.Suggestion {
	return w.Suggestions.Suggestion()
}
