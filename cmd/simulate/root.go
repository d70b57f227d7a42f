package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"next_read/catalog"
	"next_read/config"
	"next_read/logger"
	"next_read/models"
	"next_read/services"
	"next_read/session"
	"next_read/widget"
)

// Suggestion backends.
const (
	backendAPI   = "api"   // 通过 /api/generate、/api/subscribe 调用已部署的服务
	backendLocal = "local" // 进程内直接调用 Gemini 和 webhook
)

type rootOptions struct {
	configPath string
	sessionID  string
	backend    string
	wait       time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "simulate",
		Short:         "Next-article widget simulator",
		Long:          "Track reads, watch the persona evolve and request next-article suggestions against a local session.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "config file")
	root.PersistentFlags().StringVar(&opts.sessionID, "session", "default", "session id")
	root.PersistentFlags().StringVar(&opts.backend, "backend", backendAPI, "suggestion backend: api or local")
	root.PersistentFlags().DurationVar(&opts.wait, "wait", 45*time.Second, "how long to wait for a suggestion")

	root.AddCommand(newTrackCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newLeadCmd(opts))
	root.AddCommand(newResetCmd(opts))
	root.AddCommand(newSessionsCmd(opts))
	root.AddCommand(newCatalogCmd(opts))
	return root
}

// simEnv is everything one command invocation needs.
type simEnv struct {
	cfg     *config.Config
	db      *session.BoltDB
	catalog *catalog.Holder
	widget  *widget.Widget
}

func (e *simEnv) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func openSessions(cfg *config.Config) (*session.BoltDB, error) {
	return session.OpenBolt(cfg.Session.BoltPath, time.Duration(cfg.Session.MaxAgeDays)*24*time.Hour)
}

// openEnv loads config, the catalog and the session database, then restores the widget for opts.sessionID.
func openEnv(ctx context.Context, opts *rootOptions) (*simEnv, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	cat, err := catalogFor(cfg)
	if err != nil {
		return nil, err
	}
	holder := catalog.NewHolder(cat)

	suggest, leads, err := newBackend(cfg, opts.backend, holder)
	if err != nil {
		return nil, err
	}

	db, err := openSessions(cfg)
	if err != nil {
		return nil, err
	}

	wopts := widget.OptionsFromConfig(cfg)
	wopts.Embed.Mode = config.ModeSimulator
	wopts.LeadMessageTTL = 0
	w, err := widget.New(wopts, db.Session(opts.sessionID), holder, suggest, leads)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := w.Tracker.Load(ctx); err != nil {
		logger.Warn("session could not be restored", "session", opts.sessionID, "error", err)
	}
	return &simEnv{cfg: cfg, db: db, catalog: holder, widget: w}, nil
}

func newBackend(cfg *config.Config, backend string, topics services.TopicDescriber) (widget.SuggestionClient, widget.LeadClient, error) {
	switch backend {
	case backendAPI:
		if cfg.Widget.APIHost == "" {
			return nil, nil, fmt.Errorf("widget.api_host (WIDGET_API_HOST) is required for the api backend")
		}
		client := services.NewAPIClient(cfg.Widget.APIHost, time.Duration(cfg.Gemini.TimeoutSec)*time.Second)
		return client, client, nil
	case backendLocal:
		if cfg.Gemini.APIKey == "" {
			return nil, nil, services.ErrAPIKeyMissing
		}
		return services.NewGeminiGenerator(cfg, topics), forwarderLeads{services.NewWebhookForwarder(cfg, nil)}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// forwarderLeads lets the widget post leads straight to the webhook.
type forwarderLeads struct {
	f *services.WebhookForwarder
}

func (l forwarderLeads) SubmitLead(ctx context.Context, req models.LeadRequest) (models.LeadResponse, error) {
	if err := l.f.Forward(ctx, req); err != nil {
		return models.LeadResponse{}, err
	}
	return models.LeadResponse{Message: models.MsgLeadSuccess}, nil
}

func catalogFor(cfg *config.Config) (*catalog.Catalog, error) {
	return catalog.Load(cfg.Catalog.Path)
}
