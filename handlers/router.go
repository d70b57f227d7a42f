package handlers

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"next_read/catalog"
	"next_read/config"
	_ "next_read/docs" // 导入 swagger 文档
	"next_read/models"
	"next_read/services"
	"next_read/utils"
)

// Handler 持有各接口依赖
type Handler struct {
	cfg       *config.Config
	suggester services.SuggestionService
	leads     services.LeadService
	catalog   *catalog.Holder
	db        *sql.DB // 可为 nil
}

// NewHandler wires the HTTP layer. db may be nil when the lead log is disabled.
func NewHandler(cfg *config.Config, suggester services.SuggestionService, leads services.LeadService, cat *catalog.Holder, db *sql.DB) *Handler {
	return &Handler{cfg: cfg, suggester: suggester, leads: leads, catalog: cat, db: db}
}

// newCORS allows MAIN_DOMAIN, or any origin when it is unset.
func newCORS(mainDomain string) func(http.Handler) http.Handler {
	origin := mainDomain
	if origin == "" {
		origin = "*"
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: origin != "*",
	})
}

func noContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.WriteProxyError(w, http.StatusMethodNotAllowed, models.MsgMethodNotAllowed, "")
}

func RegisterRoutes(r *chi.Mux, h *Handler) {
	r.MethodNotAllowed(methodNotAllowed)

	// Swagger 文档
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // Swagger JSON 的 URL
	))

	r.Get("/healthz", h.Health)
	r.Get("/api/catalog", h.Catalog)

	r.Group(func(r chi.Router) {
		r.Use(newCORS(h.cfg.CORS.MainDomain))

		r.Post("/api/generate", h.Generate)
		r.Options("/api/generate", noContent)

		r.Post("/api/subscribe", h.Subscribe)
		r.Options("/api/subscribe", noContent)

		r.Post("/api/widget/track", h.Track)
		r.Options("/api/widget/track", noContent)
	})
}
