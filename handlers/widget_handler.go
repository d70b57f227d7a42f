package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"next_read/config"
	"next_read/logger"
	"next_read/models"
	"next_read/session"
	"next_read/utils"
	"next_read/widget"
)

// Track godoc
// @Summary 记录一次阅读（嵌入模式）
// @Description Reads the session from the dg_hist/dg_ps cookies, tracks the article and returns the persona and, once enough history exists, a suggestion. Nothing is stored server-side.
// @Tags 组件
// @Accept json
// @Produce json
// @Param request body models.TrackRequest true "文章 id，clues 省略时使用目录中的权重"
// @Success 200 {object} models.APIResponse{data=models.TrackResponse} "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Failure 404 {object} models.APIResponse "文章不存在"
// @Router /api/widget/track [post]
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	var req models.TrackRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.WriteCustomErrorResponse(w, http.StatusBadRequest, models.CodeInvalidParams, err.Error(), nil)
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, models.CodeMissingParams, map[string]interface{}{"param": "id"})
		return
	}
	clues := req.Clues
	if clues == nil {
		article, ok := h.catalog.Get().Find(req.ID)
		if !ok {
			utils.WriteErrorResponse(w, http.StatusNotFound, models.CodeUnknownArticle, map[string]interface{}{"id": req.ID})
			return
		}
		clues = article.Clues
	}

	store := session.NewCookieStore(w, r, session.CookieOptions{
		Domain: h.cfg.Session.CookieDomain,
		MaxAge: time.Duration(h.cfg.Session.MaxAgeDays) * 24 * time.Hour,
		Secure: h.cfg.Session.Secure,
	})
	opts := widget.OptionsFromConfig(h.cfg)
	// 服务端不做页面上下文自动追踪
	opts.Embed.Mode = config.ModeSimulator
	wdg, err := widget.New(opts, store, h.catalog, h.suggester, nil)
	if err != nil {
		utils.WriteCustomErrorResponse(w, http.StatusInternalServerError, models.CodeServerError, err.Error(), nil)
		return
	}
	// 读取失败时以空会话继续
	_ = wdg.Tracker.Load(r.Context())

	res, err := wdg.Track(r.Context(), req.ID, clues)
	if errors.Is(err, widget.ErrInvalidClues) {
		utils.WriteCustomErrorResponse(w, http.StatusBadRequest, models.CodeInvalidParams, err.Error(), nil)
		return
	}
	if err != nil {
		utils.WriteCustomErrorResponse(w, http.StatusInternalServerError, models.CodeServerError, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.cfg.Timeouts.ResponseSec)*time.Second)
	defer cancel()
	if err := res.Wait(ctx); err != nil {
		logger.Warn("suggestion did not resolve before the response deadline", "id", req.ID, "error", err)
	}

	st := wdg.Suggestions.State()
	utils.WriteSuccessResponse(w, models.TrackResponse{
		Persona:    res.Persona,
		History:    res.History,
		Skipped:    res.Skipped,
		Phase:      st.Phase.String(),
		Suggestion: st.Suggestion,
		Error:      st.Message,
	})
}
