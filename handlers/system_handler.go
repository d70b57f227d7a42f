package handlers

import (
	"context"
	"net/http"
	"time"

	"next_read/models"
	"next_read/utils"
)

// Catalog godoc
// @Summary 文章目录
// @Description Lists the candidate pool the suggestion service chooses from.
// @Tags 组件
// @Produce json
// @Success 200 {object} models.CatalogResponse "成功"
// @Router /api/catalog [get]
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccessResponse(w, h.catalog.Get().Articles())
}

// Health godoc
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} models.APIResponse "成功"
// @Failure 503 {object} models.APIResponse "数据库不可用"
// @Router /healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"status":   "ok",
		"articles": h.catalog.Get().Len(),
		"database": "disabled",
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			data["status"] = "degraded"
			data["database"] = err.Error()
			utils.WriteErrorResponse(w, http.StatusServiceUnavailable, models.CodeServerError, data)
			return
		}
		data["database"] = "ok"
	}
	utils.WriteSuccessResponse(w, data)
}
