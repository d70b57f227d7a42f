package handlers

import (
	"net/http"
	"strings"

	"next_read/logger"
	"next_read/models"
	"next_read/services"
	"next_read/utils"
)

// Generate godoc
// @Summary 生成下一篇推荐
// @Description Asks the model to pick the next article for the reader and write a persona-specific hook.
// @Tags 推荐
// @Accept json
// @Produce json
// @Param request body models.SuggestionRequest true "阅读历史、画像和候选标题"
// @Success 200 {object} models.SuggestionResponse "成功"
// @Failure 400 {object} models.ErrorResponse "参数错误"
// @Failure 405 {object} models.ErrorResponse "方法不允许"
// @Failure 500 {object} models.ErrorResponse "生成失败"
// @Router /api/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.SuggestionRequest
	if err := utils.DecodeJSONBody(r, &req); err != nil {
		utils.WriteProxyError(w, http.StatusBadRequest, models.MsgInvalidBody, err.Error())
		return
	}
	if err := services.ValidateSuggestionRequest(req); err != nil {
		utils.WriteProxyError(w, http.StatusBadRequest, models.MsgInvalidBody, err.Error())
		return
	}

	s, err := h.suggester.Suggest(r.Context(), req)
	if err != nil {
		logger.Error("[API_GENERATE_ERROR]", "error", err)
		utils.WriteProxyError(w, http.StatusInternalServerError, models.MsgGenerateFailed, err.Error())
		return
	}

	utils.WriteFormattedJSON(w, models.NewSuggestionResponse(s))
}

// Subscribe godoc
// @Summary 提交线索
// @Description Forwards the reader's email and the suggested article to the automation webhook.
// @Tags 线索
// @Accept json
// @Produce json
// @Param request body models.LeadRequest true "线索"
// @Success 200 {object} models.LeadResponse "成功"
// @Failure 400 {object} models.ErrorResponse "参数错误"
// @Failure 405 {object} models.ErrorResponse "方法不允许"
// @Failure 500 {object} models.ErrorResponse "未配置或转发失败"
// @Router /api/subscribe [post]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if !h.leads.Configured() {
		logger.Error("N8N_WEBHOOK_URL is not set")
		utils.WriteProxyError(w, http.StatusInternalServerError, models.MsgSubscribeNotConfigured, "")
		return
	}

	var lead models.LeadRequest
	if err := utils.DecodeJSONBody(r, &lead); err != nil {
		utils.WriteProxyError(w, http.StatusBadRequest, models.MsgInvalidBody, err.Error())
		return
	}
	lead.Email = strings.TrimSpace(lead.Email)
	if lead.Email == "" {
		utils.WriteProxyError(w, http.StatusBadRequest, models.MsgEmailRequired, "")
		return
	}

	if err := h.leads.Forward(r.Context(), lead); err != nil {
		logger.Error("[API_SUBSCRIBE_ERROR]", "error", err)
		utils.WriteProxyError(w, http.StatusInternalServerError, models.MsgSubscribeFailed, err.Error())
		return
	}

	utils.WriteFormattedJSON(w, models.LeadResponse{Message: models.MsgLeadSuccess})
}
