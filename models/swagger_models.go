package models

import "next_read/persona"

// APIResponse 通用API响应
type APIResponse struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// TrackRequest is the body of POST /api/widget/track.
type TrackRequest struct {
	ID    string        `json:"id" example:"headless-cms"`
	Clues persona.Clues `json:"clues,omitempty"`
}

// TrackResponse 嵌入式追踪接口响应
type TrackResponse struct {
	Persona    string      `json:"persona" example:"Advanced Technical Innovation-Driven"`
	History    []string    `json:"history"`
	Skipped    bool        `json:"skipped"`
	Phase      string      `json:"phase" example:"fulfilled"`
	Suggestion *Suggestion `json:"suggestion,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// CatalogResponse 文章目录响应
type CatalogResponse struct {
	Code    int       `json:"code" example:"0"`
	Message string    `json:"message" example:"success"`
	Data    []Article `json:"data"`
}
