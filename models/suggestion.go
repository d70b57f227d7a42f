package models

// Suggestion 推荐结果：一篇文章标题及面向画像的推荐理由
type Suggestion struct {
	Title  string `json:"title" example:"Web Design with Headless CMS"`
	Reason string `json:"reason" example:"You clearly like building for scale..."`
}

// SuggestionRequest is the body of POST /api/generate.
type SuggestionRequest struct {
	History                []string `json:"history"`
	DominantPersona        string   `json:"dominantPersona" example:"Advanced Technical Innovation-Driven"`
	AvailableArticleTitles []string `json:"availableArticleTitles"`
}

// SuggestionResponse is the success body of POST /api/generate.
// Suggestion is a pointer so an absent field can be told apart from an empty one.
type SuggestionResponse struct {
	Suggestion *SuggestionPayload `json:"suggestion"`
}

// SuggestionPayload mirrors Suggestion with optional fields for shape validation.
type SuggestionPayload struct {
	Title  *string `json:"title"`
	Reason *string `json:"reason"`
}

// Valid reports whether the payload carries both a non-empty title and reason.
func (r *SuggestionResponse) Valid() bool {
	if r == nil || r.Suggestion == nil {
		return false
	}
	s := r.Suggestion
	return s.Title != nil && *s.Title != "" && s.Reason != nil && *s.Reason != ""
}

// ToSuggestion 转换为领域对象，调用方需先检查 Valid
func (r *SuggestionResponse) ToSuggestion() Suggestion {
	return Suggestion{Title: *r.Suggestion.Title, Reason: *r.Suggestion.Reason}
}

// NewSuggestionResponse wraps a suggestion in the wire envelope.
func NewSuggestionResponse(s Suggestion) SuggestionResponse {
	title, reason := s.Title, s.Reason
	return SuggestionResponse{Suggestion: &SuggestionPayload{Title: &title, Reason: &reason}}
}
