package services

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"next_read/models"
	"next_read/utils"
)

// SiteName 提示词中的品牌名
const SiteName = "DigiGen"

// buildSuggestionPrompt 构建文案生成提示词
// The last history entry is called out as the most recent read; the rest become background.
func buildSuggestionPrompt(req models.SuggestionRequest) string {
	history := make([]string, 0, len(req.History))
	for _, h := range req.History {
		history = append(history, utils.FilterSpecialSymbols(h))
	}
	titles := make([]string, 0, len(req.AvailableArticleTitles))
	for _, t := range req.AvailableArticleTitles {
		titles = append(titles, utils.FilterSpecialSymbols(t))
	}

	historyString := ""
	if len(history) > 1 {
		quoted := make([]string, 0, len(history)-1)
		for _, h := range history[:len(history)-1] {
			quoted = append(quoted, fmt.Sprintf("%q", h))
		}
		historyString = fmt.Sprintf("They have previously read articles about: %s.", strings.Join(quoted, ", "))
	}
	lastClicked := history[len(history)-1]

	return fmt.Sprintf(`You are an expert marketing copywriter for %q.
**User's Inferred Persona:** %q
**User's Reading History:**
%s
Their most recent article was about: %q.
**Available Articles to Suggest From:**
[%s]
**Your Task:**
1. Analyze the persona and history.
2. Choose the single most relevant article from the list.
3. Write a short, persuasive hook (the 'reason') that speaks to their persona.
4. You MUST return a JSON object that strictly follows the provided schema.`,
		SiteName,
		utils.FilterSpecialSymbols(req.DominantPersona),
		historyString,
		lastClicked,
		strings.Join(titles, ", "))
}

// describeHistory swaps tracked ids for their topic sentence; unknown ids are kept as sent.
func describeHistory(history []string, topics TopicDescriber) []string {
	out := make([]string, len(history))
	for i, id := range history {
		out[i] = id
		if topics == nil {
			continue
		}
		if desc, ok := topics.Describe(id); ok {
			out[i] = desc
		}
	}
	return out
}

// suggestionSchema is the response schema handed to the model.
func suggestionSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"suggestion": {
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"title":  {Type: jsonschema.String, Description: "Exact title of the chosen article"},
					"reason": {Type: jsonschema.String, Description: "Short persuasive hook addressed to the reader"},
				},
				Required:             []string{"title", "reason"},
				AdditionalProperties: false,
			},
		},
		Required:             []string{"suggestion"},
		AdditionalProperties: false,
	}
}

// ValidateSuggestionRequest 校验 /api/generate 请求体
func ValidateSuggestionRequest(req models.SuggestionRequest) error {
	if len(utils.DeduplicateSlice(req.History)) == 0 {
		return fmt.Errorf("history must contain at least one entry")
	}
	if len(utils.DeduplicateSlice(req.AvailableArticleTitles)) == 0 {
		return fmt.Errorf("availableArticleTitles must contain at least one entry")
	}
	return nil
}
