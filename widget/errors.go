package widget

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse is returned when the suggestion service answers 2xx with a body lacking a usable suggestion.
	ErrMalformedResponse = errors.New("malformed suggestion response")

	ErrInvalidClues      = errors.New("invalid persona clues")
	ErrEmailRequired     = errors.New("email is required")
	ErrNoSuggestion      = errors.New("no suggestion to send")
	ErrSubmissionPending = errors.New("lead submission already in progress")
)

// User-facing messages.
const (
	MsgMalformedSuggestion = "Could not generate a suggestion at this time."
	msgSuggestionFailed    = "Sorry, we couldn't generate a suggestion. Error: %s"
	msgLeadSent            = "Success! We've sent the article to %s."
	msgLeadFailed          = "Error: %s"
)

// ServiceError is a non-2xx answer from the suggestion or lead service.
type ServiceError struct {
	StatusCode int
	Message    string // 服务端返回的 error 字段
	Details    string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Request failed with status %d", e.StatusCode)
}

// suggestionFailureMessage maps a generation error to the text shown in the widget.
func suggestionFailureMessage(err error) string {
	if errors.Is(err, ErrMalformedResponse) {
		return MsgMalformedSuggestion
	}
	return fmt.Sprintf(msgSuggestionFailed, err.Error())
}
