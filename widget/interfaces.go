package widget

import (
	"context"

	"next_read/models"
)

// SessionStore persists history and scores between visits.
type SessionStore interface {
	Load(ctx context.Context) (models.SessionState, error)
	Save(ctx context.Context, state models.SessionState) error
}

// SuggestionClient asks the suggestion service for the next article.
// Implementations return ErrMalformedResponse or a *ServiceError to let the widget tell the two apart.
type SuggestionClient interface {
	Suggest(ctx context.Context, req models.SuggestionRequest) (models.Suggestion, error)
}

// LeadClient submits a lead to the subscription service.
type LeadClient interface {
	SubmitLead(ctx context.Context, req models.LeadRequest) (models.LeadResponse, error)
}

// CandidatePool lists the titles a session has not seen yet.
type CandidatePool interface {
	EligibleTitles(history []string) []string
}
