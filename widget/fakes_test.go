package widget

import (
	"context"
	"sync"

	"next_read/models"
)

type outcome struct {
	s   models.Suggestion
	err error
}

// fakeSuggester answers every call with respond, or blocks on a per-call gate when gated.
type fakeSuggester struct {
	mu      sync.Mutex
	calls   []models.SuggestionRequest
	respond func(req models.SuggestionRequest) (models.Suggestion, error)
	gates   []chan outcome
}

func newGatedSuggester(n int) *fakeSuggester {
	f := &fakeSuggester{}
	for i := 0; i < n; i++ {
		f.gates = append(f.gates, make(chan outcome, 1))
	}
	return f
}

func (f *fakeSuggester) Suggest(ctx context.Context, req models.SuggestionRequest) (models.Suggestion, error) {
	f.mu.Lock()
	idx := len(f.calls)
	f.calls = append(f.calls, req)
	respond := f.respond
	var gate chan outcome
	if idx < len(f.gates) {
		gate = f.gates[idx]
	}
	f.mu.Unlock()

	if gate != nil {
		select {
		case o := <-gate:
			return o.s, o.err
		case <-ctx.Done():
			return models.Suggestion{}, ctx.Err()
		}
	}
	if respond != nil {
		return respond(req)
	}
	return models.Suggestion{Title: req.AvailableArticleTitles[0], Reason: "Because you are " + req.DominantPersona}, nil
}

func (f *fakeSuggester) release(i int, s models.Suggestion, err error) {
	f.gates[i] <- outcome{s: s, err: err}
}

func (f *fakeSuggester) Calls() []models.SuggestionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.SuggestionRequest, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeLeads struct {
	mu      sync.Mutex
	calls   []models.LeadRequest
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeLeads) SubmitLead(ctx context.Context, req models.LeadRequest) (models.LeadResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	block, entered, err := f.block, f.entered, f.err
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return models.LeadResponse{}, err
	}
	return models.LeadResponse{Message: "Success"}, nil
}

func (f *fakeLeads) Calls() []models.LeadRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.LeadRequest, len(f.calls))
	copy(out, f.calls)
	return out
}
