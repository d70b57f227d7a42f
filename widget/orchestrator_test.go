package widget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"next_read/models"
)

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("suggestion cycle did not resolve")
	}
}

var titles = []string{"Web Design with Headless CMS", "Advanced Email Automation with APIs"}

func TestGenerate_EmptyPoolGoesIdle(t *testing.T) {
	client := &fakeSuggester{}
	o := NewOrchestrator(client, 0)
	started := 0
	o.OnStart(func() { started++ })

	wait(t, o.Generate(context.Background(), []string{"a", "b"}, "Strategic Generalist", nil))

	assert.Equal(t, PhaseIdle, o.State().Phase)
	assert.Nil(t, o.Suggestion())
	assert.Empty(t, client.Calls())
	assert.Equal(t, 1, started)
}

func TestGenerate_Fulfilled(t *testing.T) {
	want := models.Suggestion{Title: titles[0], Reason: "Scale without the monolith."}
	client := &fakeSuggester{respond: func(models.SuggestionRequest) (models.Suggestion, error) { return want, nil }}
	o := NewOrchestrator(client, 0)

	wait(t, o.Generate(context.Background(), []string{"a", "b"}, "Advanced Technical", titles))

	st := o.State()
	assert.Equal(t, PhaseFulfilled, st.Phase)
	require.NotNil(t, st.Suggestion)
	assert.Equal(t, want, *st.Suggestion)
	assert.NoError(t, st.Err)
	assert.Empty(t, st.Message)
	assert.Equal(t, uint64(1), st.Seq)
}

func TestGenerate_MalformedResponse(t *testing.T) {
	cases := map[string]func(models.SuggestionRequest) (models.Suggestion, error){
		"client reports malformed": func(models.SuggestionRequest) (models.Suggestion, error) {
			return models.Suggestion{}, ErrMalformedResponse
		},
		"missing reason": func(models.SuggestionRequest) (models.Suggestion, error) {
			return models.Suggestion{Title: titles[0]}, nil
		},
	}
	for name, respond := range cases {
		t.Run(name, func(t *testing.T) {
			o := NewOrchestrator(&fakeSuggester{respond: respond}, 0)
			wait(t, o.Generate(context.Background(), []string{"a", "b"}, "p", titles))

			st := o.State()
			assert.Equal(t, PhaseFailed, st.Phase)
			assert.Nil(t, st.Suggestion)
			assert.ErrorIs(t, st.Err, ErrMalformedResponse)
			assert.Equal(t, "Could not generate a suggestion at this time.", st.Message)
		})
	}
}

func TestGenerate_ServiceErrorMessage(t *testing.T) {
	client := &fakeSuggester{respond: func(models.SuggestionRequest) (models.Suggestion, error) {
		return models.Suggestion{}, &ServiceError{StatusCode: 500, Message: "Failed to generate suggestion."}
	}}
	o := NewOrchestrator(client, 0)
	wait(t, o.Generate(context.Background(), []string{"a", "b"}, "p", titles))

	st := o.State()
	assert.Equal(t, PhaseFailed, st.Phase)
	assert.Equal(t, "Sorry, we couldn't generate a suggestion. Error: Failed to generate suggestion.", st.Message)

	var se *ServiceError
	require.ErrorAs(t, st.Err, &se)
	assert.Equal(t, 500, se.StatusCode)
}

func TestGenerate_SuccessClearsPriorError(t *testing.T) {
	fail := true
	client := &fakeSuggester{respond: func(req models.SuggestionRequest) (models.Suggestion, error) {
		if fail {
			return models.Suggestion{}, ErrMalformedResponse
		}
		return models.Suggestion{Title: req.AvailableArticleTitles[0], Reason: "r"}, nil
	}}
	o := NewOrchestrator(client, 0)

	wait(t, o.Generate(context.Background(), []string{"a", "b"}, "p", titles))
	require.Equal(t, PhaseFailed, o.State().Phase)

	fail = false
	wait(t, o.Generate(context.Background(), []string{"a", "b", "c"}, "p", titles))
	st := o.State()
	assert.Equal(t, PhaseFulfilled, st.Phase)
	assert.NoError(t, st.Err)
	assert.Empty(t, st.Message)
}

func TestGenerate_StaleResponseIsDiscarded(t *testing.T) {
	client := newGatedSuggester(2)
	o := NewOrchestrator(client, 0)
	ctx := context.Background()

	first := o.Generate(ctx, []string{"a", "b"}, "p1", titles)
	second := o.Generate(ctx, []string{"a", "b", "c"}, "p2", titles)

	latest := models.Suggestion{Title: titles[1], Reason: "latest"}
	client.release(1, latest, nil)
	wait(t, second)
	client.release(0, models.Suggestion{Title: titles[0], Reason: "stale"}, nil)
	wait(t, first)

	st := o.State()
	assert.Equal(t, PhaseFulfilled, st.Phase)
	require.NotNil(t, st.Suggestion)
	assert.Equal(t, latest, *st.Suggestion)
	assert.Equal(t, uint64(2), st.Seq)
}

func TestGenerate_StaleResponseDoesNotEndPending(t *testing.T) {
	client := newGatedSuggester(2)
	o := NewOrchestrator(client, 0)
	ctx := context.Background()

	first := o.Generate(ctx, []string{"a", "b"}, "p1", titles)
	second := o.Generate(ctx, []string{"a", "b", "c"}, "p2", titles)

	client.release(0, models.Suggestion{}, &ServiceError{StatusCode: 502})
	wait(t, first)
	assert.Equal(t, PhasePending, o.State().Phase)

	client.release(1, models.Suggestion{Title: titles[0], Reason: "r"}, nil)
	wait(t, second)
	assert.Equal(t, PhaseFulfilled, o.State().Phase)
}

func TestGenerate_TimeoutFails(t *testing.T) {
	client := newGatedSuggester(1)
	o := NewOrchestrator(client, 20*time.Millisecond)

	wait(t, o.Generate(context.Background(), []string{"a", "b"}, "p", titles))

	st := o.State()
	assert.Equal(t, PhaseFailed, st.Phase)
	assert.ErrorIs(t, st.Err, context.DeadlineExceeded)
}

func TestServiceError_Message(t *testing.T) {
	assert.Equal(t, "Request failed with status 503", (&ServiceError{StatusCode: 503}).Error())
	assert.Equal(t, "boom", (&ServiceError{StatusCode: 500, Message: "boom"}).Error())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "pending", PhasePending.String())
	assert.Equal(t, "fulfilled", PhaseFulfilled.String())
	assert.Equal(t, "failed", PhaseFailed.String())
}
