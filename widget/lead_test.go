package widget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"next_read/models"
)

var suggestion = &models.Suggestion{Title: "Web Design with Headless CMS", Reason: "Ship faster."}

func TestLeadSubmit_RequiresEmail(t *testing.T) {
	client := &fakeLeads{}
	l := NewLeadFlow(client, 0)

	assert.ErrorIs(t, l.Submit(context.Background(), suggestion), ErrEmailRequired)
	l.SetEmail("   ")
	assert.ErrorIs(t, l.Submit(context.Background(), suggestion), ErrEmailRequired)
	assert.Empty(t, client.Calls())
}

func TestLeadSubmit_RequiresSuggestion(t *testing.T) {
	client := &fakeLeads{}
	l := NewLeadFlow(client, 0)
	l.SetEmail("reader@example.com")

	assert.ErrorIs(t, l.Submit(context.Background(), nil), ErrNoSuggestion)
	assert.Empty(t, client.Calls())
}

func TestLeadSubmit_Success(t *testing.T) {
	client := &fakeLeads{}
	l := NewLeadFlow(client, 0)
	l.SetEmail("reader@example.com")
	l.SetSubscribed(false)

	require.NoError(t, l.Submit(context.Background(), suggestion))

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, models.LeadRequest{
		Email:                  "reader@example.com",
		SuggestedArticle:       suggestion.Title,
		Hook:                   suggestion.Reason,
		SubscribedToNewsletter: false,
	}, calls[0])

	st := l.State()
	assert.Equal(t, "Success! We've sent the article to reader@example.com.", st.Message)
	assert.Empty(t, st.Email, "email input is cleared")
	assert.False(t, st.Submitting)
}

func TestLeadSubmit_Failure(t *testing.T) {
	client := &fakeLeads{err: &ServiceError{StatusCode: 500, Message: "Failed to submit lead."}}
	l := NewLeadFlow(client, 0)
	l.SetEmail("reader@example.com")

	err := l.Submit(context.Background(), suggestion)
	require.Error(t, err)

	st := l.State()
	assert.Equal(t, "Error: Failed to submit lead.", st.Message)
	assert.Equal(t, "reader@example.com", st.Email, "email kept for retry")
}

func TestLeadSubmit_PendingIsNoop(t *testing.T) {
	client := &fakeLeads{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	l := NewLeadFlow(client, 0)
	l.SetEmail("reader@example.com")

	errc := make(chan error, 1)
	go func() { errc <- l.Submit(context.Background(), suggestion) }()
	<-client.entered

	assert.True(t, l.State().Submitting)
	assert.ErrorIs(t, l.Submit(context.Background(), suggestion), ErrSubmissionPending)

	close(client.block)
	require.NoError(t, <-errc)
	assert.Len(t, client.Calls(), 1)
}

func TestLeadMessage_AutoClears(t *testing.T) {
	l := NewLeadFlow(&fakeLeads{err: errors.New("offline")}, 30*time.Millisecond)
	l.SetEmail("reader@example.com")

	_ = l.Submit(context.Background(), suggestion)
	assert.Equal(t, "Error: offline", l.State().Message)
	assert.Eventually(t, func() bool { return l.State().Message == "" }, time.Second, 5*time.Millisecond)
}

func TestLeadMessage_ClearedOnNewSuggestionCycle(t *testing.T) {
	l := NewLeadFlow(&fakeLeads{}, 0)
	l.SetEmail("reader@example.com")
	require.NoError(t, l.Submit(context.Background(), suggestion))
	require.NotEmpty(t, l.State().Message)

	o := NewOrchestrator(&fakeSuggester{}, 0)
	o.OnStart(l.ClearMessage)
	wait(t, o.Generate(context.Background(), []string{"a", "b"}, "p", titles))

	assert.Empty(t, l.State().Message)
}

func TestLeadMessage_InFlightResultDroppedAfterNewCycle(t *testing.T) {
	for _, leadErr := range []error{nil, errors.New("offline")} {
		client := &fakeLeads{err: leadErr, block: make(chan struct{}), entered: make(chan struct{}, 1)}
		l := NewLeadFlow(client, 0)
		l.SetEmail("a@example.com")

		o := NewOrchestrator(&fakeSuggester{}, 0)
		o.OnStart(l.ClearMessage)

		errc := make(chan error, 1)
		go func() { errc <- l.Submit(context.Background(), suggestion) }()
		<-client.entered

		wait(t, o.Generate(context.Background(), []string{"a", "b"}, "p", []string{"New"}))
		close(client.block)
		err := <-errc
		if leadErr == nil {
			require.NoError(t, err)
		} else {
			require.Error(t, err)
		}

		st := l.State()
		assert.Empty(t, st.Message, "result belongs to the previous suggestion")
		assert.False(t, st.Submitting)
		require.NotNil(t, o.Suggestion())
		assert.Equal(t, "New", o.Suggestion().Title)
	}
}
