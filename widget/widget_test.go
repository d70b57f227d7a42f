package widget

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"next_read/catalog"
	"next_read/config"
	"next_read/persona"
	"next_read/session"
)

func embeddedOptions() Options {
	return Options{
		Embed: EmbedConfig{
			APIHost:      "https://reco.example.com/",
			Mode:         config.ModeEmbedded,
			PageContext:  "Pricing",
			PersonaClues: persona.Clues{persona.Business: 2, persona.CostConscious: 1},
		},
		MinHistory: 2,
		Classifier: persona.DefaultClassifierConfig(),
	}
}

func TestNew_NormalizesEmbedConfig(t *testing.T) {
	w, err := New(embeddedOptions(), &session.MemoryStore{}, catalog.Default(), &fakeSuggester{}, &fakeLeads{})
	require.NoError(t, err)
	assert.Equal(t, "https://reco.example.com", w.Embed().APIHost)
	assert.True(t, w.Embed().Embedded())
}

func TestNew_RejectsBadOptions(t *testing.T) {
	opts := embeddedOptions()
	opts.Embed.Mode = "popup"
	_, err := New(opts, &session.MemoryStore{}, catalog.Default(), &fakeSuggester{}, nil)
	assert.Error(t, err)

	opts = embeddedOptions()
	opts.Classifier.Priority.Margin = -1
	_, err = New(opts, &session.MemoryStore{}, catalog.Default(), &fakeSuggester{}, nil)
	assert.Error(t, err)
}

func TestInit_EmbeddedTracksPageContextOnce(t *testing.T) {
	ctx := context.Background()
	store := &session.MemoryStore{}

	w, err := New(embeddedOptions(), store, catalog.Default(), &fakeSuggester{}, nil)
	require.NoError(t, err)
	res, err := w.Init(ctx)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, []string{"Pricing"}, res.History)
	assert.Equal(t, "Strategic Professional Cost-Conscious", res.Persona)

	// a later page load with the same persisted session does not count the page twice
	again, err := New(embeddedOptions(), store, catalog.Default(), &fakeSuggester{}, nil)
	require.NoError(t, err)
	res, err = again.Init(ctx)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, persona.ScoreMap{persona.Business: 2, persona.CostConscious: 1}, again.Tracker.State().Scores)
}

func TestInit_SimulatorDoesNotTrack(t *testing.T) {
	opts := embeddedOptions()
	opts.Embed.Mode = config.ModeSimulator
	w, err := New(opts, &session.MemoryStore{}, catalog.Default(), &fakeSuggester{}, nil)
	require.NoError(t, err)

	res, err := w.Init(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Empty(t, w.Tracker.History())
	assert.Equal(t, persona.NewVisitorLabel, res.Persona)
}

func TestWidget_EndToEnd(t *testing.T) {
	ctx := context.Background()
	leads := &fakeLeads{}
	pool := catalog.Default()
	opts := embeddedOptions()
	opts.Embed.Mode = config.ModeSimulator

	w, err := New(opts, &session.MemoryStore{}, pool, &fakeSuggester{}, leads)
	require.NoError(t, err)
	_, err = w.Init(ctx)
	require.NoError(t, err)

	for _, id := range []string{"technical-seo-crawl-budget", "email-automation-apis"} {
		a, _ := pool.Find(id)
		res, err := w.Track(ctx, id, a.Clues)
		require.NoError(t, err)
		require.NoError(t, res.Wait(ctx))
	}

	view := w.View()
	assert.Equal(t, "Advanced Technical Efficiency-Focused", view.Persona)
	assert.Equal(t, PhaseFulfilled, view.Suggestion.Phase)
	require.NotNil(t, w.Suggestion())

	w.Lead.SetEmail("reader@example.com")
	require.NoError(t, w.SubmitLead(ctx))
	require.Len(t, leads.Calls(), 1)
	assert.Equal(t, w.Suggestion().Title, leads.Calls()[0].SuggestedArticle)

	require.NoError(t, w.Reset(ctx))
	assert.Equal(t, persona.NewVisitorLabel, w.View().Persona)
}

func TestWidget_SubmitLeadWithoutClient(t *testing.T) {
	w, err := New(embeddedOptions(), &session.MemoryStore{}, catalog.Default(), &fakeSuggester{}, nil)
	require.NoError(t, err)
	w.Lead.SetEmail("reader@example.com")
	assert.Error(t, w.SubmitLead(context.Background()))
}
