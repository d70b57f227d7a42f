package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"next_read/catalog"
	"next_read/config"
	"next_read/models"
	"next_read/session"
)

type stubSuggester struct {
	mu   sync.Mutex
	reqs []models.SuggestionRequest
	s    models.Suggestion
	err  error
}

func (f *stubSuggester) Suggest(ctx context.Context, req models.SuggestionRequest) (models.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.s, f.err
}

type stubLeads struct {
	configured bool
	err        error
	got        []models.LeadRequest
}

func (f *stubLeads) Configured() bool { return f.configured }

func (f *stubLeads) Forward(ctx context.Context, lead models.LeadRequest) error {
	f.got = append(f.got, lead)
	return f.err
}

func newTestRouter(t *testing.T, sugg *stubSuggester, leads *stubLeads) *chi.Mux {
	t.Helper()
	cfg := config.Default()
	cfg.CORS.MainDomain = "https://www.example.com"
	h := NewHandler(cfg, sugg, leads, catalog.NewHolder(catalog.Default()), nil)
	r := chi.NewRouter()
	RegisterRoutes(r, h)
	return r
}

func doJSON(r http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var e models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestGenerate_Success(t *testing.T) {
	sugg := &stubSuggester{s: models.Suggestion{Title: "Web Design with Headless CMS", Reason: "Build for scale."}}
	r := newTestRouter(t, sugg, &stubLeads{})

	rec := doJSON(r, http.MethodPost, "/api/generate",
		`{"history":["A","B"],"dominantPersona":"Advanced Technical","availableArticleTitles":["Web Design with Headless CMS"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SuggestionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Valid())
	assert.Equal(t, "Web Design with Headless CMS", resp.ToSuggestion().Title)
	require.Len(t, sugg.reqs, 1)
	assert.Equal(t, "Advanced Technical", sugg.reqs[0].DominantPersona)
}

func TestGenerate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
		msg    string
	}{
		{"bad json", `{"history":`, nil, http.StatusBadRequest, models.MsgInvalidBody},
		{"no titles", `{"history":["A"],"dominantPersona":"Basic","availableArticleTitles":[]}`, nil, http.StatusBadRequest, models.MsgInvalidBody},
		{"upstream", `{"history":["A"],"dominantPersona":"Basic","availableArticleTitles":["X"]}`, errors.New("quota exceeded"), http.StatusInternalServerError, models.MsgGenerateFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(t, &stubSuggester{err: tc.err}, &stubLeads{})
			rec := doJSON(r, http.MethodPost, "/api/generate", tc.body)
			assert.Equal(t, tc.status, rec.Code)
			e := decodeError(t, rec)
			assert.Equal(t, tc.msg, e.Error)
			if tc.err != nil {
				assert.Contains(t, e.Details, "quota exceeded")
			}
		})
	}
}

func TestProxy_MethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, &stubSuggester{}, &stubLeads{configured: true})
	for _, path := range []string{"/api/generate", "/api/subscribe"} {
		rec := doJSON(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
		assert.Equal(t, models.MsgMethodNotAllowed, decodeError(t, rec).Error)
	}
}

func TestProxy_Preflight(t *testing.T) {
	r := newTestRouter(t, &stubSuggester{}, &stubLeads{})
	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", "https://www.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://www.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestSubscribe(t *testing.T) {
	leads := &stubLeads{configured: true}
	r := newTestRouter(t, &stubSuggester{}, leads)

	rec := doJSON(r, http.MethodPost, "/api/subscribe",
		`{"email":" reader@example.com ","suggestedArticle":"Web Design with Headless CMS","subscribedToNewsletter":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.MsgLeadSuccess, resp.Message)
	require.Len(t, leads.got, 1)
	assert.Equal(t, "reader@example.com", leads.got[0].Email)
	assert.True(t, leads.got[0].SubscribedToNewsletter)
}

func TestSubscribe_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		leads := &stubLeads{}
		r := newTestRouter(t, &stubSuggester{}, leads)
		rec := doJSON(r, http.MethodPost, "/api/subscribe", `{"email":"a@b.c"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, models.MsgSubscribeNotConfigured, decodeError(t, rec).Error)
		assert.Empty(t, leads.got)
	})
	t.Run("missing email", func(t *testing.T) {
		r := newTestRouter(t, &stubSuggester{}, &stubLeads{configured: true})
		rec := doJSON(r, http.MethodPost, "/api/subscribe", `{"email":"  "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, models.MsgEmailRequired, decodeError(t, rec).Error)
	})
	t.Run("webhook failure", func(t *testing.T) {
		r := newTestRouter(t, &stubSuggester{}, &stubLeads{configured: true, err: errors.New("Webhook call failed with status: 502")})
		rec := doJSON(r, http.MethodPost, "/api/subscribe", `{"email":"a@b.c"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		e := decodeError(t, rec)
		assert.Equal(t, models.MsgSubscribeFailed, e.Error)
		assert.Contains(t, e.Details, "502")
	})
}

func trackResponse(t *testing.T, rec *httptest.ResponseRecorder) models.TrackResponse {
	t.Helper()
	var env struct {
		Code int                  `json:"code"`
		Data models.TrackResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, models.CodeSuccess, env.Code)
	return env.Data
}

func TestTrack_CookieRoundTrip(t *testing.T) {
	sugg := &stubSuggester{s: models.Suggestion{Title: "Web Design with Headless CMS", Reason: "Scale up."}}
	r := newTestRouter(t, sugg, &stubLeads{})

	first := doJSON(r, http.MethodPost, "/api/widget/track", `{"id":"content-marketing-roi"}`)
	require.Equal(t, http.StatusOK, first.Code)
	got := trackResponse(t, first)
	assert.Equal(t, []string{"content-marketing-roi"}, got.History)
	assert.Equal(t, "idle", got.Phase)
	assert.Empty(t, sugg.reqs)

	cookies := first.Result().Cookies()
	names := map[string]bool{}
	for _, c := range cookies {
		names[c.Name] = true
	}
	assert.True(t, names[session.HistoryKey])
	assert.True(t, names[session.ScoresKey])

	second := doJSON(r, http.MethodPost, "/api/widget/track", `{"id":"ppc-budgeting-smb"}`, cookies...)
	require.Equal(t, http.StatusOK, second.Code)
	got = trackResponse(t, second)
	assert.Equal(t, []string{"content-marketing-roi", "ppc-budgeting-smb"}, got.History)
	assert.NotEmpty(t, got.Persona)
	assert.Equal(t, "fulfilled", got.Phase)
	require.NotNil(t, got.Suggestion)
	assert.Equal(t, "Web Design with Headless CMS", got.Suggestion.Title)

	require.Len(t, sugg.reqs, 1)
	assert.Len(t, sugg.reqs[0].AvailableArticleTitles, 4)
	assert.NotContains(t, sugg.reqs[0].AvailableArticleTitles, "PPC Campaign Budgeting for SMBs")
}

func TestTrack_DuplicateIsSkipped(t *testing.T) {
	r := newTestRouter(t, &stubSuggester{}, &stubLeads{})
	first := doJSON(r, http.MethodPost, "/api/widget/track", `{"id":"content-marketing-roi"}`)
	require.Equal(t, http.StatusOK, first.Code)

	again := doJSON(r, http.MethodPost, "/api/widget/track", `{"id":"content-marketing-roi"}`, first.Result().Cookies()...)
	got := trackResponse(t, again)
	assert.True(t, got.Skipped)
	assert.Equal(t, []string{"content-marketing-roi"}, got.History)
}

func TestTrack_Errors(t *testing.T) {
	r := newTestRouter(t, &stubSuggester{}, &stubLeads{})

	rec := doJSON(r, http.MethodPost, "/api/widget/track", `{"id":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(r, http.MethodPost, "/api/widget/track", `{"id":"no-such-article"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(r, http.MethodPost, "/api/widget/track", `{"id":"custom","clues":{"Tech":-1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 显式 clues 允许目录外的页面
	rec = doJSON(r, http.MethodPost, "/api/widget/track", `{"id":"custom","clues":{"Tech":1}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogAndHealth(t *testing.T) {
	r := newTestRouter(t, &stubSuggester{}, &stubLeads{})

	rec := doJSON(r, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cat models.CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))
	assert.Len(t, cat.Data, catalog.Default().Len())

	rec = doJSON(r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte(`"database":"disabled"`)))
}
