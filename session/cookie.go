package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"next_read/models"
)

// CookieOptions 会话 cookie 属性
type CookieOptions struct {
	Domain string // 父域名，例如 ".example.com"，用于主站与推荐子域共享状态
	MaxAge time.Duration
	Secure bool
}

// CookieStore reads session state from a request's cookies and writes it back on the response.
// It is bound to a single request; build a new one per request.
type CookieStore struct {
	r    *http.Request
	w    http.ResponseWriter
	opts CookieOptions
	now  func() time.Time
}

// NewCookieStore 创建绑定到单个请求的 cookie 存储
func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	return &CookieStore{r: r, w: w, opts: opts, now: time.Now}
}

// Load decodes the history and score cookies. Absent cookies load as empty state.
func (s *CookieStore) Load(ctx context.Context) (models.SessionState, error) {
	hist, err := s.read(HistoryKey)
	if err != nil {
		return models.NewSessionState(), err
	}
	scores, err := s.read(ScoresKey)
	if err != nil {
		return models.NewSessionState(), err
	}
	return decodeState(hist, scores)
}

// Save writes both cookies with the configured freshness window.
func (s *CookieStore) Save(ctx context.Context, state models.SessionState) error {
	hist, scores, err := encodeState(state)
	if err != nil {
		return err
	}
	expires := s.now().Add(s.opts.MaxAge)
	s.write(HistoryKey, hist, expires)
	s.write(ScoresKey, scores, expires)
	return nil
}

func (s *CookieStore) read(name string) ([]byte, error) {
	c, err := s.r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Key: name, Err: err}
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Key: name, Err: err}
	}
	return []byte(v), nil
}

func (s *CookieStore) write(name string, value []byte, expires time.Time) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(string(value)),
		Path:     "/",
		Domain:   s.opts.Domain,
		Expires:  expires,
		MaxAge:   int(s.opts.MaxAge / time.Second),
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
