package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/ai"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client

	refreshMu sync.Mutex

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	session      *models.Session

	lmu       sync.Mutex
	listeners map[int]func(models.SessionEvent, *models.Session)
	nextID    int
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		listeners: map[int]func(models.SessionEvent, *models.Session){},
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func statusError(code int, msg string) error {
	var base error
	switch code {
	case http.StatusBadRequest:
		base = ErrInvalidInput
	case http.StatusUnauthorized:
		base = ErrUnauthorized
	case http.StatusForbidden:
		base = ErrWrongPassword
	case http.StatusNotFound:
		base = ErrNotFound
	case http.StatusConflict:
		base = ErrConflict
	default:
		base = ErrUnexpectedCode
	}
	if msg == "" {
		return fmt.Errorf("%w (status %d)", base, code)
	}
	return fmt.Errorf("%w: %s", base, msg)
}

func (c *HTTPClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// send performs one request. auth attaches the current access token.
func (c *HTTPClient) send(ctx context.Context, method, path string, in any, out any, auth bool) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		access, _ := c.tokens()
		if access == "" {
			return 0, ErrNotSignedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return resp.StatusCode, statusError(resp.StatusCode, eb.Error)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: decode: %v", ErrUnexpectedCode, err)
		}
	}
	return resp.StatusCode, nil
}

// do sends an authenticated request. On 401 it refreshes the token pair once
// and retries.
func (c *HTTPClient) do(ctx context.Context, method, path string, in any, out any) error {
	used, _ := c.tokens()
	code, err := c.send(ctx, method, path, in, out, true)
	if code != http.StatusUnauthorized {
		return err
	}

	if rerr := c.refresh(ctx, used); rerr != nil {
		return err
	}
	_, err = c.send(ctx, method, path, in, out, true)
	return err
}

// refresh rotates the token pair unless another caller already replaced
// the access token that failed.
func (c *HTTPClient) refresh(ctx context.Context, failed string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	access, refresh := c.tokens()
	if access != "" && access != failed {
		return nil
	}
	if refresh == "" {
		return ErrNotSignedIn
	}

	var pair models.TokenPair
	_, err := c.send(ctx, http.MethodPost, "/api/auth/refresh", map[string]string{"refresh_token": refresh}, &pair, false)
	if err != nil {
		c.clearSession()
		return err
	}

	c.mu.Lock()
	c.accessToken, c.refreshToken = pair.AccessToken, pair.RefreshToken
	c.mu.Unlock()

	sess, err := c.fetchSession(ctx)
	if err != nil {
		return err
	}
	c.notify(models.SessionRefreshed, &sess)
	return nil
}

func (c *HTTPClient) fetchSession(ctx context.Context) (models.Session, error) {
	var s models.Session
	if _, err := c.send(ctx, http.MethodGet, "/api/auth/session", nil, &s, true); err != nil {
		return models.Session{}, err
	}
	c.mu.Lock()
	c.session = &s
	c.mu.Unlock()
	return s, nil
}

func (c *HTTPClient) clearSession() {
	c.mu.Lock()
	had := c.session != nil || c.accessToken != ""
	c.accessToken, c.refreshToken, c.session = "", "", nil
	c.mu.Unlock()

	if had {
		c.notify(models.SessionSignedOut, nil)
	}
}

func (c *HTTPClient) notify(ev models.SessionEvent, s *models.Session) {
	c.lmu.Lock()
	fns := make([]func(models.SessionEvent, *models.Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.lmu.Unlock()

	for _, fn := range fns {
		var cp *models.Session
		if s != nil {
			v := *s
			cp = &v
		}
		fn(ev, cp)
	}
}

func (c *HTTPClient) OnSessionChange(fn func(models.SessionEvent, *models.Session)) func() {
	c.lmu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.lmu.Unlock()

	return func() {
		c.lmu.Lock()
		delete(c.listeners, id)
		c.lmu.Unlock()
	}
}

func (c *HTTPClient) CurrentSession() (models.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return models.Session{}, false
	}
	return *c.session, true
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.send(ctx, http.MethodGet, "/healthz", nil, nil, false)
	return err
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) SignUp(ctx context.Context, email, password string) error {
	_, err := c.send(ctx, http.MethodPost, "/api/auth/signup", credentials{email, password}, nil, false)
	return err
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	var pair models.TokenPair
	if _, err := c.send(ctx, http.MethodPost, "/api/auth/signin", credentials{email, password}, &pair, false); err != nil {
		return models.Session{}, err
	}

	c.mu.Lock()
	c.accessToken, c.refreshToken = pair.AccessToken, pair.RefreshToken
	c.mu.Unlock()

	sess, err := c.fetchSession(ctx)
	if err != nil {
		return models.Session{}, err
	}
	c.notify(models.SessionSignedIn, &sess)
	return sess, nil
}

// SignOut revokes the refresh token. The local session is cleared even when
// the server cannot be reached.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	_, refresh := c.tokens()
	var err error
	if refresh != "" {
		_, err = c.send(ctx, http.MethodPost, "/api/auth/signout", map[string]string{"refresh_token": refresh}, nil, false)
	}
	c.clearSession()
	return err
}

func (c *HTTPClient) VerifyPassword(ctx context.Context, password string) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify", map[string]string{"password": password}, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

func (c *HTTPClient) ListNotes(ctx context.Context, opts ListOptions) ([]models.Note, error) {
	q := url.Values{}
	if opts.PinnedOnly {
		q.Set("filter", "pinned")
	}
	if s := strings.TrimSpace(opts.Query); s != "" {
		q.Set("q", s)
	}
	path := "/api/notes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	notes := []models.Note{}
	if err := c.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func notePath(id string, suffix string) string {
	return "/api/notes/" + url.PathEscape(id) + suffix
}

func (c *HTTPClient) GetNote(ctx context.Context, id string) (models.Note, error) {
	var n models.Note
	err := c.do(ctx, http.MethodGet, notePath(id, ""), nil, &n)
	return n, err
}

func (c *HTTPClient) CreateNote(ctx context.Context, nn models.NewNote) (models.Note, error) {
	var n models.Note
	err := c.do(ctx, http.MethodPost, "/api/notes", nn, &n)
	return n, err
}

func (c *HTTPClient) UpdateNote(ctx context.Context, id string, patch models.NotePatch) (models.Note, error) {
	var n models.Note
	err := c.do(ctx, http.MethodPatch, notePath(id, ""), patch, &n)
	return n, err
}

func (c *HTTPClient) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, notePath(id, ""), nil, nil)
}

func (c *HTTPClient) TogglePin(ctx context.Context, id string) (models.Note, error) {
	var n models.Note
	err := c.do(ctx, http.MethodPost, notePath(id, "/pin"), nil, &n)
	return n, err
}

func (c *HTTPClient) ToggleLock(ctx context.Context, id string, password string) (models.Note, error) {
	var n models.Note
	err := c.do(ctx, http.MethodPost, notePath(id, "/lock"), map[string]string{"password": password}, &n)
	return n, err
}

func (c *HTTPClient) Unlock(ctx context.Context, id string, password string) (models.Note, error) {
	var n models.Note
	err := c.do(ctx, http.MethodPost, notePath(id, "/unlock"), map[string]string{"password": password}, &n)
	return n, err
}

func (c *HTTPClient) Export(ctx context.Context) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/notes/export", nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Analyze asks the server for one analysis. A result of the wrong shape is
// reported as an error.
func (c *HTTPClient) Analyze(ctx context.Context, kind ai.Kind, text string) (ai.Result, error) {
	var r ai.Result
	if err := c.do(ctx, http.MethodPost, "/api/analyze/"+string(kind), map[string]string{"text": text}, &r); err != nil {
		return ai.Result{}, err
	}
	if r.Kind != kind {
		return ai.Result{}, fmt.Errorf("%w: asked for %s, got %s", ErrUnexpectedCode, kind, r.Kind)
	}
	if err := r.Validate(); err != nil {
		return ai.Result{}, errors.Join(ErrUnexpectedCode, err)
	}
	return r, nil
}
