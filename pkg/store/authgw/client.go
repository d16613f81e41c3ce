package authgw

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/ledgerline/ledgerline/pkg/models/domain"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb/document"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
)

// sessionDocument is the name the cached session is stored under in the
// local document store.
const sessionDocument = "session"

// Client talks to a GoTrue-compatible authentication endpoint and doubles as
// the in-process session-change event source: every sign-in and sign-out is
// fanned out to subscribers with the new session (or nil).
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	docs    document.Store

	mu      sync.Mutex
	current *domain.Session
	subs    map[int]func(*domain.Session)
	nextSub int
}

type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(cfg Config, docs document.Store) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("auth base URL is required")
	}
	if docs == nil {
		return nil, fmt.Errorf("document store is nil")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    httpClient,
		docs:    docs,
		subs:    map[int]func(*domain.Session){},
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type errorResponse struct {
	Error       string `json:"error"`
	ErrorCode   string `json:"error_code"`
	Description string `json:"error_description"`
	Msg         string `json:"msg"`
}

// SignIn exchanges credentials for a session, caches it locally and notifies
// subscribers.
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	var token tokenResponse
	err := c.post(ctx, "/token?grant_type=password",
		map[string]string{"email": email, "password": password}, &token)
	if err != nil {
		return nil, err
	}

	sess := &domain.Session{
		UserID:      token.User.ID,
		Email:       token.User.Email,
		AccessToken: token.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}

	if body, err := json.Marshal(sess); err == nil {
		if err := c.docs.Save(ctx, sessionDocument, body); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to cache session")
		}
	}

	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()
	c.notify(sess)
	return sess, nil
}

// SignUp registers a new account. The backend sends a confirmation mail; no
// session is issued here.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	return c.post(ctx, "/signup", map[string]string{"email": email, "password": password}, nil)
}

// ResendConfirmation asks the backend to resend the signup confirmation
// mail.
func (c *Client) ResendConfirmation(ctx context.Context, email string) error {
	return c.post(ctx, "/resend", map[string]string{"type": "signup", "email": email}, nil)
}

// SignOut revokes the current session remotely, drops the local cache and
// notifies subscribers with nil. The local state is cleared even when the
// remote call fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	sess := c.current
	c.current = nil
	c.mu.Unlock()

	if err := c.docs.Delete(ctx, sessionDocument); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to drop cached session")
	}
	c.notify(nil)

	if sess == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return err
	}
	c.authorize(req, sess.AccessToken)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sign out: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// CurrentSession restores the cached session, if any. Expired or unreadable
// tokens are treated as no session, never as an error the bootstrap would
// trip over.
func (c *Client) CurrentSession(ctx context.Context) (*domain.Session, error) {
	c.mu.Lock()
	if c.current != nil && time.Now().Before(c.current.ExpiresAt) {
		sess := c.current
		c.mu.Unlock()
		return sess, nil
	}
	c.mu.Unlock()

	body, err := c.docs.Load(ctx, sessionDocument, nil)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var sess domain.Session
	if err := json.Unmarshal(body, &sess); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("discarding unreadable cached session")
		return nil, nil
	}
	if !time.Now().Before(sess.ExpiresAt) {
		return nil, nil
	}

	// The token claims are authoritative for subject and email.
	if sub, email, ok := parseClaims(sess.AccessToken); ok {
		sess.UserID = sub
		if email != "" {
			sess.Email = email
		}
	}

	c.mu.Lock()
	c.current = &sess
	c.mu.Unlock()
	return &sess, nil
}

// Subscribe registers fn for session-change events and returns its release
// func. Exactly one event is delivered per sign-in/sign-out.
func (c *Client) Subscribe(fn func(*domain.Session)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Client) notify(sess *domain.Session) {
	c.mu.Lock()
	fns := make([]func(*domain.Session), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(sess)
	}
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return mapError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) authorize(req *http.Request, bearer string) {
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
}

func mapError(resp *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)

	if body.ErrorCode == "email_not_confirmed" {
		return ErrEmailNotConfirmed
	}
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return ErrInvalidCredentials
	}

	msg := body.Description
	if msg == "" {
		msg = body.Msg
	}
	if msg == "" {
		msg = body.Error
	}
	return fmt.Errorf("auth backend: status %d: %s", resp.StatusCode, msg)
}

// parseClaims extracts subject and email from the access token without
// verifying the signature. Verification is the backend's job; the client
// only needs the claims for identity resolution.
func parseClaims(token string) (sub, email string, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", "", false
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", "", false
	}
	if v, found := claims["email"].(string); found {
		email = v
	}
	return sub, email, true
}
