// Package scrobble reports plays to a Last.fm compatible listening
// history service through its signed-POST API envelope.
package scrobble

import (
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

	"github.com/sirupsen/logrus"

	"github.com/ArtistGrid/player/internal/catalog"
	"github.com/ArtistGrid/player/internal/store"
)

// ErrNotAuthenticated is returned when an operation requires a session.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrNoSession is returned by CompleteAuth when the service does not
// return a session for the token.
var ErrNoSession = errors.New("no session in auth response")

const (
	defaultAPIBase  = "https://ws.audioscrobbler.com/2.0/"
	defaultAuthBase = "https://www.last.fm"
)

// Config holds the API credentials and endpoints.
type Config struct {
	APIKey    string
	APISecret string
	APIBase   string // defaults to the audioscrobbler endpoint
	AuthBase  string // defaults to the last.fm web host
}

// SessionStore persists the auth session across runs.
type SessionStore interface {
	LastfmSession() (*store.Session, error)
	SaveLastfmSession(store.Session) error
	DeleteLastfmSession() error
}

// Client signs and sends requests to the listening-history API and
// owns the single optional auth session.
type Client struct {
	cfg   Config
	http  *http.Client
	store SessionStore
	log   *logrus.Entry

	mu      sync.Mutex
	session *store.Session
}

// NewClient creates a client. If store is non-nil, any previously
// persisted session is restored immediately.
func NewClient(cfg Config, st SessionStore) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if cfg.AuthBase == "" {
		cfg.AuthBase = defaultAuthBase
	}
	c := &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: 10 * time.Second},
		store: st,
		log:   logrus.WithField("component", "scrobble"),
	}
	if st != nil {
		if s, err := st.LastfmSession(); err == nil && s != nil {
			c.session = s
		}
	}
	return c
}

// Session returns the current session, or nil when not connected.
func (c *Client) Session() *store.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// IsAuthenticated reports whether a session key is present.
func (c *Client) IsAuthenticated() bool {
	return c.Session() != nil
}

// GetAuthURL requests an unauthenticated token and returns it with
// the URL the user must visit to authorize it.
func (c *Client) GetAuthURL(ctx context.Context) (token, authURL string, err error) {
	var resp struct {
		Token string `json:"token"`
	}
	params := map[string]string{
		"method":  "auth.getToken",
		"api_key": c.cfg.APIKey,
	}
	if err := c.call(ctx, params, &resp); err != nil {
		return "", "", fmt.Errorf("get token: %w", err)
	}
	authURL = fmt.Sprintf("%s/api/auth/?api_key=%s&token=%s", c.cfg.AuthBase, c.cfg.APIKey, resp.Token)
	return resp.Token, authURL, nil
}

// CompleteAuth exchanges an authorized token for a session, persists
// it, and returns the username. Errors if no session is returned.
func (c *Client) CompleteAuth(ctx context.Context, token string) (string, error) {
	var resp struct {
		Session struct {
			Name string `json:"name"`
			Key  string `json:"key"`
		} `json:"session"`
	}
	params := map[string]string{
		"method":  "auth.getSession",
		"api_key": c.cfg.APIKey,
		"token":   token,
	}
	if err := c.call(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	if resp.Session.Key == "" {
		return "", ErrNoSession
	}

	session := store.Session{SessionKey: resp.Session.Key, Username: resp.Session.Name}
	c.mu.Lock()
	c.session = &session
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.SaveLastfmSession(session); err != nil {
			return "", fmt.Errorf("persist session: %w", err)
		}
	}
	return session.Username, nil
}

// UpdateNowPlaying sends a now-playing notification for the track.
func (c *Client) UpdateNowPlaying(ctx context.Context, track catalog.Track, duration time.Duration) error {
	session := c.Session()
	if session == nil {
		return ErrNotAuthenticated
	}
	params := map[string]string{
		"method":  "track.updateNowPlaying",
		"api_key": c.cfg.APIKey,
		"sk":      session.SessionKey,
		"track":   track.Name,
		"artist":  track.Artist(),
	}
	if track.EraName != "" {
		params["album"] = track.EraName
	}
	if duration > 0 {
		params["duration"] = fmt.Sprintf("%d", int(duration.Seconds()))
	}
	return c.call(ctx, params, nil)
}

// Scrobble submits a completed play for the track.
func (c *Client) Scrobble(ctx context.Context, track catalog.Track, duration time.Duration, startedAt time.Time) error {
	session := c.Session()
	if session == nil {
		return ErrNotAuthenticated
	}
	params := map[string]string{
		"method":    "track.scrobble",
		"api_key":   c.cfg.APIKey,
		"sk":        session.SessionKey,
		"track":     track.Name,
		"artist":    track.Artist(),
		"timestamp": fmt.Sprintf("%d", startedAt.Unix()),
	}
	if track.EraName != "" {
		params["album"] = track.EraName
	}
	if duration > 0 {
		params["duration"] = fmt.Sprintf("%d", int(duration.Seconds()))
	}
	return c.call(ctx, params, nil)
}

// Disconnect clears the session in memory and in durable storage.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	if c.store != nil {
		return c.store.DeleteLastfmSession()
	}
	return nil
}

// call signs params, POSTs them form-encoded with format=json, and
// decodes the response into out. An {error, message} body is surfaced
// as the call's error.
func (c *Client) call(ctx context.Context, params map[string]string, out any) error {
	params["api_sig"] = Signature(params, c.cfg.APISecret)
	params["format"] = "json"

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var apiErr struct {
		Error   int    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		return fmt.Errorf("api error %d: %s", apiErr.Error, apiErr.Message)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("api status %s", resp.Status)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
